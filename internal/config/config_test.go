package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/classmetrics/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "self", cfg.Analysis.SelfName)
	assert.False(t, cfg.Analysis.RespectIgnore)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "git", cfg.History.GitBinary)
	assert.Equal(t, "pyreverse", cfg.Graph.Generator)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefault_FormatsNotShared(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Output.Formats[0] = "json"
	assert.Equal(t, []string{"csv"}, config.DefaultFormats)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"empty self name", func(c *config.Config) { c.Analysis.SelfName = "" }, config.ErrInvalidSelfName},
		{"dotted self name", func(c *config.Config) { c.Analysis.SelfName = "self.x" }, config.ErrInvalidSelfName},
		{"bad size", func(c *config.Config) { c.Analysis.MaxFileSize = "lots" }, config.ErrInvalidMaxFileSize},
		{"bad format", func(c *config.Config) { c.Output.Formats = []string{"csv", "xml"} }, config.ErrInvalidFormat},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestMaxFileSizeBytes(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	n, err := cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Zero(t, n)

	cfg.Analysis.MaxFileSize = "1MB"
	n, err = cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), n)

	cfg.Analysis.MaxFileSize = "64KiB"
	n, err = cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(65536), n)
}

func TestReportFormats(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Equal(t, []string{"csv"}, cfg.ReportFormats())

	cfg.Output.Formats = []string{"csv", "json", "csv"}
	cfg.Output.Plot = true
	assert.Equal(t, []string{"csv", "json", "html"}, cfg.ReportFormats())
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`analysis:
  self_name: this
  max_file_size: 2MB
history:
  enabled: false
output:
  formats: [csv, toon]
  plot: true
`), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "this", cfg.Analysis.SelfName)
	assert.Equal(t, "2MB", cfg.Analysis.MaxFileSize)
	assert.False(t, cfg.Analysis.RespectIgnore, "unset keys keep defaults")
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "git", cfg.History.GitBinary)
	assert.Equal(t, []string{"csv", "toon"}, cfg.Output.Formats)
	assert.True(t, cfg.Output.Plot)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := config.LoadConfig(path)
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CLASSMETRICS_ANALYSIS_SELF_NAME", "cls")
	t.Setenv("CLASSMETRICS_HISTORY_ENABLED", "false")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "cls", cfg.Analysis.SelfName)
	assert.False(t, cfg.History.Enabled)
}
