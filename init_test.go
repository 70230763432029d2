package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/classmetrics/internal/config"
)

func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cm.yaml")

	_, stderr, err := runCLI(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote default configuration")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cm.yaml")

	stdout, _, err := runCLI(t, "init", "--dry-run", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "self_name: self")
	assert.Contains(t, stdout, "generator: pyreverse")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "--dry-run should not create the file")
}

func TestInitKeepsExistingFile(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, t.TempDir(), "cm.yaml", "logging:\n  level: debug\n")

	_, _, err := runCLI(t, "init", path)
	require.ErrorContains(t, err, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "logging:\n  level: debug\n", string(data))
}

func TestInitForce(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, t.TempDir(), "cm.yaml", "logging:\n  level: debug\n")

	_, _, err := runCLI(t, "init", "--force", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefaultConfigYAMLHeader(t *testing.T) {
	t.Parallel()

	data, err := defaultConfigYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "CLASSMETRICS_")
}
