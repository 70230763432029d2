// Package config holds the classmetrics configuration and its validation.
package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/classmetrics/internal/report"
)

// Config is the complete classmetrics configuration.
// Field tags use mapstructure for viper unmarshalling and yaml for init.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Graph    GraphConfig    `mapstructure:"graph" yaml:"graph"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// AnalysisConfig controls discovery and structural extraction.
type AnalysisConfig struct {
	SelfName        string `mapstructure:"self_name" yaml:"self_name"`
	MaxFileSize     string `mapstructure:"max_file_size" yaml:"max_file_size"`
	RespectIgnore   bool   `mapstructure:"respect_ignore" yaml:"respect_ignore"`
	ExcludeVendored bool   `mapstructure:"exclude_vendored" yaml:"exclude_vendored"`
}

// HistoryConfig controls version-control mining.
type HistoryConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	GitBinary string `mapstructure:"git_binary" yaml:"git_binary"`
}

// GraphConfig controls the class dependency graph.
type GraphConfig struct {
	Generator string `mapstructure:"generator" yaml:"generator"`
	DotFile   string `mapstructure:"dot_file" yaml:"dot_file"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// OutputConfig controls report files and the console table.
type OutputConfig struct {
	Formats []string `mapstructure:"formats" yaml:"formats"`
	Plot    bool     `mapstructure:"plot" yaml:"plot"`
	Color   bool     `mapstructure:"color" yaml:"color"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults.
const (
	DefaultSelfName        = "self"
	DefaultMaxFileSize     = ""
	DefaultRespectIgnore   = false
	DefaultExcludeVendored = false
	DefaultHistoryEnabled  = true
	DefaultGitBinary       = "git"
	DefaultGenerator       = "pyreverse"
	DefaultDotFile         = ""
	DefaultGraphOutputDir  = "."
	DefaultPlot            = false
	DefaultColor           = true
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// DefaultFormats is the default set of report files.
var DefaultFormats = []string{"csv"}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			SelfName:        DefaultSelfName,
			MaxFileSize:     DefaultMaxFileSize,
			RespectIgnore:   DefaultRespectIgnore,
			ExcludeVendored: DefaultExcludeVendored,
		},
		History: HistoryConfig{
			Enabled:   DefaultHistoryEnabled,
			GitBinary: DefaultGitBinary,
		},
		Graph: GraphConfig{
			Generator: DefaultGenerator,
			DotFile:   DefaultDotFile,
			OutputDir: DefaultGraphOutputDir,
		},
		Output: OutputConfig{
			Formats: append([]string(nil), DefaultFormats...),
			Plot:    DefaultPlot,
			Color:   DefaultColor,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSelfName indicates the instance reference is not an identifier.
	ErrInvalidSelfName = errors.New("analysis.self_name must be an identifier")
	// ErrInvalidMaxFileSize indicates the size limit cannot be parsed.
	ErrInvalidMaxFileSize = errors.New("analysis.max_file_size must be a size such as 1MB")
	// ErrInvalidFormat indicates an output format with no encoder.
	ErrInvalidFormat = errors.New("output.formats contains an unknown format")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidLogFormat indicates an unknown log encoding.
	ErrInvalidLogFormat = errors.New("logging.format must be console or json")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if !identifier.MatchString(c.Analysis.SelfName) {
		return fmt.Errorf("%w: %q", ErrInvalidSelfName, c.Analysis.SelfName)
	}
	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}
	for _, format := range c.Output.Formats {
		if !report.IsFormat(format) {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// MaxFileSizeBytes returns the parsed file size limit, 0 when unset.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	if c.Analysis.MaxFileSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Analysis.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Analysis.MaxFileSize)
	}
	return int64(n), nil
}

// ReportFormats returns the report files to write: the configured formats,
// plus the HTML plot when enabled, without duplicates.
func (c *Config) ReportFormats() []string {
	formats := make([]string, 0, len(c.Output.Formats)+1)
	seen := make(map[string]struct{}, len(c.Output.Formats)+1)
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		formats = append(formats, f)
	}
	for _, f := range c.Output.Formats {
		add(f)
	}
	if c.Output.Plot {
		add("html")
	}
	return formats
}
