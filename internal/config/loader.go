package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = ".classmetrics.yaml"

const (
	configName      = ".classmetrics"
	configType      = "yaml"
	envPrefix       = "CLASSMETRICS"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty it must exist; otherwise FileName is looked up in
// the working directory and a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("analysis.self_name", DefaultSelfName)
	v.SetDefault("analysis.max_file_size", DefaultMaxFileSize)
	v.SetDefault("analysis.respect_ignore", DefaultRespectIgnore)
	v.SetDefault("analysis.exclude_vendored", DefaultExcludeVendored)

	v.SetDefault("history.enabled", DefaultHistoryEnabled)
	v.SetDefault("history.git_binary", DefaultGitBinary)

	v.SetDefault("graph.generator", DefaultGenerator)
	v.SetDefault("graph.dot_file", DefaultDotFile)
	v.SetDefault("graph.output_dir", DefaultGraphOutputDir)

	v.SetDefault("output.formats", DefaultFormats)
	v.SetDefault("output.plot", DefaultPlot)
	v.SetDefault("output.color", DefaultColor)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
