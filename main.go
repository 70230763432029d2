// classmetrics computes per-class cohesion, coupling and change-history
// metrics for a Python repository.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/phobologic/classmetrics/internal/config"
	"github.com/phobologic/classmetrics/internal/discover"
	"github.com/phobologic/classmetrics/internal/graph"
	"github.com/phobologic/classmetrics/internal/history"
	"github.com/phobologic/classmetrics/internal/lang"
	"github.com/phobologic/classmetrics/internal/logging"
	"github.com/phobologic/classmetrics/internal/pipeline"
	"github.com/phobologic/classmetrics/internal/report"
)

var version = "dev"

const (
	defaultOutputBase = "class_metrics"
	sourceLanguage    = "python"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

type rootOptions struct {
	configPath  string
	formats     []string
	plot        bool
	noColor     bool
	dotFile     string
	noHistory   bool
	selfName    string
	maxFileSize string
	logLevel    string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "classmetrics [flags] <repo_path> [output_base]",
		Short: "Per-class cohesion, coupling and change-history metrics for Python code",
		Long: `classmetrics walks a Python repository and reports, for every class:

  LOC, methods, LCOM, TCC and CBO from the syntax tree,
  changes, lines added/deleted, NLC and authors from git log -L,
  fan-in and fan-out from the pyreverse class diagram.

The table is printed to stdout and the report is written to
<output_base>.<format> (default class_metrics.csv).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				_ = cmd.Usage()
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, args, &opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("classmetrics {{.Version}}\n")

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ./"+config.FileName+")")
	f.StringSliceVar(&opts.formats, "format", nil, "report format: csv, json, yaml, toon, html (repeatable)")
	f.BoolVar(&opts.plot, "plot", false, "also write <output_base>.html charts")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colour in the console table")
	f.StringVar(&opts.dotFile, "dot-file", "", "read fan-in/fan-out from this DOT file instead of running pyreverse")
	f.BoolVar(&opts.noHistory, "no-history", false, "skip git history mining")
	f.StringVar(&opts.selfName, "self-name", "", "instance reference name (default self)")
	f.StringVar(&opts.maxFileSize, "max-file-size", "", "skip files larger than this, e.g. 1MB")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolP("version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCommand(stdout, stderr))
	return cmd
}

// loadConfig reads the configuration and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Formats = opts.formats
	}
	if flags.Changed("plot") {
		cfg.Output.Plot = opts.plot
	}
	if flags.Changed("no-color") {
		cfg.Output.Color = !opts.noColor
	}
	if flags.Changed("dot-file") {
		cfg.Graph.DotFile = opts.dotFile
	}
	if flags.Changed("no-history") {
		cfg.History.Enabled = !opts.noHistory
	}
	if flags.Changed("self-name") {
		cfg.Analysis.SelfName = opts.selfName
	}
	if flags.Changed("max-file-size") {
		cfg.Analysis.MaxFileSize = opts.maxFileSize
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func analyze(cmd *cobra.Command, args []string, opts *rootOptions, stdout, stderr io.Writer) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	repoArg := args[0]
	base := defaultOutputBase
	if len(args) > 1 {
		base = args[1]
	}

	root, err := filepath.Abs(repoArg)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	files, err := discover.Files(root, discover.Options{
		Languages:       []string{sourceLanguage},
		RespectIgnore:   cfg.Analysis.RespectIgnore,
		ExcludeVendored: cfg.Analysis.ExcludeVendored,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("no python files found", zap.String("root", root))
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	analyzer := &pipeline.Analyzer{
		Language: lang.Languages[sourceLanguage],
		Miner:    historySource(cfg, root, logger),
		Graph:    graphSource(cfg, repoArg, logger),
		Logger:   logger,
		Options: pipeline.Options{
			SelfName:    cfg.Analysis.SelfName,
			MaxFileSize: maxSize,
		},
	}

	records, err := analyzer.Run(ctx, root, files)
	if err != nil {
		return err
	}

	rep := report.New(filepath.Base(root), records)

	console := report.Console{Color: cfg.Output.Color && !color.NoColor}
	if err := console.Render(stdout, rep); err != nil {
		return fmt.Errorf("printing table: %w", err)
	}

	written, err := report.Write(ctx, afs.New(), base, cfg.ReportFormats(), rep)
	for _, path := range written {
		logger.Info("report written", zap.String("path", path))
	}
	return err
}

func historySource(cfg *config.Config, root string, logger *zap.Logger) history.Source {
	if !cfg.History.Enabled {
		return history.Disabled{}
	}
	return history.NewMiner(root, cfg.History.GitBinary, logger)
}

func graphSource(cfg *config.Config, repoArg string, logger *zap.Logger) graph.Source {
	if cfg.Graph.DotFile != "" {
		return graph.DotFile{Path: cfg.Graph.DotFile}
	}
	return &graph.Pyreverse{
		Binary:    cfg.Graph.Generator,
		Root:      repoArg,
		RepoArg:   repoArg,
		OutputDir: cfg.Graph.OutputDir,
		Runner:    history.ExecRunner{},
		Logger:    logger,
	}
}
