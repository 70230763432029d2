// Package pipeline runs the analysis stages in order: structural extraction
// per file, history mining per class, then the dependency graph join.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/phobologic/classmetrics/internal/discover"
	"github.com/phobologic/classmetrics/internal/extract"
	"github.com/phobologic/classmetrics/internal/graph"
	"github.com/phobologic/classmetrics/internal/history"
	"github.com/phobologic/classmetrics/internal/lang"
	"github.com/phobologic/classmetrics/internal/model"
)

// Options tunes a run.
type Options struct {
	SelfName string
	// MaxFileSize skips files larger than this many bytes; 0 means no limit.
	MaxFileSize int64
}

// Analyzer wires the stages together. Every stage is a pure function of its
// inputs apart from the external processes behind Miner and Graph.
type Analyzer struct {
	Language *lang.Language
	Miner    history.Source
	Graph    graph.Source
	Logger   *zap.Logger
	Options  Options
}

// Run analyses files (relative to root) sequentially and returns one record
// per class in discovery order. Only a dependency graph failure is fatal.
func (a *Analyzer) Run(ctx context.Context, root string, files []discover.FileEntry) ([]model.ClassRecord, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := a.Language.NewParser()
	defer parser.Close()

	opts := extract.Options{SelfName: a.Options.SelfName}

	logger.Info("computing class metrics", zap.Int("files", len(files)))

	var records []model.ClassRecord
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source, ok := a.readFile(logger, root, f)
		if !ok {
			continue
		}

		classes := extract.Classes(a.Language, parser, source, f.Path, opts)
		if len(classes) == 0 {
			logger.Debug("no classes in file", zap.String("file", f.Path))
			continue
		}

		for i := range classes {
			classes[i].History = a.Miner.Mine(ctx, f.Path, classes[i].Name)
			logger.Debug("class analysed",
				zap.String("file", f.Path),
				zap.String("class", classes[i].Name),
				zap.Int("line", classes[i].Line),
				zap.Int("changes", classes[i].History.Changes))
		}
		records = append(records, classes...)
	}

	table, err := a.Graph.FanTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("dependency graph: %w", err)
	}
	graph.Join(records, table)

	logger.Info("analysis complete",
		zap.Int("classes", len(records)),
		zap.Int("graph_nodes", len(table)))
	return records, nil
}

func (a *Analyzer) readFile(logger *zap.Logger, root string, f discover.FileEntry) ([]byte, bool) {
	path := filepath.Join(root, f.Path)

	if a.Options.MaxFileSize > 0 {
		fi, err := os.Stat(path)
		if err == nil && fi.Size() > a.Options.MaxFileSize {
			logger.Warn("file skipped: exceeds size limit",
				zap.String("file", f.Path),
				zap.Int64("size", fi.Size()),
				zap.Int64("limit", a.Options.MaxFileSize))
			return nil, false
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("file skipped: unreadable", zap.String("file", f.Path), zap.Error(err))
		return nil, false
	}
	return source, true
}
