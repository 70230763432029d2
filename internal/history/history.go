// Package history mines per-class change statistics from version control.
package history

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/classmetrics/internal/metrics"
	"github.com/phobologic/classmetrics/internal/model"
)

// Markers recognised in "git log -L" output.
const (
	commitMarker  = "commit"
	authorMarker  = "Author:"
	addedPrefix   = "+"
	deletedPrefix = "-"
	addedHeader   = "+++"
	deletedHeader = "---"
)

// Parse reduces raw line-history output to change statistics.
//
// Changes is the number of occurrences of the word "commit" anywhere in the
// output, so a message or code line containing it counts as well.
func Parse(raw string) model.History {
	h := model.History{Changes: strings.Count(raw, commitMarker)}

	authors := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, authorMarker):
			authors[strings.TrimSpace(line[len(authorMarker):])] = struct{}{}
		case strings.HasPrefix(line, addedPrefix) && !strings.HasPrefix(line, addedHeader):
			h.LinesAdded++
		case strings.HasPrefix(line, deletedPrefix) && !strings.HasPrefix(line, deletedHeader):
			h.LinesDeleted++
		}
	}

	if len(authors) > 0 {
		h.Authors = make([]string, 0, len(authors))
		for a := range authors {
			h.Authors = append(h.Authors, a)
		}
		sort.Strings(h.Authors)
	}

	h.NLC = metrics.Ratio(h.LinesAdded+h.LinesDeleted, h.Changes, 2)
	return h
}

// Runner executes an external command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec, discarding standard error.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = io.Discard
	return cmd.Output()
}

// Source returns the change history of one class.
type Source interface {
	Mine(ctx context.Context, filePath, className string) model.History
}

// Miner queries git line history for the block starting at "class <name>".
type Miner struct {
	Root   string
	Binary string
	Runner Runner
	Logger *zap.Logger
}

// NewMiner returns a Miner running binary (default "git") in root.
func NewMiner(root, binary string, logger *zap.Logger) *Miner {
	if binary == "" {
		binary = "git"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Miner{Root: root, Binary: binary, Runner: ExecRunner{}, Logger: logger}
}

// Args returns the git arguments for the history of className in filePath.
func Args(filePath, className string) []string {
	return []string{
		"--no-pager", "log", "--no-color",
		"-L", fmt.Sprintf(":class %s:%s", className, filepath.ToSlash(filePath)),
	}
}

// Mine implements Source. Any failure of the query (untracked file, class not
// found, git missing) yields zero statistics.
func (m *Miner) Mine(ctx context.Context, filePath, className string) model.History {
	out, err := m.Runner.Run(ctx, m.Root, m.Binary, Args(filePath, className)...)
	if err != nil {
		m.Logger.Debug("no history for class",
			zap.String("file", filePath),
			zap.String("class", className),
			zap.Error(err))
		return model.History{}
	}
	return Parse(string(out))
}

// Disabled is a Source that never queries version control.
type Disabled struct{}

// Mine implements Source.
func (Disabled) Mine(context.Context, string, string) model.History {
	return model.History{}
}
