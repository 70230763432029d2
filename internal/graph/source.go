package graph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Source produces the fan table for a repository.
type Source interface {
	FanTable(ctx context.Context) (FanTable, error)
}

// Runner executes an external command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ProjectName derives the diagram project name from the repository argument
// as given on the command line: path separators become underscores.
func ProjectName(repoArg string) string {
	return strings.ReplaceAll(filepath.ToSlash(repoArg), "/", "_")
}

// DotFileName is the class diagram file the generator writes for repoArg.
func DotFileName(repoArg string) string {
	return "classes_" + ProjectName(repoArg) + ".dot"
}

// DotFile reads a DOT file that already exists.
type DotFile struct {
	Path string
}

// FanTable implements Source.
func (d DotFile) FanTable(context.Context) (FanTable, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dot file %s: %w", d.Path, ErrNoGraph)
		}
		return nil, fmt.Errorf("reading dot file: %w", err)
	}
	table, err := ParseDOT(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Path, err)
	}
	return table, nil
}

// Pyreverse generates the class diagram with pylint's pyreverse and reads the
// resulting DOT file.
type Pyreverse struct {
	Binary    string
	Root      string // directory analysed
	RepoArg   string // repository path as given by the user; names the project
	OutputDir string
	Runner    Runner
	Logger    *zap.Logger
}

// Args returns the generator arguments.
func (p *Pyreverse) Args() []string {
	return []string{"-o", "dot", "-p", ProjectName(p.RepoArg), "-d", p.outputDir(), p.Root}
}

// Path is where the generated DOT file is expected.
func (p *Pyreverse) Path() string {
	return filepath.Join(p.outputDir(), DotFileName(p.RepoArg))
}

func (p *Pyreverse) outputDir() string {
	if p.OutputDir == "" {
		return "."
	}
	return p.OutputDir
}

// FanTable implements Source. Failure to run the generator is fatal.
func (p *Pyreverse) FanTable(ctx context.Context) (FanTable, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pyreverse"
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("generating class diagram",
		zap.String("generator", binary),
		zap.String("root", p.Root))
	if _, err := p.Runner.Run(ctx, "", binary, p.Args()...); err != nil {
		return nil, fmt.Errorf("running %s: %w", binary, err)
	}

	path := p.Path()
	logger.Info("computing fan-in and fan-out", zap.String("dot_file", path))
	return DotFile{Path: path}.FanTable(ctx)
}
