// Package report renders class records as files (CSV, JSON, YAML, TOON, HTML)
// and as a console table.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/afs"

	"github.com/phobologic/classmetrics/internal/model"
)

// ErrUnknownFormat is returned for an output format with no encoder.
var ErrUnknownFormat = errors.New("unknown output format")

// Columns is the field order of every tabular output.
var Columns = []string{
	"class", "filename", "loc", "methods", "lcom", "tcc", "cbo",
	"changes", "lines_added", "lines_deleted", "nlc", "authors", "fan_in", "fan_out",
}

// Row is one output line. Authors is the number of distinct authors.
type Row struct {
	Class        string  `json:"class" yaml:"class"`
	Filename     string  `json:"filename" yaml:"filename"`
	LOC          int     `json:"loc" yaml:"loc"`
	Methods      int     `json:"methods" yaml:"methods"`
	LCOM         int     `json:"lcom" yaml:"lcom"`
	TCC          float64 `json:"tcc" yaml:"tcc"`
	CBO          int     `json:"cbo" yaml:"cbo"`
	Changes      int     `json:"changes" yaml:"changes"`
	LinesAdded   int     `json:"lines_added" yaml:"lines_added"`
	LinesDeleted int     `json:"lines_deleted" yaml:"lines_deleted"`
	NLC          float64 `json:"nlc" yaml:"nlc"`
	Authors      int     `json:"authors" yaml:"authors"`
	FanIn        int     `json:"fan_in" yaml:"fan_in"`
	FanOut       int     `json:"fan_out" yaml:"fan_out"`
}

// Report is the complete result of one run.
type Report struct {
	Repo string
	Rows []Row
}

// New builds a report from class records, keeping their order.
func New(repo string, records []model.ClassRecord) *Report {
	rows := make([]Row, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = Row{
			Class:        r.Name,
			Filename:     filepath.ToSlash(r.File),
			LOC:          r.LOC,
			Methods:      r.Methods,
			LCOM:         r.LCOM,
			TCC:          r.TCC,
			CBO:          r.CBO,
			Changes:      r.History.Changes,
			LinesAdded:   r.History.LinesAdded,
			LinesDeleted: r.History.LinesDeleted,
			NLC:          r.History.NLC,
			Authors:      r.History.AuthorCount(),
			FanIn:        r.FanIn,
			FanOut:       r.FanOut,
		}
	}
	return &Report{Repo: repo, Rows: rows}
}

// Fields returns the row's values as text, in Columns order.
func (r Row) Fields() []string {
	nlc := "0"
	if r.Changes > 0 {
		nlc = FormatFloat(r.NLC)
	}
	return []string{
		r.Class,
		r.Filename,
		strconv.Itoa(r.LOC),
		strconv.Itoa(r.Methods),
		strconv.Itoa(r.LCOM),
		FormatFloat(r.TCC),
		strconv.Itoa(r.CBO),
		strconv.Itoa(r.Changes),
		strconv.Itoa(r.LinesAdded),
		strconv.Itoa(r.LinesDeleted),
		nlc,
		strconv.Itoa(r.Authors),
		strconv.Itoa(r.FanIn),
		strconv.Itoa(r.FanOut),
	}
}

// FormatFloat writes v in its shortest form, always with a fractional part:
// 1 becomes "1.0", 0.333 stays "0.333".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type encoder func(*Report) ([]byte, error)

var encoders = map[string]encoder{
	"csv":  encodeCSV,
	"json": encodeJSON,
	"yaml": encodeYAML,
	"toon": encodeTOON,
	"html": encodePlot,
}

// Formats lists the supported output formats, sorted.
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFormat reports whether format has an encoder.
func IsFormat(format string) bool {
	_, ok := encoders[format]
	return ok
}

// Encode renders the report in the given format.
func Encode(format string, r *Report) ([]byte, error) {
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return enc(r)
}

// Write encodes the report once per format and stores each as base.<format>.
// It returns the written locations in format order.
func Write(ctx context.Context, fs afs.Service, base string, formats []string, r *Report) ([]string, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}

	written := make([]string, 0, len(formats))
	for _, format := range formats {
		data, err := Encode(format, r)
		if err != nil {
			return written, err
		}
		location := base + "." + format
		if err := fs.Upload(ctx, location, 0o644, bytes.NewReader(data)); err != nil {
			return written, fmt.Errorf("writing %s: %w", location, err)
		}
		written = append(written, location)
	}
	return written, nil
}
