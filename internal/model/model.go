// Package model defines core data structures for classmetrics.
package model

// ClassRecord holds the metrics of one syntactically detected class definition.
// It is created by the extractor, receives History once from the history miner
// and FanIn/FanOut once at join time.
type ClassRecord struct {
	Name    string
	File    string // Relative to repo root
	Line    int
	LOC     int
	Methods int
	LCOM    int
	TCC     float64
	CBO     int
	History History
	FanIn   int
	FanOut  int
}

// History is the change history of a class as mined from version control.
type History struct {
	Changes      int
	LinesAdded   int
	LinesDeleted int
	NLC          float64
	Authors      []string // Unique, sorted
}

// AuthorCount returns the number of distinct authors.
func (h History) AuthorCount() int {
	return len(h.Authors)
}

// Fan holds the direct predecessor and successor counts of a dependency graph node.
type Fan struct {
	In  int
	Out int
}
