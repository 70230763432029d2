// Package graph reduces an externally generated class dependency graph to
// per-class fan-in/fan-out counts and joins them into class records.
package graph

import (
	"errors"
	"fmt"
	"strings"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/phobologic/classmetrics/internal/model"
)

var (
	// ErrNoGraph is returned when the DOT input contains no graph.
	ErrNoGraph = errors.New("no graph in dot input")
	// ErrUndirected is returned for undirected graphs, which have no fan-in/fan-out.
	ErrUndirected = errors.New("dependency graph is not directed")
)

// FanTable maps a bare class name to its fan-in/fan-out counts.
type FanTable map[string]model.Fan

// Lookup returns the counts for name, zero if the class is not in the graph.
func (t FanTable) Lookup(name string) model.Fan {
	return t[name]
}

// BareName strips quoting and package qualification from a node ID:
// "pkg.module.Foo" becomes Foo.
func BareName(id string) string {
	id = strings.Trim(id, `"`)
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

// ParseDOT parses a DOT description and computes, for each node, the number of
// direct predecessors (fan-in) and successors (fan-out). Nodes are keyed by
// BareName; when several nodes collapse to the same bare name the last one wins.
func ParseDOT(data []byte) (FanTable, error) {
	file, err := dot.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing dot: %w", err)
	}
	if len(file.Graphs) == 0 {
		return nil, ErrNoGraph
	}
	g := file.Graphs[0]
	if !g.Directed {
		return nil, ErrUndirected
	}

	b := newBuilder()
	b.declare(g.Stmts)
	b.connect(g.Stmts)
	return b.table(), nil
}

// builder accumulates nodes in first-seen order: declared nodes first, then
// nodes that only appear as edge endpoints.
type builder struct {
	g         *simple.DirectedGraph
	ids       map[string]int64
	order     []string
	selfLoops map[string]bool
}

func newBuilder() *builder {
	return &builder{
		g:         simple.NewDirectedGraph(),
		ids:       make(map[string]int64),
		selfLoops: make(map[string]bool),
	}
}

func (b *builder) node(id string) gonumgraph.Node {
	if n, ok := b.ids[id]; ok {
		return simple.Node(n)
	}
	n := int64(len(b.order))
	b.ids[id] = n
	b.order = append(b.order, id)
	b.g.AddNode(simple.Node(n))
	return simple.Node(n)
}

func (b *builder) declare(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			b.node(s.Node.ID)
		case *ast.Subgraph:
			b.declare(s.Stmts)
		}
	}
}

func (b *builder) connect(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.EdgeStmt:
			from := vertexIDs(s.From)
			for e := s.To; e != nil; e = e.To {
				to := vertexIDs(e.Vertex)
				for _, f := range from {
					for _, t := range to {
						b.edge(f, t)
					}
				}
				from = to
			}
		case *ast.Subgraph:
			b.connect(s.Stmts)
		}
	}
}

func (b *builder) edge(from, to string) {
	f := b.node(from)
	t := b.node(to)
	if from == to {
		// simple graphs reject self edges; a loop makes the node its own
		// predecessor and successor.
		b.selfLoops[from] = true
		return
	}
	b.g.SetEdge(b.g.NewEdge(f, t))
}

func (b *builder) table() FanTable {
	table := make(FanTable, len(b.order))
	for i, id := range b.order {
		fan := model.Fan{
			In:  b.g.To(int64(i)).Len(),
			Out: b.g.From(int64(i)).Len(),
		}
		if b.selfLoops[id] {
			fan.In++
			fan.Out++
		}
		table[BareName(id)] = fan
	}
	return table
}

// vertexIDs returns the node IDs a vertex denotes: the node itself, or every
// node mentioned inside a subgraph.
func vertexIDs(v ast.Vertex) []string {
	switch v := v.(type) {
	case *ast.Node:
		return []string{v.ID}
	case *ast.Subgraph:
		var ids []string
		for _, stmt := range v.Stmts {
			switch s := stmt.(type) {
			case *ast.NodeStmt:
				ids = append(ids, s.Node.ID)
			case *ast.EdgeStmt:
				ids = append(ids, vertexIDs(s.From)...)
				for e := s.To; e != nil; e = e.To {
					ids = append(ids, vertexIDs(e.Vertex)...)
				}
			case *ast.Subgraph:
				ids = append(ids, vertexIDs(s)...)
			}
		}
		return ids
	}
	return nil
}

// Join attaches fan-in/fan-out to every record by bare class name. Classes
// absent from the graph get zero; classes sharing a name share the counts.
func Join(records []model.ClassRecord, table FanTable) {
	for i := range records {
		fan := table.Lookup(records[i].Name)
		records[i].FanIn = fan.In
		records[i].FanOut = fan.Out
	}
}
