package extract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Visit is called for every node of a walk. Returning false skips the node's children.
type Visit func(node *sitter.Node) bool

// Walk visits node and its descendants depth-first in document order.
func Walk(node *sitter.Node, visit Visit) {
	if node == nil || !visit(node) {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		Walk(node.NamedChild(i), visit)
	}
}

// WalkBreadthFirst visits node and its descendants level by level.
func WalkBreadthFirst(node *sitter.Node, visit Visit) {
	BreadthFirst(node, namedChildren, visit)
}

// BreadthFirst visits node and everything reachable through children level
// by level, in queue order.
func BreadthFirst(node *sitter.Node, children func(*sitter.Node) []*sitter.Node, visit Visit) {
	if node == nil {
		return
	}
	queue := []*sitter.Node{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visit(current) {
			continue
		}
		queue = append(queue, children(current)...)
	}
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, node.NamedChild(i))
	}
	return out
}

// Collect returns the set of strings match yields over every node under root.
func Collect(root *sitter.Node, match func(node *sitter.Node) (string, bool)) map[string]struct{} {
	set := make(map[string]struct{})
	Walk(root, func(node *sitter.Node) bool {
		if s, ok := match(node); ok {
			set[s] = struct{}{}
		}
		return true
	})
	return set
}
