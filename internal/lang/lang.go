// Package lang provides a language registry mapping file extensions to
// tree-sitter languages and the syntax hooks the class extractor needs.
package lang

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// ClassType is the node type of a class definition.
	ClassType string

	// Unwrap returns the definition wrapped by a decorator node, or the node
	// itself when it is not a wrapper.
	Unwrap func(node *sitter.Node) *sitter.Node

	// IsMethod reports whether an (unwrapped) class body statement is a method.
	IsMethod func(node *sitter.Node) bool

	// MemberAccess returns the receiver and member name of an attribute access
	// node (e.g. "self", "x" for self.x). ok is false for any other node.
	MemberAccess func(node *sitter.Node, source []byte) (receiver, member string, ok bool)

	// IsReference reports whether an identifier node is a name reference rather
	// than a binding that only introduces a name (definition names, parameters,
	// keyword names, imports).
	IsReference func(node *sitter.Node) bool

	// Rejects reports whether a node is syntax the grammar still accepts but
	// the language no longer does. A file containing one is unparseable.
	Rejects func(node *sitter.Node) bool

	// Statements returns the statements nested directly under node, in the
	// order the language's own syntax tree lists them. Class discovery walks
	// these breadth-first.
	Statements func(node *sitter.Node) []*sitter.Node
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// SameNode reports whether a and b denote the same syntax node.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// DefinitionName returns the text of the "name" field of a definition node.
func DefinitionName(node *sitter.Node, source []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return NodeText(name, source)
}
