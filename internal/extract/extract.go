// Package extract computes per-class structural metrics from source files
// using tree-sitter.
package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/classmetrics/internal/lang"
	"github.com/phobologic/classmetrics/internal/metrics"
	"github.com/phobologic/classmetrics/internal/model"
)

// DefaultSelfName is the conventional instance-reference identifier.
const DefaultSelfName = "self"

// Options tunes extraction.
type Options struct {
	// SelfName is the receiver identifier whose attribute accesses feed LCOM/TCC.
	SelfName string
}

// Classes parses a source file and returns one record per class definition,
// outer classes before nested ones. Source that does not parse cleanly yields
// no records. The parser must be created for l.
// filePath is used only for ClassRecord.File and should be the repo-relative path.
func Classes(l *lang.Language, parser *sitter.Parser, source []byte, filePath string, opts Options) []model.ClassRecord {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() || rejected(l, root) {
		return nil
	}

	selfName := opts.SelfName
	if selfName == "" {
		selfName = DefaultSelfName
	}

	var records []model.ClassRecord
	visit := func(node *sitter.Node) bool {
		if node.Type() == l.ClassType {
			records = append(records, classRecord(l, node, source, filePath, selfName))
		}
		return true
	}
	if l.Statements != nil {
		BreadthFirst(root, l.Statements, visit)
	} else {
		WalkBreadthFirst(root, visit)
	}
	return records
}

// rejected reports whether any node under root is syntax l refuses.
func rejected(l *lang.Language, root *sitter.Node) bool {
	if l.Rejects == nil {
		return false
	}
	found := false
	Walk(root, func(node *sitter.Node) bool {
		if found {
			return false
		}
		found = l.Rejects(node)
		return !found
	})
	return found
}

func classRecord(l *lang.Language, classNode *sitter.Node, source []byte, filePath, selfName string) model.ClassRecord {
	name := lang.DefinitionName(classNode, source)
	statements := bodyStatements(classNode)

	attrs := metrics.NewMethodAttributes()
	methods := 0
	for _, stmt := range statements {
		def := l.Unwrap(stmt)
		if !l.IsMethod(def) {
			continue
		}
		methods++
		method := lang.DefinitionName(def, source)
		attrs.AddMethod(method)
		for attr := range MemberAccesses(l, stmt, source, selfName) {
			attrs.Add(method, attr)
		}
	}

	return model.ClassRecord{
		Name:    name,
		File:    filePath,
		Line:    int(classNode.StartPoint().Row) + 1,
		LOC:     len(statements),
		Methods: methods,
		LCOM:    metrics.LCOM(attrs),
		TCC:     metrics.TCC(attrs),
		CBO:     len(References(l, withDecorators(classNode), source, name)),
	}
}

// bodyStatements returns the immediate statements of a class body.
func bodyStatements(classNode *sitter.Node) []*sitter.Node {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// withDecorators returns the decorator wrapper of a definition, if any.
func withDecorators(def *sitter.Node) *sitter.Node {
	if parent := def.Parent(); parent != nil && parent.Type() == "decorated_definition" {
		return parent
	}
	return def
}

// MemberAccesses returns the names of all attributes accessed through
// receiver anywhere under root (receiver.name patterns).
func MemberAccesses(l *lang.Language, root *sitter.Node, source []byte, receiver string) map[string]struct{} {
	return Collect(root, func(node *sitter.Node) (string, bool) {
		recv, member, ok := l.MemberAccess(node, source)
		if !ok || recv != receiver {
			return "", false
		}
		return member, true
	})
}

// References returns every distinct identifier referenced under root except
// exclude. Local variables, builtins and receiver names all count.
func References(l *lang.Language, root *sitter.Node, source []byte, exclude string) map[string]struct{} {
	return Collect(root, func(node *sitter.Node) (string, bool) {
		if node.Type() != "identifier" || !l.IsReference(node) {
			return "", false
		}
		name := lang.NodeText(node, source)
		if name == exclude {
			return "", false
		}
		return name, true
	})
}
