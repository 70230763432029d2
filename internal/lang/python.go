package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	Languages["python"] = &Language{
		Name:         "python",
		Extensions:   []string{".py"},
		lang:         python.GetLanguage(),
		ClassType:    "class_definition",
		Unwrap:       pythonUnwrap,
		IsMethod:     pythonIsMethod,
		MemberAccess: pythonMemberAccess,
		IsReference:  pythonIsReference,
		Rejects:      pythonRejects,
		Statements:   pythonStatements,
	}
}

// pythonUnwrap returns the class or function inside a decorated_definition.
func pythonUnwrap(node *sitter.Node) *sitter.Node {
	if node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

// pythonIsMethod reports whether node is a plain (non-async) function definition.
func pythonIsMethod(node *sitter.Node) bool {
	if node.Type() != "function_definition" {
		return false
	}
	if node.ChildCount() > 0 && node.Child(0).Type() == "async" {
		return false
	}
	return true
}

func pythonMemberAccess(node *sitter.Node, source []byte) (string, string, bool) {
	if node.Type() != "attribute" {
		return "", "", false
	}
	obj := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	for obj != nil && obj.Type() == "parenthesized_expression" && obj.NamedChildCount() == 1 {
		obj = obj.NamedChild(0)
	}
	if obj == nil || attr == nil || obj.Type() != "identifier" {
		return "", "", false
	}
	return NodeText(obj, source), NodeText(attr, source), true
}

// pythonIsReference mirrors which identifiers the Python compiler treats as
// names: everything in expression position, but not the identifiers that only
// label a definition, a parameter, a keyword, an import or an exception alias.
func pythonIsReference(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return true
	}

	switch parent.Type() {
	case "function_definition", "class_definition", "default_parameter", "typed_default_parameter", "keyword_argument":
		return !SameNode(parent.ChildByFieldName("name"), node)
	case "attribute":
		return !SameNode(parent.ChildByFieldName("attribute"), node)
	case "parameters", "lambda_parameters", "typed_parameter":
		return false
	case "list_splat_pattern", "dictionary_splat_pattern":
		return !isParameter(parent.Parent())
	case "global_statement", "nonlocal_statement":
		return false
	case "dotted_name":
		if insideImport(parent) {
			return false
		}
		return isPatternValue(parent, node)
	case "aliased_import", "import_statement", "import_from_statement", "future_import_statement":
		return !insideImport(parent)
	case "except_clause":
		return !followsAs(node)
	case "as_pattern_target":
		pattern := parent.Parent()
		if pattern == nil || pattern.Parent() == nil {
			return true
		}
		switch pattern.Parent().Type() {
		case "except_clause", "case_clause", "case_pattern":
			return false
		}
		return true
	case "as_pattern":
		// "case P() as name" binds name directly under the pattern.
		return !followsAs(node)
	case "keyword_pattern":
		return !SameNode(parent.NamedChild(0), node)
	case "splat_pattern":
		return false
	}
	return true
}

// isPatternValue reports whether an identifier inside a match pattern's
// dotted name is loaded. Only the head of a dotted value ("Color" in
// Color.RED) or of a class pattern is; a bare name is a capture.
func isPatternValue(dotted, node *sitter.Node) bool {
	if !SameNode(dotted.NamedChild(0), node) {
		return false
	}
	if dotted.NamedChildCount() > 1 {
		return true
	}
	parent := dotted.Parent()
	return parent != nil && parent.Type() == "class_pattern"
}

func isParameter(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "parameters", "lambda_parameters", "typed_parameter":
		return true
	}
	return false
}

func insideImport(node *sitter.Node) bool {
	for current := node; current != nil; current = current.Parent() {
		switch current.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
			return true
		case "dotted_name", "aliased_import", "relative_import":
			continue
		}
		return false
	}
	return false
}

// followsAs reports whether node is the alias of "except E as e" (or the
// legacy "except E, e", which pythonRejects refuses anyway).
func followsAs(node *sitter.Node) bool {
	prev := node.PrevSibling()
	if prev == nil {
		return false
	}
	return prev.Type() == "as" || prev.Type() == ","
}

// pythonRejects flags Python 2 statements tree-sitter still parses: print and
// exec statements and the comma form of an except alias.
func pythonRejects(node *sitter.Node) bool {
	switch node.Type() {
	case "print_statement", "exec_statement":
		return true
	case "except_clause":
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "," {
				return true
			}
		}
	}
	return false
}

// pythonStatements lists the statements nested directly under node the way
// Python's ast does: decorators are transparent, an elif is an If nested in
// the orelse of the previous branch, and each except handler or match case
// is a level of its own.
func pythonStatements(node *sitter.Node) []*sitter.Node {
	switch node.Type() {
	case "module":
		return statementList(node)
	case "class_definition", "function_definition", "with_statement",
		"except_clause", "except_group_clause", "case_clause":
		return blockStatements(node)
	case "match_statement":
		if cases := blockStatements(node); len(cases) > 0 {
			return cases
		}
		var cases []*sitter.Node
		for _, child := range statementList(node) {
			if child.Type() == "case_clause" {
				cases = append(cases, child)
			}
		}
		return cases
	case "if_statement":
		return append(blockStatements(node), orElse(firstNamed(node, "elif_clause", "else_clause"))...)
	case "elif_clause":
		return append(blockStatements(node), orElse(nextClause(node))...)
	case "for_statement", "while_statement":
		return append(blockStatements(node), blockStatements(firstNamed(node, "else_clause"))...)
	case "try_statement":
		out := blockStatements(node)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "except_clause", "except_group_clause":
				out = append(out, child)
			case "else_clause", "finally_clause":
				out = append(out, blockStatements(child)...)
			}
		}
		return out
	}
	return nil
}

// orElse returns the statements of an if's orelse starting at clause.
func orElse(clause *sitter.Node) []*sitter.Node {
	if clause == nil {
		return nil
	}
	if clause.Type() == "elif_clause" {
		return []*sitter.Node{clause}
	}
	return blockStatements(clause)
}

func nextClause(node *sitter.Node) *sitter.Node {
	for next := node.NextNamedSibling(); next != nil; next = next.NextNamedSibling() {
		switch next.Type() {
		case "elif_clause", "else_clause":
			return next
		case "comment":
			continue
		}
		return nil
	}
	return nil
}

// blockStatements returns the statements of the first block under node.
func blockStatements(node *sitter.Node) []*sitter.Node {
	block := firstNamed(node, "block")
	if block == nil {
		return nil
	}
	return statementList(block)
}

func statementList(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, pythonUnwrap(child))
	}
	return out
}

func firstNamed(node *sitter.Node, types ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
