package lang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".go", ""},
		{".rb", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	py, ok := Languages["python"]
	require.True(t, ok, "python language not registered")
	assert.NotNil(t, py.GetLanguage())
	assert.NotNil(t, py.NewParser())
	assert.Equal(t, "class_definition", py.ClassType)
}

// parsePython returns the root node of source and the tree to close.
func parsePython(t *testing.T, source string) (*sitter.Node, func()) {
	t.Helper()
	tree, err := Languages["python"].NewParser().ParseCtx(context.Background(), nil, []byte(source))
	require.NoError(t, err)
	return tree.RootNode(), tree.Close
}

// collect returns every node of the given type in document order.
func collect(node *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	if node.Type() == typ {
		out = append(out, node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		out = append(out, collect(node.Child(i), typ)...)
	}
	return out
}

func references(t *testing.T, source string) []string {
	t.Helper()
	root, done := parsePython(t, source)
	defer done()

	py := Languages["python"]
	var names []string
	for _, id := range collect(root, "identifier") {
		if py.IsReference(id) {
			names = append(names, NodeText(id, []byte(source)))
		}
	}
	return names
}

func TestPythonIsReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"definition names", "def f(a, b=c):\n    return a\n", []string{"c", "a"}},
		{"attribute member", "x = self.value\n", []string{"x", "self"}},
		{"keyword argument", "f(key=val)\n", []string{"f", "val"}},
		{"splat parameters", "def f(*args, **kw):\n    g(*xs, **opts)\n", []string{"g", "xs", "opts"}},
		{"typed parameter", "def f(a: int) -> str:\n    pass\n", []string{"int", "str"}},
		{"imports", "import os\nfrom a.b import c as d\n", nil},
		{"global", "def f():\n    global counter\n    counter = 1\n", []string{"counter"}},
		{"lambda", "g = lambda y: y + z\n", []string{"g", "y", "z"}},
		{"class bases", "class A(Base, metaclass=Meta):\n    pass\n", []string{"Base", "Meta"}},
		{"match patterns", "match p:\n    case Point(x=0, y=yy):\n        pass\n    case Color.RED:\n        pass\n    case [a, *rest] as whole:\n        pass\n", []string{"p", "Point", "Color"}},
		{"parenthesized receiver", "(self).x\n", []string{"self"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, references(t, tt.source))
		})
	}
}

func TestPythonExceptAlias(t *testing.T) {
	t.Parallel()

	got := references(t, "try:\n    run()\nexcept ValueError as err:\n    log(err)\n")
	assert.Equal(t, []string{"run", "ValueError", "log", "err"}, got)
}

func TestPythonIsMethod(t *testing.T) {
	t.Parallel()

	source := "def f():\n    pass\n\nasync def g():\n    pass\n"
	root, done := parsePython(t, source)
	defer done()

	defs := collect(root, "function_definition")
	require.Len(t, defs, 2)

	py := Languages["python"]
	assert.True(t, py.IsMethod(defs[0]))
	assert.False(t, py.IsMethod(defs[1]))
}

func TestPythonUnwrapAndMemberAccess(t *testing.T) {
	t.Parallel()

	source := "@property\ndef size(self):\n    return self.n\n"
	root, done := parsePython(t, source)
	defer done()

	py := Languages["python"]
	decorated := collect(root, "decorated_definition")
	require.Len(t, decorated, 1)
	assert.Equal(t, "function_definition", py.Unwrap(decorated[0]).Type())

	attrs := collect(root, "attribute")
	require.Len(t, attrs, 1)
	recv, member, ok := py.MemberAccess(attrs[0], []byte(source))
	require.True(t, ok)
	assert.Equal(t, "self", recv)
	assert.Equal(t, "n", member)
}
