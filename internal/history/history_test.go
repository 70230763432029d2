package history

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/phobologic/classmetrics/internal/model"
)

const sampleLog = `commit 1111111111111111111111111111111111111111
Author: Alice <alice@example.com>
Date:   Mon Jan 1 10:00:00 2024 +0000

    Add Foo

diff --git a/pkg/foo.py b/pkg/foo.py
--- /dev/null
+++ b/pkg/foo.py
@@ -0,0 +1,3 @@
+class Foo:
+    def a(self):
+        return self.x

commit 2222222222222222222222222222222222222222
Author: Bob <bob@example.com>
Date:   Tue Jan 2 10:00:00 2024 +0000

    Tweak Foo

diff --git a/pkg/foo.py b/pkg/foo.py
--- a/pkg/foo.py
+++ b/pkg/foo.py
@@ -1,3 +1,3 @@
 class Foo:
     def a(self):
-        return self.x
+        return self.y
`

func TestParse(t *testing.T) {
	t.Parallel()

	h := Parse(sampleLog)

	assert.Equal(t, 2, h.Changes)
	assert.Equal(t, 4, h.LinesAdded)
	assert.Equal(t, 1, h.LinesDeleted)
	assert.Equal(t, []string{"Alice <alice@example.com>", "Bob <bob@example.com>"}, h.Authors)
	assert.Equal(t, 2, h.AuthorCount())
	assert.InDelta(t, 2.5, h.NLC, 0)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	h := Parse("")
	assert.Equal(t, model.History{}, h)
	assert.InDelta(t, 0.0, h.NLC, 0)
}

func TestParseDeduplicatesAuthors(t *testing.T) {
	t.Parallel()

	raw := "commit a\nAuthor: Alice <a@x>\n+x\ncommit b\nAuthor:   Alice <a@x>  \n-y\n"
	h := Parse(raw)
	assert.Equal(t, []string{"Alice <a@x>"}, h.Authors)
	assert.Equal(t, 2, h.Changes)
	assert.InDelta(t, 1.0, h.NLC, 0)
}

func TestParseCountsCommitWordAnywhere(t *testing.T) {
	t.Parallel()

	raw := "commit a\nAuthor: A <a@x>\n\n    Revert commit b\n\n+line\n"
	h := Parse(raw)
	assert.Equal(t, 2, h.Changes)
	assert.Equal(t, 1, h.LinesAdded)
	assert.InDelta(t, 0.5, h.NLC, 0)
}

func TestParseNLCRounding(t *testing.T) {
	t.Parallel()

	raw := "commit a\ncommit b\ncommit c\n+1\n+2\n+3\n+4\n+5\n-6\n-7\n-8\n-9\n-10\n"
	h := Parse(raw)
	assert.Equal(t, 3, h.Changes)
	assert.InDelta(t, 3.33, h.NLC, 0)
}

func TestParseLongLines(t *testing.T) {
	t.Parallel()

	raw := "commit abc123\nAuthor: Alice <alice@example.com>\n" +
		"+" + strings.Repeat("x", 17<<20) + "\n" +
		"+short\n-gone\n"

	h := Parse(raw)
	assert.Equal(t, 1, h.Changes)
	assert.Equal(t, 2, h.LinesAdded)
	assert.Equal(t, 1, h.LinesDeleted)
	assert.Equal(t, []string{"Alice <alice@example.com>"}, h.Authors)
}

type fakeRunner struct {
	out  []byte
	err  error
	dir  string
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.dir, f.name, f.args = dir, name, args
	return f.out, f.err
}

func TestMinerRunsLineHistory(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{out: []byte(sampleLog)}
	m := NewMiner("/repo", "", zaptest.NewLogger(t))
	m.Runner = runner

	h := m.Mine(context.Background(), "pkg/foo.py", "Foo")

	assert.Equal(t, "/repo", runner.dir)
	assert.Equal(t, "git", runner.name)
	assert.Equal(t, []string{"--no-pager", "log", "--no-color", "-L", ":class Foo:pkg/foo.py"}, runner.args)
	assert.Equal(t, 2, h.Changes)
}

func TestMinerFailureYieldsZero(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{out: []byte("fatal: no such path"), err: errors.New("exit status 128")}
	m := NewMiner("/repo", "git", zaptest.NewLogger(t))
	m.Runner = runner

	h := m.Mine(context.Background(), "new.py", "Fresh")
	require.Equal(t, model.History{}, h)
	assert.Equal(t, 0, h.AuthorCount())
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	var src Source = Disabled{}
	assert.Equal(t, model.History{}, src.Mine(context.Background(), "a.py", "A"))
}

func TestMineRealRepository(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		args = append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	write := func(content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.py"), []byte(content), 0o644))
	}

	git("init", "-q")
	write("class Foo:\n    def a(self):\n        return self.x\n")
	git("add", "foo.py")
	git("commit", "-q", "-m", "add Foo")
	write("class Foo:\n    def a(self):\n        return self.y\n")
	git("commit", "-q", "-a", "-m", "rename attribute")

	m := NewMiner(dir, "", zaptest.NewLogger(t))

	h := m.Mine(context.Background(), "foo.py", "Foo")
	assert.Equal(t, 2, h.Changes)
	assert.Equal(t, 4, h.LinesAdded)
	assert.Equal(t, 1, h.LinesDeleted)
	assert.InDelta(t, 2.5, h.NLC, 0)
	assert.Equal(t, []string{"Test <test@example.com>"}, h.Authors)

	assert.Equal(t, model.History{}, m.Mine(context.Background(), "foo.py", "Missing"))
}
