package driver

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/modules"
)

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.ql": "x = 1\n",
		"b.ql": "def f():\n    return 2\n",
		"c.ql": "def (:\n",
	}
	var paths []string
	for _, name := range []string{"a.ql", "b.ql", "c.ql"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(files[name]), 0o644))
		paths = append(paths, p)
	}

	cfg := DefaultConfig()
	cfg.Workers = 2
	results, err := CompileFiles(context.Background(), paths, cfg)
	require.Error(t, err)
	require.Len(t, results, 3)
	assert.Contains(t, results[0].JavaScript, "let x = 1;")
	assert.Contains(t, results[1].JavaScript, "function f() {")
	assert.Nil(t, results[2])

	var fe *FileError
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, paths[2], fe.Path)
	require.Len(t, Diagnostics(err), 1)
}

func TestCompileFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := filepath.Join(t.TempDir(), "a.ql")
	require.NoError(t, os.WriteFile(p, []byte("x = 1\n"), 0o644))

	_, err := CompileFiles(ctx, []string{p}, DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func newMemoryProject(t *testing.T) (*Project, *modules.MemoryResolver) {
	t.Helper()
	r := modules.NewMemoryResolver("test")
	r.AddModule("main.ql", "from .lib.util import double\nprint(double(2))\n")
	r.AddModule("lib/util.ql", "from .consts import FACTOR\n\nexport def double(x):\n    return x * FACTOR\n")
	r.AddModule("lib/consts.ql", "export FACTOR = 2\n")
	p, err := NewProject(r, DefaultConfig())
	require.NoError(t, err)
	return p, r
}

func TestProjectBuild(t *testing.T) {
	p, _ := newMemoryProject(t)
	results, err := p.Build(context.Background(), "main.ql")
	require.NoError(t, err)
	require.Len(t, results, 3)

	var outputs []string
	for _, res := range results {
		outputs = append(outputs, res.OutputPath)
	}
	assert.Equal(t, []string{"lib/consts.js", "lib/util.js", "main.js"}, outputs)
	assert.Contains(t, results[2].JavaScript, `import { double } from "./lib/util.js";`)
	assert.Contains(t, results[1].JavaScript, "export function double(x) {")

	order, err := p.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/consts.ql", "lib/util.ql", "main.ql"}, order)
	assert.ElementsMatch(t, []string{"main.ql", "lib/util.ql", "lib/consts.ql"}, p.Modules())
}

func TestProjectInvalidate(t *testing.T) {
	p, r := newMemoryProject(t)
	_, err := p.Build(context.Background(), "main.ql")
	require.NoError(t, err)

	dropped := p.Invalidate("lib/util.ql")
	assert.Equal(t, []string{"lib/util.ql", "main.ql"}, dropped)
	assert.Equal(t, []string{"lib/consts.ql"}, p.Modules())

	require.NoError(t, r.UpdateModule("lib/util.ql", "export def double(x):\n    return x + x\n"))
	results, err := p.Build(context.Background(), "main.ql")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].JavaScript, "return x + x;")
}

func TestProjectMissingImport(t *testing.T) {
	r := modules.NewMemoryResolver("test")
	r.AddModule("main.ql", "from .missing import thing\n")
	p, err := NewProject(r, DefaultConfig())
	require.NoError(t, err)

	_, err = p.Build(context.Background(), "main.ql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module not found")
}

func TestNewProjectValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Check = "sometimes"
	_, err := NewDirProject(t.TempDir(), cfg)
	assert.Error(t, err)
}

func TestCompileFilesTypeErrorsAreDiagnostics(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.ql")
	require.NoError(t, os.WriteFile(p, []byte("x = 1 + 'a'\ny = 2 - 'b'\n"), 0o644))

	cfg := DefaultConfig()
	cfg.Check = CheckError
	results, err := CompileFiles(context.Background(), []string{p}, cfg)
	require.Error(t, err)
	assert.Nil(t, results[0])

	diags := Diagnostics(err)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, "Type", d.Kind())
		assert.Equal(t, p, d.Pos().Source.DisplayPath())
	}
}
