package modules

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/parser"
)

func paths(records []*ModuleRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Path
	}
	return out
}

func TestFileSystemResolver(t *testing.T) {
	fsys := fstest.MapFS{
		"app/main.ql":            {Data: []byte("from .utils import helper\n")},
		"app/utils.ql":           {Data: []byte("def helper():\n    pass\n")},
		"app/models/__init__.ql": {Data: []byte("x = 1\n")},
		"app/views/index.ql":     {Data: []byte("y = 2\n")},
		"lib/fmt.ql":             {Data: []byte("z = 3\n")},
	}
	r := NewFileSystemResolver(fsys)
	assert.Equal(t, "FileSystem", r.Name())

	tests := []struct {
		spec, from, want string
	}{
		{".utils", "app/main.ql", "app/utils.ql"},
		{"./utils", "app/main.ql", "app/utils.ql"},
		{"./utils.ql", "app/main.ql", "app/utils.ql"},
		{"./utils.js", "app/main.ql", "app/utils.ql"},
		{".models", "app/main.ql", "app/models/__init__.ql"},
		{".views", "app/main.ql", "app/views/index.ql"},
		{"..lib.fmt", "app/main.ql", "lib/fmt.ql"},
		{"../lib/fmt", "app/main.ql", "lib/fmt.ql"},
		{"/lib/fmt", "app/main.ql", "lib/fmt.ql"},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.spec, tt.from)
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}

	_, err := r.Resolve(".missing", "app/main.ql")
	assert.ErrorContains(t, err, "module not found")
	_, err = r.Resolve("react", "app/main.ql")
	assert.ErrorContains(t, err, "not a local module")
	_, err = r.Resolve("...up", "app/main.ql")
	assert.ErrorContains(t, err, "outside the project root")

	sf, err := r.ReadSource("app/utils.ql")
	require.NoError(t, err)
	assert.Equal(t, "utils.ql", sf.Name)
	assert.Contains(t, sf.Content, "def helper")
}

func TestMemoryResolver(t *testing.T) {
	r := NewMemoryResolver("")
	assert.Equal(t, "Memory", r.Name())
	r.AddModule("src/a.ql", "x = 1\n")
	r.AddModule("src/pkg/__init__.ql", "y = 1\n")

	got, err := r.Resolve(".a", "src/main.ql")
	require.NoError(t, err)
	assert.Equal(t, "src/a.ql", got)
	got, err = r.Resolve("./pkg", "src/main.ql")
	require.NoError(t, err)
	assert.Equal(t, "src/pkg/__init__.ql", got)

	require.NoError(t, r.UpdateModule("src/a.ql", "x = 2\n"))
	sf, err := r.ReadSource("src/a.ql")
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", sf.Content)
	assert.Error(t, r.UpdateModule("src/none.ql", ""))

	assert.Equal(t, []string{"src/a.ql", "src/pkg/__init__.ql"}, r.ListModules())
	r.RemoveModule("src/a.ql")
	_, err = r.Resolve(".a", "src/main.ql")
	assert.Error(t, err)
}

func TestDependencyGraphOrder(t *testing.T) {
	g := NewDependencyGraph()
	for _, m := range []string{"main", "ui", "util", "log"} {
		assert.True(t, g.MarkDiscovered(m))
	}
	assert.False(t, g.MarkDiscovered("main"))
	g.AddDependency("main", "ui")
	g.AddDependency("main", "util")
	g.AddDependency("ui", "util")
	g.AddDependency("util", "log")
	g.AddDependency("util", "log")

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"log", "util", "ui", "main"}, order)
	assert.Equal(t, 2, g.ImportCount("util"))
	assert.Equal(t, []string{"log"}, g.Dependencies("util"))

	g.AddDependency("log", "main")
	_, err = g.TopologicalOrder()
	assert.ErrorContains(t, err, "circular dependency")

	g.Clear()
	assert.Empty(t, g.Modules())
}

func TestRegistryInvalidate(t *testing.T) {
	reg := NewRegistry()
	reg.Set(&ModuleRecord{Path: "a.ql", Imports: []string{"b.ql"}})
	reg.Set(&ModuleRecord{Path: "b.ql", Imports: []string{"c.ql"}})
	reg.Set(&ModuleRecord{Path: "c.ql"})
	reg.Set(&ModuleRecord{Path: "d.ql"})

	assert.Equal(t, []string{"b.ql"}, reg.Dependents("c.ql"))
	assert.Equal(t, []string{"a.ql", "b.ql", "c.ql"}, reg.Invalidate("c.ql"))
	assert.Equal(t, []string{"d.ql"}, reg.List())
	assert.Equal(t, 1, reg.Size())
	reg.Clear()
	assert.Zero(t, reg.Size())
}

func TestLoaderLoadsTransitively(t *testing.T) {
	mem := NewMemoryResolver("")
	mem.AddModule("main.ql", "from .ui import render\nfrom .util import fmt\nimport react\nrender(fmt(1))\n")
	mem.AddModule("ui.ql", "from .util import fmt\ndef render(x):\n    return fmt(x)\n")
	mem.AddModule("util.ql", "from typing import Any\ndef fmt(x):\n    return str(x)\n")

	loader := NewLoader(mem, nil, LoaderConfig{Workers: 2})
	records, err := loader.Load(context.Background(), "main.ql")
	require.NoError(t, err)
	assert.Equal(t, []string{"util.ql", "ui.ql", "main.ql"}, paths(records))
	for _, r := range records {
		assert.Equal(t, ModuleParsed, r.State, r.Path)
		assert.NotNil(t, r.Program, r.Path)
	}
	assert.Equal(t, []string{"ui.ql", "util.ql"}, records[2].Imports)
	assert.Equal(t, 3, loader.Registry().Size())

	// cached records are reused
	again, err := loader.Load(context.Background(), "main.ql")
	require.NoError(t, err)
	assert.Same(t, records[0], again[0])
}

func TestLoaderCycleFallsBackToDiscoveryOrder(t *testing.T) {
	mem := NewMemoryResolver("")
	mem.AddModule("a.ql", "from .b import y\nx = 1\n")
	mem.AddModule("b.ql", "from .a import x\ny = 2\n")

	records, err := NewLoader(mem, nil, LoaderConfig{}).Load(context.Background(), "a.ql")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ql", "b.ql"}, paths(records))
}

func TestLoaderErrors(t *testing.T) {
	mem := NewMemoryResolver("")
	mem.AddModule("main.ql", "from .broken import x\n")
	mem.AddModule("broken.ql", "def (:\n")
	_, err := NewLoader(mem, nil, LoaderConfig{}).Load(context.Background(), "main.ql")
	assert.Error(t, err)

	mem.AddModule("lonely.ql", "from .nowhere import x\n")
	_, err = NewLoader(mem, nil, LoaderConfig{}).Load(context.Background(), "lonely.ql")
	assert.ErrorContains(t, err, "module not found")

	_, err = NewLoader(mem, nil, LoaderConfig{}).Load(context.Background(), "absent.ql")
	assert.ErrorContains(t, err, "loading absent.ql")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLoader(mem, nil, LoaderConfig{}).Load(ctx, "main.ql")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalImports(t *testing.T) {
	prog, err := parser.ParseString("from .a import x\nimport react\nfrom .a import y\nexport * from \"./b.ql\"\nimport \"./c.css\"\nfrom ..lib import z\n")
	require.NoError(t, err)
	assert.Equal(t, []string{".a", "./b.ql", "..lib"}, LocalImports(prog))
}
