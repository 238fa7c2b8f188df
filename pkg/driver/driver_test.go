package driver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
)

func TestFacade(t *testing.T) {
	toks, err := Tokenize("x = 1\n")
	require.NoError(t, err)
	assert.Equal(t, lexer.EOF, toks[len(toks)-1].Type)

	prog, err := Parse(toks)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	js, err := Transpile(prog, "es6", false)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", js)
}

func TestCompileString(t *testing.T) {
	res, err := CompileString("def add(a: int, b: int = 1) -> int:\n    return a + b\n", "", DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, res.JavaScript, "function add(a, b = 1) {")
	assert.Equal(t, "out.js", res.OutputPath)
	assert.Empty(t, res.TypeErrors)
	assert.Nil(t, res.SourceMap)
}

func TestCompileStringErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind string
	}{
		{"lex", "x = $\n", "Lex"},
		{"syntax", "def (:\n", "Syntax"},
		{"indentation", "if x:\n        a()\n    b()\n", "Lex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src, "bad.ql", DefaultConfig())
			require.Error(t, err)
			diags := Diagnostics(err)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.kind, diags[0].Kind())
			require.NotNil(t, diags[0].Pos().Source)
			assert.Equal(t, "bad.ql", diags[0].Pos().Source.DisplayPath())
		})
	}
}

func TestLenientIndent(t *testing.T) {
	src := "if x:\n        a()\n    b()\n"
	cfg := DefaultConfig()
	cfg.LenientIndent = true
	_, err := CompileString(src, "", cfg)
	require.Error(t, err)
	// the lexer accepts the ladder; the parser rejects the stray block
	diags := Diagnostics(err)
	require.Len(t, diags, 1)
	assert.Equal(t, "Syntax", diags[0].Kind())
	assert.Contains(t, diags[0].Message(), "unexpected indent")
}

func TestCheckModes(t *testing.T) {
	src := "x = 1 + 'a'\n"

	cfg := DefaultConfig()
	res, err := CompileString(src, "", cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TypeErrors)
	assert.NotEmpty(t, res.JavaScript)

	cfg.Check = CheckOff
	res, err = CompileString(src, "", cfg)
	require.NoError(t, err)
	assert.Empty(t, res.TypeErrors)

	cfg.Check = CheckError
	res, err = CompileString(src, "", cfg)
	require.Error(t, err)
	assert.Empty(t, res.JavaScript)
	diags := Diagnostics(err)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Type", diags[0].Kind())
	assert.Len(t, TypeDiagnostics(res.TypeErrors), len(diags))
}

func TestUnknownTargetIsRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "amd"
	_, err := CompileString("x = 1\n", "", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestSourceMap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceMap = true
	res, err := CompileString("x = 1\n", "app.ql", cfg)
	require.NoError(t, err)
	assert.Equal(t, "app.js", res.OutputPath)
	assert.Contains(t, res.JavaScript, "//# sourceMappingURL=app.js.map\n")

	var m map[string]any
	require.NoError(t, json.Unmarshal(res.SourceMap, &m))
	assert.EqualValues(t, 3, m["version"])
	assert.Equal(t, "app.js", m["file"])
	assert.Equal(t, []any{"app.ql"}, m["sources"])
	assert.Equal(t, "", m["mappings"])
}

func TestCompileFileAndWrite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "main.ql")
	require.NoError(t, os.WriteFile(in, []byte("print('hi')\n"), 0o644))

	cfg := DefaultConfig()
	cfg.OutDir = filepath.Join(dir, "dist")
	cfg.SourceMap = true
	res, err := CompileFile(in, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dist", "main.js"), res.OutputPath)

	require.NoError(t, WriteJavaScriptFile(res))
	js, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(js), `console.log("hi");`)
	_, err = os.Stat(res.OutputPath + ".map")
	assert.NoError(t, err)
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "nope.ql"), DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, Diagnostics(err))
}

func TestWriteSourceMapWithoutMap(t *testing.T) {
	res, err := CompileString("x = 1\n", "a.ql", DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, WriteSourceMap(res))
}

func TestDiagnosticsUnwrapsChains(t *testing.T) {
	inner := &errors.SyntaxError{Msg: "bad"}
	err := &FileError{Path: "x.ql", Err: inner}
	diags := Diagnostics(err)
	require.Len(t, diags, 1)
	assert.Equal(t, "Syntax", diags[0].Kind())
	assert.Nil(t, Diagnostics(nil))
}
