package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()
	saved := slog.Default()
	t.Cleanup(func() { slog.SetDefault(saved) })
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ql", "x = 1\n")
	b := writeSource(t, dir, "b.ql", "y = 2\n")
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"unknown flag", []string{"-frobnicate", a}},
		{"expr and files", []string{"-e", "x = 1\n", a}},
		{"output with two files", []string{"-o", "out.js", a, b}},
		{"watch with expr", []string{"-watch", "-e", "x = 1\n"}},
		{"watch stdin", []string{"-watch", "-"}},
		{"stdin and files", []string{"-", a}},
		{"bad target", []string{"-target", "amd", a}},
		{"bad check", []string{"-check", "maybe", a}},
		{"missing config", []string{"-config", filepath.Join(dir, "nope.toml"), a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Usage: quill")
}

func TestExpr(t *testing.T) {
	code, stdout, _ := runCLI(t, "-e", "print('hi')\n")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "console.log(\"hi\");\n", stdout)
}

func TestStdin(t *testing.T) {
	code, stdout, _ := runCLIWithInput(t, "x = 1\n", "-")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "let x = 1;\n", stdout)

	code, _, stderr := runCLIWithInput(t, "x = $\n", "-")
	assert.Equal(t, exitCompile, code)
	assert.Contains(t, stderr, "<stdin>:1:")

	code, stdout, _ = runCLIWithInput(t, "x = 1\n", "-tokens", "-")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "EOF")
}

func TestExprCommonJS(t *testing.T) {
	code, stdout, _ := runCLI(t, "-target", "cjs", "-e", "export def f():\n    return 1\n")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "function f() {")
	assert.Contains(t, stdout, "module.exports")
}

func TestExprHighlight(t *testing.T) {
	code, stdout, _ := runCLI(t, "-highlight", "-e", "x = 1\n")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "\x1b[")
	assert.Contains(t, stdout, "let")
}

func TestExprErrors(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-e", "x = $\n")
	assert.Equal(t, exitCompile, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Lex Error")
	assert.Contains(t, stderr, "x = $")
}

func TestTypeErrorsByCheckMode(t *testing.T) {
	src := "x = 1 + 'a'\n"

	code, stdout, stderr := runCLI(t, "-e", src)
	assert.Equal(t, exitOK, code)
	assert.NotEmpty(t, stdout)
	warned := strings.Count(stderr, "Type Error")
	assert.Positive(t, warned)

	// error mode prints each finding once, as the failure
	code, stdout, stderr = runCLI(t, "-check", "error", "-e", src)
	assert.Equal(t, exitCompile, code)
	assert.Empty(t, stdout)
	assert.Equal(t, warned, strings.Count(stderr, "Type Error"))

	code, _, stderr = runCLI(t, "-check", "off", "-e", src)
	assert.Equal(t, exitOK, code)
	assert.NotContains(t, stderr, "Type Error")
}

func TestCompileFilesToOutDir(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ql", "def f():\n    return 1\n")
	b := writeSource(t, dir, "b.ql", "print(2)\n")
	dist := filepath.Join(dir, "dist")

	code, _, stderr := runCLI(t, "-outdir", dist, "-sourcemap", a, b)
	require.Equal(t, exitOK, code, stderr)

	js, err := os.ReadFile(filepath.Join(dist, "a.js"))
	require.NoError(t, err)
	assert.Contains(t, string(js), "function f() {")
	assert.Contains(t, string(js), "//# sourceMappingURL=a.js.map")
	assert.FileExists(t, filepath.Join(dist, "a.js.map"))
	assert.FileExists(t, filepath.Join(dist, "b.js"))
}

func TestCompileFileOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.ql", "x = 1\n")

	out := filepath.Join(dir, "bundle.js")
	code, _, _ := runCLI(t, "-o", out, a)
	require.Equal(t, exitOK, code)
	js, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", string(js))

	code, stdout, _ := runCLI(t, "-o", "-", a)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "let x = 1;\n", stdout)
}

func TestCompileFilesReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.ql", "x = 1\n")
	bad := writeSource(t, dir, "bad.ql", "def (:\n")

	code, _, stderr := runCLI(t, good, bad)
	assert.Equal(t, exitCompile, code)
	assert.Contains(t, stderr, "bad.ql:1:")
	assert.Contains(t, stderr, "Syntax Error")
	assert.FileExists(t, filepath.Join(dir, "good.js"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.js"))
}

func TestMissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "nope.ql"))
	assert.Equal(t, exitInternal, code)
	assert.Contains(t, stderr, "nope.ql")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSource(t, dir, "quill.yaml", "target: cjs\ncheck: error\n")
	a := writeSource(t, dir, "a.ql", "x = 1 + 'a'\n")

	code, _, _ := runCLI(t, "-config", cfg, a)
	assert.Equal(t, exitCompile, code)

	// flags override the file
	code, _, _ = runCLI(t, "-config", cfg, "-check", "warn", a)
	assert.Equal(t, exitOK, code)
}

func TestTokens(t *testing.T) {
	code, stdout, _ := runCLI(t, "-tokens", "-e", "if x:\n    y()\n")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "INDENT")
	assert.Contains(t, stdout, "DEDENT")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "EOF"))
}

func TestAST(t *testing.T) {
	code, stdout, _ := runCLI(t, "-ast", "-e", "x = [1, 2]\n")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "node: Program")
	assert.Contains(t, stdout, "node: ListLiteral")

	code, _, stderr := runCLI(t, "-ast", "-e", "def (:\n")
	assert.Equal(t, exitCompile, code)
	assert.Contains(t, stderr, "Syntax Error")
}

func TestProjectEntries(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.ql", "")
	util := writeSource(t, dir, "lib/util.ql", "")

	root, entries, err := projectEntries([]string{entry, util})
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.Equal(t, []string{"main.ql", "lib/util.ql"}, entries)

	_, _, err = projectEntries([]string{util, entry})
	assert.Error(t, err)
}

func TestWatchBuildsThenStops(t *testing.T) {
	dir := t.TempDir()
	entry := writeSource(t, dir, "main.ql", "from .lib.util import double\nprint(double(2))\n")
	writeSource(t, dir, "lib/util.ql", "export def double(x):\n    return x * 2\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	saved := slog.Default()
	defer slog.SetDefault(saved)
	code := run(ctx, []string{"-watch", entry}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, exitOK, code)
}
