package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "es6", cfg.Target)
	assert.Equal(t, CheckWarn, cfg.Check)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "quill.toml", "target = \"cjs\"\njsx = true\ncheck = \"error\"\noutdir = \"dist\"\nworkers = 2\n"},
		{"yaml", "quill.yaml", "target: cjs\njsx: true\ncheck: error\noutdir: dist\nworkers: 2\n"},
		{"yml", "quill.yml", "target: cjs\njsx: true\ncheck: error\noutdir: dist\nworkers: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, Config{Target: "cjs", JSX: true, Check: CheckError, OutDir: "dist", Workers: 2}, cfg)
		})
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "quill.toml", "sourcemap = true\n"))
	require.NoError(t, err)
	assert.Equal(t, "es6", cfg.Target)
	assert.Equal(t, CheckWarn, cfg.Check)
	assert.True(t, cfg.SourceMap)

	cfg, err = LoadConfig(writeConfig(t, "quill.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"unknown target", "quill.toml", "target = \"amd\"\n", "unknown target"},
		{"unknown check", "quill.yaml", "check: maybe\n", "unknown check mode"},
		{"negative workers", "quill.toml", "workers = -1\n", "workers"},
		{"unknown field toml", "quill.toml", "colour = \"red\"\n", "quill.toml"},
		{"unknown field yaml", "quill.yaml", "colour: red\n", "quill.yaml"},
		{"bad syntax", "quill.toml", "target = \n", "quill.toml"},
		{"format", "quill.json", "{}", "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "quill.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", FindConfig(dir))

	yml := filepath.Join(dir, "quill.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("jsx: true\n"), 0o644))
	assert.Equal(t, yml, FindConfig(dir))

	toml := filepath.Join(dir, "quill.toml")
	require.NoError(t, os.WriteFile(toml, []byte("jsx = true\n"), 0o644))
	assert.Equal(t, toml, FindConfig(dir))
}
