package driver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quill-lang/quill/pkg/source"
)

// sourceMap is a revision 3 source map. Mappings stay empty: the map links
// the output to its source file without per-token positions.
type sourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// BuildSourceMap encodes the map for jsName compiled from sf.
func BuildSourceMap(jsName string, sf *source.SourceFile) ([]byte, error) {
	m := sourceMap{
		Version:        3,
		File:           jsName,
		Sources:        []string{filepath.ToSlash(sf.Name)},
		SourcesContent: []string{sf.Content},
		Names:          []string{},
	}
	return json.Marshal(m)
}

// WriteJavaScriptFile writes res.JavaScript to res.OutputPath, creating
// directories as needed, and the source map next to it when there is one.
func WriteJavaScriptFile(res *Result) error {
	if err := writeFile(res.OutputPath, []byte(res.JavaScript)); err != nil {
		return err
	}
	slog.Info("wrote JavaScript", "path", res.OutputPath, "bytes", len(res.JavaScript))
	if res.SourceMap != nil {
		return WriteSourceMap(res)
	}
	return nil
}

// WriteSourceMap writes res.SourceMap to res.OutputPath + ".map".
func WriteSourceMap(res *Result) error {
	if res.SourceMap == nil {
		return fmt.Errorf("%s: no source map was generated", res.Source.DisplayPath())
	}
	p := res.OutputPath + ".map"
	if err := writeFile(p, res.SourceMap); err != nil {
		return err
	}
	slog.Debug("wrote source map", "path", p)
	return nil
}

func writeFile(p string, data []byte) error {
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}
