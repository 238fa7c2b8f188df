// Package driver runs the quill pipeline (tokenize, parse, check,
// transpile) for hosts and the command line.
package driver

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quill-lang/quill/pkg/checker"
	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
	"github.com/quill-lang/quill/pkg/transpiler"
)

// Tokenize scans src into tokens.
func Tokenize(src string) ([]lexer.Token, error) {
	return lexer.Tokenize(src)
}

// Parse builds a program from tokens.
func Parse(tokens []lexer.Token) (*parser.Program, error) {
	return parser.Parse(tokens)
}

// Transpile emits JavaScript for program.
func Transpile(program *parser.Program, target string, jsxEnabled bool) (string, error) {
	return transpiler.Transpile(program, target, jsxEnabled)
}

// Result is one compiled source file.
type Result struct {
	Source     *source.SourceFile
	Program    *parser.Program
	JavaScript string
	// SourceMap is the encoded map when Config.SourceMap is set.
	SourceMap []byte
	// OutputPath is where WriteJavaScriptFile puts the JavaScript.
	OutputPath string
	// TypeErrors are the checker's findings. With CheckWarn they do not
	// stop compilation.
	TypeErrors []*errors.TypeError
}

// CompileString compiles src. name labels the source in errors and picks
// the output file name; "" means inline source.
func CompileString(src, name string, cfg Config) (*Result, error) {
	sf := source.NewEvalSource(src)
	if name != "" {
		sf = source.FromFile(name, src)
	}
	return Compile(sf, cfg)
}

// CompileFile reads and compiles the file at path.
func CompileFile(path string, cfg Config) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Compile(source.FromFile(path, string(data)), cfg)
}

// Compile runs the pipeline over sf.
func Compile(sf *source.SourceFile, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	toks, err := lexer.TokenizeWithOptions(sf.Content, lexer.Options{LenientIndent: cfg.LenientIndent})
	if err != nil {
		return nil, withSource(err, sf)
	}
	slog.Debug("tokenized", "file", sf.DisplayPath(), "tokens", len(toks))

	prog, err := parser.New(toks).WithSource(sf).ParseProgram()
	if err != nil {
		return nil, withSource(err, sf)
	}
	return compileProgram(sf, prog, cfg, start)
}

// compileProgram checks and transpiles an already parsed program.
func compileProgram(sf *source.SourceFile, prog *parser.Program, cfg Config, start time.Time) (*Result, error) {
	res := &Result{Source: sf, Program: prog, OutputPath: outputPath(sf, cfg)}

	c := checker.NewChecker()
	typeErrs := c.Check(prog)
	for _, e := range typeErrs {
		if e.Position.Source == nil {
			e.Position.Source = sf
		}
	}
	if cfg.checkMode() != CheckOff {
		res.TypeErrors = typeErrs
	}
	if cfg.checkMode() == CheckError && len(typeErrs) > 0 {
		errs := make([]error, len(typeErrs))
		for i, e := range typeErrs {
			errs[i] = e
		}
		return res, stderrors.Join(errs...)
	}

	js, err := transpiler.New(transpiler.Options{
		Target: cfg.Target,
		JSX:    cfg.JSX,
		Types:  c.Inferrer(),
	}).Transpile(prog)
	if err != nil {
		return res, withSource(err, sf)
	}

	if cfg.SourceMap {
		jsName := filepath.Base(res.OutputPath)
		res.SourceMap, err = BuildSourceMap(jsName, sf)
		if err != nil {
			return res, err
		}
		js += "//# sourceMappingURL=" + jsName + ".map\n"
	}
	res.JavaScript = js

	slog.Debug("compiled", "file", sf.DisplayPath(), "type_errors", len(typeErrs), "took", time.Since(start))
	return res, nil
}

// outputPath places the JavaScript for sf: next to the source, or under
// OutDir keeping the relative layout of the source path.
func outputPath(sf *source.SourceFile, cfg Config) string {
	name := sf.OutputName()
	if cfg.OutDir == "" {
		return name
	}
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		name = filepath.Base(name)
	}
	return filepath.Join(cfg.OutDir, name)
}

// Diagnostics flattens err into the positioned errors it carries, looking
// through wrappers and joined errors at any depth. Errors without a
// position are left out.
func Diagnostics(err error) []errors.QuillError {
	switch e := err.(type) {
	case nil:
		return nil
	case errors.QuillError:
		return []errors.QuillError{e}
	case interface{ Unwrap() []error }:
		var out []errors.QuillError
		for _, inner := range e.Unwrap() {
			out = append(out, Diagnostics(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return Diagnostics(e.Unwrap())
	}
	return nil
}

// withSource points the positions in err that lack a source at sf.
func withSource(err error, sf *source.SourceFile) error {
	for _, d := range Diagnostics(err) {
		var pos *errors.Position
		switch e := d.(type) {
		case *errors.LexError:
			pos = &e.Position
		case *errors.SyntaxError:
			pos = &e.Position
		case *errors.TypeError:
			pos = &e.Position
		case *errors.TranspileError:
			pos = &e.Position
		}
		if pos != nil && pos.Source == nil {
			pos.Source = sf
		}
	}
	return err
}

// TypeDiagnostics converts checker findings for display.
func TypeDiagnostics(errs []*errors.TypeError) []errors.QuillError {
	out := make([]errors.QuillError, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
