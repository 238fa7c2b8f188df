package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/quill-lang/quill/pkg/driver"
	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/logx"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
)

const (
	exitOK       = 0
	exitCompile  = 1
	exitUsage    = 64 // command line usage error
	exitInternal = 70 // internal software error
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	output    string
	outDir    string
	target    string
	jsx       bool
	check     string
	config    string
	sourceMap bool
	lenient   bool
	ast       bool
	tokens    bool
	highlight bool
	watch     bool
	expr      string
	v, vv, q  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("quill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.output, "o", "", "Output file for a single input (\"-\" writes to stdout)")
	fs.StringVar(&o.outDir, "outdir", "", "Directory for generated JavaScript")
	fs.StringVar(&o.target, "target", "", "Module format: es6, esm, node or cjs")
	fs.BoolVar(&o.jsx, "jsx", false, "Use the automatic JSX runtime")
	fs.StringVar(&o.check, "check", "", "Type checking: off, warn or error")
	fs.StringVar(&o.config, "config", "", "Config file (default: quill.toml or quill.yaml in the working directory)")
	fs.BoolVar(&o.sourceMap, "sourcemap", false, "Write a source map next to each output")
	fs.BoolVar(&o.lenient, "lenient-indent", false, "Accept inconsistent dedent levels")
	fs.BoolVar(&o.ast, "ast", false, "Print the AST as YAML and exit")
	fs.BoolVar(&o.tokens, "tokens", false, "Print the token stream and exit")
	fs.BoolVar(&o.highlight, "highlight", false, "Syntax highlight JavaScript written to stdout")
	fs.BoolVar(&o.watch, "watch", false, "Rebuild when source files change")
	fs.StringVar(&o.expr, "e", "", "Compile the given source and print the JavaScript")
	fs.BoolVar(&o.v, "v", false, "Log compiled files")
	fs.BoolVar(&o.vv, "vv", false, "Log pipeline details")
	fs.BoolVar(&o.q, "q", false, "Only log errors")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: quill [flags] file.ql...\n       quill [flags] -e \"source\"\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

// loadConfig layers the flags that were set over the config file, which
// itself is layered over the defaults.
func (o *options) loadConfig() (driver.Config, error) {
	path := o.config
	if path == "" {
		path = driver.FindConfig(".")
	}
	cfg := driver.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = driver.LoadConfig(path); err != nil {
			return cfg, err
		}
		slog.Debug("loaded config", "path", path)
	}
	if o.target != "" {
		cfg.Target = o.target
	}
	if o.check != "" {
		cfg.Check = driver.CheckMode(o.check)
	}
	if o.outDir != "" {
		cfg.OutDir = o.outDir
	}
	cfg.JSX = cfg.JSX || o.jsx
	cfg.SourceMap = cfg.SourceMap || o.sourceMap
	cfg.LenientIndent = cfg.LenientIndent || o.lenient
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, files, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	logx.UserLevel = logx.LevelFromFlags(o.vv, o.v, o.q)
	logx.SetDefault(stderr)

	switch {
	case o.expr == "" && len(files) == 0:
		fmt.Fprintln(stderr, "quill: no input files")
		return exitUsage
	case o.expr != "" && len(files) > 0:
		fmt.Fprintln(stderr, "quill: -e cannot be combined with input files")
		return exitUsage
	case o.output != "" && len(files) > 1:
		fmt.Fprintln(stderr, "quill: -o needs exactly one input file")
		return exitUsage
	case slices.Contains(files, "-") && len(files) > 1:
		fmt.Fprintln(stderr, "quill: \"-\" reads stdin and must be the only input")
		return exitUsage
	case o.watch && (o.expr != "" || o.output != "" || slices.Contains(files, "-")):
		fmt.Fprintln(stderr, "quill: -watch works on input files written to their output paths")
		return exitUsage
	}

	cfg, err := o.loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "quill: %v\n", err)
		return exitUsage
	}

	c := &cli{opts: o, cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	switch {
	case o.tokens || o.ast:
		return c.inspect(files)
	case o.expr != "":
		return c.compileSource(source.NewEvalSource(o.expr))
	case len(files) == 1 && files[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "quill: reading stdin: %v\n", err)
			return exitInternal
		}
		return c.compileSource(source.NewStdinSource(string(data)))
	case o.watch:
		return c.watch(ctx, files)
	default:
		return c.compileFiles(ctx, files)
	}
}

type cli struct {
	opts   *options
	cfg    driver.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// report prints err and returns the matching exit code. Positioned errors
// are rendered against their source; anything else is internal.
func (c *cli) report(sf *source.SourceFile, err error) int {
	if err == nil {
		return exitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return exitOK
	}
	diags := driver.Diagnostics(err)
	if len(diags) == 0 {
		fmt.Fprintf(c.stderr, "quill: %v\n", err)
		return exitInternal
	}
	errors.DisplayErrors(c.stderr, sf, diags)
	return exitCompile
}

// warn shows advisory type errors. In error mode they come back as the
// compile error instead.
func (c *cli) warn(res *driver.Result) {
	if res == nil || len(res.TypeErrors) == 0 || c.cfg.Check == driver.CheckError {
		return
	}
	errors.DisplayErrors(c.stderr, res.Source, driver.TypeDiagnostics(res.TypeErrors))
}

func (c *cli) inspect(files []string) int {
	sources := make([]*source.SourceFile, 0, len(files)+1)
	if c.opts.expr != "" {
		sources = append(sources, source.NewEvalSource(c.opts.expr))
	}
	for _, f := range files {
		if f == "-" {
			data, err := io.ReadAll(c.stdin)
			if err != nil {
				fmt.Fprintf(c.stderr, "quill: reading stdin: %v\n", err)
				return exitInternal
			}
			sources = append(sources, source.NewStdinSource(string(data)))
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(c.stderr, "quill: %v\n", err)
			return exitInternal
		}
		sources = append(sources, source.FromFile(f, string(data)))
	}

	for _, sf := range sources {
		toks, err := lexer.TokenizeWithOptions(sf.Content, lexer.Options{LenientIndent: c.cfg.LenientIndent})
		if err != nil {
			return c.report(sf, err)
		}
		if c.opts.tokens {
			for _, tok := range toks {
				fmt.Fprintf(c.stdout, "%d:%d\t%s\n", tok.Line, tok.Column, tok)
			}
			continue
		}
		prog, err := parser.New(toks).WithSource(sf).ParseProgram()
		if err != nil {
			return c.report(sf, err)
		}
		out, err := parser.Dump(prog)
		if err != nil {
			return c.report(sf, err)
		}
		c.stdout.Write(out)
	}
	return exitOK
}

// compileSource compiles inline or piped source and prints the result.
func (c *cli) compileSource(sf *source.SourceFile) int {
	res, err := driver.Compile(sf, c.cfg)
	if err != nil {
		return c.report(nil, err)
	}
	c.warn(res)
	if err := c.print(res.JavaScript); err != nil {
		return c.report(nil, err)
	}
	return exitOK
}

func (c *cli) compileFiles(ctx context.Context, files []string) int {
	results, err := driver.CompileFiles(ctx, files, c.cfg)
	code := exitOK
	for i, res := range results {
		c.warn(res)
		if res == nil {
			continue
		}
		if c.opts.output == "-" {
			if werr := c.print(res.JavaScript); werr != nil {
				return c.report(nil, werr)
			}
			continue
		}
		if c.opts.output != "" {
			res.OutputPath = c.opts.output
		}
		if werr := driver.WriteJavaScriptFile(res); werr != nil {
			fmt.Fprintf(c.stderr, "quill: %s: %v\n", files[i], werr)
			code = exitInternal
		}
	}
	if err != nil {
		if rc := c.report(nil, err); rc > code {
			code = rc
		}
	}
	return code
}

// print writes js to stdout, highlighted when asked.
func (c *cli) print(js string) error {
	if !c.opts.highlight {
		_, err := io.WriteString(c.stdout, js)
		return err
	}
	return highlight(c.stdout, js)
}

func highlight(w io.Writer, js string) error {
	lex := lexers.Get("javascript")
	if lex == nil {
		lex = lexers.Fallback
	}
	lex = chroma.Coalesce(lex)
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	it, err := lex.Tokenise(nil, js)
	if err != nil {
		return err
	}
	return formatter.Format(w, style, it)
}
