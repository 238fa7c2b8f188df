package driver

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/modules"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
)

// FileError is a compile failure of one file in a batch.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// CompileFiles compiles paths in parallel, at most cfg.Workers at a time.
// Every file is attempted; results[i] belongs to paths[i] and is nil when
// that file failed before type checking. The error joins one *FileError per
// failed file. Cancelling ctx stops files that have not started.
func CompileFiles(ctx context.Context, paths []string, cfg Config) ([]*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := CompileFile(p, cfg)
			if err != nil {
				errs[i] = &FileError{Path: p, Err: err}
				slog.Debug("compile failed", "file", p, "err", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, stderrors.Join(errs...)
}

// Project compiles an entry module together with every local module it
// imports. Parsed modules are cached between builds; Invalidate drops a
// changed file and the modules depending on it.
type Project struct {
	cfg    Config
	loader *modules.Loader
}

// NewProject creates a project reading sources through resolver.
func NewProject(resolver modules.SourceResolver, cfg Config) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Project{cfg: cfg}
	p.loader = modules.NewLoader(resolver, modules.NewRegistry(), modules.LoaderConfig{
		Workers: cfg.Workers,
		Parse:   p.parse,
	})
	return p, nil
}

// NewDirProject is NewProject over the files under dir.
func NewDirProject(dir string, cfg Config) (*Project, error) {
	return NewProject(modules.NewOSFileSystemResolver(dir), cfg)
}

func (p *Project) parse(sf *source.SourceFile) (*parser.Program, error) {
	toks, err := lexer.TokenizeWithOptions(sf.Content, lexer.Options{LenientIndent: p.cfg.LenientIndent})
	if err != nil {
		return nil, err
	}
	return parser.New(toks).WithSource(sf).ParseProgram()
}

// Build loads entries and their local imports and compiles each module,
// dependencies first. A load failure stops the build; compile failures
// are joined per file like CompileFiles.
func (p *Project) Build(ctx context.Context, entries ...string) ([]*Result, error) {
	start := time.Now()
	records, err := p.loader.Load(ctx, entries...)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(records))
	errs := make([]error, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.workers())
	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := compileProgram(rec.Source, rec.Program, p.cfg, time.Now())
			if err != nil {
				errs[i] = &FileError{Path: rec.Path, Err: err}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	slog.Info("built project", "modules", len(records), "took", time.Since(start))
	return results, stderrors.Join(errs...)
}

// Invalidate forgets the cached parse of path and of every module importing
// it, returning the dropped paths.
func (p *Project) Invalidate(path string) []string {
	dropped := p.loader.Registry().Invalidate(path)
	if len(dropped) > 0 {
		slog.Debug("invalidated modules", "changed", path, "dropped", dropped)
	}
	return dropped
}

// Modules lists the cached module paths.
func (p *Project) Modules() []string {
	return p.loader.Registry().List()
}

// Order returns the modules of the last build, dependencies first.
func (p *Project) Order() ([]string, error) {
	order, err := p.loader.Graph().TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("import order: %w", err)
	}
	return order, nil
}
