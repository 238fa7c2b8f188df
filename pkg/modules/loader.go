package modules

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
)

// ParseFunc turns a source file into a program.
type ParseFunc func(*source.SourceFile) (*parser.Program, error)

// LoaderConfig tunes a Loader.
type LoaderConfig struct {
	// Workers bounds how many modules are parsed at once; 0 means one per CPU.
	Workers int
	// Parse overrides the default tokenize-and-parse step.
	Parse ParseFunc
}

// DefaultParse tokenizes and parses sf, attaching it to error positions.
func DefaultParse(sf *source.SourceFile) (*parser.Program, error) {
	toks, err := lexer.Tokenize(sf.Content)
	if err != nil {
		return nil, err
	}
	return parser.New(toks).WithSource(sf).ParseProgram()
}

// Loader discovers the local modules reachable from entry files, parsing
// each discovery wave in parallel.
type Loader struct {
	resolver SourceResolver
	registry *Registry
	config   LoaderConfig
	graph    *DependencyGraph
}

// NewLoader creates a loader reading through resolver. A nil registry gets
// a fresh one.
func NewLoader(resolver SourceResolver, registry *Registry, config LoaderConfig) *Loader {
	if registry == nil {
		registry = NewRegistry()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Parse == nil {
		config.Parse = DefaultParse
	}
	return &Loader{resolver: resolver, registry: registry, config: config, graph: NewDependencyGraph()}
}

// Registry returns the module cache.
func (l *Loader) Registry() *Registry { return l.registry }

// Graph returns the dependency graph of the last Load.
func (l *Loader) Graph() *DependencyGraph { return l.graph }

// Load parses entries and every local module they import, directly or not.
// Records come back with dependencies before dependents; import cycles fall
// back to discovery order. The first read, parse or resolution failure
// aborts the load.
func (l *Loader) Load(ctx context.Context, entries ...string) ([]*ModuleRecord, error) {
	l.graph = NewDependencyGraph()
	var wave []string
	for _, e := range entries {
		if l.graph.MarkDiscovered(e) {
			wave = append(wave, e)
		}
	}

	records := map[string]*ModuleRecord{}
	for len(wave) > 0 {
		loaded, err := l.loadWave(ctx, wave)
		if err != nil {
			return nil, err
		}
		var next []string
		for _, record := range loaded {
			records[record.Path] = record
			for _, dep := range record.Imports {
				l.graph.AddDependency(record.Path, dep)
				if l.graph.MarkDiscovered(dep) {
					next = append(next, dep)
				}
			}
		}
		wave = next
	}

	order, err := l.graph.TopologicalOrder()
	if err != nil {
		slog.Warn("import cycle, compiling in discovery order", "err", err)
		order = l.graph.Modules()
	}
	out := make([]*ModuleRecord, len(order))
	for i, p := range order {
		out[i] = records[p]
	}
	return out, nil
}

func (l *Loader) loadWave(ctx context.Context, paths []string) ([]*ModuleRecord, error) {
	loaded := make([]*ModuleRecord, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := l.loadModule(p)
			if err != nil {
				return err
			}
			loaded[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// loadModule returns the cached record for p or reads, parses and resolves
// it.
func (l *Loader) loadModule(p string) (*ModuleRecord, error) {
	if cached := l.registry.Get(p); cached != nil && cached.State == ModuleParsed {
		slog.Debug("module cache hit", "path", p)
		return cached, nil
	}

	record := &ModuleRecord{Path: p, State: ModuleResolved, LoadTime: time.Now()}
	sf, err := l.resolver.ReadSource(p)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p, err)
	}
	record.Source = sf

	start := time.Now()
	prog, err := l.config.Parse(sf)
	record.ParseDuration = time.Since(start)
	if err != nil {
		record.State, record.Error = ModuleError, err
		l.registry.Set(record)
		return nil, err
	}
	record.Program = prog

	for _, spec := range LocalImports(prog) {
		dep, err := l.resolver.Resolve(spec, p)
		if err != nil {
			record.State, record.Error = ModuleError, err
			l.registry.Set(record)
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		record.Imports = append(record.Imports, dep)
	}
	record.State = ModuleParsed
	l.registry.Set(record)
	slog.Debug("module parsed", "path", p, "imports", len(record.Imports), "took", record.ParseDuration)
	return record, nil
}

// isModulePath rejects local assets such as stylesheets. Dotted relative
// paths always name modules.
func isModulePath(spec string) bool {
	if !strings.Contains(spec, "/") {
		return true
	}
	switch path.Ext(spec) {
	case "", source.Extension, ".js":
		return true
	}
	return false
}

// LocalImports lists the specifiers of project-local modules a program
// imports or re-exports, in source order and without duplicates. Assets
// such as stylesheets are left out.
func LocalImports(prog *parser.Program) []string {
	var out []string
	seen := map[string]bool{}
	add := func(spec string) {
		if spec != "" && IsLocal(spec) && isModulePath(spec) && !seen[spec] {
			seen[spec] = true
			out = append(out, spec)
		}
	}
	for _, s := range prog.Statements {
		switch n := s.(type) {
		case *parser.ImportDeclaration:
			add(n.Source)
		case *parser.ExportDeclaration:
			add(n.Source)
		}
	}
	return out
}
