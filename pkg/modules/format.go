package modules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
)

// Format is the module system of the emitted JavaScript.
type Format int

const (
	FormatESM      Format = iota // import/export statements
	FormatCommonJS               // require and module.exports
)

func (f Format) String() string {
	if f == FormatCommonJS {
		return "commonjs"
	}
	return "esm"
}

// Targets lists the accepted target names.
var Targets = []string{"es6", "esm", "node", "cjs"}

// FormatForTarget maps a target name to its module format.
func FormatForTarget(target string) (Format, error) {
	switch target {
	case "es6", "esm", "":
		return FormatESM, nil
	case "node", "cjs":
		return FormatCommonJS, nil
	}
	return FormatESM, fmt.Errorf("unknown target %q (want one of %s)", target, strings.Join(Targets, ", "))
}

// JSXRuntime is where the automatic JSX runtime is imported from.
const JSXRuntime = "react/jsx-runtime"

// typeOnly modules exist for annotations and emit nothing.
var typeOnly = map[string]bool{
	"typing":            true,
	"typing_extensions": true,
	"__future__":        true,
	"abc":               true,
	"dataclasses":       true,
}

// IsTypeOnly reports whether importing source has no runtime effect.
func IsTypeOnly(source string) bool {
	return typeOnly[source]
}

// Resolver renders import and export statements for one module format.
// Builtin modules such as math and json are inlined from the mapper's shims.
type Resolver struct {
	format Format
	mapper builtins.Mapper
}

// NewResolver creates a resolver for target. mapper may be nil, in which
// case every import is treated as external.
func NewResolver(target string, mapper builtins.Mapper) (*Resolver, error) {
	format, err := FormatForTarget(target)
	if err != nil {
		return nil, err
	}
	return &Resolver{format: format, mapper: mapper}, nil
}

// Format returns the module format the resolver emits.
func (r *Resolver) Format() Format { return r.format }

func (r *Resolver) shim(source string) (string, bool) {
	if r.mapper == nil {
		return "", false
	}
	return r.mapper.Module(source)
}

// Specifier converts a module path as written into the string the emitted
// import uses. Python-style relative paths become relative file paths and
// .ql sources are renamed to .js.
//
//	.utils        -> ./utils.js
//	..pkg.models  -> ../pkg/models.js
//	./view.ql     -> ./view.js
//	react         -> react
func Specifier(source string) string {
	if strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") || strings.HasPrefix(source, "/") {
		if strings.HasSuffix(source, ".ql") {
			return strings.TrimSuffix(source, ".ql") + ".js"
		}
		return source
	}
	if !strings.HasPrefix(source, ".") {
		return source
	}
	dots := len(source) - len(strings.TrimLeft(source, "."))
	rest := strings.ReplaceAll(source[dots:], ".", "/")
	prefix := "./"
	if dots > 1 {
		prefix = strings.Repeat("../", dots-1)
	}
	if rest == "" {
		return prefix + "index.js"
	}
	return prefix + rest + ".js"
}

// IsLocal reports whether source names a file of the same project rather
// than a package.
func IsLocal(source string) bool {
	return strings.HasPrefix(source, ".") || strings.HasPrefix(source, "/")
}

// moduleSpecifier is Specifier for bare dotted imports, which name package
// paths: `import os.path` imports "os/path".
func moduleSpecifier(decl *parser.ImportDeclaration) string {
	dotted := decl.Kind == parser.ImportModule || decl.Kind == parser.ImportFrom
	if dotted && !IsLocal(decl.Source) && !strings.Contains(decl.Source, "/") {
		return strings.ReplaceAll(decl.Source, ".", "/")
	}
	return Specifier(decl.Source)
}

// Import returns the lines that replace an import statement. Type-only
// imports produce none.
func (r *Resolver) Import(decl *parser.ImportDeclaration) []string {
	if IsTypeOnly(decl.Source) {
		return nil
	}
	if shim, ok := r.shim(decl.Source); ok {
		return r.builtinImport(decl, shim)
	}
	spec := strconv.Quote(moduleSpecifier(decl))

	switch decl.Kind {
	case parser.ImportSideEffect:
		if r.format == FormatCommonJS {
			return []string{"require(" + spec + ");"}
		}
		return []string{"import " + spec + ";"}
	case parser.ImportDefault:
		return []string{r.bindDefault(decl.Default.Value, spec)}
	case parser.ImportNamespace, parser.ImportModule:
		local := decl.LocalName()
		if decl.Kind == parser.ImportNamespace {
			local = decl.Namespace.Value
		}
		if r.format == FormatCommonJS {
			return []string{"const " + local + " = require(" + spec + ");"}
		}
		return []string{"import * as " + local + " from " + spec + ";"}
	}

	// named and from-imports
	if decl.Wildcard {
		if r.format == FormatCommonJS {
			return []string{"Object.assign(globalThis, require(" + spec + "));"}
		}
		// ES modules cannot splat bindings; expose the namespace instead
		return []string{"import * as " + wildcardName(decl.Source) + " from " + spec + ";"}
	}
	if r.format == FormatCommonJS {
		return []string{"const { " + destructure(decl.Specifiers) + " } = require(" + spec + ");"}
	}
	return []string{"import { " + esmSpecifiers(decl.Specifiers) + " } from " + spec + ";"}
}

func (r *Resolver) bindDefault(local, spec string) string {
	if r.format == FormatCommonJS {
		return "const " + local + " = require(" + spec + ");"
	}
	return "import " + local + " from " + spec + ";"
}

// builtinImport binds a builtin module from its inline shim.
func (r *Resolver) builtinImport(decl *parser.ImportDeclaration, shim string) []string {
	switch decl.Kind {
	case parser.ImportFrom, parser.ImportNamed:
		if decl.Wildcard {
			return []string{"Object.assign(globalThis, " + shim + ");"}
		}
		return []string{"const { " + destructure(decl.Specifiers) + " } = " + shim + ";"}
	case parser.ImportDefault:
		return []string{"const " + decl.Default.Value + " = " + shim + ";"}
	case parser.ImportSideEffect:
		return nil
	}
	local := decl.LocalName()
	if decl.Kind == parser.ImportNamespace {
		local = decl.Namespace.Value
	}
	return []string{"const " + local + " = " + shim + ";"}
}

func wildcardName(source string) string {
	name := strings.Trim(source, "./")
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "module"
	}
	return "__" + strings.ReplaceAll(name, "-", "_")
}

func esmSpecifiers(specs []*parser.ImportSpecifier) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name.Value
		if s.Alias != nil {
			parts[i] += " as " + s.Alias.Value
		}
	}
	return strings.Join(parts, ", ")
}

func destructure(specs []*parser.ImportSpecifier) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name.Value
		if s.Alias != nil {
			parts[i] += ": " + s.Alias.Value
		}
	}
	return strings.Join(parts, ", ")
}

// ExportPrefix is written before an exported declaration. CommonJS exports
// the declared names afterwards instead, see ExportNames.
func (r *Resolver) ExportPrefix() string {
	if r.format == FormatCommonJS {
		return ""
	}
	return "export "
}

// ExportNames returns the lines that publish names declared by an
// exported declaration.
func (r *Resolver) ExportNames(names []string) []string {
	if r.format != FormatCommonJS {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "module.exports." + n + " = " + n + ";"
	}
	return out
}

// ExportDefault returns the line exporting expr as the default export.
func (r *Resolver) ExportDefault(expr string) string {
	if r.format == FormatCommonJS {
		return "module.exports = " + expr + ";"
	}
	return "export default " + expr + ";"
}

// Export returns the lines for export lists and re-exports. Exported
// declarations go through ExportPrefix and ExportNames instead.
func (r *Resolver) Export(decl *parser.ExportDeclaration) []string {
	var spec string
	if decl.Source != "" {
		spec = strconv.Quote(Specifier(decl.Source))
	}
	switch decl.Kind {
	case parser.ExportAll:
		if r.format == FormatCommonJS {
			if decl.Namespace != nil {
				return []string{"module.exports." + decl.Namespace.Value + " = require(" + spec + ");"}
			}
			return []string{"Object.assign(module.exports, require(" + spec + "));"}
		}
		if decl.Namespace != nil {
			return []string{"export * as " + decl.Namespace.Value + " from " + spec + ";"}
		}
		return []string{"export * from " + spec + ";"}
	case parser.ExportNamed:
		if r.format == FormatCommonJS {
			src := ""
			if spec != "" {
				src = "require(" + spec + ")."
			}
			out := make([]string, len(decl.Specifiers))
			for i, s := range decl.Specifiers {
				out[i] = "module.exports." + s.Local() + " = " + src + s.Name.Value + ";"
			}
			return out
		}
		line := "export { " + esmSpecifiers(decl.Specifiers) + " }"
		if spec != "" {
			line += " from " + spec
		}
		return []string{line + ";"}
	}
	return nil
}

// PreambleOptions says what the emitted file needs before its body.
type PreambleOptions struct {
	// JSX imports the automatic runtime.
	JSX bool
	// Imports are extra modules builtins asked for.
	Imports []builtins.Import
}

// Preamble returns the startup lines for a file: strict mode for CommonJS,
// the JSX runtime, and builtin imports merged by source.
func (r *Resolver) Preamble(opts PreambleOptions) []string {
	var out []string
	if r.format == FormatCommonJS {
		out = append(out, `"use strict";`)
	}
	if opts.JSX {
		out = append(out, r.namedImport([]string{"jsx"}, strconv.Quote(JSXRuntime)))
	}

	merged := map[string]*builtins.Import{}
	var sources []string
	for _, imp := range opts.Imports {
		m, ok := merged[imp.Source]
		if !ok {
			m = &builtins.Import{Source: imp.Source}
			merged[imp.Source] = m
			sources = append(sources, imp.Source)
		}
		if imp.Default != "" {
			m.Default = imp.Default
		}
		for _, n := range imp.Names {
			if indexOf(m.Names, n) < 0 {
				m.Names = append(m.Names, n)
			}
		}
	}
	sort.Strings(sources)
	for _, src := range sources {
		m := merged[src]
		spec := strconv.Quote(src)
		if m.Default != "" {
			out = append(out, r.bindDefault(m.Default, spec))
		}
		if len(m.Names) > 0 {
			sort.Strings(m.Names)
			out = append(out, r.namedImport(m.Names, spec))
		}
	}
	return out
}

func (r *Resolver) namedImport(names []string, spec string) string {
	list := strings.Join(names, ", ")
	if r.format == FormatCommonJS {
		return "const { " + list + " } = require(" + spec + ");"
	}
	return "import { " + list + " } from " + spec + ";"
}

func indexOf(xs []string, x string) int {
	for i, s := range xs {
		if s == x {
			return i
		}
	}
	return -1
}
