// Package transpiler turns a parsed program into JavaScript text.
package transpiler

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/checker"
	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/modules"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// TypeSource answers the static type of an expression. *checker.Inferrer
// implements it.
type TypeSource interface {
	TypeOf(expr parser.Expression) types.Type
}

// Options configures a Transpiler.
type Options struct {
	// Target is one of modules.Targets; "" means es6.
	Target string
	// JSX selects the automatic jsx() runtime for markup instead of
	// React.createElement.
	JSX bool
	// Mapper supplies builtin rewrites; nil means builtins.Default().
	Mapper builtins.Mapper
	// Types supplies inferred types for type-directed lowerings. When nil
	// the checker runs over the program first.
	Types TypeSource
}

// Transpiler emits JavaScript for one program at a time. All emission state
// lives on the instance and is reset by each Transpile call, so a
// Transpiler must not be shared between goroutines.
type Transpiler struct {
	opts     Options
	mapper   builtins.Mapper
	resolver *modules.Resolver
	types    TypeSource

	out         *bytes.Buffer
	indentLevel int
	scope       *scope

	helpers map[string]bool
	imports []builtins.Import
	usesJSX bool

	// program-wide tables
	functions map[string]*signature
	classes   map[string]*classInfo
	newable   map[string]bool

	exports       []string
	defaultExport string
	catchVars     []string
	class         string // class whose body is being emitted
	temps         int
}

// New creates a transpiler.
func New(opts Options) *Transpiler {
	if opts.Mapper == nil {
		opts.Mapper = builtins.Default()
	}
	return &Transpiler{opts: opts, mapper: opts.Mapper}
}

// Transpile converts program to JavaScript for target, a convenience over
// New(...).Transpile.
func Transpile(program *parser.Program, target string, jsxEnabled bool) (string, error) {
	return New(Options{Target: target, JSX: jsxEnabled}).Transpile(program)
}

// Transpile emits program. The only failure is an unknown target;
// constructs without an emission rule degrade to a /* TODO */ marker.
func (t *Transpiler) Transpile(program *parser.Program) (string, error) {
	resolver, err := modules.NewResolver(t.opts.Target, t.mapper)
	if err != nil {
		return "", (&errors.TranspileError{Msg: err.Error()}).CausedBy(err)
	}
	t.reset(resolver)

	if t.opts.Types != nil {
		t.types = t.opts.Types
	} else {
		c := checker.NewChecker()
		c.Check(program)
		t.types = c.Inferrer()
	}

	t.collectDeclarations(program.Statements)
	t.scope = newScope(nil)
	body := t.scopeBody(t.scope, program.Statements)

	var out bytes.Buffer
	preamble := t.resolver.Preamble(modules.PreambleOptions{JSX: t.usesJSX, Imports: t.imports})
	for _, line := range preamble {
		out.WriteString(line + "\n")
	}
	if helpers := t.helperSources(); len(helpers) > 0 {
		if len(preamble) > 0 {
			out.WriteString("\n")
		}
		for _, src := range helpers {
			out.WriteString(src + "\n\n")
		}
	} else if len(preamble) > 0 && body != "" {
		out.WriteString("\n")
	}
	out.WriteString(body)
	if t.defaultExport != "" {
		out.WriteString(t.resolver.ExportDefault(t.defaultExport) + "\n")
	}
	for _, line := range t.resolver.ExportNames(t.exports) {
		out.WriteString(line + "\n")
	}

	slog.Debug("transpiled program", "target", t.opts.Target, "statements", len(program.Statements), "helpers", len(t.helpers))
	return out.String(), nil
}

func (t *Transpiler) reset(resolver *modules.Resolver) {
	t.resolver = resolver
	t.out = &bytes.Buffer{}
	t.indentLevel = 0
	t.helpers = map[string]bool{}
	t.imports = nil
	t.usesJSX = false
	t.functions = map[string]*signature{}
	t.classes = map[string]*classInfo{}
	t.newable = map[string]bool{}
	t.exports = nil
	t.defaultExport = ""
	t.catchVars = nil
	t.class = ""
	t.temps = 0
}

// collectDeclarations records every def and class in the program, so calls
// can place keyword arguments and construct known classes with new.
func (t *Transpiler) collectDeclarations(stmts []parser.Statement) {
	var visit func([]parser.Statement)
	visit = func(stmts []parser.Statement) {
		walkBlocks(stmts, func(s parser.Statement) {
			if e, ok := s.(*parser.ExportDeclaration); ok && e.Declaration != nil {
				s = e.Declaration
			}
			switch n := s.(type) {
			case *parser.FunctionDef:
				if _, seen := t.functions[n.Name.Value]; !seen {
					t.functions[n.Name.Value] = signatureOf(n.Parameters, false)
				}
				visit(n.Body.Statements)
			case *parser.ClassDef:
				t.classes[n.Name.Value] = newClassInfo(n)
				t.newable[n.Name.Value] = true
				for _, m := range n.Methods {
					visit(m.Body.Statements)
				}
			case *parser.ImportDeclaration:
				if modules.IsLocal(n.Source) {
					for _, name := range importedNames(n) {
						if startsUpper(name) {
							t.newable[name] = true
						}
					}
				}
			}
		})
	}
	visit(stmts)
}

// --- Output ---

func (t *Transpiler) indent() {
	t.indentLevel++
}

func (t *Transpiler) dedent() {
	if t.indentLevel > 0 {
		t.indentLevel--
	}
}

func (t *Transpiler) indentString() string {
	return strings.Repeat("  ", t.indentLevel)
}

func (t *Transpiler) writeLine(s string) {
	t.out.WriteString(t.indentString())
	t.out.WriteString(s)
	t.out.WriteString("\n")
}

func (t *Transpiler) writeLinef(format string, args ...any) {
	t.writeLine(fmt.Sprintf(format, args...))
}

// capture runs fn against a fresh buffer and returns what it wrote.
func (t *Transpiler) capture(fn func()) string {
	saved := t.out
	t.out = &bytes.Buffer{}
	fn()
	s := t.out.String()
	t.out = saved
	return s
}

// scopeBody emits stmts as the body of sc at the current indentation and
// prefixes the hoisted declarations.
func (t *Transpiler) scopeBody(sc *scope, stmts []parser.Statement) string {
	saved := t.scope
	t.scope = sc
	body := t.capture(func() { t.emitStatements(stmts) })
	t.scope = saved
	if len(sc.hoisted) == 0 {
		return body
	}
	return t.indentString() + "let " + strings.Join(sc.hoisted, ", ") + ";\n" + body
}

// block emits the statements of a nested block one level deeper.
func (t *Transpiler) block(b *parser.BlockStatement) {
	if b == nil {
		return
	}
	t.indent()
	t.scope.depth++
	t.emitStatements(b.Statements)
	t.scope.depth--
	t.dedent()
}

func (t *Transpiler) temp(prefix string) string {
	t.temps++
	return fmt.Sprintf("__%s%d", prefix, t.temps)
}

// --- Builtin support ---

func (t *Transpiler) useHelper(name string) {
	if name != "" {
		t.helpers[name] = true
	}
}

func (t *Transpiler) useImport(imp *builtins.Import) {
	if imp != nil {
		t.imports = append(t.imports, *imp)
	}
}

// useMapping records what emitting m requires.
func (t *Transpiler) useMapping(m builtins.Mapping) {
	t.useHelper(m.RequiresHelper)
	t.useImport(m.RequiresImport)
}

// helperSources returns the used helpers in name order.
func (t *Transpiler) helperSources() []string {
	names := make([]string, 0, len(t.helpers))
	for name := range t.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		if src, ok := t.mapper.Helper(name); ok {
			out = append(out, src)
		} else {
			slog.Warn("missing helper", "name", name)
		}
	}
	return out
}

// builtin returns the mapping for name unless the program shadows it.
func (t *Transpiler) builtin(name string) (builtins.Mapping, bool) {
	if t.scope != nil && t.scope.visible(name) {
		return builtins.Mapping{}, false
	}
	return t.mapper.Lookup(name)
}

// --- Types ---

func (t *Transpiler) typeOf(e parser.Expression) types.Type {
	if t.types == nil || e == nil {
		return types.Unknown
	}
	return t.types.TypeOf(e)
}

func (t *Transpiler) kindOf(e parser.Expression) builtins.ReceiverKind {
	return builtins.ReceiverOf(t.typeOf(e))
}

func isDynamic(typ types.Type) bool {
	return typ == nil || typ == types.Any || typ == types.Unknown
}

func isStrType(typ types.Type) bool {
	return builtins.ReceiverOf(typ) == builtins.ReceiverStr
}

func isIntType(typ types.Type) bool {
	return types.Widen(typ) == types.Int
}

// --- Names ---

// jsReserved are JavaScript words a Python program may use as names.
var jsReserved = map[string]bool{
	"case": true, "catch": true, "const": true, "debugger": true, "default": true,
	"delete": true, "do": true, "enum": true, "extends": true, "function": true,
	"instanceof": true, "let": true, "new": true, "switch": true, "this": true,
	"throw": true, "typeof": true, "var": true, "void": true, "arguments": true,
	"eval": true, "implements": true, "interface": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
}

// safeName renames identifiers that are reserved in JavaScript.
func safeName(name string) string {
	if jsReserved[name] {
		return name + "_"
	}
	return name
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func importedNames(n *parser.ImportDeclaration) []string {
	switch n.Kind {
	case parser.ImportDefault:
		return []string{n.Default.Value}
	case parser.ImportNamespace:
		return []string{n.Namespace.Value}
	case parser.ImportModule:
		return []string{n.LocalName()}
	case parser.ImportNamed, parser.ImportFrom:
		names := make([]string, len(n.Specifiers))
		for i, s := range n.Specifiers {
			names[i] = s.Local()
		}
		return names
	}
	return nil
}

// todo is the placeholder for nodes without an emission rule.
func todo(node any) string {
	name := fmt.Sprintf("%T", node)
	name = strings.TrimPrefix(name, "*parser.")
	return "/* TODO: " + name + " */"
}
