package transpiler

import (
	"strings"

	"github.com/quill-lang/quill/pkg/parser"
)

// signature describes the argument slots of a callee known at compile
// time, for placing keyword arguments.
type signature struct {
	params     []string // JavaScript positional slots, in order
	positional int      // slots that accept positional arguments
	kwrest     string   // **kwargs slot, emitted after params
	rest       bool     // *args, emitted last
}

// signatureOf builds the slots for params, dropping the receiver of a
// method. Parameters after *args are keyword-only.
func signatureOf(params []*parser.Parameter, method bool) *signature {
	if method && len(params) > 0 {
		params = params[1:]
	}
	sig := &signature{positional: -1}
	for _, p := range params {
		switch {
		case p.IsRest:
			sig.rest = true
			sig.positional = len(sig.params)
		case p.IsKwRest:
			sig.kwrest = p.Name.Value
		default:
			sig.params = append(sig.params, p.Name.Value)
		}
	}
	if sig.positional < 0 {
		sig.positional = len(sig.params)
	}
	return sig
}

func positionalSignature(names []string) *signature {
	if len(names) == 0 {
		return nil
	}
	return &signature{params: names, positional: len(names)}
}

type classInfo struct {
	def     *parser.ClassDef
	super   string
	init    *signature
	methods map[string]*signature
}

func newClassInfo(cd *parser.ClassDef) *classInfo {
	info := &classInfo{def: cd, methods: map[string]*signature{}}
	if id, ok := cd.SuperClass.(*parser.Identifier); ok {
		info.super = id.Value
	}
	for _, m := range cd.Methods {
		sig := signatureOf(m.Parameters, !m.HasDecorator("staticmethod"))
		if m.Name.Value == "__init__" {
			info.init = sig
			continue
		}
		info.methods[m.Name.Value] = sig
	}
	if info.init == nil && isDataclass(cd) {
		var names []string
		for _, f := range cd.Fields {
			if f.TypeAnnotation != nil {
				names = append(names, f.Name.Value)
			}
		}
		info.init = positionalSignature(names)
	}
	return info
}

// constructor finds the constructor signature of a program class, looking
// through its superclasses.
func (t *Transpiler) constructor(name string) *signature {
	for seen := 0; name != "" && seen < 32; seen++ {
		info := t.classes[name]
		if info == nil {
			return nil
		}
		if info.init != nil {
			return info.init
		}
		name = info.super
	}
	return nil
}

func (t *Transpiler) method(class, name string) *signature {
	for seen := 0; class != "" && seen < 32; seen++ {
		info := t.classes[class]
		if info == nil {
			return nil
		}
		if sig, ok := info.methods[name]; ok {
			return sig
		}
		class = info.super
	}
	return nil
}

func isDataclass(cd *parser.ClassDef) bool {
	for _, d := range cd.Decorators {
		switch e := d.Expression.(type) {
		case *parser.Identifier:
			if e.Value == "dataclass" {
				return true
			}
		case *parser.CallExpression:
			if id, ok := e.Function.(*parser.Identifier); ok && id.Value == "dataclass" {
				return true
			}
		case *parser.MemberExpression:
			if e.Property.Value == "dataclass" {
				return true
			}
		}
	}
	return false
}

// --- Parameters ---

// params emits a JavaScript parameter list and declares the names in sc:
// ordinary parameters, then **kwargs as a defaulted object, then *args.
func (t *Transpiler) params(sc *scope, params []*parser.Parameter) string {
	var out []string
	var kwrest, rest string
	for _, p := range params {
		sc.declare(p.Name.Value)
		name := safeName(p.Name.Value)
		switch {
		case p.IsRest:
			rest = "..." + name
		case p.IsKwRest:
			kwrest = name + " = {}"
		case p.Default != nil:
			out = append(out, name+" = "+t.expr(p.Default))
		default:
			out = append(out, name)
		}
	}
	if kwrest != "" {
		out = append(out, kwrest)
	}
	if rest != "" {
		out = append(out, rest)
	}
	return strings.Join(out, ", ")
}

// --- Functions ---

func (t *Transpiler) emitFunctionDef(fn *parser.FunctionDef, prefix string) {
	name := safeName(fn.Name.Value)
	t.scope.declare(fn.Name.Value)

	arrow := t.scope.method
	var sc *scope
	if arrow {
		sc = newArrowScope(t.scope)
	} else {
		sc = newScope(t.scope)
	}
	params := t.params(sc, fn.Parameters)
	t.indent()
	body := t.scopeBody(sc, fn.Body.Statements)
	t.dedent()

	async := ""
	if fn.IsAsync {
		async = "async "
	}
	if arrow && !sc.yields {
		kw := "const "
		if len(fn.Decorators) > 0 {
			kw = "let "
		}
		t.writeLine(prefix + kw + name + " = " + async + "(" + params + ") => {")
		t.out.WriteString(body)
		t.writeLine("};")
	} else {
		star := ""
		if sc.yields {
			star = "*"
		}
		t.writeLine(prefix + async + "function" + star + " " + name + "(" + params + ") {")
		t.out.WriteString(body)
		t.writeLine("}")
	}
	t.applyDecorators(name, fn.Decorators)
}

// applyDecorators rebinds name through its decorators, innermost first.
func (t *Transpiler) applyDecorators(name string, decorators []*parser.Decorator) {
	for i := len(decorators) - 1; i >= 0; i-- {
		d := decorators[i]
		if ignoredDecorator(d) {
			continue
		}
		t.writeLine(name + " = " + t.operand(d.Expression, precCall) + "(" + name + ");")
	}
}

// ignoredDecorator matches decorators that only carry static meaning.
func ignoredDecorator(d *parser.Decorator) bool {
	var name string
	switch e := d.Expression.(type) {
	case *parser.Identifier:
		name = e.Value
	case *parser.CallExpression:
		if id, ok := e.Function.(*parser.Identifier); ok {
			name = id.Value
		}
	case *parser.MemberExpression:
		name = e.Property.Value
	}
	switch name {
	case "dataclass", "staticmethod", "classmethod", "property", "setter", "getter",
		"abstractmethod", "override", "overload", "final", "runtime_checkable":
		return true
	}
	return false
}

// lambda emits an arrow function. Arrow functions keep `this`, so the
// enclosing receiver stays visible.
func (t *Transpiler) lambda(n *parser.ArrowFunction) string {
	sc := newArrowScope(t.scope)
	params := t.params(sc, n.Parameters)
	async := ""
	if n.IsAsync {
		async = "async "
	}
	head := async + "(" + params + ") => "

	switch body := n.Body.(type) {
	case *parser.BlockStatement:
		t.indent()
		src := t.scopeBody(sc, body.Statements)
		t.dedent()
		return head + "{\n" + src + t.indentString() + "}"
	case parser.Expression:
		saved := t.scope
		t.scope = sc
		value, prec := t.exprPrec(body)
		t.scope = saved
		if len(sc.hoisted) > 0 {
			return head + "{ let " + strings.Join(sc.hoisted, ", ") + "; return " + value + "; }"
		}
		if strings.HasPrefix(value, "{") || prec < precAssign {
			value = "(" + value + ")"
		}
		return head + value
	}
	return todo(n)
}

// --- Classes ---

func (t *Transpiler) emitClass(cd *parser.ClassDef, prefix string) {
	name := safeName(cd.Name.Value)
	t.scope.declare(cd.Name.Value)

	head := prefix + "class " + name
	if cd.SuperClass != nil {
		head += " extends " + t.classRef(cd.SuperClass)
	}
	t.writeLine(head + " {")
	t.indent()
	savedClass := t.class
	t.class = cd.Name.Value
	defer func() { t.class = savedClass }()

	dataclass := isDataclass(cd)
	for _, f := range cd.Fields {
		if dataclass && f.TypeAnnotation != nil {
			continue
		}
		fieldName := f.Name.Value
		switch {
		case f.TypeAnnotation == nil:
			t.writeLine("static " + fieldName + " = " + t.expr(f.Value) + ";")
		case f.Value != nil:
			t.writeLine(fieldName + " = " + t.expr(f.Value) + ";")
		default:
			t.writeLine(fieldName + ";")
		}
	}

	hasInit := false
	for _, m := range cd.Methods {
		if m.Name.Value == "__init__" {
			hasInit = true
		}
	}
	if dataclass && !hasInit {
		t.emitDataclassConstructor(cd)
	}

	hasStr := false
	for _, m := range cd.Methods {
		if m.Name.Value == "__str__" {
			hasStr = true
		}
	}
	for _, m := range cd.Methods {
		jsName := m.Name.Value
		switch jsName {
		case "__init__":
			jsName = "constructor"
		case "__str__":
			jsName = "toString"
		case "__repr__":
			if !hasStr {
				jsName = "toString"
			}
		case "__iter__":
			jsName = "[Symbol.iterator]"
		}
		t.emitMethod(cd, m, jsName)
	}

	t.dedent()
	t.writeLine("}")
	t.applyDecorators(name, cd.Decorators)
}

func (t *Transpiler) emitDataclassConstructor(cd *parser.ClassDef) {
	var params, assigns []string
	for _, f := range cd.Fields {
		if f.TypeAnnotation == nil {
			continue
		}
		p := safeName(f.Name.Value)
		if f.Value != nil {
			p += " = " + t.expr(f.Value)
		}
		params = append(params, p)
		assigns = append(assigns, "this."+f.Name.Value+" = "+safeName(f.Name.Value)+";")
	}
	t.writeLine("constructor(" + strings.Join(params, ", ") + ") {")
	t.indent()
	if cd.SuperClass != nil {
		t.writeLine("super();")
	}
	for _, a := range assigns {
		t.writeLine(a)
	}
	for _, m := range cd.Methods {
		if m.Name.Value == "__post_init__" {
			t.writeLine("this.__post_init__();")
		}
	}
	t.dedent()
	t.writeLine("}")
}

func (t *Transpiler) emitMethod(cd *parser.ClassDef, m *parser.FunctionDef, jsName string) {
	static := m.HasDecorator("staticmethod")
	classMethod := m.HasDecorator("classmethod")

	sc := newScope(t.scope)
	sc.method = true
	params := m.Parameters
	if !static && len(params) > 0 {
		sc.self = params[0].Name.Value
		sc.declare(sc.self)
		params = params[1:]
	}
	paramList := t.params(sc, params)

	body := m.Body.Statements
	t.indent()
	src := t.scopeBody(sc, body)
	if jsName == "constructor" && cd.SuperClass != nil && !callsSuperInit(body) {
		src = t.indentString() + "super();\n" + src
	}
	t.dedent()

	var mods []string
	if static || classMethod {
		mods = append(mods, "static")
	}
	for _, d := range m.Decorators {
		switch e := d.Expression.(type) {
		case *parser.Identifier:
			if e.Value == "property" {
				mods = append(mods, "get")
			}
		case *parser.MemberExpression:
			if e.Property.Value == "setter" {
				mods = append(mods, "set")
			}
		}
	}
	if m.IsAsync {
		mods = append(mods, "async")
	}
	head := jsName
	if sc.yields {
		head = "*" + head
	}
	if len(mods) > 0 {
		head = strings.Join(mods, " ") + " " + head
	}
	t.writeLine(head + "(" + paramList + ") {")
	t.out.WriteString(src)
	t.writeLine("}")
}

// callsSuperInit reports whether a constructor body calls
// super().__init__ at its top level.
func callsSuperInit(stmts []parser.Statement) bool {
	for _, s := range stmts {
		es, ok := s.(*parser.ExpressionStatement)
		if !ok {
			continue
		}
		call, ok := es.Expression.(*parser.CallExpression)
		if !ok {
			continue
		}
		if me, ok := call.Function.(*parser.MemberExpression); ok && me.Property.Value == "__init__" && isSuperCall(me.Object) {
			return true
		}
	}
	return false
}

func isSuperCall(e parser.Expression) bool {
	call, ok := e.(*parser.CallExpression)
	if !ok {
		return false
	}
	id, ok := call.Function.(*parser.Identifier)
	return ok && id.Value == "super"
}
