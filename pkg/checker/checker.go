package checker

import (
	"strings"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// Checker runs the advisory type pass over a program. Errors are values; the
// caller decides whether they block compilation.
type Checker struct {
	global   *Environment
	inferrer *Inferrer

	fn        *functionContext
	loopDepth int

	signatures map[*parser.FunctionDef]*types.FunctionType
	classDefs  map[*parser.ClassDef]*classInfo
}

type functionContext struct {
	declared types.Type // annotated return type, nil when inferred
	returns  []types.Type
	bare     bool // a value-less return was seen
	isAsync  bool
}

type classInfo struct {
	name      string
	instance  *types.ObjectType
	ctor      *types.FunctionType
	annotated map[string]bool
	// dynamic classes get attributes at run time (__getattr__, unknown
	// bases), so missing attributes are not reported.
	dynamic bool
}

// decorators that keep a function's signature intact
var transparentDecorators = map[string]bool{
	"staticmethod":   true,
	"classmethod":    true,
	"property":       true,
	"abstractmethod": true,
	"override":       true,
	"dataclass":      true,
}

// NewChecker creates a checker over the standard builtins.
func NewChecker() *Checker {
	return NewCheckerWithEnvironment(NewStandardGlobalEnvironment())
}

// NewCheckerWithEnvironment creates a checker whose programs see the names of
// global.
func NewCheckerWithEnvironment(global *Environment) *Checker {
	return &Checker{global: global}
}

// Check is a convenience wrapper running a fresh standard checker.
func Check(program *parser.Program) []*errors.TypeError {
	return NewChecker().Check(program)
}

// Check type-checks program and returns every problem found. The types it
// inferred stay available through Inferrer until the next call.
func (c *Checker) Check(program *parser.Program) []*errors.TypeError {
	c.inferrer = NewInferrer(NewEnclosedEnvironment(c.global))
	c.inferrer.checker = c
	c.fn = nil
	c.loopDepth = 0
	c.signatures = map[*parser.FunctionDef]*types.FunctionType{}
	c.classDefs = map[*parser.ClassDef]*classInfo{}

	c.checkScope(program.Statements)
	return c.inferrer.errs
}

// Inferrer exposes the inferred expression types of the last Check.
func (c *Checker) Inferrer() *Inferrer {
	return c.inferrer
}

func (c *Checker) env() *Environment {
	return c.inferrer.env
}

func (c *Checker) addError(node parser.Node, format string, args ...any) {
	c.inferrer.addError(node, format, args...)
}

// --- Scopes ---

// checkScope checks the statements of a module or function body after
// hoisting every name they assign.
func (c *Checker) checkScope(stmts []parser.Statement) {
	globals := map[string]bool{}
	collectGlobals(stmts, globals)
	var names []string
	collectAssigned(stmts, &names)
	env := c.env()
	for _, name := range names {
		if !globals[name] {
			env.Define(name, types.Unknown, false)
		}
	}
	c.checkBlock(stmts)
}

// checkBlock declares the classes and functions of a statement list, then
// checks each statement.
func (c *Checker) checkBlock(stmts []parser.Statement) {
	var classes []*parser.ClassDef
	var funcs []*parser.FunctionDef
	for _, s := range stmts {
		switch d := unwrapExport(s).(type) {
		case *parser.AssignStatement:
			if id, ok := d.Target.(*parser.Identifier); ok && isTypeVarCall(d.Value) {
				c.declareTypeVar(id.Value, d.Value.(*parser.CallExpression))
			}
		case *parser.ClassDef:
			classes = append(classes, d)
		case *parser.FunctionDef:
			funcs = append(funcs, d)
		}
	}
	for _, cd := range classes {
		c.declareClass(cd)
	}
	for _, cd := range classes {
		c.declareClassMembers(cd)
	}
	for _, fd := range funcs {
		c.declareFunction(fd)
	}
	for _, s := range stmts {
		c.checkStatement(s)
	}
}

func unwrapExport(s parser.Statement) parser.Statement {
	if exp, ok := s.(*parser.ExportDeclaration); ok && exp.Declaration != nil {
		return exp.Declaration
	}
	return s
}

// collectAssigned lists the names a statement list binds, descending into
// nested blocks but not into function or class bodies.
func collectAssigned(stmts []parser.Statement, names *[]string) {
	add := func(ns ...string) { *names = append(*names, ns...) }
	for _, s := range stmts {
		switch n := s.(type) {
		case *parser.LetStatement:
			add(n.Name.Value)
		case *parser.AssignStatement:
			if id, ok := n.Target.(*parser.Identifier); ok {
				add(id.Value)
			}
		case *parser.DestructuringAssignment:
			add(parser.PatternNames(n.Pattern)...)
		case *parser.FunctionDef:
			add(n.Name.Value)
		case *parser.ClassDef:
			add(n.Name.Value)
		case *parser.IfStatement:
			collectAssigned(n.Consequence.Statements, names)
			if n.Alternative != nil {
				collectAssigned([]parser.Statement{n.Alternative}, names)
			}
		case *parser.BlockStatement:
			collectAssigned(n.Statements, names)
		case *parser.WhileStatement:
			collectAssigned(n.Body.Statements, names)
		case *parser.ForStatement:
			add(parser.PatternNames(n.Target)...)
			collectAssigned(n.Body.Statements, names)
		case *parser.WithStatement:
			for _, item := range n.Items {
				if item.Target != nil {
					add(item.Target.Value)
				}
			}
			collectAssigned(n.Body.Statements, names)
		case *parser.TryStatement:
			collectAssigned(n.Body.Statements, names)
			for _, h := range n.Handlers {
				if h.Name != nil {
					add(h.Name.Value)
				}
				collectAssigned(h.Body.Statements, names)
			}
			for _, b := range []*parser.BlockStatement{n.Else, n.Finally} {
				if b != nil {
					collectAssigned(b.Statements, names)
				}
			}
		case *parser.MatchStatement:
			for _, mc := range n.Cases {
				add(captureNames(mc.Pattern)...)
				collectAssigned(mc.Body.Statements, names)
			}
		case *parser.ImportDeclaration:
			add(importedNames(n)...)
		case *parser.ExportDeclaration:
			if n.Declaration != nil {
				collectAssigned([]parser.Statement{n.Declaration}, names)
			}
		}
	}
}

func collectGlobals(stmts []parser.Statement, out map[string]bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *parser.GlobalStatement:
			for _, id := range n.Names {
				out[id.Value] = true
			}
		case *parser.IfStatement:
			collectGlobals(n.Consequence.Statements, out)
			if n.Alternative != nil {
				collectGlobals([]parser.Statement{n.Alternative}, out)
			}
		case *parser.BlockStatement:
			collectGlobals(n.Statements, out)
		case *parser.WhileStatement:
			collectGlobals(n.Body.Statements, out)
		case *parser.ForStatement:
			collectGlobals(n.Body.Statements, out)
		}
	}
}

func captureNames(p parser.MatchPattern) []string {
	switch n := p.(type) {
	case *parser.CapturePattern:
		return []string{n.Name.Value}
	case *parser.SequencePattern:
		var out []string
		for _, el := range n.Elements {
			out = append(out, captureNames(el)...)
		}
		return out
	case *parser.OrPattern:
		var out []string
		for _, alt := range n.Alternatives {
			out = append(out, captureNames(alt)...)
		}
		return out
	}
	return nil
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
		var out []string
		for _, spec := range n.Specifiers {
			out = append(out, specifierLocal(spec))
		}
		return out
	}
	return nil
}

func specifierLocal(spec *parser.ImportSpecifier) string {
	if spec.Alias != nil {
		return spec.Alias.Value
	}
	return spec.Name.Value
}

// --- Declarations ---

func (c *Checker) declareFunction(fd *parser.FunctionDef) *types.FunctionType {
	if ft, ok := c.signatures[fd]; ok {
		return ft
	}
	ft := c.functionSignature(fd, false)
	c.signatures[fd] = ft
	var bound types.Type = ft
	if hasOpaqueDecorator(fd.Decorators) {
		bound = types.Any
	}
	if !c.env().Update(fd.Name.Value, bound) {
		c.env().Define(fd.Name.Value, bound, false)
	}
	return ft
}

func hasOpaqueDecorator(decorators []*parser.Decorator) bool {
	for _, d := range decorators {
		id, ok := d.Expression.(*parser.Identifier)
		if !ok || !transparentDecorators[id.Value] {
			return true
		}
	}
	return false
}

// functionSignature resolves a def's annotations. Unannotated returns stay
// Unknown until the body has been checked.
func (c *Checker) functionSignature(fd *parser.FunctionDef, method bool) *types.FunctionType {
	ft := c.inferrer.signature(fd.Parameters, method)
	ft.IsAsync = fd.IsAsync
	if fd.ReturnType != nil {
		ret := c.inferrer.resolveAnnotation(fd.ReturnType)
		if fd.IsAsync {
			ret = types.Promise(ret)
		}
		ft.Return = ret
		ft.TypeParams = collectTypeParameters(ft)
	} else {
		ft.Return = types.Unknown
	}
	return ft
}

func (c *Checker) declareClass(cd *parser.ClassDef) {
	name := cd.Name.Value
	info := &classInfo{
		name:      name,
		instance:  types.NewObjectType().Named(name),
		annotated: map[string]bool{},
	}
	c.classDefs[cd] = info
	c.inferrer.classes[name] = info
	c.env().typeAliases[name] = info.instance
}

func (c *Checker) declareClassMembers(cd *parser.ClassDef) {
	info := c.classDefs[cd]
	fields := info.instance.Fields

	var inherited *types.FunctionType
	if cd.SuperClass != nil {
		super := c.inferrer.infer(cd.SuperClass)
		ctor, ok := super.(*types.FunctionType)
		base, isObj := types.Type(nil), false
		if ok {
			base = ctor.Return
			_, isObj = base.(*types.ObjectType)
		}
		if isObj {
			inherited = ctor
			parent := base.(*types.ObjectType)
			for k, v := range parent.Fields {
				fields[k] = v
			}
			if pinfo, known := c.inferrer.classes[parent.Name]; known {
				for k := range pinfo.annotated {
					info.annotated[k] = true
				}
				info.dynamic = pinfo.dynamic
			}
		} else {
			info.dynamic = true
		}
	}

	for _, f := range cd.Fields {
		var t types.Type = types.Unknown
		if f.TypeAnnotation != nil {
			t = c.inferrer.resolveAnnotation(f.TypeAnnotation)
			info.annotated[f.Name.Value] = true
		} else if f.Value != nil {
			t = types.Widen(c.inferrer.infer(f.Value))
		}
		fields[f.Name.Value] = t
	}

	var init *types.FunctionType
	for _, m := range cd.Methods {
		static := m.HasDecorator("staticmethod")
		sig := c.functionSignature(m, !static)
		c.signatures[m] = sig
		switch {
		case m.Name.Value == "__init__":
			init = sig
		case m.Name.Value == "__getattr__":
			info.dynamic = true
		case m.HasDecorator("property"):
			fields[m.Name.Value] = sig.Return
		default:
			fields[m.Name.Value] = sig
		}
		collectSelfFields(m, info, c)
	}

	ctor := &types.FunctionType{Return: info.instance}
	switch {
	case init != nil:
		ctor.Params, ctor.ParamNames, ctor.Optional, ctor.Rest = init.Params, init.ParamNames, init.Optional, init.Rest
		if c.inferrer.kwRest[init] {
			c.inferrer.kwRest[ctor] = true
		}
	case inherited != nil:
		ctor.Params, ctor.ParamNames, ctor.Optional, ctor.Rest = inherited.Params, inherited.ParamNames, inherited.Optional, inherited.Rest
	}
	info.ctor = ctor
	if !c.env().Update(cd.Name.Value, ctor) {
		c.env().Define(cd.Name.Value, ctor, false)
	}
}

// collectSelfFields registers the attributes a method assigns on self.
func collectSelfFields(m *parser.FunctionDef, info *classInfo, c *Checker) {
	if len(m.Parameters) == 0 {
		return
	}
	self := m.Parameters[0].Name.Value
	var walk func([]parser.Statement)
	walk = func(stmts []parser.Statement) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *parser.AssignStatement:
				member, ok := n.Target.(*parser.MemberExpression)
				if !ok {
					continue
				}
				obj, ok := member.Object.(*parser.Identifier)
				if !ok || obj.Value != self {
					continue
				}
				name := member.Property.Value
				if n.TypeAnnotation != nil {
					info.instance.Fields[name] = c.inferrer.resolveAnnotation(n.TypeAnnotation)
					info.annotated[name] = true
				} else if _, exists := info.instance.Fields[name]; !exists {
					info.instance.Fields[name] = types.Unknown
				}
			case *parser.IfStatement:
				walk(n.Consequence.Statements)
				if n.Alternative != nil {
					walk([]parser.Statement{n.Alternative})
				}
			case *parser.BlockStatement:
				walk(n.Statements)
			case *parser.ForStatement:
				walk(n.Body.Statements)
			case *parser.WhileStatement:
				walk(n.Body.Statements)
			case *parser.TryStatement:
				walk(n.Body.Statements)
				for _, h := range n.Handlers {
					walk(h.Body.Statements)
				}
			case *parser.WithStatement:
				walk(n.Body.Statements)
			}
		}
	}
	walk(m.Body.Statements)
}

// --- Statements ---

func (c *Checker) checkStatement(s parser.Statement) {
	in := c.inferrer
	switch n := s.(type) {
	case *parser.ExpressionStatement:
		in.infer(n.Expression)
	case *parser.LetStatement:
		c.checkLet(n)
	case *parser.AssignStatement:
		c.checkAssign(n)
	case *parser.DestructuringAssignment:
		value := in.infer(n.Value)
		in.bindTarget(n.Pattern, value)
		if n.Kind == "const" {
			for _, name := range parser.PatternNames(n.Pattern) {
				c.env().MarkConst(name)
			}
		}
	case *parser.FunctionDef:
		c.checkFunctionDef(n)
	case *parser.ClassDef:
		c.checkClass(n)
	case *parser.BlockStatement:
		c.checkBlock(n.Statements)
	case *parser.IfStatement:
		in.infer(n.Condition)
		c.checkBlock(n.Consequence.Statements)
		if n.Alternative != nil {
			c.checkStatement(n.Alternative)
		}
	case *parser.WhileStatement:
		in.infer(n.Condition)
		c.checkLoopBody(n.Body)
	case *parser.ForStatement:
		iterable := in.infer(n.Iterable)
		elem := builtins.ElementType(iterable)
		if n.IsAsync {
			if inst, ok := elem.(*types.InstantiatedType); ok && inst.Generic == types.PromiseGeneric {
				elem = inst.TypeArguments[0]
			}
		}
		if elem == types.Unknown && !isDynamic(iterable) {
			c.addError(n.Iterable, "'%s' object is not iterable", iterable)
			elem = types.Any
		}
		in.bindTarget(n.Target, elem)
		c.checkLoopBody(n.Body)
	case *parser.MatchStatement:
		c.checkMatch(n)
	case *parser.ReturnStatement:
		c.checkReturn(n)
	case *parser.BreakStatement:
		if c.loopDepth == 0 {
			c.addError(n, "'break' outside loop")
		}
	case *parser.ContinueStatement:
		if c.loopDepth == 0 {
			c.addError(n, "'continue' not properly in loop")
		}
	case *parser.PassStatement, *parser.GlobalStatement:
	case *parser.RaiseStatement:
		if n.Exception != nil {
			in.infer(n.Exception)
		}
		if n.Cause != nil {
			in.infer(n.Cause)
		}
	case *parser.TryStatement:
		c.checkTry(n)
	case *parser.WithStatement:
		for _, item := range n.Items {
			ctx := in.infer(item.Context)
			if item.Target != nil {
				in.bindName(item.Target, item.Target.Value, enterType(ctx))
				in.record(item.Target, enterType(ctx))
			}
		}
		c.checkBlock(n.Body.Statements)
	case *parser.AssertStatement:
		in.infer(n.Condition)
		if n.Message != nil {
			in.infer(n.Message)
		}
	case *parser.DeleteStatement:
		for _, t := range n.Targets {
			in.infer(t)
		}
	case *parser.ImportDeclaration:
		c.checkImport(n)
	case *parser.ExportDeclaration:
		switch {
		case n.Declaration != nil:
			c.checkStatement(n.Declaration)
		case n.Value != nil:
			in.infer(n.Value)
		}
	}
}

func (c *Checker) checkLoopBody(body *parser.BlockStatement) {
	c.loopDepth++
	c.checkBlock(body.Statements)
	c.loopDepth--
}

func (c *Checker) checkLet(n *parser.LetStatement) {
	in := c.inferrer
	name := n.Name.Value
	env := c.env()
	if info, ok := env.symbols[name]; ok && info.IsConst && info.Type != types.Unknown {
		c.addError(n, "cannot reassign constant '%s'", name)
		return
	}
	value := types.Type(types.None)
	if n.Value != nil {
		value = in.infer(n.Value)
	}
	if n.TypeAnnotation != nil {
		declared := in.resolveAnnotation(n.TypeAnnotation)
		if n.Value != nil {
			in.checkAssignable(n.Value, value, declared, "'"+name+"'")
		}
		env.DefineAnnotated(name, declared, n.IsConst())
		in.record(n.Name, declared)
		return
	}
	if !env.Update(name, value) {
		env.Define(name, value, n.IsConst())
	}
	if n.IsConst() {
		env.MarkConst(name)
	}
	in.record(n.Name, value)
}

func (c *Checker) checkAssign(n *parser.AssignStatement) {
	in := c.inferrer
	var value types.Type = types.Unknown
	if n.Value != nil {
		value = in.infer(n.Value)
	}
	if n.Operator != "=" {
		current := in.infer(n.Target)
		value = in.binaryType(n, strings.TrimSuffix(n.Operator, "="), current, value)
	}

	switch target := n.Target.(type) {
	case *parser.Identifier:
		name := target.Value
		if isTypeVarCall(n.Value) {
			c.declareTypeVar(name, n.Value.(*parser.CallExpression))
		}
		if n.TypeAnnotation != nil {
			declared := in.resolveAnnotation(n.TypeAnnotation)
			if n.Value != nil {
				in.checkAssignable(n.Value, value, declared, "'"+name+"'")
			}
			_, scope := c.env().Lookup(name)
			if scope == nil {
				scope = c.env()
			}
			scope.DefineAnnotated(name, declared, false)
			in.record(target, declared)
			return
		}
		in.bindName(n, name, value)
		in.record(target, value)
	case *parser.MemberExpression:
		obj := in.infer(target.Object)
		c.assignAttribute(n, target, obj, value)
	case *parser.IndexExpression:
		container := in.infer(target.Left)
		in.infer(target.Index)
		switch ct := container.(type) {
		case *types.ListType:
			in.checkAssignable(n.Value, value, ct.Elem, "list item")
		case *types.DictType:
			in.checkAssignable(n.Value, value, ct.Value, "dict value")
		}
		in.record(target, value)
	}
}

func isTypeVarCall(e parser.Expression) bool {
	call, ok := e.(*parser.CallExpression)
	if !ok {
		return false
	}
	id, ok := call.Function.(*parser.Identifier)
	return ok && id.Value == "TypeVar"
}

// declareTypeVar handles T = TypeVar("T", bound=...).
func (c *Checker) declareTypeVar(name string, call *parser.CallExpression) {
	var constraint types.Type
	for _, arg := range call.Arguments {
		kw, ok := arg.(*parser.KeywordArgument)
		if !ok || kw.Name.Value != "bound" {
			continue
		}
		if ann := typeExprFromValue(kw.Value); ann != nil {
			constraint = c.inferrer.resolveAnnotation(ann)
		}
	}
	c.env().DefineTypeParameter(types.NewTypeParameter(name, 0, constraint))
}

// typeExprFromValue reinterprets a value expression such as `int` or
// `"Node"` as an annotation.
func typeExprFromValue(e parser.Expression) parser.TypeExpression {
	switch v := e.(type) {
	case *parser.Identifier:
		return &parser.TypeName{Token: v.Token, Name: v.Value}
	case *parser.StringLiteral:
		return &parser.TypeName{Token: v.Token, Name: v.Value}
	}
	return nil
}

func (c *Checker) assignAttribute(n *parser.AssignStatement, target *parser.MemberExpression, obj, value types.Type) {
	in := c.inferrer
	name := target.Property.Value
	inst, ok := obj.(*types.ObjectType)
	if !ok {
		in.record(target, value)
		return
	}
	info, isClass := in.classes[inst.Name]
	if !isClass || info.instance != inst {
		in.record(target, in.attribute(target, inst, name))
		return
	}
	current, exists := inst.Fields[name]
	switch {
	case info.annotated[name]:
		if n.Value != nil {
			in.checkAssignable(n.Value, value, current, "attribute '"+name+"'")
		}
	case !exists || current == types.Unknown:
		inst.Fields[name] = types.Widen(value)
	}
	in.record(target, inst.Fields[name])
}

func (c *Checker) checkFunctionDef(fd *parser.FunctionDef) {
	for _, d := range fd.Decorators {
		c.inferrer.infer(d.Expression)
	}
	ft := c.declareFunction(fd)
	env := NewEnclosedEnvironment(c.env())
	c.inferrer.bindParameters(env, fd.Parameters, ft, nil)
	c.finishFunction(fd, ft, env)
}

// finishFunction checks the body and settles an inferred return type.
func (c *Checker) finishFunction(fd *parser.FunctionDef, ft *types.FunctionType, env *Environment) {
	var declared types.Type
	if fd.ReturnType != nil {
		declared = ft.Return
		if fd.IsAsync {
			declared = ft.Return.(*types.InstantiatedType).TypeArguments[0]
		}
	}
	ret := c.checkFunctionBody(env, fd.Body, declared, fd.IsAsync)
	if fd.ReturnType == nil {
		if fd.IsAsync {
			ret = types.Promise(ret)
		}
		ft.Return = ret
	}
}

// checkFunctionBody checks a function body in env and returns the declared
// return type, or the one inferred from its return statements.
func (c *Checker) checkFunctionBody(env *Environment, body *parser.BlockStatement, declared types.Type, isAsync bool) types.Type {
	in := c.inferrer
	savedFn, savedEnv, savedLoops := c.fn, in.env, c.loopDepth
	c.fn = &functionContext{declared: declared, isAsync: isAsync}
	in.env = env
	c.loopDepth = 0

	c.checkScope(body.Statements)

	fn := c.fn
	c.fn, in.env, c.loopDepth = savedFn, savedEnv, savedLoops
	if declared != nil {
		return declared
	}
	if len(fn.returns) == 0 {
		return types.None
	}
	ret := types.CommonTypeOf(fn.returns)
	if fn.bare {
		ret = types.Optional(ret)
	}
	return ret
}

func (c *Checker) checkReturn(n *parser.ReturnStatement) {
	if c.fn == nil {
		c.addError(n, "'return' outside function")
		if n.ReturnValue != nil {
			c.inferrer.infer(n.ReturnValue)
		}
		return
	}
	if n.ReturnValue == nil {
		c.fn.bare = true
		if c.fn.declared != nil {
			c.inferrer.checkAssignable(n, types.None, c.fn.declared, "return value")
		}
		return
	}
	value := c.inferrer.infer(n.ReturnValue)
	if c.fn.declared != nil {
		c.inferrer.checkAssignable(n.ReturnValue, value, c.fn.declared, "return value")
		return
	}
	c.fn.returns = append(c.fn.returns, types.Widen(value))
}

func (c *Checker) checkClass(cd *parser.ClassDef) {
	info, ok := c.classDefs[cd]
	if !ok {
		c.declareClass(cd)
		c.declareClassMembers(cd)
		info = c.classDefs[cd]
	}
	for _, d := range cd.Decorators {
		c.inferrer.infer(d.Expression)
	}
	for _, m := range cd.Methods {
		for _, d := range m.Decorators {
			c.inferrer.infer(d.Expression)
		}
		sig := c.signatures[m]
		env := NewEnclosedEnvironment(c.env())
		var self types.Type = info.instance
		switch {
		case m.HasDecorator("staticmethod"):
			self = nil
		case m.HasDecorator("classmethod"):
			self = info.ctor
		}
		c.inferrer.bindParameters(env, m.Parameters, sig, self)
		c.finishFunction(m, sig, env)
		if m.HasDecorator("property") {
			info.instance.Fields[m.Name.Value] = returnOf(sig)
		}
	}
}

func (c *Checker) checkMatch(n *parser.MatchStatement) {
	in := c.inferrer
	subject := in.infer(n.Subject)
	for _, mc := range n.Cases {
		c.bindMatchPattern(mc.Pattern, subject)
		if mc.Guard != nil {
			in.infer(mc.Guard)
		}
		c.checkBlock(mc.Body.Statements)
	}
}

func (c *Checker) bindMatchPattern(p parser.MatchPattern, subject types.Type) {
	in := c.inferrer
	switch n := p.(type) {
	case *parser.CapturePattern:
		in.bindName(n, n.Name.Value, subject)
		in.record(n.Name, subject)
	case *parser.LiteralPattern:
		in.infer(n.Value)
	case *parser.ValuePattern:
		in.infer(n.Value)
	case *parser.SequencePattern:
		for i, el := range n.Elements {
			c.bindMatchPattern(el, elementAt(subject, i))
		}
	case *parser.OrPattern:
		for _, alt := range n.Alternatives {
			c.bindMatchPattern(alt, subject)
		}
	}
}

func (c *Checker) checkTry(n *parser.TryStatement) {
	in := c.inferrer
	c.checkBlock(n.Body.Statements)
	for _, h := range n.Handlers {
		var caught types.Type = builtins.ExceptionType("Exception")
		if h.Type != nil {
			caught = instanceTypeOf(in.infer(h.Type))
		}
		if h.Name != nil {
			in.bindName(h.Name, h.Name.Value, caught)
			in.record(h.Name, caught)
		}
		c.checkBlock(h.Body.Statements)
	}
	if n.Else != nil {
		c.checkBlock(n.Else.Statements)
	}
	if n.Finally != nil {
		c.checkBlock(n.Finally.Statements)
	}
}

// instanceTypeOf maps the type of an except clause's class expression to the
// type of the caught value.
func instanceTypeOf(t types.Type) types.Type {
	switch ct := t.(type) {
	case *types.FunctionType:
		return returnOf(ct)
	case *types.TupleType:
		members := make([]types.Type, len(ct.Elems))
		for i, el := range ct.Elems {
			members[i] = instanceTypeOf(el)
		}
		return types.NewUnion(members...)
	}
	return types.Any
}

// enterType is the value bound by `with ctx as name`.
func enterType(ctx types.Type) types.Type {
	if obj, ok := ctx.(*types.ObjectType); ok {
		if enter, ok := obj.Fields["__enter__"].(*types.FunctionType); ok {
			return returnOf(enter)
		}
	}
	return ctx
}

func (c *Checker) checkImport(n *parser.ImportDeclaration) {
	in := c.inferrer
	module, builtin := c.env().Module(n.Source)
	obj, _ := module.(*types.ObjectType)

	switch n.Kind {
	case parser.ImportModule:
		t := types.Type(types.Any)
		if builtin {
			t = module
		}
		in.bindName(n, n.LocalName(), t)
	case parser.ImportFrom:
		if n.Wildcard {
			if obj != nil {
				for _, k := range obj.Keys() {
					c.env().Define(k, obj.Fields[k], false)
				}
			}
			return
		}
		for _, spec := range n.Specifiers {
			t := types.Type(types.Any)
			if obj != nil {
				f, ok := obj.Fields[spec.Name.Value]
				if !ok {
					c.addError(spec.Name, "module '%s' has no attribute '%s'", n.Source, spec.Name.Value)
				} else {
					t = f
				}
			}
			in.bindName(spec.Name, specifierLocal(spec), t)
		}
	default:
		for _, name := range importedNames(n) {
			in.bindName(n, name, types.Any)
		}
	}
}
