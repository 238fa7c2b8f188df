package checker

import (
	"strconv"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// Inferrer derives the static type of expressions against a live binding
// table. Every inferred type is recorded and can be read back with TypeOf.
type Inferrer struct {
	env      *Environment
	registry *builtins.Registry
	types    map[parser.Expression]types.Type
	errs     []*errors.TypeError

	// classes maps instance type names to what the checker learned about
	// the class, for attribute errors and field updates.
	classes map[string]*classInfo
	// kwRest marks signatures that accept arbitrary keyword arguments.
	kwRest map[*types.FunctionType]bool
	// checker checks the bodies of block lambdas; nil when inferring
	// standalone expressions.
	checker *Checker
}

// NewInferrer creates an inferrer over env using the standard builtin
// method table.
func NewInferrer(env *Environment) *Inferrer {
	return &Inferrer{
		env:      env,
		registry: builtins.Default(),
		types:    map[parser.Expression]types.Type{},
		classes:  map[string]*classInfo{},
		kwRest:   map[*types.FunctionType]bool{},
	}
}

// InferExpressionType returns the type of expr and the first type error
// found inside it, if any.
func (in *Inferrer) InferExpressionType(expr parser.Expression) (types.Type, error) {
	mark := len(in.errs)
	t := in.infer(expr)
	if len(in.errs) > mark {
		return t, in.errs[mark]
	}
	return t, nil
}

// TypeOf returns the type recorded for expr, or Unknown.
func (in *Inferrer) TypeOf(expr parser.Expression) types.Type {
	if t, ok := in.types[expr]; ok {
		return t
	}
	return types.Unknown
}

// Errors returns every type error reported so far.
func (in *Inferrer) Errors() []*errors.TypeError {
	return in.errs
}

func (in *Inferrer) record(expr parser.Expression, t types.Type) types.Type {
	if t == nil {
		t = types.Any
	}
	in.types[expr] = t
	return t
}

func (in *Inferrer) infer(expr parser.Expression) types.Type {
	if expr == nil {
		return types.None
	}
	return in.record(expr, in.inferNode(expr))
}

func (in *Inferrer) inferNode(expr parser.Expression) types.Type {
	switch n := expr.(type) {
	case *parser.Identifier:
		if t, _, ok := in.env.Resolve(n.Value); ok {
			return t
		}
		// names the checker cannot see come from the host
		return types.Any
	case *parser.IntegerLiteral:
		return types.Int
	case *parser.FloatLiteral:
		return types.Float
	case *parser.StringLiteral:
		return types.Str
	case *parser.BooleanLiteral:
		return types.Bool
	case *parser.NoneLiteral:
		return types.None
	case *parser.FStringLiteral:
		for _, part := range n.Parts {
			switch p := part.(type) {
			case *parser.FStringExpr:
				in.infer(p.Expression)
			case *parser.FStringFormatted:
				in.infer(p.Expression)
			}
		}
		return types.Str
	case *parser.BinaryExpression:
		left := in.infer(n.Left)
		right := in.infer(n.Right)
		return in.binaryType(n, n.Operator, left, right)
	case *parser.UnaryExpression:
		return in.inferUnary(n)
	case *parser.ConditionalExpression:
		in.infer(n.Condition)
		return types.FindCommonType(in.infer(n.Consequence), in.infer(n.Alternative))
	case *parser.AssignmentExpression:
		value := in.infer(n.Value)
		in.bindName(n, n.Target.Value, value)
		in.record(n.Target, value)
		return value
	case *parser.KeywordArgument:
		return in.infer(n.Value)
	case *parser.SpreadElement:
		return in.infer(n.Argument)
	case *parser.CallExpression:
		return in.inferCall(n)
	case *parser.MemberExpression:
		recv := in.infer(n.Object)
		return in.memberType(n, recv)
	case *parser.IndexExpression:
		return in.inferIndex(n)
	case *parser.SliceExpression:
		return in.inferSlice(n)
	case *parser.NewExpression:
		callee := in.infer(n.Callee)
		in.inferArgs(n.Arguments)
		if ft, ok := callee.(*types.FunctionType); ok {
			return returnOf(ft)
		}
		return types.Any
	case *parser.ListLiteral:
		return &types.ListType{Elem: in.elementsType(n.Elements)}
	case *parser.TupleLiteral:
		elems := make([]types.Type, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = in.infer(el)
		}
		return &types.TupleType{Elems: elems}
	case *parser.SetLiteral:
		return &types.SetType{Elem: in.elementsType(n.Elements)}
	case *parser.DictLiteral:
		return in.inferDict(n)
	case *parser.Comprehension:
		return in.inferComprehension(n)
	case *parser.ArrowFunction:
		return in.inferArrow(n)
	case *parser.YieldExpression:
		in.infer(n.Value)
		return types.Any
	case *parser.JSXElement:
		for _, attr := range n.Attributes {
			if attr.Value != nil {
				in.infer(attr.Value)
			}
		}
		for _, child := range n.Children {
			in.infer(child)
		}
		return types.Any
	case *parser.JSXText:
		return types.Str
	}
	return types.Any
}

// isDynamic reports types that switch checking off: Any, and anything
// mentioning Unknown.
func isDynamic(t types.Type) bool {
	if t == nil || t == types.Any {
		return true
	}
	found := false
	types.Walk(t, func(inner types.Type) bool {
		found = inner == types.Unknown
		return !found
	})
	return found
}

func isNumberLike(t types.Type) bool {
	t = types.Widen(t)
	return types.IsNumeric(t) || t == types.Bool
}

func promote(left, right types.Type) types.Type {
	if types.Widen(left) == types.Float || types.Widen(right) == types.Float {
		return types.Float
	}
	return types.Int
}

func isSequence(t types.Type) bool {
	switch t.(type) {
	case *types.ListType, *types.ArrayType:
		return true
	}
	return false
}

// binaryType applies the operator rules to already-inferred operands.
func (in *Inferrer) binaryType(node parser.Node, op string, left, right types.Type) types.Type {
	switch op {
	case "and", "or":
		return types.FindCommonType(left, right)
	case "==", "!=", "is", "is not", "in", "not in":
		return types.Bool
	case "<", ">", "<=", ">=":
		if !comparable(left, right) {
			in.addError(node, "'%s' not supported between instances of '%s' and '%s'", op, left, right)
		}
		return types.Bool
	}
	if isDynamic(left) || isDynamic(right) {
		return types.Any
	}
	l, r := types.Widen(left), types.Widen(right)
	numeric := isNumberLike(l) && isNumberLike(r)

	switch op {
	case "+":
		switch {
		case numeric:
			return promote(l, r)
		case l == types.Str && r == types.Str:
			return types.Str
		case isSequence(l) && isSequence(r):
			return &types.ListType{Elem: types.FindCommonType(builtins.ElementType(l), builtins.ElementType(r))}
		}
		lt, lok := l.(*types.TupleType)
		rt, rok := r.(*types.TupleType)
		if lok && rok {
			elems := append(append([]types.Type{}, lt.Elems...), rt.Elems...)
			return &types.TupleType{Elems: elems}
		}
	case "/":
		if numeric {
			return types.Float
		}
	case "-", "//", "**":
		if numeric {
			return promote(l, r)
		}
		if _, ok := l.(*types.SetType); ok && op == "-" && l.Equals(r) {
			return l
		}
	case "%":
		if numeric {
			return promote(l, r)
		}
		if l == types.Str {
			return types.Str
		}
	case "*":
		switch {
		case numeric:
			return promote(l, r)
		case l == types.Str && r == types.Int, l == types.Int && r == types.Str:
			return types.Str
		case isSequence(l) && r == types.Int:
			return l
		case l == types.Int && isSequence(r):
			return r
		}
	}
	in.addError(node, "unsupported operand types for %s: '%s' and '%s'", op, left, right)
	return types.Any
}

// comparable reports whether ordering comparisons between the two types are
// meaningful.
func comparable(left, right types.Type) bool {
	if isDynamic(left) || isDynamic(right) {
		return true
	}
	for _, l := range types.Members(left) {
		for _, r := range types.Members(right) {
			if !comparablePair(types.Widen(l), types.Widen(r)) {
				return false
			}
		}
	}
	return true
}

func comparablePair(l, r types.Type) bool {
	switch {
	case isNumberLike(l) && isNumberLike(r):
		return true
	case l == types.Str && r == types.Str:
		return true
	case isSequence(l) && isSequence(r):
		return true
	}
	_, lt := l.(*types.TupleType)
	_, rt := r.(*types.TupleType)
	if lt && rt {
		return true
	}
	_, ls := l.(*types.SetType)
	_, rs := r.(*types.SetType)
	return ls && rs
}

func (in *Inferrer) inferUnary(n *parser.UnaryExpression) types.Type {
	operand := in.infer(n.Operand)
	switch n.Operator {
	case "not", "!":
		return types.Bool
	case "await":
		if inst, ok := operand.(*types.InstantiatedType); ok && inst.Generic == types.PromiseGeneric {
			return inst.TypeArguments[0]
		}
		return operand
	case "-", "+":
		if isDynamic(operand) {
			return types.Any
		}
		w := types.Widen(operand)
		if w == types.Bool {
			return types.Int
		}
		if types.IsNumeric(w) {
			return w
		}
		in.addError(n, "bad operand type for unary %s: '%s'", n.Operator, operand)
		return types.Any
	}
	return operand
}

// elementsType unifies the element types of a list or set literal; spread
// elements contribute their element type.
func (in *Inferrer) elementsType(elements []parser.Expression) types.Type {
	ts := make([]types.Type, 0, len(elements))
	for _, el := range elements {
		if spread, ok := el.(*parser.SpreadElement); ok {
			t := in.infer(spread.Argument)
			in.record(spread, t)
			ts = append(ts, builtins.ElementType(t))
			continue
		}
		ts = append(ts, in.infer(el))
	}
	if len(ts) == 0 {
		// filled in later; stays dynamic
		return types.Unknown
	}
	return types.CommonTypeOf(ts)
}

// inferDict builds an object type when every key is a string literal and a
// dict type otherwise.
func (in *Inferrer) inferDict(n *parser.DictLiteral) types.Type {
	fields := map[string]types.Type{}
	var keys, values []types.Type
	structural := true
	for _, entry := range n.Entries {
		if entry.Spread {
			t := in.infer(entry.Value)
			if obj, ok := t.(*types.ObjectType); ok && obj.Name == "" {
				for k, v := range obj.Fields {
					fields[k] = v
				}
				continue
			}
			k, v := builtins.KeyValueTypes(t)
			keys = append(keys, k)
			values = append(values, v)
			structural = false
			continue
		}
		kt := in.infer(entry.Key)
		vt := in.infer(entry.Value)
		keys = append(keys, kt)
		values = append(values, vt)
		if s, ok := entry.Key.(*parser.StringLiteral); ok {
			fields[s.Value] = vt
		} else {
			structural = false
		}
	}
	if structural && len(n.Entries) > 0 {
		return types.NewObject(fields)
	}
	for _, v := range fields {
		values = append(values, v)
		keys = append(keys, types.Str)
	}
	if len(keys) == 0 {
		return &types.DictType{Key: types.Any, Value: types.Any}
	}
	return &types.DictType{Key: types.CommonTypeOf(keys), Value: types.CommonTypeOf(values)}
}

func (in *Inferrer) inferComprehension(n *parser.Comprehension) types.Type {
	outer := in.env
	in.env = NewEnclosedEnvironment(outer)
	defer func() { in.env = outer }()

	for _, clause := range n.Clauses {
		iterable := in.infer(clause.Iterable)
		in.defineTarget(clause.Target, builtins.ElementType(iterable))
		for _, cond := range clause.Conditions {
			in.infer(cond)
		}
	}
	switch n.Kind {
	case parser.SetComp:
		return &types.SetType{Elem: in.infer(n.Element)}
	case parser.DictComp:
		return &types.DictType{Key: in.infer(n.Key), Value: in.infer(n.Element)}
	}
	return &types.ListType{Elem: in.infer(n.Element)}
}

// elementAt is the type of position i when destructuring t.
func elementAt(t types.Type, i int) types.Type {
	if tt, ok := t.(*types.TupleType); ok {
		if i < len(tt.Elems) {
			return tt.Elems[i]
		}
		return types.Any
	}
	elem := builtins.ElementType(t)
	if elem == types.Unknown {
		return types.Any
	}
	return elem
}

// defineTarget binds a loop or comprehension target in the current scope
// without looking outward.
func (in *Inferrer) defineTarget(target parser.Expression, t types.Type) {
	in.walkTarget(target, t, func(id *parser.Identifier, t types.Type) {
		if !in.env.Define(id.Value, t, false) {
			in.env.Update(id.Value, t)
		}
	})
}

// bindTarget assigns to a destructuring target with normal scoping rules.
func (in *Inferrer) bindTarget(target parser.Expression, t types.Type) {
	in.walkTarget(target, t, func(id *parser.Identifier, t types.Type) {
		in.bindName(id, id.Value, t)
	})
}

func (in *Inferrer) walkTarget(target parser.Expression, t types.Type, bind func(*parser.Identifier, types.Type)) {
	switch tg := target.(type) {
	case *parser.Identifier:
		bind(tg, t)
		in.record(tg, t)
	case *parser.ArrayPattern:
		for i, el := range tg.Elements {
			if rest, ok := el.(*parser.RestElement); ok {
				elem := types.Type(types.Any)
				if !isDynamic(t) {
					elem = types.CommonTypeOf(restElements(t, i))
				}
				bind(rest.Target, &types.ListType{Elem: elem})
				continue
			}
			in.walkTarget(el, elementAt(t, i), bind)
		}
	case *parser.ObjectPattern:
		for _, prop := range tg.Properties {
			field := types.Type(types.Any)
			if obj, ok := t.(*types.ObjectType); ok {
				if f, found := obj.Fields[prop.Key.Value]; found {
					field = f
				}
			}
			if prop.Default != nil {
				field = types.FindCommonType(types.RemoveNone(field), in.infer(prop.Default))
			}
			if prop.Target == nil {
				bind(prop.Key, field)
			} else {
				in.walkTarget(prop.Target, field, bind)
			}
		}
		if tg.Rest != nil {
			bind(tg.Rest, &types.DictType{Key: types.Str, Value: types.Any})
		}
	case *parser.MemberExpression, *parser.IndexExpression:
		in.infer(tg)
	}
}

func restElements(t types.Type, from int) []types.Type {
	if tt, ok := t.(*types.TupleType); ok {
		if from >= len(tt.Elems) {
			return nil
		}
		return tt.Elems[from:]
	}
	return []types.Type{elementAt(t, from)}
}

// bindName assigns t to name following the scope rules: the innermost
// binding is updated (hoisting guarantees function locals exist), constants
// and annotated names are checked, unknown names become locals.
func (in *Inferrer) bindName(node parser.Node, name string, t types.Type) {
	info, scope := in.env.Lookup(name)
	switch {
	case scope == nil:
		in.env.Define(name, t, false)
	case info.IsConst && info.Type != types.Unknown:
		in.addError(node, "cannot reassign constant '%s'", name)
	case info.Annotated:
		in.checkAssignable(node, t, info.Type, "'"+name+"'")
	default:
		scope.Update(name, t)
	}
}

// checkAssignable reports when source cannot be used where target is
// expected. Dynamic sources are never reported.
func (in *Inferrer) checkAssignable(node parser.Node, source, target types.Type, what string) bool {
	if isDynamic(source) {
		return true
	}
	if err := types.CheckAssignable(source, target); err != nil {
		in.addError(node, "%s: %v", what, err)
		return false
	}
	return true
}

func (in *Inferrer) inferArgs(args []parser.Expression) []types.Type {
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = in.infer(a)
	}
	return out
}

func returnOf(ft *types.FunctionType) types.Type {
	if ft.Return == nil {
		return types.None
	}
	return ft.Return
}

func (in *Inferrer) inferCall(n *parser.CallExpression) types.Type {
	if id, ok := n.Function.(*parser.Identifier); ok {
		switch id.Value {
		case "isinstance", "hasattr":
			if _, scope := in.env.Lookup(id.Value); scope == in.env.Global() {
				in.record(id, types.Any)
				in.inferArgs(n.Arguments)
				return types.Bool
			}
		case "TypeVar":
			in.record(id, types.Any)
			in.inferArgs(n.Arguments)
			return types.Any
		}
	}

	var callee types.Type
	if member, ok := n.Function.(*parser.MemberExpression); ok {
		recv := in.infer(member.Object)
		if m, found := in.builtinMethod(recv, member.Property.Value); found {
			in.record(member, types.Any)
			in.inferArgs(n.Arguments)
			return m.ReturnType(recv)
		}
		callee = in.record(member, in.memberType(member, recv))
	} else {
		callee = in.infer(n.Function)
	}
	return in.applyCall(n, callee, n.Arguments)
}

// builtinMethod finds the rewrite table entry for recv.name, unless the
// receiver is a record that has its own field of that name.
func (in *Inferrer) builtinMethod(recv types.Type, name string) (builtins.Method, bool) {
	if obj, ok := recv.(*types.ObjectType); ok {
		if _, has := obj.Fields[name]; has {
			return builtins.Method{}, false
		}
	}
	kind := builtins.ReceiverOf(recv)
	if kind == builtins.ReceiverUnknown {
		return builtins.Method{}, false
	}
	return in.registry.LookupMethod(kind, name)
}

func (in *Inferrer) applyCall(node *parser.CallExpression, callee types.Type, args []parser.Expression) types.Type {
	switch ft := callee.(type) {
	case *types.FunctionType:
		return in.checkCall(node, ft, args)
	case *types.CallableType:
		actuals := in.inferArgs(args)
		for _, overload := range ft.Overloads {
			if argsFit(overload, actuals) {
				return returnOf(overload)
			}
		}
		in.addError(node, "no overload of %s matches the arguments", callee)
		if len(ft.Overloads) > 0 {
			return returnOf(ft.Overloads[0])
		}
		return types.Any
	case *types.Primitive:
		in.inferArgs(args)
		if ft != types.Any && ft != types.Unknown {
			in.addError(node, "'%s' object is not callable", ft)
		}
		return types.Any
	}
	in.inferArgs(args)
	return types.Any
}

func argsFit(ft *types.FunctionType, actuals []types.Type) bool {
	if len(actuals) < ft.RequiredParams() || (ft.Rest == nil && len(actuals) > len(ft.Params)) {
		return false
	}
	for i, a := range actuals {
		target := ft.Rest
		if i < len(ft.Params) {
			target = ft.Params[i]
		}
		if !isDynamic(a) && !types.IsAssignableTo(a, target) {
			return false
		}
	}
	return true
}

type callArg struct {
	node parser.Node
	name string
	typ  types.Type
}

// checkCall places positional and keyword arguments onto the signature,
// reports arity and assignability problems and returns the result type with
// generic parameters solved.
func (in *Inferrer) checkCall(node *parser.CallExpression, ft *types.FunctionType, args []parser.Expression) types.Type {
	var positional, keywords []callArg
	spread := false
	for _, a := range args {
		switch arg := a.(type) {
		case *parser.KeywordArgument:
			keywords = append(keywords, callArg{node: arg, name: arg.Name.Value, typ: in.infer(arg)})
		case *parser.SpreadElement:
			in.infer(arg)
			spread = true
		default:
			positional = append(positional, callArg{node: arg, typ: in.infer(arg)})
		}
	}

	slots := make([]*callArg, len(ft.Params))
	var extra []callArg
	for i := range positional {
		if i < len(slots) {
			slots[i] = &positional[i]
		} else {
			extra = append(extra, positional[i])
		}
	}
	namesKnown := len(ft.ParamNames) > 0
	for i := range keywords {
		kw := &keywords[i]
		idx := indexOf(ft.ParamNames, kw.name)
		switch {
		case idx < 0:
			if namesKnown && !in.kwRest[ft] {
				in.addError(kw.node, "unexpected keyword argument '%s'", kw.name)
			}
		case slots[idx] != nil:
			in.addError(kw.node, "multiple values for argument '%s'", kw.name)
		default:
			slots[idx] = kw
		}
	}

	if !spread {
		if len(extra) > 0 && ft.Rest == nil {
			in.addError(node, "expected at most %d argument(s), got %d", len(ft.Params), len(positional))
		}
		if namesKnown || len(keywords) == 0 {
			for i := range slots {
				if slots[i] == nil && !(i < len(ft.Optional) && ft.Optional[i]) {
					in.addError(node, "missing argument %s", paramLabel(ft, i))
					break
				}
			}
		}
	}

	var bindings map[string]types.Type
	if len(ft.TypeParams) > 0 {
		var formals, actuals []types.Type
		for i, s := range slots {
			if s != nil {
				formals = append(formals, ft.Params[i])
				actuals = append(actuals, s.typ)
			}
		}
		for _, e := range extra {
			formals = append(formals, ft.Rest)
			actuals = append(actuals, e.typ)
		}
		b, err := types.InferTypeArguments(ft.TypeParams, formals, actuals)
		if err != nil {
			in.addError(node, "%v", err)
		}
		bindings = b
	}
	resolve := func(t types.Type) types.Type {
		if bindings == nil {
			return t
		}
		return types.ResolveGenerics(t, bindings)
	}

	for i, s := range slots {
		if s != nil {
			in.checkAssignable(s.node, s.typ, resolve(ft.Params[i]), "argument "+paramLabel(ft, i))
		}
	}
	if ft.Rest != nil {
		for _, e := range extra {
			in.checkAssignable(e.node, e.typ, resolve(ft.Rest), "argument")
		}
	}
	return resolve(returnOf(ft))
}

func paramLabel(ft *types.FunctionType, i int) string {
	if i < len(ft.ParamNames) && ft.ParamNames[i] != "" {
		return "'" + ft.ParamNames[i] + "'"
	}
	return "#" + strconv.Itoa(i+1)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// memberType is the type of recv.name.
func (in *Inferrer) memberType(n *parser.MemberExpression, recv types.Type) types.Type {
	name := n.Property.Value
	t := in.attribute(n, types.RemoveNone(recv), name)
	if n.Optional && t != types.Any {
		return types.Optional(t)
	}
	return t
}

func (in *Inferrer) attribute(node parser.Node, recv types.Type, name string) types.Type {
	switch rt := recv.(type) {
	case *types.ObjectType:
		if f, ok := rt.Fields[name]; ok {
			if rt.IsOptional(name) {
				return types.Optional(f)
			}
			return f
		}
		if cls, ok := in.classes[rt.Name]; ok && cls.instance == rt && !cls.dynamic {
			in.addError(node, "'%s' object has no attribute '%s'", rt.Name, name)
		}
	case *types.IntersectionType:
		for _, member := range rt.Types {
			if obj, ok := member.(*types.ObjectType); ok {
				if f, found := obj.Fields[name]; found {
					return f
				}
			}
		}
	case *types.IndexSignatureType:
		return rt.Value
	case *types.UtilityType:
		return in.attribute(node, rt.Unwrap(), name)
	}
	return types.Any
}

func intIndex(e parser.Expression) (int64, bool) {
	switch n := e.(type) {
	case *parser.IntegerLiteral:
		return n.Value, true
	case *parser.UnaryExpression:
		if lit, ok := n.Operand.(*parser.IntegerLiteral); ok && n.Operator == "-" {
			return -lit.Value, true
		}
	}
	return 0, false
}

func (in *Inferrer) inferIndex(n *parser.IndexExpression) types.Type {
	left := in.infer(n.Left)
	in.infer(n.Index)
	switch lt := types.RemoveNone(left).(type) {
	case *types.ListType:
		return lt.Elem
	case *types.ArrayType:
		return lt.Elem
	case *types.TupleType:
		if i, ok := intIndex(n.Index); ok {
			if i < 0 {
				i += int64(len(lt.Elems))
			}
			if i < 0 || i >= int64(len(lt.Elems)) {
				in.addError(n, "tuple index out of range for %s", left)
				return types.Any
			}
			return lt.Elems[i]
		}
		return types.CommonTypeOf(lt.Elems)
	case *types.DictType:
		return lt.Value
	case *types.IndexSignatureType:
		return lt.Value
	case *types.ObjectType:
		if s, ok := n.Index.(*parser.StringLiteral); ok {
			if f, found := lt.Fields[s.Value]; found {
				return f
			}
		}
		if lt.Name == "" {
			_, v := builtins.KeyValueTypes(lt)
			return v
		}
	case *types.Primitive:
		if lt == types.Str {
			return types.Str
		}
	case *types.LiteralType:
		if lt.Base() == types.Str {
			return types.Str
		}
	case *types.InstantiatedType:
		if lt.Generic == types.MapGeneric {
			return lt.TypeArguments[1]
		}
	}
	return types.Any
}

func (in *Inferrer) inferSlice(n *parser.SliceExpression) types.Type {
	left := in.infer(n.Left)
	for _, part := range []parser.Expression{n.Lower, n.Upper, n.Step} {
		if part != nil {
			in.infer(part)
		}
	}
	switch lt := types.Widen(left).(type) {
	case *types.ListType, *types.ArrayType:
		return lt
	case *types.TupleType:
		return &types.ListType{Elem: types.CommonTypeOf(lt.Elems)}
	case *types.Primitive:
		if lt == types.Str {
			return types.Str
		}
	}
	return types.Any
}

// signature builds the type of a parameter list. With method set, the first
// positional parameter (self or cls) is left out.
func (in *Inferrer) signature(params []*parser.Parameter, method bool) *types.FunctionType {
	ft := &types.FunctionType{}
	kwRest := false
	for i, p := range params {
		if method && i == 0 && !p.IsRest && !p.IsKwRest {
			continue
		}
		t := types.Type(types.Any)
		if p.TypeAnnotation != nil {
			t = in.resolveAnnotation(p.TypeAnnotation)
		}
		if p.Default != nil {
			def := in.infer(p.Default)
			if p.TypeAnnotation != nil {
				in.checkAssignable(p.Default, def, t, "default of '"+p.Name.Value+"'")
			}
		}
		switch {
		case p.IsRest:
			ft.Rest = t
		case p.IsKwRest:
			kwRest = true
		default:
			ft.Params = append(ft.Params, t)
			ft.ParamNames = append(ft.ParamNames, p.Name.Value)
			ft.Optional = append(ft.Optional, p.Default != nil)
		}
	}
	ft.TypeParams = collectTypeParameters(ft)
	if kwRest {
		in.kwRest[ft] = true
	}
	return ft
}

// collectTypeParameters finds the generic parameters a signature mentions.
func collectTypeParameters(ft *types.FunctionType) []*types.TypeParameter {
	seen := map[string]bool{}
	var out []*types.TypeParameter
	visit := func(t types.Type) {
		if t == nil {
			return
		}
		types.Walk(t, func(inner types.Type) bool {
			if ref, ok := inner.(*types.TypeParameterType); ok && !seen[ref.Parameter.Name] {
				seen[ref.Parameter.Name] = true
				out = append(out, ref.Parameter)
			}
			return true
		})
	}
	for _, p := range ft.Params {
		visit(p)
	}
	visit(ft.Rest)
	visit(ft.Return)
	return out
}

// bindParameters defines the parameters of a function in its body scope.
func (in *Inferrer) bindParameters(env *Environment, params []*parser.Parameter, ft *types.FunctionType, self types.Type) {
	slot := 0
	for i, p := range params {
		name := p.Name.Value
		switch {
		case self != nil && i == 0 && !p.IsRest && !p.IsKwRest:
			env.DefineAnnotated(name, self, false)
		case p.IsRest:
			env.DefineAnnotated(name, &types.ListType{Elem: ft.Rest}, false)
		case p.IsKwRest:
			elem := types.Type(types.Any)
			if p.TypeAnnotation != nil {
				elem = in.resolveAnnotation(p.TypeAnnotation)
			}
			env.DefineAnnotated(name, &types.DictType{Key: types.Str, Value: elem}, false)
		default:
			t := ft.Params[slot]
			slot++
			if p.TypeAnnotation != nil {
				env.DefineAnnotated(name, t, false)
			} else {
				env.Define(name, t, false)
			}
		}
		in.record(p.Name, mustResolve(env, name))
	}
}

func mustResolve(env *Environment, name string) types.Type {
	t, _, _ := env.Resolve(name)
	return t
}

func (in *Inferrer) inferArrow(n *parser.ArrowFunction) types.Type {
	ft := in.signature(n.Parameters, false)
	ft.IsAsync = n.IsAsync
	env := NewEnclosedEnvironment(in.env)
	in.bindParameters(env, n.Parameters, ft, nil)

	var ret types.Type = types.Any
	switch body := n.Body.(type) {
	case *parser.BlockStatement:
		if in.checker != nil {
			ret = in.checker.checkFunctionBody(env, body, nil, n.IsAsync)
		}
	case parser.Expression:
		outer := in.env
		in.env = env
		ret = in.infer(body)
		in.env = outer
	}
	if n.IsAsync {
		ret = types.Promise(ret)
	}
	ft.Return = ret
	return ft
}

func (in *Inferrer) resolveAnnotation(expr parser.TypeExpression) types.Type {
	t, err := ResolveAnnotation(in.env, expr)
	if err != nil {
		in.addError(expr, "%v", err)
		return types.Any
	}
	return t
}
