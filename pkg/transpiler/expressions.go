package transpiler

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// JavaScript operator precedence, higher binds tighter.
const (
	precSequence       = 1
	precAssign         = 2 // also arrow, conditional and yield
	precOr             = 3
	precAnd            = 4
	precEquality       = 8
	precRelational     = 9
	precAdditive       = 11
	precMultiplicative = 12
	precExponent       = 13
	precUnary          = 14
	precCall           = 17 // call, member, new with arguments
	precPrimary        = 20
)

func wrap(s string, prec, min int) string {
	if prec < min {
		return "(" + s + ")"
	}
	return s
}

// expr emits e in a context that accepts any expression but a comma.
func (t *Transpiler) expr(e parser.Expression) string {
	s, _ := t.exprPrec(e)
	return s
}

// operand emits e, parenthesized if it binds looser than min.
func (t *Transpiler) operand(e parser.Expression, min int) string {
	s, prec := t.exprPrec(e)
	return wrap(s, prec, min)
}

func (t *Transpiler) exprList(es []parser.Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = t.expr(e)
	}
	return strings.Join(parts, ", ")
}

func (t *Transpiler) exprPrec(e parser.Expression) (string, int) {
	switch n := e.(type) {
	case nil:
		return "undefined", precPrimary
	case *parser.Identifier:
		return t.identifierValue(n), precPrimary
	case *parser.IntegerLiteral:
		return strconv.FormatInt(n.Value, 10), precPrimary
	case *parser.FloatLiteral:
		return n.String(), precPrimary
	case *parser.StringLiteral:
		return jsString(n.Value), precPrimary
	case *parser.BooleanLiteral:
		if n.Value {
			return "true", precPrimary
		}
		return "false", precPrimary
	case *parser.NoneLiteral:
		return "null", precPrimary
	case *parser.FStringLiteral:
		return t.fstring(n), precPrimary
	case *parser.BinaryExpression:
		return t.binary(n)
	case *parser.UnaryExpression:
		return t.unary(n)
	case *parser.ConditionalExpression:
		return t.condOperand(n.Condition, precOr) + " ? " + t.operand(n.Consequence, precAssign) +
			" : " + t.operand(n.Alternative, precAssign), precAssign
	case *parser.AssignmentExpression:
		t.scope.hoist(n.Target.Value)
		return safeName(n.Target.Value) + " = " + t.operand(n.Value, precAssign), precAssign
	case *parser.SpreadElement:
		return "..." + t.operand(n.Argument, precAssign), precAssign
	case *parser.CallExpression:
		return t.call(n)
	case *parser.NewExpression:
		return "new " + t.operand(n.Callee, precCall) + "(" + t.arguments(nil, n.Arguments) + ")", precCall
	case *parser.MemberExpression:
		return t.member(n), precCall
	case *parser.IndexExpression:
		return t.index(n), precCall
	case *parser.SliceExpression:
		return t.slice(n)
	case *parser.ListLiteral:
		return "[" + t.exprList(n.Elements) + "]", precPrimary
	case *parser.TupleLiteral:
		return "[" + t.exprList(n.Elements) + "]", precPrimary
	case *parser.SetLiteral:
		return "new Set([" + t.exprList(n.Elements) + "])", precCall
	case *parser.DictLiteral:
		return t.dict(n), precPrimary
	case *parser.Comprehension:
		return t.comprehension(n)
	case *parser.ArrowFunction:
		return t.lambda(n), precAssign
	case *parser.YieldExpression:
		t.scope.yields = true
		if n.Value == nil {
			return "yield", precAssign
		}
		return "yield " + t.operand(n.Value, precAssign), precAssign
	case *parser.JSXElement:
		return t.jsx(n), precCall
	case *parser.JSXText:
		return jsString(n.Value), precPrimary
	case *parser.ArrayPattern, *parser.ObjectPattern, *parser.RestElement:
		return t.pattern(n), precPrimary
	}
	return todo(e), precPrimary
}

// --- Names ---

// identifier emits a name in binding position.
func (t *Transpiler) identifier(n *parser.Identifier) string {
	if t.scope.self != "" && n.Value == t.scope.self {
		return "this"
	}
	return safeName(n.Value)
}

// identifierValue emits a name read as a value, mapping builtins.
func (t *Transpiler) identifierValue(n *parser.Identifier) string {
	if t.scope.self != "" && n.Value == t.scope.self {
		return "this"
	}
	if m, ok := t.builtin(n.Value); ok {
		return t.builtinValue(m)
	}
	return safeName(n.Value)
}

// builtinValue emits a builtin that is passed around rather than called.
func (t *Transpiler) builtinValue(m builtins.Mapping) string {
	t.useMapping(m)
	js := m.JSEquivalent
	switch {
	case m.IsMethodStyle:
		if _, ok := t.mapper.Helper("__" + m.Name); ok {
			t.useHelper("__" + m.Name)
			return "__" + m.Name
		}
		if m.IsProperty {
			return "((x) => x." + js + ")"
		}
		return "((x, ...args) => x." + js + "(...args))"
	case strings.HasPrefix(js, "new "):
		return "((...args) => " + js + "(...args))"
	}
	return js
}

// --- Literals ---

// jsString quotes s as a double-quoted JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case 0:
			b.WriteString(`\0`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == utf8.RuneError {
				b.WriteString(`\u` + leftPad(strconv.FormatInt(int64(r), 16), 4))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

// isIdentifierName reports whether s can be an unquoted property key.
func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (t *Transpiler) dict(n *parser.DictLiteral) string {
	if len(n.Entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		if e.Spread {
			parts[i] = "..." + t.operand(e.Value, precAssign)
			continue
		}
		parts[i] = t.propertyKey(e.Key) + ": " + t.operand(e.Value, precAssign)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (t *Transpiler) propertyKey(key parser.Expression) string {
	switch k := key.(type) {
	case *parser.StringLiteral:
		if isIdentifierName(k.Value) {
			return k.Value
		}
		return jsString(k.Value)
	case *parser.IntegerLiteral:
		return strconv.FormatInt(k.Value, 10)
	}
	return "[" + t.expr(key) + "]"
}

// --- Access ---

func (t *Transpiler) member(n *parser.MemberExpression) string {
	var obj string
	switch o := n.Object.(type) {
	case *parser.IntegerLiteral, *parser.FloatLiteral:
		obj = "(" + t.expr(o) + ")"
	default:
		if isSuperCall(o) {
			obj = "super"
		} else {
			obj = t.operand(o, precCall)
		}
	}
	sep := "."
	if n.Optional {
		sep = "?."
	}
	return obj + sep + n.Property.Value
}

func (t *Transpiler) index(n *parser.IndexExpression) string {
	obj := t.operand(n.Left, precCall)
	if k, ok := negativeLiteral(n.Index); ok && t.kindOf(n.Left) != builtins.ReceiverDict {
		return obj + ".at(-" + strconv.FormatInt(k, 10) + ")"
	}
	return obj + "[" + t.expr(n.Index) + "]"
}

func (t *Transpiler) slice(n *parser.SliceExpression) (string, int) {
	if n.Step != nil {
		t.useHelper("__slice")
		return "__slice(" + t.expr(n.Left) + ", " + t.expr(n.Lower) + ", " + t.expr(n.Upper) + ", " + t.expr(n.Step) + ")", precCall
	}
	obj := t.operand(n.Left, precCall)
	switch {
	case n.Lower == nil && n.Upper == nil:
		return obj + ".slice()", precCall
	case n.Upper == nil:
		return obj + ".slice(" + t.expr(n.Lower) + ")", precCall
	case n.Lower == nil:
		return obj + ".slice(0, " + t.expr(n.Upper) + ")", precCall
	}
	return obj + ".slice(" + t.expr(n.Lower) + ", " + t.expr(n.Upper) + ")", precCall
}

// --- Operators ---

func isNone(e parser.Expression) bool {
	_, ok := e.(*parser.NoneLiteral)
	return ok
}

func (t *Transpiler) binary(n *parser.BinaryExpression) (string, int) {
	left, right := n.Left, n.Right
	infix := func(op string, prec int) (string, int) {
		return t.operand(left, prec) + " " + op + " " + t.operand(right, prec+1), prec
	}

	switch n.Operator {
	case "and":
		return infix("&&", precAnd)
	case "or":
		return infix("||", precOr)
	case "==", "is":
		if isNone(left) || isNone(right) {
			return t.noneCompare(left, right, "==")
		}
		return infix("===", precEquality)
	case "!=", "is not":
		if isNone(left) || isNone(right) {
			return t.noneCompare(left, right, "!=")
		}
		return infix("!==", precEquality)
	case "<", ">", "<=", ">=":
		return infix(n.Operator, precRelational)
	case "in":
		return t.membership(left, right, false)
	case "not in":
		return t.membership(left, right, true)
	case "+":
		if t.kindOf(left) == builtins.ReceiverList && t.kindOf(right) == builtins.ReceiverList {
			return "[..." + t.operand(left, precAssign) + ", ..." + t.operand(right, precAssign) + "]", precPrimary
		}
		return infix("+", precAdditive)
	case "-":
		return infix("-", precAdditive)
	case "*":
		lt, rt := t.typeOf(left), t.typeOf(right)
		switch {
		case isStrType(lt) && isIntType(rt):
			return t.operand(left, precCall) + ".repeat(" + t.expr(right) + ")", precCall
		case isIntType(lt) && isStrType(rt):
			return t.operand(right, precCall) + ".repeat(" + t.expr(left) + ")", precCall
		case builtins.ReceiverOf(lt) == builtins.ReceiverList && isIntType(rt):
			return t.repeatList(left, right), precCall
		}
		return infix("*", precMultiplicative)
	case "/", "%":
		return infix(n.Operator, precMultiplicative)
	case "//":
		return "Math.floor(" + t.operand(left, precMultiplicative) + " / " + t.operand(right, precMultiplicative+1) + ")", precCall
	case "**":
		l, lp := t.exprPrec(left)
		if lp <= precUnary {
			l = "(" + l + ")"
		}
		return l + " ** " + t.operand(right, precExponent), precExponent
	}
	return infix(n.Operator, precRelational)
}

// noneCompare uses loose equality against null so undefined compares equal
// to None too.
func (t *Transpiler) noneCompare(left, right parser.Expression, op string) (string, int) {
	if isNone(left) {
		left, right = right, left
	}
	if isNone(left) {
		return "null " + op + "= null", precEquality
	}
	return t.operand(left, precEquality) + " " + op + " null", precEquality
}

func (t *Transpiler) repeatList(list, count parser.Expression) string {
	return "Array.from({ length: " + t.expr(count) + " }, () => " + t.operand(list, precAssign) + ").flat()"
}

// membership lowers `x in c` by the static type of c.
func (t *Transpiler) membership(item, container parser.Expression, negate bool) (string, int) {
	var s string
	prec := precCall
	switch t.kindOf(container) {
	case builtins.ReceiverDict:
		s, prec = t.operand(item, precRelational+1)+" in "+t.operand(container, precRelational+1), precRelational
	case builtins.ReceiverList, builtins.ReceiverStr:
		s = t.operand(container, precCall) + ".includes(" + t.expr(item) + ")"
	case builtins.ReceiverSet:
		s = t.operand(container, precCall) + ".has(" + t.expr(item) + ")"
	default:
		t.useHelper("__in")
		s = "__in(" + t.expr(item) + ", " + t.expr(container) + ")"
	}
	if negate {
		return "!" + wrap(s, prec, precUnary), precUnary
	}
	return s, prec
}

func (t *Transpiler) unary(n *parser.UnaryExpression) (string, int) {
	switch n.Operator {
	case "not", "!":
		return "!" + t.condOperand(n.Operand, precUnary), precUnary
	case "await":
		return "await " + t.unaryOperand(n.Operand), precUnary
	case "-", "+":
		s := t.unaryOperand(n.Operand)
		if strings.HasPrefix(s, n.Operator) {
			s = " " + s
		}
		return n.Operator + s, precUnary
	}
	return n.Operator + t.unaryOperand(n.Operand), precUnary
}

// unaryOperand wraps binary operands, including `**`, whose left side may
// not be a unary expression in JavaScript.
func (t *Transpiler) unaryOperand(e parser.Expression) string {
	s, prec := t.exprPrec(e)
	if prec <= precExponent {
		return "(" + s + ")"
	}
	return s
}

// --- Truthiness ---

// cond emits e where JavaScript tests truthiness. Empty collections are
// falsy in Python but truthy in JavaScript, so statically known
// collections test their size.
func (t *Transpiler) cond(e parser.Expression) string {
	s, _ := t.condPrec(e)
	return s
}

func (t *Transpiler) condOperand(e parser.Expression, min int) string {
	s, prec := t.condPrec(e)
	return wrap(s, prec, min)
}

func (t *Transpiler) condPrec(e parser.Expression) (string, int) {
	switch n := e.(type) {
	case *parser.BinaryExpression:
		switch n.Operator {
		case "and":
			return t.condOperand(n.Left, precAnd) + " && " + t.condOperand(n.Right, precAnd+1), precAnd
		case "or":
			return t.condOperand(n.Left, precOr) + " || " + t.condOperand(n.Right, precOr+1), precOr
		}
	case *parser.UnaryExpression:
		if n.Operator == "not" || n.Operator == "!" {
			return t.unary(n)
		}
	}
	switch t.typeOf(e).(type) {
	case *types.ListType, *types.ArrayType, *types.TupleType:
		return t.operand(e, precCall) + ".length > 0", precRelational
	case *types.DictType:
		return "Object.keys(" + t.expr(e) + ").length > 0", precRelational
	case *types.SetType:
		return t.operand(e, precCall) + ".size > 0", precRelational
	}
	return t.exprPrec(e)
}
