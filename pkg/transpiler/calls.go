package transpiler

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

func (t *Transpiler) call(n *parser.CallExpression) (string, int) {
	switch fn := n.Function.(type) {
	case *parser.Identifier:
		if fn.Value == "super" && !t.scope.visible("super") {
			return "super(" + t.arguments(nil, n.Arguments) + ")", precCall
		}
		if s, prec, ok := t.inlineCheck(fn.Value, n.Arguments); ok {
			return s, prec
		}
		if m, ok := t.builtin(fn.Value); ok {
			return t.builtinCall(fn.Value, m, n.Arguments)
		}
		sig := t.functions[fn.Value]
		if _, ok := t.classes[fn.Value]; ok {
			sig = t.constructor(fn.Value)
		}
		s := t.identifierValue(fn) + "(" + t.arguments(sig, n.Arguments) + ")"
		if t.newable[fn.Value] {
			s = "new " + s
		}
		return s, precCall

	case *parser.MemberExpression:
		if isSuperCall(fn.Object) {
			if fn.Property.Value == "__init__" {
				return "super(" + t.arguments(t.superInit(), n.Arguments) + ")", precCall
			}
			return "super." + fn.Property.Value + "(" + t.arguments(nil, n.Arguments) + ")", precCall
		}
		if s, ok := t.methodCall(fn, n.Arguments); ok {
			return s, precCall
		}
		var sig *signature
		if class := t.className(t.typeOf(fn.Object)); class != "" {
			sig = t.method(class, fn.Property.Value)
		}
		return t.member(fn) + "(" + t.arguments(sig, n.Arguments) + ")", precCall
	}
	return t.operand(n.Function, precCall) + "(" + t.arguments(nil, n.Arguments) + ")", precCall
}

// superInit is the constructor signature of the class being emitted's
// parent, when the program defines it.
func (t *Transpiler) superInit() *signature {
	if info := t.classes[t.class]; info != nil {
		return t.constructor(info.super)
	}
	return nil
}

// className returns the program class a type is an instance of.
func (t *Transpiler) className(typ types.Type) string {
	if ot, ok := types.RemoveNone(typ).(*types.ObjectType); ok && ot.Name != "" {
		if _, known := t.classes[ot.Name]; known {
			return ot.Name
		}
	}
	return ""
}

// --- Arguments ---

type keywordArg struct {
	name  string
	value string
}

func (t *Transpiler) arguments(sig *signature, args []parser.Expression) string {
	return strings.Join(t.argumentList(sig, args), ", ")
}

// argumentList places call arguments. With a known signature keyword
// arguments go to their parameter slot, unknown ones to the **kwargs slot,
// and skipped slots are filled with undefined. Otherwise, or when a
// positional spread hides the slot positions, keywords are gathered into a
// trailing object literal.
func (t *Transpiler) argumentList(sig *signature, args []parser.Expression) []string {
	var positional []string
	var keywords []keywordArg
	var spreads []string
	hidden := false
	for _, a := range args {
		switch n := a.(type) {
		case *parser.KeywordArgument:
			keywords = append(keywords, keywordArg{n.Name.Value, t.operand(n.Value, precAssign)})
		case *parser.SpreadElement:
			if n.Double {
				spreads = append(spreads, t.operand(n.Argument, precAssign))
			} else {
				positional = append(positional, "..."+t.operand(n.Argument, precAssign))
				hidden = true
			}
		default:
			positional = append(positional, t.operand(a, precAssign))
		}
	}

	if sig == nil || hidden {
		if len(keywords)+len(spreads) > 0 {
			positional = append(positional, keywordObject(keywords, spreads))
		}
		return positional
	}

	slots := make([]string, len(sig.params))
	n := min(len(positional), sig.positional)
	copy(slots, positional[:n])
	extra := positional[n:]

	var leftover []keywordArg
	for _, kw := range keywords {
		placed := false
		for i, p := range sig.params {
			if p == kw.name && slots[i] == "" {
				slots[i] = kw.value
				placed = true
				break
			}
		}
		if !placed {
			leftover = append(leftover, kw)
		}
	}

	out := slots
	kwObject := ""
	if len(leftover)+len(spreads) > 0 {
		kwObject = keywordObject(leftover, spreads)
	}
	if sig.kwrest != "" || kwObject != "" {
		out = append(out, kwObject)
	}
	out = append(out, extra...)

	for i, s := range out {
		if s == "" {
			out[i] = "undefined"
		}
	}
	for len(out) > 0 && out[len(out)-1] == "undefined" {
		out = out[:len(out)-1]
	}
	return out
}

func keywordObject(keywords []keywordArg, spreads []string) string {
	parts := make([]string, 0, len(keywords)+len(spreads))
	for _, kw := range keywords {
		key := kw.name
		if !isIdentifierName(key) {
			key = jsString(key)
		}
		parts = append(parts, key+": "+kw.value)
	}
	for _, s := range spreads {
		parts = append(parts, "..."+s)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func withoutKeywords(args []parser.Expression) []parser.Expression {
	out := make([]parser.Expression, 0, len(args))
	for _, a := range args {
		if _, ok := a.(*parser.KeywordArgument); !ok {
			out = append(out, a)
		}
	}
	return out
}

// --- Builtin functions ---

func (t *Transpiler) builtinCall(name string, m builtins.Mapping, args []parser.Expression) (string, int) {
	switch name {
	case "len":
		if len(args) == 1 {
			return t.length(args[0]), precCall
		}
	case "list", "tuple":
		if len(args) == 0 {
			return "[]", precPrimary
		}
	case "set":
		if len(args) == 0 {
			return "new Set()", precCall
		}
	case "str":
		if len(args) == 0 {
			return `""`, precPrimary
		}
	case "dict":
		if len(args) == 0 {
			return "{}", precPrimary
		}
		if len(withoutKeywords(args)) == 0 {
			return t.argumentList(nil, args)[0], precPrimary
		}
	case "print":
		args = withoutKeywords(args)
	}

	t.useMapping(m)
	js := m.JSEquivalent
	if m.IsMethodStyle && len(args) > 0 {
		recv := t.operand(args[0], precCall)
		if m.IsProperty {
			return recv + "." + js, precCall
		}
		return recv + "." + js + "(" + t.arguments(nil, args[1:]) + ")", precCall
	}
	call := js + "(" + t.arguments(positionalSignature(m.Params), args) + ")"
	if m.IsConstructor && !strings.HasPrefix(js, "new ") {
		call = "new " + call
	}
	return call, precCall
}

// inlineCheck expands isinstance and hasattr in place. Neither has a
// JavaScript counterpart, so they never go through the builtin table.
func (t *Transpiler) inlineCheck(name string, args []parser.Expression) (string, int, bool) {
	if len(args) != 2 || t.scope.visible(name) {
		return "", 0, false
	}
	switch name {
	case "isinstance":
		s, prec := t.isinstance(args[0], args[1])
		return s, prec, true
	case "hasattr":
		obj := t.operand(args[0], precEquality+1)
		return "(" + obj + " !== null && " + obj + " !== undefined && " + t.operand(args[1], precRelational+1) +
			" in Object(" + t.expr(args[0]) + "))", precPrimary, true
	}
	return "", 0, false
}

// length lowers len() by the static type of its argument.
func (t *Transpiler) length(arg parser.Expression) string {
	switch t.kindOf(arg) {
	case builtins.ReceiverDict:
		return "Object.keys(" + t.expr(arg) + ").length"
	case builtins.ReceiverSet:
		return t.operand(arg, precCall) + ".size"
	}
	return t.operand(arg, precCall) + ".length"
}

// typeChecks maps builtin type names to inline JavaScript tests.
var typeChecks = map[string]string{
	"str":   `typeof $ === "string"`,
	"int":   `Number.isInteger($)`,
	"float": `typeof $ === "number"`,
	"bool":  `typeof $ === "boolean"`,
	"list":  `Array.isArray($)`,
	"tuple": `Array.isArray($)`,
	"dict":  `($ !== null && typeof $ === "object" && !Array.isArray($))`,
	"set":   `$ instanceof Set`,
}

func (t *Transpiler) isinstance(value, classes parser.Expression) (string, int) {
	var list []parser.Expression
	switch n := classes.(type) {
	case *parser.TupleLiteral:
		list = n.Elements
	case *parser.ListLiteral:
		list = n.Elements
	default:
		list = []parser.Expression{classes}
	}
	v := t.operand(value, precCall)

	checks := make([]string, len(list))
	prec := precPrimary
	for i, c := range list {
		if id, ok := c.(*parser.Identifier); ok && !t.scope.visible(id.Value) {
			if tmpl, ok := typeChecks[id.Value]; ok {
				checks[i] = strings.ReplaceAll(tmpl, "$", v)
				if strings.HasPrefix(tmpl, "typeof") {
					prec = min(prec, precEquality)
				} else if strings.Contains(tmpl, "instanceof") {
					prec = min(prec, precRelational)
				}
				continue
			}
		}
		checks[i] = v + " instanceof " + t.classRef(c)
		prec = min(prec, precRelational)
	}
	if len(checks) == 1 {
		return checks[0], prec
	}
	return strings.Join(checks, " || "), precOr
}

// --- Builtin methods ---

// ambiguousMethods exist on several builtin receivers, or on ordinary
// objects, so they are only rewritten when the receiver type is known.
var ambiguousMethods = map[string]bool{
	"join": true, "split": true, "replace": true, "index": true, "find": true,
	"pop": true, "sort": true, "reverse": true, "keys": true, "values": true,
	"clear": true, "copy": true, "count": true, "update": true, "remove": true,
	"add": true, "insert": true, "format": true, "encode": true, "title": true,
	"discard": true, "union": true, "intersection": true, "difference": true,
	"get": true,
}

var receiverOrder = []builtins.ReceiverKind{
	builtins.ReceiverStr, builtins.ReceiverList, builtins.ReceiverDict, builtins.ReceiverSet,
}

// methodCall rewrites a Python method on a builtin receiver through the
// method table.
func (t *Transpiler) methodCall(me *parser.MemberExpression, args []parser.Expression) (string, bool) {
	name := me.Property.Value
	recvType := t.typeOf(me.Object)
	kind := builtins.ReceiverOf(recvType)
	dynamic := isDynamic(recvType)

	var method builtins.Method
	found := false
	switch {
	case kind != builtins.ReceiverUnknown:
		method, found = t.mapper.LookupMethod(kind, name)
	case dynamic && !ambiguousMethods[name]:
		for _, k := range receiverOrder {
			if method, found = t.mapper.LookupMethod(k, name); found {
				break
			}
		}
	}
	if !found {
		return "", false
	}

	argv := t.argumentList(positionalSignature(method.Params), args)
	recv := t.operand(me.Object, precCall)
	switch method.Form {
	case builtins.MethodRename:
		return recv + "." + method.JS + "(" + strings.Join(argv, ", ") + ")", true
	case builtins.MethodProperty:
		return recv + "." + method.JS, true
	case builtins.MethodStatic, builtins.MethodHelper:
		t.useHelper(method.Helper())
		all := append([]string{t.operand(me.Object, precAssign)}, argv...)
		return method.JS + "(" + strings.Join(all, ", ") + ")", true
	case builtins.MethodTemplate:
		return expandTemplate(method.Template, recv, argv), true
	}
	return "", false
}

// expandTemplate substitutes $r, $* and $0..$9 in a method template.
func expandTemplate(tmpl, recv string, argv []string) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' || i+1 == len(tmpl) {
			b.WriteByte(tmpl[i])
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == 'r':
			b.WriteString(recv)
		case next == '*':
			b.WriteString(strings.Join(argv, ", "))
		case next >= '0' && next <= '9':
			idx, _ := strconv.Atoi(string(next))
			if idx < len(argv) {
				b.WriteString(argv[idx])
			} else {
				b.WriteString("undefined")
			}
		default:
			b.WriteByte('$')
			continue
		}
		i++
	}
	return b.String()
}
