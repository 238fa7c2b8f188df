package transpiler

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
)

func (t *Transpiler) emitStatements(stmts []parser.Statement) {
	for _, s := range stmts {
		t.emitStatement(s)
	}
}

func (t *Transpiler) emitStatement(stmt parser.Statement) {
	switch n := stmt.(type) {
	case *parser.BlockStatement:
		t.writeLine("{")
		t.block(n)
		t.writeLine("}")
	case *parser.LetStatement:
		t.emitLet(n, "")
	case *parser.AssignStatement:
		t.emitAssign(n, "")
	case *parser.DestructuringAssignment:
		t.emitDestructuring(n, "")
	case *parser.ExpressionStatement:
		t.emitExpressionStatement(n)
	case *parser.FunctionDef:
		t.emitFunctionDef(n, "")
	case *parser.ClassDef:
		t.emitClass(n, "")
	case *parser.IfStatement:
		t.emitIf(n)
	case *parser.WhileStatement:
		t.writeLinef("while (%s) {", t.cond(n.Condition))
		t.block(n.Body)
		t.writeLine("}")
	case *parser.ForStatement:
		t.emitFor(n)
	case *parser.MatchStatement:
		t.emitMatch(n)
	case *parser.ReturnStatement:
		if n.ReturnValue == nil {
			t.writeLine("return;")
		} else {
			t.writeLine("return " + t.expr(n.ReturnValue) + ";")
		}
	case *parser.BreakStatement:
		t.writeLine("break;")
	case *parser.ContinueStatement:
		t.writeLine("continue;")
	case *parser.PassStatement:
	case *parser.RaiseStatement:
		t.emitRaise(n)
	case *parser.TryStatement:
		t.emitTry(n)
	case *parser.WithStatement:
		t.emitWith(n)
	case *parser.AssertStatement:
		t.emitAssert(n)
	case *parser.DeleteStatement:
		for _, target := range n.Targets {
			t.emitDelete(target)
		}
	case *parser.GlobalStatement:
		for _, name := range n.Names {
			t.scope.declare(name.Value)
		}
	case *parser.ImportDeclaration:
		for _, name := range importedNames(n) {
			t.scope.declare(name)
		}
		for _, line := range t.resolver.Import(n) {
			t.writeLine(line)
		}
	case *parser.ExportDeclaration:
		t.emitExport(n)
	default:
		t.writeLine(todo(stmt))
	}
}

// --- Declarations and assignment ---

func (t *Transpiler) emitLet(n *parser.LetStatement, prefix string) {
	t.scope.declare(n.Name.Value)
	kw := "let "
	if n.IsConst() {
		kw = "const "
	}
	if n.Value == nil {
		t.writeLine(prefix + kw + safeName(n.Name.Value) + ";")
		return
	}
	t.writeLine(prefix + kw + safeName(n.Name.Value) + " = " + t.expr(n.Value) + ";")
}

// isTypeVar matches `T = TypeVar(...)`, which has no runtime form.
func isTypeVar(e parser.Expression) bool {
	call, ok := e.(*parser.CallExpression)
	if !ok {
		return false
	}
	id, ok := call.Function.(*parser.Identifier)
	return ok && (id.Value == "TypeVar" || id.Value == "NewType")
}

func (t *Transpiler) emitAssign(n *parser.AssignStatement, prefix string) {
	id, isName := n.Target.(*parser.Identifier)
	if isName && isTypeVar(n.Value) {
		t.scope.declare(id.Value)
		return
	}

	if n.Value == nil {
		// `x: int` declares without assigning
		if isName {
			if kw := t.scope.bind(id.Value); kw != "" {
				t.writeLine(prefix + kw + safeName(id.Value) + ";")
			}
		}
		return
	}

	if n.Operator != "=" {
		t.emitAugmented(n)
		return
	}

	if isName {
		kw := t.scope.bind(id.Value)
		name := t.identifier(id)
		value := t.expr(n.Value)
		if prefix != "" && kw == "" {
			// already declared: assign, then export the binding
			t.writeLine(name + " = " + value + ";")
			t.writeLine("export { " + name + " };")
			return
		}
		if kw == "" {
			prefix = ""
		}
		t.writeLine(prefix + kw + name + " = " + value + ";")
		return
	}
	t.writeLine(t.assignTarget(n.Target) + " = " + t.expr(n.Value) + ";")
}

func (t *Transpiler) emitAugmented(n *parser.AssignStatement) {
	target := t.assignTarget(n.Target)
	switch n.Operator {
	case "+=":
		if t.kindOf(n.Target) == builtins.ReceiverList {
			if list, ok := n.Value.(*parser.ListLiteral); ok {
				t.writeLine(target + ".push(" + t.exprList(list.Elements) + ");")
			} else {
				t.writeLine(target + ".push(..." + t.operand(n.Value, precUnary) + ");")
			}
			return
		}
	case "//=":
		t.writeLine(target + " = Math.floor(" + target + " / " + t.operand(n.Value, precMultiplicative+1) + ");")
		return
	}
	t.writeLine(target + " " + n.Operator + " " + t.expr(n.Value) + ";")
}

// assignTarget emits a member or index target. A negative literal index
// counts from the end, which .at() cannot express on the left-hand side.
func (t *Transpiler) assignTarget(e parser.Expression) string {
	if ix, ok := e.(*parser.IndexExpression); ok {
		if n, neg := negativeLiteral(ix.Index); neg && t.kindOf(ix.Left) != builtins.ReceiverDict {
			obj := t.operand(ix.Left, precCall)
			return obj + "[" + obj + ".length - " + strconv.FormatInt(n, 10) + "]"
		}
	}
	return t.expr(e)
}

func (t *Transpiler) emitDestructuring(n *parser.DestructuringAssignment, prefix string) {
	names := parser.PatternNames(n.Pattern)
	pattern := t.pattern(n.Pattern)
	value := t.expr(n.Value)

	if n.Kind != "" {
		t.scope.declare(names...)
		t.writeLine(prefix + n.Kind + " " + pattern + " = " + value + ";")
		return
	}

	fresh := 0
	for _, name := range names {
		if !t.scope.declared[name] {
			fresh++
		}
	}
	if fresh == len(names) && t.scope.depth == 0 {
		t.scope.declare(names...)
		t.writeLine(prefix + "let " + pattern + " = " + value + ";")
		return
	}
	for _, name := range names {
		t.scope.hoist(name)
	}
	if _, ok := n.Pattern.(*parser.ObjectPattern); ok {
		t.writeLine("(" + pattern + " = " + value + ");")
		return
	}
	t.writeLine(pattern + " = " + value + ";")
}

// pattern emits a destructuring target.
func (t *Transpiler) pattern(e parser.Expression) string {
	switch n := e.(type) {
	case *parser.Identifier:
		return safeName(n.Value)
	case *parser.RestElement:
		return "..." + safeName(n.Target.Value)
	case *parser.ArrayPattern:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = t.pattern(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *parser.TupleLiteral:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = t.pattern(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *parser.ObjectPattern:
		var parts []string
		for _, p := range n.Properties {
			s := p.Key.Value
			if p.Target != nil {
				if id, ok := p.Target.(*parser.Identifier); !ok || id.Value != p.Key.Value {
					s += ": " + t.pattern(p.Target)
				}
			} else if jsReserved[p.Key.Value] {
				s += ": " + safeName(p.Key.Value)
			}
			if p.Default != nil {
				s += " = " + t.expr(p.Default)
			}
			parts = append(parts, s)
		}
		if n.Rest != nil {
			parts = append(parts, "..."+safeName(n.Rest.Value))
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return t.expr(e)
}

func (t *Transpiler) emitExpressionStatement(n *parser.ExpressionStatement) {
	if _, ok := n.Expression.(*parser.StringLiteral); ok {
		// docstring
		return
	}
	s := t.expr(n.Expression)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "function") || strings.HasPrefix(s, "class") {
		s = "(" + s + ")"
	}
	t.writeLine(s + ";")
}

// --- Control flow ---

func (t *Transpiler) emitIf(n *parser.IfStatement) {
	t.writeLinef("if (%s) {", t.cond(n.Condition))
	t.block(n.Consequence)
	for alt := n.Alternative; alt != nil; {
		switch a := alt.(type) {
		case *parser.IfStatement:
			t.writeLinef("} else if (%s) {", t.cond(a.Condition))
			t.block(a.Consequence)
			alt = a.Alternative
		case *parser.BlockStatement:
			t.writeLine("} else {")
			t.block(a)
			alt = nil
		default:
			t.writeLine("} else {")
			t.indent()
			t.emitStatement(a)
			t.dedent()
			alt = nil
		}
	}
	t.writeLine("}")
}

func (t *Transpiler) emitFor(n *parser.ForStatement) {
	if t.emitRangeLoop(n) {
		return
	}
	names := parser.PatternNames(n.Target)
	if id, ok := n.Target.(*parser.Identifier); ok {
		names = []string{id.Value}
	}

	decl := ""
	for _, name := range names {
		if !t.scope.declared[name] {
			decl = "const "
			break
		}
	}
	if decl != "" {
		for _, name := range names {
			if assignedIn(n.Body.Statements, name) {
				decl = "let "
			}
		}
	}

	iter := t.expr(n.Iterable)
	if t.kindOf(n.Iterable) == builtins.ReceiverDict {
		iter = "Object.keys(" + iter + ")"
	}
	await := ""
	if n.IsAsync {
		await = "await "
	}

	restore := func() {}
	if decl != "" {
		restore = t.scope.shadow(names...)
	}
	t.writeLinef("for %s(%s%s of %s) {", await, decl, t.pattern(n.Target), iter)
	t.block(n.Body)
	t.writeLine("}")
	restore()
}

// emitRangeLoop lowers `for i in range(...)` with a literal step to a
// counting loop instead of materializing the range.
func (t *Transpiler) emitRangeLoop(n *parser.ForStatement) bool {
	target, ok := n.Target.(*parser.Identifier)
	if !ok || n.IsAsync {
		return false
	}
	call, ok := n.Iterable.(*parser.CallExpression)
	if !ok {
		return false
	}
	fn, ok := call.Function.(*parser.Identifier)
	if !ok || fn.Value != "range" || t.scope.visible("range") {
		return false
	}
	args := call.Arguments
	if len(args) == 0 || len(args) > 3 {
		return false
	}
	for _, a := range args {
		switch a.(type) {
		case *parser.KeywordArgument, *parser.SpreadElement:
			return false
		}
	}

	start, stop, step := "0", args[0], int64(1)
	if len(args) >= 2 {
		start, stop = t.expr(args[0]), args[1]
	}
	if len(args) == 3 {
		s, ok := intLiteral(args[2])
		if !ok || s == 0 {
			return false
		}
		step = s
	}

	name := safeName(target.Value)
	decl := "let "
	restore := func() {}
	if t.scope.declared[target.Value] {
		decl = ""
	} else {
		restore = t.scope.shadow(target.Value)
	}

	cmp, inc := " < ", name+"++"
	switch {
	case step == -1:
		cmp, inc = " > ", name+"--"
	case step < 0:
		cmp, inc = " > ", name+" -= "+strconv.FormatInt(-step, 10)
	case step > 1:
		inc = name + " += " + strconv.FormatInt(step, 10)
	}
	t.writeLinef("for (%s%s = %s; %s%s%s; %s) {", decl, name, start, name, cmp, t.operand(stop, precRelational+1), inc)
	t.block(n.Body)
	t.writeLine("}")
	restore()
	return true
}

func intLiteral(e parser.Expression) (int64, bool) {
	switch n := e.(type) {
	case *parser.IntegerLiteral:
		return n.Value, true
	case *parser.UnaryExpression:
		if v, ok := intLiteral(n.Operand); ok {
			switch n.Operator {
			case "-":
				return -v, true
			case "+":
				return v, true
			}
		}
	}
	return 0, false
}

// negativeLiteral reports the magnitude of a `-N` index.
func negativeLiteral(e parser.Expression) (int64, bool) {
	u, ok := e.(*parser.UnaryExpression)
	if !ok || u.Operator != "-" {
		return 0, false
	}
	lit, ok := u.Operand.(*parser.IntegerLiteral)
	if !ok || lit.Value <= 0 {
		return 0, false
	}
	return lit.Value, true
}

// --- match ---

func (t *Transpiler) emitMatch(n *parser.MatchStatement) {
	if switchable(n) {
		t.emitSwitch(n)
		return
	}
	subject := t.temp("match")
	t.writeLinef("const %s = %s;", subject, t.expr(n.Subject))
cases:
	for i, c := range n.Cases {
		cond := t.caseCondition(c, subject)
		switch {
		case i == 0 && cond == "":
			t.writeLine("{")
		case i == 0:
			t.writeLinef("if (%s) {", cond)
		case cond == "":
			t.writeLine("} else {")
		default:
			t.writeLinef("} else if (%s) {", cond)
		}
		t.block(c.Body)
		if cond == "" {
			break cases
		}
	}
	t.writeLine("}")
}

// switchable reports whether every case compares the subject against
// constants, which a JavaScript switch expresses directly.
func switchable(n *parser.MatchStatement) bool {
	for i, c := range n.Cases {
		if c.Guard != nil || containsBreak(c.Body.Statements) {
			return false
		}
		switch p := c.Pattern.(type) {
		case *parser.LiteralPattern, *parser.ValuePattern:
		case *parser.WildcardPattern:
			if i != len(n.Cases)-1 {
				return false
			}
		case *parser.OrPattern:
			for _, alt := range p.Alternatives {
				switch alt.(type) {
				case *parser.LiteralPattern, *parser.ValuePattern:
				default:
					return false
				}
			}
		default:
			return false
		}
	}
	return len(n.Cases) > 0
}

func (t *Transpiler) emitSwitch(n *parser.MatchStatement) {
	t.writeLinef("switch (%s) {", t.expr(n.Subject))
	t.indent()
	for _, c := range n.Cases {
		var labels []string
		switch p := c.Pattern.(type) {
		case *parser.WildcardPattern:
			labels = []string{"default"}
		case *parser.OrPattern:
			for _, alt := range p.Alternatives {
				labels = append(labels, "case "+t.patternValue(alt))
			}
		default:
			labels = []string{"case " + t.patternValue(p)}
		}
		for _, l := range labels[:len(labels)-1] {
			t.writeLine(l + ":")
		}
		t.writeLine(labels[len(labels)-1] + ": {")
		t.block(c.Body)
		if !endsWithJump(c.Body.Statements) {
			t.indent()
			t.writeLine("break;")
			t.dedent()
		}
		t.writeLine("}")
	}
	t.dedent()
	t.writeLine("}")
}

func endsWithJump(stmts []parser.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *parser.ReturnStatement, *parser.RaiseStatement, *parser.BreakStatement, *parser.ContinueStatement:
		return true
	}
	return false
}

func (t *Transpiler) patternValue(p parser.MatchPattern) string {
	switch n := p.(type) {
	case *parser.LiteralPattern:
		return t.expr(n.Value)
	case *parser.ValuePattern:
		return t.expr(n.Value)
	}
	return todo(p)
}

// caseCondition builds the test for one case. Captures are assigned inside
// the condition so a guard can see them; "" means the case always matches.
func (t *Transpiler) caseCondition(c *parser.MatchCase, subject string) string {
	cond, binds := t.matchCondition(c.Pattern, subject)
	tail := binds
	if c.Guard != nil {
		tail = append(tail, t.cond(c.Guard))
	} else if len(binds) > 0 {
		tail = append(tail, "true")
	}
	if len(tail) > 0 {
		bound := "(" + strings.Join(tail, ", ") + ")"
		if cond == "" {
			return bound
		}
		return cond + " && " + bound
	}
	return cond
}

func (t *Transpiler) matchCondition(p parser.MatchPattern, subject string) (string, []string) {
	switch n := p.(type) {
	case *parser.WildcardPattern:
		return "", nil
	case *parser.CapturePattern:
		t.scope.hoist(n.Name.Value)
		return "", []string{safeName(n.Name.Value) + " = " + subject}
	case *parser.LiteralPattern:
		if _, ok := n.Value.(*parser.NoneLiteral); ok {
			return subject + " == null", nil
		}
		return subject + " === " + t.operand(n.Value, precEquality+1), nil
	case *parser.ValuePattern:
		return subject + " === " + t.operand(n.Value, precEquality+1), nil
	case *parser.SequencePattern:
		conds := []string{"Array.isArray(" + subject + ")", subject + ".length === " + strconv.Itoa(len(n.Elements))}
		var binds []string
		for i, el := range n.Elements {
			c, b := t.matchCondition(el, subject+"["+strconv.Itoa(i)+"]")
			if c != "" {
				conds = append(conds, c)
			}
			binds = append(binds, b...)
		}
		return strings.Join(conds, " && "), binds
	case *parser.OrPattern:
		var alts []string
		var binds []string
		for _, alt := range n.Alternatives {
			c, b := t.matchCondition(alt, subject)
			if c == "" {
				return "", b
			}
			alts = append(alts, c)
			binds = append(binds, b...)
		}
		return "(" + strings.Join(alts, " || ") + ")", binds
	}
	return "false /* " + todo(p) + " */", nil
}

// --- Exceptions ---

func (t *Transpiler) emitRaise(n *parser.RaiseStatement) {
	if n.Exception == nil {
		if len(t.catchVars) > 0 {
			t.writeLine("throw " + t.catchVars[len(t.catchVars)-1] + ";")
		} else {
			t.writeLine(`throw new Error("No active exception to re-raise");`)
		}
		return
	}
	exc := t.expr(n.Exception)
	if id, ok := n.Exception.(*parser.Identifier); ok && startsUpper(id.Value) {
		exc = "new " + t.classRef(id) + "()"
	}
	if n.Cause != nil {
		t.writeLine("throw Object.assign(" + exc + ", { cause: " + t.expr(n.Cause) + " });")
		return
	}
	t.writeLine("throw " + exc + ";")
}

func (t *Transpiler) emitTry(n *parser.TryStatement) {
	if n.Else != nil && n.Finally != nil {
		t.writeLine("try {")
		t.indent()
		t.emitTryCore(n, false)
		t.dedent()
		t.writeLine("} finally {")
		t.block(n.Finally)
		t.writeLine("}")
		return
	}
	t.emitTryCore(n, true)
}

func (t *Transpiler) emitTryCore(n *parser.TryStatement, withFinally bool) {
	ok := ""
	if n.Else != nil {
		ok = t.temp("ok")
		t.writeLine("let " + ok + " = false;")
	}
	t.writeLine("try {")
	t.block(n.Body)
	if ok != "" {
		t.indent()
		t.writeLine(ok + " = true;")
		t.dedent()
	}

	switch {
	case len(n.Handlers) == 1 && t.catchesAll(n.Handlers[0]):
		h := n.Handlers[0]
		name := "__err"
		if h.Name != nil {
			name = safeName(h.Name.Value)
		}
		t.writeLine("} catch (" + name + ") {")
		t.handlerBody(h, name)
	case len(n.Handlers) > 0:
		t.writeLine("} catch (__err) {")
		t.indent()
		caught := false
		for i, h := range n.Handlers {
			kw := "} else if ("
			if i == 0 {
				kw = "if ("
			}
			if t.catchesAll(h) {
				if i == 0 {
					t.writeLine("{")
				} else {
					t.writeLine("} else {")
				}
				caught = true
			} else {
				t.writeLine(kw + t.instanceCheck("__err", h.Type) + ") {")
			}
			t.handlerBody(h, "__err")
			if caught {
				break
			}
		}
		if !caught {
			t.writeLine("} else {")
			t.indent()
			t.writeLine("throw __err;")
			t.dedent()
		}
		t.writeLine("}")
		t.dedent()
	}

	if withFinally && n.Finally != nil {
		t.writeLine("} finally {")
		t.block(n.Finally)
	}
	t.writeLine("}")
	if ok != "" {
		t.writeLine("if (" + ok + ") {")
		t.block(n.Else)
		t.writeLine("}")
	}
}

func (t *Transpiler) handlerBody(h *parser.ExceptHandler, caught string) {
	t.catchVars = append(t.catchVars, caught)
	defer func() { t.catchVars = t.catchVars[:len(t.catchVars)-1] }()

	if h.Name == nil || safeName(h.Name.Value) == caught {
		if h.Name != nil {
			defer t.scope.shadow(h.Name.Value)()
		}
		t.block(h.Body)
		return
	}
	defer t.scope.shadow(h.Name.Value)()
	t.indent()
	t.writeLine("const " + safeName(h.Name.Value) + " = " + caught + ";")
	t.dedent()
	t.block(h.Body)
}

// catchesAll reports whether a handler takes every exception.
func (t *Transpiler) catchesAll(h *parser.ExceptHandler) bool {
	if h.Type == nil {
		return true
	}
	id, ok := h.Type.(*parser.Identifier)
	return ok && (id.Value == "Exception" || id.Value == "BaseException") && !t.scope.visible(id.Value)
}

// instanceCheck tests value against an exception class or a tuple of them.
func (t *Transpiler) instanceCheck(value string, typ parser.Expression) string {
	var classes []parser.Expression
	switch n := typ.(type) {
	case *parser.TupleLiteral:
		classes = n.Elements
	case *parser.ListLiteral:
		classes = n.Elements
	default:
		classes = []parser.Expression{typ}
	}
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = value + " instanceof " + t.classRef(c)
	}
	return strings.Join(parts, " || ")
}

// classRef names a class, mapping builtin exception classes.
func (t *Transpiler) classRef(e parser.Expression) string {
	if id, ok := e.(*parser.Identifier); ok {
		if m, ok := t.builtin(id.Value); ok && m.IsConstructor {
			t.useMapping(m)
			return m.JSEquivalent
		}
		return safeName(id.Value)
	}
	return t.operand(e, precCall)
}

func (t *Transpiler) emitWith(n *parser.WithStatement) {
	await := ""
	enter, exit := "__enter__", "__exit__"
	if n.IsAsync {
		await = "await "
		enter, exit = "__aenter__", "__aexit__"
	}
	t.writeLine("{")
	t.indent()
	var ctxs []string
	var restores []func()
	for _, item := range n.Items {
		c := t.temp("ctx")
		ctxs = append(ctxs, c)
		t.writeLine("const " + c + " = " + t.expr(item.Context) + ";")
		value := c + "." + enter + " ? " + await + c + "." + enter + "() : " + c
		if item.Target == nil {
			t.writeLine(c + "." + enter + "?.();")
			continue
		}
		kw := "const "
		if assignedIn(n.Body.Statements, item.Target.Value) {
			kw = "let "
		}
		restores = append(restores, t.scope.shadow(item.Target.Value))
		t.writeLine(kw + safeName(item.Target.Value) + " = " + value + ";")
	}
	t.writeLine("try {")
	t.block(n.Body)
	t.writeLine("} finally {")
	t.indent()
	for i := len(ctxs) - 1; i >= 0; i-- {
		t.writeLine(await + ctxs[i] + "." + exit + "?.();")
	}
	t.dedent()
	t.writeLine("}")
	t.dedent()
	t.writeLine("}")
	for _, r := range restores {
		r()
	}
}

func (t *Transpiler) emitAssert(n *parser.AssertStatement) {
	msg := ""
	if n.Message != nil {
		msg = t.expr(n.Message)
	}
	exc := "Error"
	if m, ok := t.mapper.Lookup("AssertionError"); ok {
		t.useMapping(m)
		exc = m.JSEquivalent
	}
	t.writeLine("if (!" + t.condOperand(n.Condition, precUnary) + ") {")
	t.indent()
	t.writeLine("throw new " + exc + "(" + msg + ");")
	t.dedent()
	t.writeLine("}")
}

func (t *Transpiler) emitDelete(target parser.Expression) {
	switch n := target.(type) {
	case *parser.Identifier:
		t.writeLine(t.identifier(n) + " = undefined;")
	case *parser.IndexExpression:
		if t.kindOf(n.Left) == builtins.ReceiverList {
			t.writeLine(t.operand(n.Left, precCall) + ".splice(" + t.expr(n.Index) + ", 1);")
			return
		}
		t.writeLine("delete " + t.expr(n) + ";")
	case *parser.SliceExpression:
		if n.Step == nil {
			lower := "0"
			if n.Lower != nil {
				lower = t.expr(n.Lower)
			}
			obj := t.operand(n.Left, precCall)
			switch {
			case n.Upper == nil:
				t.writeLine(obj + ".splice(" + lower + ");")
			case n.Lower == nil:
				t.writeLine(obj + ".splice(0, " + t.expr(n.Upper) + ");")
			default:
				t.writeLine(obj + ".splice(" + lower + ", " + t.operand(n.Upper, precAdditive) + " - " + t.operand(n.Lower, precAdditive+1) + ");")
			}
			return
		}
		t.writeLine(todo(n))
	case *parser.MemberExpression:
		t.writeLine("delete " + t.expr(n) + ";")
	default:
		t.writeLine(todo(target))
	}
}

// --- Modules ---

func (t *Transpiler) emitExport(n *parser.ExportDeclaration) {
	switch n.Kind {
	case parser.ExportNamed, parser.ExportAll:
		for _, line := range t.resolver.Export(n) {
			t.writeLine(line)
		}
	case parser.ExportDefault:
		if n.Declaration == nil {
			t.writeLine(t.resolver.ExportDefault(t.expr(n.Value)))
			return
		}
		if prefix := t.resolver.ExportPrefix(); prefix != "" {
			t.emitDeclaration(n.Declaration, prefix+"default ")
			return
		}
		t.emitDeclaration(n.Declaration, "")
		if names := n.DeclaredNames(); len(names) > 0 {
			t.defaultExport = names[0]
		}
	case parser.ExportDecl:
		prefix := t.resolver.ExportPrefix()
		t.emitDeclaration(n.Declaration, prefix)
		if prefix == "" {
			t.exports = append(t.exports, n.DeclaredNames()...)
		}
	}
}

func (t *Transpiler) emitDeclaration(stmt parser.Statement, prefix string) {
	switch n := stmt.(type) {
	case *parser.FunctionDef:
		t.emitFunctionDef(n, prefix)
	case *parser.ClassDef:
		t.emitClass(n, prefix)
	case *parser.LetStatement:
		t.emitLet(n, prefix)
	case *parser.AssignStatement:
		t.emitAssign(n, prefix)
	case *parser.DestructuringAssignment:
		t.emitDestructuring(n, prefix)
	default:
		t.emitStatement(stmt)
	}
}
