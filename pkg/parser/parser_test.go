package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseString(src)
	require.NoError(t, err, "source:\n%s", src)
	return prog
}

func parseExpr(t *testing.T, src string) Expression {
	t.Helper()
	prog := parse(t, src)
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ExpressionStatement)
	require.True(t, ok, "expected ExpressionStatement, got %T", prog.Statements[0])
	return stmt.Expression
}

func parseErr(t *testing.T, src string) *errors.SyntaxError {
	t.Helper()
	_, err := ParseString(src)
	require.Error(t, err, "source:\n%s", src)
	synErr, ok := err.(*errors.SyntaxError)
	require.True(t, ok, "expected *errors.SyntaxError, got %T: %v", err, err)
	return synErr
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"a ** b ** c", "(a ** (b ** c))"},
		{"-x ** 2", "(-(x ** 2))"},
		{"-a * b", "((-a) * b)"},
		{"a // b % c", "((a // b) % c)"},
		{"not a == b", "(not (a == b))"},
		{"not a and b", "((not a) and b)"},
		{"a or b and c", "(a or (b and c))"},
		{"a && b || c", "((a and b) or c)"},
		{"x in xs and y not in ys", "((x in xs) and (y not in ys))"},
		{"a is not None", "(a is not None)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"c ? a : b", "(c ? a : b)"},
		{"c ? a : d ? e : f", "(c ? a : (d ? e : f))"},
		{"a if c else b", "(c ? a : b)"},
		{"a if c else d if e else f", "(c ? a : (e ? d : f))"},
		{"a or b if c and d else e", "((c and d) ? (a or b) : e)"},
		{"a.b.c(d)[e]", "a.b.c(d)[e]"},
		{"a?.b", "a?.b"},
		{"await f(x)", "(await f(x))"},
		{"!done", "(!done)"},
		{"(n := len(xs)) > 10", "((n := len(xs)) > 10)"},
		{"new Date(2020, 1)", "new Date(2020, 1)"},
		{"xs[1:2]", "xs[1:2]"},
		{"xs[::2]", "xs[::2]"},
		{"xs[:-1]", "xs[:(-1)]"},
	}

	for _, tt := range tests {
		expr := parseExpr(t, tt.input)
		assert.Equal(t, tt.expected, expr.String(), "input %q", tt.input)
	}
}

func TestLiterals(t *testing.T) {
	i := parseExpr(t, "0xff").(*IntegerLiteral)
	assert.Equal(t, int64(255), i.Value)
	assert.Equal(t, int64(1000000), parseExpr(t, "1_000_000").(*IntegerLiteral).Value)
	assert.Equal(t, 2.5, parseExpr(t, "2.5").(*FloatLiteral).Value)
	assert.Equal(t, "ab", parseExpr(t, `"a" 'b'`).(*StringLiteral).Value)
	assert.True(t, parseExpr(t, "True").(*BooleanLiteral).Value)
	assert.False(t, parseExpr(t, "false").(*BooleanLiteral).Value)
	assert.IsType(t, &NoneLiteral{}, parseExpr(t, "null"))
}

func TestCollections(t *testing.T) {
	list := parseExpr(t, "[1, 2, 3,]").(*ListLiteral)
	assert.Len(t, list.Elements, 3)

	assert.IsType(t, &TupleLiteral{}, parseExpr(t, "(1,)"))
	assert.IsType(t, &TupleLiteral{}, parseExpr(t, "()"))
	assert.IsType(t, &Identifier{}, parseExpr(t, "(a)"))

	dict := parseExpr(t, "{\"a\": 1, b: 2, **rest}").(*DictLiteral)
	require.Len(t, dict.Entries, 3)
	assert.IsType(t, &StringLiteral{}, dict.Entries[0].Key)
	assert.IsType(t, &Identifier{}, dict.Entries[1].Key)
	assert.True(t, dict.Entries[2].Spread)

	set := parseExpr(t, "{1, 2}").(*SetLiteral)
	assert.Len(t, set.Elements, 2)

	assign := parse(t, "x = {}").Statements[0].(*AssignStatement)
	assert.IsType(t, &DictLiteral{}, assign.Value)
}

func TestMultilineDict(t *testing.T) {
	src := "config = {\n    \"debug\": True,\n    \"level\": 3,\n}\n"
	prog := parse(t, src)
	require.Len(t, prog.Statements, 1)
	assign := prog.Statements[0].(*AssignStatement)
	assert.Len(t, assign.Value.(*DictLiteral).Entries, 2)
}

func TestComprehension(t *testing.T) {
	comp := parseExpr(t, "[x * 2 for x in items if x > 0]").(*Comprehension)
	assert.Equal(t, ListComp, comp.Kind)
	require.Len(t, comp.Clauses, 1)
	assert.Equal(t, 1, comp.Filters())
	assert.Equal(t, "(x * 2)", comp.Element.String())
	assert.Equal(t, "x", comp.Clauses[0].Target.String())
	assert.Equal(t, "items", comp.Clauses[0].Iterable.String())
	assert.Equal(t, "(x > 0)", comp.Clauses[0].Conditions[0].String())

	dict := parseExpr(t, "{k: v for k, v in pairs}").(*Comprehension)
	assert.Equal(t, DictComp, dict.Kind)
	assert.IsType(t, &ArrayPattern{}, dict.Clauses[0].Target)

	set := parseExpr(t, "{x for x in xs for y in ys}").(*Comprehension)
	assert.Equal(t, SetComp, set.Kind)
	assert.Len(t, set.Clauses, 2)

	call := parseExpr(t, "sum(x for x in xs)").(*CallExpression)
	require.Len(t, call.Arguments, 1)
	assert.IsType(t, &Comprehension{}, call.Arguments[0])
}

func TestIfElseExpression(t *testing.T) {
	cond := parseExpr(t, "a if c else b").(*ConditionalExpression)
	assert.Equal(t, "a", cond.Start().Literal)
	assert.Equal(t, "c", cond.Condition.String())

	lambda := parseExpr(t, "lambda x: x if x else 0").(*ArrowFunction)
	assert.IsType(t, &ConditionalExpression{}, lambda.Body)

	comp := parseExpr(t, "[x if x > 0 else 0 for x in xs if x]").(*Comprehension)
	assert.IsType(t, &ConditionalExpression{}, comp.Element)
	assert.Equal(t, "xs", comp.Clauses[0].Iterable.String())
	assert.Equal(t, 1, comp.Filters())

	err := parseErr(t, "x = a if c\n")
	assert.Equal(t, "'else'", err.Expected)
}

func TestArrowFunctions(t *testing.T) {
	tests := []struct {
		input  string
		params int
		block  bool
	}{
		{"x => x + 1", 1, false},
		{"(a, b) => a + b", 2, false},
		{"() => 42", 0, false},
		{"(a: int, b = 2) => a * b", 2, false},
		{"(x) => {\n    return x\n}", 1, true},
		{"(x) => { return x }", 1, true},
		{"async (x) => await f(x)", 1, false},
	}
	for _, tt := range tests {
		fn, ok := parseExpr(t, tt.input).(*ArrowFunction)
		require.True(t, ok, "input %q", tt.input)
		assert.Len(t, fn.Parameters, tt.params, "input %q", tt.input)
		_, isBlock := fn.Body.(*BlockStatement)
		assert.Equal(t, tt.block, isBlock, "input %q", tt.input)
	}

	// a '{' body that is not a block is a dict
	fn := parseExpr(t, `(k) => {"key": k}`).(*ArrowFunction)
	assert.IsType(t, &DictLiteral{}, fn.Body)

	lambda := parseExpr(t, "lambda x, y=1: x + y").(*ArrowFunction)
	assert.True(t, lambda.IsLambda)
	require.Len(t, lambda.Parameters, 2)
	assert.NotNil(t, lambda.Parameters[1].Default)
}

func TestGroupedExpressionIsNotArrow(t *testing.T) {
	expr := parseExpr(t, "(a + b) * c")
	assert.Equal(t, "((a + b) * c)", expr.String())

	err := parseErr(t, "(a + b) => a")
	assert.Contains(t, err.Message(), "arrow function parameters")
}

func TestCallArguments(t *testing.T) {
	call := parseExpr(t, "f(1, *rest, key=2, **opts)").(*CallExpression)
	require.Len(t, call.Arguments, 4)
	assert.IsType(t, &IntegerLiteral{}, call.Arguments[0])
	assert.False(t, call.Arguments[1].(*SpreadElement).Double)
	kw := call.Arguments[2].(*KeywordArgument)
	assert.Equal(t, "key", kw.Name.Value)
	assert.True(t, call.Arguments[3].(*SpreadElement).Double)

	// comparison is not a keyword argument
	call = parseExpr(t, "f(a == b)").(*CallExpression)
	assert.IsType(t, &BinaryExpression{}, call.Arguments[0])
}

func TestFString(t *testing.T) {
	fs := parseExpr(t, `f"Value: {n:.2f}"`).(*FStringLiteral)
	require.Len(t, fs.Parts, 2)
	assert.Equal(t, "Value: ", fs.Parts[0].(*FStringText).Value)
	formatted := fs.Parts[1].(*FStringFormatted)
	assert.Equal(t, ".2f", formatted.Spec)
	assert.Equal(t, "n", formatted.Expression.String())

	fs = parseExpr(t, `f"{{literal}} {a + b!r} {d['k']}\n"`).(*FStringLiteral)
	require.Len(t, fs.Parts, 5)
	assert.Equal(t, "{literal} ", fs.Parts[0].(*FStringText).Value)
	conv := fs.Parts[1].(*FStringExpr)
	assert.Equal(t, "r", conv.Conversion)
	assert.Equal(t, "(a + b)", conv.Expression.String())
	assert.Equal(t, `d["k"]`, fs.Parts[3].(*FStringExpr).Expression.String())
	assert.Equal(t, "\n", fs.Parts[4].(*FStringText).Value)

	fs = parseExpr(t, `f"{a != b}"`).(*FStringLiteral)
	assert.Equal(t, "(a != b)", fs.Parts[0].(*FStringExpr).Expression.String())
}

func TestFStringErrors(t *testing.T) {
	for _, src := range []string{`f"{}"`, `f"a } b"`, `f"{x"`, `f"{x!z}"`, `f"{1 +}"`} {
		err := parseErr(t, src)
		assert.Equal(t, 1, err.Line, "source %s", src)
	}
}

func TestJSX(t *testing.T) {
	el := parseExpr(t, `<div class="box" id={name} {...props}>Hello {name}<br/></div>`).(*JSXElement)
	assert.Equal(t, "div", el.Tag)
	require.Len(t, el.Attributes, 3)
	assert.Equal(t, "class", el.Attributes[0].Name)
	assert.Equal(t, "box", el.Attributes[0].Value.(*StringLiteral).Value)
	assert.IsType(t, &Identifier{}, el.Attributes[1].Value)
	assert.True(t, el.Attributes[2].Spread)

	require.Len(t, el.Children, 3)
	assert.Equal(t, "Hello ", el.Children[0].(*JSXText).Value)
	assert.IsType(t, &Identifier{}, el.Children[1])
	br := el.Children[2].(*JSXElement)
	assert.True(t, br.SelfClosing)

	err := parseErr(t, "x = <a></b>")
	assert.Contains(t, err.Message(), "does not match")
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		input    string
		line     int
		column   int
		expected string
	}{
		{"x = (1 + 2", 1, 11, "')'"},
		{"y = 1 +\n", 1, 8, "expression"},
		{"f(a b)", 1, 5, "')'"},
		{"ok = 1\nbad = ]", 2, 7, "expression"},
	}
	for _, tt := range tests {
		err := parseErr(t, tt.input)
		assert.Equal(t, tt.line, err.Line, "input %q: %v", tt.input, err)
		assert.Equal(t, tt.column, err.Column, "input %q: %v", tt.input, err)
		assert.Equal(t, tt.expected, err.Expected, "input %q", tt.input)
	}
}

func TestParseExpressionTokens(t *testing.T) {
	toks, err := lexer.Tokenize("a + 1")
	require.NoError(t, err)
	expr, err := ParseExpression(toks)
	require.NoError(t, err)
	assert.Equal(t, "(a + 1)", expr.String())

	toks, err = lexer.Tokenize("a b")
	require.NoError(t, err)
	_, err = ParseExpression(toks)
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	prog := parse(t, "x = [1, 2]\n")
	out, err := Dump(prog)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "node: Program")
	assert.Contains(t, text, "node: AssignStatement")
	assert.Contains(t, text, "node: ListLiteral")
	assert.Contains(t, text, "operator:")
	assert.Contains(t, text, "1:1")
}

func TestParseStopsAtFirstError(t *testing.T) {
	err := parseErr(t, "def (:\n    pass\nclass :\n    pass\n")
	assert.Equal(t, 1, err.Line)
	assert.Equal(t, "identifier", err.Expected)
}
