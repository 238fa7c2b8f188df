package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfElse(t *testing.T) {
	prog := parse(t, "if x > 0:\n    print(x)\nelse:\n    print(0)\n")
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*IfStatement)
	require.True(t, ok, "got %T", prog.Statements[0])
	assert.Equal(t, "(x > 0)", stmt.Condition.String())
	assert.NotEmpty(t, stmt.Consequence.Statements)
	alt, ok := stmt.Alternative.(*BlockStatement)
	require.True(t, ok, "got %T", stmt.Alternative)
	assert.NotEmpty(t, alt.Statements)
}

func TestIfElifChain(t *testing.T) {
	src := `if a:
    x = 1
elif b:
    x = 2
elif c: x = 3
else:
    x = 4
y = x
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 2)
	stmt := prog.Statements[0].(*IfStatement)
	elif1 := stmt.Alternative.(*IfStatement)
	elif2 := elif1.Alternative.(*IfStatement)
	assert.Equal(t, "c", elif2.Condition.String())
	assert.Len(t, elif2.Consequence.Statements, 1)
	assert.IsType(t, &BlockStatement{}, elif2.Alternative)
	assert.IsType(t, &AssignStatement{}, prog.Statements[1])
}

func TestBraceBlocks(t *testing.T) {
	src := `if (x > 0) {
    y = 1
}
else {
    y = 2
}
while (y < 10) { y += 1 }
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 2)
	stmt := prog.Statements[0].(*IfStatement)
	assert.Len(t, stmt.Consequence.Statements, 1)
	assert.NotNil(t, stmt.Alternative)
	loop := prog.Statements[1].(*WhileStatement)
	assert.Equal(t, "+=", loop.Body.Statements[0].(*AssignStatement).Operator)
}

func TestNestedBlocksDedentTogether(t *testing.T) {
	src := `def outer():
    for i in range(3):
        if i:
            print(i)
    return 1
done = True
`
	prog := parse(t, src)
	require.Len(t, prog.Statements, 2)
	fn := prog.Statements[0].(*FunctionDef)
	require.Len(t, fn.Body.Statements, 2)
	assert.IsType(t, &ForStatement{}, fn.Body.Statements[0])
	assert.IsType(t, &ReturnStatement{}, fn.Body.Statements[1])
}

func TestFunctionDef(t *testing.T) {
	prog := parse(t, "def add(a: int, b: int = 1) -> int:\n    return a + b\n")
	fn := prog.Statements[0].(*FunctionDef)
	assert.Equal(t, "add", fn.Name.Value)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "int", fn.Parameters[0].TypeAnnotation.String())
	assert.Nil(t, fn.Parameters[0].Default)
	assert.Equal(t, int64(1), fn.Parameters[1].Default.(*IntegerLiteral).Value)
	assert.Equal(t, "int", fn.ReturnType.String())
	ret := fn.Body.Statements[0].(*ReturnStatement)
	assert.Equal(t, "(a + b)", ret.ReturnValue.String())
}

func TestFunctionParameterKinds(t *testing.T) {
	prog := parse(t, "async def f(a, *args, key=None, **kwargs):\n    pass\n")
	fn := prog.Statements[0].(*FunctionDef)
	assert.True(t, fn.IsAsync)
	require.Len(t, fn.Parameters, 4)
	assert.True(t, fn.Parameters[1].IsRest)
	assert.True(t, fn.Parameters[3].IsKwRest)

	// bare '*' marks keyword-only parameters and is not itself a parameter
	prog = parse(t, "def g(a, *, b):\n    pass\n")
	assert.Len(t, prog.Statements[0].(*FunctionDef).Parameters, 2)

	err := parseErr(t, "def h(a=1, b):\n    pass\n")
	assert.Contains(t, err.Message(), "follows a defaulted parameter")
	err = parseErr(t, "def h(**kw, a):\n    pass\n")
	assert.Contains(t, err.Message(), "no parameters may follow")
}

func TestDecorators(t *testing.T) {
	src := `@staticmethod
@cache(size=10)
def f():
    pass
`
	fn := parse(t, src).Statements[0].(*FunctionDef)
	require.Len(t, fn.Decorators, 2)
	assert.True(t, fn.HasDecorator("staticmethod"))
	assert.IsType(t, &CallExpression{}, fn.Decorators[1].Expression)

	err := parseErr(t, "@dec\nx = 1\n")
	assert.Equal(t, "def or class after decorator", err.Expected)
}

func TestClassDef(t *testing.T) {
	src := `class Dog(Animal):
    """A dog."""
    legs: int = 4
    name = "rex"

    def __init__(self, name):
        self.name = name

    def bark(self) -> str:
        return "woof"
`
	cls := parse(t, src).Statements[0].(*ClassDef)
	assert.Equal(t, "Dog", cls.Name.Value)
	assert.Equal(t, "Animal", cls.SuperClass.String())
	assert.Equal(t, "A dog.", cls.Docstring)
	require.Len(t, cls.Fields, 2)
	assert.Equal(t, "legs", cls.Fields[0].Name.Value)
	assert.Equal(t, "int", cls.Fields[0].TypeAnnotation.String())
	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "__init__", cls.Methods[0].Name.Value)

	err := parseErr(t, "class A(B, C):\n    pass\n")
	assert.Contains(t, err.Message(), "multiple inheritance")
}

func TestForLoops(t *testing.T) {
	prog := parse(t, "for k, v in items.items():\n    print(k)\nfor (x in xs) {\n    print(x)\n}\nfor (a, b) in pairs:\n    pass\n")
	require.Len(t, prog.Statements, 3)

	first := prog.Statements[0].(*ForStatement)
	assert.Equal(t, []string{"k", "v"}, PatternNames(first.Target))

	brace := prog.Statements[1].(*ForStatement)
	assert.Equal(t, "x", brace.Target.String())
	assert.Equal(t, "xs", brace.Iterable.String())

	tuple := prog.Statements[2].(*ForStatement)
	assert.Equal(t, []string{"a", "b"}, PatternNames(tuple.Target))
}

func TestAssignments(t *testing.T) {
	prog := parse(t, `x = 1
count: int = 0
obj.attr += 2
xs[0] = 3
a, b = b, a
[first, *rest] = items
let y: str = "s"
const Z = 10
let [p, q] = pair
const {name, age: years = 0, ...others} = person
{u, v} = point
`)
	require.Len(t, prog.Statements, 11)

	assert.Equal(t, "=", prog.Statements[0].(*AssignStatement).Operator)
	annotated := prog.Statements[1].(*AssignStatement)
	assert.Equal(t, "int", annotated.TypeAnnotation.String())
	assert.Equal(t, "+=", prog.Statements[2].(*AssignStatement).Operator)
	assert.IsType(t, &IndexExpression{}, prog.Statements[3].(*AssignStatement).Target)

	swap := prog.Statements[4].(*DestructuringAssignment)
	assert.Equal(t, []string{"a", "b"}, PatternNames(swap.Pattern))
	assert.IsType(t, &TupleLiteral{}, swap.Value)

	rest := prog.Statements[5].(*DestructuringAssignment)
	assert.Equal(t, []string{"first", "rest"}, PatternNames(rest.Pattern))

	let := prog.Statements[6].(*LetStatement)
	assert.False(t, let.IsConst())
	assert.True(t, prog.Statements[7].(*LetStatement).IsConst())

	arr := prog.Statements[8].(*DestructuringAssignment)
	assert.Equal(t, "let", arr.Kind)

	obj := prog.Statements[9].(*DestructuringAssignment)
	assert.Equal(t, "const", obj.Kind)
	assert.Equal(t, []string{"name", "years", "others"}, PatternNames(obj.Pattern))
	assert.NotNil(t, obj.Pattern.(*ObjectPattern).Properties[1].Default)

	bare := prog.Statements[10].(*DestructuringAssignment)
	assert.Equal(t, "", bare.Kind)
	assert.IsType(t, &ObjectPattern{}, bare.Pattern)
}

func TestInvalidAssignments(t *testing.T) {
	for _, src := range []string{"f() = 1\n", "a, b += 1\n", "1 = x\n", "const k\n"} {
		parseErr(t, src)
	}
}

func TestMatchStatement(t *testing.T) {
	src := `match command:
    case "go" | "run":
        move()
    case [x, y]:
        jump(x, y)
    case Color.RED:
        stop()
    case n if n > 10:
        big(n)
    case _:
        pass
`
	stmt := parse(t, src).Statements[0].(*MatchStatement)
	assert.Equal(t, "command", stmt.Subject.String())
	require.Len(t, stmt.Cases, 5)
	or := stmt.Cases[0].Pattern.(*OrPattern)
	assert.Len(t, or.Alternatives, 2)
	assert.Len(t, stmt.Cases[1].Pattern.(*SequencePattern).Elements, 2)
	assert.IsType(t, &ValuePattern{}, stmt.Cases[2].Pattern)
	assert.IsType(t, &CapturePattern{}, stmt.Cases[3].Pattern)
	assert.NotNil(t, stmt.Cases[3].Guard)
	assert.IsType(t, &WildcardPattern{}, stmt.Cases[4].Pattern)
}

func TestMatchIsSoftKeyword(t *testing.T) {
	prog := parse(t, "match = re.match(p, s)\nmatch(x)\nprint(match)\n")
	require.Len(t, prog.Statements, 3)
	assert.IsType(t, &AssignStatement{}, prog.Statements[0])
	assert.IsType(t, &CallExpression{}, prog.Statements[1].(*ExpressionStatement).Expression)
}

func TestTryStatement(t *testing.T) {
	src := `try:
    risky()
except ValueError as e:
    handle(e)
except (KeyError, IndexError):
    pass
except:
    raise
else:
    ok()
finally:
    cleanup()
`
	stmt := parse(t, src).Statements[0].(*TryStatement)
	require.Len(t, stmt.Handlers, 3)
	assert.Equal(t, "e", stmt.Handlers[0].Name.Value)
	assert.IsType(t, &TupleLiteral{}, stmt.Handlers[1].Type)
	assert.Nil(t, stmt.Handlers[2].Type)
	assert.NotNil(t, stmt.Else)
	assert.NotNil(t, stmt.Finally)

	err := parseErr(t, "try:\n    x()\ny = 1\n")
	assert.Contains(t, err.Message(), "except or finally")
}

func TestSimpleStatements(t *testing.T) {
	prog := parse(t, `raise ValueError("bad") from err
assert x > 0, "positive"
del cache[key], obj.attr
global counter
nonlocal a, b
with open(p) as f, lock:
    pass
return
`)
	require.Len(t, prog.Statements, 7)
	raise := prog.Statements[0].(*RaiseStatement)
	assert.Equal(t, "err", raise.Cause.String())
	assert.NotNil(t, prog.Statements[1].(*AssertStatement).Message)
	assert.Len(t, prog.Statements[2].(*DeleteStatement).Targets, 2)
	assert.False(t, prog.Statements[3].(*GlobalStatement).Nonlocal)
	assert.True(t, prog.Statements[4].(*GlobalStatement).Nonlocal)
	with := prog.Statements[5].(*WithStatement)
	require.Len(t, with.Items, 2)
	assert.Equal(t, "f", with.Items[0].Target.Value)
	assert.Nil(t, prog.Statements[6].(*ReturnStatement).ReturnValue)
}

func TestSemicolonsAndOneLiners(t *testing.T) {
	prog := parse(t, "a = 1; b = 2\nif a: b = 3; c = 4\n")
	require.Len(t, prog.Statements, 3)
	assert.Len(t, prog.Statements[2].(*IfStatement).Consequence.Statements, 2)
}

func TestImports(t *testing.T) {
	prog := parse(t, `import React from "react"
import {useState, useEffect as effect} from "react"
import * as path from "path"
import "./styles.css"
import os.path as osp
from collections import OrderedDict, deque as dq
from .utils import (
    helper,
    other,
)
from math import *
`)
	require.Len(t, prog.Statements, 8)
	decls := make([]*ImportDeclaration, len(prog.Statements))
	for i, s := range prog.Statements {
		decls[i] = s.(*ImportDeclaration)
	}
	assert.Equal(t, ImportDefault, decls[0].Kind)
	assert.Equal(t, "React", decls[0].Default.Value)
	assert.Equal(t, ImportNamed, decls[1].Kind)
	assert.Equal(t, "effect", decls[1].Specifiers[1].Local())
	assert.Equal(t, ImportNamespace, decls[2].Kind)
	assert.Equal(t, "path", decls[2].Namespace.Value)
	assert.Equal(t, ImportSideEffect, decls[3].Kind)
	assert.Equal(t, "./styles.css", decls[3].Source)
	assert.Equal(t, ImportModule, decls[4].Kind)
	assert.Equal(t, "os.path", decls[4].Source)
	assert.Equal(t, ImportFrom, decls[5].Kind)
	assert.Len(t, decls[5].Specifiers, 2)
	assert.Equal(t, ".utils", decls[6].Source)
	assert.Len(t, decls[6].Specifiers, 2)
	assert.True(t, decls[7].Wildcard)
}

func TestExports(t *testing.T) {
	prog := parse(t, `export {a, b as c}
export * from "./all"
export * as ns from "./ns"
export default App
export def helper():
    pass
export const X = 1
export total = 0
export {x} from "./x"
`)
	require.Len(t, prog.Statements, 8)
	kinds := []ExportKind{ExportNamed, ExportAll, ExportAll, ExportDefault, ExportDecl, ExportDecl, ExportDecl, ExportNamed}
	for i, s := range prog.Statements {
		decl := s.(*ExportDeclaration)
		assert.Equal(t, kinds[i], decl.Kind, "statement %d", i)
	}
	assert.Equal(t, "ns", prog.Statements[2].(*ExportDeclaration).Namespace.Value)
	assert.Equal(t, []string{"helper"}, prog.Statements[4].(*ExportDeclaration).DeclaredNames())
	assert.Equal(t, "./x", prog.Statements[7].(*ExportDeclaration).Source)
}

func TestStatementErrors(t *testing.T) {
	tests := []struct {
		input    string
		line     int
		expected string
	}{
		{"if x\n    y\n", 1, "':' or '{'"},
		{"def f(:\n    pass\n", 1, "parameter name"},
		{"x = 1 2\n", 1, "end of statement"},
		{"if x:\npass\n", 2, "indented block"},
	}
	for _, tt := range tests {
		err := parseErr(t, tt.input)
		assert.Equal(t, tt.line, err.Line, "input %q: %v", tt.input, err)
		assert.Equal(t, tt.expected, err.Expected, "input %q", tt.input)
	}
}
