package checker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

func parse(t *testing.T, src string) *parser.Program {
	t.Helper()
	prog, err := parser.ParseString(src)
	require.NoError(t, err, "source:\n%s", src)
	return prog
}

func check(t *testing.T, src string) (*Checker, []*errors.TypeError) {
	t.Helper()
	c := NewChecker()
	errs := c.Check(parse(t, src))
	return c, errs
}

func messages(errs []*errors.TypeError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Msg
	}
	return out
}

func requireClean(t *testing.T, src string) *Checker {
	t.Helper()
	c, errs := check(t, src)
	require.Empty(t, messages(errs), "source:\n%s", src)
	return c
}

func requireError(t *testing.T, src, want string) *errors.TypeError {
	t.Helper()
	_, errs := check(t, src)
	for _, e := range errs {
		if strings.Contains(e.Msg, want) {
			return e
		}
	}
	require.Failf(t, "missing type error", "want %q, got %q\nsource:\n%s", want, messages(errs), src)
	return nil
}

// lastExprType checks src and returns the type of its final expression
// statement.
func lastExprType(t *testing.T, src string) types.Type {
	t.Helper()
	prog := parse(t, src)
	c := NewChecker()
	errs := c.Check(prog)
	require.Empty(t, messages(errs), "source:\n%s", src)
	last, ok := prog.Statements[len(prog.Statements)-1].(*parser.ExpressionStatement)
	require.True(t, ok, "last statement is %T", prog.Statements[len(prog.Statements)-1])
	return c.Inferrer().TypeOf(last.Expression)
}

func TestInferredExpressionTypes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2\n", "int"},
		{"1 + 2.5\n", "float"},
		{"7 / 2\n", "float"},
		{"7 // 2\n", "int"},
		{"2 ** 3\n", "int"},
		{"'a' + 'b'\n", "str"},
		{"'ab' * 3\n", "str"},
		{"[1, 2] + [3]\n", "list[int]"},
		{"1 < 2\n", "bool"},
		{"'a' in 'abc'\n", "bool"},
		{"not 1\n", "bool"},
		{"-3\n", "int"},
		{"[1, 2, 3]\n", "list[int]"},
		{"(1, 'a')\n", "tuple[int, str]"},
		{"{1, 2}\n", "set[int]"},
		{"{1: 'a', 2: 'b'}\n", "dict[int, str]"},
		{"[x * 2 for x in [1, 2]]\n", "list[int]"},
		{"{k: 1 for k in ['a']}\n", "dict[str, int]"},
		{"f'{1}'\n", "str"},
		{"len([1])\n", "int"},
		{"xs = [1, 2]\nxs[0]\n", "int"},
		{"xs = [1, 2]\nxs[1:]\n", "list[int]"},
		{"'abc'.upper()\n", "str"},
		{"'a,b'.split(',')\n", "list[str]"},
		{"1 if True else 2\n", "int"},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.src), func(t *testing.T) {
			got := lastExprType(t, tt.src)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStringKeyedDictIsRecord(t *testing.T) {
	got := lastExprType(t, "p = {'name': 'ada', 'age': 36}\np\n")
	obj, ok := got.(*types.ObjectType)
	require.True(t, ok, "got %s", got)
	assert.Equal(t, types.Str, obj.Fields["name"])
	assert.Equal(t, types.Int, obj.Fields["age"])

	assert.Equal(t, "str", lastExprType(t, "p = {'name': 'ada'}\np['name']\n").String())
}

func TestOperatorErrors(t *testing.T) {
	requireError(t, "x = 1 + 'a'\n", "unsupported operand types for +: 'int' and 'str'")
	requireError(t, "x = [1] < 'a'\n", "'<' not supported between instances of")
	requireError(t, "x = -'a'\n", "bad operand type for unary -")
}

func TestAnnotationMismatch(t *testing.T) {
	e := requireError(t, "x: int = 'hello'\n", "'x': type str is not assignable to int")
	assert.Equal(t, 1, e.Position.Line)

	requireError(t, "x: int = 1\nx = 'later'\n", "'x'")
	requireClean(t, "x: float = 1\n")
	requireClean(t, "x: int | None = None\n")
	requireClean(t, "x: list[int] = []\nx.append(3)\n")
}

func TestConstReassignment(t *testing.T) {
	requireError(t, "const LIMIT = 10\nLIMIT = 11\n", "cannot reassign constant 'LIMIT'")
	requireError(t, "const LIMIT = 10\nconst LIMIT = 11\n", "cannot reassign constant 'LIMIT'")
	requireClean(t, "let n = 1\nn = 2\n")
}

func TestUntypedRebindingIsAllowed(t *testing.T) {
	requireClean(t, "x = 1\nx = 'now a string'\n")
}

func TestCallChecks(t *testing.T) {
	def := "def add(a: int, b: int = 1) -> int:\n    return a + b\n"

	requireClean(t, def+"add(1)\nadd(1, 2)\nadd(a=1, b=2)\n")
	requireError(t, def+"add()\n", "missing argument 'a'")
	requireError(t, def+"add(1, 2, 3)\n", "expected at most 2 argument(s), got 3")
	requireError(t, def+"add(1, c=2)\n", "unexpected keyword argument 'c'")
	requireError(t, def+"add(1, a=2)\n", "multiple values for argument 'a'")
	requireError(t, def+"add('x')\n", "argument 'a'")

	assert.Equal(t, "int", lastExprType(t, def+"add(1)\n").String())
}

func TestVariadicAndKeywordRest(t *testing.T) {
	requireClean(t, "def f(*args, **kwargs):\n    return len(args)\nf(1, 2, 3, key=4)\n")
	assert.Equal(t, "int", lastExprType(t, "def f(*args: int):\n    return args[0]\nf(1, 2)\n").String())
}

func TestStarredUnpacking(t *testing.T) {
	assert.Equal(t, "list[int]", lastExprType(t, "first, *rest = [1, 2, 3]\nrest\n").String())
	assert.Equal(t, "list[int]", lastExprType(t, "first, *rest = (1, 2, 3)\nrest\n").String())
	requireClean(t, "def f(xs):\n    head, *tail = xs\n    return tail\n")
}

func TestInferredReturnType(t *testing.T) {
	src := `def pick(flag):
    if flag:
        return 1
    return 2
pick(True)
`
	assert.Equal(t, "int", lastExprType(t, src).String())

	src = `def maybe(flag):
    if flag:
        return "s"
    return
maybe(True)
`
	assert.Equal(t, "None | str", lastExprType(t, src).String())

	src = `async def fetch() -> int:
    return 1
fetch()
`
	assert.Equal(t, "Promise[int]", lastExprType(t, src).String())
}

func TestReturnChecks(t *testing.T) {
	requireError(t, "def f() -> int:\n    return 'no'\n", "return value")
	requireError(t, "return 1\n", "'return' outside function")
	requireClean(t, "def f() -> None:\n    return\n")
}

func TestLoopControlOutsideLoop(t *testing.T) {
	requireError(t, "break\n", "'break' outside loop")
	requireError(t, "def f():\n    continue\n", "'continue' not properly in loop")
	requireError(t, "for i in range(3):\n    def g():\n        break\n", "'break' outside loop")
	requireClean(t, "while True:\n    break\nfor i in range(3):\n    continue\n")
}

func TestForLoopBindings(t *testing.T) {
	assert.Equal(t, "int", lastExprType(t, "for i in range(3):\n    pass\ni\n").String())
	assert.Equal(t, "str", lastExprType(t, "for k, v in {'a': 1}.items():\n    pass\nk\n").String())
	requireError(t, "for x in 5:\n    pass\n", "'int' object is not iterable")
}

func TestClasses(t *testing.T) {
	src := `class Point:
    def __init__(self, x: int, y: int):
        self.x = x
        self.y = y

    def norm(self) -> float:
        return (self.x ** 2 + self.y ** 2) ** 0.5

p = Point(1, 2)
p.x
`
	assert.Equal(t, "int", lastExprType(t, src).String())

	requireError(t, strings.Replace(src, "p.x\n", "p.z\n", 1), "'Point' object has no attribute 'z'")
	requireError(t, strings.Replace(src, "Point(1, 2)", "Point(1)", 1), "missing argument 'y'")
	assert.Equal(t, "float", lastExprType(t, strings.Replace(src, "p.x\n", "p.norm()\n", 1)).String())
}

func TestAnnotatedClassFields(t *testing.T) {
	src := `class User:
    name: str
    def __init__(self, name):
        self.name = name

u = User("ada")
u.name = 3
`
	requireError(t, src, "attribute 'name'")
}

func TestInheritance(t *testing.T) {
	src := `class Animal:
    def __init__(self, name: str):
        self.name = name
    def speak(self) -> str:
        return self.name

class Dog(Animal):
    def fetch(self) -> str:
        return "ball"

d = Dog("rex")
d.speak()
`
	assert.Equal(t, "str", lastExprType(t, src).String())
}

func TestSelfReferentialClass(t *testing.T) {
	src := `class Node:
    def __init__(self, value: int):
        self.value = value
        self.next: Node | None = None

    def append(self, other: Node) -> Node:
        self.next = other
        return other

a = Node(1)
a.append(Node(2)).value
`
	assert.Equal(t, "int", lastExprType(t, src).String())
}

func TestDynamicClasses(t *testing.T) {
	requireClean(t, `class Bag:
    def __getattr__(self, name):
        return 1

Bag().anything
`)
	requireClean(t, "class Widget(Component):\n    pass\nWidget().props\n")
}

func TestGenericFunctions(t *testing.T) {
	src := `T = TypeVar("T")

def first(xs: list[T]) -> T:
    return xs[0]

first([1, 2])
`
	assert.Equal(t, "int", lastExprType(t, src).String())
	assert.Equal(t, "str", lastExprType(t, strings.Replace(src, "[1, 2]", "['a']", 1)).String())
}

func TestImports(t *testing.T) {
	assert.Equal(t, "float", lastExprType(t, "import math\nmath.sqrt(2)\n").String())
	assert.Equal(t, "float", lastExprType(t, "from math import pi\npi\n").String())
	requireError(t, "from math import nope\n", "module 'math' has no attribute 'nope'")
	requireClean(t, "from react import useState\nuseState(0)\n")
	requireClean(t, "import lodash as _\n_.chunk([1], 1)\n")
}

func TestHostNamesAreDynamic(t *testing.T) {
	requireClean(t, "document.getElementById('app').innerHTML = 'x'\n")
	requireClean(t, "undeclared_thing.call(1) + 2\n")
}

func TestClosuresSeeEnclosingNames(t *testing.T) {
	src := `def outer():
    count = 0
    def inner():
        return count + 1
    return inner()
outer()
`
	assert.Equal(t, "int", lastExprType(t, src).String())
}

func TestTryAndMatch(t *testing.T) {
	requireClean(t, `try:
    x = int("3")
except ValueError as e:
    print(e)
finally:
    pass
`)
	requireClean(t, `match command:
    case "go":
        pass
    case [a, b]:
        print(a, b)
    case _:
        pass
`)
}

func TestCheckerIsReusable(t *testing.T) {
	c := NewChecker()
	assert.NotEmpty(t, c.Check(parse(t, "x = 1 + 'a'\n")))
	assert.Empty(t, c.Check(parse(t, "x = 1 + 2\n")))
}

func TestPackageCheck(t *testing.T) {
	assert.Empty(t, Check(parse(t, "print('hi')\n")))
}

func TestInferExpressionType(t *testing.T) {
	in := NewInferrer(NewStandardGlobalEnvironment())
	prog := parse(t, "1 + 'a'\n")
	expr := prog.Statements[0].(*parser.ExpressionStatement).Expression
	_, err := in.InferExpressionType(expr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operand types")

	prog = parse(t, "[1.5, 2]\n")
	expr = prog.Statements[0].(*parser.ExpressionStatement).Expression
	got, err := in.InferExpressionType(expr)
	require.NoError(t, err)
	assert.Equal(t, "list[float]", got.String())
	assert.Equal(t, got, in.TypeOf(expr))
}
