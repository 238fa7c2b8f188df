package transpiler

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/parser"
)

func transpile(t *testing.T, src string) string {
	t.Helper()
	return transpileWith(t, Options{}, src)
}

func transpileWith(t *testing.T, opts Options, src string) string {
	t.Helper()
	prog, err := parser.ParseString(src)
	require.NoError(t, err, "source:\n%s", src)
	out, err := New(opts).Transpile(prog)
	require.NoError(t, err)
	return out
}

func TestIfElse(t *testing.T) {
	out := transpile(t, "if x > 0:\n    print(x)\nelse:\n    print(0)\n")
	assert.Contains(t, out, "if (x > 0) {\n  console.log(x);\n} else {\n  console.log(0);\n}\n")
}

func TestElifChain(t *testing.T) {
	out := transpile(t, "if a:\n    f()\nelif b:\n    g()\nelse:\n    h()\n")
	assert.Contains(t, out, "if (a) {\n  f();\n} else if (b) {\n  g();\n} else {\n  h();\n}\n")
}

func TestListComprehension(t *testing.T) {
	out := transpile(t, "items = [1, -2, 3]\nresult = [x * 2 for x in items if x > 0]\n")
	assert.Contains(t, out, "(() => { const __result = []; for (const x of items) { if (x > 0) { __result.push(x * 2); } } return __result; })()")
	assert.Equal(t, 1, strings.Count(out, "for ("))
	assert.Equal(t, 1, strings.Count(out, "if ("))
}

func TestSetAndDictComprehensions(t *testing.T) {
	out := transpile(t, "words = [\"a\", \"bb\"]\nlens = {len(w) for w in words}\nindex = {w: len(w) for w in words}\n")
	assert.Contains(t, out, "const __result = new Set();")
	assert.Contains(t, out, "__result.add(w.length);")
	assert.Contains(t, out, "const __result = {};")
	assert.Contains(t, out, "__result[w] = w.length;")
}

func TestFStringFormatSpec(t *testing.T) {
	out := transpile(t, "n = 3.14159\ns = f\"Value: {n:.2f}\"\n")
	assert.Contains(t, out, "`Value: ${(n).toFixed(2)}`")
}

func TestFStringLowerings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"zero padded", `f"{n:05d}"`, `${(n).toString().padStart(5, "0")}`},
		{"grouping", `f"{n:,}"`, `${(n).toLocaleString("en-US")}`},
		{"hex", `f"{n:#x}"`, `${("0x" + (n).toString(16))}`},
		{"percent", `f"{n:.1%}"`, `${((n) * 100).toFixed(1) + "%"}`},
		{"left aligned", `f"{s:<8}"`, `${String(s).padEnd(8)}`},
		{"right aligned", `f"{s:>8}"`, `${String(s).padStart(8)}`},
		{"repr", `f"{s!r}"`, `${__repr(s)}`},
		{"unknown spec", `f"{n:%Y}"`, "${n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := transpile(t, "n = 42\ns = \"hi\"\nv = "+tt.src+"\n")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestFStringCenterUsesHelper(t *testing.T) {
	out := transpile(t, "s = \"hi\"\nv = f\"{s:*^10}\"\n")
	assert.Contains(t, out, `__center(String(s), 10, "*")`)
	assert.Contains(t, out, "function __center(")
}

func TestFStringEscapesTemplateText(t *testing.T) {
	out := transpile(t, "v = f\"cost `${x}`\"\n")
	assert.Contains(t, out, "`cost \\`$${x}\\``")
}

func TestFunctionDefaults(t *testing.T) {
	out := transpile(t, "def add(a: int, b: int = 1) -> int:\n    return a + b\n")
	assert.Contains(t, out, "function add(a, b = 1) {\n  return a + b;\n}\n")
}

func TestDeclaresOnce(t *testing.T) {
	out := transpile(t, "x = 1\nx = 2\n")
	assert.Equal(t, "let x = 1;\nx = 2;\n", out)
}

func TestHoistsBlockAssignments(t *testing.T) {
	out := transpile(t, "def pick(c):\n    if c:\n        y = 1\n    else:\n        y = 2\n    return y\n")
	assert.Contains(t, out, "  let y;\n  if (c) {\n    y = 1;\n  } else {\n    y = 2;\n  }\n  return y;\n")
	assert.NotContains(t, out, "let y = ")
}

func TestUnknownTarget(t *testing.T) {
	prog, err := parser.ParseString("x = 1\n")
	require.NoError(t, err)

	_, err = New(Options{Target: "amd"}).Transpile(prog)
	require.Error(t, err)
	var terr *errors.TranspileError
	require.True(t, stderrors.As(err, &terr))
	assert.Contains(t, terr.Msg, "unknown target")
}

func TestKeywordArguments(t *testing.T) {
	src := `def greet(name, greeting="Hello", punct="!"):
    return greeting + name + punct

greet("Bob", punct="?")
greet("Ann", greeting="Hi")
`
	out := transpile(t, src)
	assert.Contains(t, out, `greet("Bob", undefined, "?");`)
	assert.Contains(t, out, `greet("Ann", "Hi");`)
}

func TestKeywordRest(t *testing.T) {
	src := `def tag(name, **attrs):
    return name

tag("a", href="/", title="home")
`
	out := transpile(t, src)
	assert.Contains(t, out, "function tag(name, attrs = {}) {")
	assert.Contains(t, out, `tag("a", { href: "/", title: "home" });`)
}

func TestKeywordRestBeforeVarargs(t *testing.T) {
	src := `def f(a, *args, **kw):
    return a

f(1, 2, 3)
f(1, 2, k=4)
`
	out := transpile(t, src)
	assert.Contains(t, out, "function f(a, kw = {}, ...args) {")
	assert.Contains(t, out, "f(1, undefined, 2, 3);")
	assert.Contains(t, out, "f(1, { k: 4 }, 2);")
}

func TestClasses(t *testing.T) {
	src := `class Animal:
    def __init__(self, name: str):
        self.name = name

    def speak(self) -> str:
        return self.name

class Dog(Animal):
    sound = "woof"

    def __init__(self, name: str):
        super().__init__(name)

    @property
    def label(self) -> str:
        return self.name

    @staticmethod
    def create():
        return Dog("rex")

d = Dog("fido")
`
	out := transpile(t, src)
	assert.Contains(t, out, "class Animal {")
	assert.Contains(t, out, "  constructor(name) {\n    this.name = name;\n  }")
	assert.Contains(t, out, "  speak() {\n    return this.name;\n  }")
	assert.Contains(t, out, "class Dog extends Animal {")
	assert.Contains(t, out, `static sound = "woof";`)
	assert.Contains(t, out, "    super(name);\n")
	assert.Contains(t, out, "get label() {")
	assert.Contains(t, out, "static create() {")
	assert.Contains(t, out, `return new Dog("rex");`)
	assert.Contains(t, out, `let d = new Dog("fido");`)
}

func TestSubclassConstructorCallsSuper(t *testing.T) {
	src := `class Base:
    pass

class Child(Base):
    def __init__(self):
        self.ready = True
`
	out := transpile(t, src)
	assert.Contains(t, out, "  constructor() {\n    super();\n    this.ready = true;\n  }")
}

func TestDataclass(t *testing.T) {
	src := `@dataclass
class Point:
    x: int
    y: int = 0

p = Point(1)
`
	out := transpile(t, src)
	assert.Contains(t, out, "constructor(x, y = 0) {")
	assert.Contains(t, out, "this.x = x;")
	assert.Contains(t, out, "let p = new Point(1);")
	assert.NotContains(t, out, "dataclass(")
}

func TestDunderMethods(t *testing.T) {
	src := `class Bag:
    def __str__(self):
        return "bag"

    def __iter__(self):
        yield 1
`
	out := transpile(t, src)
	assert.Contains(t, out, "toString() {")
	assert.Contains(t, out, "*[Symbol.iterator]() {")
}

func TestMatchAsSwitch(t *testing.T) {
	src := `def describe(code):
    match code:
        case 200:
            return "ok"
        case 404 | 410:
            return "gone"
        case _:
            return "other"
`
	out := transpile(t, src)
	assert.Contains(t, out, "switch (code) {")
	assert.Contains(t, out, "case 200: {")
	assert.Contains(t, out, "case 404:\n")
	assert.Contains(t, out, "case 410: {")
	assert.Contains(t, out, "default: {")
	assert.NotContains(t, out, "break;")
}

func TestMatchAsIfChain(t *testing.T) {
	src := `def area(shape):
    match shape:
        case [w, h]:
            return w * h
        case _:
            return 0
`
	out := transpile(t, src)
	assert.Contains(t, out, "const __match1 = shape;")
	assert.Contains(t, out, "Array.isArray(__match1) && __match1.length === 2 && (w = __match1[0], h = __match1[1], true)")
	assert.Contains(t, out, "let w, h;")
	assert.Contains(t, out, "} else {")
	assert.NotContains(t, out, "switch")
}

func TestTryExcept(t *testing.T) {
	src := `try:
    risky()
except ValueError as e:
    print(e)
except:
    print("other")
finally:
    done()
`
	out := transpile(t, src)
	assert.Contains(t, out, "try {\n  risky();\n} catch (__err) {\n")
	assert.Contains(t, out, "if (__err instanceof ValueError) {")
	assert.Contains(t, out, "const e = __err;")
	assert.Contains(t, out, "} finally {\n  done();\n}")
	assert.Contains(t, out, "class ValueError extends Error {")
}

func TestTryElse(t *testing.T) {
	src := `try:
    a()
except Exception as err:
    b(err)
else:
    c()
`
	out := transpile(t, src)
	assert.Contains(t, out, "let __ok1 = false;")
	assert.Contains(t, out, "} catch (err) {")
	assert.Contains(t, out, "if (__ok1) {\n  c();\n}")
}

func TestRaise(t *testing.T) {
	out := transpile(t, "def check(v):\n    if v < 0:\n        raise ValueError(\"negative\")\n    raise KeyError\n")
	assert.Contains(t, out, `throw new ValueError("negative");`)
	assert.Contains(t, out, "throw new KeyError();")
}

func TestRangeLoop(t *testing.T) {
	out := transpile(t, "for i in range(10):\n    print(i)\nfor j in range(10, 0, -2):\n    print(j)\n")
	assert.Contains(t, out, "for (let i = 0; i < 10; i++) {")
	assert.Contains(t, out, "for (let j = 10; j > 0; j -= 2) {")
}

func TestForOverDict(t *testing.T) {
	out := transpile(t, "d = {\"a\": 1}\nfor k in d:\n    print(k)\n")
	assert.Contains(t, out, "for (const k of Object.keys(d)) {")
}

func TestJSXCreateElement(t *testing.T) {
	out := transpile(t, "el = <div class=\"box\" data-id={uid}>Hello <b>world</b></div>\n")
	assert.Contains(t, out, `React.createElement("div", { className: "box", "data-id": uid }, "Hello", React.createElement("b", null, "world"))`)
	assert.NotContains(t, out, "react/jsx-runtime")
}

func TestJSXAutomaticRuntime(t *testing.T) {
	out := transpileWith(t, Options{JSX: true}, "el = <App title=\"x\" {...props} />\n")
	assert.Contains(t, out, `import { jsx } from "react/jsx-runtime";`)
	assert.Contains(t, out, `jsx(App, { title: "x", ...props })`)
}

func TestModulesESM(t *testing.T) {
	src := `from .utils import helper
import math

export def main():
    return helper(math.pi)

export default main
`
	out := transpile(t, src)
	assert.Contains(t, out, `import { helper } from "./utils.js";`)
	assert.Contains(t, out, "export function main() {")
	assert.Contains(t, out, "export default main;")
}

func TestModulesCommonJS(t *testing.T) {
	src := `from .utils import helper

export def main():
    return helper()
`
	out := transpileWith(t, Options{Target: "cjs"}, src)
	assert.True(t, strings.HasPrefix(out, "\"use strict\";\n"))
	assert.Contains(t, out, `const { helper } = require("./utils.js");`)
	assert.Contains(t, out, "function main() {")
	assert.NotContains(t, out, "export ")
	assert.Contains(t, out, "module.exports.main = main;")
}

func TestTypeOnlyImportsVanish(t *testing.T) {
	out := transpile(t, "from typing import List, Optional\nx: Optional[int] = None\n")
	assert.NotContains(t, out, "typing")
	assert.Contains(t, out, "let x = null;")
}

func TestHelpersEmittedOnce(t *testing.T) {
	out := transpile(t, "a = repr(1)\nb = repr(2)\n")
	assert.Equal(t, 1, strings.Count(out, "function __repr("))
	assert.Less(t, strings.Index(out, "function __repr("), strings.Index(out, "let a = "))
}

func TestCollectionTruthiness(t *testing.T) {
	src := `xs: list[int] = []
if xs:
    print(1)
if not xs:
    print(2)
`
	out := transpile(t, src)
	assert.Contains(t, out, "if (xs.length > 0) {")
	assert.Contains(t, out, "if (!(xs.length > 0)) {")
}

func TestOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"floor division", "a = 7 // 2\n", "let a = Math.floor(7 / 2);"},
		{"power", "a = -2 ** 2\n", "let a = -(2 ** 2);"},
		{"equality", "a = 1 == 2\n", "let a = 1 === 2;"},
		{"none check", "x = None\na = x is None\n", "let a = x == null;"},
		{"logic", "a = True and not False\n", "let a = true && !false;"},
		{"dict membership", "d = {\"k\": 1}\na = \"k\" in d\n", `let a = "k" in d;`},
		{"list membership", "xs = [1, 2]\na = 3 not in xs\n", "let a = !xs.includes(3);"},
		{"string repeat", "s = \"ab\"\na = s * 3\n", "let a = s.repeat(3);"},
		{"list concat", "xs = [1]\nys = [2]\na = xs + ys\n", "let a = [...xs, ...ys];"},
		{"negative index", "xs = [1, 2, 3]\na = xs[-1]\n", "let a = xs.at(-1);"},
		{"slice", "xs = [1, 2, 3]\na = xs[1:]\n", "let a = xs.slice(1);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, transpile(t, tt.src), tt.want)
		})
	}
}

func TestBuiltinMethods(t *testing.T) {
	src := `s = "a,b"
parts = s.split(",")
up = s.upper()
xs = [3, 1]
xs.append(2)
n = len(xs)
`
	out := transpile(t, src)
	assert.Contains(t, out, `let parts = __split(s, ",");`)
	assert.Contains(t, out, "function __split(")
	assert.Contains(t, out, "let up = s.toUpperCase();")
	assert.Contains(t, out, "xs.push(2);")
	assert.Contains(t, out, "let n = xs.length;")
}

func TestIsinstance(t *testing.T) {
	out := transpile(t, "def f(v):\n    return isinstance(v, (str, int))\n")
	assert.Contains(t, out, `return typeof v === "string" || Number.isInteger(v);`)

	out = transpile(t, "def f(v):\n    return isinstance(v, str)\n")
	assert.Contains(t, out, `return typeof v === "string";`)
	assert.NotContains(t, out, "isinstance(")
}

func TestIsinstanceUserClass(t *testing.T) {
	out := transpile(t, "class Dog:\n    pass\n\ndef f(v):\n    return isinstance(v, Dog)\n")
	assert.Contains(t, out, "return v instanceof Dog;")
}

func TestHasattr(t *testing.T) {
	out := transpile(t, "def f(v):\n    return hasattr(v, \"x\")\n")
	assert.Contains(t, out, `return (v !== null && v !== undefined && "x" in Object(v));`)
	assert.NotContains(t, out, "hasattr(")
}

func TestShadowedInlineChecks(t *testing.T) {
	out := transpile(t, "def hasattr(a, b):\n    return True\n\nok = hasattr(1, \"x\")\n")
	assert.Contains(t, out, `let ok = hasattr(1, "x");`)
}

func TestShadowedBuiltin(t *testing.T) {
	out := transpile(t, "def len(x):\n    return 0\nn = len([1])\n")
	assert.Contains(t, out, "let n = len([1]);")
}

func TestReservedNames(t *testing.T) {
	out := transpile(t, "delete = 1\nprint(delete)\n")
	assert.Contains(t, out, "let delete_ = 1;")
	assert.Contains(t, out, "console.log(delete_);")
}

func TestLambdaAndDecorators(t *testing.T) {
	src := `double = lambda x: x * 2

@cache
def load():
    return 1
`
	out := transpile(t, src)
	assert.Contains(t, out, "let double = (x) => x * 2;")
	assert.Contains(t, out, "load = cache(load);")
}

func TestWithStatement(t *testing.T) {
	out := transpile(t, "with open_file() as f:\n    use(f)\n")
	assert.Contains(t, out, "const __ctx1 = open_file();")
	assert.Contains(t, out, "__ctx1.__exit__?.();")
}

func TestAssert(t *testing.T) {
	out := transpile(t, "def f(x):\n    assert x > 0, \"positive\"\n")
	assert.Contains(t, out, "if (!(x > 0)) {")
	assert.Contains(t, out, `throw new AssertionError("positive");`)
}

func TestTranspilerIsReusable(t *testing.T) {
	tr := New(Options{})
	first, err := parser.ParseString("a = repr(1)\n")
	require.NoError(t, err)
	second, err := parser.ParseString("b = 2\n")
	require.NoError(t, err)

	_, err = tr.Transpile(first)
	require.NoError(t, err)
	out, err := tr.Transpile(second)
	require.NoError(t, err)
	assert.Equal(t, "let b = 2;\n", out)
}

func TestIfElseExpression(t *testing.T) {
	out := transpile(t, "x = 1 if c else 2\n")
	assert.Contains(t, out, "let x = c ? 1 : 2;")

	out = transpile(t, "y = [v if v > 0 else -v for v in xs]\n")
	assert.Contains(t, out, "v > 0 ? v : -v")
}
