package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

func TestEnvironmentScopes(t *testing.T) {
	global := NewEnvironment()
	require.True(t, global.Define("x", types.Int, false))
	assert.False(t, global.Define("x", types.Str, false), "redefinition in the same scope")

	inner := NewEnclosedEnvironment(global)
	typ, isConst, found := inner.Resolve("x")
	require.True(t, found)
	assert.False(t, isConst)
	assert.Equal(t, types.Int, typ)

	// shadowing leaves the outer binding alone
	require.True(t, inner.Define("x", types.Str, true))
	typ, isConst, _ = inner.Resolve("x")
	assert.Equal(t, types.Str, typ)
	assert.True(t, isConst)
	typ, _, _ = global.Resolve("x")
	assert.Equal(t, types.Int, typ)

	assert.True(t, inner.Update("x", types.Float))
	assert.False(t, inner.Update("missing", types.Float))

	info, scope := inner.Lookup("x")
	assert.Same(t, inner, scope)
	assert.Equal(t, types.Float, info.Type)

	_, scope = inner.Lookup("nope")
	assert.Nil(t, scope)

	assert.Same(t, global, inner.Outer())
	assert.Same(t, global, NewEnclosedEnvironment(inner).Global())
}

func TestEnvironmentAnnotatedAndConst(t *testing.T) {
	env := NewEnvironment()
	env.DefineAnnotated("n", types.Int, false)
	info, _ := env.Lookup("n")
	assert.True(t, info.Annotated)

	env.Define("k", types.Str, false)
	env.MarkConst("k")
	_, isConst, _ := env.Resolve("k")
	assert.True(t, isConst)
}

func TestEnvironmentTypes(t *testing.T) {
	global := NewEnvironment()
	point := types.NewObject(map[string]types.Type{"x": types.Int}).Named("Point")
	require.True(t, global.DefineTypeAlias("Point", point))
	assert.False(t, global.DefineTypeAlias("Point", types.Int))

	inner := NewEnclosedEnvironment(global)
	got, ok := inner.ResolveType("Point")
	require.True(t, ok)
	assert.Same(t, point, got)

	tp := types.NewTypeParameter("T", 0, nil)
	inner.DefineTypeParameter(tp)
	found, ok := NewEnclosedEnvironment(inner).ResolveTypeParameter("T")
	require.True(t, ok)
	assert.Same(t, tp, found)
	_, ok = global.ResolveTypeParameter("T")
	assert.False(t, ok)
}

func TestStandardGlobals(t *testing.T) {
	env := NewStandardGlobalEnvironment()
	for _, name := range []string{"print", "len", "range", "ValueError", "console", "document"} {
		_, _, found := env.Resolve(name)
		assert.True(t, found, name)
	}
	_, isConst, _ := env.Resolve("print")
	assert.True(t, isConst)

	math, ok := NewEnclosedEnvironment(env).Module("math")
	require.True(t, ok)
	assert.Contains(t, math.(*types.ObjectType).Fields, "sqrt")
	_, ok = env.Module("os")
	assert.False(t, ok)
}

func TestGlobalEnvironmentRejectsDuplicates(t *testing.T) {
	_, err := NewGlobalEnvironment([]builtins.BuiltinInitializer{
		&builtins.MathInitializer{}, &builtins.MathInitializer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func annotation(t *testing.T, src string) parser.TypeExpression {
	t.Helper()
	prog := parse(t, "x: "+src+"\n")
	stmt, ok := prog.Statements[0].(*parser.AssignStatement)
	require.True(t, ok, "got %T", prog.Statements[0])
	return stmt.TypeAnnotation
}

func TestResolveAnnotation(t *testing.T) {
	env := NewEnclosedEnvironment(NewStandardGlobalEnvironment())
	env.DefineTypeAlias("Point", types.NewObjectType().Named("Point"))

	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"str", "str"},
		{"number", "float"},
		{"list[int]", "list[int]"},
		{"List[str]", "list[str]"},
		{"Sequence[float]", "list[float]"},
		{"dict[str, int]", "dict[str, int]"},
		{"set[str]", "set[str]"},
		{"tuple[int, str]", "tuple[int, str]"},
		{"Optional[int]", "None | int"},
		{"int | None", "None | int"},
		{"Union[int, str]", "int | str"},
		{"Promise[str]", "Promise[str]"},
		{"Point", "Point"},
		{"list[Point]", "list[Point]"},
		{"React.ReactNode", "Any"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ResolveAnnotation(env, annotation(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolveAnnotationCallable(t *testing.T) {
	env := NewStandardGlobalEnvironment()
	got, err := ResolveAnnotation(env, annotation(t, "Callable[[int, str], bool]"))
	require.NoError(t, err)
	fn, ok := got.(*types.FunctionType)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, []types.Type{types.Int, types.Str}, fn.Params)
	assert.Equal(t, types.Bool, fn.Return)
}

func TestResolveAnnotationErrors(t *testing.T) {
	env := NewStandardGlobalEnvironment()

	_, err := ResolveAnnotation(env, annotation(t, "Widget"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type 'Widget'")

	_, err = ResolveAnnotation(env, annotation(t, "dict[str]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dict")

	got, err := ResolveAnnotation(env, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Any, got)
}

func TestUnknownAnnotationIsReported(t *testing.T) {
	requireError(t, "def f(w: Widget):\n    pass\n", "unknown type 'Widget'")
}
