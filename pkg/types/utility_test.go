package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUtility(t *testing.T) {
	user := &ObjectType{
		Fields:   map[string]Type{"id": Int, "name": Str, "email": Str},
		Optional: map[string]bool{"email": true},
	}
	keys := func(names ...string) Type {
		ts := make([]Type, len(names))
		for i, n := range names {
			ts[i] = &LiteralType{Value: n}
		}
		return NewUnion(ts...)
	}

	tests := []struct {
		name string
		args []Type
		want string
	}{
		{"Partial", []Type{user}, "{email?: str, id?: int, name?: str}"},
		{"Required", []Type{user}, "{email: str, id: int, name: str}"},
		{"Readonly", []Type{user}, "readonly {email?: str, id: int, name: str}"},
		{"Pick", []Type{user, keys("id", "name")}, "{id: int, name: str}"},
		{"Omit", []Type{user, keys("email")}, "{id: int, name: str}"},
		{"Record", []Type{keys("x", "y"), Float}, "{x: float, y: float}"},
		{"Record", []Type{Str, Int}, "{[key: str]: int}"},
		{"Exclude", []Type{NewUnion(Int, Str, None), Str}, "None | int"},
		{"Extract", []Type{NewUnion(Int, Str, None), Str}, "str"},
		{"NonNullable", []Type{NewUnion(Int, None)}, "int"},
		{"NonNullable", []Type{None}, "Never"},
		{"KeyOf", []Type{user}, `"email" | "id" | "name"`},
		{"ReturnType", []Type{&FunctionType{Params: []Type{Int}, Return: Str}}, "str"},
		{"Parameters", []Type{&FunctionType{Params: []Type{Int, Str}}}, "tuple[int, str]"},
		{"Awaited", []Type{Promise(Promise(Int))}, "int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyUtility(tt.name, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestApplyUtilityErrors(t *testing.T) {
	_, err := ApplyUtility("Frozen", Int)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown utility type Frozen")

	_, err = ApplyUtility("Pick", Int)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2")

	_, err = ApplyUtility("Pick", Int, &LiteralType{Value: "a"})
	assert.Error(t, err)
}

func TestApplyUtilityDefersOnTypeParameters(t *testing.T) {
	tp := NewTypeParameter("T", 0, nil)
	got, err := ApplyUtility("Partial", tp.Ref())
	require.NoError(t, err)
	require.IsType(t, &UtilityType{}, got)
	assert.Equal(t, "Partial[T]", got.String())

	obj := NewObject(map[string]Type{"a": Int})
	assert.Equal(t, "{a?: int}", ResolveGenerics(got, map[string]Type{"T": obj}).String())
}

func TestInferTypeArguments(t *testing.T) {
	tp := NewTypeParameter("T", 0, nil)

	// def first[T](xs: list[T]) -> T
	bindings, err := InferTypeArguments([]*TypeParameter{tp}, []Type{&ListType{Elem: tp.Ref()}}, []Type{&ListType{Elem: Str}})
	require.NoError(t, err)
	assert.Equal(t, Str, bindings["T"])

	// def pair[T](a: T, b: T) with (1, 2.5) widens to float.
	bindings, err = InferTypeArguments([]*TypeParameter{tp}, []Type{tp.Ref(), tp.Ref()}, []Type{&LiteralType{Value: int64(1)}, Float})
	require.NoError(t, err)
	assert.Equal(t, Float, bindings["T"])

	// Mixed unrelated arguments become a union.
	bindings, err = InferTypeArguments([]*TypeParameter{tp}, []Type{tp.Ref(), tp.Ref()}, []Type{Int, Str})
	require.NoError(t, err)
	assert.Equal(t, "int | str", bindings["T"].String())

	// T | None against str | None binds T to str.
	bindings, err = InferTypeArguments([]*TypeParameter{tp}, []Type{Optional(tp.Ref())}, []Type{Optional(Str)})
	require.NoError(t, err)
	assert.Equal(t, Str, bindings["T"])

	// Unbound parameters default.
	u := NewTypeParameter("U", 1, nil)
	u.Default = Bool
	bindings, err = InferTypeArguments([]*TypeParameter{tp, u}, []Type{tp.Ref()}, []Type{Int})
	require.NoError(t, err)
	assert.Equal(t, Bool, bindings["U"])

	bounded := NewTypeParameter("N", 0, Float)
	_, err = InferTypeArguments([]*TypeParameter{bounded}, []Type{bounded.Ref()}, []Type{Str})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")
}

func TestFindCommonType(t *testing.T) {
	tests := []struct {
		a, b Type
		want string
	}{
		{Int, Int, "int"},
		{Int, Float, "float"},
		{&LiteralType{Value: int64(1)}, &LiteralType{Value: int64(2)}, "int"},
		{Never, Str, "str"},
		{Int, Str, "int | str"},
		{Optional(Int), None, "None | int"},
		{Any, Int, "Any"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindCommonType(tt.a, tt.b).String(), "%s + %s", tt.a, tt.b)
	}
	assert.Equal(t, Never, CommonTypeOf(nil))
	assert.Equal(t, "float", CommonTypeOf([]Type{Int, Float, Int}).String())
}
