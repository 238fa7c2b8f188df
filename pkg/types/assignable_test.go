package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionAssignability(t *testing.T) {
	narrow := NewUnion(Int, Str)
	wide := NewUnion(Int, Str, Bool)

	assert.True(t, IsAssignableTo(narrow, wide))
	assert.False(t, IsAssignableTo(wide, narrow))
	assert.True(t, IsAssignableTo(Int, narrow))
	assert.False(t, IsAssignableTo(Float, narrow))
	assert.True(t, IsAssignableTo(None, Optional(Str)))
}

func sampleTypes() []Type {
	tp := NewTypeParameter("T", 0, nil)
	return []Type{
		Int, Float, Str, Bool, None, Any, Unknown, Never,
		&LiteralType{Value: "ok"},
		&LiteralType{Value: int64(3)},
		&ListType{Elem: Int},
		&ArrayType{Elem: Str},
		&SetType{Elem: Float},
		&DictType{Key: Str, Value: &ListType{Elem: Int}},
		&TupleType{Elems: []Type{Int, Str}},
		NewObject(map[string]Type{"name": Str, "age": Int}),
		&IndexSignatureType{Key: Str, Value: Bool},
		&FunctionType{Params: []Type{Int, Str}, Return: Bool},
		&CallableType{Overloads: []*FunctionType{{Params: []Type{Int}, Return: Int}, {Params: []Type{Str}, Return: Str}}},
		NewUnion(Int, None),
		NewIntersection(Int, Str),
		tp.Ref(),
		Promise(Int),
		&TemplateLiteralType{Parts: []string{"id_", ""}, Types: []Type{Int}},
		&UtilityType{Name: "Partial", Args: []Type{tp.Ref()}},
		&ConditionalType{Check: tp.Ref(), Extends: Str, True: Int, False: Bool},
		&MappedType{Param: "K", Keys: tp.Ref(), Value: Int},
	}
}

func TestAssignabilityIsReflexive(t *testing.T) {
	for _, ty := range sampleTypes() {
		assert.True(t, IsAssignableTo(ty, ty), "%s should be assignable to itself", ty)
		assert.True(t, ty.Equals(ty), "%s should equal itself", ty)
	}
}

func TestAnyAndNever(t *testing.T) {
	for _, ty := range sampleTypes() {
		assert.True(t, IsAssignableTo(ty, Any), "%s -> Any", ty)
		assert.True(t, IsAssignableTo(Never, ty), "Never -> %s", ty)
		assert.True(t, IsAssignableTo(ty, Unknown), "%s -> Unknown", ty)
	}
	assert.False(t, IsAssignableTo(Int, Never))
	assert.False(t, IsAssignableTo(Unknown, Int))
}

func TestPrimitiveAssignability(t *testing.T) {
	tests := []struct {
		source, target Type
		want           bool
	}{
		{Int, Float, true},
		{Float, Int, false},
		{Bool, Int, false},
		{Str, Int, false},
		{None, Int, false},
		{&LiteralType{Value: int64(1)}, Int, true},
		{&LiteralType{Value: int64(1)}, Float, true},
		{&LiteralType{Value: "a"}, Str, true},
		{&LiteralType{Value: "a"}, &LiteralType{Value: "b"}, false},
		{Str, &LiteralType{Value: "a"}, false},
		{Bool, NewUnion(&LiteralType{Value: true}, &LiteralType{Value: false}), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAssignableTo(tt.source, tt.target), "%s -> %s", tt.source, tt.target)
	}
}

func TestCollectionAssignability(t *testing.T) {
	assert.True(t, IsAssignableTo(&ListType{Elem: Int}, &ListType{Elem: Float}))
	assert.False(t, IsAssignableTo(&ListType{Elem: Str}, &ListType{Elem: Int}))
	assert.True(t, IsAssignableTo(&ListType{Elem: Int}, &ArrayType{Elem: Int}))
	assert.True(t, IsAssignableTo(&TupleType{Elems: []Type{Int, Int}}, &ListType{Elem: Int}))
	assert.False(t, IsAssignableTo(&TupleType{Elems: []Type{Int}}, &TupleType{Elems: []Type{Int, Int}}))
	assert.True(t, IsAssignableTo(&DictType{Key: Str, Value: Int}, &DictType{Key: Str, Value: Optional(Int)}))
	assert.False(t, IsAssignableTo(&SetType{Elem: Int}, &ListType{Elem: Int}))
}

func TestObjectWidthSubtyping(t *testing.T) {
	point := NewObject(map[string]Type{"x": Int, "y": Int})
	point3 := NewObject(map[string]Type{"x": Int, "y": Int, "z": Int})
	labelled := &ObjectType{Fields: map[string]Type{"x": Int, "label": Str}, Optional: map[string]bool{"label": true}}

	assert.True(t, IsAssignableTo(point3, point))
	assert.False(t, IsAssignableTo(point, point3))
	assert.True(t, IsAssignableTo(NewObject(map[string]Type{"x": Int}), labelled), "optional fields may be absent")
	assert.False(t, IsAssignableTo(NewObject(map[string]Type{"x": Int, "label": Int}), labelled))

	err := CheckAssignable(point, point3)
	require.Error(t, err)
	var aerr *AssignabilityError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Error(), `missing field "z"`)
}

func TestFunctionAssignability(t *testing.T) {
	takesFloat := &FunctionType{Params: []Type{Float}, Return: Int}
	takesInt := &FunctionType{Params: []Type{Int}, Return: Int}

	// Parameters are contravariant.
	assert.True(t, IsAssignableTo(takesFloat, takesInt))
	assert.False(t, IsAssignableTo(takesInt, takesFloat))

	// Returns are covariant.
	returnsInt := &FunctionType{Params: []Type{Int}, Return: Int}
	returnsFloat := &FunctionType{Params: []Type{Int}, Return: Float}
	assert.True(t, IsAssignableTo(returnsInt, returnsFloat))
	assert.False(t, IsAssignableTo(returnsFloat, returnsInt))

	// Fewer parameters are fine, extra required ones are not.
	noArgs := &FunctionType{Return: Int}
	twoArgs := &FunctionType{Params: []Type{Int, Int}, Return: Int}
	assert.True(t, IsAssignableTo(noArgs, takesInt))
	assert.False(t, IsAssignableTo(twoArgs, takesInt))
	withDefault := &FunctionType{Params: []Type{Int, Int}, Optional: []bool{false, true}, Return: Int}
	assert.True(t, IsAssignableTo(withDefault, takesInt))

	err := CheckAssignable(takesInt, takesFloat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 1")

	overloaded := &CallableType{Overloads: []*FunctionType{takesInt, {Params: []Type{Str}, Return: Str}}}
	assert.True(t, IsAssignableTo(overloaded, &FunctionType{Params: []Type{Str}, Return: Str}))
	assert.False(t, IsAssignableTo(overloaded, &FunctionType{Params: []Type{Bool}, Return: Str}))
}

func TestGenericAssignability(t *testing.T) {
	assert.True(t, IsAssignableTo(Promise(Int), Promise(Float)))
	assert.False(t, IsAssignableTo(Promise(Str), Promise(Int)))
	mapped := &InstantiatedType{Generic: MapGeneric, TypeArguments: []Type{Str, Int}}
	assert.False(t, IsAssignableTo(Promise(Int), mapped))

	bounded := NewTypeParameter("T", 0, Str)
	assert.True(t, IsAssignableTo(bounded.Ref(), Str))
	assert.False(t, IsAssignableTo(Str, bounded.Ref()))
}

func TestTemplateLiteralAssignability(t *testing.T) {
	userID := &TemplateLiteralType{Parts: []string{"user_", ""}, Types: []Type{Int}}
	assert.True(t, IsAssignableTo(&LiteralType{Value: "user_42"}, userID))
	assert.False(t, IsAssignableTo(&LiteralType{Value: "user_x"}, userID))
	assert.False(t, IsAssignableTo(Str, userID))
	assert.True(t, IsAssignableTo(userID, Str))

	route := &TemplateLiteralType{Parts: []string{"/", "/", ""}, Types: []Type{Str, Int}}
	assert.True(t, route.Matches("/users/7"))
	assert.False(t, route.Matches("/users/seven"))
	assert.Equal(t, "`/${str}/${int}`", route.String())
}

func TestUtilityUnwrapsForAssignability(t *testing.T) {
	tp := NewTypeParameter("T", 0, nil)
	deferred := &UtilityType{Name: "Readonly", Args: []Type{tp.Ref()}}
	assert.True(t, IsAssignableTo(deferred, tp.Ref()))

	obj := NewObject(map[string]Type{"a": Int})
	ro := &UtilityType{Name: "Readonly", Args: []Type{obj}}
	assert.True(t, IsAssignableTo(ro, obj))
	assert.True(t, IsAssignableTo(obj, ro))
}
