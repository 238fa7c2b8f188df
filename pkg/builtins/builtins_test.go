package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/types"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	require.NotNil(t, r)
	assert.Same(t, r, Default())

	names := r.Names()
	assert.Contains(t, names, "print")
	assert.Contains(t, names, "ValueError")
	assert.IsIncreasing(t, names)
}

func TestLookup(t *testing.T) {
	r := Default()
	tests := []struct {
		name   string
		expect Mapping
	}{
		{"print", Mapping{Name: "print", JSEquivalent: "console.log"}},
		{"len", Mapping{Name: "len", JSEquivalent: "length", IsMethodStyle: true, IsProperty: true}},
		{"ord", Mapping{Name: "ord", JSEquivalent: "codePointAt", IsMethodStyle: true}},
		{"Exception", Mapping{Name: "Exception", JSEquivalent: "Error", IsConstructor: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.expect, got)
		})
	}

	rng, ok := r.Lookup("range")
	require.True(t, ok)
	assert.Equal(t, "__range", rng.RequiresHelper)
	assert.Equal(t, []string{"start", "stop", "step"}, rng.Params)

	uuid, ok := r.Lookup("uuid4")
	require.True(t, ok)
	require.NotNil(t, uuid.RequiresImport)
	assert.Equal(t, "node:crypto", uuid.RequiresImport.Source)

	_, ok = r.Lookup("no_such_builtin")
	assert.False(t, ok)
}

func TestLookupMethod(t *testing.T) {
	r := Default()

	m, ok := r.LookupMethod(ReceiverList, "append")
	require.True(t, ok)
	assert.Equal(t, MethodRename, m.Form)
	assert.Equal(t, "push", m.JS)

	m, ok = r.LookupMethod(ReceiverStr, "upper")
	require.True(t, ok)
	assert.Equal(t, "toUpperCase", m.JS)
	assert.Equal(t, types.Str, m.ReturnType(types.Str))

	m, ok = r.LookupMethod(ReceiverDict, "items")
	require.True(t, ok)
	assert.Equal(t, MethodStatic, m.Form)
	dict := &types.DictType{Key: types.Str, Value: types.Int}
	assert.Equal(t, "list[tuple[str, int]]", m.ReturnType(dict).String())

	// an unknown receiver prefers the list table
	m, ok = r.LookupMethod(ReceiverUnknown, "index")
	require.True(t, ok)
	assert.Equal(t, ReceiverList, m.Receiver)

	m, ok = r.LookupMethod(ReceiverUnknown, "upper")
	require.True(t, ok)
	assert.Equal(t, ReceiverStr, m.Receiver)

	_, ok = r.LookupMethod(ReceiverSet, "upper")
	assert.False(t, ok)
}

func TestHelpersResolve(t *testing.T) {
	r := Default()
	for _, name := range r.Names() {
		m, _ := r.Lookup(name)
		if m.RequiresHelper == "" {
			continue
		}
		src, ok := r.Helper(m.RequiresHelper)
		require.True(t, ok, name)
		assert.Regexp(t, `^(function|class) `+m.RequiresHelper+`\b`, src, name)
	}
	for _, name := range r.HelperNames() {
		src, _ := r.Helper(name)
		assert.Regexp(t, `^(function|class) `+name+`\b`, src)
	}
}

func TestModules(t *testing.T) {
	r := Default()
	shim, ok := r.Module("math")
	require.True(t, ok)
	assert.Contains(t, shim, "pi: Math.PI")

	_, ok = r.Module("json")
	assert.True(t, ok)
	_, ok = r.Module("os")
	assert.False(t, ok)
}

func TestReceiverOf(t *testing.T) {
	tests := []struct {
		typ    types.Type
		expect ReceiverKind
	}{
		{types.Str, ReceiverStr},
		{&types.LiteralType{Value: "x"}, ReceiverStr},
		{&types.ListType{Elem: types.Int}, ReceiverList},
		{&types.TupleType{Elems: []types.Type{types.Int}}, ReceiverList},
		{&types.DictType{Key: types.Str, Value: types.Int}, ReceiverDict},
		{types.NewObject(map[string]types.Type{"a": types.Int}), ReceiverDict},
		{ExceptionType("ValueError"), ReceiverUnknown},
		{&types.SetType{Elem: types.Int}, ReceiverSet},
		{types.Optional(types.Str), ReceiverStr},
		{types.NewUnion(types.Str, &types.ListType{Elem: types.Int}), ReceiverUnknown},
		{types.Int, ReceiverUnknown},
		{types.Any, ReceiverUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.expect, ReceiverOf(tt.typ))
		})
	}
}

func TestDuplicateRejected(t *testing.T) {
	_, err := NewRegistry([]BuiltinInitializer{&StringInitializer{}, &StringInitializer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestMissingHelperRejected(t *testing.T) {
	// list methods reuse __count from the str group
	_, err := NewRegistry([]BuiltinInitializer{&ListInitializer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "__count")
}

func TestElementType(t *testing.T) {
	assert.Equal(t, types.Int, ElementType(&types.ListType{Elem: types.Int}))
	assert.Equal(t, types.Str, ElementType(types.Str))
	assert.Equal(t, types.Float, ElementType(&types.TupleType{Elems: []types.Type{types.Int, types.Float}}))
	assert.Equal(t, types.Unknown, ElementType(types.Int))
}
