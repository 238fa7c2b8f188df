package types

import (
	"fmt"
	"sort"
	"strings"
)

// UtilityType is an application of a built-in type operator, such as
// Partial[T], that could not be evaluated yet because its arguments mention
// type parameters. For assignability it behaves like its first argument.
type UtilityType struct {
	Name string
	Args []Type
}

func (ut *UtilityType) String() string {
	return ut.Name + "[" + joinTypes(ut.Args, ", ") + "]"
}
func (ut *UtilityType) typeNode() {}
func (ut *UtilityType) Equals(other Type) bool {
	o, ok := other.(*UtilityType)
	return ok && ut.Name == o.Name && equalLists(ut.Args, o.Args)
}

// Unwrap returns the evaluated utility when possible, else its first argument.
func (ut *UtilityType) Unwrap() Type {
	if t, err := ApplyUtility(ut.Name, ut.Args...); err == nil {
		if _, still := t.(*UtilityType); !still {
			return t
		}
	}
	if len(ut.Args) > 0 {
		return ut.Args[0]
	}
	return Unknown
}

type utility struct {
	arity int
	apply func(args []Type) (Type, error)
}

// utilities is filled in init: its entries reach IsAssignableTo, which
// refers back to the table.
var utilities map[string]utility

func init() {
	utilities = map[string]utility{
		"Partial":     {1, func(a []Type) (Type, error) { return mapObject(a[0], func(string) bool { return true }, false), nil }},
		"Required":    {1, func(a []Type) (Type, error) { return mapObject(a[0], func(string) bool { return false }, false), nil }},
		"Readonly":    {1, applyReadonly},
		"Record":      {2, applyRecord},
		"Pick":        {2, func(a []Type) (Type, error) { return selectKeys(a[0], a[1], true) }},
		"Omit":        {2, func(a []Type) (Type, error) { return selectKeys(a[0], a[1], false) }},
		"Exclude":     {2, func(a []Type) (Type, error) { return filterMembers(a[0], a[1], false), nil }},
		"Extract":     {2, func(a []Type) (Type, error) { return filterMembers(a[0], a[1], true), nil }},
		"NonNullable": {1, func(a []Type) (Type, error) { return RemoveNone(a[0]), nil }},
		"KeyOf":       {1, func(a []Type) (Type, error) { return KeyOf(a[0]), nil }},
		"ReturnType":  {1, applyReturnType},
		"Parameters":  {1, applyParameters},
		"Awaited":     {1, applyAwaited},
	}
}

// IsUtility reports whether name is a known utility operator.
func IsUtility(name string) bool {
	_, ok := utilities[name]
	return ok
}

// UtilityNames lists the known utility operators, sorted.
func UtilityNames() []string {
	names := make([]string, 0, len(utilities))
	for name := range utilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyUtility evaluates the utility operator name on args. When any argument
// still mentions a type parameter the application is deferred and returned as
// a *UtilityType.
func ApplyUtility(name string, args ...Type) (Type, error) {
	u, ok := utilities[name]
	if !ok {
		return nil, fmt.Errorf("unknown utility type %s (known: %s)", name, strings.Join(UtilityNames(), ", "))
	}
	if len(args) != u.arity {
		return nil, fmt.Errorf("%s expects %d type argument(s), got %d", name, u.arity, len(args))
	}
	for _, a := range args {
		if ContainsTypeParameters(a) {
			return &UtilityType{Name: name, Args: args}, nil
		}
	}
	return u.apply(args)
}

// mapObject rewrites the optional flags of an object, distributing over
// unions. Non-object types pass through.
func mapObject(t Type, optional func(string) bool, readonly bool) Type {
	switch tt := t.(type) {
	case *ObjectType:
		return tt.with(optional, readonly || tt.Readonly)
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = mapObject(m, optional, readonly)
		}
		return NewUnion(members...)
	}
	return t
}

func applyReadonly(a []Type) (Type, error) {
	if obj, ok := a[0].(*ObjectType); ok {
		return obj.with(obj.IsOptional, true), nil
	}
	return a[0], nil
}

func applyRecord(a []Type) (Type, error) {
	key, value := a[0], a[1]
	if key == Str || key == Int || key == Float {
		return &IndexSignatureType{Key: key, Value: value}, nil
	}
	keys, ok := literalKeys(key)
	if !ok {
		return nil, fmt.Errorf("Record keys must be str, int or string literals, got %s", key)
	}
	out := NewObject(map[string]Type{})
	for _, k := range keys {
		out.Fields[k] = value
	}
	return out, nil
}

func selectKeys(t, keys Type, keep bool) (Type, error) {
	obj, ok := t.(*ObjectType)
	if !ok {
		return nil, fmt.Errorf("expected an object type, got %s", t)
	}
	names, ok := literalKeys(keys)
	if !ok {
		return nil, fmt.Errorf("expected string literal keys, got %s", keys)
	}
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[n] = true
	}
	out := &ObjectType{Fields: map[string]Type{}, Optional: map[string]bool{}, Readonly: obj.Readonly}
	for k, ft := range obj.Fields {
		if selected[k] != keep {
			continue
		}
		out.Fields[k] = ft
		if obj.IsOptional(k) {
			out.Optional[k] = true
		}
	}
	return out, nil
}

// filterMembers keeps (or drops) the union members of t assignable to u.
func filterMembers(t, u Type, keep bool) Type {
	var out []Type
	for _, m := range Members(t) {
		if IsAssignableTo(m, u) == keep {
			out = append(out, m)
		}
	}
	return NewUnion(out...)
}

func applyReturnType(a []Type) (Type, error) {
	switch fn := a[0].(type) {
	case *FunctionType:
		if fn.Return == nil {
			return None, nil
		}
		return fn.Return, nil
	case *CallableType:
		if len(fn.Overloads) > 0 {
			return applyReturnType([]Type{fn.Overloads[len(fn.Overloads)-1]})
		}
	}
	return nil, fmt.Errorf("ReturnType expects a function type, got %s", a[0])
}

func applyParameters(a []Type) (Type, error) {
	fn, ok := a[0].(*FunctionType)
	if !ok {
		return nil, fmt.Errorf("Parameters expects a function type, got %s", a[0])
	}
	return &TupleType{Elems: append([]Type(nil), fn.Params...)}, nil
}

func applyAwaited(a []Type) (Type, error) {
	t := a[0]
	for {
		inst, ok := t.(*InstantiatedType)
		if !ok || inst.Generic.Name != "Promise" || len(inst.TypeArguments) != 1 {
			return t, nil
		}
		t = inst.TypeArguments[0]
	}
}
