package types

import (
	"fmt"
	"strings"
)

// TypeParameter declares a generic parameter (the T in def first[T](xs: list[T]) -> T).
type TypeParameter struct {
	Name       string
	Constraint Type // nil if unconstrained
	Default    Type // nil if the parameter has no default
	Index      int  // position in the parameter list
}

func (tp *TypeParameter) String() string {
	s := tp.Name
	if tp.Constraint != nil {
		s += ": " + tp.Constraint.String()
	}
	if tp.Default != nil {
		s += " = " + tp.Default.String()
	}
	return s
}

// Equals compares declarations by name, constraint and default.
func (tp *TypeParameter) Equals(other *TypeParameter) bool {
	if tp == other {
		return true
	}
	if tp == nil || other == nil {
		return false
	}
	return tp.Name == other.Name && equalTypes(tp.Constraint, other.Constraint) && equalTypes(tp.Default, other.Default)
}

// TypeParameterType is a reference to a type parameter inside a generic body
// or signature. Bindings are keyed by the parameter name.
type TypeParameterType struct {
	Parameter *TypeParameter
}

func (t *TypeParameterType) String() string { return t.Parameter.Name }
func (t *TypeParameterType) typeNode()      {}
func (t *TypeParameterType) Equals(other Type) bool {
	o, ok := other.(*TypeParameterType)
	return ok && t.Parameter.Name == o.Parameter.Name
}

// Ref returns a reference to tp.
func (tp *TypeParameter) Ref() *TypeParameterType {
	return &TypeParameterType{Parameter: tp}
}

// GenericType is a generic type definition. Body may be nil for opaque
// host types such as Promise or Map, which are compared by name only.
type GenericType struct {
	Name           string
	TypeParameters []*TypeParameter
	Body           Type
}

func (g *GenericType) String() string {
	names := make([]string, len(g.TypeParameters))
	for i, param := range g.TypeParameters {
		names[i] = param.Name
	}
	return fmt.Sprintf("%s[%s]", g.Name, strings.Join(names, ", "))
}
func (g *GenericType) typeNode() {}
func (g *GenericType) Equals(other Type) bool {
	o, ok := other.(*GenericType)
	return ok && g.Name == o.Name && len(g.TypeParameters) == len(o.TypeParameters)
}

// InstantiatedType is a generic applied to arguments, e.g. Promise[int].
type InstantiatedType struct {
	Generic       *GenericType
	TypeArguments []Type
}

func (i *InstantiatedType) String() string {
	return fmt.Sprintf("%s[%s]", i.Generic.Name, joinTypes(i.TypeArguments, ", "))
}
func (i *InstantiatedType) typeNode() {}
func (i *InstantiatedType) Equals(other Type) bool {
	o, ok := other.(*InstantiatedType)
	return ok && i.Generic.Equals(o.Generic) && equalLists(i.TypeArguments, o.TypeArguments)
}

// Substitute expands the instantiation through the generic body. Opaque
// generics expand to themselves.
func (i *InstantiatedType) Substitute() Type {
	if i.Generic.Body == nil {
		return i
	}
	return ResolveGenerics(i.Generic.Body, i.bindings())
}

func (i *InstantiatedType) bindings() map[string]Type {
	bindings := make(map[string]Type, len(i.Generic.TypeParameters))
	for idx, param := range i.Generic.TypeParameters {
		if idx < len(i.TypeArguments) {
			bindings[param.Name] = i.TypeArguments[idx]
		}
	}
	return bindings
}

// NewTypeParameter creates a new type parameter
func NewTypeParameter(name string, index int, constraint Type) *TypeParameter {
	return &TypeParameter{Name: name, Constraint: constraint, Index: index}
}

// NewGenericType creates a new generic type definition
func NewGenericType(name string, typeParams []*TypeParameter, body Type) *GenericType {
	return &GenericType{Name: name, TypeParameters: typeParams, Body: body}
}

// Instantiate applies args to g. Missing trailing arguments fall back to the
// parameter defaults; every argument must satisfy its constraint.
func (g *GenericType) Instantiate(args ...Type) (*InstantiatedType, error) {
	if len(args) > len(g.TypeParameters) {
		return nil, fmt.Errorf("%s expects at most %d type arguments, got %d", g.Name, len(g.TypeParameters), len(args))
	}
	full := make([]Type, len(g.TypeParameters))
	copy(full, args)
	bindings := map[string]Type{}
	for i, param := range g.TypeParameters {
		if full[i] == nil {
			if param.Default == nil {
				return nil, fmt.Errorf("%s expects %d type arguments, got %d", g.Name, len(g.TypeParameters), len(args))
			}
			full[i] = ResolveGenerics(param.Default, bindings)
		}
		bindings[param.Name] = full[i]
	}
	if err := CheckConstraints(g.TypeParameters, bindings); err != nil {
		return nil, err
	}
	return &InstantiatedType{Generic: g, TypeArguments: full}, nil
}

// Opaque host generics.
var (
	PromiseGeneric  = NewGenericType("Promise", []*TypeParameter{NewTypeParameter("T", 0, nil)}, nil)
	MapGeneric      = NewGenericType("Map", []*TypeParameter{NewTypeParameter("K", 0, nil), NewTypeParameter("V", 1, nil)}, nil)
	IterableGeneric = NewGenericType("Iterable", []*TypeParameter{NewTypeParameter("T", 0, nil)}, nil)
)

// Promise returns Promise[t].
func Promise(t Type) *InstantiatedType {
	return &InstantiatedType{Generic: PromiseGeneric, TypeArguments: []Type{t}}
}

// ResolveGenerics substitutes bound type parameters throughout t. Unbound
// parameters are left in place. Conditional, mapped and utility types whose
// inputs become concrete are evaluated.
func ResolveGenerics(t Type, bindings map[string]Type) Type {
	if t == nil || len(bindings) == 0 || !ContainsTypeParameters(t) {
		return t
	}
	sub := func(x Type) Type { return ResolveGenerics(x, bindings) }
	subList := func(xs []Type) []Type {
		out := make([]Type, len(xs))
		for i, x := range xs {
			out[i] = sub(x)
		}
		return out
	}

	switch t := t.(type) {
	case *TypeParameterType:
		if replacement, ok := bindings[t.Parameter.Name]; ok {
			return replacement
		}
		return t
	case *ListType:
		return &ListType{Elem: sub(t.Elem)}
	case *ArrayType:
		return &ArrayType{Elem: sub(t.Elem)}
	case *SetType:
		return &SetType{Elem: sub(t.Elem)}
	case *DictType:
		return &DictType{Key: sub(t.Key), Value: sub(t.Value)}
	case *TupleType:
		return &TupleType{Elems: subList(t.Elems)}
	case *ObjectType:
		out := &ObjectType{Name: t.Name, Fields: make(map[string]Type, len(t.Fields)), Optional: map[string]bool{}, Readonly: t.Readonly}
		for k, ft := range t.Fields {
			out.Fields[k] = sub(ft)
			if t.IsOptional(k) {
				out.Optional[k] = true
			}
		}
		return out
	case *IndexSignatureType:
		return &IndexSignatureType{Key: sub(t.Key), Value: sub(t.Value)}
	case *FunctionType:
		return substituteFunction(t, bindings)
	case *CallableType:
		out := &CallableType{Overloads: make([]*FunctionType, len(t.Overloads))}
		for i, o := range t.Overloads {
			out.Overloads[i] = substituteFunction(o, bindings)
		}
		return out
	case *UnionType:
		return NewUnion(subList(t.Types)...)
	case *IntersectionType:
		return NewIntersection(subList(t.Types)...)
	case *InstantiatedType:
		return &InstantiatedType{Generic: t.Generic, TypeArguments: subList(t.TypeArguments)}
	case *ConditionalType:
		return NewConditional(sub(t.Check), sub(t.Extends), sub(t.True), sub(t.False))
	case *MappedType:
		return (&MappedType{Param: t.Param, Keys: sub(t.Keys), Value: sub(t.Value), Optional: t.Optional, Readonly: t.Readonly}).Expand()
	case *TemplateLiteralType:
		return &TemplateLiteralType{Parts: t.Parts, Types: subList(t.Types)}
	case *UtilityType:
		args := subList(t.Args)
		if resolved, err := ApplyUtility(t.Name, args...); err == nil {
			return resolved
		}
		return &UtilityType{Name: t.Name, Args: args}
	}
	return t
}

// substituteFunction leaves a signature's own type parameters untouched so
// inner generics are not captured by outer bindings.
func substituteFunction(ft *FunctionType, bindings map[string]Type) *FunctionType {
	if len(ft.TypeParams) > 0 {
		shadowed := make(map[string]Type, len(bindings))
		for k, v := range bindings {
			shadowed[k] = v
		}
		for _, tp := range ft.TypeParams {
			delete(shadowed, tp.Name)
		}
		bindings = shadowed
	}
	out := &FunctionType{
		Params:     make([]Type, len(ft.Params)),
		ParamNames: ft.ParamNames,
		Optional:   ft.Optional,
		Rest:       ResolveGenerics(ft.Rest, bindings),
		Return:     ResolveGenerics(ft.Return, bindings),
		TypeParams: ft.TypeParams,
		IsAsync:    ft.IsAsync,
	}
	for i, p := range ft.Params {
		out.Params[i] = ResolveGenerics(p, bindings)
	}
	return out
}

// ContainsTypeParameters reports whether any type parameter reference
// occurs in t.
func ContainsTypeParameters(t Type) bool {
	found := false
	Walk(t, func(x Type) bool {
		if _, ok := x.(*TypeParameterType); ok {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits t and its component types depth-first until fn returns false.
// Each object type is visited once, so recursive class types terminate.
func Walk(t Type, fn func(Type) bool) bool {
	return walk(t, fn, map[*ObjectType]bool{})
}

func walk(t Type, fn func(Type) bool, seen map[*ObjectType]bool) bool {
	if t == nil {
		return true
	}
	if obj, ok := t.(*ObjectType); ok {
		if seen[obj] {
			return true
		}
		seen[obj] = true
	}
	if !fn(t) {
		return false
	}
	walkAll := func(xs ...Type) bool {
		for _, x := range xs {
			if !walk(x, fn, seen) {
				return false
			}
		}
		return true
	}
	switch t := t.(type) {
	case *ListType:
		return walkAll(t.Elem)
	case *ArrayType:
		return walkAll(t.Elem)
	case *SetType:
		return walkAll(t.Elem)
	case *DictType:
		return walkAll(t.Key, t.Value)
	case *TupleType:
		return walkAll(t.Elems...)
	case *ObjectType:
		for _, k := range t.Keys() {
			if !walk(t.Fields[k], fn, seen) {
				return false
			}
		}
	case *IndexSignatureType:
		return walkAll(t.Key, t.Value)
	case *FunctionType:
		return walkAll(t.Params...) && walkAll(t.Rest, t.Return)
	case *CallableType:
		for _, o := range t.Overloads {
			if !walk(o, fn, seen) {
				return false
			}
		}
	case *UnionType:
		return walkAll(t.Types...)
	case *IntersectionType:
		return walkAll(t.Types...)
	case *InstantiatedType:
		return walkAll(t.TypeArguments...)
	case *ConditionalType:
		return walkAll(t.Check, t.Extends, t.True, t.False)
	case *MappedType:
		return walkAll(t.Keys, t.Value)
	case *TemplateLiteralType:
		return walkAll(t.Types...)
	case *UtilityType:
		return walkAll(t.Args...)
	}
	return true
}
