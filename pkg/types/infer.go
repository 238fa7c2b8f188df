package types

import (
	"fmt"
)

// InferTypeArguments binds params by matching the formal parameter types of a
// generic signature against the types of the actual arguments. When a
// parameter is inferred from several arguments the candidates are merged with
// FindCommonType. Parameters that remain unbound take their default, or
// Unknown. The bindings are validated with CheckConstraints.
func InferTypeArguments(params []*TypeParameter, formals, actuals []Type) (map[string]Type, error) {
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true
	}
	bindings := map[string]Type{}
	for i, formal := range formals {
		if i >= len(actuals) || actuals[i] == nil {
			break
		}
		unify(formal, actuals[i], declared, bindings)
	}
	for _, p := range params {
		if _, ok := bindings[p.Name]; ok {
			continue
		}
		if p.Default != nil {
			bindings[p.Name] = ResolveGenerics(p.Default, bindings)
		} else {
			bindings[p.Name] = Unknown
		}
	}
	if err := CheckConstraints(params, bindings); err != nil {
		return bindings, err
	}
	return bindings, nil
}

// unify walks formal and actual in parallel, recording a binding for every
// declared type parameter it meets.
func unify(formal, actual Type, declared map[string]bool, bindings map[string]Type) {
	switch f := formal.(type) {
	case *TypeParameterType:
		name := f.Parameter.Name
		if !declared[name] {
			return
		}
		actual = Widen(actual)
		if prev, ok := bindings[name]; ok {
			bindings[name] = FindCommonType(prev, actual)
		} else {
			bindings[name] = actual
		}
	case *ListType:
		switch a := actual.(type) {
		case *ListType:
			unify(f.Elem, a.Elem, declared, bindings)
		case *ArrayType:
			unify(f.Elem, a.Elem, declared, bindings)
		case *TupleType:
			for _, e := range a.Elems {
				unify(f.Elem, e, declared, bindings)
			}
		}
	case *ArrayType:
		switch a := actual.(type) {
		case *ArrayType:
			unify(f.Elem, a.Elem, declared, bindings)
		case *ListType:
			unify(f.Elem, a.Elem, declared, bindings)
		}
	case *SetType:
		if a, ok := actual.(*SetType); ok {
			unify(f.Elem, a.Elem, declared, bindings)
		}
	case *DictType:
		if a, ok := actual.(*DictType); ok {
			unify(f.Key, a.Key, declared, bindings)
			unify(f.Value, a.Value, declared, bindings)
		}
	case *TupleType:
		if a, ok := actual.(*TupleType); ok && len(a.Elems) == len(f.Elems) {
			for i := range f.Elems {
				unify(f.Elems[i], a.Elems[i], declared, bindings)
			}
		}
	case *ObjectType:
		if a, ok := actual.(*ObjectType); ok {
			for k, ft := range f.Fields {
				if at, present := a.Fields[k]; present {
					unify(ft, at, declared, bindings)
				}
			}
		}
	case *FunctionType:
		if a, ok := actual.(*FunctionType); ok {
			for i := range f.Params {
				if i < len(a.Params) {
					unify(f.Params[i], a.Params[i], declared, bindings)
				}
			}
			if f.Return != nil && a.Return != nil {
				unify(f.Return, a.Return, declared, bindings)
			}
		}
	case *InstantiatedType:
		if a, ok := actual.(*InstantiatedType); ok && a.Generic.Equals(f.Generic) {
			for i := range f.TypeArguments {
				if i < len(a.TypeArguments) {
					unify(f.TypeArguments[i], a.TypeArguments[i], declared, bindings)
				}
			}
		}
	case *UnionType:
		// T | None against X binds T to X without None.
		var open []Type
		var rest []Type
		for _, m := range f.Types {
			if ContainsTypeParameters(m) {
				open = append(open, m)
			} else {
				rest = append(rest, m)
			}
		}
		if len(open) != 1 {
			return
		}
		var remaining []Type
		for _, m := range Members(actual) {
			if !IsAssignableTo(m, NewUnion(rest...)) {
				remaining = append(remaining, m)
			}
		}
		if len(remaining) > 0 {
			unify(open[0], NewUnion(remaining...), declared, bindings)
		}
	}
}

// CheckConstraints verifies each bound argument satisfies its parameter's
// constraint. Constraints may refer to other parameters.
func CheckConstraints(params []*TypeParameter, bindings map[string]Type) error {
	for _, p := range params {
		if p.Constraint == nil {
			continue
		}
		arg, ok := bindings[p.Name]
		if !ok || arg == Unknown {
			continue
		}
		constraint := ResolveGenerics(p.Constraint, bindings)
		if !IsAssignableTo(arg, constraint) {
			return fmt.Errorf("type argument %s does not satisfy the constraint %s of %s", arg, constraint, p.Name)
		}
	}
	return nil
}

// FindCommonType returns the narrowest type both a and b are assignable to:
// one of them when it already accepts the other, float for mixed numbers,
// otherwise their union.
func FindCommonType(a, b Type) Type {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Equals(b):
		return a
	case IsNumeric(Widen(a)) && IsNumeric(Widen(b)):
		if Widen(a) == Widen(b) {
			return Widen(a)
		}
		return Float
	}
	if _, isLit := a.(*LiteralType); !isLit && IsAssignableTo(b, a) {
		return a
	}
	if _, isLit := b.(*LiteralType); !isLit && IsAssignableTo(a, b) {
		return b
	}
	return NewUnion(a, b)
}

// CommonTypeOf folds FindCommonType over ts. An empty list yields Never.
func CommonTypeOf(ts []Type) Type {
	var out Type
	for _, t := range ts {
		out = FindCommonType(out, t)
	}
	if out == nil {
		return Never
	}
	return out
}
