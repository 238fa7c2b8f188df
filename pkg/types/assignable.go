package types

import (
	"fmt"
)

// --- Type Assignability ---

// IsAssignableTo checks if a value of type source can be used where target is
// expected. Any is compatible in both directions, Never is the bottom type
// and Unknown only accepts.
func IsAssignableTo(source, target Type) bool {
	return assignableAt(0, source, target)
}

// maxAssignDepth bounds the comparison of recursive class types; pairs still
// undecided at that depth are assumed compatible.
const maxAssignDepth = 24

func assignableAt(depth int, source, target Type) bool {
	if source == nil || target == nil {
		return false
	}
	if depth > maxAssignDepth {
		return true
	}

	if target == Any || source == Any {
		return true
	}
	if target == Unknown {
		return true
	}
	if source == Unknown {
		return false
	}
	if source == Never {
		return true
	}
	if target == Never {
		return false
	}

	if source == target || source.Equals(target) {
		return true
	}

	// Deferred utilities, mapped and instantiated types compare by what they
	// stand for.
	if s, ok := source.(*UtilityType); ok {
		return assignableAt(depth+1, s.Unwrap(), target)
	}
	if t, ok := target.(*UtilityType); ok {
		return assignableAt(depth+1, source, t.Unwrap())
	}
	if s, ok := source.(*MappedType); ok {
		if expanded := s.Expand(); expanded != Type(s) {
			return assignableAt(depth+1, expanded, target)
		}
	}
	if t, ok := target.(*MappedType); ok {
		if expanded := t.Expand(); expanded != Type(t) {
			return assignableAt(depth+1, source, expanded)
		}
	}
	if s, ok := source.(*ConditionalType); ok && !ContainsTypeParameters(s.Check) && !ContainsTypeParameters(s.Extends) {
		return assignableAt(depth+1, s.Evaluate(), target)
	}
	if t, ok := target.(*ConditionalType); ok && !ContainsTypeParameters(t.Check) && !ContainsTypeParameters(t.Extends) {
		return assignableAt(depth+1, source, t.Evaluate())
	}

	// Union type handling
	sourceUnion, sourceIsUnion := source.(*UnionType)
	targetUnion, targetIsUnion := target.(*UnionType)

	if sourceIsUnion {
		// Every member must fit the target, whatever shape the target has.
		for _, sType := range sourceUnion.Types {
			if !assignableAt(depth+1, sType, target) {
				return false
			}
		}
		return true
	}
	if targetIsUnion {
		for _, tType := range targetUnion.Types {
			if assignableAt(depth+1, source, tType) {
				return true
			}
		}
		// bool fits True | False and similar exhaustive literal unions.
		if source == Bool {
			return assignableAt(depth+1, &LiteralType{Value: true}, target) && assignableAt(depth+1, &LiteralType{Value: false}, target)
		}
		return false
	}

	// Intersection type handling
	if targetIntersection, ok := target.(*IntersectionType); ok {
		for _, tType := range targetIntersection.Types {
			if !assignableAt(depth+1, source, tType) {
				return false
			}
		}
		return true
	}
	if sourceIntersection, ok := source.(*IntersectionType); ok {
		for _, sType := range sourceIntersection.Types {
			if assignableAt(depth+1, sType, target) {
				return true
			}
		}
		return false
	}

	// Literal type handling
	if sourceLiteral, ok := source.(*LiteralType); ok {
		if targetLiteral, ok := target.(*LiteralType); ok {
			return sourceLiteral.Value == targetLiteral.Value
		}
		if tmpl, ok := target.(*TemplateLiteralType); ok {
			s, isStr := sourceLiteral.Value.(string)
			return isStr && tmpl.Matches(s)
		}
		return assignableAt(depth+1, sourceLiteral.Base(), target)
	}
	if _, ok := target.(*LiteralType); ok {
		return false
	}
	if _, ok := source.(*TemplateLiteralType); ok {
		return target == Str
	}

	// Type parameters only match themselves unless their constraint fits.
	if sp, ok := source.(*TypeParameterType); ok {
		if sp.Parameter.Constraint != nil {
			return assignableAt(depth+1, sp.Parameter.Constraint, target)
		}
		return false
	}
	if _, ok := target.(*TypeParameterType); ok {
		return false
	}

	switch t := target.(type) {
	case *Primitive:
		// int widens to float.
		return source == Int && t == Float

	case *ListType:
		switch s := source.(type) {
		case *ListType:
			return assignableAt(depth+1, s.Elem, t.Elem)
		case *ArrayType:
			return assignableAt(depth+1, s.Elem, t.Elem)
		case *TupleType:
			return allAssignable(depth, s.Elems, t.Elem)
		}

	case *ArrayType:
		switch s := source.(type) {
		case *ArrayType:
			return assignableAt(depth+1, s.Elem, t.Elem)
		case *ListType:
			return assignableAt(depth+1, s.Elem, t.Elem)
		case *TupleType:
			return allAssignable(depth, s.Elems, t.Elem)
		}

	case *SetType:
		if s, ok := source.(*SetType); ok {
			return assignableAt(depth+1, s.Elem, t.Elem)
		}

	case *TupleType:
		s, ok := source.(*TupleType)
		if !ok || len(s.Elems) != len(t.Elems) {
			return false
		}
		for i := range s.Elems {
			if !assignableAt(depth+1, s.Elems[i], t.Elems[i]) {
				return false
			}
		}
		return true

	case *DictType:
		switch s := source.(type) {
		case *DictType:
			return assignableAt(depth+1, s.Key, t.Key) && assignableAt(depth+1, s.Value, t.Value)
		case *ObjectType:
			if !assignableAt(depth+1, Str, t.Key) {
				return false
			}
			for _, ft := range s.Fields {
				if !assignableAt(depth+1, ft, t.Value) {
					return false
				}
			}
			return true
		case *IndexSignatureType:
			return assignableAt(depth+1, s.Key, t.Key) && assignableAt(depth+1, s.Value, t.Value)
		}

	case *IndexSignatureType:
		switch s := source.(type) {
		case *IndexSignatureType:
			return assignableAt(depth+1, s.Key, t.Key) && assignableAt(depth+1, s.Value, t.Value)
		case *DictType:
			return assignableAt(depth+1, s.Key, t.Key) && assignableAt(depth+1, s.Value, t.Value)
		case *ObjectType:
			for _, ft := range s.Fields {
				if !assignableAt(depth+1, ft, t.Value) {
					return false
				}
			}
			return true
		}

	case *ObjectType:
		s, ok := source.(*ObjectType)
		if !ok {
			return false
		}
		return missingField(depth, s, t) == ""

	case *FunctionType:
		switch s := source.(type) {
		case *FunctionType:
			return functionMismatch(depth, s, t) == ""
		case *CallableType:
			for _, o := range s.Overloads {
				if functionMismatch(depth, o, t) == "" {
					return true
				}
			}
		}

	case *CallableType:
		for _, o := range t.Overloads {
			if !assignableAt(depth+1, source, o) {
				return false
			}
		}
		return true

	case *InstantiatedType:
		s, ok := source.(*InstantiatedType)
		if !ok {
			if t.Generic.Body != nil {
				return assignableAt(depth+1, source, t.Substitute())
			}
			return false
		}
		if !s.Generic.Equals(t.Generic) || len(s.TypeArguments) != len(t.TypeArguments) {
			if s.Generic.Body != nil {
				return assignableAt(depth+1, s.Substitute(), target)
			}
			return false
		}
		for i := range s.TypeArguments {
			if !assignableAt(depth+1, s.TypeArguments[i], t.TypeArguments[i]) {
				return false
			}
		}
		return true

	case *GenericType:
		s, ok := source.(*GenericType)
		return ok && s.Equals(t)
	}

	if s, ok := source.(*InstantiatedType); ok && s.Generic.Body != nil {
		return assignableAt(depth+1, s.Substitute(), target)
	}
	return false
}

func allAssignable(depth int, elems []Type, target Type) bool {
	for _, e := range elems {
		if !assignableAt(depth+1, e, target) {
			return false
		}
	}
	return true
}

// missingField returns a description of the first target field the source
// object fails to provide, or "" when source is a structural subtype.
func missingField(depth int, source, target *ObjectType) string {
	for _, k := range target.Keys() {
		ft := target.Fields[k]
		st, present := source.Fields[k]
		if !present {
			if target.IsOptional(k) {
				continue
			}
			return fmt.Sprintf("missing field %q", k)
		}
		if source.IsOptional(k) && !target.IsOptional(k) {
			return fmt.Sprintf("field %q is optional in %s", k, source)
		}
		if !assignableAt(depth+1, st, ft) {
			return fmt.Sprintf("field %q: %s is not assignable to %s", k, st, ft)
		}
	}
	return ""
}

// functionMismatch explains why source cannot stand in for target, or returns
// "". Parameters are checked contravariantly and the return covariantly.
func functionMismatch(depth int, source, target *FunctionType) string {
	if source.RequiredParams() > len(target.Params) && target.Rest == nil {
		return fmt.Sprintf("requires %d arguments but only %d are passed", source.RequiredParams(), len(target.Params))
	}
	for i, tp := range target.Params {
		var sp Type
		switch {
		case i < len(source.Params):
			sp = source.Params[i]
		case source.Rest != nil:
			sp = source.Rest
		default:
			// Extra arguments are ignored by the callee.
			continue
		}
		if !assignableAt(depth+1, tp, sp) {
			return fmt.Sprintf("parameter %d: %s is not assignable to %s", i+1, tp, sp)
		}
	}
	if target.Rest != nil {
		if source.Rest == nil {
			return "does not accept variadic arguments"
		}
		if !assignableAt(depth+1, target.Rest, source.Rest) {
			return fmt.Sprintf("*args: %s is not assignable to %s", target.Rest, source.Rest)
		}
	}
	if target.Return == nil || target.Return == None {
		return ""
	}
	ret := source.Return
	if ret == nil {
		ret = None
	}
	if !assignableAt(depth+1, ret, target.Return) {
		return fmt.Sprintf("return type %s is not assignable to %s", ret, target.Return)
	}
	return ""
}

// AssignabilityError reports an incompatible assignment.
type AssignabilityError struct {
	Source Type
	Target Type
	Reason string
}

func (e *AssignabilityError) Error() string {
	msg := fmt.Sprintf("type %s is not assignable to %s", e.Source, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// CheckAssignable is IsAssignableTo with an explanation. It returns nil or an
// *AssignabilityError.
func CheckAssignable(source, target Type) error {
	if IsAssignableTo(source, target) {
		return nil
	}
	err := &AssignabilityError{Source: source, Target: target}
	switch t := target.(type) {
	case *ObjectType:
		if s, ok := source.(*ObjectType); ok {
			err.Reason = missingField(0, s, t)
		}
	case *FunctionType:
		if s, ok := source.(*FunctionType); ok {
			err.Reason = functionMismatch(0, s, t)
		}
	case *TupleType:
		if s, ok := source.(*TupleType); ok && len(s.Elems) != len(t.Elems) {
			err.Reason = fmt.Sprintf("expected %d elements, got %d", len(t.Elems), len(s.Elems))
		}
	}
	return err
}
