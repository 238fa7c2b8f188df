package types

import (
	"strings"
)

// ConditionalType is Check extends Extends ? True : False. It stays
// unevaluated while Check or Extends mentions a type parameter.
type ConditionalType struct {
	Check   Type
	Extends Type
	True    Type
	False   Type
}

func (ct *ConditionalType) String() string {
	return typeString(ct.Check) + " extends " + typeString(ct.Extends) + " ? " + typeString(ct.True) + " : " + typeString(ct.False)
}
func (ct *ConditionalType) typeNode() {}
func (ct *ConditionalType) Equals(other Type) bool {
	o, ok := other.(*ConditionalType)
	return ok && equalTypes(ct.Check, o.Check) && equalTypes(ct.Extends, o.Extends) &&
		equalTypes(ct.True, o.True) && equalTypes(ct.False, o.False)
}

// NewConditional evaluates the conditional when its inputs are concrete.
// A union in check position distributes over its members.
func NewConditional(check, extends, whenTrue, whenFalse Type) Type {
	ct := &ConditionalType{Check: check, Extends: extends, True: whenTrue, False: whenFalse}
	if ContainsTypeParameters(check) || ContainsTypeParameters(extends) {
		return ct
	}
	return ct.Evaluate()
}

// Evaluate picks a branch using assignability.
func (ct *ConditionalType) Evaluate() Type {
	if u, ok := ct.Check.(*UnionType); ok {
		results := make([]Type, len(u.Types))
		for i, m := range u.Types {
			results[i] = (&ConditionalType{Check: m, Extends: ct.Extends, True: ct.True, False: ct.False}).Evaluate()
		}
		return NewUnion(results...)
	}
	if IsAssignableTo(ct.Check, ct.Extends) {
		return ct.True
	}
	return ct.False
}

// MappedType is {[Param in Keys]: Value}. Value may refer to the key through
// a TypeParameterType named Param.
type MappedType struct {
	Param    string
	Keys     Type
	Value    Type
	Optional bool
	Readonly bool
}

func (mt *MappedType) String() string {
	var b strings.Builder
	if mt.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString("{[")
	b.WriteString(mt.Param)
	b.WriteString(" in ")
	b.WriteString(typeString(mt.Keys))
	b.WriteString("]")
	if mt.Optional {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(typeString(mt.Value))
	b.WriteString("}")
	return b.String()
}
func (mt *MappedType) typeNode() {}
func (mt *MappedType) Equals(other Type) bool {
	o, ok := other.(*MappedType)
	return ok && mt.Param == o.Param && mt.Optional == o.Optional && mt.Readonly == o.Readonly &&
		equalTypes(mt.Keys, o.Keys) && equalTypes(mt.Value, o.Value)
}

// Expand turns the mapped type into an object when Keys is a union of string
// literals, or an index signature when Keys is str. Otherwise mt is returned.
func (mt *MappedType) Expand() Type {
	if mt.Keys == Str {
		return &IndexSignatureType{Key: Str, Value: ResolveGenerics(mt.Value, map[string]Type{mt.Param: Str})}
	}
	keys, ok := literalKeys(mt.Keys)
	if !ok {
		return mt
	}
	out := &ObjectType{Fields: map[string]Type{}, Optional: map[string]bool{}, Readonly: mt.Readonly}
	for _, k := range keys {
		out.Fields[k] = ResolveGenerics(mt.Value, map[string]Type{mt.Param: &LiteralType{Value: k}})
		if mt.Optional {
			out.Optional[k] = true
		}
	}
	return out
}

// literalKeys extracts the strings of a union of string literal types.
func literalKeys(t Type) ([]string, bool) {
	if t == Never {
		return nil, true
	}
	var keys []string
	for _, m := range Members(t) {
		lit, ok := m.(*LiteralType)
		if !ok {
			return nil, false
		}
		s, ok := lit.Value.(string)
		if !ok {
			return nil, false
		}
		keys = append(keys, s)
	}
	return keys, true
}

// KeyOf returns the union of an object's field names as string literals.
func KeyOf(t Type) Type {
	switch tt := t.(type) {
	case *ObjectType:
		keys := make([]Type, 0, len(tt.Fields))
		for _, k := range tt.Keys() {
			keys = append(keys, &LiteralType{Value: k})
		}
		return NewUnion(keys...)
	case *IndexSignatureType:
		return tt.Key
	case *DictType:
		return tt.Key
	}
	return Never
}

// TemplateLiteralType is a string pattern such as `user_${int}`. Parts holds
// the literal text around the holes, so len(Parts) == len(Types)+1.
type TemplateLiteralType struct {
	Parts []string
	Types []Type
}

func (tt *TemplateLiteralType) String() string {
	var b strings.Builder
	b.WriteString("`")
	for i, part := range tt.Parts {
		b.WriteString(part)
		if i < len(tt.Types) {
			b.WriteString("${")
			b.WriteString(typeString(tt.Types[i]))
			b.WriteString("}")
		}
	}
	b.WriteString("`")
	return b.String()
}
func (tt *TemplateLiteralType) typeNode() {}
func (tt *TemplateLiteralType) Equals(other Type) bool {
	o, ok := other.(*TemplateLiteralType)
	if !ok || len(tt.Parts) != len(o.Parts) {
		return false
	}
	for i := range tt.Parts {
		if tt.Parts[i] != o.Parts[i] {
			return false
		}
	}
	return equalLists(tt.Types, o.Types)
}

// Matches reports whether s is an inhabitant of the template.
func (tt *TemplateLiteralType) Matches(s string) bool {
	if len(tt.Parts) == 0 {
		return s == ""
	}
	if !strings.HasPrefix(s, tt.Parts[0]) {
		return false
	}
	return matchHoles(s[len(tt.Parts[0]):], tt.Types, tt.Parts[1:])
}

// matchHoles matches rest against hole types[0] followed by parts[0], and so
// on, backtracking over every split point.
func matchHoles(rest string, holes []Type, parts []string) bool {
	if len(holes) == 0 {
		return rest == ""
	}
	for cut := 0; cut <= len(rest); cut++ {
		if !strings.HasPrefix(rest[cut:], parts[0]) {
			continue
		}
		if holeAccepts(holes[0], rest[:cut]) && matchHoles(rest[cut+len(parts[0]):], holes[1:], parts[1:]) {
			return true
		}
	}
	return false
}

func holeAccepts(hole Type, s string) bool {
	switch h := hole.(type) {
	case *LiteralType:
		return h.String() == s || h.Value == s
	case *UnionType:
		for _, m := range h.Types {
			if holeAccepts(m, s) {
				return true
			}
		}
		return false
	}
	switch hole {
	case Str, Any:
		return true
	case Int:
		return isIntText(s)
	case Float:
		return isIntText(s) || isFloatText(s)
	case Bool:
		return s == "true" || s == "false"
	}
	return false
}

func isIntText(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isFloatText(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	return ok && (whole == "" || whole == "-" || isIntText(whole)) && isIntText(frac) && !strings.HasPrefix(frac, "-")
}
