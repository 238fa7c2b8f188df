package types

import (
	"strconv"
)

// Type is the interface implemented by all type representations. Type values
// are immutable once constructed; operations build new values.
type Type interface {
	// String renders the type in annotation syntax, e.g. "list[int] | None".
	String() string
	// Equals reports structural equality.
	Equals(other Type) bool

	// typeNode keeps the set of types closed to this package.
	typeNode()
}

// --- Primitive Types ---

// Primitive represents a fundamental, non-composite type.
type Primitive struct {
	Name string
}

func (p *Primitive) String() string { return p.Name }
func (p *Primitive) typeNode()      {}
func (p *Primitive) Equals(other Type) bool {
	// Primitives are singletons, so pointer equality is sufficient.
	return p == other
}

// Pre-defined instances for the primitive types
var (
	Int     = &Primitive{Name: "int"}
	Float   = &Primitive{Name: "float"}
	Str     = &Primitive{Name: "str"}
	Bool    = &Primitive{Name: "bool"}
	None    = &Primitive{Name: "None"}
	Any     = &Primitive{Name: "Any"}
	Unknown = &Primitive{Name: "Unknown"}
	Never   = &Primitive{Name: "Never"}
)

var primitivesByName = map[string]*Primitive{
	"int":      Int,
	"float":    Float,
	"str":      Str,
	"bool":     Bool,
	"None":     None,
	"Any":      Any,
	"any":      Any,
	"object":   Any,
	"Unknown":  Unknown,
	"unknown":  Unknown,
	"Never":    Never,
	"never":    Never,
	"NoReturn": Never,
	// JavaScript spellings
	"number":  Float,
	"string":  Str,
	"boolean": Bool,
	"null":    None,
	"void":    None,
}

// LookupPrimitive resolves a primitive by its annotation name.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := primitivesByName[name]
	return p, ok
}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	return t == Int || t == Float
}

// --- Literal Types ---

// LiteralType is a singleton type holding one value: int64, float64, string
// or bool.
type LiteralType struct {
	Value any
}

func (lt *LiteralType) String() string {
	switch v := lt.Value.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "?"
}
func (lt *LiteralType) typeNode() {}
func (lt *LiteralType) Equals(other Type) bool {
	o, ok := other.(*LiteralType)
	return ok && lt.Value == o.Value
}

// Base returns the primitive a literal widens to.
func (lt *LiteralType) Base() Type {
	switch lt.Value.(type) {
	case string:
		return Str
	case bool:
		return Bool
	case int64:
		return Int
	case float64:
		return Float
	}
	return Unknown
}

// Widen replaces literal types by their base primitives, element-wise for
// unions.
func Widen(t Type) Type {
	switch tt := t.(type) {
	case *LiteralType:
		return tt.Base()
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = Widen(m)
		}
		return NewUnion(members...)
	}
	return t
}

// equalLists compares two type slices element-wise.
func equalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalTypes(a[i], b[i]) {
			return false
		}
	}
	return true
}

// equalTypes is Equals tolerant of nil on either side.
func equalTypes(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

func typeString(t Type) string {
	if t == nil {
		return "None"
	}
	return t.String()
}
