package types

import (
	"sort"
	"strings"
)

// ListType is a Python list, emitted as a JavaScript array.
type ListType struct {
	Elem Type
}

func (lt *ListType) String() string { return "list[" + typeString(lt.Elem) + "]" }
func (lt *ListType) typeNode()      {}
func (lt *ListType) Equals(other Type) bool {
	o, ok := other.(*ListType)
	return ok && equalTypes(lt.Elem, o.Elem)
}

// ArrayType is the JavaScript-facing Array[T]. It is interchangeable with
// list[T] for assignability.
type ArrayType struct {
	Elem Type
}

func (at *ArrayType) String() string { return "Array[" + typeString(at.Elem) + "]" }
func (at *ArrayType) typeNode()      {}
func (at *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && equalTypes(at.Elem, o.Elem)
}

// SetType is a Python set, emitted as a JavaScript Set.
type SetType struct {
	Elem Type
}

func (st *SetType) String() string { return "set[" + typeString(st.Elem) + "]" }
func (st *SetType) typeNode()      {}
func (st *SetType) Equals(other Type) bool {
	o, ok := other.(*SetType)
	return ok && equalTypes(st.Elem, o.Elem)
}

// DictType is a Python dict with homogeneous keys and values.
type DictType struct {
	Key   Type
	Value Type
}

func (dt *DictType) String() string {
	return "dict[" + typeString(dt.Key) + ", " + typeString(dt.Value) + "]"
}
func (dt *DictType) typeNode() {}
func (dt *DictType) Equals(other Type) bool {
	o, ok := other.(*DictType)
	return ok && equalTypes(dt.Key, o.Key) && equalTypes(dt.Value, o.Value)
}

// TupleType is a fixed-length heterogeneous sequence.
type TupleType struct {
	Elems []Type
}

func (tt *TupleType) String() string {
	if len(tt.Elems) == 0 {
		return "tuple[()]"
	}
	return "tuple[" + joinTypes(tt.Elems, ", ") + "]"
}
func (tt *TupleType) typeNode() {}
func (tt *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	return ok && equalLists(tt.Elems, o.Elems)
}

// ObjectType is a structural record. Class instances carry their class name;
// two named records are equal only when they are the same value, which keeps
// self-referential classes finite.
type ObjectType struct {
	Name     string
	Fields   map[string]Type
	Optional map[string]bool
	Readonly bool
}

// NewObject builds an object type with all fields required.
func NewObject(fields map[string]Type) *ObjectType {
	return &ObjectType{Fields: fields, Optional: map[string]bool{}}
}

// NewObjectType creates an empty object type for use with WithProperty.
func NewObjectType() *ObjectType {
	return NewObject(map[string]Type{})
}

// WithProperty adds a required field and returns the object for chaining.
// Only use it while building a fresh object.
func (ot *ObjectType) WithProperty(name string, t Type) *ObjectType {
	ot.Fields[name] = t
	return ot
}

// WithOptionalProperty adds an optional field.
func (ot *ObjectType) WithOptionalProperty(name string, t Type) *ObjectType {
	ot.Fields[name] = t
	ot.Optional[name] = true
	return ot
}

// Named sets the display name, for class instance types.
func (ot *ObjectType) Named(name string) *ObjectType {
	ot.Name = name
	return ot
}

// Keys returns the field names in sorted order.
func (ot *ObjectType) Keys() []string {
	keys := make([]string, 0, len(ot.Fields))
	for k := range ot.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsOptional reports whether a field may be absent.
func (ot *ObjectType) IsOptional(key string) bool {
	return ot.Optional != nil && ot.Optional[key]
}

func (ot *ObjectType) String() string {
	if ot.Name != "" {
		return ot.Name
	}
	var b strings.Builder
	if ot.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString("{")
	for i, k := range ot.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		if ot.IsOptional(k) {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(typeString(ot.Fields[k]))
	}
	b.WriteString("}")
	return b.String()
}
func (ot *ObjectType) typeNode() {}
func (ot *ObjectType) Equals(other Type) bool {
	o, ok := other.(*ObjectType)
	if ok && (ot == o || (ot.Name != "" && o.Name != "")) {
		return ot == o
	}
	if !ok || len(ot.Fields) != len(o.Fields) || ot.Readonly != o.Readonly {
		return false
	}
	for k, t := range ot.Fields {
		ot2, found := o.Fields[k]
		if !found || !equalTypes(t, ot2) || ot.IsOptional(k) != o.IsOptional(k) {
			return false
		}
	}
	return true
}

// with returns a copy with every field's optional flag set by fn.
func (ot *ObjectType) with(optional func(string) bool, readonly bool) *ObjectType {
	out := &ObjectType{
		Fields:   make(map[string]Type, len(ot.Fields)),
		Optional: map[string]bool{},
		Readonly: readonly,
	}
	for k, t := range ot.Fields {
		out.Fields[k] = t
		if optional(k) {
			out.Optional[k] = true
		}
	}
	return out
}

// IndexSignatureType is an object keyed by arbitrary strings or ints,
// e.g. {[key: str]: int}.
type IndexSignatureType struct {
	Key   Type
	Value Type
}

func (it *IndexSignatureType) String() string {
	return "{[key: " + typeString(it.Key) + "]: " + typeString(it.Value) + "}"
}
func (it *IndexSignatureType) typeNode() {}
func (it *IndexSignatureType) Equals(other Type) bool {
	o, ok := other.(*IndexSignatureType)
	return ok && equalTypes(it.Key, o.Key) && equalTypes(it.Value, o.Value)
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, sep)
}
