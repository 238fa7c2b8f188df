package types

import (
	"sort"
)

// --- Union Types ---

// UnionType represents a union of multiple types (e.g., int | str).
// Members are unique, never nested and kept sorted by their string form.
// Build unions with NewUnion rather than by hand.
type UnionType struct {
	Types []Type
}

func (ut *UnionType) String() string { return joinTypes(ut.Types, " | ") }
func (ut *UnionType) typeNode()      {}
func (ut *UnionType) Equals(other Type) bool {
	otherUt, ok := other.(*UnionType)
	if !ok {
		return false
	}
	if ut == nil || otherUt == nil {
		return ut == otherUt
	}
	return sameMembers(ut.Types, otherUt.Types)
}

// sameMembers compares two member lists as sets.
func sameMembers(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
	for _, t1 := range a {
		found := false
		for j, t2 := range b {
			if !matched[j] && t1.Equals(t2) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ContainsType checks if the union contains a type that equals the given type
func (ut *UnionType) ContainsType(target Type) bool {
	for _, t := range ut.Types {
		if t.Equals(target) {
			return true
		}
	}
	return false
}

// RemoveType returns the union without target, simplified.
func (ut *UnionType) RemoveType(target Type) Type {
	var remaining []Type
	for _, t := range ut.Types {
		if !t.Equals(target) {
			remaining = append(remaining, t)
		}
	}
	return NewUnion(remaining...)
}

// --- Union Type Constructor ---

// NewUnion builds the canonical union of ts:
//   - nested unions are flattened
//   - Never members are dropped
//   - duplicates (by Equals) are removed
//   - Any absorbs everything
//   - an empty union is Never, a single member is returned as is
//
// Members are sorted by String, so the result does not depend on the input
// order and NewUnion(NewUnion(ts...)) equals NewUnion(ts...).
func NewUnion(ts ...Type) Type {
	potentialMembers := make([]Type, 0, len(ts))

	var collect func(t Type)
	collect = func(t Type) {
		if t == nil {
			return
		}
		if union, ok := t.(*UnionType); ok {
			for _, member := range union.Types {
				collect(member)
			}
		} else if t != Never {
			potentialMembers = append(potentialMembers, t)
		}
	}
	for _, t := range ts {
		collect(t)
	}

	uniqueMembers := make([]Type, 0, len(potentialMembers))
	for _, pm := range potentialMembers {
		if pm == Any {
			return Any
		}
		isDuplicate := false
		for _, um := range uniqueMembers {
			if pm.Equals(um) {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			uniqueMembers = append(uniqueMembers, pm)
		}
	}

	switch len(uniqueMembers) {
	case 0:
		return Never
	case 1:
		return uniqueMembers[0]
	}

	sort.SliceStable(uniqueMembers, func(i, j int) bool {
		return uniqueMembers[i].String() < uniqueMembers[j].String()
	})
	return &UnionType{Types: uniqueMembers}
}

// SimplifyUnion re-canonicalizes t. Non-union types are returned unchanged.
func SimplifyUnion(t Type) Type {
	if u, ok := t.(*UnionType); ok {
		return NewUnion(u.Types...)
	}
	return t
}

// Optional returns t | None.
func Optional(t Type) Type {
	return NewUnion(t, None)
}

// RemoveNone strips None from t. None itself becomes Never.
func RemoveNone(t Type) Type {
	if t == nil {
		return t
	}
	if t == None {
		return Never
	}
	if union, ok := t.(*UnionType); ok {
		return union.RemoveType(None)
	}
	return t
}

// Members returns the members of a union, or t itself as a single member.
func Members(t Type) []Type {
	if u, ok := t.(*UnionType); ok {
		return u.Types
	}
	return []Type{t}
}
