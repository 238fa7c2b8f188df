package types

import (
	"sort"
)

// --- Intersection Types ---

// IntersectionType represents an intersection of multiple types (e.g., A & B).
// A value of intersection type must satisfy all constituent types.
type IntersectionType struct {
	Types []Type
}

func (it *IntersectionType) String() string { return joinTypes(it.Types, " & ") }
func (it *IntersectionType) typeNode()      {}
func (it *IntersectionType) Equals(other Type) bool {
	otherIt, ok := other.(*IntersectionType)
	if !ok {
		return false
	}
	if it == nil || otherIt == nil {
		return it == otherIt
	}
	return sameMembers(it.Types, otherIt.Types)
}

// NewIntersection flattens nested intersections and removes duplicates.
// Any absorbs everything and Never annihilates everything. An intersection
// made only of object types is merged into a single object.
func NewIntersection(ts ...Type) Type {
	potentialMembers := make([]Type, 0, len(ts))

	var collect func(t Type)
	collect = func(t Type) {
		if t == nil {
			return
		}
		if inter, ok := t.(*IntersectionType); ok {
			for _, member := range inter.Types {
				collect(member)
			}
		} else {
			potentialMembers = append(potentialMembers, t)
		}
	}
	for _, t := range ts {
		collect(t)
	}

	uniqueMembers := make([]Type, 0, len(potentialMembers))
	for _, pm := range potentialMembers {
		switch pm {
		case Never:
			return Never
		case Any:
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
		return Any
	case 1:
		return uniqueMembers[0]
	}

	if merged, ok := mergeObjects(uniqueMembers); ok {
		return merged
	}

	sort.SliceStable(uniqueMembers, func(i, j int) bool {
		return uniqueMembers[i].String() < uniqueMembers[j].String()
	})
	return &IntersectionType{Types: uniqueMembers}
}

// mergeObjects combines object members. A key present in several members gets
// the intersection of their field types, and stays optional only if it is
// optional everywhere.
func mergeObjects(members []Type) (*ObjectType, bool) {
	out := &ObjectType{Fields: map[string]Type{}, Optional: map[string]bool{}}
	seen := map[string]int{}
	optionalCount := map[string]int{}
	for _, m := range members {
		obj, ok := m.(*ObjectType)
		if !ok {
			return nil, false
		}
		out.Readonly = out.Readonly || obj.Readonly
		for k, t := range obj.Fields {
			if prev, exists := out.Fields[k]; exists {
				out.Fields[k] = NewIntersection(prev, t)
			} else {
				out.Fields[k] = t
			}
			seen[k]++
			if obj.IsOptional(k) {
				optionalCount[k]++
			}
		}
	}
	for k, n := range seen {
		if optionalCount[k] == n {
			out.Optional[k] = true
		}
	}
	return out, true
}
