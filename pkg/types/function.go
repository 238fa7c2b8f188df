package types

import "strings"

// FunctionType describes a callable signature.
type FunctionType struct {
	Params []Type
	// ParamNames holds the declared parameter names when known. They take no
	// part in Equals or assignability.
	ParamNames []string
	// Optional marks parameters that carry a default value.
	Optional []bool
	// Rest is the element type of a *args parameter, nil when absent.
	Rest Type
	// Return is the result type; nil is treated as None.
	Return Type
	// TypeParams lists the generic parameters of the signature, if any.
	TypeParams []*TypeParameter
	IsAsync    bool
}

// RequiredParams counts the leading parameters without defaults.
func (ft *FunctionType) RequiredParams() int {
	n := 0
	for i := range ft.Params {
		if i < len(ft.Optional) && ft.Optional[i] {
			continue
		}
		n++
	}
	return n
}

func (ft *FunctionType) isOptional(i int) bool {
	return i < len(ft.Optional) && ft.Optional[i]
}

func (ft *FunctionType) String() string {
	var b strings.Builder
	if ft.IsAsync {
		b.WriteString("async ")
	}
	if len(ft.TypeParams) > 0 {
		b.WriteString("[")
		for i, tp := range ft.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tp.Name)
		}
		b.WriteString("]")
	}
	b.WriteString("(")
	for i, p := range ft.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeString(p))
		if ft.isOptional(i) {
			b.WriteString("=")
		}
	}
	if ft.Rest != nil {
		if len(ft.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("*")
		b.WriteString(ft.Rest.String())
	}
	b.WriteString(") -> ")
	b.WriteString(typeString(ft.Return))
	return b.String()
}
func (ft *FunctionType) typeNode() {}
func (ft *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || ft.IsAsync != o.IsAsync || !equalLists(ft.Params, o.Params) {
		return false
	}
	for i := range ft.Params {
		if ft.isOptional(i) != o.isOptional(i) {
			return false
		}
	}
	if len(ft.TypeParams) != len(o.TypeParams) {
		return false
	}
	for i := range ft.TypeParams {
		if !ft.TypeParams[i].Equals(o.TypeParams[i]) {
			return false
		}
	}
	return equalTypes(ft.Rest, o.Rest) && equalTypes(ft.Return, o.Return)
}

// CallableType is an overloaded callable: a value that can be invoked through
// any one of its signatures.
type CallableType struct {
	Overloads []*FunctionType
}

func (ct *CallableType) String() string {
	parts := make([]string, len(ct.Overloads))
	for i, o := range ct.Overloads {
		parts[i] = o.String()
	}
	return "Callable{" + strings.Join(parts, "; ") + "}"
}
func (ct *CallableType) typeNode() {}
func (ct *CallableType) Equals(other Type) bool {
	o, ok := other.(*CallableType)
	if !ok || len(ct.Overloads) != len(o.Overloads) {
		return false
	}
	for i := range ct.Overloads {
		if !ct.Overloads[i].Equals(o.Overloads[i]) {
			return false
		}
	}
	return true
}

// NewSimpleFunction creates a signature with required parameters only.
func NewSimpleFunction(params []Type, ret Type) *FunctionType {
	return &FunctionType{Params: params, Return: ret}
}

// NewVariadicFunction creates a signature ending in a *args parameter whose
// elements have type rest.
func NewVariadicFunction(params []Type, rest, ret Type) *FunctionType {
	return &FunctionType{Params: params, Rest: rest, Return: ret}
}

// NewOptionalFunction creates a signature whose last optional parameters may be
// omitted.
func NewOptionalFunction(required, optional []Type, ret Type) *FunctionType {
	ft := &FunctionType{Return: ret}
	for _, p := range required {
		ft.Params = append(ft.Params, p)
		ft.Optional = append(ft.Optional, false)
	}
	for _, p := range optional {
		ft.Params = append(ft.Params, p)
		ft.Optional = append(ft.Optional, true)
	}
	return ft
}

// NewGenericFunction attaches type parameters to a signature.
func NewGenericFunction(typeParams []*TypeParameter, fn *FunctionType) *FunctionType {
	fn.TypeParams = typeParams
	return fn
}
