package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// Import is an extra module import a builtin needs in the emitted file.
type Import struct {
	Default string   // default binding, "" when absent
	Names   []string // named bindings
	Source  string   // module specifier, e.g. "node:crypto"
}

// Mapping describes how a builtin name is emitted.
//
//	print(x)  -> console.log(x)          JSEquivalent "console.log"
//	len(x)    -> x.length                IsMethodStyle, IsProperty
//	ord(c)    -> c.codePointAt()         IsMethodStyle
//	range(n)  -> __range(n)              RequiresHelper "__range"
//	uuid4()   -> randomUUID()            RequiresImport
type Mapping struct {
	Name           string
	JSEquivalent   string
	IsMethodStyle  bool // first argument becomes the receiver
	IsProperty     bool // with IsMethodStyle: emitted without a call
	IsConstructor  bool // calls are emitted with new
	// Params names the positional slots, so keyword arguments can be placed.
	Params []string
	RequiresHelper string
	RequiresImport *Import
}

// Mapper resolves builtin names. The transpiler consumes this interface so
// hosts can supply their own tables.
type Mapper interface {
	Lookup(name string) (Mapping, bool)
	LookupMethod(kind ReceiverKind, name string) (Method, bool)
	Helper(name string) (string, bool)
	Module(name string) (string, bool)
}

// ReceiverKind classifies the receiver of a method call.
type ReceiverKind int

const (
	ReceiverUnknown ReceiverKind = iota
	ReceiverStr
	ReceiverList
	ReceiverDict
	ReceiverSet
)

var receiverNames = [...]string{"unknown", "str", "list", "dict", "set"}

func (k ReceiverKind) String() string { return receiverNames[k] }

// ReceiverOf classifies a static type. Unions classify only when every
// member agrees.
func ReceiverOf(t types.Type) ReceiverKind {
	switch tt := t.(type) {
	case *types.Primitive:
		if tt == types.Str {
			return ReceiverStr
		}
	case *types.LiteralType:
		return ReceiverOf(tt.Base())
	case *types.TemplateLiteralType:
		return ReceiverStr
	case *types.ListType, *types.ArrayType, *types.TupleType:
		return ReceiverList
	case *types.DictType, *types.IndexSignatureType:
		return ReceiverDict
	case *types.ObjectType:
		if tt.Name == "" {
			return ReceiverDict
		}
	case *types.SetType:
		return ReceiverSet
	case *types.UnionType:
		kind := ReceiverUnknown
		for i, m := range types.Members(types.RemoveNone(tt)) {
			k := ReceiverOf(m)
			if i == 0 {
				kind = k
			} else if k != kind {
				return ReceiverUnknown
			}
		}
		return kind
	}
	return ReceiverUnknown
}

// MethodForm selects the shape of a method rewrite.
type MethodForm int

const (
	// MethodRename calls JS on the receiver: recv.JS(args)
	MethodRename MethodForm = iota
	// MethodProperty reads JS on the receiver: recv.JS
	MethodProperty
	// MethodStatic passes the receiver first to a free function: JS(recv, args)
	MethodStatic
	// MethodHelper is MethodStatic with JS naming a once-emitted helper
	MethodHelper
	// MethodTemplate expands Template, where $r is the receiver, $* all
	// arguments and $0..$9 single arguments.
	MethodTemplate
)

// Method describes the rewrite of a Python method on a builtin receiver.
type Method struct {
	Receiver ReceiverKind
	Name     string
	Form     MethodForm
	JS       string
	Template string
	// Params names the argument slots after the receiver.
	Params []string
	// Returns computes the result type from the receiver type; nil means Any.
	Returns func(recv types.Type) types.Type
}

// ReturnType applies Returns, defaulting to Any.
func (m Method) ReturnType(recv types.Type) types.Type {
	if m.Returns == nil {
		return types.Any
	}
	return m.Returns(recv)
}

// Helper returns the helper name a method needs, or "".
func (m Method) Helper() string {
	if m.Form == MethodHelper {
		return m.JS
	}
	return ""
}
