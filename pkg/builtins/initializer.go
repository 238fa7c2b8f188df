package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// BuiltinInitializer is implemented by each builtin group
type BuiltinInitializer interface {
	// Name returns the group name (e.g., "globals", "str", "math")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitTypes declares the checker-facing types of the group's names
	InitTypes(ctx *TypeContext) error

	// InitMappings declares how the group's names are emitted in JavaScript
	InitMappings(ctx *MappingContext) error
}

// TypeContext provides everything needed for type initialization
type TypeContext struct {
	// Define a global value binding (function, namespace, class)
	DefineGlobal func(name string, typ types.Type) error

	// Define a type alias usable in annotations (e.g., "List" -> list)
	DefineTypeAlias func(name string, typ types.Type) error

	// Define the type of an importable builtin module (e.g., "math")
	DefineModule func(name string, typ types.Type) error

	// Get a previously defined global
	GetType func(name string) (types.Type, bool)
}

// MappingContext provides everything needed for emission tables
type MappingContext struct {
	// Define a builtin function or name mapping
	Define func(m Mapping) error

	// Define a method rewrite for a receiver kind
	DefineMethod func(m Method) error

	// Define the JavaScript source of a once-emitted helper
	DefineHelper func(name, source string) error

	// Define the JavaScript expression bound when a builtin module is imported
	DefineModule func(name, shim string) error
}

// Priority constants for initialization order
const (
	PriorityGlobals    = 0   // Python builtins (print, len, range, ...)
	PriorityExceptions = 1   // Exception hierarchy
	PriorityString     = 10  // str methods
	PriorityList       = 11  // list methods
	PriorityDict       = 12  // dict methods
	PrioritySet        = 13  // set methods
	PriorityMath       = 100 // math module and Math object
	PriorityJSON       = 101 // json module and JSON object
	PriorityConsole    = 102 // console and other host globals
)
