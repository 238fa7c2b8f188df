package checker

import (
	"fmt"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/types"
)

// SymbolInfo is what a scope knows about a name.
type SymbolInfo struct {
	Type    types.Type
	IsConst bool
	// Annotated marks names whose type came from an annotation; later
	// assignments are checked against it instead of replacing it.
	Annotated bool
}

// Environment manages type information within scopes.
type Environment struct {
	symbols        map[string]SymbolInfo
	typeAliases    map[string]types.Type
	typeParameters map[string]*types.TypeParameter
	outer          *Environment

	// modules holds the importable builtin modules; only the global
	// environment has it.
	modules map[string]types.Type
}

// NewEnvironment creates a new top-level type environment.
func NewEnvironment() *Environment {
	return &Environment{
		symbols:        make(map[string]SymbolInfo),
		typeAliases:    make(map[string]types.Type),
		typeParameters: make(map[string]*types.TypeParameter),
		modules:        make(map[string]types.Type),
	}
}

// NewEnclosedEnvironment creates a new environment nested within an outer one.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{
		symbols:        make(map[string]SymbolInfo),
		typeAliases:    make(map[string]types.Type),
		typeParameters: make(map[string]*types.TypeParameter),
		outer:          outer,
	}
}

// NewGlobalEnvironment creates a top-level environment populated by the
// InitTypes step of each initializer.
func NewGlobalEnvironment(initializers []builtins.BuiltinInitializer) (*Environment, error) {
	env := NewEnvironment()

	typeCtx := &builtins.TypeContext{
		DefineGlobal: func(name string, typ types.Type) error {
			if !env.Define(name, typ, true) {
				return fmt.Errorf("global %s already defined", name)
			}
			return nil
		},
		DefineTypeAlias: func(name string, typ types.Type) error {
			if !env.DefineTypeAlias(name, typ) {
				return fmt.Errorf("type alias %s already defined", name)
			}
			return nil
		},
		DefineModule: func(name string, typ types.Type) error {
			if _, exists := env.modules[name]; exists {
				return fmt.Errorf("module %s already defined", name)
			}
			env.modules[name] = typ
			return nil
		},
		GetType: func(name string) (types.Type, bool) {
			if info, found := env.symbols[name]; found {
				return info.Type, true
			}
			return nil, false
		},
	}

	for _, init := range initializers {
		if err := init.InitTypes(typeCtx); err != nil {
			return nil, fmt.Errorf("initializing %s types: %w", init.Name(), err)
		}
	}
	return env, nil
}

// NewStandardGlobalEnvironment creates a global environment with the
// standard builtins. The standard initializers are consistent, so a failure
// here is a programming error.
func NewStandardGlobalEnvironment() *Environment {
	env, err := NewGlobalEnvironment(builtins.GetStandardInitializers())
	if err != nil {
		panic(err)
	}
	return env
}

// Define adds a binding to the current scope. Returns false if the name is
// already bound in this scope.
func (e *Environment) Define(name string, typ types.Type, isConst bool) bool {
	if _, exists := e.symbols[name]; exists {
		return false
	}
	e.symbols[name] = SymbolInfo{Type: typ, IsConst: isConst}
	return true
}

// DefineAnnotated binds a name whose type is fixed by an annotation,
// replacing any hoisted placeholder in this scope.
func (e *Environment) DefineAnnotated(name string, typ types.Type, isConst bool) {
	e.symbols[name] = SymbolInfo{Type: typ, IsConst: isConst, Annotated: true}
}

// Update modifies the type of an existing symbol in the current scope,
// keeping its const and annotation flags. Returns false if the symbol is not
// bound here.
func (e *Environment) Update(name string, typ types.Type) bool {
	info, exists := e.symbols[name]
	if !exists {
		return false
	}
	info.Type = typ
	e.symbols[name] = info
	return true
}

// MarkConst flags an existing symbol of this scope as constant.
func (e *Environment) MarkConst(name string) {
	if info, exists := e.symbols[name]; exists {
		info.IsConst = true
		e.symbols[name] = info
	}
}

// DefineTypeAlias adds a type name usable in annotations.
func (e *Environment) DefineTypeAlias(name string, typ types.Type) bool {
	if _, exists := e.typeAliases[name]; exists {
		return false
	}
	e.typeAliases[name] = typ
	return true
}

// DefineTypeParameter makes a generic parameter visible to annotations in
// this scope.
func (e *Environment) DefineTypeParameter(tp *types.TypeParameter) {
	e.typeParameters[tp.Name] = tp
}

// Resolve looks up a name in this scope and its outer scopes.
func (e *Environment) Resolve(name string) (typ types.Type, isConst bool, found bool) {
	info, scope := e.Lookup(name)
	if scope == nil {
		return nil, false, false
	}
	return info.Type, info.IsConst, true
}

// Lookup returns the symbol and the scope that binds it, or a nil scope.
func (e *Environment) Lookup(name string) (SymbolInfo, *Environment) {
	for env := e; env != nil; env = env.outer {
		if info, ok := env.symbols[name]; ok {
			return info, env
		}
	}
	return SymbolInfo{}, nil
}

// ResolveType looks up a type alias.
func (e *Environment) ResolveType(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.outer {
		if t, ok := env.typeAliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ResolveTypeParameter looks up a generic parameter in scope.
func (e *Environment) ResolveTypeParameter(name string) (*types.TypeParameter, bool) {
	for env := e; env != nil; env = env.outer {
		if tp, ok := env.typeParameters[name]; ok {
			return tp, true
		}
	}
	return nil, false
}

// Module returns the type of an importable builtin module.
func (e *Environment) Module(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.outer {
		if env.modules != nil {
			t, ok := env.modules[name]
			return t, ok
		}
	}
	return nil, false
}

// Outer returns the enclosing scope.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Global returns the outermost scope.
func (e *Environment) Global() *Environment {
	env := e
	for env.outer != nil {
		env = env.outer
	}
	return env
}
