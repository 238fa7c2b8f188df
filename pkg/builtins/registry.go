package builtins

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the emission tables built from a set of initializers. It is
// read-only after construction and safe for concurrent use.
type Registry struct {
	mappings map[string]Mapping
	methods  map[ReceiverKind]map[string]Method
	helpers  map[string]string
	modules  map[string]string
}

// NewRegistry runs InitMappings of every initializer in priority order.
func NewRegistry(initializers []BuiltinInitializer) (*Registry, error) {
	r := &Registry{
		mappings: map[string]Mapping{},
		methods:  map[ReceiverKind]map[string]Method{},
		helpers:  map[string]string{},
		modules:  map[string]string{},
	}
	ctx := &MappingContext{
		Define: func(m Mapping) error {
			if _, exists := r.mappings[m.Name]; exists {
				return fmt.Errorf("builtin %s already defined", m.Name)
			}
			r.mappings[m.Name] = m
			return nil
		},
		DefineMethod: func(m Method) error {
			table := r.methods[m.Receiver]
			if table == nil {
				table = map[string]Method{}
				r.methods[m.Receiver] = table
			}
			if _, exists := table[m.Name]; exists {
				return fmt.Errorf("method %s.%s already defined", m.Receiver, m.Name)
			}
			table[m.Name] = m
			return nil
		},
		DefineHelper: func(name, source string) error {
			if _, exists := r.helpers[name]; exists {
				return fmt.Errorf("helper %s already defined", name)
			}
			r.helpers[name] = source
			return nil
		},
		DefineModule: func(name, shim string) error {
			if _, exists := r.modules[name]; exists {
				return fmt.Errorf("module %s already defined", name)
			}
			r.modules[name] = shim
			return nil
		},
	}
	for _, init := range sortByPriority(initializers) {
		if err := init.InitMappings(ctx); err != nil {
			return nil, fmt.Errorf("initializing %s mappings: %w", init.Name(), err)
		}
	}
	for _, m := range r.mappings {
		if m.RequiresHelper != "" {
			if _, ok := r.helpers[m.RequiresHelper]; !ok {
				return nil, fmt.Errorf("builtin %s requires undefined helper %s", m.Name, m.RequiresHelper)
			}
		}
	}
	for _, table := range r.methods {
		for _, m := range table {
			if h := m.Helper(); h != "" {
				if _, ok := r.helpers[h]; !ok {
					return nil, fmt.Errorf("method %s.%s requires undefined helper %s", m.Receiver, m.Name, h)
				}
			}
		}
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the standard initializers.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(GetStandardInitializers())
		if err != nil {
			panic(fmt.Sprintf("builtins: standard registry is inconsistent: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup returns the mapping for a builtin name.
func (r *Registry) Lookup(name string) (Mapping, bool) {
	m, ok := r.mappings[name]
	return m, ok
}

// receiverSearchOrder is used when the receiver type is not known statically.
var receiverSearchOrder = []ReceiverKind{ReceiverList, ReceiverStr, ReceiverDict, ReceiverSet}

// LookupMethod finds the rewrite of name for the receiver kind. With an
// unknown receiver the first kind defining name wins, in list, str, dict, set
// order.
func (r *Registry) LookupMethod(kind ReceiverKind, name string) (Method, bool) {
	if kind != ReceiverUnknown {
		m, ok := r.methods[kind][name]
		return m, ok
	}
	for _, k := range receiverSearchOrder {
		if m, ok := r.methods[k][name]; ok {
			return m, true
		}
	}
	return Method{}, false
}

// Helper returns the JavaScript source of a helper.
func (r *Registry) Helper(name string) (string, bool) {
	src, ok := r.helpers[name]
	return src, ok
}

// Module returns the JavaScript expression standing in for a builtin module.
func (r *Registry) Module(name string) (string, bool) {
	shim, ok := r.modules[name]
	return shim, ok
}

// Names returns the builtin names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HelperNames returns the helper names, sorted.
func (r *Registry) HelperNames() []string {
	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortByPriority(initializers []BuiltinInitializer) []BuiltinInitializer {
	out := append([]BuiltinInitializer(nil), initializers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}
