package modules

import (
	"sort"
	"sync"
	"time"

	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/source"
)

// ModuleState represents the current state of a module during loading
type ModuleState int

const (
	ModuleUnknown  ModuleState = iota // Initial state
	ModuleResolved                    // Path found
	ModuleParsed                      // Parsed successfully
	ModuleError                       // Reading or parsing failed
)

func (s ModuleState) String() string {
	switch s {
	case ModuleResolved:
		return "resolved"
	case ModuleParsed:
		return "parsed"
	case ModuleError:
		return "error"
	}
	return "unknown"
}

// ModuleRecord is a loaded module with its parse results.
type ModuleRecord struct {
	Path    string
	State   ModuleState
	Source  *source.SourceFile
	Program *parser.Program

	// Imports are the resolved paths of the local modules it imports.
	Imports []string
	Error   error

	LoadTime      time.Time
	ParseDuration time.Duration
}

// Registry caches module records by path.
type Registry struct {
	modules map[string]*ModuleRecord
	mutex   sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*ModuleRecord)}
}

// Get retrieves a module record by path
func (r *Registry) Get(p string) *ModuleRecord {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.modules[p]
}

// Set stores a module record
func (r *Registry) Set(record *ModuleRecord) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.modules[record.Path] = record
}

// Remove drops a module from the cache
func (r *Registry) Remove(p string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.modules, p)
}

// Invalidate drops p and, transitively, every cached module importing it,
// and returns the dropped paths in sorted order.
func (r *Registry) Invalidate(p string) []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var dropped []string
	queue := []string{p}
	seen := map[string]bool{p: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := r.modules[cur]; ok {
			delete(r.modules, cur)
			dropped = append(dropped, cur)
		}
		for _, dep := range r.dependentsLocked(cur) {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Dependents returns the cached modules that import p.
func (r *Registry) Dependents(p string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.dependentsLocked(p)
}

func (r *Registry) dependentsLocked(p string) []string {
	var out []string
	for _, record := range r.modules {
		for _, dep := range record.Imports {
			if dep == p {
				out = append(out, record.Path)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Clear clears all cached modules
func (r *Registry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.modules = make(map[string]*ModuleRecord)
}

// List returns all cached module paths, sorted.
func (r *Registry) List() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]string, 0, len(r.modules))
	for p := range r.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of cached modules
func (r *Registry) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.modules)
}
