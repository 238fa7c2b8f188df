package modules

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quill-lang/quill/pkg/source"
)

// MemoryResolver resolves modules from an in-memory store
type MemoryResolver struct {
	name    string
	modules map[string]*MemoryModule
	mutex   sync.RWMutex
}

// MemoryModule represents a module stored in memory
type MemoryModule struct {
	Path     string
	Content  string
	Modified time.Time
}

// NewMemoryResolver creates a new memory-based module resolver
func NewMemoryResolver(name string) *MemoryResolver {
	if name == "" {
		name = "Memory"
	}
	return &MemoryResolver{
		name:    name,
		modules: make(map[string]*MemoryModule),
	}
}

// Name returns the resolver name
func (r *MemoryResolver) Name() string {
	return r.name
}

// Resolve finds a stored module the way FileSystemResolver finds files.
func (r *MemoryResolver) Resolve(specifier, fromPath string) (string, error) {
	target, err := targetPath(specifier, fromPath)
	if err != nil {
		return "", err
	}
	target = strings.TrimSuffix(target, ".js")

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, candidate := range []string{
		target,
		target + source.Extension,
		path.Join(target, "__init__"+source.Extension),
		path.Join(target, "index"+source.Extension),
	} {
		if _, ok := r.modules[candidate]; ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module not found: %s", target)
}

// ReadSource returns the stored module at p.
func (r *MemoryResolver) ReadSource(p string) (*source.SourceFile, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.modules[p]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", p)
	}
	return source.FromFile(p, m.Content), nil
}

// AddModule adds a module to the memory store
func (r *MemoryResolver) AddModule(p string, content string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.modules[path.Clean(p)] = &MemoryModule{Path: p, Content: content, Modified: time.Now()}
}

// UpdateModule updates an existing module's content
func (r *MemoryResolver) UpdateModule(p string, content string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, exists := r.modules[path.Clean(p)]
	if !exists {
		return fmt.Errorf("module not found: %s", p)
	}
	m.Content = content
	m.Modified = time.Now()
	return nil
}

// RemoveModule removes a module from the memory store
func (r *MemoryResolver) RemoveModule(p string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.modules, path.Clean(p))
}

// ListModules returns all module paths in the store, sorted.
func (r *MemoryResolver) ListModules() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
