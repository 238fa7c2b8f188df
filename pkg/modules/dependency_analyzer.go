package modules

import (
	"fmt"
	"sort"
	"sync"
)

// DependencyGraph records which local modules import which. It is safe for
// concurrent use by the loader's workers.
type DependencyGraph struct {
	discovered map[string]int      // module -> discovery index
	deps       map[string][]string // module -> dependencies
	importers  map[string]int      // module -> import count
	mutex      sync.RWMutex
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		discovered: make(map[string]int),
		deps:       make(map[string][]string),
		importers:  make(map[string]int),
	}
}

// MarkDiscovered records a module and reports whether it was new.
func (g *DependencyGraph) MarkDiscovered(modulePath string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if _, seen := g.discovered[modulePath]; seen {
		return false
	}
	g.discovered[modulePath] = len(g.discovered)
	return true
}

// AddDependency records that from imports to. Repeated edges are ignored.
func (g *DependencyGraph) AddDependency(from, to string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for _, d := range g.deps[from] {
		if d == to {
			return
		}
	}
	g.deps[from] = append(g.deps[from], to)
	g.importers[to]++
}

// Dependencies returns the direct dependencies of a module.
func (g *DependencyGraph) Dependencies(modulePath string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return append([]string(nil), g.deps[modulePath]...)
}

// ImportCount returns how many modules import modulePath.
func (g *DependencyGraph) ImportCount(modulePath string) int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.importers[modulePath]
}

// Modules returns every discovered module in discovery order.
func (g *DependencyGraph) Modules() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.modulesLocked()
}

func (g *DependencyGraph) modulesLocked() []string {
	out := make([]string, 0, len(g.discovered))
	for m := range g.discovered {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return g.discovered[out[i]] < g.discovered[out[j]] })
	return out
}

// TopologicalOrder returns modules with dependencies before their
// dependents. Ties keep discovery order. A cycle is an error naming the
// modules on it.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	modules := g.modulesLocked()
	pending := make(map[string]int, len(modules))
	dependents := make(map[string][]string)
	for _, m := range modules {
		for _, d := range g.deps[m] {
			if _, known := g.discovered[d]; !known {
				continue
			}
			pending[m]++
			dependents[d] = append(dependents[d], m)
		}
	}

	// Kahn's algorithm, always taking the earliest-discovered ready module
	var result []string
	done := make(map[string]bool, len(modules))
	for len(result) < len(modules) {
		next := ""
		for _, m := range modules {
			if !done[m] && pending[m] == 0 {
				next = m
				break
			}
		}
		if next == "" {
			break
		}
		done[next] = true
		result = append(result, next)
		for _, dep := range dependents[next] {
			pending[dep]--
		}
	}

	if len(result) != len(modules) {
		var remaining []string
		for _, m := range modules {
			if !done[m] {
				remaining = append(remaining, m)
			}
		}
		return nil, fmt.Errorf("circular dependency detected among modules: %v", remaining)
	}
	return result, nil
}

// Clear resets the graph.
func (g *DependencyGraph) Clear() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.discovered = make(map[string]int)
	g.deps = make(map[string][]string)
	g.importers = make(map[string]int)
}
