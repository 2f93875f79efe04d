// Package registry holds the declared mappings keyed by index name. It is
// the in-process schema catalog the document and search services consult to
// validate sources and locate the vector content field.
package registry

import (
	"sort"
	"sync"

	"github.com/esbind-io/esbind/internal/domain/mapping"
)

// Registry is a concurrent index-name to mapping catalog.
type Registry struct {
	mu       sync.RWMutex
	mappings map[string]mapping.Mapping
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{mappings: make(map[string]mapping.Mapping)}
}

// Register stores the mapping for an index name, replacing any previous one.
func (r *Registry) Register(name string, m mapping.Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[name] = m
}

// Get returns the mapping registered for an index name.
func (r *Registry) Get(name string) (mapping.Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappings[name]
	return m, ok
}

// Names returns the registered index names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
