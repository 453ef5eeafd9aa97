package scalarweb

import (
	"sort"
	"sync"
)

// MethodRegistry tracks which methods a service supports, mapping each
// method name to the latest version the device advertises for it.
//
// The registry is populated by Service.DiscoverMethods; a registry that was
// never populated reports no methods.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]string
}

// NewMethodRegistry creates an empty method registry.
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]string),
	}
}

// Add records a method at the given version. When the method is already
// known, the higher version wins; unparseable versions never displace a
// parseable one.
func (r *MethodRegistry) Add(name, version string) {
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.methods[name]
	if !ok {
		r.methods[name] = version
		return
	}

	newVer, newErr := ParseVersion(version)
	oldVer, oldErr := ParseVersion(existing)

	switch {
	case newErr != nil:
		// Keep what we have.
	case oldErr != nil:
		r.methods[name] = version
	case oldVer.Less(newVer):
		r.methods[name] = version
	}
}

// Has returns true if the method is known to the registry.
func (r *MethodRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.methods[name]
	return ok
}

// Version returns the registered version for a method.
func (r *MethodRegistry) Version(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.methods[name]
	return v, ok
}

// Names returns the registered method names in sorted order.
func (r *MethodRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered methods.
func (r *MethodRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.methods)
}
