package sdk

import (
	"sync"
)

// Factory creates a new SDK backend instance.
type Factory func() SDK

// Well-known backend names.
const (
	// BackendCUDA is the vendor hardware backend.
	BackendCUDA = "cuda"

	// BackendSoft is the CPU reference backend (sdk/softsdk).
	BackendSoft = "soft"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// Hardware first, the soft reference implementation as fallback.
	backendPriority = []string{BackendCUDA, BackendSoft}
)

// Register registers an SDK backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) SDK {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority.
// Priority order: cuda > soft.
// Returns nil if no backends are registered.
func Default() SDK {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if s := factory(); s != nil {
				return s
			}
		}
	}

	// Fallback: return first available
	for _, factory := range backends {
		if s := factory(); s != nil {
			return s
		}
	}

	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() SDK {
	s := Default()
	if s == nil {
		panic("sdk: no backend available")
	}
	return s
}
