package backend

import (
	"errors"
	"sync"

	"github.com/gogpu/framegraph"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendNative is the Pure Go GPU allocator (gogpu/wgpu HAL).
	BackendNative = "native"

	// BackendGoGPU is the gogpu framework allocator (gpu.Backend).
	BackendGoGPU = "gogpu"

	// BackendNull is the inert allocator for tests and CPU-only runs.
	BackendNull = "null"
)

// Factory creates a new allocator instance.
type Factory func() framegraph.Allocator

// registry holds registered allocator factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)

	// Priority order for default selection (first available wins).
	// Native > GoGPU > Null (null is the always-available fallback).
	priority = []string{BackendNative, BackendGoGPU, BackendNull}
)

func init() {
	Register(BackendNull, func() framegraph.Allocator {
		return framegraph.NullAllocator{}
	})
}

// Register registers an allocator factory with the given name.
// Device-holding factories are registered by the host after device
// creation. If a factory with the same name is already registered, it
// will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns an allocator by backend name.
// Returns nil if the backend is not registered.
func Get(name string) framegraph.Allocator {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := factories[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available allocator based on priority.
func Default() framegraph.Allocator {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if a := factory(); a != nil {
				return a
			}
		}
	}

	// Fallback: return first available
	for _, factory := range factories {
		if a := factory(); a != nil {
			return a
		}
	}

	return nil
}

// MustDefault returns the default allocator or panics.
func MustDefault() framegraph.Allocator {
	a := Default()
	if a == nil {
		panic("backend: no allocator available")
	}
	return a
}
