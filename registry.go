package tether

import (
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]*schema)
	registryMu sync.RWMutex
)

// schemaFor returns the cached schema for T or builds a new one.
func schemaFor[T Resource]() (*schema, error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return cached, nil
	}

	s, err := buildSchema[T]()
	if err != nil {
		return nil, err
	}

	registry[typ] = s
	return s, nil
}

// Validate builds and caches the schema for T, reporting declaration errors.
// Calling it at startup surfaces malformed record types before first use.
func Validate[T Resource]() error {
	_, err := schemaFor[T]()
	return err
}

// Reset clears the schema registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*schema)
}
