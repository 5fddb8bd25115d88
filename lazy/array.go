package lazy

import (
	"context"
	"fmt"
	"sync"
)

// Array is a shaped byte payload that may be deferred behind a Source.
// Materialize blocks the caller; there is no cancellation beyond ctx.
type Array struct {
	shape []int

	mu      sync.Mutex
	src     Source
	data    []byte
	release func() error
	loaded  bool
}

// NewArray wraps an already-materialized payload.
func NewArray(shape []int, data []byte) *Array {
	return &Array{shape: shape, data: data, loaded: true}
}

// NewArrayFromSource wraps a deferred payload.
func NewArrayFromSource(shape []int, src Source) *Array {
	return &Array{shape: shape, src: src}
}

// Shape returns the array's dimensions. The returned slice must not be mutated.
func (a *Array) Shape() []int { return a.shape }

// Len returns the number of entries (product of the shape).
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Materialized reports whether the payload bytes are already resident.
func (a *Array) Materialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// Materialize loads and caches the payload bytes, blocking until done.
func (a *Array) Materialize(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return a.data, nil
	}
	if a.src == nil {
		return nil, fmt.Errorf("lazy: array has neither data nor source")
	}
	data, release, err := a.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.data = data
	a.release = release
	a.loaded = true
	return a.data, nil
}

// BackingFiles lists the files the payload depends on; empty once the
// payload is purely in-memory.
func (a *Array) BackingFiles() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.src == nil {
		return nil
	}
	return a.src.BackingFiles()
}

// Close releases any resources backing a materialized payload.
func (a *Array) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.release != nil {
		err := a.release()
		a.release = nil
		a.data = nil
		a.loaded = false
		return err
	}
	return nil
}
