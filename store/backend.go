package store

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned when a key does not exist.
	//
	// Implementations should return an error satisfying
	// errors.Is(err, ErrKeyNotFound).
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrReadOnly is returned by backends that do not support writes.
	ErrReadOnly = errors.New("store: backend is read-only")
)

// Backend is the flat key/value surface a hierarchical store is layered on.
// Keys are slash-separated paths relative to the store root.
type Backend interface {
	// Get reads the value at key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes the value at key, creating parents as needed.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key and everything below it.
	Delete(ctx context.Context, prefix string) error
	// List returns the immediate child names under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)
}

// RenameBackend is an optional interface for backends that can atomically
// move a subtree. The local backend implements it; element writes are
// staged and renamed into place so that a failure mid-write never leaves a
// recognizable but corrupt group behind.
type RenameBackend interface {
	Rename(ctx context.Context, oldPrefix, newPrefix string) error
}

// LocalPather is an optional interface for backends whose keys resolve to
// local filesystem paths. Lazily-loaded elements read through such a
// backend report those paths as their backing files.
type LocalPather interface {
	LocalPath(key string) string
}
