// Package lazy provides deferred materialization for element payloads.
//
// A payload is a described computation: the list of files it depends on
// plus a Load that blocks the caller until the bytes are available. The
// container core only ever inspects BackingFiles to decide store
// containment; it forces materialization only when a length or dtype must
// be known.
package lazy

import (
	"context"

	"github.com/hupe1980/spatialgo/internal/fs"
	"github.com/hupe1980/spatialgo/internal/mmap"
)

// Source describes where a payload's bytes come from.
type Source interface {
	// BackingFiles lists the files the payload depends on. Empty for
	// in-memory payloads.
	BackingFiles() []string
	// Load materializes the payload. release frees any resources backing
	// the returned slice; the slice must not be used after release.
	Load(ctx context.Context) (data []byte, release func() error, err error)
}

// Bytes is an in-memory source.
type Bytes []byte

func (b Bytes) BackingFiles() []string { return nil }

func (b Bytes) Load(ctx context.Context) ([]byte, func() error, error) {
	return b, func() error { return nil }, nil
}

// FileSource memory-maps a local file on Load.
type FileSource struct {
	Path string
}

func (s FileSource) BackingFiles() []string { return []string{s.Path} }

func (s FileSource) Load(ctx context.Context) ([]byte, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	m, err := mmap.Open(s.Path)
	if err != nil {
		return nil, nil, err
	}
	return m.Data, m.Close, nil
}

// FuncSource wraps an arbitrary deferred computation, e.g. a decode chained
// onto a remote read.
type FuncSource struct {
	Files []string
	Fn    func(ctx context.Context) ([]byte, error)
}

func (s FuncSource) BackingFiles() []string { return s.Files }

func (s FuncSource) Load(ctx context.Context) ([]byte, func() error, error) {
	data, err := s.Fn(ctx)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}

// Dependent is anything that can report its lazy file dependencies.
type Dependent interface {
	BackingFiles() []string
}

// SelfContained reports whether every file dep resolves inside dir.
// A value with no deps is always self-contained. Purely advisory; it never
// reads data.
func SelfContained(dep Dependent, dir string) bool {
	for _, f := range dep.BackingFiles() {
		if !fs.IsSubPath(dir, f) {
			return false
		}
	}
	return true
}
