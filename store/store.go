// Package store implements the hierarchical, group-structured persistent
// store a dataset may be backed by.
//
// The layout is a root marker file plus one top-level group per element
// kind (images, labels, points, shapes, tables), each holding one sub-group
// per element name. A group is a prefix of keys on a flat Backend; the
// local backend maps keys to files, the minio and s3 backends map them to
// object keys. An optional consolidated metadata index at the root speeds
// up remote reads.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/hupe1980/spatialgo/codec"
)

const (
	// MarkerKey is the root key identifying a directory/prefix as a store.
	MarkerKey = ".sdcontainer"
	// ConsolidatedKey is the root key of the consolidated metadata index.
	ConsolidatedKey = "consolidated.json"
	// AttrsKey is the per-group attrs file. Its presence marks a complete group.
	AttrsKey = "attrs.json"

	storeFormat  = "spatialgo"
	storeVersion = 1

	stagingInfix = ".tmp-"
)

// ErrNotAStore is returned when a location exists but carries no store marker.
var ErrNotAStore = errors.New("store: location is not a recognized store")

type marker struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// Store is a handle on a hierarchical store rooted at a backend.
type Store struct {
	backend Backend
	codec   codec.Codec
	comp    Compressor
}

// Option configures a Store handle.
type Option func(*Store)

// WithCodec overrides the attrs codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithCompressor overrides the payload compressor used by writers.
func WithCompressor(c Compressor) Option {
	return func(s *Store) { s.comp = c }
}

func newStore(b Backend, opts ...Option) *Store {
	s := &Store{backend: b, codec: codec.Default, comp: DefaultCompressor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsStore reports whether the backend location carries a valid store marker.
func IsStore(ctx context.Context, b Backend) (bool, error) {
	data, err := b.Get(ctx, MarkerKey)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var m marker
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return false, nil
	}
	return m.Format == storeFormat, nil
}

// Open opens an existing store, verifying the marker.
func Open(ctx context.Context, b Backend, opts ...Option) (*Store, error) {
	ok, err := IsStore(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAStore
	}
	return newStore(b, opts...), nil
}

// Create initializes a store at the backend location. With overwrite, any
// existing contents are removed first; safety checks belong to the caller.
func Create(ctx context.Context, b Backend, overwrite bool, opts ...Option) (*Store, error) {
	if overwrite {
		names, err := b.List(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if err := b.Delete(ctx, name); err != nil {
				return nil, err
			}
		}
		if err := b.Delete(ctx, MarkerKey); err != nil {
			return nil, err
		}
	}
	s := newStore(b, opts...)
	data, err := s.codec.Marshal(marker{Format: storeFormat, Version: storeVersion})
	if err != nil {
		return nil, err
	}
	if err := b.Put(ctx, MarkerKey, data); err != nil {
		return nil, err
	}
	return s, nil
}

// Backend returns the store's backend.
func (s *Store) Backend() Backend { return s.backend }

// Compressor returns the configured payload compressor.
func (s *Store) Compressor() Compressor { return s.comp }

// Group returns a handle on the group at the joined path parts.
func (s *Store) Group(parts ...string) *Group {
	return &Group{s: s, key: path.Join(parts...)}
}

// Group is a handle on a prefix inside a store.
type Group struct {
	s   *Store
	key string
}

// Key returns the group's slash-separated path relative to the root.
func (g *Group) Key() string { return g.key }

// Child returns the sub-group handle for name.
func (g *Group) Child(name string) *Group {
	return &Group{s: g.s, key: path.Join(g.key, name)}
}

// Exists reports whether the group is complete (its attrs file is present).
func (g *Group) Exists(ctx context.Context) (bool, error) {
	return g.s.backend.Exists(ctx, path.Join(g.key, AttrsKey))
}

// List returns the names of the group's children.
func (g *Group) List(ctx context.Context) ([]string, error) {
	names, err := g.s.backend.List(ctx, g.key)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if n == AttrsKey || n == MarkerKey || n == ConsolidatedKey {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// ReadAttrs decodes the group's attrs into v.
func (g *Group) ReadAttrs(ctx context.Context, v any) error {
	data, err := g.s.backend.Get(ctx, path.Join(g.key, AttrsKey))
	if err != nil {
		return err
	}
	return g.s.codec.Unmarshal(data, v)
}

// WriteAttrs replaces exactly the group's attrs file, leaving payloads alone.
func (g *Group) WriteAttrs(ctx context.Context, v any) error {
	data, err := g.s.codec.Marshal(v)
	if err != nil {
		return err
	}
	return g.s.backend.Put(ctx, path.Join(g.key, AttrsKey), data)
}

// get reads a raw payload file within the group.
func (g *Group) get(ctx context.Context, name string) ([]byte, error) {
	return g.s.backend.Get(ctx, path.Join(g.key, name))
}

// writeFiles writes a complete group as one unit.
//
// On rename-capable backends the files are staged under a temporary prefix
// and renamed into place. Elsewhere the attrs file is written last, so an
// interrupted write leaves the group unrecognizable rather than corrupt;
// either way sibling groups are never touched.
func (g *Group) writeFiles(ctx context.Context, files map[string][]byte, attrs any) error {
	attrsData, err := g.s.codec.Marshal(attrs)
	if err != nil {
		return err
	}

	if rb, ok := g.s.backend.(RenameBackend); ok {
		tmp := g.key + stagingInfix + uuid.NewString()[:8]
		for name, data := range files {
			if err := g.s.backend.Put(ctx, path.Join(tmp, name), data); err != nil {
				_ = g.s.backend.Delete(ctx, tmp)
				return err
			}
		}
		if err := g.s.backend.Put(ctx, path.Join(tmp, AttrsKey), attrsData); err != nil {
			_ = g.s.backend.Delete(ctx, tmp)
			return err
		}
		if err := g.s.backend.Delete(ctx, g.key); err != nil {
			_ = g.s.backend.Delete(ctx, tmp)
			return err
		}
		if err := rb.Rename(ctx, tmp, g.key); err != nil {
			_ = g.s.backend.Delete(ctx, tmp)
			return err
		}
		return nil
	}

	for name, data := range files {
		if err := g.s.backend.Put(ctx, path.Join(g.key, name), data); err != nil {
			return err
		}
	}
	return g.s.backend.Put(ctx, path.Join(g.key, AttrsKey), attrsData)
}

// localPayloadPath resolves the on-disk path of a payload file if the
// backend is local, otherwise "".
func (g *Group) localPayloadPath(name string) string {
	lp, ok := g.s.backend.(LocalPather)
	if !ok {
		return ""
	}
	return lp.LocalPath(path.Join(g.key, name))
}

func (g *Group) String() string {
	return fmt.Sprintf("Group(%s)", g.key)
}
