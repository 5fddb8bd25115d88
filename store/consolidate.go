package store

import (
	"context"
	"errors"
	"path"

	"github.com/hupe1980/spatialgo/element"
)

// Consolidated is the root metadata index: one entry per complete element
// group, keyed by "<kind>/<name>". Remote readers use it to enumerate a
// store in a single fetch instead of per-group listings.
type Consolidated struct {
	Version int                     `json:"version"`
	Groups  map[string]elementAttrs `json:"groups"`
}

// HasConsolidated reports whether the store carries a consolidated index.
func (s *Store) HasConsolidated(ctx context.Context) (bool, error) {
	return s.backend.Exists(ctx, ConsolidatedKey)
}

// ReadConsolidated loads the consolidated index, or ErrKeyNotFound if the
// store was never consolidated.
func (s *Store) ReadConsolidated(ctx context.Context) (*Consolidated, error) {
	data, err := s.backend.Get(ctx, ConsolidatedKey)
	if err != nil {
		return nil, err
	}
	var c Consolidated
	if err := s.codec.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Consolidate rebuilds the root index from the attrs of every complete
// group and writes it in one Put.
func (s *Store) Consolidate(ctx context.Context) error {
	c := Consolidated{Version: storeVersion, Groups: map[string]elementAttrs{}}
	for _, kind := range element.Kinds {
		names, err := s.ElementNames(ctx, kind)
		if err != nil {
			return err
		}
		for _, name := range names {
			var attrs elementAttrs
			if err := s.Group(kind.String(), name).ReadAttrs(ctx, &attrs); err != nil {
				return err
			}
			c.Groups[path.Join(kind.String(), name)] = attrs
		}
	}
	data, err := s.codec.Marshal(c)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, ConsolidatedKey, data)
}

// ConsolidateIfPresent refreshes the index only when one already exists, so
// metadata-only updates keep an existing index in sync without creating one.
func (s *Store) ConsolidateIfPresent(ctx context.Context) error {
	ok, err := s.HasConsolidated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.Consolidate(ctx)
}

// DeleteConsolidated removes the index; readers fall back to listings.
func (s *Store) DeleteConsolidated(ctx context.Context) error {
	err := s.backend.Delete(ctx, ConsolidatedKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	return err
}
