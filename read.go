package spatialgo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/store"
)

// ReadOption configures a dataset read.
type ReadOption func(*readConfig)

type readConfig struct {
	kinds       []element.Kind
	storeOpts   []store.Option
	concurrency int
	logger      *Logger
}

// WithSelection restricts the read to the given top-level groups.
func WithSelection(kinds ...element.Kind) ReadOption {
	return func(c *readConfig) { c.kinds = kinds }
}

// WithReadConcurrency bounds how many elements load in parallel.
func WithReadConcurrency(n int) ReadOption {
	return func(c *readConfig) { c.concurrency = n }
}

// WithReadStoreOptions forwards options (codec) to the store.
func WithReadStoreOptions(opts ...store.Option) ReadOption {
	return func(c *readConfig) { c.storeOpts = append(c.storeOpts, opts...) }
}

// WithReadLogger routes the warnings emitted while rebuilding the dataset,
// e.g. referential gaps of tables read without their targets.
func WithReadLogger(l *Logger) ReadOption {
	return func(c *readConfig) { c.logger = l }
}

// Read opens a store and loads it into a new dataset. Element metadata is
// read in parallel; raster and point payloads stay lazy behind the store
// until materialized. The dataset comes back bound to the store it was
// read from.
func Read(ctx context.Context, backend store.Backend, opts ...ReadOption) (*Dataset, error) {
	cfg := readConfig{kinds: element.Kinds, concurrency: 8}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(ctx, backend, cfg.storeOpts...)
	if err != nil {
		return nil, err
	}

	names, err := listNames(ctx, st, cfg.kinds)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		name string
		kind element.Kind
		v    element.Value
	}
	var (
		mu     sync.Mutex
		values []loaded
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for _, kind := range cfg.kinds {
		for _, name := range names[kind] {
			kind, name := kind, name
			g.Go(func() error {
				v, err := st.ReadElement(gctx, kind, name)
				if err != nil {
					return err
				}
				mu.Lock()
				values = append(values, loaded{name: name, kind: kind, v: v})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dopts []Option
	if cfg.logger != nil {
		dopts = append(dopts, WithLogger(cfg.logger))
	}
	d := New(dopts...)
	// tables last, so annotation validation sees their targets
	for _, l := range values {
		if l.kind != element.KindTable {
			if err := d.Add(l.name, l.v); err != nil {
				return nil, err
			}
		}
	}
	for _, l := range values {
		if l.kind == element.KindTable {
			if err := d.AddTable(l.name, l.v.(*element.Table)); err != nil {
				return nil, err
			}
		}
	}

	d.backing = st
	d.backingPath = localRoot(backend)
	return d, nil
}

// listNames enumerates the stored element names per kind. A consolidated
// index answers in one read; without one the store's group listing is used,
// which costs a round trip per kind on remote backends.
func listNames(ctx context.Context, st *store.Store, kinds []element.Kind) (map[element.Kind][]string, error) {
	out := make(map[element.Kind][]string, len(kinds))

	hasIndex, err := st.HasConsolidated(ctx)
	if err != nil {
		return nil, err
	}
	if hasIndex {
		idx, err := st.ReadConsolidated(ctx)
		if err != nil {
			return nil, err
		}
		want := make(map[string]element.Kind, len(kinds))
		for _, kind := range kinds {
			want[kind.String()] = kind
		}
		for key := range idx.Groups {
			kindName, name, ok := strings.Cut(key, "/")
			if !ok {
				continue
			}
			if kind, ok := want[kindName]; ok {
				out[kind] = append(out[kind], name)
			}
		}
		for _, names := range out {
			sort.Strings(names)
		}
		return out, nil
	}

	for _, kind := range kinds {
		names, err := st.ElementNames(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = names
	}
	return out, nil
}
