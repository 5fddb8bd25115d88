// Package spatialgo provides an in-memory container for multi-modal
// spatial datasets: raster images, label maps, point clouds, vector shapes
// and annotation tables, held under one shared namespace.
//
// A Dataset keeps five kind-scoped element maps behind a single shared
// name set, tracks each spatial element's coordinate-system ledger, links
// annotation tables to the elements they describe, and persists to a
// hierarchical store through a guard that refuses destructive writes.
//
// # Quick start
//
//	ds := spatialgo.New()
//
//	img, _ := element.NewImage([]string{"c", "y", "x"}, element.DTypeUint8, scale0)
//	_ = ds.AddImage("scan", img)
//
//	tbl, _ := element.NewTable(cols)
//	_ = ds.AddTable("measurements", tbl)
//	_ = ds.BindTable("measurements", []string{"scan"}, "region", "cell_id")
//
//	backend := store.NewLocal("/data/brain.sd")
//	_ = ds.Write(ctx, backend)
package spatialgo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/store"
)

// Dataset is a multi-modal spatial dataset: five kind-scoped element maps
// sharing one name set. Not safe for concurrent mutation.
type Dataset struct {
	images map[string]*element.Image
	labels map[string]*element.Labels
	points map[string]*element.Points
	shapes map[string]*element.Shapes
	tables map[string]*element.Table

	// shared is the single name set spanning all five maps.
	shared map[string]element.Kind

	// backing is set once the dataset has been written to or read from a
	// store. backingPath is the local root when the backend is local.
	backing     *store.Store
	backingPath string

	logger *Logger
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithLogger overrides the default text logger.
func WithLogger(l *Logger) Option {
	return func(d *Dataset) { d.logger = l }
}

// New creates an empty dataset.
func New(opts ...Option) *Dataset {
	d := &Dataset{
		images: map[string]*element.Image{},
		labels: map[string]*element.Labels{},
		points: map[string]*element.Points{},
		shapes: map[string]*element.Shapes{},
		tables: map[string]*element.Table{},
		shared: map[string]element.Kind{},
		logger: NewLogger(nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromElements creates a dataset from named values, classifying each by its
// schema. Tables are inserted last so their annotation validation sees the
// elements they reference. Fails on the first validation error or name
// collision.
func FromElements(values map[string]element.Value, opts ...Option) (*Dataset, error) {
	d := New(opts...)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := values[name].(*element.Table); ok {
			continue
		}
		if err := d.Add(name, values[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if _, ok := values[name].(*element.Table); ok {
			if err := d.Add(name, values[name]); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// BackingPath returns the local root path of the dataset's store, or ""
// when unbacked or remote.
func (d *Dataset) BackingPath() string { return d.backingPath }

// IsBacked reports whether the dataset is bound to a store.
func (d *Dataset) IsBacked() bool { return d.backing != nil }

// Len returns the total number of elements and tables.
func (d *Dataset) Len() int { return len(d.shared) }

// String renders a one-line-per-kind summary.
func (d *Dataset) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset with %d elements", d.Len())
	if d.backingPath != "" {
		fmt.Fprintf(&b, ", backed by %s", d.backingPath)
	}
	b.WriteString("\n")
	for _, kind := range element.Kinds {
		names := d.Names(kind)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s\n", kind, strings.Join(names, ", "))
	}
	if cs := d.CoordinateSystems(); len(cs) > 0 {
		fmt.Fprintf(&b, "  coordinate systems: %s\n", strings.Join(cs, ", "))
	}
	if external := d.ExternalBackingFiles(); len(external) > 0 {
		names := make([]string, 0, len(external))
		for name := range external {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "  not self-contained: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}
