package spatialgo

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/transform"
)

// CoordinateSystems returns the sorted union of the coordinate systems of
// every spatial element. Tables carry no ledger and contribute nothing.
func (d *Dataset) CoordinateSystems() []string {
	seen := map[string]struct{}{}
	d.Elements(func(_ string, e element.Element) bool {
		for cs := range e.Transforms() {
			seen[cs] = struct{}{}
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for cs := range seen {
		names = append(names, cs)
	}
	sort.Strings(names)
	return names
}

// RenameCoordinateSystems renames coordinate systems across every element's
// ledger. Swaps (A→B, B→A in one call) are legal; renaming onto a live name
// that is not itself renamed away fails before anything is touched.
func (d *Dataset) RenameCoordinateSystems(mapping map[string]string) error {
	existing := map[string]struct{}{}
	for _, cs := range d.CoordinateSystems() {
		existing[cs] = struct{}{}
	}
	for old := range mapping {
		if _, ok := existing[old]; !ok {
			return &UnknownCoordinateSystemError{Name: old}
		}
	}
	targets := map[string]struct{}{}
	for old, next := range mapping {
		if _, dup := targets[next]; dup {
			return &NameCollisionError{Name: next}
		}
		targets[next] = struct{}{}
		if next == old {
			continue
		}
		_, live := existing[next]
		_, renamedAway := mapping[next]
		if live && !renamedAway {
			return &NameCollisionError{Name: next}
		}
	}

	// Two-phase per element: park renamed entries under suffixed keys so a
	// swap never clobbers an entry mid-rename, then strip the suffixes and
	// swap in the rebuilt ledger.
	suffix := "-" + uuid.NewString()
	d.Elements(func(_ string, e element.Element) bool {
		ledger := e.Transforms()
		scratch := make(transform.Ledger, len(ledger))
		for cs, t := range ledger {
			if next, ok := mapping[cs]; ok {
				scratch[next+suffix] = t
			} else {
				scratch[cs] = t
			}
		}
		final := make(transform.Ledger, len(scratch))
		for cs, t := range scratch {
			final[strings.TrimSuffix(cs, suffix)] = t
		}
		e.SetTransforms(final)
		return true
	})
	return nil
}

// FilterOptions tunes how tables follow an element filter.
type FilterOptions struct {
	// FilterTables drops or row-filters tables against the surviving
	// elements. When false, every table is kept in full.
	FilterTables bool
	// IncludeOrphans keeps tables without annotation metadata.
	IncludeOrphans bool
}

// DefaultFilterOptions filters tables and drops orphans.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{FilterTables: true}
}

// FilterByCoordinateSystem builds a new dataset from the elements having at
// least one of the requested coordinate systems in their ledger. Elements
// are shared by reference. Tables follow per opts, filtered against the
// names of the surviving elements.
func (d *Dataset) FilterByCoordinateSystem(names []string, opts FilterOptions) (*Dataset, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	out := New(WithLogger(d.logger))
	keep := map[string]struct{}{}
	d.Elements(func(name string, e element.Element) bool {
		for cs := range e.Transforms() {
			if _, ok := want[cs]; ok {
				out.insert(name, d.shared[name], e)
				keep[name] = struct{}{}
				break
			}
		}
		return true
	})

	if err := d.copyTables(out, keep, nil, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// TransformBetween composes the transform from one coordinate system to
// another by searching the bipartite graph of elements and coordinate
// systems. Fails when either side is unknown or no path exists.
func (d *Dataset) TransformBetween(sourceCS, targetCS string) (transform.Transform, error) {
	if sourceCS == targetCS {
		return transform.Identity{}, nil
	}

	// nodes: "cs:<name>" and "el:<name>"; edges element→cs carry the
	// ledger entry, cs→element its inverse.
	type edge struct {
		to string
		t  transform.Transform
	}
	adj := map[string][]edge{}
	known := map[string]struct{}{}
	var buildErr error
	d.Elements(func(name string, e element.Element) bool {
		for cs, t := range e.Transforms() {
			known[cs] = struct{}{}
			inv, err := t.Inverse()
			if err != nil {
				buildErr = err
				return false
			}
			adj["el:"+name] = append(adj["el:"+name], edge{to: "cs:" + cs, t: t})
			adj["cs:"+cs] = append(adj["cs:"+cs], edge{to: "el:" + name, t: inv})
		}
		return true
	})
	if buildErr != nil {
		return nil, buildErr
	}
	if _, ok := known[sourceCS]; !ok {
		return nil, &UnknownCoordinateSystemError{Name: sourceCS}
	}
	if _, ok := known[targetCS]; !ok {
		return nil, &UnknownCoordinateSystemError{Name: targetCS}
	}

	start, goal := "cs:"+sourceCS, "cs:"+targetCS
	type state struct {
		node string
		path []transform.Transform
	}
	visited := map[string]struct{}{start: {}}
	queue := []state{{node: start}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.node == goal {
			return transform.Simplify(transform.Compose(cur.path...)), nil
		}
		for _, e := range adj[cur.node] {
			if _, ok := visited[e.to]; ok {
				continue
			}
			visited[e.to] = struct{}{}
			path := make([]transform.Transform, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			queue = append(queue, state{node: e.to, path: append(path, e.t)})
		}
	}
	return nil, &UnknownCoordinateSystemError{Name: targetCS}
}

// TransformElementTo maps an element into targetCS.
//
// Without maintainPositioning the geometric content is baked into the
// target frame and the ledger collapses to targetCS alone. With it, the
// content is transformed but every ledger entry gains the corrective
// inverse, so the element's apparent position in the systems it was
// already registered in is unchanged. Raster payloads are never resampled;
// for them the mapping lives entirely in the ledger.
func (d *Dataset) TransformElementTo(ctx context.Context, name, targetCS string, maintainPositioning bool) (element.Element, error) {
	e, err := d.Element(name)
	if err != nil {
		return nil, err
	}
	t, err := d.elementToCS(e, targetCS)
	if err != nil {
		return nil, err
	}
	return applyTransform(ctx, e, t, targetCS, maintainPositioning)
}

// elementToCS resolves the element's transform into targetCS, using its
// own ledger entry when present, else a two-hop route through any of its
// coordinate systems.
func (d *Dataset) elementToCS(e element.Element, targetCS string) (transform.Transform, error) {
	ledger := e.Transforms()
	if t, ok := ledger[targetCS]; ok {
		return t, nil
	}
	for cs, t := range ledger {
		rest, err := d.TransformBetween(cs, targetCS)
		if err != nil {
			continue
		}
		return transform.Simplify(transform.Compose(t, rest)), nil
	}
	return nil, &UnknownCoordinateSystemError{Name: targetCS}
}

// TransformTo maps every element into targetCS: the dataset is first
// filtered to the elements reaching targetCS (tables kept in full), then
// each element is transformed. The result is a new dataset sharing the
// original tables.
func (d *Dataset) TransformTo(ctx context.Context, targetCS string, maintainPositioning bool) (*Dataset, error) {
	filtered, err := d.FilterByCoordinateSystem([]string{targetCS}, FilterOptions{FilterTables: false})
	if err != nil {
		return nil, err
	}
	out := New(WithLogger(d.logger))
	for _, name := range filtered.ElementNames() {
		e, err := filtered.TransformElementTo(ctx, name, targetCS, maintainPositioning)
		if err != nil {
			return nil, err
		}
		out.insert(name, filtered.shared[name], e)
	}
	filtered.Tables(func(name string, t *element.Table) bool {
		out.insert(name, element.KindTable, t)
		return true
	})
	return out, nil
}
