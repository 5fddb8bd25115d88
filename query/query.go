// Package query implements spatial restriction of elements and the table
// filter rules shared by subsetting and spatial queries.
//
// Spatial cuts run in an element's intrinsic coordinates; callers wanting a
// cut in another coordinate system transform the element there first. A cut
// yields the restricted element plus the set of instance identifiers that
// survived, so tables can be filtered row-by-row rather than only by
// element name.
package query

import (
	"context"

	"github.com/hupe1980/spatialgo/element"
)

// Predicate decides whether a point, given in intrinsic coordinates,
// survives a spatial cut. Polygon and other non-rectangular cuts are
// expressed as predicates by the caller.
type Predicate func(p []float64) bool

// BoundingBox is an axis-aligned box keyed by axis name. Axes without an
// entry are unconstrained.
type BoundingBox struct {
	Bounds map[string][2]float64
}

// NewBoundingBox builds a box from interleaved axis, min, max triples.
func NewBoundingBox() BoundingBox {
	return BoundingBox{Bounds: make(map[string][2]float64)}
}

// With constrains an axis and returns the box for chaining.
func (b BoundingBox) With(axis string, min, max float64) BoundingBox {
	b.Bounds[axis] = [2]float64{min, max}
	return b
}

// Contains reports whether p, laid out per axes, is inside the box.
func (b BoundingBox) Contains(axes []string, p []float64) bool {
	for i, axis := range axes {
		r, ok := b.Bounds[axis]
		if !ok {
			continue
		}
		if p[i] < r[0] || p[i] > r[1] {
			return false
		}
	}
	return true
}

// Predicate binds the box to an axis layout.
func (b BoundingBox) Predicate(axes []string) Predicate {
	return func(p []float64) bool { return b.Contains(axes, p) }
}

// CropPoints restricts a point cloud to the points satisfying pred. The
// result is nil when no point survives.
func CropPoints(ctx context.Context, p *element.Points, pred Predicate) (*element.Points, *Instances, error) {
	coords, err := p.Coordinates(ctx)
	if err != nil {
		return nil, nil, err
	}
	surviving := NewInstances()
	var keep []int
	var kept [][]float64
	for i, row := range coords {
		if !pred(row) {
			continue
		}
		keep = append(keep, i)
		kept = append(kept, row)
		surviving.AddColumnValue(p.Index(), i)
	}
	if len(keep) == 0 {
		return nil, surviving, nil
	}
	out, err := element.NewPoints(
		p.Axes(),
		// materialized: a cropped cloud no longer depends on backing files
		newInMemoryCoords(kept),
		p.Index().Filter(keep),
	)
	if err != nil {
		return nil, nil, err
	}
	out.SetTransforms(p.Transforms().Clone())
	return out, surviving, nil
}

// CropShapes restricts a shape collection to the shapes whose centroid
// satisfies pred. The result is nil when no shape survives.
func CropShapes(sh *element.Shapes, pred Predicate) (*element.Shapes, *Instances, error) {
	surviving := NewInstances()
	var keep []int
	var kept []element.Geometry
	for i, g := range sh.Geometries() {
		c := g.Centroid()
		if c == nil || !pred(c) {
			continue
		}
		keep = append(keep, i)
		kept = append(kept, g)
		surviving.AddColumnValue(sh.Index(), i)
	}
	if len(keep) == 0 {
		return nil, surviving, nil
	}
	out, err := element.NewShapes(kept, sh.Index().Filter(keep))
	if err != nil {
		return nil, nil, err
	}
	out.SetTransforms(sh.Transforms().Clone())
	return out, surviving, nil
}

// FilterTableByRegions applies the name-level filter rule: rows whose
// region-key value is outside keep are dropped; a table reduced to zero
// rows comes back nil.
func FilterTableByRegions(t *element.Table, keep map[string]struct{}) (*element.Table, error) {
	if t.Attrs == nil {
		return t, nil
	}
	regionCol, err := t.RegionKeyColumn()
	if err != nil {
		return nil, err
	}
	var rows []int
	for i := 0; i < t.NRows(); i++ {
		if _, ok := keep[regionCol.StringAt(i)]; ok {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) == t.NRows() && regionsWithin(t.Attrs.Region, keep) {
		return t, nil
	}
	out := t.Filter(rows)
	restrictRegions(out, keep)
	return out, nil
}

// regionsWithin reports whether every declared region is in keep.
func regionsWithin(region []string, keep map[string]struct{}) bool {
	for _, r := range region {
		if _, ok := keep[r]; !ok {
			return false
		}
	}
	return true
}

// FilterTableByInstances applies the instance-level filter rule used by
// spatial queries: a row survives only if its instance identifier is among
// the identifiers retained by the spatial cut of its region. Regions in
// whole were not cut, and their rows pass through by name.
func FilterTableByInstances(t *element.Table, surviving map[string]*Instances, whole map[string]struct{}) (*element.Table, error) {
	if t.Attrs == nil {
		return t, nil
	}
	regionCol, err := t.RegionKeyColumn()
	if err != nil {
		return nil, err
	}
	instCol, err := t.InstanceKeyColumn()
	if err != nil {
		return nil, err
	}
	var rows []int
	keepNames := make(map[string]struct{}, len(surviving))
	for i := 0; i < t.NRows(); i++ {
		region := regionCol.StringAt(i)
		if _, ok := whole[region]; !ok {
			set, ok := surviving[region]
			if !ok || !set.ContainsColumnValue(instCol, i) {
				continue
			}
		}
		rows = append(rows, i)
		keepNames[region] = struct{}{}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := t.Filter(rows)
	restrictRegions(out, keepNames)
	return out, nil
}

// restrictRegions drops declared regions that no longer have any rows or
// surviving element. The declared set must stay a superset of the
// region-key column's values, never of dropped elements.
func restrictRegions(t *element.Table, keep map[string]struct{}) {
	if t.Attrs == nil {
		return
	}
	var region []string
	for _, r := range t.Attrs.Region {
		if _, ok := keep[r]; ok {
			region = append(region, r)
		}
	}
	t.Attrs.Region = region
}
