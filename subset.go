package spatialgo

import (
	"context"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/query"
)

// Subset builds a new dataset from the named entries. Elements are shared
// by reference. A table named explicitly is kept in full; the remaining
// tables follow opts, filtered against the selected elements. Unknown
// names are ignored.
func (d *Dataset) Subset(names []string, opts FilterOptions) (*Dataset, error) {
	out := New(WithLogger(d.logger))
	keep := map[string]struct{}{}
	forced := map[string]struct{}{}
	for _, name := range names {
		v, kind, ok := d.Lookup(name)
		if !ok {
			continue
		}
		if kind == element.KindTable {
			forced[name] = struct{}{}
			continue
		}
		out.insert(name, kind, v)
		keep[name] = struct{}{}
	}
	if err := d.copyTables(out, keep, forced, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// copyTables carries d's tables into out: force-kept tables go in full,
// the rest follow the shared filter rule against keep. A table filtered to
// zero rows is dropped, not kept empty.
func (d *Dataset) copyTables(out *Dataset, keep, forced map[string]struct{}, opts FilterOptions) error {
	var outerErr error
	d.Tables(func(name string, t *element.Table) bool {
		if _, ok := forced[name]; ok {
			out.insert(name, element.KindTable, t)
			return true
		}
		if !opts.FilterTables {
			out.insert(name, element.KindTable, t)
			return true
		}
		if t.Attrs == nil {
			if opts.IncludeOrphans {
				out.insert(name, element.KindTable, t)
			}
			return true
		}
		filtered, err := query.FilterTableByRegions(t, keep)
		if err != nil {
			outerErr = err
			return false
		}
		if filtered != nil {
			out.insert(name, element.KindTable, filtered)
		}
		return true
	})
	return outerErr
}

// QueryBoundingBox restricts every spatial element to an axis-aligned box
// in its intrinsic coordinates, then filters tables row-by-row: a row
// survives only when its instance is among the instances retained by the
// spatial cut of its region, not merely when its region name survived.
func (d *Dataset) QueryBoundingBox(ctx context.Context, box query.BoundingBox, opts FilterOptions) (*Dataset, error) {
	out := New(WithLogger(d.logger))
	surviving := map[string]*query.Instances{}
	whole := map[string]struct{}{}

	var outerErr error
	d.Elements(func(name string, e element.Element) bool {
		switch v := e.(type) {
		case *element.Points:
			cropped, inst, err := query.CropPoints(ctx, v, box.Predicate(v.Axes()))
			if err != nil {
				outerErr = err
				return false
			}
			surviving[name] = inst
			if cropped != nil {
				out.insert(name, element.KindPoints, cropped)
			}
		case *element.Shapes:
			cropped, inst, err := query.CropShapes(v, box.Predicate([]string{"x", "y"}))
			if err != nil {
				outerErr = err
				return false
			}
			surviving[name] = inst
			if cropped != nil {
				out.insert(name, element.KindShapes, cropped)
			}
		case *element.Labels:
			cropped, inst, err := query.CropLabels(ctx, v, box)
			if err != nil {
				outerErr = err
				return false
			}
			surviving[name] = inst
			if cropped != nil {
				out.insert(name, element.KindLabels, cropped)
			}
		case *element.Image:
			cropped, err := query.CropImage(ctx, v, box)
			if err != nil {
				outerErr = err
				return false
			}
			if cropped != nil {
				// images carry no per-instance identity to cut by
				out.insert(name, element.KindImage, cropped)
				whole[name] = struct{}{}
			}
		}
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}

	return out, d.copyTablesByInstances(out, surviving, whole, opts)
}

// QueryPredicate is QueryBoundingBox generalized to an arbitrary point
// predicate (e.g. polygon containment supplied by the caller). Rasters are
// kept whole: predicate cuts only apply to vector elements.
func (d *Dataset) QueryPredicate(ctx context.Context, pred query.Predicate, opts FilterOptions) (*Dataset, error) {
	out := New(WithLogger(d.logger))
	surviving := map[string]*query.Instances{}
	whole := map[string]struct{}{}

	var outerErr error
	d.Elements(func(name string, e element.Element) bool {
		switch v := e.(type) {
		case *element.Points:
			cropped, inst, err := query.CropPoints(ctx, v, pred)
			if err != nil {
				outerErr = err
				return false
			}
			surviving[name] = inst
			if cropped != nil {
				out.insert(name, element.KindPoints, cropped)
			}
		case *element.Shapes:
			cropped, inst, err := query.CropShapes(v, pred)
			if err != nil {
				outerErr = err
				return false
			}
			surviving[name] = inst
			if cropped != nil {
				out.insert(name, element.KindShapes, cropped)
			}
		default:
			out.insert(name, d.shared[name], v)
			whole[name] = struct{}{}
		}
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}

	return out, d.copyTablesByInstances(out, surviving, whole, opts)
}

// copyTablesByInstances is the instance-level variant of copyTables used
// by spatial queries. Elements without a spatial cut (whole rasters in
// predicate queries) pass their rows through by region name.
func (d *Dataset) copyTablesByInstances(out *Dataset, surviving map[string]*query.Instances, whole map[string]struct{}, opts FilterOptions) error {
	var outerErr error
	d.Tables(func(name string, t *element.Table) bool {
		if !opts.FilterTables {
			out.insert(name, element.KindTable, t)
			return true
		}
		if t.Attrs == nil {
			if opts.IncludeOrphans {
				out.insert(name, element.KindTable, t)
			}
			return true
		}
		filtered, err := query.FilterTableByInstances(t, surviving, whole)
		if err != nil {
			outerErr = err
			return false
		}
		if filtered != nil {
			out.insert(name, element.KindTable, filtered)
		}
		return true
	})
	return outerErr
}
