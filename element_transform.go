package spatialgo

import (
	"context"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
	"github.com/hupe1980/spatialgo/transform"
)

// applyTransform maps an element's content into the target frame.
//
// Point and shape coordinates are rewritten. Raster payloads are never
// resampled: their mapping into the target stays in the ledger, so a
// non-positioning raster transform keeps t as its sole ledger entry rather
// than collapsing to identity.
func applyTransform(ctx context.Context, e element.Element, t transform.Transform, targetCS string, maintainPositioning bool) (element.Element, error) {
	switch v := e.(type) {
	case *element.Points:
		coords, err := v.Coordinates(ctx)
		if err != nil {
			return nil, err
		}
		moved := make([][]float64, len(coords))
		for i, row := range coords {
			out, err := t.Apply(row)
			if err != nil {
				return nil, err
			}
			moved[i] = out
		}
		shape := []int{len(moved), len(v.Axes())}
		next, err := element.NewPoints(v.Axes(), lazy.NewArray(shape, element.EncodeCoords(moved)), v.Index())
		if err != nil {
			return nil, err
		}
		ledger, err := movedLedger(v.Transforms(), t, targetCS, maintainPositioning)
		if err != nil {
			return nil, err
		}
		next.SetTransforms(ledger)
		return next, nil

	case *element.Shapes:
		moved := make([]element.Geometry, len(v.Geometries()))
		for i, g := range v.Geometries() {
			out, err := transformGeometry(g, t)
			if err != nil {
				return nil, err
			}
			moved[i] = out
		}
		next, err := element.NewShapes(moved, v.Index())
		if err != nil {
			return nil, err
		}
		ledger, err := movedLedger(v.Transforms(), t, targetCS, maintainPositioning)
		if err != nil {
			return nil, err
		}
		next.SetTransforms(ledger)
		return next, nil

	case *element.Image:
		if maintainPositioning {
			return v, nil
		}
		// raster payloads are not resampled, the ledger carries the mapping
		next, err := element.NewImage(v.Axes(), v.DType(), v.Scales()...)
		if err != nil {
			return nil, err
		}
		next.SetTransforms(transform.Ledger{targetCS: t})
		return next, nil

	case *element.Labels:
		if maintainPositioning {
			return v, nil
		}
		next, err := element.NewLabels(v.Axes(), v.DType(), v.Scales()...)
		if err != nil {
			return nil, err
		}
		next.SetTransforms(transform.Ledger{targetCS: t})
		return next, nil

	default:
		return nil, &element.UnknownSchemaError{Value: e}
	}
}

// movedLedger rebuilds a ledger after the content was moved by t. Without
// positioning the history is discardable and only the target survives,
// mapped by identity. With positioning every entry gains the corrective
// inverse so the apparent position is unchanged.
func movedLedger(old transform.Ledger, t transform.Transform, targetCS string, maintainPositioning bool) (transform.Ledger, error) {
	if !maintainPositioning {
		return transform.Ledger{targetCS: transform.Identity{}}, nil
	}
	inv, err := t.Inverse()
	if err != nil {
		return nil, err
	}
	next := make(transform.Ledger, len(old)+1)
	for cs, o := range old {
		next[cs] = transform.Simplify(transform.Compose(inv, o))
	}
	next[targetCS] = transform.Simplify(transform.Compose(inv, t))
	return next, nil
}

// transformGeometry moves a geometry's vertices. Circle radii are kept:
// anisotropic scaling of circles is out of scope for the geometry model.
func transformGeometry(g element.Geometry, t transform.Transform) (element.Geometry, error) {
	out := element.Geometry{Type: g.Type, Radius: g.Radius}
	if g.Center != nil {
		c, err := t.Apply(g.Center)
		if err != nil {
			return element.Geometry{}, err
		}
		out.Center = c
	}
	if g.Ring != nil {
		ring := make([][]float64, len(g.Ring))
		for i, v := range g.Ring {
			p, err := t.Apply(v)
			if err != nil {
				return element.Geometry{}, err
			}
			ring[i] = p
		}
		out.Ring = ring
	}
	return out, nil
}
