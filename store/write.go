package store

import (
	"context"
	"fmt"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
	"github.com/hupe1980/spatialgo/transform"
)

// WriteElement persists v under <kind>/<name>, replacing any previous
// contents of that group and nothing else. Raster and point payloads are
// materialized here; callers must ensure any backing files are still
// readable.
func (s *Store) WriteElement(ctx context.Context, name string, v element.Value) error {
	g := s.Group(v.Kind().String(), name)
	switch e := v.(type) {
	case *element.Image:
		return s.writeRaster(ctx, g, e.Kind(), e.Axes(), e.DType(), e.Scales(), e.Transforms())
	case *element.Labels:
		return s.writeRaster(ctx, g, e.Kind(), e.Axes(), e.DType(), e.Scales(), e.Transforms())
	case *element.Points:
		return s.writePoints(ctx, g, e)
	case *element.Shapes:
		return s.writeShapes(ctx, g, e)
	case *element.Table:
		return s.writeTable(ctx, g, e)
	default:
		return &element.UnknownSchemaError{Value: v}
	}
}

// WriteElementTransforms replaces only the transforms entry of an already
// persisted element's attrs.
func (s *Store) WriteElementTransforms(ctx context.Context, kind element.Kind, name string, ledger transform.Ledger) error {
	g := s.Group(kind.String(), name)
	var attrs elementAttrs
	if err := g.ReadAttrs(ctx, &attrs); err != nil {
		return fmt.Errorf("store: read attrs of %s/%s: %w", kind, name, err)
	}
	attrs.Transforms = ledger
	return g.WriteAttrs(ctx, attrs)
}

// WriteTableAttrs replaces only the annotation metadata of a persisted table.
func (s *Store) WriteTableAttrs(ctx context.Context, name string, a *element.Attrs) error {
	g := s.Group(element.KindTable.String(), name)
	var attrs elementAttrs
	if err := g.ReadAttrs(ctx, &attrs); err != nil {
		return fmt.Errorf("store: read attrs of tables/%s: %w", name, err)
	}
	attrs.Region = nil
	attrs.RegionKey = ""
	attrs.InstanceKey = ""
	if a != nil {
		attrs.Region = a.Region
		attrs.RegionKey = a.RegionKey
		attrs.InstanceKey = a.InstanceKey
	}
	return g.WriteAttrs(ctx, attrs)
}

// DeleteElement removes the <kind>/<name> group.
func (s *Store) DeleteElement(ctx context.Context, kind element.Kind, name string) error {
	return s.backend.Delete(ctx, s.Group(kind.String(), name).Key())
}

func (s *Store) writeRaster(ctx context.Context, g *Group, kind element.Kind, axes []string, dtype element.DType, scales []*lazy.Array, ledger transform.Ledger) error {
	files := make(map[string][]byte, len(scales))
	shapes := make([][]int, len(scales))
	for i, sc := range scales {
		data, err := sc.Materialize(ctx)
		if err != nil {
			return fmt.Errorf("store: materialize scale %d: %w", i, err)
		}
		packed, err := s.comp.Compress(data)
		if err != nil {
			return fmt.Errorf("store: compress scale %d: %w", i, err)
		}
		files[scaleKey(i, s.comp)] = packed
		shapes[i] = sc.Shape()
	}
	attrs := elementAttrs{
		Kind:       kind.String(),
		Transforms: ledger,
		Axes:       axes,
		DType:      dtype.String(),
		Shapes:     shapes,
		Compressor: s.comp.Name(),
	}
	return g.writeFiles(ctx, files, attrs)
}

func (s *Store) writePoints(ctx context.Context, g *Group, p *element.Points) error {
	data, err := p.CoordsArray().Materialize(ctx)
	if err != nil {
		return fmt.Errorf("store: materialize coords: %w", err)
	}
	idx, err := s.codec.Marshal(columnsWire{Names: []string{"index"}, Columns: []element.Column{p.Index()}})
	if err != nil {
		return err
	}
	files := map[string][]byte{
		coordsFile:  data,
		columnsFile: idx,
	}
	attrs := elementAttrs{
		Kind:       element.KindPoints.String(),
		Transforms: p.Transforms(),
		Axes:       p.Axes(),
		NumPoints:  p.NumPoints(),
		IndexDType: p.IndexDType().String(),
	}
	return g.writeFiles(ctx, files, attrs)
}

func (s *Store) writeShapes(ctx context.Context, g *Group, sh *element.Shapes) error {
	geoms, err := s.codec.Marshal(geomsWire{Geometries: sh.Geometries(), Index: sh.Index()})
	if err != nil {
		return err
	}
	attrs := elementAttrs{
		Kind:       element.KindShapes.String(),
		Transforms: sh.Transforms(),
		IndexDType: sh.IndexDType().String(),
	}
	return g.writeFiles(ctx, map[string][]byte{geomsFile: geoms}, attrs)
}

func (s *Store) writeTable(ctx context.Context, g *Group, t *element.Table) error {
	wire := columnsWire{Names: t.ColumnNames()}
	for _, name := range wire.Names {
		col, _ := t.Column(name)
		wire.Columns = append(wire.Columns, col)
	}
	cols, err := s.codec.Marshal(wire)
	if err != nil {
		return err
	}
	attrs := elementAttrs{
		Kind:  element.KindTable.String(),
		NRows: t.NRows(),
	}
	if t.Attrs != nil {
		attrs.Region = t.Attrs.Region
		attrs.RegionKey = t.Attrs.RegionKey
		attrs.InstanceKey = t.Attrs.InstanceKey
	}
	return g.writeFiles(ctx, map[string][]byte{columnsFile: cols}, attrs)
}

// ElementNames lists the persisted element names under a kind group.
func (s *Store) ElementNames(ctx context.Context, kind element.Kind) ([]string, error) {
	names, err := s.Group(kind.String()).List(ctx)
	if err != nil {
		return nil, err
	}
	complete := names[:0]
	for _, n := range names {
		ok, err := s.Group(kind.String(), n).Exists(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			complete = append(complete, n)
		}
	}
	return complete, nil
}

// HasElement reports whether <kind>/<name> is a complete persisted group.
func (s *Store) HasElement(ctx context.Context, kind element.Kind, name string) (bool, error) {
	return s.Group(kind.String(), name).Exists(ctx)
}
