package store

import (
	"context"
	"fmt"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
	"github.com/hupe1980/spatialgo/transform"
)

// ReadElement loads <kind>/<name>. Raster and point payloads come back
// lazy: nothing heavy is fetched until the payload is materialized.
func (s *Store) ReadElement(ctx context.Context, kind element.Kind, name string) (element.Value, error) {
	g := s.Group(kind.String(), name)
	var attrs elementAttrs
	if err := g.ReadAttrs(ctx, &attrs); err != nil {
		return nil, fmt.Errorf("store: read attrs of %s/%s: %w", kind, name, err)
	}
	if attrs.Kind != kind.String() {
		return nil, fmt.Errorf("store: group %s declares kind %q, want %q", g.Key(), attrs.Kind, kind)
	}
	switch kind {
	case element.KindImage, element.KindLabels:
		return s.readRaster(g, kind, attrs)
	case element.KindPoints:
		return s.readPoints(ctx, g, attrs)
	case element.KindShapes:
		return s.readShapes(ctx, g, attrs)
	case element.KindTable:
		return s.readTable(ctx, g, attrs)
	default:
		return nil, fmt.Errorf("store: unknown kind %q", kind)
	}
}

// payloadSource defers a single compressed payload file of a group.
func (g *Group) payloadSource(name string, comp Compressor) lazy.Source {
	var files []string
	if p := g.localPayloadPath(name); p != "" {
		files = []string{p}
	}
	return lazy.FuncSource{
		Files: files,
		Fn: func(ctx context.Context) ([]byte, error) {
			packed, err := g.get(ctx, name)
			if err != nil {
				return nil, err
			}
			return comp.Decompress(packed)
		},
	}
}

func (s *Store) readRaster(g *Group, kind element.Kind, attrs elementAttrs) (element.Value, error) {
	dtype, err := element.ParseDType(attrs.DType)
	if err != nil {
		return nil, err
	}
	comp, ok := CompressorByName(attrs.Compressor)
	if !ok {
		return nil, fmt.Errorf("store: unknown compressor %q in group %s", attrs.Compressor, g.Key())
	}
	scales := make([]*lazy.Array, len(attrs.Shapes))
	for i, shape := range attrs.Shapes {
		scales[i] = lazy.NewArrayFromSource(shape, g.payloadSource(scaleKey(i, comp), comp))
	}
	var v element.Element
	switch kind {
	case element.KindImage:
		v, err = element.NewImage(attrs.Axes, dtype, scales...)
	default:
		v, err = element.NewLabels(attrs.Axes, dtype, scales...)
	}
	if err != nil {
		return nil, err
	}
	v.SetTransforms(ledgerOrEmpty(attrs.Transforms))
	return v, nil
}

func (s *Store) readPoints(ctx context.Context, g *Group, attrs elementAttrs) (element.Value, error) {
	var wire columnsWire
	data, err := g.get(ctx, columnsFile)
	if err != nil {
		return nil, err
	}
	if err := s.codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if len(wire.Columns) != 1 {
		return nil, fmt.Errorf("store: points group %s has %d index columns, want 1", g.Key(), len(wire.Columns))
	}
	coords := lazy.NewArrayFromSource(
		[]int{attrs.NumPoints, len(attrs.Axes)},
		g.payloadSource(coordsFile, None{}),
	)
	p, err := element.NewPoints(attrs.Axes, coords, wire.Columns[0])
	if err != nil {
		return nil, err
	}
	p.SetTransforms(ledgerOrEmpty(attrs.Transforms))
	return p, nil
}

func (s *Store) readShapes(ctx context.Context, g *Group, attrs elementAttrs) (element.Value, error) {
	data, err := g.get(ctx, geomsFile)
	if err != nil {
		return nil, err
	}
	var wire geomsWire
	if err := s.codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	sh, err := element.NewShapes(wire.Geometries, wire.Index)
	if err != nil {
		return nil, err
	}
	sh.SetTransforms(ledgerOrEmpty(attrs.Transforms))
	return sh, nil
}

func (s *Store) readTable(ctx context.Context, g *Group, attrs elementAttrs) (element.Value, error) {
	data, err := g.get(ctx, columnsFile)
	if err != nil {
		return nil, err
	}
	var wire columnsWire
	if err := s.codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if len(wire.Names) != len(wire.Columns) {
		return nil, fmt.Errorf("store: table group %s has %d names for %d columns", g.Key(), len(wire.Names), len(wire.Columns))
	}
	cols := make(map[string]element.Column, len(wire.Names))
	for i, name := range wire.Names {
		cols[name] = wire.Columns[i]
	}
	t, err := element.NewTable(cols)
	if err != nil {
		return nil, err
	}
	if attrs.RegionKey != "" || attrs.InstanceKey != "" || len(attrs.Region) > 0 {
		t.Attrs = &element.Attrs{
			Region:      attrs.Region,
			RegionKey:   attrs.RegionKey,
			InstanceKey: attrs.InstanceKey,
		}
	}
	return t, nil
}

func ledgerOrEmpty(l transform.Ledger) transform.Ledger {
	if l == nil {
		return transform.Ledger{}
	}
	return l
}
