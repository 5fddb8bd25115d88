package element

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/spatialgo/lazy"
)

// Points is a point cloud: packed float64 coordinates (possibly lazy) plus
// an index column of per-point instance identifiers.
type Points struct {
	ledgerHolder
	axes   []string
	coords *lazy.Array
	index  Column
}

// NewPoints builds and validates a point cloud. coords is a row-major
// [n][len(axes)] float64 payload; index has one identifier per point.
func NewPoints(axes []string, coords *lazy.Array, index Column) (*Points, error) {
	p := &Points{axes: axes, coords: coords, index: index}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Points) Kind() Kind { return KindPoints }

// Axes returns the spatial axis names, e.g. ("x","y").
func (p *Points) Axes() []string { return p.axes }

// NumPoints returns the point count without materializing coordinates.
func (p *Points) NumPoints() int { return p.index.Len() }

// Index returns the instance identifier column.
func (p *Points) Index() Column { return p.index }

// IndexDType is the dtype of the point index.
func (p *Points) IndexDType() DType { return p.index.DType() }

func (p *Points) BackingFiles() []string {
	if p.coords == nil {
		return nil
	}
	return p.coords.BackingFiles()
}

// CoordsArray exposes the raw coordinate payload.
func (p *Points) CoordsArray() *lazy.Array { return p.coords }

// Coordinates materializes and decodes the coordinate matrix. This is the
// only operation on points that forces the lazy payload.
func (p *Points) Coordinates(ctx context.Context) ([][]float64, error) {
	data, err := p.coords.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	d := len(p.axes)
	n := p.NumPoints()
	if len(data) < n*d*8 {
		return nil, fmt.Errorf("element: points payload has %d bytes, want %d", len(data), n*d*8)
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d)
		for j := 0; j < d; j++ {
			bits := binary.LittleEndian.Uint64(data[(i*d+j)*8:])
			row[j] = math.Float64frombits(bits)
		}
		out[i] = row
	}
	return out, nil
}

// EncodeCoords packs a coordinate matrix into the points payload format.
func EncodeCoords(coords [][]float64) []byte {
	if len(coords) == 0 {
		return nil
	}
	d := len(coords[0])
	out := make([]byte, len(coords)*d*8)
	for i, row := range coords {
		for j, v := range row {
			binary.LittleEndian.PutUint64(out[(i*d+j)*8:], math.Float64bits(v))
		}
	}
	return out
}

func (p *Points) validate() error {
	if len(p.axes) < 2 || len(p.axes) > 3 {
		return &ValidationError{Kind: KindPoints, Reason: fmt.Sprintf("points must have 2 or 3 axes, got %d", len(p.axes))}
	}
	if p.coords == nil {
		return &ValidationError{Kind: KindPoints, Reason: "points must carry a coordinate payload"}
	}
	shape := p.coords.Shape()
	if len(shape) != 2 || shape[1] != len(p.axes) {
		return &ValidationError{Kind: KindPoints, Reason: fmt.Sprintf("coords shape %v does not match %d axes", shape, len(p.axes))}
	}
	if shape[0] != p.index.Len() {
		return &ValidationError{Kind: KindPoints, Reason: fmt.Sprintf("coords declare %d points, index has %d", shape[0], p.index.Len())}
	}
	dt := p.index.DType()
	if !dt.IsInteger() && !dt.IsString() {
		return &ValidationError{Kind: KindPoints, Reason: fmt.Sprintf("index dtype must be integer or string, got %s", dt)}
	}
	return nil
}
