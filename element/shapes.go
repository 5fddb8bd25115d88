package element

import "fmt"

// GeomType discriminates shape geometries.
type GeomType uint8

const (
	// GeomInvalid represents an invalid geometry.
	GeomInvalid GeomType = iota
	// GeomCircle is a center plus radius.
	GeomCircle
	// GeomPolygon is a closed ring of vertices.
	GeomPolygon
)

// String returns the stable name used in persisted geometries.
func (t GeomType) String() string {
	switch t {
	case GeomCircle:
		return "circle"
	case GeomPolygon:
		return "polygon"
	default:
		return "invalid"
	}
}

// Geometry is a single vector shape. The geometric math applied to it
// (intersection, containment) lives outside this package.
type Geometry struct {
	Type   GeomType    `json:"type"`
	Center []float64   `json:"center,omitempty"`
	Radius float64     `json:"radius,omitempty"`
	Ring   [][]float64 `json:"ring,omitempty"`
}

// Centroid returns a representative point for spatial filtering.
func (g Geometry) Centroid() []float64 {
	if g.Type == GeomCircle {
		return g.Center
	}
	if len(g.Ring) == 0 {
		return nil
	}
	out := make([]float64, len(g.Ring[0]))
	for _, v := range g.Ring {
		for i := range out {
			out[i] += v[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(g.Ring))
	}
	return out
}

// Shapes is a vector shape collection with per-shape instance identifiers.
// Shapes are always in-memory, so they are always self-contained.
type Shapes struct {
	ledgerHolder
	geoms []Geometry
	index Column
}

// NewShapes builds and validates a shape collection.
func NewShapes(geoms []Geometry, index Column) (*Shapes, error) {
	s := &Shapes{geoms: geoms, index: index}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shapes) Kind() Kind { return KindShapes }

// Geometries returns the shape list.
func (s *Shapes) Geometries() []Geometry { return s.geoms }

// Index returns the instance identifier column.
func (s *Shapes) Index() Column { return s.index }

// IndexDType is the dtype of the shape index.
func (s *Shapes) IndexDType() DType { return s.index.DType() }

// BackingFiles is always empty: shapes are in-memory.
func (s *Shapes) BackingFiles() []string { return nil }

func (s *Shapes) validate() error {
	if len(s.geoms) != s.index.Len() {
		return &ValidationError{Kind: KindShapes, Reason: fmt.Sprintf("%d geometries but index has %d entries", len(s.geoms), s.index.Len())}
	}
	for i, g := range s.geoms {
		switch g.Type {
		case GeomCircle:
			if len(g.Center) != 2 || g.Radius <= 0 {
				return &ValidationError{Kind: KindShapes, Reason: fmt.Sprintf("geometry %d: circle needs a 2D center and positive radius", i)}
			}
		case GeomPolygon:
			if len(g.Ring) < 3 {
				return &ValidationError{Kind: KindShapes, Reason: fmt.Sprintf("geometry %d: polygon needs at least 3 vertices", i)}
			}
		default:
			return &ValidationError{Kind: KindShapes, Reason: fmt.Sprintf("geometry %d: unknown type", i)}
		}
	}
	dt := s.index.DType()
	if !dt.IsInteger() && !dt.IsString() {
		return &ValidationError{Kind: KindShapes, Reason: fmt.Sprintf("index dtype must be integer or string, got %s", dt)}
	}
	return nil
}
