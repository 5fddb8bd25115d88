// Package element defines the closed set of spatial element kinds held by a
// dataset: raster images, raster label maps, point clouds, vector shapes and
// annotation tables.
//
// Elements are created through validating constructors and classified by
// their schema (ModelOf) when entering a dataset. Each spatial element
// carries its own transform ledger; tables carry annotation metadata
// instead.
package element

import "github.com/hupe1980/spatialgo/transform"

// Kind discriminates the element variants. The set is closed and small;
// downstream dispatch (serialization, transformation, dtype extraction)
// differs per kind.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindImage is a raster image.
	KindImage
	// KindLabels is a raster label map.
	KindLabels
	// KindPoints is a point cloud.
	KindPoints
	// KindShapes is a vector shape collection.
	KindShapes
	// KindTable is an annotation table.
	KindTable
)

// String returns the plural group name used in the store layout.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "images"
	case KindLabels:
		return "labels"
	case KindPoints:
		return "points"
	case KindShapes:
		return "shapes"
	case KindTable:
		return "tables"
	default:
		return "invalid"
	}
}

// Kinds lists the element kinds in store-layout order.
var Kinds = []Kind{KindImage, KindLabels, KindPoints, KindShapes, KindTable}

// SpatialKinds lists the kinds that carry a transform ledger.
var SpatialKinds = []Kind{KindImage, KindLabels, KindPoints, KindShapes}

// Value is anything a dataset registry can hold.
type Value interface {
	Kind() Kind
}

// Element is a spatial element: it maps into coordinate systems via its
// transform ledger and exposes the identifier domain a table row would use
// to reference one of its instances.
type Element interface {
	Value
	// Transforms returns the element's ledger. The returned map is the live
	// ledger; mutations are visible to the element.
	Transforms() transform.Ledger
	// SetTransforms atomically replaces the ledger reference.
	SetTransforms(l transform.Ledger)
	// IndexDType is the dtype of the element's instance identifiers:
	// the pixel dtype for rasters, the index dtype for points and shapes.
	IndexDType() DType
	// BackingFiles lists the files lazily backing the element's payload.
	BackingFiles() []string
}

// ledgerHolder is embedded by every spatial element.
type ledgerHolder struct {
	ledger transform.Ledger
}

func (h *ledgerHolder) Transforms() transform.Ledger {
	if h.ledger == nil {
		h.ledger = transform.Ledger{}
	}
	return h.ledger
}

func (h *ledgerHolder) SetTransforms(l transform.Ledger) { h.ledger = l }
