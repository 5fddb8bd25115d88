package store

import (
	"strconv"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/transform"
)

// elementAttrs is the attrs.json wire form shared by all element kinds.
// Fields irrelevant to a kind stay empty and are omitted.
type elementAttrs struct {
	Kind       string           `json:"kind"`
	Transforms transform.Ledger `json:"transforms"`

	// raster
	Axes       []string `json:"axes,omitempty"`
	DType      string   `json:"dtype,omitempty"`
	Shapes     [][]int  `json:"shapes,omitempty"`
	Compressor string   `json:"compressor,omitempty"`

	// points
	NumPoints  int    `json:"num_points,omitempty"`
	IndexDType string `json:"index_dtype,omitempty"`

	// tables
	NRows       int      `json:"nrows,omitempty"`
	Region      []string `json:"region,omitempty"`
	RegionKey   string   `json:"region_key,omitempty"`
	InstanceKey string   `json:"instance_key,omitempty"`
}

// scaleKey names the payload file of a raster pyramid level.
func scaleKey(level int, comp Compressor) string {
	name := "scale" + strconv.Itoa(level) + ".bin"
	if comp != nil && comp.Name() != "none" {
		name += "." + comp.Name()
	}
	return name
}

const (
	coordsFile  = "coords.bin"
	columnsFile = "columns.json"
	geomsFile   = "geoms.json"
)

// columnsWire carries a table's or index's columns in insertion order.
type columnsWire struct {
	Names   []string         `json:"names"`
	Columns []element.Column `json:"columns"`
}

// geomsWire carries a shapes element's geometries plus its instance index.
type geomsWire struct {
	Geometries []element.Geometry `json:"geometries"`
	Index      element.Column     `json:"index"`
}
