package query

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/spatialgo/element"
)

// Instances is the set of instance identifiers surviving a spatial cut of
// one element. Integer identifiers go into a compressed bitmap; string
// identifiers into a plain set.
type Instances struct {
	ints *roaring64.Bitmap
	strs map[string]struct{}
}

// NewInstances returns an empty instance set.
func NewInstances() *Instances {
	return &Instances{ints: roaring64.New()}
}

// Add records an integer identifier.
func (s *Instances) Add(id uint64) { s.ints.Add(id) }

// AddString records a string identifier.
func (s *Instances) AddString(id string) {
	if s.strs == nil {
		s.strs = make(map[string]struct{})
	}
	s.strs[id] = struct{}{}
}

// AddColumnValue records the identifier at row i of an index column.
func (s *Instances) AddColumnValue(col element.Column, i int) {
	if u, ok := col.Uint64At(i); ok {
		s.Add(u)
		return
	}
	s.AddString(col.StringAt(i))
}

// ContainsColumnValue reports whether row i's identifier is in the set.
func (s *Instances) ContainsColumnValue(col element.Column, i int) bool {
	if u, ok := col.Uint64At(i); ok {
		return s.ints.Contains(u)
	}
	_, ok := s.strs[col.StringAt(i)]
	return ok
}

// Len returns the number of identifiers in the set.
func (s *Instances) Len() int {
	return int(s.ints.GetCardinality()) + len(s.strs)
}

// Empty reports whether no identifier survived.
func (s *Instances) Empty() bool { return s.Len() == 0 }
