package element

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Column is a typed table column. Integer widths share a single backing
// representation; the declared dtype is kept so the annotation dtype gate
// can compare identifier domains.
type Column struct {
	dtype   DType
	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
}

// IntColumn builds an int64 column.
func IntColumn(values ...int64) Column {
	return Column{dtype: DTypeInt64, ints: values}
}

// IntColumnWithDType builds an integer column with a declared width.
func IntColumnWithDType(dt DType, values []int64) (Column, error) {
	if !dt.IsInteger() {
		return Column{}, fmt.Errorf("element: dtype %s is not an integer dtype", dt)
	}
	return Column{dtype: dt, ints: values}, nil
}

// FloatColumn builds a float64 column.
func FloatColumn(values ...float64) Column {
	return Column{dtype: DTypeFloat64, floats: values}
}

// StringColumn builds a string column.
func StringColumn(values ...string) Column {
	return Column{dtype: DTypeString, strings: values}
}

// BoolColumn builds a bool column.
func BoolColumn(values ...bool) Column {
	return Column{dtype: DTypeBool, bools: values}
}

// DType returns the column's declared dtype.
func (c Column) DType() DType { return c.dtype }

// Len returns the number of rows.
func (c Column) Len() int {
	switch {
	case c.ints != nil:
		return len(c.ints)
	case c.floats != nil:
		return len(c.floats)
	case c.strings != nil:
		return len(c.strings)
	case c.bools != nil:
		return len(c.bools)
	default:
		return 0
	}
}

// StringAt formats the i-th value. Used for region-key comparisons, which
// are name-based regardless of the column dtype.
func (c Column) StringAt(i int) string {
	switch {
	case c.strings != nil:
		return c.strings[i]
	case c.ints != nil:
		return strconv.FormatInt(c.ints[i], 10)
	case c.floats != nil:
		return strconv.FormatFloat(c.floats[i], 'g', -1, 64)
	case c.bools != nil:
		return strconv.FormatBool(c.bools[i])
	default:
		return ""
	}
}

// Uint64At returns the i-th value as an instance identifier. ok is false
// for non-numeric columns and negative values.
func (c Column) Uint64At(i int) (uint64, bool) {
	if c.ints == nil {
		return 0, false
	}
	v := c.ints[i]
	if v < 0 {
		return 0, false
	}
	return uint64(v), true
}

// Int64At returns the i-th value of an integer column.
func (c Column) Int64At(i int) (int64, bool) {
	if c.ints == nil {
		return 0, false
	}
	return c.ints[i], true
}

// Distinct returns the set of distinct formatted values.
func (c Column) Distinct() map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		out[c.StringAt(i)] = struct{}{}
	}
	return out
}

// Filter returns a new column containing only the given row indices.
func (c Column) Filter(keep []int) Column {
	out := Column{dtype: c.dtype}
	switch {
	case c.ints != nil:
		out.ints = make([]int64, len(keep))
		for j, i := range keep {
			out.ints[j] = c.ints[i]
		}
	case c.floats != nil:
		out.floats = make([]float64, len(keep))
		for j, i := range keep {
			out.floats[j] = c.floats[i]
		}
	case c.strings != nil:
		out.strings = make([]string, len(keep))
		for j, i := range keep {
			out.strings[j] = c.strings[i]
		}
	case c.bools != nil:
		out.bools = make([]bool, len(keep))
		for j, i := range keep {
			out.bools[j] = c.bools[i]
		}
	}
	return out
}

// columnWire is the persisted form of a Column.
type columnWire struct {
	DType   DType     `json:"dtype"`
	Ints    []int64   `json:"ints,omitempty"`
	Floats  []float64 `json:"floats,omitempty"`
	Strings []string  `json:"strings,omitempty"`
	Bools   []bool    `json:"bools,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(columnWire{
		DType:   c.dtype,
		Ints:    c.ints,
		Floats:  c.floats,
		Strings: c.strings,
		Bools:   c.bools,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Column) UnmarshalJSON(data []byte) error {
	var w columnWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.dtype = w.DType
	c.ints = w.Ints
	c.floats = w.Floats
	c.strings = w.Strings
	c.bools = w.Bools
	return nil
}
