package element

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo/lazy"
)

func TestNewImage(t *testing.T) {
	scale0 := lazy.NewArray([]int{1, 2, 2}, make([]byte, 4))

	t.Run("valid 2d", func(t *testing.T) {
		img, err := NewImage([]string{"c", "y", "x"}, DTypeUint8, scale0)
		require.NoError(t, err)
		assert.Equal(t, KindImage, img.Kind())
		assert.Equal(t, DTypeUint8, img.IndexDType())
	})

	t.Run("bad axes", func(t *testing.T) {
		_, err := NewImage([]string{"y", "x"}, DTypeUint8, scale0)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("no scales", func(t *testing.T) {
		_, err := NewImage([]string{"c", "y", "x"}, DTypeUint8)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("rank mismatch", func(t *testing.T) {
		bad := lazy.NewArray([]int{2, 2}, make([]byte, 4))
		_, err := NewImage([]string{"c", "y", "x"}, DTypeUint8, bad)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestNewLabelsRequiresIntegerDType(t *testing.T) {
	scale0 := lazy.NewArray([]int{2, 2}, make([]byte, 16))

	_, err := NewLabels([]string{"y", "x"}, DTypeFloat32, scale0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	l, err := NewLabels([]string{"y", "x"}, DTypeUint32, scale0)
	require.NoError(t, err)
	assert.Equal(t, KindLabels, l.Kind())
}

func TestPointsRoundTrip(t *testing.T) {
	coords := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	arr := lazy.NewArray([]int{3, 2}, EncodeCoords(coords))

	p, err := NewPoints([]string{"x", "y"}, arr, IntColumn(10, 20, 30))
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumPoints())

	got, err := p.Coordinates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coords, got)
}

func TestNewPointsShapeMismatch(t *testing.T) {
	arr := lazy.NewArray([]int{2, 2}, make([]byte, 32))
	_, err := NewPoints([]string{"x", "y"}, arr, IntColumn(1, 2, 3))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNewShapes(t *testing.T) {
	geoms := []Geometry{
		{Type: GeomCircle, Center: []float64{1, 1}, Radius: 2},
		{Type: GeomPolygon, Ring: [][]float64{{0, 0}, {1, 0}, {0, 1}}},
	}

	s, err := NewShapes(geoms, IntColumn(1, 2))
	require.NoError(t, err)
	assert.Equal(t, KindShapes, s.Kind())
	assert.Empty(t, s.BackingFiles())

	_, err = NewShapes(geoms, IntColumn(1))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = NewShapes([]Geometry{{Type: GeomCircle, Center: []float64{0, 0}, Radius: -1}}, IntColumn(1))
	assert.ErrorAs(t, err, &verr)
}

func TestGeometryCentroid(t *testing.T) {
	circle := Geometry{Type: GeomCircle, Center: []float64{3, 4}, Radius: 1}
	assert.Equal(t, []float64{3, 4}, circle.Centroid())

	poly := Geometry{Type: GeomPolygon, Ring: [][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}}}
	assert.InDeltaSlice(t, []float64{1, 1}, poly.Centroid(), 1e-9)
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(map[string]Column{
		"region":  StringColumn("a", "a", "b"),
		"cell_id": IntColumn(1, 2, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NRows())
	assert.Equal(t, []string{"cell_id", "region"}, tbl.ColumnNames())

	_, err = NewTable(map[string]Column{
		"a": IntColumn(1, 2),
		"b": IntColumn(1),
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTableFilter(t *testing.T) {
	tbl, err := NewTable(map[string]Column{
		"region": StringColumn("a", "b", "a"),
		"value":  FloatColumn(1.5, 2.5, 3.5),
	})
	require.NoError(t, err)
	tbl.Attrs = &Attrs{Region: []string{"a", "b"}, RegionKey: "region", InstanceKey: "value"}

	filtered := tbl.Filter([]int{0, 2})
	assert.Equal(t, 2, filtered.NRows())

	col, ok := filtered.Column("region")
	require.True(t, ok)
	assert.Equal(t, "a", col.StringAt(0))
	assert.Equal(t, "a", col.StringAt(1))

	// filtering clones annotation metadata
	filtered.Attrs.Region = []string{"a"}
	assert.Equal(t, []string{"a", "b"}, tbl.Attrs.Region)
}

func TestColumnAccessors(t *testing.T) {
	ints := IntColumn(5, 6)
	u, ok := ints.Uint64At(1)
	require.True(t, ok)
	assert.Equal(t, uint64(6), u)

	strs := StringColumn("x", "y", "x")
	_, ok = strs.Uint64At(0)
	assert.False(t, ok)
	assert.Len(t, strs.Distinct(), 2)
}

func TestModelOf(t *testing.T) {
	scale2d := lazy.NewArray([]int{1, 2, 2}, make([]byte, 4))
	img, err := NewImage([]string{"c", "y", "x"}, DTypeUint8, scale2d)
	require.NoError(t, err)

	scale3d := lazy.NewArray([]int{1, 2, 2, 2}, make([]byte, 8))
	img3d, err := NewImage([]string{"c", "z", "y", "x"}, DTypeUint8, scale3d)
	require.NoError(t, err)

	tbl, err := NewTable(map[string]Column{"v": IntColumn(1)})
	require.NoError(t, err)

	tests := []struct {
		name     string
		value    Value
		expected Model
	}{
		{name: "image 2d", value: img, expected: ModelImage2D},
		{name: "image 3d", value: img3d, expected: ModelImage3D},
		{name: "table", value: tbl, expected: ModelTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ModelOf(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}
