package spatialgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/query"
)

func newSubsetFixture(t *testing.T) *Dataset {
	t.Helper()
	ds := New(WithLogger(NoopLogger()))

	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))
	require.NoError(t, ds.AddLabels("B", testLabels(t, make([]byte, 16), 4)))

	tbl := testAnnotationTable(t, []string{"A", "A", "B"}, []int64{1, 2, 1}, "A", "B")
	require.NoError(t, ds.AddTable("obs", tbl))

	orphan, err := element.NewTable(map[string]element.Column{"v": element.IntColumn(9)})
	require.NoError(t, err)
	require.NoError(t, ds.AddTable("orphan", orphan))

	return ds
}

func TestSubsetTableConsistency(t *testing.T) {
	ds := newSubsetFixture(t)

	out, err := ds.Subset([]string{"A"}, DefaultFilterOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, out.ElementNames())
	require.Equal(t, []string{"obs"}, out.TableNames())

	// every region value of the filtered table is within the keep-set
	got, _ := out.Table("obs")
	assert.Equal(t, 2, got.NRows())
	assert.Equal(t, []string{"A"}, got.Attrs.Region)

	// the source table is untouched
	src, _ := ds.Table("obs")
	assert.Equal(t, 3, src.NRows())
}

func TestSubsetOrphanTables(t *testing.T) {
	ds := newSubsetFixture(t)

	out, err := ds.Subset([]string{"A"}, DefaultFilterOptions())
	require.NoError(t, err)
	assert.NotContains(t, out.TableNames(), "orphan")

	out, err = ds.Subset([]string{"A"}, FilterOptions{FilterTables: true, IncludeOrphans: true})
	require.NoError(t, err)
	assert.Contains(t, out.TableNames(), "orphan")
}

func TestSubsetForcedTableKeptInFull(t *testing.T) {
	ds := newSubsetFixture(t)

	// naming the table keeps it whole even though B is not selected
	out, err := ds.Subset([]string{"A", "obs"}, DefaultFilterOptions())
	require.NoError(t, err)

	got, _ := out.Table("obs")
	assert.Equal(t, 3, got.NRows())
}

func TestSubsetUnfilteredTables(t *testing.T) {
	ds := newSubsetFixture(t)

	out, err := ds.Subset([]string{"A"}, FilterOptions{FilterTables: false})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"obs", "orphan"}, out.TableNames())

	got, _ := out.Table("obs")
	assert.Equal(t, 3, got.NRows())
}

func TestSubsetIgnoresUnknownNames(t *testing.T) {
	ds := newSubsetFixture(t)

	out, err := ds.Subset([]string{"A", "no_such_thing"}, DefaultFilterOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.ElementNames())
}

func TestQueryBoundingBox(t *testing.T) {
	ctx := context.Background()
	ds := New(WithLogger(NoopLogger()))

	// instance 1 near the origin, instance 2 far away
	require.NoError(t, ds.AddPoints("nuclei", testPoints(t, [][]float64{{1, 1}, {50, 50}}, 1, 2)))

	tbl := testAnnotationTable(t, []string{"nuclei", "nuclei"}, []int64{1, 2}, "nuclei")
	require.NoError(t, ds.AddTable("obs", tbl))

	box := query.NewBoundingBox().With("x", 0, 10).With("y", 0, 10)
	out, err := ds.QueryBoundingBox(ctx, box, DefaultFilterOptions())
	require.NoError(t, err)

	p, ok := out.Points("nuclei")
	require.True(t, ok)
	assert.Equal(t, 1, p.NumPoints())

	// the row for instance 2 is gone even though region "nuclei" survived
	got, ok := out.Table("obs")
	require.True(t, ok)
	require.Equal(t, 1, got.NRows())
	col, _ := got.Column("cell_id")
	id, _ := col.Uint64At(0)
	assert.Equal(t, uint64(1), id)
}

func TestQueryBoundingBoxDropsEmptyElements(t *testing.T) {
	ctx := context.Background()
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddPoints("nuclei", testPoints(t, [][]float64{{50, 50}}, 1)))

	tbl := testAnnotationTable(t, []string{"nuclei"}, []int64{1}, "nuclei")
	require.NoError(t, ds.AddTable("obs", tbl))

	box := query.NewBoundingBox().With("x", 0, 10).With("y", 0, 10)
	out, err := ds.QueryBoundingBox(ctx, box, DefaultFilterOptions())
	require.NoError(t, err)

	assert.Empty(t, out.ElementNames())
	assert.Empty(t, out.TableNames())
}

func TestQueryBoundingBoxLabels(t *testing.T) {
	ctx := context.Background()
	ds := New(WithLogger(NoopLogger()))

	require.NoError(t, ds.AddLabels("cells", testLabels(t, []byte{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 3, 3,
		3, 3, 3, 3,
	}, 4)))

	tbl := testAnnotationTable(t, []string{"cells", "cells", "cells"}, []int64{1, 2, 3}, "cells")
	require.NoError(t, ds.AddTable("obs", tbl))

	box := query.NewBoundingBox().With("y", 0, 1).With("x", 0, 1)
	out, err := ds.QueryBoundingBox(ctx, box, DefaultFilterOptions())
	require.NoError(t, err)

	got, ok := out.Table("obs")
	require.True(t, ok)
	require.Equal(t, 1, got.NRows())
	col, _ := got.Column("cell_id")
	id, _ := col.Uint64At(0)
	assert.Equal(t, uint64(1), id)
}

func TestQueryPredicatePolygon(t *testing.T) {
	ctx := context.Background()
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddPoints("nuclei", testPoints(t, [][]float64{{1, 1}, {9, 9}}, 1, 2)))
	require.NoError(t, ds.AddImage("scan", testImage(t)))

	// triangle (0,0) (4,0) (0,4) via a half-plane cut
	inTriangle := func(p []float64) bool {
		return p[0] >= 0 && p[1] >= 0 && p[0]+p[1] <= 4
	}

	out, err := ds.QueryPredicate(ctx, inTriangle, DefaultFilterOptions())
	require.NoError(t, err)

	p, ok := out.Points("nuclei")
	require.True(t, ok)
	assert.Equal(t, 1, p.NumPoints())

	// rasters pass through a predicate query untouched
	_, ok = out.Image("scan")
	assert.True(t, ok)
}
