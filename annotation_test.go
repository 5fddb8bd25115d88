package spatialgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo/element"
)

func TestBindTableSymmetry(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))
	require.NoError(t, ds.AddLabels("B", testLabels(t, make([]byte, 16), 4)))

	t.Run("column within declared set succeeds", func(t *testing.T) {
		tbl := testAnnotationTable(t, []string{"A", "B", "A"}, []int64{1, 2, 3})
		tbl.Attrs = nil
		require.NoError(t, ds.AddTable("obs", tbl))

		require.NoError(t, ds.BindTable("obs", []string{"A", "B"}, "region", "cell_id"))
		assert.Equal(t, []string{"A", "B"}, ds.AnnotatedRegions("obs"))
	})

	t.Run("undeclared value fails and leaves metadata unchanged", func(t *testing.T) {
		tbl := testAnnotationTable(t, []string{"A", "C"}, []int64{1, 2})
		tbl.Attrs = nil
		require.NoError(t, ds.AddTable("bad", tbl))

		// C appears in the column; ds has no C either way, so declare only A
		err := ds.BindTable("bad", []string{"A"}, "region", "cell_id")
		var symErr *SymmetryError
		require.ErrorAs(t, err, &symErr)
		assert.Equal(t, "C", symErr.Value)

		got, _ := ds.Table("bad")
		assert.Nil(t, got.Attrs)
	})
}

func TestBindTableUnknownTarget(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	tbl := testAnnotationTable(t, []string{"A"}, []int64{1})
	tbl.Attrs = nil
	require.NoError(t, ds.AddTable("obs", tbl))

	err := ds.BindTable("obs", []string{"A"}, "region", "cell_id")
	var unknown *UnknownTargetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "A", unknown.Region)

	// tables are not bindable targets
	other := testAnnotationTable(t, []string{"obs"}, []int64{1})
	other.Attrs = nil
	require.NoError(t, ds.AddTable("other", other))
	err = ds.BindTable("other", []string{"obs"}, "region", "cell_id")
	assert.ErrorAs(t, err, &unknown)
}

func TestBindTableFirstBindingRequiresKeys(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))

	tbl := testAnnotationTable(t, []string{"A"}, []int64{1})
	tbl.Attrs = nil
	require.NoError(t, ds.AddTable("obs", tbl))

	assert.ErrorIs(t, ds.BindTable("obs", []string{"A"}, "region", ""), ErrMissingKeys)
	assert.ErrorIs(t, ds.BindTable("obs", []string{"A"}, "", "cell_id"), ErrMissingKeys)
}

func TestBindTableChangeReusesKeys(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))
	require.NoError(t, ds.AddLabels("B", testLabels(t, make([]byte, 16), 4)))

	tbl := testAnnotationTable(t, []string{"A"}, []int64{1}, "A")
	require.NoError(t, ds.AddTable("obs", tbl))

	// an existing binding keeps its keys when none are supplied
	require.NoError(t, ds.BindTable("obs", []string{"A", "B"}, "", ""))
	got, _ := ds.Table("obs")
	assert.Equal(t, []string{"A", "B"}, got.Attrs.Region)
	assert.Equal(t, "region", got.Attrs.RegionKey)
	assert.Equal(t, "cell_id", got.Attrs.InstanceKey)
}

func TestBindTableMissingColumn(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))

	tbl := testAnnotationTable(t, []string{"A"}, []int64{1})
	tbl.Attrs = nil
	require.NoError(t, ds.AddTable("obs", tbl))

	err := ds.BindTable("obs", []string{"A"}, "no_such_column", "cell_id")
	var verr *element.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDTypeGate(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	// uint8 pixel identifiers
	require.NoError(t, ds.AddLabels("cells", testLabels(t, make([]byte, 16), 4)))

	t.Run("string identifiers against integer pixels fail", func(t *testing.T) {
		tbl, err := element.NewTable(map[string]element.Column{
			"region":  element.StringColumn("cells"),
			"cell_id": element.StringColumn("c1"),
		})
		require.NoError(t, err)
		tbl.Attrs = &element.Attrs{Region: []string{"cells"}, RegionKey: "region", InstanceKey: "cell_id"}

		err = ds.AddTable("obs", tbl)
		var mismatch *DTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "cells", mismatch.Region)
		_, ok := ds.Table("obs")
		assert.False(t, ok)
	})

	t.Run("numeric width differences are tolerated", func(t *testing.T) {
		// int64 table identifiers against uint8 pixels
		tbl := testAnnotationTable(t, []string{"cells"}, []int64{1}, "cells")
		assert.NoError(t, ds.AddTable("obs", tbl))
	})
}

func TestAddTableRejectsMissingAnnotationColumns(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("cells", testLabels(t, make([]byte, 16), 4)))

	tbl, err := element.NewTable(map[string]element.Column{
		"region":  element.StringColumn("cells"),
		"cell_id": element.IntColumn(1),
	})
	require.NoError(t, err)
	tbl.Attrs = &element.Attrs{Region: []string{"cells"}, RegionKey: "no_such_column", InstanceKey: "cell_id"}

	// the structural fault is caught at insertion, not deferred to a query
	var verr *element.ValidationError
	require.ErrorAs(t, ds.AddTable("obs", tbl), &verr)
	assert.Equal(t, element.KindTable, verr.Kind)
	_, ok := ds.Table("obs")
	assert.False(t, ok)
}

func TestReferentialMismatchIsNonFatal(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))

	// the table points at an element the dataset does not hold
	tbl := testAnnotationTable(t, []string{"ghost"}, []int64{1}, "ghost")
	require.NoError(t, ds.AddTable("obs", tbl))

	got, ok := ds.Table("obs")
	require.True(t, ok)
	assert.Equal(t, []string{"ghost"}, got.Attrs.Region)
}

func TestTablesAnnotating(t *testing.T) {
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddLabels("A", testLabels(t, make([]byte, 16), 4)))

	tbl := testAnnotationTable(t, []string{"A"}, []int64{1}, "A")
	require.NoError(t, ds.AddTable("obs", tbl))

	orphan, err := element.NewTable(map[string]element.Column{"v": element.IntColumn(1)})
	require.NoError(t, err)
	require.NoError(t, ds.AddTable("orphan", orphan))

	assert.Equal(t, []string{"obs"}, ds.TablesAnnotating("A"))
	assert.Empty(t, ds.TablesAnnotating("B"))
	assert.Nil(t, ds.AnnotatedRegions("orphan"))
}
