package spatialgo

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
	"github.com/hupe1980/spatialgo/store"
	"github.com/hupe1980/spatialgo/transform"
)

func newFullDataset(t *testing.T) *Dataset {
	t.Helper()
	ds := New(WithLogger(NoopLogger()))

	require.NoError(t, ds.AddImage("scan", testImage(t)))
	require.NoError(t, ds.AddLabels("cells", testLabels(t, []byte{
		0, 1, 1, 0,
		0, 1, 1, 0,
		2, 2, 0, 0,
		2, 2, 0, 0,
	}, 4)))
	require.NoError(t, ds.AddPoints("nuclei", testPoints(t, [][]float64{{1, 2}, {3, 4}}, 1, 2)))
	require.NoError(t, ds.AddShapes("rois", testShapes(t, [][]float64{{2, 2}}, 1)))

	tbl := testAnnotationTable(t, []string{"cells", "cells"}, []int64{1, 2}, "cells")
	require.NoError(t, ds.AddTable("obs", tbl))

	return ds
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	ds := newFullDataset(t)

	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))
	assert.Equal(t, dir, ds.BackingPath())
	assert.True(t, ds.IsBacked())

	got, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)

	// same names, same kinds
	assert.Equal(t, ds.ElementNames(), got.ElementNames())
	assert.Equal(t, ds.TableNames(), got.TableNames())
	for _, name := range ds.ElementNames() {
		wantKind, _ := ds.KindOf(name)
		gotKind, _ := got.KindOf(name)
		assert.Equal(t, wantKind, gotKind, "kind of %s", name)
	}

	// same coordinate systems, equal transforms
	assert.Equal(t, ds.CoordinateSystems(), got.CoordinateSystems())
	p, ok := got.Points("nuclei")
	require.True(t, ok)
	assert.True(t, transform.Equal(transform.Identity{}, p.Transforms()["global"]))

	// annotation metadata survives
	tbl, ok := got.Table("obs")
	require.True(t, ok)
	require.NotNil(t, tbl.Attrs)
	assert.Equal(t, []string{"cells"}, tbl.Attrs.Region)

	// lazy payloads materialize to the written bytes
	coords, err := p.Coordinates(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, coords)

	// a default write consolidates
	ok, err = got.backing.HasConsolidated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteReadSelection(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	require.NoError(t, newFullDataset(t).Write(ctx, store.NewLocal(dir)))

	got, err := Read(ctx, store.NewLocal(dir),
		WithSelection(element.KindPoints, element.KindTable),
		WithReadLogger(NoopLogger()),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"nuclei"}, got.ElementNames())
	assert.Equal(t, []string{"obs"}, got.TableNames())
}

func TestReadLoggerRoutesWarnings(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	require.NoError(t, newFullDataset(t).Write(ctx, store.NewLocal(dir)))

	// reading only the tables leaves their targets unresolved
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil))
	_, err := Read(ctx, store.NewLocal(dir),
		WithSelection(element.KindTable),
		WithReadLogger(logger),
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cells")
}

func TestWriteGuardNoOverwrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	ds := newFullDataset(t)

	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))
	assert.ErrorIs(t, ds.Write(ctx, store.NewLocal(dir)), ErrNoOverwrite)
}

func TestWriteGuardNotAStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	ds := newFullDataset(t)
	assert.ErrorIs(t, ds.Write(ctx, store.NewLocal(dir), WithOverwrite()), ErrNotAStore)

	// the stray file is untouched
	_, err := os.Stat(filepath.Join(dir, "unrelated.txt"))
	assert.NoError(t, err)
}

func TestWriteGuardRejectsDestructiveOverwrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")

	require.NoError(t, newFullDataset(t).Write(ctx, store.NewLocal(dir)))

	// a second dataset whose points lazily depend on the first store's files
	loaded, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)
	p, ok := loaded.Points("nuclei")
	require.True(t, ok)
	require.NotEmpty(t, p.BackingFiles())

	err = loaded.Write(ctx, store.NewLocal(dir), WithOverwrite())
	require.ErrorIs(t, err, ErrWouldOrphanBackingData)

	// zero writes: the original store still reads back in full
	again, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)
	assert.Len(t, again.ElementNames(), 4)
}

func TestWriteGuardOverlap(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "dataset.sd")

	ds := newFullDataset(t)
	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))

	// fully in-memory elements: nothing to orphan, but the target nests
	// inside the current backing store
	inner := filepath.Join(dir, "nested.sd")
	fresh := New(WithLogger(NoopLogger()))
	require.NoError(t, fresh.AddShapes("rois", testShapes(t, [][]float64{{1, 1}}, 1)))
	fresh.backing = ds.backing
	fresh.backingPath = ds.backingPath

	require.NoError(t, os.MkdirAll(inner, 0o755))
	_, err := store.Create(ctx, store.NewLocal(inner), false)
	require.NoError(t, err)

	assert.ErrorIs(t, fresh.Write(ctx, store.NewLocal(inner), WithOverwrite()), ErrOverlapsBackingStore)
}

func TestWriteElement(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	ds := newFullDataset(t)

	t.Run("requires a backed dataset", func(t *testing.T) {
		assert.ErrorIs(t, ds.WriteElement(ctx, "scan"), ErrNotBacked)
	})

	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))

	t.Run("rejects in-place overwrite", func(t *testing.T) {
		assert.ErrorIs(t, ds.WriteElement(ctx, "scan"), ErrElementOverwriteUnsupported)
	})

	t.Run("writes new elements", func(t *testing.T) {
		require.NoError(t, ds.AddPoints("extra", testPoints(t, [][]float64{{9, 9}}, 1)))
		require.NoError(t, ds.WriteElement(ctx, "extra"))

		got, err := Read(ctx, store.NewLocal(dir))
		require.NoError(t, err)
		_, ok := got.Points("extra")
		assert.True(t, ok)
	})

	t.Run("unknown name", func(t *testing.T) {
		assert.ErrorIs(t, ds.WriteElement(ctx, "ghost"), ErrNotFound)
	})
}

func TestWriteTransformations(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	ds := newFullDataset(t)
	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))

	p, _ := ds.Points("nuclei")
	p.SetTransforms(transform.Ledger{"rotated": transform.Scale(2, 2)})
	require.NoError(t, ds.WriteTransformations(ctx, "nuclei"))

	got, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)
	loaded, _ := got.Points("nuclei")
	assert.Equal(t, []string{"rotated"}, loaded.Transforms().CoordinateSystems())

	// payload bytes were not rewritten
	coords, err := loaded.Coordinates(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, coords)

	t.Run("missing group warns and no-ops", func(t *testing.T) {
		require.NoError(t, ds.AddShapes("late", testShapes(t, [][]float64{{0, 0}}, 1)))
		assert.NoError(t, ds.WriteTransformations(ctx, "late"))
	})
}

func TestWriteMetadataRefreshesTablesAndIndex(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")
	ds := newFullDataset(t)
	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))

	tbl, _ := ds.Table("obs")
	tbl.Attrs.Region = []string{"cells"}
	tbl.Attrs.InstanceKey = "cell_id"
	require.NoError(t, ds.WriteMetadata(ctx))

	got, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)
	loaded, _ := got.Table("obs")
	require.NotNil(t, loaded.Attrs)
	assert.Equal(t, "cell_id", loaded.Attrs.InstanceKey)
}

func TestSelfContainment(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "dataset.sd")

	ds := newFullDataset(t)
	// fully in-memory: trivially self-contained
	assert.True(t, ds.IsSelfContained())

	require.NoError(t, ds.Write(ctx, store.NewLocal(dir)))

	got, err := Read(ctx, store.NewLocal(dir))
	require.NoError(t, err)
	// every lazy payload resolves inside its own group
	assert.True(t, got.IsSelfContained())
	assert.Empty(t, got.ExternalBackingFiles())

	// an element borrowing another store's bytes is not self-contained
	external := filepath.Join(t.TempDir(), "external.bin")
	require.NoError(t, os.WriteFile(external, element.EncodeCoords([][]float64{{7, 7}}), 0o644))
	arr := lazy.NewArrayFromSource([]int{1, 2}, lazy.FileSource{Path: external})
	p, err := element.NewPoints([]string{"x", "y"}, arr, element.IntColumn(1))
	require.NoError(t, err)
	require.NoError(t, got.AddPoints("borrowed", p))

	assert.False(t, got.IsSelfContained())
	files := got.ExternalBackingFiles()
	require.Contains(t, files, "borrowed")
	assert.Equal(t, []string{external}, files["borrowed"])

	contained, err := got.IsElementSelfContained("nuclei")
	require.NoError(t, err)
	assert.True(t, contained)
}

func TestUnbackedDatasetIsSelfContained(t *testing.T) {
	external := filepath.Join(t.TempDir(), "external.bin")
	require.NoError(t, os.WriteFile(external, element.EncodeCoords([][]float64{{7, 7}}), 0o644))

	arr := lazy.NewArrayFromSource([]int{1, 2}, lazy.FileSource{Path: external})
	p, err := element.NewPoints([]string{"x", "y"}, arr, element.IntColumn(1))
	require.NoError(t, err)

	// no backing store means nothing to contain against
	ds := New(WithLogger(NoopLogger()))
	require.NoError(t, ds.AddPoints("borrowed", p))

	assert.True(t, ds.IsSelfContained())
	assert.Empty(t, ds.ExternalBackingFiles())

	contained, err := ds.IsElementSelfContained("borrowed")
	require.NoError(t, err)
	assert.True(t, contained)
}
