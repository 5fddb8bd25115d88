package spatialgo

import (
	"context"
	"os"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/internal/fs"
	"github.com/hupe1980/spatialgo/store"
)

// WriteOption configures a whole-dataset write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	overwrite   bool
	consolidate bool
	storeOpts   []store.Option
}

// WithOverwrite allows replacing an existing store at the target. The
// guard still refuses targets that would orphan in-memory backing data.
func WithOverwrite() WriteOption {
	return func(c *writeConfig) { c.overwrite = true }
}

// WithoutConsolidation skips writing the consolidated metadata index.
func WithoutConsolidation() WriteOption {
	return func(c *writeConfig) { c.consolidate = false }
}

// WithStoreOptions forwards options (codec, compressor) to the store.
func WithStoreOptions(opts ...store.Option) WriteOption {
	return func(c *writeConfig) { c.storeOpts = append(c.storeOpts, opts...) }
}

// Write persists the whole dataset to the backend, then binds the dataset
// to the written store. Every guard check runs before the first byte of
// I/O for the write.
func (d *Dataset) Write(ctx context.Context, backend store.Backend, opts ...WriteOption) error {
	cfg := writeConfig{consolidate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	targetPath := localRoot(backend)
	if err := d.guardWholeWrite(ctx, backend, targetPath, cfg.overwrite); err != nil {
		return err
	}

	st, err := store.Create(ctx, backend, cfg.overwrite, cfg.storeOpts...)
	if err != nil {
		return err
	}

	for _, name := range append(d.ElementNames(), d.TableNames()...) {
		v, _, _ := d.Lookup(name)
		err := st.WriteElement(ctx, name, v)
		d.logger.LogWrite(ctx, d.shared[name].String(), name, err)
		if err != nil {
			return err
		}
	}

	if cfg.consolidate {
		if err := st.Consolidate(ctx); err != nil {
			return err
		}
	}

	d.backing = st
	d.backingPath = targetPath
	return nil
}

// guardWholeWrite runs the whole-dataset write state machine. Terminal
// accepting states are ok-to-create (target absent) and ok-to-overwrite.
func (d *Dataset) guardWholeWrite(ctx context.Context, backend store.Backend, targetPath string, overwrite bool) error {
	exists, err := targetExists(ctx, backend, targetPath)
	if err != nil {
		return err
	}
	if !exists {
		return nil // ok-to-create
	}

	isStore, err := store.IsStore(ctx, backend)
	if err != nil {
		return err
	}
	if !isStore {
		return ErrNotAStore
	}
	if !overwrite {
		return ErrNoOverwrite
	}

	if targetPath != "" {
		if name, ok := d.backingFileUnder(targetPath); ok {
			d.logger.LogNotSelfContained(ctx, name, nil)
			return ErrWouldOrphanBackingData
		}
		if d.backingPath != "" && pathsOverlap(targetPath, d.backingPath) {
			return ErrOverlapsBackingStore
		}
	}
	return nil // ok-to-overwrite
}

// WriteElement persists one element into the dataset's own backing store.
// The element's group must not already exist on disk: in-place element
// overwrite is never allowed, write the dataset to a new location instead.
func (d *Dataset) WriteElement(ctx context.Context, name string) error {
	if d.backing == nil {
		return ErrNotBacked
	}
	v, kind, ok := d.Lookup(name)
	if !ok {
		return ErrNotFound
	}
	onDisk, err := d.backing.HasElement(ctx, kind, name)
	if err != nil {
		return err
	}
	if onDisk {
		return ErrElementOverwriteUnsupported
	}
	err = d.backing.WriteElement(ctx, name, v)
	d.logger.LogWrite(ctx, kind.String(), name, err)
	return err
}

// WriteTransformations writes only the transformation metadata of the
// named elements (all spatial elements when names is empty). Payload bytes
// are never touched. An element whose group is missing from the store is
// skipped with a warning rather than failing the batch.
func (d *Dataset) WriteTransformations(ctx context.Context, names ...string) error {
	if d.backing == nil {
		return ErrNotBacked
	}
	if len(names) == 0 {
		names = d.ElementNames()
	}
	for _, name := range names {
		e, err := d.Element(name)
		if err != nil {
			return err
		}
		kind := d.shared[name]

		onDisk, err := d.backing.HasElement(ctx, kind, name)
		if err != nil {
			return err
		}
		if !onDisk {
			d.logger.LogSkippedMetadataWrite(ctx, kind.String(), name)
			continue
		}
		if files, contained := d.elementSelfContained(name, e); !contained {
			d.logger.LogNotSelfContained(ctx, name, files)
		}
		if err := d.backing.WriteElementTransforms(ctx, kind, name, e.Transforms()); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetadata rewrites the metadata of every persisted element:
// transformations for spatial elements, annotation metadata for tables.
// An existing consolidated index is refreshed, a missing one is not
// created.
func (d *Dataset) WriteMetadata(ctx context.Context) error {
	if d.backing == nil {
		return ErrNotBacked
	}
	if err := d.WriteTransformations(ctx); err != nil {
		return err
	}
	for _, name := range d.TableNames() {
		onDisk, err := d.backing.HasElement(ctx, element.KindTable, name)
		if err != nil {
			return err
		}
		if !onDisk {
			d.logger.LogSkippedMetadataWrite(ctx, element.KindTable.String(), name)
			continue
		}
		if err := d.backing.WriteTableAttrs(ctx, name, d.tables[name].Attrs); err != nil {
			return err
		}
	}
	return d.backing.ConsolidateIfPresent(ctx)
}

// WriteConsolidatedMetadata rebuilds the consolidated metadata index.
func (d *Dataset) WriteConsolidatedMetadata(ctx context.Context) error {
	if d.backing == nil {
		return ErrNotBacked
	}
	return d.backing.Consolidate(ctx)
}

// localRoot resolves the backend's local root directory, or "" for remote
// backends. Path-overlap checks only apply to local targets.
func localRoot(backend store.Backend) string {
	lp, ok := backend.(store.LocalPather)
	if !ok {
		return ""
	}
	return lp.LocalPath("")
}

// targetExists reports whether the target location already holds anything.
// For local backends an existing empty directory does not count.
func targetExists(ctx context.Context, backend store.Backend, targetPath string) (bool, error) {
	if targetPath != "" {
		if _, err := os.Stat(targetPath); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}
	names, err := backend.List(ctx, "")
	if err != nil {
		return false, err
	}
	if len(names) > 0 {
		return true, nil
	}
	ok, err := backend.Exists(ctx, store.MarkerKey)
	if err != nil {
		return false, err
	}
	return ok, err
}

// backingFileUnder reports the first element whose backing files live
// under dir.
func (d *Dataset) backingFileUnder(dir string) (string, bool) {
	var found string
	d.Elements(func(name string, e element.Element) bool {
		for _, f := range e.BackingFiles() {
			if fs.IsSubPath(dir, f) {
				found = name
				return false
			}
		}
		return true
	})
	return found, found != ""
}

func pathsOverlap(a, b string) bool {
	return fs.IsSubPath(a, b) || fs.IsSubPath(b, a)
}
