package spatialgo

import (
	"path/filepath"

	"github.com/hupe1980/spatialgo/element"
	"github.com/hupe1980/spatialgo/lazy"
)

// elementSelfContained reports the element's external backing files and
// whether they all resolve into the element's own group inside the backing
// store. An unbacked dataset has no store to contain against and is
// trivially self-contained. Purely advisory: it never materializes
// anything.
func (d *Dataset) elementSelfContained(name string, e element.Element) ([]string, bool) {
	files := e.BackingFiles()
	if len(files) == 0 || d.backingPath == "" {
		return nil, true
	}
	dir := filepath.Join(d.backingPath, filepath.FromSlash(d.shared[name].String()), name)
	return files, lazy.SelfContained(e, dir)
}

// IsElementSelfContained reports whether the named element has no lazy
// external dependency, or only depends on files inside its own group of
// the backing store.
func (d *Dataset) IsElementSelfContained(name string) (bool, error) {
	e, err := d.Element(name)
	if err != nil {
		return false, err
	}
	_, ok := d.elementSelfContained(name, e)
	return ok, nil
}

// IsSelfContained reports whether every element is self-contained.
func (d *Dataset) IsSelfContained() bool {
	contained := true
	d.Elements(func(name string, e element.Element) bool {
		if _, ok := d.elementSelfContained(name, e); !ok {
			contained = false
			return false
		}
		return true
	})
	return contained
}

// ExternalBackingFiles lists, per element name, the backing files living
// outside the element's own store group. Elements with none are omitted.
func (d *Dataset) ExternalBackingFiles() map[string][]string {
	out := map[string][]string{}
	d.Elements(func(name string, e element.Element) bool {
		if files, ok := d.elementSelfContained(name, e); !ok {
			out[name] = files
		}
		return true
	})
	return out
}
