package spatialgo

import (
	"sort"

	"github.com/hupe1980/spatialgo/element"
)

// Add validates v, classifies it by schema and inserts it under name.
// Insertion is all-or-nothing: a name collision across any kind, or a
// table failing annotation validation, fails before the registry is
// touched.
func (d *Dataset) Add(name string, v element.Value) error {
	model, err := element.ModelOf(v)
	if err != nil {
		return err
	}
	if kind, ok := d.shared[name]; ok {
		return &NameCollisionError{Name: name, Kind: kind}
	}
	if t, ok := v.(*element.Table); ok {
		if err := d.validateTable(name, t); err != nil {
			return err
		}
	}
	d.insert(name, model.Kind(), v)
	return nil
}

// Set validates v and inserts or replaces it under name. Replacement is
// only legal within the same kind; a cross-kind replacement is a collision.
func (d *Dataset) Set(name string, v element.Value) error {
	model, err := element.ModelOf(v)
	if err != nil {
		return err
	}
	if kind, ok := d.shared[name]; ok && kind != model.Kind() {
		return &NameCollisionError{Name: name, Kind: kind}
	}
	if t, ok := v.(*element.Table); ok {
		if err := d.validateTable(name, t); err != nil {
			return err
		}
	}
	d.insert(name, model.Kind(), v)
	return nil
}

func (d *Dataset) insert(name string, kind element.Kind, v element.Value) {
	switch e := v.(type) {
	case *element.Image:
		d.images[name] = e
	case *element.Labels:
		d.labels[name] = e
	case *element.Points:
		d.points[name] = e
	case *element.Shapes:
		d.shapes[name] = e
	case *element.Table:
		d.tables[name] = e
	}
	d.shared[name] = kind
}

// AddImage inserts a raster image.
func (d *Dataset) AddImage(name string, img *element.Image) error { return d.Add(name, img) }

// AddLabels inserts a raster label map.
func (d *Dataset) AddLabels(name string, l *element.Labels) error { return d.Add(name, l) }

// AddPoints inserts a point cloud.
func (d *Dataset) AddPoints(name string, p *element.Points) error { return d.Add(name, p) }

// AddShapes inserts a shape collection.
func (d *Dataset) AddShapes(name string, s *element.Shapes) error { return d.Add(name, s) }

// AddTable inserts an annotation table. Annotation metadata, if present,
// is validated against the dataset; referential gaps warn, dtype clashes
// between string and numeric identifiers fail.
func (d *Dataset) AddTable(name string, t *element.Table) error { return d.Add(name, t) }

// SetImages replaces the whole image mapping: every registered image is
// removed and the given mapping inserted in its place.
func (d *Dataset) SetImages(images map[string]*element.Image) error {
	values := make(map[string]element.Value, len(images))
	for name, img := range images {
		values[name] = img
	}
	return d.replaceKind(element.KindImage, values)
}

// SetLabels replaces the whole label-map mapping.
func (d *Dataset) SetLabels(labels map[string]*element.Labels) error {
	values := make(map[string]element.Value, len(labels))
	for name, l := range labels {
		values[name] = l
	}
	return d.replaceKind(element.KindLabels, values)
}

// SetPoints replaces the whole point-cloud mapping.
func (d *Dataset) SetPoints(points map[string]*element.Points) error {
	values := make(map[string]element.Value, len(points))
	for name, p := range points {
		values[name] = p
	}
	return d.replaceKind(element.KindPoints, values)
}

// SetShapes replaces the whole shape-collection mapping.
func (d *Dataset) SetShapes(shapes map[string]*element.Shapes) error {
	values := make(map[string]element.Value, len(shapes))
	for name, s := range shapes {
		values[name] = s
	}
	return d.replaceKind(element.KindShapes, values)
}

// SetTables replaces the whole table mapping. Every incoming table is
// validated against the dataset before anything is removed.
func (d *Dataset) SetTables(tables map[string]*element.Table) error {
	values := make(map[string]element.Value, len(tables))
	for name, t := range tables {
		values[name] = t
	}
	return d.replaceKind(element.KindTable, values)
}

// replaceKind clears one kind's entries from the shared name set and
// rebuilds them from values. All-or-nothing: cross-kind collisions and
// table validation fail before anything is removed.
func (d *Dataset) replaceKind(kind element.Kind, values map[string]element.Value) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if k, ok := d.shared[name]; ok && k != kind {
			return &NameCollisionError{Name: name, Kind: k}
		}
	}
	if kind == element.KindTable {
		for _, name := range names {
			if err := d.validateTable(name, values[name].(*element.Table)); err != nil {
				return err
			}
		}
	}

	for name, k := range d.shared {
		if k == kind {
			delete(d.shared, name)
		}
	}
	switch kind {
	case element.KindImage:
		d.images = make(map[string]*element.Image, len(values))
	case element.KindLabels:
		d.labels = make(map[string]*element.Labels, len(values))
	case element.KindPoints:
		d.points = make(map[string]*element.Points, len(values))
	case element.KindShapes:
		d.shapes = make(map[string]*element.Shapes, len(values))
	default:
		d.tables = make(map[string]*element.Table, len(values))
	}
	for _, name := range names {
		d.insert(name, kind, values[name])
	}
	return nil
}

// Lookup finds the element or table registered under name.
func (d *Dataset) Lookup(name string) (element.Value, element.Kind, bool) {
	kind, ok := d.shared[name]
	if !ok {
		return nil, element.KindInvalid, false
	}
	switch kind {
	case element.KindImage:
		return d.images[name], kind, true
	case element.KindLabels:
		return d.labels[name], kind, true
	case element.KindPoints:
		return d.points[name], kind, true
	case element.KindShapes:
		return d.shapes[name], kind, true
	default:
		return d.tables[name], kind, true
	}
}

// Element finds the spatial element registered under name; tables are not
// spatial elements and report ErrNotFound here. The kind maps are scanned
// directly, so a name that leaked into more than one kind map surfaces as
// a MultipleMatchError instead of an arbitrary pick.
func (d *Dataset) Element(name string) (element.Element, error) {
	if kinds := d.kindsOf(name); len(kinds) > 1 {
		return nil, &MultipleMatchError{Name: name, Kinds: kinds}
	}
	v, kind, ok := d.Lookup(name)
	if !ok || kind == element.KindTable {
		return nil, ErrNotFound
	}
	return v.(element.Element), nil
}

// kindsOf scans the five kind maps for name, bypassing the shared name
// set. With the registry invariant intact the result has at most one entry.
func (d *Dataset) kindsOf(name string) []element.Kind {
	var kinds []element.Kind
	if _, ok := d.images[name]; ok {
		kinds = append(kinds, element.KindImage)
	}
	if _, ok := d.labels[name]; ok {
		kinds = append(kinds, element.KindLabels)
	}
	if _, ok := d.points[name]; ok {
		kinds = append(kinds, element.KindPoints)
	}
	if _, ok := d.shapes[name]; ok {
		kinds = append(kinds, element.KindShapes)
	}
	if _, ok := d.tables[name]; ok {
		kinds = append(kinds, element.KindTable)
	}
	return kinds
}

// Image returns the image registered under name.
func (d *Dataset) Image(name string) (*element.Image, bool) {
	img, ok := d.images[name]
	return img, ok
}

// Labels returns the label map registered under name.
func (d *Dataset) Labels(name string) (*element.Labels, bool) {
	l, ok := d.labels[name]
	return l, ok
}

// Points returns the point cloud registered under name.
func (d *Dataset) Points(name string) (*element.Points, bool) {
	p, ok := d.points[name]
	return p, ok
}

// Shapes returns the shape collection registered under name.
func (d *Dataset) Shapes(name string) (*element.Shapes, bool) {
	s, ok := d.shapes[name]
	return s, ok
}

// Table returns the table registered under name.
func (d *Dataset) Table(name string) (*element.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Remove deletes the entry under name from its kind map and the shared
// name set. Removing an unknown name reports ErrNotFound.
func (d *Dataset) Remove(name string) error {
	kind, ok := d.shared[name]
	if !ok {
		return ErrNotFound
	}
	switch kind {
	case element.KindImage:
		delete(d.images, name)
	case element.KindLabels:
		delete(d.labels, name)
	case element.KindPoints:
		delete(d.points, name)
	case element.KindShapes:
		delete(d.shapes, name)
	default:
		delete(d.tables, name)
	}
	delete(d.shared, name)
	return nil
}

// Names returns the sorted names registered under a kind.
func (d *Dataset) Names(kind element.Kind) []string {
	var names []string
	for name, k := range d.shared {
		if k == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ElementNames returns the sorted names of all spatial elements (tables
// excluded).
func (d *Dataset) ElementNames() []string {
	var names []string
	for name, k := range d.shared {
		if k != element.KindTable {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// TableNames returns the sorted table names.
func (d *Dataset) TableNames() []string { return d.Names(element.KindTable) }

// Elements iterates all spatial elements in sorted name order.
func (d *Dataset) Elements(fn func(name string, e element.Element) bool) {
	for _, name := range d.ElementNames() {
		e, _ := d.Element(name)
		if !fn(name, e) {
			return
		}
	}
}

// Tables iterates all tables in sorted name order.
func (d *Dataset) Tables(fn func(name string, t *element.Table) bool) {
	for _, name := range d.TableNames() {
		if !fn(name, d.tables[name]) {
			return
		}
	}
}

// KindOf returns the kind registered under name.
func (d *Dataset) KindOf(name string) (element.Kind, bool) {
	k, ok := d.shared[name]
	return k, ok
}

// LocateElement returns the store paths an element would occupy, i.e.
// "<kind>/<name>" for every kind map containing the name. With the shared
// name set intact this is at most one path.
func (d *Dataset) LocateElement(name string) []string {
	kind, ok := d.shared[name]
	if !ok {
		return nil
	}
	return []string{kind.String() + "/" + name}
}
