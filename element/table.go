package element

import (
	"fmt"
	"sort"
)

// Attrs is the annotation metadata a table optionally carries: which
// element(s) it annotates (Region), the column naming the region per row
// (RegionKey), and the column giving each row's instance identifier within
// its region (InstanceKey).
type Attrs struct {
	Region      []string `json:"region"`
	RegionKey   string   `json:"region_key"`
	InstanceKey string   `json:"instance_key"`
}

// Clone returns a deep copy.
func (a *Attrs) Clone() *Attrs {
	if a == nil {
		return nil
	}
	region := make([]string, len(a.Region))
	copy(region, a.Region)
	return &Attrs{Region: region, RegionKey: a.RegionKey, InstanceKey: a.InstanceKey}
}

// Table is an annotation matrix: named typed columns of equal length, plus
// optional annotation metadata. Tables have no transform ledger.
type Table struct {
	names []string
	cols  map[string]Column
	nrows int

	// Attrs is nil for orphan tables (no annotation metadata).
	Attrs *Attrs
}

// NewTable builds and validates a table from named columns.
func NewTable(cols map[string]Column) (*Table, error) {
	t := &Table{cols: make(map[string]Column, len(cols))}
	for name, c := range cols {
		t.names = append(t.names, name)
		t.cols[name] = c
	}
	sort.Strings(t.names)
	if len(t.names) > 0 {
		t.nrows = t.cols[t.names[0]].Len()
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Kind() Kind { return KindTable }

// NRows returns the row count.
func (t *Table) NRows() int { return t.nrows }

// ColumnNames returns the column names, sorted.
func (t *Table) ColumnNames() []string { return t.names }

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// RegionKeyColumn returns the configured region-key column.
func (t *Table) RegionKeyColumn() (Column, error) {
	if t.Attrs == nil {
		return Column{}, fmt.Errorf("element: table carries no annotation metadata")
	}
	c, ok := t.cols[t.Attrs.RegionKey]
	if !ok {
		return Column{}, fmt.Errorf("element: region key column %q not found in table", t.Attrs.RegionKey)
	}
	return c, nil
}

// InstanceKeyColumn returns the configured instance-key column.
func (t *Table) InstanceKeyColumn() (Column, error) {
	if t.Attrs == nil {
		return Column{}, fmt.Errorf("element: table carries no annotation metadata")
	}
	c, ok := t.cols[t.Attrs.InstanceKey]
	if !ok {
		return Column{}, fmt.Errorf("element: instance key column %q not found in table", t.Attrs.InstanceKey)
	}
	return c, nil
}

// Filter returns a new table containing only the given row indices. The
// annotation metadata is cloned unchanged.
func (t *Table) Filter(keep []int) *Table {
	out := &Table{
		names: t.names,
		cols:  make(map[string]Column, len(t.cols)),
		nrows: len(keep),
		Attrs: t.Attrs.Clone(),
	}
	for name, c := range t.cols {
		out.cols[name] = c.Filter(keep)
	}
	return out
}

func (t *Table) validate() error {
	for _, name := range t.names {
		if l := t.cols[name].Len(); l != t.nrows {
			return &ValidationError{Kind: KindTable, Reason: fmt.Sprintf("column %q has %d rows, want %d", name, l, t.nrows)}
		}
	}
	if t.Attrs != nil {
		if len(t.Attrs.Region) == 0 {
			return &ValidationError{Kind: KindTable, Reason: "annotation metadata declares no region"}
		}
		if t.Attrs.RegionKey == "" || t.Attrs.InstanceKey == "" {
			return &ValidationError{Kind: KindTable, Reason: "annotation metadata needs both region key and instance key"}
		}
		if !t.HasColumn(t.Attrs.RegionKey) {
			return &ValidationError{Kind: KindTable, Reason: fmt.Sprintf("region key column %q not found", t.Attrs.RegionKey)}
		}
		if !t.HasColumn(t.Attrs.InstanceKey) {
			return &ValidationError{Kind: KindTable, Reason: fmt.Sprintf("instance key column %q not found", t.Attrs.InstanceKey)}
		}
	}
	return nil
}
