package spatialgo

import (
	"context"
	"fmt"

	"github.com/hupe1980/spatialgo/element"
)

// ValidateTable re-checks a registered table's annotation metadata against
// the current dataset, e.g. after elements were removed.
func (d *Dataset) ValidateTable(name string) error {
	t, ok := d.tables[name]
	if !ok {
		return ErrNotFound
	}
	return d.validateTable(name, t)
}

// validateTable checks a table's annotation metadata against the dataset.
// A region absent from the dataset is a warning, not an error: tables may
// be loaded or filtered independently of their targets. A string/numeric
// identifier mismatch against a present region is fatal.
func (d *Dataset) validateTable(name string, t *element.Table) error {
	// re-run the structural check: Attrs may have been set after NewTable
	if err := element.Validate(t); err != nil {
		return err
	}
	if t.Attrs == nil {
		return nil
	}
	instCol, err := t.InstanceKeyColumn()
	if err != nil {
		return err
	}
	for _, region := range t.Attrs.Region {
		e, err := d.Element(region)
		if err != nil {
			d.logger.LogReferentialWarning(context.Background(), name, region)
			continue
		}
		if err := checkIdentifierDTypes(name, region, instCol.DType(), e.IndexDType()); err != nil {
			return err
		}
	}
	return nil
}

// checkIdentifierDTypes applies the identifier compatibility rule: only a
// textual/numeric clash is fatal, numeric width differences are tolerated.
func checkIdentifierDTypes(table, region string, tableDT, elemDT element.DType) error {
	if tableDT.IsString() != elemDT.IsString() {
		return &DTypeMismatchError{
			Table:        table,
			Region:       region,
			TableDType:   tableDT,
			ElementDType: elemDT,
		}
	}
	return nil
}

// BindTable points a table at one or more elements. For a first binding
// both regionKey and instanceKey must name existing columns; for a change,
// empty key arguments reuse the table's current keys. The binding is
// validated in full before any metadata is mutated.
func (d *Dataset) BindTable(tableName string, region []string, regionKey, instanceKey string) error {
	t, ok := d.tables[tableName]
	if !ok {
		return ErrNotFound
	}
	if len(region) == 0 {
		return fmt.Errorf("table %q: empty region set", tableName)
	}
	for _, r := range region {
		if kind, ok := d.shared[r]; !ok || kind == element.KindTable {
			return &UnknownTargetError{Region: r}
		}
	}

	next := &element.Attrs{Region: append([]string(nil), region...)}
	if t.Attrs != nil {
		next.RegionKey = t.Attrs.RegionKey
		next.InstanceKey = t.Attrs.InstanceKey
	}
	if regionKey != "" {
		next.RegionKey = regionKey
	}
	if instanceKey != "" {
		next.InstanceKey = instanceKey
	}
	if next.RegionKey == "" || next.InstanceKey == "" {
		return ErrMissingKeys
	}

	regionCol, ok := t.Column(next.RegionKey)
	if !ok {
		return &element.ValidationError{Kind: element.KindTable, Reason: fmt.Sprintf("region key column %q does not exist", next.RegionKey)}
	}
	instCol, ok := t.Column(next.InstanceKey)
	if !ok {
		return &element.ValidationError{Kind: element.KindTable, Reason: fmt.Sprintf("instance key column %q does not exist", next.InstanceKey)}
	}

	if err := checkSymmetry(tableName, regionCol, next.Region); err != nil {
		return err
	}
	for _, r := range next.Region {
		e, err := d.Element(r)
		if err != nil {
			// unreachable after the UnknownTargetError loop above
			continue
		}
		if err := checkIdentifierDTypes(tableName, r, instCol.DType(), e.IndexDType()); err != nil {
			return err
		}
	}

	t.Attrs = next
	return nil
}

// checkSymmetry enforces that every distinct region-key value appears in
// the declared region set. A declared region with zero rows is fine; an
// undeclared one in the column is not.
func checkSymmetry(table string, regionCol element.Column, region []string) error {
	declared := make(map[string]struct{}, len(region))
	for _, r := range region {
		declared[r] = struct{}{}
	}
	for v := range regionCol.Distinct() {
		if _, ok := declared[v]; !ok {
			return &SymmetryError{Table: table, Value: v, Region: region}
		}
	}
	return nil
}

// AnnotatedRegions returns the region set a table declares, or nil for an
// orphan table.
func (d *Dataset) AnnotatedRegions(tableName string) []string {
	t, ok := d.tables[tableName]
	if !ok || t.Attrs == nil {
		return nil
	}
	return append([]string(nil), t.Attrs.Region...)
}

// TablesAnnotating returns the sorted names of tables whose region set
// includes the given element.
func (d *Dataset) TablesAnnotating(elementName string) []string {
	var names []string
	d.Tables(func(name string, t *element.Table) bool {
		if t.Attrs == nil {
			return true
		}
		for _, r := range t.Attrs.Region {
			if r == elementName {
				names = append(names, name)
				break
			}
		}
		return true
	})
	return names
}
