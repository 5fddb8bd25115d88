package spatialgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/spatialgo/element"
)

var (
	// ErrNotFound is returned when a named element does not exist.
	ErrNotFound = errors.New("element not found")

	// ErrMissingKeys is returned when a table is bound for the first time
	// without explicit region-key and instance-key column names.
	ErrMissingKeys = errors.New("region_key and instance_key must be supplied for a first binding")

	// ErrNotBacked is returned by metadata-only writes on a dataset that
	// has never been written to a store.
	ErrNotBacked = errors.New("dataset is not backed by a store")

	// ErrNotAStore is returned when the write target exists but is not a
	// recognized store. Arbitrary files are never overwritten.
	ErrNotAStore = errors.New("target exists and is not a recognized store")

	// ErrNoOverwrite is returned when the target is an existing store and
	// overwrite was not requested.
	ErrNoOverwrite = errors.New("target store exists and overwrite is disabled")

	// ErrWouldOrphanBackingData is returned when overwriting the target
	// would destroy files an in-memory element still depends on.
	ErrWouldOrphanBackingData = errors.New("target contains backing files of in-memory elements")

	// ErrElementOverwriteUnsupported is returned by single-element writes
	// targeting the dataset's own backing store. Elements are written to
	// new locations, never in place.
	ErrElementOverwriteUnsupported = errors.New("in-place element overwrite is not supported")

	// ErrOverlapsBackingStore is returned when the target is an ancestor
	// or descendant of the dataset's current backing path.
	ErrOverlapsBackingStore = errors.New("target overlaps the current backing store")
)

// NameCollisionError indicates an insertion or rename would reuse a name
// already taken. The failed operation left no partial state behind.
type NameCollisionError struct {
	Name string
	Kind element.Kind
}

func (e *NameCollisionError) Error() string {
	if e.Kind != element.KindInvalid {
		return fmt.Sprintf("name %q is already in use by an element of kind %s", e.Name, e.Kind)
	}
	return fmt.Sprintf("name %q is already in use", e.Name)
}

// MultipleMatchError indicates a name lookup matched elements of more than
// one kind, which the shared name set should have prevented.
type MultipleMatchError struct {
	Name  string
	Kinds []element.Kind
}

func (e *MultipleMatchError) Error() string {
	return fmt.Sprintf("name %q matches %d elements", e.Name, len(e.Kinds))
}

// UnknownTargetError indicates a table binding names a region that is not
// an element of the dataset.
type UnknownTargetError struct {
	Region string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("region %q is not an element of the dataset", e.Region)
}

// SymmetryError indicates a table's region-key column references a region
// outside the declared region set.
type SymmetryError struct {
	Table  string
	Value  string
	Region []string
}

func (e *SymmetryError) Error() string {
	return fmt.Sprintf("table %q region-key value %q is not in the declared region set %v", e.Table, e.Value, e.Region)
}

// DTypeMismatchError indicates a table's instance identifiers are textual
// while the referenced element's identifiers are numeric, or vice versa.
// Numeric width differences are tolerated and never produce this error.
type DTypeMismatchError struct {
	Table        string
	Region       string
	TableDType   element.DType
	ElementDType element.DType
}

func (e *DTypeMismatchError) Error() string {
	return fmt.Sprintf("table %q instance dtype %s is incompatible with element %q identifier dtype %s",
		e.Table, e.TableDType, e.Region, e.ElementDType)
}

// UnknownCoordinateSystemError indicates a rename or transform referenced a
// coordinate system absent from every element's ledger.
type UnknownCoordinateSystemError struct {
	Name string
}

func (e *UnknownCoordinateSystemError) Error() string {
	return fmt.Sprintf("unknown coordinate system %q", e.Name)
}
