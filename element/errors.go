package element

import "fmt"

// ValidationError indicates a value failed its structural schema check.
type ValidationError struct {
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s element: %s", e.Kind, e.Reason)
}

// UnknownSchemaError indicates a value matched none of the known schemas.
type UnknownSchemaError struct {
	Value any
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown element schema: %T", e.Value)
}
