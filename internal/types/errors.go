package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable reports a query with no source relation.
	ErrEmptyTable = errors.New("table name is required")
	// ErrEmptyAlias reports a CTE attached without a name.
	ErrEmptyAlias = errors.New("CTE alias is required")
	// ErrNilCTE reports a CTE attached with a nil query.
	ErrNilCTE = errors.New("CTE query is nil")
	// ErrCTECycle reports a query reachable from its own CTE list.
	ErrCTECycle = errors.New("CTE references itself")
	// ErrCTEDepth reports CTEs nested deeper than MaxCTEDepth.
	ErrCTEDepth = fmt.Errorf("CTE nesting exceeds %d levels", MaxCTEDepth)
)

// ValidationError locates a validation failure within a query tree.
type ValidationError struct {
	Err   error
	Table string
	Alias string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Alias != "":
		return fmt.Sprintf("query %q: CTE %q: %v", e.Table, e.Alias, e.Err)
	case e.Table != "":
		return fmt.Sprintf("query %q: %v", e.Table, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
