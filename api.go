// Package query assembles SQL SELECT statements from fluent method calls.
//
// Every clause fragment is raw SQL text supplied by the caller and is
// rendered verbatim. The package performs no parsing, quoting, dialect
// checks or injection protection; it only orders and joins fragments.
//
// # Basic Usage
//
//	q := query.New("tips").
//		Select("tip", "total_bill").
//		Where("total_bill > 10").
//		OrderBy("tip")
//
//	fmt.Println(q.Build())
//	// SELECT tip, total_bill
//	// FROM tips
//	// WHERE total_bill > 10
//	// ORDER BY tip
//
// Methods may be called in any order and as many times as needed; list
// clauses accumulate.
//
// # GROUP BY
//
// GROUP BY columns that are not already selected are added to the front of
// the select list when the query renders. Disable this with
// AutoGroupBy(false).
//
// # Common Table Expressions
//
// Another Query can be attached under an alias and is rendered, indented,
// in a WITH prologue:
//
//	recent := query.New("orders").Where("created_at > now() - interval '7 days'")
//	q := query.New("recent").CTE(recent, "recent")
//
// Rendering never fails. Validate reports CTE cycles and other structural
// problems for callers that build queries from untrusted composition.
package query

import "github.com/zoobzio/query/internal/types"

// AST represents the accumulated clause fragments of a query.
// This is re-exported from internal/types for use by consumers.
type AST = types.AST

// CTE is a named query attached to a parent query.
type CTE = types.CTE

// ValidationError locates a problem reported by Validate.
type ValidationError = types.ValidationError

// MaxCTEDepth is the deepest CTE nesting Validate accepts.
const MaxCTEDepth = types.MaxCTEDepth

// Re-export validation errors for errors.Is checks.
var (
	ErrEmptyTable = types.ErrEmptyTable
	ErrEmptyAlias = types.ErrEmptyAlias
	ErrNilCTE     = types.ErrNilCTE
	ErrCTECycle   = types.ErrCTECycle
	ErrCTEDepth   = types.ErrCTEDepth
)
