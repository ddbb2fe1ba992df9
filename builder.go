package query

import (
	"html"

	"github.com/zoobzio/query/internal/types"
)

// Option configures a Query at construction.
type Option func(*Query)

// AutoGroupBy controls whether GROUP BY columns missing from the select
// list are added to it at render time. Enabled by default.
func AutoGroupBy(enabled bool) Option {
	return func(q *Query) {
		q.ast.AutoGroupBy = enabled
	}
}

// Query provides a fluent API for assembling a SELECT statement.
type Query struct {
	ast *types.AST
}

// New creates a query selecting from table.
func New(table string, opts ...Option) *Query {
	q := &Query{
		ast: &types.AST{
			Table:       table,
			AutoGroupBy: true,
		},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AST returns the underlying clause fragments.
func (q *Query) AST() *AST {
	return q.ast
}

// Table returns the source relation.
func (q *Query) Table() string {
	return q.ast.Table
}

// Select appends select expressions.
func (q *Query) Select(columns ...string) *Query {
	q.ast.Fields = append(q.ast.Fields, columns...)
	return q
}

// Where appends conditions combined with AND.
func (q *Query) Where(conditions ...string) *Query {
	q.ast.Where = append(q.ast.Where, conditions...)
	return q
}

// OrWhere appends conditions rendered after the AND group.
// They only appear when at least one Where condition exists.
func (q *Query) OrWhere(conditions ...string) *Query {
	q.ast.OrWhere = append(q.ast.OrWhere, conditions...)
	return q
}

// GroupBy appends GROUP BY columns.
func (q *Query) GroupBy(columns ...string) *Query {
	q.ast.GroupBy = append(q.ast.GroupBy, columns...)
	return q
}

// OrderBy appends ORDER BY columns. Direction is part of the fragment,
// e.g. "created_at DESC".
func (q *Query) OrderBy(columns ...string) *Query {
	q.ast.OrderBy = append(q.ast.OrderBy, columns...)
	return q
}

// Limit sets the limit. Zero leaves the clause out.
func (q *Query) Limit(limit int) *Query {
	q.ast.Limit = &limit
	return q
}

// Offset sets the offset. Zero leaves the clause out.
func (q *Query) Offset(offset int) *Query {
	q.ast.Offset = &offset
	return q
}

// CTE adds sub as a common table expression named alias.
func (q *Query) CTE(sub *Query, alias string) *Query {
	cte := types.CTE{Alias: alias}
	if sub != nil {
		cte.Query = sub.ast
	}
	q.ast.CTEs = append(q.ast.CTEs, cte)
	return q
}

// Build renders the query to SQL.
//
// Extra OrWhere conditions after the first are joined to each other with
// " OR " but appended without a leading separator, so three or more
// OrWhere conditions produce run-together text. Likewise OFFSET follows
// the LIMIT value with no separator ("LIMIT 10OFFSET 5"). Existing
// callers depend on that output; use BuildStrict for the separated form.
func (q *Query) Build() string {
	return Render(q.ast)
}

// BuildStrict renders the query like Build, except every OrWhere
// condition is preceded by " OR " and OFFSET starts its own line.
func (q *Query) BuildStrict() string {
	return RenderStrict(q.ast)
}

// String implements fmt.Stringer.
func (q *Query) String() string {
	return q.Build()
}

// HTML renders the query inside a <pre> block for notebook-style display.
func (q *Query) HTML() string {
	return "<pre>" + html.EscapeString(q.Build()) + "</pre>"
}

// Validate reports structural problems that Build renders without
// complaint, such as a CTE that refers back to its own query.
func (q *Query) Validate() error {
	return q.ast.Validate()
}
