package types

// MaxCTEDepth limits how deeply CTEs may nest before Validate rejects the tree.
const MaxCTEDepth = 16

// CTE is a named query rendered in the WITH prologue of its parent.
// Query is held by reference, so later changes to the inner builder
// show up the next time the parent renders.
type CTE struct {
	Query *AST
	Alias string
}

// AST holds the clause fragments accumulated by a query builder.
// All fragments are raw SQL text and are rendered verbatim.
type AST struct {
	Limit       *int
	Offset      *int
	Table       string
	Fields      []string
	Where       []string
	OrWhere     []string
	GroupBy     []string
	OrderBy     []string
	CTEs        []CTE
	AutoGroupBy bool
}

// HasField reports whether expr is already selected (exact match).
func (ast *AST) HasField(expr string) bool {
	for _, f := range ast.Fields {
		if f == expr {
			return true
		}
	}
	return false
}

// IncludeGroupBy prepends GROUP BY columns missing from Fields, keeping
// GROUP BY order ahead of the columns selected explicitly. Columns that
// are already selected stay where they are. Safe to call repeatedly.
func (ast *AST) IncludeGroupBy() {
	if !ast.AutoGroupBy || len(ast.GroupBy) == 0 {
		return
	}
	idx := 0
	for _, col := range ast.GroupBy {
		if ast.HasField(col) {
			continue
		}
		ast.Fields = append(ast.Fields, "")
		copy(ast.Fields[idx+1:], ast.Fields[idx:])
		ast.Fields[idx] = col
		idx++
	}
}

// Validate checks the tree for problems Build would silently render:
// an empty table, an empty CTE alias, a CTE cycle, or nesting deeper
// than MaxCTEDepth.
func (ast *AST) Validate() error {
	return ast.validate(make(map[*AST]bool), 0)
}

func (ast *AST) validate(stack map[*AST]bool, depth int) error {
	if depth > MaxCTEDepth {
		return &ValidationError{Table: ast.Table, Err: ErrCTEDepth}
	}
	if ast.Table == "" {
		return &ValidationError{Err: ErrEmptyTable}
	}

	stack[ast] = true
	defer delete(stack, ast)

	for _, cte := range ast.CTEs {
		if cte.Alias == "" {
			return &ValidationError{Table: ast.Table, Err: ErrEmptyAlias}
		}
		if cte.Query == nil {
			return &ValidationError{Table: ast.Table, Alias: cte.Alias, Err: ErrNilCTE}
		}
		if stack[cte.Query] {
			return &ValidationError{Table: ast.Table, Alias: cte.Alias, Err: ErrCTECycle}
		}
		if err := cte.Query.validate(stack, depth+1); err != nil {
			return err
		}
	}
	return nil
}
