package query

import (
	"strconv"
	"strings"

	"github.com/zoobzio/query/internal/types"
)

const indentUnit = "  "

// renderStyle selects between the legacy text layout and the strict one.
// Legacy runs extra OrWhere conditions together and writes OFFSET
// directly after the LIMIT value; strict separates both.
type renderStyle int

const (
	styleLegacy renderStyle = iota
	styleStrict
)

// Render converts an AST to SQL. It applies GROUP BY inclusion to ast
// before rendering.
func Render(ast *types.AST) string {
	return render(ast, styleLegacy)
}

// RenderStrict converts an AST to SQL with every OrWhere condition
// preceded by " OR " and OFFSET on its own line.
func RenderStrict(ast *types.AST) string {
	return render(ast, styleStrict)
}

func render(ast *types.AST, style renderStyle) string {
	if ast == nil {
		return ""
	}
	ast.IncludeGroupBy()

	var sql strings.Builder

	if len(ast.CTEs) > 0 {
		renderCTEs(ast.CTEs, &sql, style)
	}

	sql.WriteString("SELECT ")
	if len(ast.Fields) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(ast.Fields, ", "))
	}
	sql.WriteString("\n")

	sql.WriteString("FROM ")
	sql.WriteString(ast.Table)
	sql.WriteString("\n")

	if len(ast.Where) > 0 {
		renderWhere(ast, &sql, style)
		sql.WriteString("\n")
	}

	if len(ast.GroupBy) > 0 {
		sql.WriteString("GROUP BY ")
		sql.WriteString(strings.Join(ast.GroupBy, ", "))
		sql.WriteString("\n")
	}

	if len(ast.OrderBy) > 0 {
		sql.WriteString("ORDER BY ")
		sql.WriteString(strings.Join(ast.OrderBy, ", "))
		sql.WriteString("\n")
	}

	if ast.Limit != nil && *ast.Limit != 0 {
		sql.WriteString("LIMIT ")
		sql.WriteString(strconv.Itoa(*ast.Limit))
		if style == styleStrict {
			sql.WriteString("\n")
		}
	}

	if ast.Offset != nil && *ast.Offset != 0 {
		sql.WriteString("OFFSET ")
		sql.WriteString(strconv.Itoa(*ast.Offset))
		sql.WriteString("\n")
	}

	return strings.TrimSpace(sql.String())
}

func renderCTEs(ctes []types.CTE, sql *strings.Builder, style renderStyle) {
	sql.WriteString("WITH ")
	for i, cte := range ctes {
		if i > 0 {
			sql.WriteString(",\n")
		}
		sql.WriteString(cte.Alias)
		sql.WriteString(" AS (\n")
		sql.WriteString(indent(render(cte.Query, style), indentUnit))
		sql.WriteString("\n)")
	}
	sql.WriteString("\n")
}

func renderWhere(ast *types.AST, sql *strings.Builder, style renderStyle) {
	sql.WriteString("WHERE ")
	sql.WriteString(ast.Where[0])
	if rest := ast.Where[1:]; len(rest) > 0 {
		sql.WriteString(" AND ")
		sql.WriteString(strings.Join(rest, " AND "))
	}

	if len(ast.OrWhere) == 0 {
		return
	}
	sql.WriteString(" OR ")
	sql.WriteString(ast.OrWhere[0])
	rest := ast.OrWhere[1:]
	if len(rest) == 0 {
		return
	}
	switch style {
	case styleStrict:
		sql.WriteString(" OR ")
		sql.WriteString(strings.Join(rest, " OR "))
	default:
		sql.WriteString(strings.Join(rest, " OR "))
	}
}

// indent prefixes every line that is not blank.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
