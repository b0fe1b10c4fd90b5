package query

import (
	"fmt"
	"strings"
)

// Builder accumulates WHERE conditions with positional Postgres
// placeholders so page and count queries share one predicate.
type Builder struct {
	conds []string
	args  []any
}

// Arg registers v and returns its placeholder ("$1", "$2", ...).
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// Where appends a raw condition. Placeholders inside expr must come
// from Arg on the same builder.
func (b *Builder) Where(expr string) *Builder {
	b.conds = append(b.conds, expr)
	return b
}

// Eq appends "column = $n" for value.
func (b *Builder) Eq(column string, value any) *Builder {
	return b.Where(fmt.Sprintf("%s = %s", column, b.Arg(value)))
}

// Gte appends "column >= $n" for value.
func (b *Builder) Gte(column string, value any) *Builder {
	return b.Where(fmt.Sprintf("%s >= %s", column, b.Arg(value)))
}

// Lte appends "column <= $n" for value.
func (b *Builder) Lte(column string, value any) *Builder {
	return b.Where(fmt.Sprintf("%s <= %s", column, b.Arg(value)))
}

// Search appends a case-insensitive substring match over columns,
// OR-ed together. A no-op when term or columns is empty.
func (b *Builder) Search(term string, columns ...string) *Builder {
	if term == "" || len(columns) == 0 {
		return b
	}

	placeholder := b.Arg("%" + term + "%")
	matches := make([]string, len(columns))
	for i, col := range columns {
		matches[i] = fmt.Sprintf("%s ILIKE %s", col, placeholder)
	}

	return b.Where("(" + strings.Join(matches, " OR ") + ")")
}

// Clause renders the WHERE clause, or an empty string when no
// conditions were added.
func (b *Builder) Clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the accumulated positional arguments.
func (b *Builder) Args() []any {
	return b.args
}
