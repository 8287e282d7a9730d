// Package sqlgen builds parameterized PostgreSQL statements. Builders are
// pure: no I/O happens here, and values are always passed as $n arguments,
// never interpolated into the SQL text.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPredicate is returned when a lookup has no WHERE terms.
	ErrNoPredicate = errors.New("sqlgen: lookup requires at least one predicate")
	// ErrNoColumns is returned when an insert has no column list.
	ErrNoColumns = errors.New("sqlgen: insert requires at least one column")
	// ErrNoValues is returned when an insert has no value tuples.
	ErrNoValues = errors.New("sqlgen: insert requires at least one value tuple")
)

// LookupBuilder assembles a SELECT * equality lookup.
type LookupBuilder struct {
	table   string
	columns []string
	args    []any
	limit   int
}

// Lookup starts a lookup query against table.
func Lookup(table string) *LookupBuilder {
	return &LookupBuilder{table: table}
}

// Where appends one equality term. Call order determines placeholder order.
func (b *LookupBuilder) Where(column string, value any) *LookupBuilder {
	b.columns = append(b.columns, column)
	b.args = append(b.args, value)
	return b
}

// Limit sets the LIMIT clause. Zero means no limit.
func (b *LookupBuilder) Limit(n int) *LookupBuilder {
	b.limit = n
	return b
}

// Build assembles the SQL text and its ordered argument list.
func (b *LookupBuilder) Build() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrNoPredicate
	}
	terms := make([]string, len(b.columns))
	for i, col := range b.columns {
		terms[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	parts := []string{"SELECT * FROM", b.table, "WHERE", strings.Join(terms, " AND ")}
	if b.limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", b.limit))
	}
	return strings.Join(parts, " "), b.args, nil
}

// InsertBuilder assembles a single- or multi-row INSERT.
type InsertBuilder struct {
	table      string
	columns    []string
	tuples     [][]any
	onConflict string
	returning  string
}

// InsertInto starts an insert statement against table.
func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Columns sets the ordered column list.
func (b *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	b.columns = cols
	return b
}

// Values appends one value tuple. Each tuple must match the column count.
func (b *InsertBuilder) Values(vals ...any) *InsertBuilder {
	b.tuples = append(b.tuples, vals)
	return b
}

// OnConflict appends an ON CONFLICT clause, e.g. "DO NOTHING".
func (b *InsertBuilder) OnConflict(clause string) *InsertBuilder {
	b.onConflict = clause
	return b
}

// Returning appends a RETURNING clause for the given column.
func (b *InsertBuilder) Returning(column string) *InsertBuilder {
	b.returning = column
	return b
}

// Build assembles the SQL text and the flattened argument list. Placeholder
// numbers are 1-based and strictly increasing across tuples: tuple i uses
// $((i-1)*N+1) through $(i*N) for N columns.
func (b *InsertBuilder) Build() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrNoColumns
	}
	if len(b.tuples) == 0 {
		return "", nil, ErrNoValues
	}

	n := len(b.columns)
	groups := make([]string, len(b.tuples))
	args := make([]any, 0, len(b.tuples)*n)
	next := 1
	for i, tuple := range b.tuples {
		if len(tuple) != n {
			return "", nil, fmt.Errorf("sqlgen: tuple %d has %d values, want %d", i, len(tuple), n)
		}
		placeholders := make([]string, n)
		for j := range tuple {
			placeholders[j] = fmt.Sprintf("$%d", next)
			next++
		}
		groups[i] = "(" + strings.Join(placeholders, ", ") + ")"
		args = append(args, tuple...)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES %s",
		b.table, strings.Join(b.columns, ", "), strings.Join(groups, ", "))
	if b.onConflict != "" {
		sb.WriteString(" ON CONFLICT " + b.onConflict)
	}
	if b.returning != "" {
		sb.WriteString(" RETURNING " + b.returning)
	}
	return sb.String(), args, nil
}
