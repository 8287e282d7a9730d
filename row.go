package pgconnect

// Field is one column/value pair of a Row.
type Field struct {
	Column string
	Value  any
}

// Row is an ordered list of column/value pairs. Order determines positional
// parameter order in generated SQL, nothing else.
type Row []Field

// Columns returns the column names in row order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Values returns the values in row order.
func (r Row) Values() []any {
	vals := make([]any, len(r))
	for i, f := range r {
		vals[i] = f.Value
	}
	return vals
}

// Get returns the value stored under column, and whether it is present.
func (r Row) Get(column string) (any, bool) {
	if column == "" {
		return nil, false
	}
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// merge returns a new Row with the fetched columns folded over r: existing
// columns are overwritten in place, unknown ones appended in fetch order.
// The receiver is left untouched.
func (r Row) merge(columns []string, values []any) Row {
	merged := make(Row, len(r), len(r)+len(columns))
	copy(merged, r)
outer:
	for i, col := range columns {
		val := normalizeValue(values[i])
		for j := range merged {
			if merged[j].Column == col {
				merged[j].Value = val
				continue outer
			}
		}
		merged = append(merged, Field{Column: col, Value: val})
	}
	return merged
}

// normalizeValue converts driver byte slices into strings so merged rows
// compare and print sanely.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
