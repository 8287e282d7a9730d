package pgconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRow_ColumnsValuesOrder(t *testing.T) {
	row := Row{
		{Column: "name", Value: "Nano"},
		{Column: "age", Value: 33},
		{Column: "active", Value: true},
	}
	assert.Equal(t, []string{"name", "age", "active"}, row.Columns())
	assert.Equal(t, []any{"Nano", 33, true}, row.Values())
}

func TestRow_Get(t *testing.T) {
	row := Row{{Column: "name", Value: "Nano"}}

	v, ok := row.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Nano", v)

	_, ok = row.Get("missing")
	assert.False(t, ok)

	_, ok = row.Get("")
	assert.False(t, ok)
}

func TestRow_MergeOverwritesAndAppends(t *testing.T) {
	row := Row{
		{Column: "name", Value: "Nano"},
		{Column: "age", Value: 33},
	}
	merged := row.merge(
		[]string{"id", "name", "created_at"},
		[]any{int64(7), []byte("Nano"), "2020-01-01"},
	)

	// Existing columns overwritten in place, new ones appended.
	assert.Equal(t, Row{
		{Column: "name", Value: "Nano"},
		{Column: "age", Value: 33},
		{Column: "id", Value: int64(7)},
		{Column: "created_at", Value: "2020-01-01"},
	}, merged)

	// Receiver untouched.
	assert.Len(t, row, 2)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "abc", normalizeValue([]byte("abc")))
	assert.Equal(t, int64(1), normalizeValue(int64(1)))
	assert.Nil(t, normalizeValue(nil))
}
