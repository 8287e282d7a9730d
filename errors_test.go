package pgconnect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/merfrei/pgconnect/internal/sqlgen"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"session closed", ErrSessionClosed, "usage"},
		{"session not open", ErrSessionNotOpen, "usage"},
		{"empty row", ErrEmptyRow, "input"},
		{"wrapped input", fmt.Errorf("insert users: %w", sqlgen.ErrNoColumns), "input"},
		{"driver error", wrapDBErr("lookup", "users", errors.New("driver: bad connection")), "database"},
		{"constraint violation", &pq.Error{Code: "23505"}, "database"},
		{"unknown", errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorKind(tc.err))
		})
	}
}

func TestDatabaseError(t *testing.T) {
	inner := &pq.Error{Code: "23505", Message: "duplicate key"}
	err := wrapDBErr("insert", "users", inner)
	assert.Contains(t, err.Error(), "insert users")
	assert.Contains(t, err.Error(), "unique_violation")

	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr))

	plain := errors.New("server closed the connection")
	wrapped := wrapDBErr("lookup", "events", plain)
	assert.True(t, errors.Is(wrapped, plain))
	assert.Equal(t, "lookup events: server closed the connection", wrapped.Error())
}
