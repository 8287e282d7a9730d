package pgconnect

import (
	"errors"
	"fmt"

	"github.com/merfrei/pgconnect/internal/sqlerr"
	"github.com/merfrei/pgconnect/internal/sqlgen"
)

var (
	// ErrEmptyRow is returned when an operation needs at least one column.
	ErrEmptyRow = errors.New("pgconnect: empty row")
	// ErrMissingKeyField is returned when a row lacks the integrity key field.
	ErrMissingKeyField = errors.New("pgconnect: key field missing from row")
	// ErrSessionNotOpen is returned when an operation runs before Open.
	ErrSessionNotOpen = errors.New("pgconnect: session is not open")
	// ErrSessionOpen is returned when Open is called on an open session.
	ErrSessionOpen = errors.New("pgconnect: session already open")
	// ErrSessionClosed is returned when a closed session is used again.
	// Sessions are not reusable after Close.
	ErrSessionClosed = errors.New("pgconnect: session closed")
)

// DatabaseError wraps any failure reported by the database layer with the
// operation and table it happened on. The underlying driver error stays
// reachable through errors.Is/As.
type DatabaseError struct {
	Op    string
	Table string
	Err   error
}

func (e *DatabaseError) Error() string {
	if code := sqlerr.Classify(e.Err); code != sqlerr.Other {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Table, code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// errorKind buckets an error for scope-exit logging.
func errorKind(err error) string {
	var dbErr *DatabaseError
	switch {
	case errors.Is(err, ErrSessionNotOpen),
		errors.Is(err, ErrSessionOpen),
		errors.Is(err, ErrSessionClosed):
		return "usage"
	case errors.Is(err, ErrEmptyRow),
		errors.Is(err, ErrMissingKeyField),
		errors.Is(err, sqlgen.ErrNoPredicate),
		errors.Is(err, sqlgen.ErrNoColumns),
		errors.Is(err, sqlgen.ErrNoValues):
		return "input"
	case errors.As(err, &dbErr), sqlerr.State(err) != "":
		return "database"
	default:
		return "internal"
	}
}
