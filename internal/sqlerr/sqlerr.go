// Package sqlerr classifies PostgreSQL driver errors by SQLSTATE so callers
// can switch on what went wrong instead of parsing driver messages.
package sqlerr

import (
	"errors"

	"github.com/lib/pq"
)

// Code is a coarse category for a database error.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
	UndefinedTable
	UndefinedColumn
)

// SQLSTATE values from the PostgreSQL error code appendix.
const (
	stateUniqueViolation     = "23505"
	stateForeignKeyViolation = "23503"
	stateNotNullViolation    = "23502"
	stateCheckViolation      = "23514"
	stateUndefinedTable      = "42P01"
	stateUndefinedColumn     = "42703"
)

// Classify maps err to a Code, walking the wrap chain to find a *pq.Error.
func Classify(err error) Code {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return Other
	}
	switch string(pqErr.Code) {
	case stateUniqueViolation:
		return UniqueViolation
	case stateForeignKeyViolation:
		return ForeignKeyViolation
	case stateNotNullViolation:
		return NotNullViolation
	case stateCheckViolation:
		return CheckViolation
	case stateUndefinedTable:
		return UndefinedTable
	case stateUndefinedColumn:
		return UndefinedColumn
	default:
		return Other
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return Classify(err) == UniqueViolation
}

// State returns the raw SQLSTATE of err, or "" when err did not come from
// the PostgreSQL driver.
func State(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ""
	}
	return string(pqErr.Code)
}

func (c Code) String() string {
	switch c {
	case UniqueViolation:
		return "unique_violation"
	case ForeignKeyViolation:
		return "foreign_key_violation"
	case NotNullViolation:
		return "not_null_violation"
	case CheckViolation:
		return "check_violation"
	case UndefinedTable:
		return "undefined_table"
	case UndefinedColumn:
		return "undefined_column"
	default:
		return "other"
	}
}
