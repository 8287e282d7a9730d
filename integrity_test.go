package pgconnect_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merfrei/pgconnect"
)

func userRow(id int, name string) pgconnect.Row {
	return pgconnect.Row{
		{Column: "id", Value: id},
		{Column: "name", Value: name},
	}
}

func expectUserLookupHit(mock sqlmock.Sqlmock, id int, name string) {
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE id = $1 AND name = $2 LIMIT 1",
	)).
		WithArgs(id, name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(id), name))
}

func TestIntegrityCache_SecondCallSkipsDatabase(t *testing.T) {
	sess, mock := openSession(t)
	cache := pgconnect.NewIntegrityCache()

	// Exactly one round-trip expected for two identical calls.
	expectUserLookupHit(mock, 1, "Nano")

	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id"))
	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id"))

	assert.True(t, cache.Seen("users", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrityCache_DistinctKeysEachHitDatabase(t *testing.T) {
	sess, mock := openSession(t)
	cache := pgconnect.NewIntegrityCache()

	expectUserLookupHit(mock, 1, "Nano")
	expectUserLookupHit(mock, 2, "Rudo")

	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id"))
	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(2, "Rudo"), "id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrityCache_TablesAreIndependent(t *testing.T) {
	sess, mock := openSession(t)
	cache := pgconnect.NewIntegrityCache()

	expectUserLookupHit(mock, 1, "Nano")
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM admins WHERE id = $1 AND name = $2 LIMIT 1",
	)).
		WithArgs(1, "Nano").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Nano"))

	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id"))
	require.NoError(t, cache.Create(context.Background(), sess, "admins", userRow(1, "Nano"), "id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrityCache_MissingKeyField(t *testing.T) {
	sess, mock := openSession(t)
	cache := pgconnect.NewIntegrityCache()

	row := pgconnect.Row{{Column: "name", Value: "Nano"}}
	err := cache.Create(context.Background(), sess, "users", row, "id")
	assert.ErrorIs(t, err, pgconnect.ErrMissingKeyField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrityCache_FailureReleasesReservation(t *testing.T) {
	sess, mock := openSession(t)
	cache := pgconnect.NewIntegrityCache()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM users WHERE id = $1 AND name = $2 LIMIT 1",
	)).
		WithArgs(1, "Nano").
		WillReturnError(boom)

	err := cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id")
	require.ErrorIs(t, err, boom)
	assert.False(t, cache.Seen("users", 1))

	// The key is retryable after a failure.
	expectUserLookupHit(mock, 1, "Nano")
	require.NoError(t, cache.Create(context.Background(), sess, "users", userRow(1, "Nano"), "id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
