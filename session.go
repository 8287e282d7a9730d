// Package pgconnect is a thin convenience layer over a PostgreSQL
// connection: a connection-scoped session with "find or create",
// parameterized single and bulk inserts, and an in-memory guard against
// redundant existence checks.
//
// A Session wraps exactly one connection and is not safe for concurrent
// use; open one per unit of work.
package pgconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/merfrei/pgconnect/internal/sqlerr"
	"github.com/merfrei/pgconnect/internal/sqlgen"
)

// DefaultKeyField is the column conventionally used as a row identifier.
const DefaultKeyField = "id"

type sessionState int

const (
	stateCreated sessionState = iota
	stateOpen
	stateClosed
)

// Session owns one live database connection. Lifecycle is
// created -> Open -> Closed; a closed session cannot be reopened.
type Session struct {
	uri    string
	db     *sql.DB
	ownsDB bool
	conn   *sql.Conn
	log    zerolog.Logger
	state  sessionState
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithLogger attaches a logger. The default is zerolog.Nop().
func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithDB makes the session acquire its connection from an existing pool
// instead of opening one from the URI. The pool is not closed by Close.
func WithDB(db *sql.DB) SessionOption {
	return func(s *Session) { s.db = db }
}

// NewSession creates an inactive session for the given connection URI.
// No connection is made until Open.
func NewSession(uri string, opts ...SessionOption) *Session {
	s := &Session{uri: uri, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizeDSN defaults sslmode=disable for URL-style DSNs that omit it.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") && !strings.Contains(dsn, "sslmode=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "sslmode=disable"
	}
	return dsn
}

// Open acquires the session's connection. It fails on an already-open
// session and on one that was closed.
func (s *Session) Open(ctx context.Context) error {
	switch s.state {
	case stateOpen:
		return ErrSessionOpen
	case stateClosed:
		return ErrSessionClosed
	}

	db := s.db
	if db == nil {
		if s.uri == "" {
			return fmt.Errorf("pgconnect: empty connection URI")
		}
		var err error
		db, err = sql.Open("postgres", normalizeDSN(s.uri))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		s.ownsDB = true
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		if s.ownsDB {
			db.Close()
		}
		return fmt.Errorf("acquire connection: %w", err)
	}

	s.db = db
	s.conn = conn
	s.state = stateOpen
	s.log.Debug().Msg("session open")
	return nil
}

// Close releases the connection. Safe to call more than once; after the
// first call the session is terminally closed.
func (s *Session) Close() error {
	if s.state != stateOpen {
		s.state = stateClosed
		return nil
	}
	err := s.conn.Close()
	if s.ownsDB {
		if dbErr := s.db.Close(); err == nil {
			err = dbErr
		}
	}
	s.conn = nil
	s.state = stateClosed
	s.log.Debug().Msg("session closed")
	return err
}

// Ping verifies the session connection is alive.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	return s.conn.PingContext(ctx)
}

func (s *Session) requireOpen() error {
	switch s.state {
	case stateOpen:
		return nil
	case stateClosed:
		return ErrSessionClosed
	default:
		return ErrSessionNotOpen
	}
}

// WithSession runs fn inside a session scope: the connection is acquired
// up front and released on every exit path, including a panic in fn. A
// failure from fn is logged with its kind and context before the
// connection is released, then returned unchanged; release errors never
// mask it. A panic is logged, the connection released, and the panic
// re-raised.
func WithSession(ctx context.Context, uri string, fn func(*Session) error, opts ...SessionOption) (err error) {
	s := NewSession(uri, opts...)
	if err = s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("session scope panicked")
			s.Close()
			panic(r)
		}
		if err != nil {
			evt := s.log.Error().Err(err).Str("kind", errorKind(err))
			if state := sqlerr.State(err); state != "" {
				evt = evt.Str("sqlstate", state)
			}
			evt.Msg("session scope failed")
		}
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// FindOrCreate looks a row up by equality on every field and inserts it
// when absent. On a lookup hit the fetched columns are folded over the
// input row and the merged row is returned alongside the value of
// returnField ("" for none). On a miss the row is inserted and the new
// returnField value is returned with the row unchanged.
func (s *Session) FindOrCreate(ctx context.Context, table string, row Row, returnField string) (any, Row, error) {
	if err := s.requireOpen(); err != nil {
		return nil, nil, err
	}
	if len(row) == 0 {
		return nil, nil, ErrEmptyRow
	}

	lookup := sqlgen.Lookup(table).Limit(1)
	for _, f := range row {
		lookup.Where(f.Column, f.Value)
	}
	query, args, err := lookup.Build()
	if err != nil {
		return nil, nil, err
	}

	found, cols, vals, err := s.fetchRow(ctx, query, args)
	if err != nil {
		return nil, nil, wrapDBErr("lookup", table, err)
	}
	if !found {
		value, err := s.InsertOne(ctx, table, row, returnField)
		if err != nil {
			return nil, nil, err
		}
		return value, row, nil
	}

	merged := row.merge(cols, vals)
	value, _ := merged.Get(returnField)
	return value, merged, nil
}

// InsertOne inserts a single row, splitting it into a parallel column list
// and value tuple. Pass DefaultKeyField (or "") as returnField.
func (s *Session) InsertOne(ctx context.Context, table string, row Row, returnField string) (any, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, ErrEmptyRow
	}
	return s.Insert(ctx, table, row.Columns(), [][]any{row.Values()}, Returning(returnField))
}

type insertOptions struct {
	returning  string
	onConflict string
}

// InsertOption adjusts a single Insert call.
type InsertOption func(*insertOptions)

// Returning requests a RETURNING clause for the given column.
func Returning(column string) InsertOption {
	return func(o *insertOptions) { o.returning = column }
}

// OnConflict appends an ON CONFLICT clause, e.g. "DO NOTHING".
func OnConflict(clause string) InsertOption {
	return func(o *insertOptions) { o.onConflict = clause }
}

// Insert writes one or more tuples as a single statement, executed inside
// its own transaction on the session connection. When a RETURNING column
// was requested the first result value is returned, otherwise nil.
func (s *Session) Insert(ctx context.Context, table string, columns []string, tuples [][]any, opts ...InsertOption) (any, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	var o insertOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := sqlgen.InsertInto(table).Columns(columns...)
	for _, tuple := range tuples {
		b.Values(tuple...)
	}
	if o.onConflict != "" {
		b.OnConflict(o.onConflict)
	}
	if o.returning != "" {
		b.Returning(o.returning)
	}
	query, args, err := b.Build()
	if err != nil {
		return nil, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDBErr("insert", table, err)
	}
	var value any
	if o.returning != "" {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&value)
		// ON CONFLICT DO NOTHING can skip the insert entirely, in which
		// case RETURNING yields no row and the value is simply absent.
		if errors.Is(err, sql.ErrNoRows) {
			value, err = nil, nil
		}
	} else {
		_, err = tx.ExecContext(ctx, query, args...)
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, wrapDBErr("insert", table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapDBErr("insert", table, err)
	}
	return normalizeValue(value), nil
}

// fetchRow runs query and returns the first result row as parallel column
// and value slices. found is false when the result set was empty.
func (s *Session) fetchRow(ctx context.Context, query string, args []any) (found bool, columns []string, values []any, err error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return false, nil, nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return false, nil, nil, rows.Err()
	}
	columns, err = rows.Columns()
	if err != nil {
		return false, nil, nil, err
	}
	values = make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return false, nil, nil, err
	}
	return true, columns, values, nil
}

// wrapDBErr marks a failure reported by the database layer.
func wrapDBErr(op, table string, err error) error {
	return &DatabaseError{Op: op, Table: table, Err: err}
}
