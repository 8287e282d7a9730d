package pgconnect

import (
	"context"
	"fmt"
)

// DefaultBatchSize is used when NewBulkInserter gets a non-positive size.
const DefaultBatchSize = 1000

// BulkInserter buffers value tuples for one table and writes them as a
// single multi-row INSERT once the buffer is full or Flush is called.
// Conflicting rows are skipped (ON CONFLICT DO NOTHING). There is no
// automatic flush on disposal: call Flush after the last Add. Not safe
// for concurrent use.
type BulkInserter struct {
	session   *Session
	table     string
	columns   []string
	batchSize int
	buf       [][]any
}

// NewBulkInserter creates an inserter writing through session into table
// with the given ordered column list.
func NewBulkInserter(session *Session, table string, columns []string, batchSize int) *BulkInserter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BulkInserter{
		session:   session,
		table:     table,
		columns:   columns,
		batchSize: batchSize,
		buf:       make([][]any, 0, batchSize),
	}
}

// Add buffers one tuple. When the buffer reaches the batch size it is
// flushed synchronously before Add returns; a flush failure is returned
// here and leaves the buffer intact.
func (b *BulkInserter) Add(ctx context.Context, values ...any) error {
	if len(values) != len(b.columns) {
		return fmt.Errorf("pgconnect: tuple has %d values, want %d", len(values), len(b.columns))
	}
	b.buf = append(b.buf, values)
	if len(b.buf) >= b.batchSize {
		return b.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered tuples as one statement and empties the
// buffer. A no-op when nothing is buffered. The buffer is cleared only
// after the insert succeeded.
func (b *BulkInserter) Flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}
	_, err := b.session.Insert(ctx, b.table, b.columns, b.buf, OnConflict("DO NOTHING"))
	if err != nil {
		return err
	}
	b.buf = b.buf[:0]
	return nil
}

// Pending returns the number of buffered tuples.
func (b *BulkInserter) Pending() int {
	return len(b.buf)
}
