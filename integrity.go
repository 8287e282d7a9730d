package pgconnect

import "context"

// IntegrityCache remembers, per table, which key values are already known
// to exist so repeated Create calls skip the database entirely. It is a
// best-effort, process-local optimization: nothing is persisted and no
// cross-process guarantee is given. Not safe for concurrent use.
type IntegrityCache struct {
	store map[string]map[any]struct{}
}

// NewIntegrityCache returns an empty cache.
func NewIntegrityCache() *IntegrityCache {
	return &IntegrityCache{store: make(map[string]map[any]struct{})}
}

// Create ensures a row identified by keyField exists in table. The first
// call for a given (table, key value) reserves the key and runs a
// find-or-create through session; later calls with the same key are no-ops.
// Key values must be comparable. A failed round-trip releases the
// reservation so the key can be retried.
func (c *IntegrityCache) Create(ctx context.Context, session *Session, table string, row Row, keyField string) error {
	key, ok := row.Get(keyField)
	if !ok {
		return ErrMissingKeyField
	}

	seen := c.store[table]
	if seen == nil {
		seen = make(map[any]struct{})
		c.store[table] = seen
	}
	if _, done := seen[key]; done {
		return nil
	}

	// Reserve before the round-trip so re-entrant calls for the same key
	// do not race a second attempt through this cache instance.
	seen[key] = struct{}{}
	if _, _, err := session.FindOrCreate(ctx, table, row, ""); err != nil {
		delete(seen, key)
		return err
	}
	return nil
}

// Seen reports whether the key value is already recorded for table.
func (c *IntegrityCache) Seen(table string, key any) bool {
	_, ok := c.store[table][key]
	return ok
}
