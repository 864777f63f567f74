// Package storage provides typed services over the jsondb store.
//
// The store itself is lock-free; DB owns the single process-wide mutex that
// serializes all access to it. Services hold the mutex for the full duration
// of each logical operation, including composite sequences like "allocate an
// id, then insert" and "check uniqueness, then insert", which are only
// atomic while the lock is held.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/snapdb/snapdb/internal/jsondb"
	"github.com/snapdb/snapdb/internal/models"
)

// Sentinel errors surfaced by the services. Handlers translate these to
// HTTP status codes.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on login with a bad username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTableMissing indicates a table that should have been created at
	// startup is absent. This is a programming error, not user input.
	ErrTableMissing = errors.New("table missing")
)

// DB wraps the store with the process-wide lock shared by every service.
type DB struct {
	mu    sync.Mutex
	store *jsondb.Store
}

// Open loads the store from path and ensures the application tables exist.
// Existing tables are left untouched: recreate=false keeps their records
// and id counters.
func Open(path string) (*DB, error) {
	store, err := jsondb.Open(path)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{models.ItemTable, models.UserTable} {
		if err := store.AddTable(name, false); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}
	return &DB{store: store}, nil
}

// Close releases the store's backing file.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.store.Close()
}

// decodeRecord converts a stored generic value into the caller's record
// shape. A mismatch means the table holds data this build cannot read,
// which is a contract violation rather than a user-facing condition.
func decodeRecord[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("corrupt record: %w", err)
	}
	return &v, nil
}

func encodeRecord(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return raw, nil
}
