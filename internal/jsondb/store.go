package jsondb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// tableData is the serialized form of a single table.
type tableData struct {
	// NextID is strictly greater than every id ever issued for this table,
	// including ids whose records were since deleted. Ids are never reused.
	NextID uint64                     `json:"next_id"`
	Data   map[uint64]json.RawMessage `json:"data"`
}

// Store owns a set of named tables and the handle to their backing file.
//
// Store does no locking of its own; wrap it in a single process-wide mutex
// shared by all callers.
type Store struct {
	path   string
	file   *os.File
	tables map[string]*tableData
}

// Open opens or creates the backing file at path and loads all tables.
//
// A pre-existing non-empty file must parse as the full table map; a corrupt
// file is an error and prevents startup. The returned Store keeps the file
// handle open for its lifetime.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file %s: %w", path, err)
	}

	contents, err := io.ReadAll(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read database file %s: %w", path, err)
	}

	tables := map[string]*tableData{}
	if len(contents) > 0 {
		if err := json.Unmarshal(contents, &tables); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to parse database file %s: %w", path, err)
		}
	}

	return &Store{path: path, file: f, tables: tables}, nil
}

// Close releases the backing file handle. The Store must not be used after.
func (s *Store) Close() error {
	return s.file.Close()
}

// flush rewrites the backing file with the serialized form of every table.
// In-memory state is already mutated when flush runs, so a flush error
// leaves memory and disk inconsistent until the next successful flush.
func (s *Store) flush() error {
	data, err := json.Marshal(s.tables)
	if err != nil {
		return fmt.Errorf("failed to serialize tables: %w", err)
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", s.path, err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", s.path, err)
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// AddTable creates the named table with an empty record set and the id
// counter at 1, then flushes.
//
// When recreate is false and the table already exists, the call is a no-op:
// no state change, no flush. When recreate is true an existing table is
// reset, discarding all of its records. That reset is intentional.
func (s *Store) AddTable(name string, recreate bool) error {
	if _, ok := s.tables[name]; ok && !recreate {
		return nil
	}
	s.tables[name] = &tableData{
		NextID: 1,
		Data:   map[uint64]json.RawMessage{},
	}
	return s.flush()
}

// NextID allocates the next record id for the table, persisting the
// incremented counter before returning so a crash never reuses an id.
// The bool is false when the table does not exist.
func (s *Store) NextID(table string) (uint64, bool, error) {
	t, ok := s.tables[table]
	if !ok {
		return 0, false, nil
	}
	id := t.NextID
	t.NextID++
	return id, true, s.flush()
}

// Upsert inserts or replaces the record at id and flushes, returning the
// stored value. The prior value, if any, is overwritten whole, not merged.
// The bool is false when the table does not exist; nothing is written then.
func (s *Store) Upsert(table string, id uint64, value json.RawMessage) (json.RawMessage, bool, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, false, nil
	}
	t.Data[id] = value
	return value, true, s.flush()
}

// DeleteByID removes the record at id if present and flushes. The flush
// happens whether or not a record was removed. The returned value is nil
// when the record was absent; the bool is false when the table itself does
// not exist.
func (s *Store) DeleteByID(table string, id uint64) (json.RawMessage, bool, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, false, nil
	}
	value := t.Data[id]
	delete(t.Data, id)
	return value, true, s.flush()
}

// DeleteAll clears every record in the table and flushes. The id counter is
// left alone: subsequent ids continue from where they were. The bool is
// false when the table does not exist.
func (s *Store) DeleteAll(table string) (bool, error) {
	t, ok := s.tables[table]
	if !ok {
		return false, nil
	}
	t.Data = map[uint64]json.RawMessage{}
	return true, s.flush()
}

// FindByID returns the record at id. Read-only, no flush. The bool is false
// when the table does not exist or the record is absent.
func (s *Store) FindByID(table string, id uint64) (json.RawMessage, bool) {
	t, ok := s.tables[table]
	if !ok {
		return nil, false
	}
	value, ok := t.Data[id]
	return value, ok
}

// FindAll returns every record in ascending id order. The bool is false
// only when the table does not exist; an empty table yields an empty,
// non-nil slice.
func (s *Store) FindAll(table string) ([]json.RawMessage, bool) {
	t, ok := s.tables[table]
	if !ok {
		return nil, false
	}
	values := make([]json.RawMessage, 0, len(t.Data))
	for _, id := range sortedIDs(t.Data) {
		values = append(values, t.Data[id])
	}
	return values, true
}

// FindByField returns, in ascending id order, every record whose top-level
// field equals value. Records that are not JSON objects, or that lack the
// field or hold a non-string there, are skipped. The bool is false when the
// table does not exist.
func (s *Store) FindByField(table, field, value string) ([]json.RawMessage, bool) {
	t, ok := s.tables[table]
	if !ok {
		return nil, false
	}
	values := []json.RawMessage{}
	for _, id := range sortedIDs(t.Data) {
		var obj map[string]any
		if err := json.Unmarshal(t.Data[id], &obj); err != nil {
			continue
		}
		if s, ok := obj[field].(string); ok && s == value {
			values = append(values, t.Data[id])
		}
	}
	return values, true
}

func sortedIDs(data map[uint64]json.RawMessage) []uint64 {
	ids := make([]uint64, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
