// Package jsondb provides a schema-less table store persisted as a single JSON file.
//
// # Overview
//
// The package centers around [Store], which owns a set of named tables of
// JSON records keyed by an auto-incrementing integer id. The whole data set
// lives in memory; every mutation rewrites the backing file in full.
//
// # Snapshot Persistence
//
// Durability is snapshot-based: each successful mutation serializes every
// table and replaces the file contents (truncate, rewind, write). There is
// no write-ahead log and no append path. A crash mid-write can leave a
// truncated file, which is an accepted trade-off for a single-process
// embedded store. A flush failure leaves memory ahead of disk until the
// next successful flush.
//
// # Concurrency
//
// Store performs no internal locking. Callers are expected to guard it with
// one process-wide mutex and to hold that mutex across composite sequences
// such as "allocate id, then upsert" or "check uniqueness, then insert".
// See the storage package for the canonical wrapper.
//
// # File Format
//
// One JSON document: an object mapping table name to
// {"next_id": <uint>, "data": {"<id>": <record>, ...}}. Reloading the file
// reconstructs an identical store.
package jsondb
