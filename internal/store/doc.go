// Package store persists decoded FTR records in SQLite.
//
// Each imported file becomes one row in imports plus its records spread
// over one table per record kind. Every record row carries the import id and
// a seq: the record's position in decode order.
//
// # Idempotency
//
// imports.content_hash is UNIQUE. Importing the same container bytes twice
// returns the existing import and writes nothing.
//
// # Deterministic Reads
//
//   - Record queries use ORDER BY seq ASC
//   - Import listings use ORDER BY imported_at ASC, id ASC COLLATE BINARY
//   - ReadRecords merges all record tables by seq and returns the records
//     exactly as the decoder emitted them
//
// Connections use WAL journaling with synchronous=NORMAL, wait up to five
// seconds on a locked database and enforce foreign keys, so deleting an
// import row removes its records.
//
// Identifiers are 64-bit unsigned in the format but SQLite integers are
// signed; ids are stored as their int64 bit pattern and converted back on
// read.
package store
