// Package history provides the BBolt journal of env file snapshots.
//
// Database structure uses three buckets:
//   - config: schema version, created and modified timestamps
//   - snapshots: one nested bucket per env file (absolute path), keyed by
//     big-endian sequence number, holding JSON snapshot records
//   - blobs: file contents keyed by BLAKE2b-256 digest, shared by snapshots
//     with identical content
//
// A snapshot holds the file content as it was before an edit, so restoring
// the latest snapshot undoes the latest edit.
//
// BBolt provides ACID transactions and file locking, so two envedit
// processes never interleave writes to the journal.
package history
