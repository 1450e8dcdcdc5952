// Package dotenv edits KEY=value files in place.
//
// A Store keeps the whole file in one byte buffer and indexes every
// declaration by key:
//   - LineStart: first byte of the line, where a disabling '#' goes
//   - ValueStart: first byte after the '='
//   - ValueEnd: end of the line content, before any '\r' or '\n'
//
// Every mutation is a splice of that buffer. After a splice the edited entry
// is re-parsed and all other entries after the edit point are shifted by the
// length delta, so the index stays valid for the life of the Store.
//
// Disabled declarations ("#KEY=value", "# KEY=value") are indexed under their
// bare key. Lines without '=' are preserved verbatim and never indexed.
package dotenv
