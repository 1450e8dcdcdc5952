// Package diff renders line-level differences between two versions of an
// env file.
//
// Differences are computed in line mode by go-diff (diffmatchpatch) and
// printed as unified diff hunks with three lines of context. Content that
// does not look like text is reported as a single "Binary file" line.
package diff
