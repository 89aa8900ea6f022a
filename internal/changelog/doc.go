// Package changelog turns a linear commit history into release notes.
//
// This package implements:
//   - Commit message splitting into header, body and footer
//   - Conventional header classification into category, scope and summary
//   - Partitioning of categorized commits into per-tag release buckets
//     plus an unreleased bucket
//   - Per-bucket grouping by category in first-seen order
//
// The package performs no I/O. Reading history from a repository lives in
// internal/git and output formats live in internal/render.
package changelog
