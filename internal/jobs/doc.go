// Package jobs defines the merge job model and its SQLite-backed store.
package jobs
