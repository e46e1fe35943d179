// Package daemon runs the long-lived dubber process: the job scheduler,
// the HTTP API and the optional directory monitor, under a single
// flock-based lifecycle so only one instance touches the database.
package daemon
