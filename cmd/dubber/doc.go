// Command dubber is the CLI for merging recorded audio into matching
// video files, either synchronously or by inspecting the daemon's job
// history.
package main
