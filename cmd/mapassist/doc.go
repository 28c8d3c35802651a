// Package main hosts the mapassist CLI entrypoint and command graph.
//
// The root command prepares a single map release: it runs the preflight
// checks, then builds or validates the map script, music script, and reslist.
// Subcommands sweep a whole install (fullcheck), re-run the release check on
// file changes (watch), browse the run ledger (history), and scaffold
// configuration (config). The process exit code is the failure bitmask of the
// run, so scripts can tell which document failed.
//
// Keep this package lean: behaviour lives in the internal packages and is
// surfaced here through flags and rendering.
package main
