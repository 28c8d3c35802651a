// Package musicscript generates and validates a map's level music playlist.
//
// A playlist is a single "music" block of "file" entries, optionally grouped
// into named sub-blocks one level deep. Track paths are relative to a sound
// directory and must resolve in either the game install or the release.
package musicscript
