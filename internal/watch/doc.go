// Package watch re-runs release checks when files under a release root change.
//
// Every directory under the root is registered with fsnotify, including
// directories created later. Events are filtered through doublestar ignore
// patterns and coalesced over a debounce window, so an editor save or a
// batch copy produces one callback carrying every changed path.
package watch
