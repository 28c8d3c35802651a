// Package release orchestrates the three release documents of a map package.
//
// Run prepares a single release: the map script and music script tasks run
// concurrently, then the reslist task runs once both have finished so the
// manifest sees their outputs. Each task generates its document when absent
// and validates it otherwise. A failing task never cancels its siblings;
// failures are folded into a bitmask on the Report.
//
// FullCheck validates every document in an install with three concurrent
// sweeps that share one directory index.
package release
