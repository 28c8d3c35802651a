// Package dirindex scans release and install trees into immutable snapshots
// of normalized file paths.
//
// An Index computes each distinct (roots, filter) snapshot at most once.
// Concurrent callers asking for the same key wait on the single in-flight
// scan instead of walking the tree again, and every later caller reads the
// memoized result without taking a lock. Roots that do not exist contribute
// nothing; any other walk failure fails the snapshot.
package dirindex
