// Package reslist generates and validates the resource manifest a map ships
// with, and reconciles declared entries against the files actually on disk.
//
// Reconciliation runs in both directions. Every declared path must exist and
// appear once, and for a single release every distributable file must be
// declared. A full check of a shared install skips the second direction.
package reslist
