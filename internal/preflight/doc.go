// Package preflight provides the readiness checks a release or fullcheck run
// depends on.
//
// Checks cover the release layout (a "gesource" root with a maps directory
// and a readable map binary), the GE:S install, the map parameters, and
// directory permissions. Each check yields a Result; advisory findings set
// Warn instead of failing. Usable folds a result set into the single
// precondition the release orchestrator consumes.
package preflight
