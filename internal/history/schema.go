package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is kept in the database header (PRAGMA user_version). Bump it
// whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch reports a ledger written by a newer mapassist.
var ErrSchemaMismatch = errors.New("history schema is newer than this build")

// ledgerTables lists every table an older layout may have left behind,
// children first so foreign keys never block the drop.
var ledgerTables = []string{"results", "runs", "schema_version"}

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history schema version: %w", err)
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("%w: %s has version %d, this build reads %d",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	default:
		return s.resetLedger(ctx)
	}
}

// resetLedger replaces whatever ledger tables exist with the current layout.
// Runs recorded under an older layout are discarded; the ledger only holds
// past check results.
func (s *Store) resetLedger(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range ledgerTables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create ledger tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
