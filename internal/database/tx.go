package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a single transaction boundary.  The transaction
// commits when fn returns nil and rolls back when fn returns an error
// or panics; either way the connection is released.  Boundaries do not
// nest; each top-level operation owns exactly one.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
