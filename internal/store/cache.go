package store

import (
	"context"
	"fmt"
)

// ClearCache empties both tables but keeps the schema.
func (db *DB) ClearCache(ctx context.Context) error {
	return db.RunInTx(ctx, func(txDB *DB) error {
		if _, err := txDB.ExecContext(ctx, "DELETE FROM weather"); err != nil {
			return fmt.Errorf("failed to clear weather: %w", err)
		}
		if _, err := txDB.ExecContext(ctx, "DELETE FROM location"); err != nil {
			return fmt.Errorf("failed to clear locations: %w", err)
		}
		return nil
	})
}
