package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DefaultSchema returns the embedded DDL for a dialect.
func DefaultSchema(d Dialect) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + d.Name + ".sql")
	if err != nil {
		return "", fmt.Errorf("read embedded schema for %s: %w", d.Name, err)
	}
	return string(b), nil
}

// LoadSchema returns the DDL at path, or the embedded default when path is empty.
func LoadSchema(d Dialect, path string) (string, error) {
	if path == "" {
		return DefaultSchema(d)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema %s: %w", path, err)
	}
	return string(b), nil
}

// ApplySchema executes ddl verbatim inside one transaction. Re-running it is
// safe only if the DDL itself is idempotent.
func ApplySchema(ctx context.Context, db *sql.DB, ddl string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
