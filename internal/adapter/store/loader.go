package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
)

// Loader appends readings to the base table.
// It implements pipeline.Loader.
type Loader struct {
	db     *sql.DB
	insert string
	logger *slog.Logger
}

// NewLoader creates a Loader for the given dialect.
func NewLoader(db *sql.DB, d Dialect, logger *slog.Logger) *Loader {
	return &Loader{
		db: db,
		insert: fmt.Sprintf("INSERT INTO %s (room, ts, temperature_c, location) VALUES (%s)",
			Table, d.Placeholders(4)),
		logger: logger,
	}
}

// Load inserts every reading in one transaction and returns the number of
// rows written. Either all readings persist or, on any failure, none do.
func (l *Loader) Load(ctx context.Context, readings []domain.Reading) (n int, err error) {
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin load tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, l.insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range readings {
		r := &readings[i]
		if _, err = stmt.ExecContext(ctx, nullable(r.Room), r.Timestamp.UTC(), r.TemperatureC, nullableLocation(r.Location)); err != nil {
			return 0, fmt.Errorf("insert reading %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load: %w", err)
	}

	l.logger.Debug("readings committed", "table", Table, "rows", len(readings))
	return len(readings), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableLocation(loc *domain.Location) any {
	if loc == nil {
		return nil
	}
	return string(*loc)
}
