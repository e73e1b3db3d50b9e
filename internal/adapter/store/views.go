package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
)

// DailyStat is one row of v_daily_stats.
type DailyStat struct {
	Day      time.Time `json:"day"`
	TempAvg  float64   `json:"temp_avg"`
	TempMin  float64   `json:"temp_min"`
	TempMax  float64   `json:"temp_max"`
	Readings int64     `json:"readings"`
}

// ViewReader queries the aggregate views maintained by the schema.
type ViewReader struct {
	db *sql.DB
}

// NewViewReader creates a ViewReader over db.
func NewViewReader(db *sql.DB) *ViewReader {
	return &ViewReader{db: db}
}

// DailyStats returns v_daily_stats ordered by day.
func (v *ViewReader) DailyStats(ctx context.Context) ([]DailyStat, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT day, temp_avg, temp_min, temp_max, readings FROM v_daily_stats ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var (
			day any
			s   DailyStat
		)
		if err := rows.Scan(&day, &s.TempAvg, &s.TempMin, &s.TempMax, &s.Readings); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		if s.Day, err = scanTime(day); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stats: %w", err)
	}
	return out, nil
}

// LatestPerRoom returns the most recent reading of every room, ordered by room.
func (v *ViewReader) LatestPerRoom(ctx context.Context) ([]domain.Reading, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT room, ts, temperature_c, location FROM v_latest_per_room ORDER BY room`)
	if err != nil {
		return nil, fmt.Errorf("query latest per room: %w", err)
	}
	defer rows.Close()

	var out []domain.Reading
	for rows.Next() {
		var (
			room, loc sql.NullString
			ts        any
			r         domain.Reading
		)
		if err := rows.Scan(&room, &ts, &r.TemperatureC, &loc); err != nil {
			return nil, fmt.Errorf("scan latest per room: %w", err)
		}
		if r.Timestamp, err = scanTime(ts); err != nil {
			return nil, fmt.Errorf("scan latest per room: %w", err)
		}
		if room.Valid {
			r.Room = &room.String
		}
		if loc.Valid {
			l := domain.Location(loc.String)
			r.Location = &l
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest per room: %w", err)
	}
	return out, nil
}

// CheckReadiness reports whether the store is reachable.
func (v *ViewReader) CheckReadiness(ctx context.Context) error {
	if err := v.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// scanTime accepts the time representations drivers return for DATE and
// TIMESTAMP columns. SQLite view expressions come back as text.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	if t, ok := domain.ParseTimestamp(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
