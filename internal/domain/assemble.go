package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Transform runs the full normalization chain over t (header mapping, date
// parsing, location cleanup) and assembles the surviving readings. t is
// modified in place.
func Transform(t *Table) ([]Reading, Stats, error) {
	NormalizeColumns(t)
	ParseDates(t)
	CleanLocations(t)
	return Assemble(t)
}

// Assemble projects the canonical columns of t into readings. Rows missing a
// timestamp or a temperature are dropped and counted. A remaining temperature
// that is not numeric after decimal-comma substitution aborts assembly with
// an error wrapping ErrInvalidTemperature; no readings are returned then.
func Assemble(t *Table) ([]Reading, Stats, error) {
	rooms := values(t, ColumnRoom)
	stamps := values(t, ColumnTimestamp)
	temps := values(t, ColumnTemperature)
	locs := values(t, ColumnLocation)

	stats := Stats{Read: t.Len()}
	readings := make([]Reading, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		ts, ok := stamps[i].(time.Time)
		if !ok {
			stats.DroppedNoTimestamp++
			continue
		}
		if temps[i] == nil {
			stats.DroppedNoTemperature++
			continue
		}

		temp, err := parseTemperature(temps[i])
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", i+1, err)
		}

		readings = append(readings, Reading{
			Room:         textPtr(rooms[i]),
			Timestamp:    ts,
			TemperatureC: temp,
			Location:     CleanLocation(locs[i]),
		})
	}
	return readings, stats, nil
}

// values returns the named column, or nulls when it is missing.
func values(t *Table, name string) []any {
	if col, ok := t.Column(name); ok {
		return col.Values
	}
	return t.Nulls()
}

// parseTemperature accepts a decimal point or a decimal comma. Hex floats
// and non-finite values are rejected.
func parseTemperature(v any) (float64, error) {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTemperature, f)
		}
		return f, nil
	}
	raw := cellText(v)
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTemperature, raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTemperature, raw)
	}
	return f, nil
}

func textPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := cellText(v)
	return &s
}
