package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Room_ID", ColumnRoom},
		{"room_id/id", ColumnRoom},
		{" noted_date ", ColumnRawTime},
		{"Date", ColumnRawTime},
		{"last_updated", ColumnRawTime},
		{"Temp", ColumnTemperature},
		{"Temperature (C)", ColumnTemperature},
		{"temp_f", "temp_f"},
		{"Out/In", ColumnLocation},
		{"OutIn", ColumnLocation},
		{"sensor location", ColumnLocation},
		{"ID", ColumnRawID},
		{"device_id", "device_id"},
		{"  Humidity ", "humidity"},
		// first rule wins
		{"room_date", ColumnRoom},
		{"date_temperature", ColumnRawTime},
		{"temperature_location", ColumnTemperature},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.raw))
		})
	}
}

func TestNormalizeHeader_CanonicalIsNoOp(t *testing.T) {
	for _, h := range []string{
		ColumnRoom, ColumnRawTime, ColumnTimestamp, ColumnTemperature,
		ColumnLocation, ColumnRawID,
	} {
		assert.Equal(t, h, NormalizeHeader(h), h)
		assert.Equal(t, h, NormalizeHeader(NormalizeHeader(h)), h)
	}
}

func TestNormalizeColumns(t *testing.T) {
	tbl := NewTable(1,
		Column{Name: "id", Values: []any{"x"}},
		Column{Name: "Room_ID", Values: []any{"1"}},
		Column{Name: "noted_date", Values: []any{"08-12-2018 09:29"}},
		Column{Name: "Temp", Values: []any{"29"}},
		Column{Name: "Out/In", Values: []any{"In"}},
		Column{Name: "Battery", Values: []any{"90"}},
	)

	NormalizeColumns(tbl)

	assert.Equal(t,
		[]string{ColumnRawID, ColumnRoom, ColumnRawTime, ColumnTemperature, ColumnLocation, "battery"},
		tbl.Names())

	before := tbl.Names()
	NormalizeColumns(tbl)
	assert.Equal(t, before, tbl.Names())
}

func TestNormalizeColumns_DuplicateTargetsResolveLeftmost(t *testing.T) {
	tbl := NewTable(1,
		Column{Name: "room", Values: []any{"A"}},
		Column{Name: "room_id", Values: []any{"B"}},
	)

	NormalizeColumns(tbl)

	assert.Equal(t, []string{ColumnRoom, ColumnRoom}, tbl.Names())
	col, ok := tbl.Column(ColumnRoom)
	assert.True(t, ok)
	assert.Equal(t, []any{"A"}, col.Values)
}
