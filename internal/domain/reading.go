package domain

import (
	"errors"
	"time"
)

// Canonical column names produced by the transforms in this package.
const (
	ColumnRoom        = "room"
	ColumnRawTime     = "ts_raw"
	ColumnDate        = "date"
	ColumnTimestamp   = "ts"
	ColumnTemperature = "temperature_c"
	ColumnLocation    = "location"
	ColumnRawID       = "raw_id"
)

// ErrInvalidTemperature is returned when a temperature that survived the
// missing-field filter still cannot be parsed as a number.
var ErrInvalidTemperature = errors.New("invalid temperature")

// Location is the closed set of sensor placements.
type Location string

const (
	LocationIn  Location = "In"
	LocationOut Location = "Out"
)

// Reading is one validated temperature sample ready to be persisted.
type Reading struct {
	Room         *string   `json:"room"`
	Timestamp    time.Time `json:"ts"`
	TemperatureC float64   `json:"temperature_c"`
	Location     *Location `json:"location"`
}

// Stats counts what happened to the rows of one input table.
type Stats struct {
	Read                 int
	DroppedNoTimestamp   int
	DroppedNoTemperature int
}

// Dropped returns the number of rows removed for missing required fields.
func (s Stats) Dropped() int {
	return s.DroppedNoTimestamp + s.DroppedNoTemperature
}

// Kept returns the number of rows that became readings.
func (s Stats) Kept() int {
	return s.Read - s.Dropped()
}
