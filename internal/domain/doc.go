// Package domain models temperature readings exported by IoT sensors and the
// transforms that turn a loosely formatted CSV export into canonical rows.
//
// # Data Source
//
// Sensor exports arrive as a single CSV file whose header naming drifts
// between firmware versions and export tools. A typical file looks like:
//
//	id,room_id/id,noted_date,temp,out/in
//	__export__.temp_log_196134_bd201015,Room Admin,08-12-2018 09:30,29,In
//
// # Canonical Fields
//
// Every surviving row becomes a [Reading] with four fields:
//
//	room           free-text room identifier, nullable
//	ts             point in time, required
//	temperature_c  degrees Celsius, required
//	location       "In", "Out" or null
//
// # Header Inference
//
// Headers are trimmed, lower-cased and matched against an ordered keyword
// rule list (see [NormalizeHeader]). The first rule that matches wins and
// headers matching nothing pass through unchanged, so normalizing already
// canonical headers is a no-op.
//
// # Date Conventions
//
// Sensor timestamps are written day-first ("08-12-2018 09:29" is the 8th of
// December). Year-first ISO forms are also accepted. When a value cannot be
// day-first because its second field exceeds 12, it is read month-first.
// Unparseable values become null; they never fail the run. Values without a
// zone are taken as UTC. See [ParseTimestamp].
//
// # Numeric Conventions
//
// Temperatures may use a decimal comma ("23,5"). Every comma is replaced by a
// point before parsing. A value that is still not numeric after the filter
// for missing fields is a corrupt export and fails the whole run with
// [ErrInvalidTemperature].
package domain
