package domain

import "strings"

// headerRule maps any header satisfying match to a canonical column name.
type headerRule struct {
	match func(h string) bool
	name  string
}

// headerRules are evaluated in order; the first match wins.
var headerRules = []headerRule{
	{match: containsAny("room"), name: ColumnRoom},
	{match: containsAny("noted_date", "date"), name: ColumnRawTime},
	{match: func(h string) bool { return h == "temp" || strings.Contains(h, "temper") }, name: ColumnTemperature},
	{match: containsAny("out/in", "outin", "location"), name: ColumnLocation},
	{match: func(h string) bool { return h == "id" }, name: ColumnRawID},
}

func containsAny(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

// CleanHeader trims and lower-cases a raw header.
func CleanHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeHeader maps a raw CSV header to its canonical column name.
// Headers matching no rule are returned trimmed and lower-cased.
func NormalizeHeader(raw string) string {
	h := CleanHeader(raw)
	for _, r := range headerRules {
		if r.match(h) {
			return r.name
		}
	}
	return h
}

// NormalizeColumns renames every column of t to its canonical name in place.
func NormalizeColumns(t *Table) {
	for i := range t.columns {
		t.columns[i].Name = NormalizeHeader(t.columns[i].Name)
	}
}
