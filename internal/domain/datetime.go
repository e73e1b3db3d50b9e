package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// zonedLayouts carry their own offset.
	zonedLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05 -0700",
	}

	clockSuffixes = []string{"", " 15:04", " 15:04:05", " 3:04 PM", " 3:04:05 PM"}
	isoSuffixes   = []string{"T15:04", "T15:04:05"}
	dateSeps      = []string{"-", "/", "."}

	// primaryLayouts hold the zoned, year-first and day-first forms. Their
	// shapes are disjoint, so the first success among them is unambiguous.
	primaryLayouts = buildPrimaryLayouts()

	// monthFirstLayouts are only tried when no day-first reading exists.
	monthFirstLayouts = buildMonthFirstLayouts()
)

func buildPrimaryLayouts() []string {
	layouts := append([]string(nil), zonedLayouts...)
	for _, sep := range dateSeps {
		date := "2006" + sep + "1" + sep + "2"
		for _, s := range append(clockSuffixes, isoSuffixes...) {
			layouts = append(layouts, date+s)
		}
	}
	for _, sep := range dateSeps {
		for _, year := range []string{"2006", "06"} {
			date := "2" + sep + "1" + sep + year
			for _, s := range clockSuffixes {
				layouts = append(layouts, date+s)
			}
		}
	}
	for _, date := range []string{"2-Jan-2006", "2 Jan 2006", "2/Jan/2006"} {
		for _, s := range clockSuffixes {
			layouts = append(layouts, date+s)
		}
	}
	return layouts
}

func buildMonthFirstLayouts() []string {
	var layouts []string
	for _, sep := range dateSeps {
		for _, year := range []string{"2006", "06"} {
			date := "1" + sep + "2" + sep + year
			for _, s := range clockSuffixes {
				layouts = append(layouts, date+s)
			}
		}
	}
	return layouts
}

// DateParser parses sensor timestamps day-first. Numeric export shapes go
// through a fixed layout list; it remembers the last primary layout that
// succeeded and tries it first on the next value, so a file written in a
// single format costs one attempt per value. Textual forms such as spelled
// out months or zone names are handed to dateparse with day-first
// preference. The zero value is ready to use. A DateParser is not safe for
// concurrent use.
type DateParser struct {
	last string
}

// Parse converts s into a UTC time. It reports false for empty or
// unparseable input.
func (p *DateParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if p.last != "" {
		if t, ok := parseLayout(p.last, s); ok {
			return t, true
		}
	}
	for _, layout := range primaryLayouts {
		if t, ok := parseLayout(layout, s); ok {
			p.last = layout
			return t, true
		}
	}
	for _, layout := range monthFirstLayouts {
		if t, ok := parseLayout(layout, s); ok {
			return t, true
		}
	}
	return parseFreeform(s)
}

// parseFreeform covers the textual forms. Bare digit runs are rejected:
// dateparse reads them as years or epochs, and in sensor exports they are
// ids or clock readings.
func parseFreeform(s string) (time.Time, bool) {
	if strings.Trim(s, "0123456789") == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ParseTimestamp parses a single value with a fresh DateParser.
func ParseTimestamp(s string) (time.Time, bool) {
	var p DateParser
	return p.Parse(s)
}

func parseLayout(layout, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ParseDates replaces the raw time column of t with a parsed ts column.
// ts_raw is preferred over a literal date column. Unparseable cells become
// null. When neither source column exists, t is left without a ts column.
func ParseDates(t *Table) {
	source := ColumnRawTime
	col, ok := t.Column(source)
	if !ok {
		source = ColumnDate
		if col, ok = t.Column(source); !ok {
			return
		}
	}

	var p DateParser
	parsed := make([]any, len(col.Values))
	for i, v := range col.Values {
		switch x := v.(type) {
		case nil:
		case time.Time:
			parsed[i] = x.UTC()
		default:
			if ts, ok := p.Parse(cellText(x)); ok {
				parsed[i] = ts
			}
		}
	}

	t.Drop(source)
	t.Set(ColumnTimestamp, parsed)
}
