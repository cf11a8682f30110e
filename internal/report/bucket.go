// Package report implements the transaction aggregation and reporting
// pipeline behind the dashboard: date bucketing, signed-total aggregation,
// period/series selection and top-N counterparty ranking. Everything here is
// a pure function over an in-memory snapshot of records; the package holds
// no state and performs no I/O.
package report

import (
	"bankdash/internal/core"
	"strings"
)

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularity selects the time bucket a series is grouped by.
type Granularity string

func (g Granularity) Valid() bool {
	return g == Daily || g == Weekly || g == Monthly
}

// ParseGranularity maps a query-string value to a Granularity, defaulting
// to Weekly, the dashboard's initial view.
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily
	case Monthly:
		return Monthly
	default:
		return Weekly
	}
}

// BucketKey maps a date to the canonical, sortable key for the given
// granularity. Two dates share a key iff they fall in the same bucket:
//
//	Daily   -> YYYY-MM-DD
//	Weekly  -> YYYY-MM-DD of the Monday on or before the date (ISO weeks)
//	Monthly -> YYYY-MM
//
// The zero Date has no bucket and yields "".
func BucketKey(d core.Date, g Granularity) string {
	if d.IsZero() {
		return ""
	}
	t := d.UTC()
	switch g {
	case Weekly:
		// days since Monday; Sunday counts as 6 back.
		back := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -back).Format("2006-01-02")
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
