package report

import (
	"sort"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

const (
	// ModeAmount expresses deltas as absolute currency differences,
	// ModePercent as a percentage of the previous-period value. The flag
	// only changes formatting of the delta, never which values are
	// computed.
	ModeAmount  DisplayMode = "amount"
	ModePercent DisplayMode = "percent"
)

type (
	DisplayMode string

	// Point is one chartable value of a series.
	Point struct {
		BucketKey string
		Value     decimal.Decimal
	}

	// Series is the ordered sequence handed to the chart renderer, plus
	// the "From last …" caption for the summary cards.
	Series struct {
		Points          []Point
		ComparisonLabel string
	}
)

// ParseDisplayMode defaults to ModeAmount, the dashboard's "$" toggle.
func ParseDisplayMode(s string) DisplayMode {
	if DisplayMode(s) == ModePercent {
		return ModePercent
	}
	return ModeAmount
}

// SelectSeries derives the series to display from an aggregation.
//
// When explicit is a real date the series is the single day bucket for that
// date (possibly empty) and no comparison label is produced, matching the
// reference behavior of suppressing trend text for a pinned day. Otherwise
// all buckets of the granularity are returned in ascending bucket order;
// limit > 0 keeps only the trailing limit buckets (a presentation nicety,
// 0 means no windowing).
func SelectSeries(agg Aggregation, g Granularity, explicit core.Date, limit int) Series {
	if !explicit.IsZero() {
		key := BucketKey(explicit, Daily)
		s := Series{}
		if v, ok := agg.Daily[key]; ok {
			s.Points = []Point{{BucketKey: key, Value: v}}
		}
		return s
	}

	buckets := agg.Buckets(g)
	points := make([]Point, 0, len(buckets))
	for k, v := range buckets {
		points = append(points, Point{BucketKey: k, Value: v})
	}
	// Bucket keys are zero-padded, so lexicographic order is
	// chronological for both YYYY-MM-DD and YYYY-MM.
	sort.Slice(points, func(i, j int) bool { return points[i].BucketKey < points[j].BucketKey })

	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}

	return Series{Points: points, ComparisonLabel: comparisonLabel(g)}
}

func comparisonLabel(g Granularity) string {
	switch g {
	case Daily:
		return "From last day"
	case Monthly:
		return "From last month"
	default:
		return "From last week"
	}
}

// PreviousPeriod derives the prior-period value for a summary figure.
//
// No true prior-period data source exists in this pipeline, so the value is
// the documented placeholder: the current value scaled by 0.9. Replace this
// with a real prior-period aggregation once a history boundary exists.
func PreviousPeriod(current decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return decimal.Zero
	}
	return current.Mul(decimal.NewFromFloat(0.9))
}

// Delta computes the period-over-period change for a summary card. With a
// zero previous value the delta equals the current value (or zero when the
// current value is itself zero). ModePercent expresses the change as a
// percentage of the previous value.
func Delta(current decimal.Decimal, mode DisplayMode) decimal.Decimal {
	prev := PreviousPeriod(current)
	if prev.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return current
	}
	diff := current.Sub(prev)
	if mode == ModePercent {
		return diff.Div(prev).Mul(decimal.NewFromInt(100))
	}
	return diff
}
