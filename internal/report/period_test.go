package report

import (
	"testing"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAggregation() Aggregation {
	return Aggregate([]core.TransactionRecord{
		tx(core.Credit, "500", "2025-11-02", "Transfer"),
		tx(core.Debit, "45", "2025-11-05", "Food Vendor"),
		tx(core.Debit, "120.50", "2025-11-06", "Tech Gadgets"),
		tx(core.Credit, "3200", "2025-10-03", "Payroll Deposit"),
	})
}

func TestSelectSeriesOrdering(t *testing.T) {
	s := SelectSeries(sampleAggregation(), Daily, core.Date{}, 0)

	require.Len(t, s.Points, 4)
	for i := 1; i < len(s.Points); i++ {
		assert.Less(t, s.Points[i-1].BucketKey, s.Points[i].BucketKey)
	}
	assert.Equal(t, "From last day", s.ComparisonLabel)
}

func TestSelectSeriesLabels(t *testing.T) {
	agg := sampleAggregation()
	assert.Equal(t, "From last week", SelectSeries(agg, Weekly, core.Date{}, 0).ComparisonLabel)
	assert.Equal(t, "From last month", SelectSeries(agg, Monthly, core.Date{}, 0).ComparisonLabel)
}

func TestSelectSeriesExplicitDate(t *testing.T) {
	agg := sampleAggregation()

	s := SelectSeries(agg, Weekly, core.ParseDate("2025-11-05"), 0)
	require.Len(t, s.Points, 1)
	assert.Equal(t, "2025-11-05", s.Points[0].BucketKey)
	assert.Equal(t, "-45.00", s.Points[0].Value.StringFixed(2))
	assert.Empty(t, s.ComparisonLabel, "pinned day suppresses trend text")

	// A day with no transactions yields an empty series, not an error.
	empty := SelectSeries(agg, Weekly, core.ParseDate("2025-11-20"), 0)
	assert.Empty(t, empty.Points)
	assert.Empty(t, empty.ComparisonLabel)
}

func TestSelectSeriesWindowing(t *testing.T) {
	s := SelectSeries(sampleAggregation(), Daily, core.Date{}, 2)

	require.Len(t, s.Points, 2)
	assert.Equal(t, "2025-11-05", s.Points[0].BucketKey)
	assert.Equal(t, "2025-11-06", s.Points[1].BucketKey)
}

func TestSelectSeriesMonthlyBuckets(t *testing.T) {
	s := SelectSeries(sampleAggregation(), Monthly, core.Date{}, 0)

	require.Len(t, s.Points, 2)
	assert.Equal(t, "2025-10", s.Points[0].BucketKey)
	assert.Equal(t, "3200.00", s.Points[0].Value.StringFixed(2))
	assert.Equal(t, "2025-11", s.Points[1].BucketKey)
	assert.Equal(t, "334.50", s.Points[1].Value.StringFixed(2))
}

func TestPreviousPeriodPlaceholder(t *testing.T) {
	assert.Equal(t, "90.00", PreviousPeriod(decimal.NewFromInt(100)).StringFixed(2))
	assert.True(t, PreviousPeriod(decimal.Zero).IsZero())
}

func TestDelta(t *testing.T) {
	current := decimal.NewFromInt(100)

	// amount mode: current - current*0.9
	assert.Equal(t, "10.00", Delta(current, ModeAmount).StringFixed(2))

	// percent mode: (current - prev) / prev * 100, with prev = 0.9*current
	// the ratio is a constant 100/9.
	pct := Delta(current, ModePercent)
	assert.Equal(t, "11.11", pct.StringFixed(2))

	// zero current collapses to zero delta in both modes.
	assert.True(t, Delta(decimal.Zero, ModeAmount).IsZero())
	assert.True(t, Delta(decimal.Zero, ModePercent).IsZero())
}

func TestParseDisplayMode(t *testing.T) {
	assert.Equal(t, ModePercent, ParseDisplayMode("percent"))
	assert.Equal(t, ModeAmount, ParseDisplayMode("amount"))
	assert.Equal(t, ModeAmount, ParseDisplayMode(""))
}
