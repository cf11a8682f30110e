package report

import (
	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// Totals are the three summary-card figures. MoneyIn and MoneyOut are
	// kept as separate non-negative accumulators; ClosingBalance is the
	// net of all signed contributions.
	Totals struct {
		MoneyIn        decimal.Decimal
		MoneyOut       decimal.Decimal
		ClosingBalance decimal.Decimal
	}

	// CounterpartyTotal is a counterparty's signed total across the whole
	// working set (not bucketed).
	CounterpartyTotal struct {
		Counterparty string
		Total        decimal.Decimal
	}

	// Aggregation is the derived, ephemeral result of one pipeline run.
	// Bucket maps are keyed by BucketKey; Counterparties preserves
	// first-seen input order so ranking ties stay deterministic for a
	// fixed input ordering.
	Aggregation struct {
		Daily          map[string]decimal.Decimal
		Weekly         map[string]decimal.Decimal
		Monthly        map[string]decimal.Decimal
		Counterparties []CounterpartyTotal
		Totals         Totals

		index map[string]int
	}
)

// Aggregate folds a snapshot of records into bucketed sums, counterparty
// totals and the summary totals. It is a pure function of its input:
// decimal addition is exact, so every permutation of records yields
// identical maps and totals.
//
// Records with no usable date still count toward counterparty totals and
// the summary figures; they are simply absent from all bucket maps. Status
// is not consulted: pending and reversed records are included, matching the
// reference behavior.
func Aggregate(records []core.TransactionRecord) Aggregation {
	agg := Aggregation{
		Daily:   make(map[string]decimal.Decimal),
		Weekly:  make(map[string]decimal.Decimal),
		Monthly: make(map[string]decimal.Decimal),
		Totals: Totals{
			MoneyIn:        decimal.Zero,
			MoneyOut:       decimal.Zero,
			ClosingBalance: decimal.Zero,
		},
		index: make(map[string]int),
	}

	for _, rec := range records {
		signed := rec.Signed()

		key := rec.CounterpartyKey()
		if i, ok := agg.index[key]; ok {
			agg.Counterparties[i].Total = agg.Counterparties[i].Total.Add(signed)
		} else {
			agg.index[key] = len(agg.Counterparties)
			agg.Counterparties = append(agg.Counterparties, CounterpartyTotal{Counterparty: key, Total: signed})
		}

		agg.Totals.ClosingBalance = agg.Totals.ClosingBalance.Add(signed)
		if signed.IsNegative() {
			agg.Totals.MoneyOut = agg.Totals.MoneyOut.Add(signed.Abs())
		} else {
			agg.Totals.MoneyIn = agg.Totals.MoneyIn.Add(signed)
		}

		if rec.OccurredAt.IsZero() {
			continue
		}
		addTo(agg.Daily, BucketKey(rec.OccurredAt, Daily), signed)
		addTo(agg.Weekly, BucketKey(rec.OccurredAt, Weekly), signed)
		addTo(agg.Monthly, BucketKey(rec.OccurredAt, Monthly), signed)
	}

	return agg
}

// Buckets returns the bucket map for the requested granularity.
func (a Aggregation) Buckets(g Granularity) map[string]decimal.Decimal {
	switch g {
	case Daily:
		return a.Daily
	case Monthly:
		return a.Monthly
	default:
		return a.Weekly
	}
}

func addTo(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	if cur, ok := m[key]; ok {
		m[key] = cur.Add(v)
	} else {
		m[key] = v
	}
}
