package report

import "sort"

// TopInbound selects the n largest positive counterparty totals, sorted
// descending. Ties keep the relative order of the input slice, so results
// are deterministic for a fixed input ordering. Fewer than n qualifying
// counterparties returns them all; n <= 0 returns nothing.
func TopInbound(totals []CounterpartyTotal, n int) []CounterpartyTotal {
	if n <= 0 {
		return nil
	}
	in := make([]CounterpartyTotal, 0, len(totals))
	for _, ct := range totals {
		if ct.Total.IsPositive() {
			in = append(in, ct)
		}
	}
	sort.SliceStable(in, func(i, j int) bool { return in[i].Total.GreaterThan(in[j].Total) })
	if len(in) > n {
		in = in[:n]
	}
	return in
}

// TopOutbound selects the n largest-magnitude negative counterparty totals,
// sorted descending by magnitude, and reports the magnitude (not the sign)
// to the caller. Tie and bound behavior match TopInbound.
func TopOutbound(totals []CounterpartyTotal, n int) []CounterpartyTotal {
	if n <= 0 {
		return nil
	}
	out := make([]CounterpartyTotal, 0, len(totals))
	for _, ct := range totals {
		if ct.Total.IsNegative() {
			out = append(out, CounterpartyTotal{Counterparty: ct.Counterparty, Total: ct.Total.Abs()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
