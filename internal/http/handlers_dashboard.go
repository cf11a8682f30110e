package http

import (
	"net/http"
	"strconv"

	"bankdash/internal/core"
	"bankdash/internal/report"
)

type summaryCard struct {
	Amount   string `json:"amount"`
	Delta    string `json:"delta"`
	FromText string `json:"fromText,omitempty"`
}

type summaryResponse struct {
	MoneyIn        summaryCard `json:"moneyIn"`
	MoneyOut       summaryCard `json:"moneyOut"`
	ClosingBalance summaryCard `json:"closingBalance"`
	Mode           string      `json:"mode"`
}

// reportParams are the three dashboard selectors: bucket granularity, an
// optional pinned day, and the delta display mode.
type reportParams struct {
	granularity report.Granularity
	explicit    core.Date
	mode        report.DisplayMode
}

func parseReportParams(r *http.Request) reportParams {
	q := r.URL.Query()
	return reportParams{
		granularity: report.ParseGranularity(q.Get("period")),
		explicit:    core.ParseDate(q.Get("date")),
		mode:        report.ParseDisplayMode(q.Get("mode")),
	}
}

// positiveIntParam parses an optional positive integer query value, falling
// back when absent or malformed.
func positiveIntParam(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// handleDashboardSummary returns the three summary cards with their
// period-over-period deltas.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	p := parseReportParams(r)
	agg := s.snapshot(r.Context())

	// A pinned day suppresses the trend caption, like the series view.
	fromText := ""
	if p.explicit.IsZero() {
		fromText = report.SelectSeries(agg, p.granularity, core.Date{}, 0).ComparisonLabel
	}

	resp := summaryResponse{
		MoneyIn: summaryCard{
			Amount:   core.FormatAmount(agg.Totals.MoneyIn),
			Delta:    core.FormatAmount(report.Delta(agg.Totals.MoneyIn, p.mode)),
			FromText: fromText,
		},
		MoneyOut: summaryCard{
			Amount:   core.FormatAmount(agg.Totals.MoneyOut),
			Delta:    core.FormatAmount(report.Delta(agg.Totals.MoneyOut, p.mode)),
			FromText: fromText,
		},
		ClosingBalance: summaryCard{
			Amount:   core.FormatAmount(agg.Totals.ClosingBalance),
			Delta:    core.FormatAmount(report.Delta(agg.Totals.ClosingBalance, p.mode)),
			FromText: fromText,
		},
		Mode: string(p.mode),
	}

	writeJSON(w, http.StatusOK, resp)
}

type seriesPoint struct {
	Bucket string `json:"bucket"`
	Value  string `json:"value"`
}

type seriesResponse struct {
	Period   string        `json:"period"`
	Points   []seriesPoint `json:"points"`
	FromText string        `json:"fromText,omitempty"`
}

// handleDashboardSeries returns the chartable bucket series for the
// selected granularity, or the single day bucket when a date is pinned.
func (s *Server) handleDashboardSeries(w http.ResponseWriter, r *http.Request) {
	p := parseReportParams(r)
	agg := s.snapshot(r.Context())

	series := report.SelectSeries(agg, p.granularity, p.explicit, positiveIntParam(r, "limit", 0))

	points := make([]seriesPoint, 0, len(series.Points))
	for _, pt := range series.Points {
		points = append(points, seriesPoint{
			Bucket: pt.BucketKey,
			Value:  core.FormatAmount(pt.Value),
		})
	}

	writeJSON(w, http.StatusOK, seriesResponse{
		Period:   string(p.granularity),
		Points:   points,
		FromText: series.ComparisonLabel,
	})
}

type topEntry struct {
	Counterparty string `json:"counterparty"`
	Amount       string `json:"amount"`
}

type topResponse struct {
	Inbound  []topEntry `json:"inbound"`
	Outbound []topEntry `json:"outbound"`
}

// handleDashboardTop returns the ranked counterparty lists. Outbound
// amounts are reported as positive magnitudes.
func (s *Server) handleDashboardTop(w http.ResponseWriter, r *http.Request) {
	agg := s.snapshot(r.Context())
	n := positiveIntParam(r, "n", s.topN)

	toEntries := func(totals []report.CounterpartyTotal) []topEntry {
		out := make([]topEntry, 0, len(totals))
		for _, t := range totals {
			out = append(out, topEntry{
				Counterparty: t.Counterparty,
				Amount:       core.FormatAmount(t.Total),
			})
		}
		return out
	}

	writeJSON(w, http.StatusOK, topResponse{
		Inbound:  toEntries(report.TopInbound(agg.Counterparties, n)),
		Outbound: toEntries(report.TopOutbound(agg.Counterparties, n)),
	})
}
