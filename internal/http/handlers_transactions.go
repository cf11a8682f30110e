package http

import (
	"net/http"
	"sort"
	"strings"

	"bankdash/internal/core"
	applog "bankdash/internal/log"
)

type transactionView struct {
	ReferenceID  string `json:"referenceId"`
	AccountID    string `json:"accountId"`
	Date         string `json:"date"`
	Counterparty string `json:"counterparty"`
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction"`
	Status       string `json:"status"`
	Description  string `json:"description,omitempty"`
}

func toView(rec core.TransactionRecord) transactionView {
	return transactionView{
		ReferenceID:  rec.ReferenceID,
		AccountID:    rec.AccountID,
		Date:         rec.OccurredAt.Key(),
		Counterparty: rec.CounterpartyKey(),
		Category:     rec.Category,
		Amount:       core.FormatAmount(rec.Signed()),
		Direction:    string(rec.Direction),
		Status:       string(rec.Status),
		Description:  rec.Description,
	}
}

// handleListTransactions returns the working set filtered by the optional
// q, type and date query parameters, newest first. A store failure
// degrades to an empty list.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := s.fetchRecords(r.Context())
	if err != nil {
		records = nil
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	date := core.ParseDate(r.URL.Query().Get("date"))

	views := make([]transactionView, 0, len(records))
	for _, rec := range records {
		if typ != "" && string(rec.Direction) != typ {
			continue
		}
		if !date.IsZero() && rec.OccurredAt.Key() != date.Key() {
			continue
		}
		if q != "" && !matchesQuery(rec, q) {
			continue
		}
		views = append(views, toView(rec))
	}

	// Newest first; undated records sink to the end.
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Date == views[j].Date {
			return false
		}
		if views[j].Date == "" {
			return true
		}
		if views[i].Date == "" {
			return false
		}
		return views[i].Date > views[j].Date
	})

	writeJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func matchesQuery(rec core.TransactionRecord, q string) bool {
	for _, field := range []string{rec.Counterparty, rec.Description, rec.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

type transactionRequest struct {
	AccountID    string `json:"accountId"`
	Date         string `json:"date"`
	Counterparty string `json:"counterparty"`
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction"`
	Status       string `json:"status"`
	Description  string `json:"description"`
}

func (req transactionRequest) toRecord() (core.TransactionRecord, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.TransactionRecord{}, err
	}

	status := core.Status(req.Status)
	if req.Status == "" {
		status = core.StatusCompleted
	}

	rec := core.TransactionRecord{
		AccountID:    sanitizeInput(req.AccountID),
		OccurredAt:   core.ParseDate(req.Date),
		Counterparty: sanitizeInput(req.Counterparty),
		Category:     sanitizeInput(req.Category),
		Amount:       amount,
		Direction:    core.Direction(req.Direction),
		Status:       status,
		Description:  sanitizeInput(req.Description),
	}
	return rec, rec.Validate()
}

// handleAdminCreate appends a transaction to the ledger.
func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ref, err := s.txs.Create(r.Context(), rec)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to create transaction",
			applog.NewFields().WithOperation(applog.OpCreate).WithError(err).ToSlice()...)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, map[string]string{"referenceId": ref})
}

// handleAdminUpdate replaces the record stored under the path reference.
func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	referenceID := r.PathValue("ref")

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ok, err := s.txs.Update(r.Context(), referenceID, rec)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to update transaction",
			applog.FieldOperation, applog.OpUpdate, applog.FieldReferenceID, referenceID, applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown reference id")
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusOK, map[string]string{"referenceId": referenceID})
}
