package http

import (
	"net/http"

	"bankdash/internal/core"
	applog "bankdash/internal/log"
)

type transferRequest struct {
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

// handleTransfer records a movement between two accounts.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	if req.FromAccountID == "" || req.ToAccountID == "" {
		writeError(w, http.StatusUnprocessableEntity, "both accounts are required")
		return
	}

	err = s.txs.Transfer(r.Context(), sanitizeInput(req.FromAccountID), sanitizeInput(req.ToAccountID),
		amount, sanitizeInput(req.Description))
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transfer failed",
			applog.FieldOperation, applog.OpTransfer, applog.FieldError, err.Error())
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, map[string]string{"status": "transferred"})
}

type depositRequest struct {
	AccountID   string `json:"accountId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// handleDeposit records a single credit into an account.
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusUnprocessableEntity, "account is required")
		return
	}

	ref, err := s.txs.Deposit(r.Context(), sanitizeInput(req.AccountID), amount, sanitizeInput(req.Description))
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Deposit failed",
			applog.FieldOperation, applog.OpDeposit, applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not record deposit")
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, map[string]string{"referenceId": ref})
}
