package http

import (
	"net/http"

	"bankdash/internal/core"
	applog "bankdash/internal/log"
)

type accountView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	AccountNumber    string `json:"accountNumber"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
}

// handleListAccounts returns the demo accounts. A store failure degrades
// to an empty list.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list accounts, degrading to empty",
			applog.NewFields().WithError(err).ToSlice()...)
		accounts = nil
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{
			ID:               a.ID,
			Name:             a.Name,
			Type:             a.Type,
			AccountNumber:    a.AccountNumber,
			Balance:          core.FormatAmount(a.Balance),
			AvailableBalance: core.FormatAmount(a.AvailableBalance),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"accounts": views})
}
