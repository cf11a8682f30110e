package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/ledger/memory"
	"bankdash/internal/services"
	"bankdash/internal/session"

	"github.com/shopspring/decimal"
)

func seedRecords() []core.TransactionRecord {
	return []core.TransactionRecord{
		{
			AccountID:    "acc-1",
			OccurredAt:   core.NewDate(2025, 11, 3),
			Counterparty: "Payroll Inc",
			Category:     "Income",
			Amount:       decimal.RequireFromString("500.00"),
			Direction:    core.Credit,
			Status:       core.StatusCompleted,
		},
		{
			AccountID:    "acc-1",
			OccurredAt:   core.NewDate(2025, 11, 4),
			Counterparty: "Whole Foods Market",
			Category:     "Groceries",
			Amount:       decimal.RequireFromString("120.25"),
			Direction:    core.Debit,
			Status:       core.StatusCompleted,
		},
		{
			AccountID:    "acc-1",
			OccurredAt:   core.NewDate(2025, 11, 5),
			Counterparty: "Shell",
			Category:     "Gas",
			Amount:       decimal.RequireFromString("45.25"),
			Direction:    core.Debit,
			Status:       core.StatusCompleted,
		},
	}
}

func newTestServer(t *testing.T, records []core.TransactionRecord) (*Server, string) {
	t.Helper()

	store := memory.NewSeeded(records)
	sessions := session.NewStore(time.Hour)
	txs := services.NewTransactionService(store, store, nil)

	srv := NewServer(Options{
		Addr:     ":0",
		Fetcher:  store,
		Accounts: store,
		Users:    store,
		Txs:      txs,
		Sessions: sessions,
		TopN:     8,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	token, err := sessions.Create("demo")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return srv, token
}

func doJSON(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/session", "", `{"username":"demo","password":"demo123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse[loginResponse](t, rr)
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if resp.FirstName != "John" {
		t.Errorf("firstName = %q, want John", resp.FirstName)
	}

	// The fresh token works against a protected endpoint.
	rr = doJSON(t, srv, http.MethodGet, "/api/accounts", resp.Token, "")
	if rr.Code != http.StatusOK {
		t.Errorf("accounts with fresh token = %d", rr.Code)
	}

	// Logout revokes it.
	rr = doJSON(t, srv, http.MethodDelete, "/api/session", resp.Token, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("logout status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/accounts", resp.Token, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("accounts after logout = %d, want 401", rr.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/session", "", `{"username":"demo","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/accounts", "/api/transactions", "/api/dashboard/summary", "/api/user"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s without token = %d, want 401", path, rr.Code)
		}
	}
}

func TestDashboardSummary(t *testing.T) {
	srv, token := newTestServer(t, seedRecords())

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary?period=weekly", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeResponse[summaryResponse](t, rr)
	if resp.MoneyIn.Amount != "500.00" {
		t.Errorf("moneyIn = %q, want 500.00", resp.MoneyIn.Amount)
	}
	if resp.MoneyOut.Amount != "165.50" {
		t.Errorf("moneyOut = %q, want 165.50", resp.MoneyOut.Amount)
	}
	if resp.ClosingBalance.Amount != "334.50" {
		t.Errorf("closingBalance = %q, want 334.50", resp.ClosingBalance.Amount)
	}
	if resp.MoneyIn.FromText != "From last week" {
		t.Errorf("fromText = %q, want From last week", resp.MoneyIn.FromText)
	}
}

func TestDashboardSummaryPinnedDateSuppressesTrend(t *testing.T) {
	srv, token := newTestServer(t, seedRecords())

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary?date=2025-11-04", token, "")
	resp := decodeResponse[summaryResponse](t, rr)
	if resp.MoneyIn.FromText != "" {
		t.Errorf("fromText = %q, want empty for pinned date", resp.MoneyIn.FromText)
	}
}

func TestDashboardSeries(t *testing.T) {
	srv, token := newTestServer(t, seedRecords())

	// All three seeded records fall in the ISO week starting Monday
	// 2025-11-03, so the weekly series is one bucket netting 334.50.
	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/series?period=weekly", token, "")
	resp := decodeResponse[seriesResponse](t, rr)
	if len(resp.Points) != 1 {
		t.Fatalf("points = %d, want 1", len(resp.Points))
	}
	if resp.Points[0].Bucket != "2025-11-03" {
		t.Errorf("bucket = %q, want 2025-11-03", resp.Points[0].Bucket)
	}
	if resp.Points[0].Value != "334.50" {
		t.Errorf("value = %q, want 334.50", resp.Points[0].Value)
	}

	// Daily series has three buckets in ascending order.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/series?period=daily", token, "")
	resp = decodeResponse[seriesResponse](t, rr)
	if len(resp.Points) != 3 {
		t.Fatalf("daily points = %d, want 3", len(resp.Points))
	}
	if resp.Points[0].Bucket != "2025-11-03" || resp.Points[2].Bucket != "2025-11-05" {
		t.Errorf("daily buckets out of order: %+v", resp.Points)
	}

	// A pinned date returns the single day bucket with no caption.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/series?date=2025-11-04", token, "")
	resp = decodeResponse[seriesResponse](t, rr)
	if len(resp.Points) != 1 || resp.Points[0].Value != "-120.25" {
		t.Errorf("pinned series = %+v, want one point of -120.25", resp.Points)
	}
	if resp.FromText != "" {
		t.Errorf("fromText = %q, want empty", resp.FromText)
	}
}

func TestDashboardTop(t *testing.T) {
	srv, token := newTestServer(t, seedRecords())

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/top", token, "")
	resp := decodeResponse[topResponse](t, rr)

	if len(resp.Inbound) != 1 || resp.Inbound[0].Counterparty != "Payroll Inc" {
		t.Errorf("inbound = %+v, want only Payroll Inc", resp.Inbound)
	}
	if len(resp.Outbound) != 2 {
		t.Fatalf("outbound = %d entries, want 2", len(resp.Outbound))
	}
	// Outbound ranks by magnitude and reports positive amounts.
	if resp.Outbound[0].Counterparty != "Whole Foods Market" || resp.Outbound[0].Amount != "120.25" {
		t.Errorf("outbound[0] = %+v", resp.Outbound[0])
	}
	if resp.Outbound[1].Counterparty != "Shell" || resp.Outbound[1].Amount != "45.25" {
		t.Errorf("outbound[1] = %+v", resp.Outbound[1])
	}

	// An explicit n bounds both lists.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/top?n=1", token, "")
	bounded := decodeResponse[topResponse](t, rr)
	if len(bounded.Outbound) != 1 || bounded.Outbound[0].Counterparty != "Whole Foods Market" {
		t.Errorf("bounded outbound = %+v, want only Whole Foods Market", bounded.Outbound)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	srv, token := newTestServer(t, seedRecords())

	type listResponse struct {
		Transactions []transactionView `json:"transactions"`
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions", token, "")
	all := decodeResponse[listResponse](t, rr)
	if len(all.Transactions) != 3 {
		t.Fatalf("unfiltered = %d, want 3", len(all.Transactions))
	}
	// Newest first.
	if all.Transactions[0].Counterparty != "Shell" {
		t.Errorf("first = %q, want Shell", all.Transactions[0].Counterparty)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?type=debit", token, "")
	debits := decodeResponse[listResponse](t, rr)
	if len(debits.Transactions) != 2 {
		t.Errorf("debits = %d, want 2", len(debits.Transactions))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?q=whole", token, "")
	search := decodeResponse[listResponse](t, rr)
	if len(search.Transactions) != 1 || search.Transactions[0].Counterparty != "Whole Foods Market" {
		t.Errorf("search = %+v", search.Transactions)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?date=2025-11-03", token, "")
	byDate := decodeResponse[listResponse](t, rr)
	if len(byDate.Transactions) != 1 || byDate.Transactions[0].Counterparty != "Payroll Inc" {
		t.Errorf("byDate = %+v", byDate.Transactions)
	}
}

func TestAdminCreateAndUpdate(t *testing.T) {
	srv, token := newTestServer(t, nil)

	body := `{"accountId":"acc-1","date":"2025-11-06","counterparty":"Netflix","category":"Entertainment","amount":"15.49","direction":"debit"}`
	rr := doJSON(t, srv, http.MethodPost, "/api/admin/transactions", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	created := decodeResponse[map[string]string](t, rr)
	ref := created["referenceId"]
	if ref == "" {
		t.Fatal("expected a reference id")
	}

	// Invalid amount rejected.
	rr = doJSON(t, srv, http.MethodPost, "/api/admin/transactions", token,
		`{"accountId":"acc-1","date":"2025-11-06","counterparty":"X","category":"Y","amount":"-5","direction":"debit"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative amount status = %d, want 422", rr.Code)
	}

	// Update the created record.
	update := `{"accountId":"acc-1","date":"2025-11-06","counterparty":"Netflix","category":"Entertainment","amount":"17.99","direction":"debit"}`
	rr = doJSON(t, srv, http.MethodPut, "/api/admin/transactions/"+ref, token, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}

	// Unknown reference is a 404.
	rr = doJSON(t, srv, http.MethodPut, "/api/admin/transactions/nope", token, update)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown ref status = %d, want 404", rr.Code)
	}

	// The dashboard reflects the write immediately (cache invalidated).
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", token, "")
	resp := decodeResponse[summaryResponse](t, rr)
	if resp.MoneyOut.Amount != "17.99" {
		t.Errorf("moneyOut after update = %q, want 17.99", resp.MoneyOut.Amount)
	}
}

func TestTransferAndDeposit(t *testing.T) {
	srv, token := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodPost, "/api/transfer", token,
		`{"fromAccountId":"acc-1","toAccountId":"acc-2","amount":"250.00","description":"Top-up"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("transfer status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/deposit", token,
		`{"accountId":"acc-1","amount":"1000.00","description":"Paycheck"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("deposit status = %d, body %s", rr.Code, rr.Body.String())
	}

	type listResponse struct {
		Transactions []transactionView `json:"transactions"`
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", token, "")
	list := decodeResponse[listResponse](t, rr)
	if len(list.Transactions) != 3 {
		t.Errorf("records = %d, want 2 transfer legs + 1 deposit", len(list.Transactions))
	}

	// Same-account transfer rejected.
	rr = doJSON(t, srv, http.MethodPost, "/api/transfer", token,
		`{"fromAccountId":"acc-1","toAccountId":"acc-1","amount":"10.00"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("same-account transfer = %d, want 422", rr.Code)
	}
}

func TestUserSettings(t *testing.T) {
	srv, token := newTestServer(t, nil)

	rr := doJSON(t, srv, http.MethodGet, "/api/user", token, "")
	user := decodeResponse[userView](t, rr)
	if user.Username != "demo" || user.FirstName != "John" {
		t.Errorf("user = %+v", user)
	}
	if strings.Contains(rr.Body.String(), "demo123") {
		t.Error("response must not leak the password")
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/user", token,
		`{"firstName":"Johnny","lastName":"Smith","email":"j@s.com","phone":"555"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d", rr.Code)
	}
	updated := decodeResponse[userView](t, rr)
	if updated.FirstName != "Johnny" || updated.Email != "j@s.com" {
		t.Errorf("updated = %+v", updated)
	}
}

// failingFetcher simulates a dead store.
type failingFetcher struct{}

func (failingFetcher) FetchAll(context.Context) ([]core.TransactionRecord, error) {
	return nil, errors.New("store unavailable")
}

func TestDashboardDegradesToEmptyOnStoreFailure(t *testing.T) {
	store := memory.New()
	sessions := session.NewStore(time.Hour)
	txs := services.NewTransactionService(store, store, nil)

	srv := NewServer(Options{
		Addr:     ":0",
		Fetcher:  failingFetcher{},
		Accounts: store,
		Users:    store,
		Txs:      txs,
		Sessions: sessions,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	token, _ := sessions.Create("demo")

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite store failure", rr.Code)
	}
	resp := decodeResponse[summaryResponse](t, rr)
	if resp.MoneyIn.Amount != "0.00" || resp.ClosingBalance.Amount != "0.00" {
		t.Errorf("expected zeroed summary, got %+v", resp)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", token, "")
	if rr.Code != http.StatusOK {
		t.Errorf("transactions status = %d, want 200", rr.Code)
	}
}
