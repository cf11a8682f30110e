package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		key  string
		zero bool
	}{
		{"2025-11-05", "2025-11-05", false},
		{"  2025-01-01 ", "2025-01-01", false},
		{"", "", true},
		{"not-a-date", "", true},
		{"2025-13-40", "", true},
	}
	for i, tc := range cases {
		d := ParseDate(tc.in)
		if d.IsZero() != tc.zero {
			t.Fatalf("case %d: zero=%v, want %v", i, d.IsZero(), tc.zero)
		}
		if d.Key() != tc.key {
			t.Fatalf("case %d: key=%q, want %q", i, d.Key(), tc.key)
		}
	}
}

func TestSigned(t *testing.T) {
	amt := decimal.RequireFromString("45")
	credit := TransactionRecord{Amount: amt, Direction: Credit}
	if !credit.Signed().Equal(amt) {
		t.Fatalf("credit signed = %s, want %s", credit.Signed(), amt)
	}
	debit := TransactionRecord{Amount: amt, Direction: Debit}
	if !debit.Signed().Equal(amt.Neg()) {
		t.Fatalf("debit signed = %s, want %s", debit.Signed(), amt.Neg())
	}
}

func TestCounterpartyKey(t *testing.T) {
	if k := (TransactionRecord{Counterparty: "Food Vendor"}).CounterpartyKey(); k != "Food Vendor" {
		t.Fatalf("got %q", k)
	}
	if k := (TransactionRecord{Counterparty: "   "}).CounterpartyKey(); k != UnknownCounterparty {
		t.Fatalf("blank counterparty mapped to %q", k)
	}
}

func TestTransactionRecordValidate(t *testing.T) {
	good := TransactionRecord{
		AccountID:    "acc-1",
		OccurredAt:   NewDate(2025, 11, 5),
		Counterparty: "Food Vendor",
		Category:     "Food",
		Amount:       decimal.RequireFromString("45"),
		Direction:    Debit,
		Status:       StatusCompleted,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []TransactionRecord{
		{AccountID: "", Category: "c", Amount: decimal.NewFromInt(1), Direction: Credit, Status: StatusCompleted},
		{AccountID: "a", Category: "c", Amount: decimal.NewFromInt(-1), Direction: Credit, Status: StatusCompleted},
		{AccountID: "a", Category: "c", Amount: decimal.NewFromInt(1), Direction: "transfer", Status: StatusCompleted},
		{AccountID: "a", Category: "c", Amount: decimal.NewFromInt(1), Direction: Credit, Status: "void"},
		{AccountID: "a", Category: "", Amount: decimal.NewFromInt(1), Direction: Credit, Status: StatusCompleted},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestValidateAllowsPendingAndReversed(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusReversed} {
		r := TransactionRecord{
			AccountID: "acc-1",
			Category:  "Misc",
			Amount:    decimal.NewFromInt(10),
			Direction: Credit,
			Status:    st,
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("status %s: expected ok, got %v", st, err)
		}
	}
}
