// Package memory is the in-memory ledger backend used in demo mode and by
// the HTTP tests. It mirrors the sqlite repository's behavior without a
// database on disk.
package memory

import (
	"context"
	"errors"
	"sync"

	"bankdash/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownReference = errors.New("unknown reference id")

type Store struct {
	mu       sync.Mutex
	records  []core.TransactionRecord
	accounts []core.Account
	user     core.User
}

func New() *Store {
	return &Store{
		accounts: seedAccounts(),
		user: core.User{
			ID:        "1",
			Username:  "demo",
			Password:  "demo123",
			FirstName: "John",
			LastName:  "Smith",
			Email:     "john.smith@email.com",
			Phone:     "(555) 123-4567",
		},
	}
}

// NewSeeded returns a store preloaded with records, for demo mode. The
// caller's slice is left untouched; ids are assigned on the store's copy.
func NewSeeded(records []core.TransactionRecord) *Store {
	s := New()
	seeded := make([]core.TransactionRecord, len(records))
	copy(seeded, records)
	for i := range seeded {
		if seeded[i].ReferenceID == "" {
			seeded[i].ReferenceID = uuid.NewString()
		}
	}
	s.records = append(s.records, seeded...)
	return s
}

func (s *Store) FetchAll(_ context.Context) ([]core.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) Insert(_ context.Context, rec core.TransactionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec.ReferenceID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec.ReferenceID, nil
}

func (s *Store) Update(_ context.Context, referenceID string, rec core.TransactionRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ReferenceID == referenceID {
			rec.ReferenceID = referenceID
			s.records[i] = rec
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

func (s *Store) GetUser(_ context.Context) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Identity and credentials stay fixed; only profile fields move.
	s.user.FirstName = u.FirstName
	s.user.LastName = u.LastName
	s.user.Email = u.Email
	s.user.Phone = u.Phone
	return nil
}

func seedAccounts() []core.Account {
	return []core.Account{
		{
			ID:               "acc-1",
			Name:             "Advantage Plus Banking",
			Type:             "checking",
			AccountNumber:    "****4521",
			Balance:          decimal.RequireFromString("8742.50"),
			AvailableBalance: decimal.RequireFromString("8742.50"),
		},
		{
			ID:               "acc-2",
			Name:             "Advantage Savings",
			Type:             "savings",
			AccountNumber:    "****7893",
			Balance:          decimal.RequireFromString("24567.89"),
			AvailableBalance: decimal.RequireFromString("24567.89"),
		},
		{
			ID:               "acc-3",
			Name:             "BankAmericard Credit Card",
			Type:             "credit",
			AccountNumber:    "****3214",
			Balance:          decimal.RequireFromString("-1243.76"),
			AvailableBalance: decimal.RequireFromString("8756.24"),
		},
	}
}
