package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"

	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusReversed  Status = "reversed"

	// UnknownCounterparty is substituted when a record carries no
	// counterparty name at all.
	UnknownCounterparty = "Unknown"
)

type (
	Direction string

	Status string

	// TransactionRecord is the immutable unit of data the reporting
	// pipeline consumes. Amounts are non-negative magnitudes; the sign of
	// a contribution is derived solely from Direction.
	TransactionRecord struct {
		ReferenceID  string
		AccountID    string
		OccurredAt   Date
		Counterparty string
		Category     string
		Amount       decimal.Decimal
		Direction    Direction
		Status       Status
		Description  string
	}

	// Date is a UTC-normalized civil date. A zero Date means the record
	// carries no usable date and is excluded from bucketed series.
	Date struct {
		time.Time
	}

	Account struct {
		ID               string
		Name             string
		Type             string // checking, savings, credit
		AccountNumber    string
		Balance          decimal.Decimal
		AvailableBalance decimal.Decimal
	}

	User struct {
		ID        string
		Username  string
		Password  string
		FirstName string
		LastName  string
		Email     string
		Phone     string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrEmptyAccountID    = errors.New("empty account id")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyCounterparty = errors.New("empty counterparty")
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form. Unparseable input
// yields the zero Date rather than an error: the record stays in the
// working set but out of the bucketed series.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

// Key returns the canonical YYYY-MM-DD day key, or "" for the zero Date.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format("2006-01-02")
}

func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusPending || s == StatusReversed
}

// Signed returns the record's signed contribution: +Amount for credits,
// -Amount for debits.
func (t TransactionRecord) Signed() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Abs().Neg()
	}
	return t.Amount.Abs()
}

// CounterpartyKey returns the grouping key used for ranking, falling back
// to UnknownCounterparty for blank names.
func (t TransactionRecord) CounterpartyKey() string {
	if strings.TrimSpace(t.Counterparty) == "" {
		return UnknownCounterparty
	}
	return t.Counterparty
}

func (t TransactionRecord) Validate() error {
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}
