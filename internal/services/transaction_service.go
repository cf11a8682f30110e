// Package services orchestrates ledger writes with the export pipeline:
// every mutation lands in the store first, then best-effort publishes an
// export notification. A dead broker never fails a request.
package services

import (
	"context"
	"fmt"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/ledger"
	applog "bankdash/internal/log"

	"github.com/shopspring/decimal"
)

// ExportPublisher enqueues statement export notifications. The AMQP client
// satisfies it; tests use a fake.
type ExportPublisher interface {
	PublishExport(ctx context.Context, referenceID string, version int64) error
}

// versionReader is implemented by stores that track per-record versions.
// The memory backend does not; its records always publish as version 1.
type versionReader interface {
	GetByReference(ctx context.Context, referenceID string) (core.TransactionRecord, int64, error)
}

type TransactionStore interface {
	ledger.TransactionWriter
	ledger.TransactionUpdater
}

type TransactionService struct {
	store     TransactionStore
	accounts  ledger.AccountReader
	publisher ExportPublisher
	now       func() time.Time
	log       *applog.Logger
}

func NewTransactionService(store TransactionStore, accounts ledger.AccountReader, publisher ExportPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		accounts:  accounts,
		publisher: publisher,
		now:       time.Now,
		log:       applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLedger),
	}
}

// Create saves a transaction and queues it for statement export.
func (s *TransactionService) Create(ctx context.Context, rec core.TransactionRecord) (string, error) {
	ref, err := s.store.Insert(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.log.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(ref, rec.AccountID, rec.Amount.StringFixed(2), string(rec.Direction)).
			ToSlice()...)

	s.publish(ctx, ref, 1)
	return ref, nil
}

// Update replaces the record under referenceID. The bool reports whether
// the reference existed.
func (s *TransactionService) Update(ctx context.Context, referenceID string, rec core.TransactionRecord) (bool, error) {
	ok, err := s.store.Update(ctx, referenceID, rec)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	if !ok {
		return false, nil
	}

	version := int64(1)
	if vr, hasVersions := s.store.(versionReader); hasVersions {
		if _, v, err := vr.GetByReference(ctx, referenceID); err == nil {
			version = v
		} else {
			s.log.WarnContext(ctx, "Could not read version after update",
				applog.FieldReferenceID, referenceID, applog.FieldError, err.Error())
		}
	}

	s.log.InfoContext(ctx, "Transaction replaced",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldReferenceID, referenceID,
		applog.FieldVersion, version)

	s.publish(ctx, referenceID, version)
	return true, nil
}

// Transfer records a movement between two accounts as a debit/credit pair.
// Both legs are created; there is no rollback of the first leg if the
// second insert fails, matching the demo's forgiving semantics.
func (s *TransactionService) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, description string) error {
	if fromAccountID == toAccountID {
		return fmt.Errorf("%w: cannot transfer to the same account", core.ErrInvalidAmount)
	}

	fromName, toName := s.accountNames(ctx, fromAccountID, toAccountID)
	today := core.Date{Time: s.now().UTC().Truncate(24 * time.Hour)}

	debit := core.TransactionRecord{
		AccountID:    fromAccountID,
		OccurredAt:   today,
		Counterparty: "Transfer to " + toName,
		Category:     "Transfer",
		Amount:       amount,
		Direction:    core.Debit,
		Status:       core.StatusCompleted,
		Description:  description,
	}
	credit := core.TransactionRecord{
		AccountID:    toAccountID,
		OccurredAt:   today,
		Counterparty: "Transfer from " + fromName,
		Category:     "Transfer",
		Amount:       amount,
		Direction:    core.Credit,
		Status:       core.StatusCompleted,
		Description:  description,
	}

	if _, err := s.Create(ctx, debit); err != nil {
		return fmt.Errorf("transfer debit leg: %w", err)
	}
	if _, err := s.Create(ctx, credit); err != nil {
		return fmt.Errorf("transfer credit leg: %w", err)
	}

	s.log.InfoContext(ctx, "Transfer completed",
		applog.FieldOperation, applog.OpTransfer,
		applog.FieldAccountID, fromAccountID,
		applog.FieldAmount, amount.StringFixed(2))
	return nil
}

// Deposit records a single credit into an account.
func (s *TransactionService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (string, error) {
	rec := core.TransactionRecord{
		AccountID:    accountID,
		OccurredAt:   core.Date{Time: s.now().UTC().Truncate(24 * time.Hour)},
		Counterparty: "Deposit",
		Category:     "Deposit",
		Amount:       amount,
		Direction:    core.Credit,
		Status:       core.StatusCompleted,
		Description:  description,
	}

	ref, err := s.Create(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("deposit: %w", err)
	}

	s.log.InfoContext(ctx, "Deposit completed",
		applog.FieldOperation, applog.OpDeposit,
		applog.FieldAccountID, accountID,
		applog.FieldAmount, amount.StringFixed(2))
	return ref, nil
}

func (s *TransactionService) publish(ctx context.Context, referenceID string, version int64) {
	if s.publisher == nil {
		s.log.WarnContext(ctx, "Export publisher not available, skipping export message",
			applog.FieldReferenceID, referenceID)
		return
	}
	if err := s.publisher.PublishExport(ctx, referenceID, version); err != nil {
		// The write already succeeded; the worker's periodic sweep picks
		// the row up later.
		s.log.ErrorContext(ctx, "Failed to publish export message",
			applog.FieldReferenceID, referenceID, applog.FieldVersion, version, applog.FieldError, err.Error())
	}
}

func (s *TransactionService) accountNames(ctx context.Context, fromID, toID string) (string, string) {
	fromName, toName := fromID, toID
	if s.accounts == nil {
		return fromName, toName
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Could not resolve account names for transfer", applog.FieldError, err.Error())
		return fromName, toName
	}
	for _, a := range accounts {
		if a.ID == fromID {
			fromName = a.Name
		}
		if a.ID == toID {
			toName = a.Name
		}
	}
	return fromName, toName
}
