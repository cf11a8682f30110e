// Package worker runs the statement export pipeline: AMQP messages and
// periodic catch-up sweeps both funnel into the same append-then-mark path.
package worker

import (
	"context"
	"fmt"

	"bankdash/internal/amqp"
	"bankdash/internal/core"
	"bankdash/internal/export"
	applog "bankdash/internal/log"
	"bankdash/internal/storage"
)

type ExportWorker struct {
	storage   *storage.SQLiteRepository
	statement export.StatementAppender
	batchSize int
	log       *applog.Logger
}

func NewExportWorker(storage *storage.SQLiteRepository, statement export.StatementAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		statement: statement,
		batchSize: batchSize,
		log:       applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker),
	}
}

// HandleExportMessage processes a single export message from AMQP. The
// message only names a reference and version; the record itself always
// comes fresh from storage.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	w.log.InfoContext(ctx, "Processing export message",
		applog.FieldReferenceID, msg.ReferenceID,
		applog.FieldVersion, msg.Version)

	rec, version, err := w.storage.GetByReference(ctx, msg.ReferenceID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if version != msg.Version {
		// A newer version exists; its own message will export it.
		w.log.InfoContext(ctx, "Skipping stale export message",
			applog.FieldReferenceID, msg.ReferenceID,
			"message_version", msg.Version,
			"current_version", version)
		return nil
	}

	return w.exportToStatement(ctx, msg.ReferenceID, version, rec)
}

// ProcessPending exports rows that still sit in the queue. This is the
// backup path for lost AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	w.log.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		rec, version, err := w.storage.GetByReference(ctx, p.ReferenceID)
		if err != nil {
			w.log.ErrorContext(ctx, "Failed to get transaction", applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			if err := w.storage.MarkExportError(ctx, p.ReferenceID); err != nil {
				w.log.ErrorContext(ctx, "Failed to mark export error", applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			}
			continue
		}

		if err := w.exportToStatement(ctx, p.ReferenceID, version, rec); err != nil {
			w.log.ErrorContext(ctx, "Failed to export transaction", applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			continue
		}
	}

	return nil
}

// StartupCheck drains the pending queue once at worker startup, with a
// larger batch, to recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending exports for startup check: %w", err)
	}

	if len(pending) == 0 {
		w.log.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	w.log.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		rec, version, err := w.storage.GetByReference(ctx, p.ReferenceID)
		if err != nil {
			w.log.ErrorContext(ctx, "Failed to get transaction for startup export",
				applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			if err := w.storage.MarkExportError(ctx, p.ReferenceID); err != nil {
				w.log.ErrorContext(ctx, "Failed to mark export error", applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			}
			errorCount++
			continue
		}

		if err := w.exportToStatement(ctx, p.ReferenceID, version, rec); err != nil {
			w.log.ErrorContext(ctx, "Failed to export during startup",
				applog.FieldReferenceID, p.ReferenceID, applog.FieldError, err.Error())
			errorCount++
			continue
		}

		successCount++
	}

	w.log.InfoContext(ctx, "Startup export check completed",
		applog.FieldOperation, applog.OpStartup,
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportToStatement(ctx context.Context, referenceID string, version int64, rec core.TransactionRecord) error {
	ref, err := w.statement.Append(ctx, rec)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, referenceID); markErr != nil {
			w.log.ErrorContext(ctx, "Failed to mark export error", applog.FieldReferenceID, referenceID, applog.FieldError, markErr.Error())
		}
		return fmt.Errorf("append to statement: %w", err)
	}

	if err := w.storage.MarkExported(ctx, referenceID, version); err != nil {
		// The append worked; the row stays pending and retries are harmless
		// duplicates at worst.
		w.log.ErrorContext(ctx, "Failed to mark as exported", applog.FieldReferenceID, referenceID, applog.FieldError, err.Error())
	}

	w.log.InfoContext(ctx, "Exported transaction to statement",
		applog.FieldOperation, applog.OpExport,
		applog.FieldReferenceID, referenceID,
		applog.FieldVersion, version,
		applog.FieldSheetsRef, ref,
		applog.FieldAmount, rec.Amount.String())

	return nil
}
