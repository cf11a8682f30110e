// Package export defines the outbound port for pushing transactions onto an
// external statement, plus the Google Sheets adapter under export/google.
package export

import (
	"context"

	"bankdash/internal/core"
)

type (
	// StatementAppender writes one transaction row to the external
	// statement and returns an opaque row reference.
	StatementAppender interface {
		Append(ctx context.Context, rec core.TransactionRecord) (rowRef string, err error)
	}
)
