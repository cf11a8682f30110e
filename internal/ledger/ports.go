// Package ledger defines the ports the HTTP layer and services consume to
// reach the transaction store. Implementations live in internal/storage
// (sqlite) and internal/ledger/memory (demo/testing).
package ledger

import (
	"context"

	"bankdash/internal/core"
)

type (
	// TransactionFetcher returns the full working-set snapshot the
	// reporting pipeline aggregates. A successful fetch never returns a
	// nil slice; callers degrade to an empty snapshot on error.
	TransactionFetcher interface {
		FetchAll(ctx context.Context) ([]core.TransactionRecord, error)
	}

	// TransactionWriter assigns identity to a new record and stores it.
	TransactionWriter interface {
		Insert(ctx context.Context, rec core.TransactionRecord) (referenceID string, err error)
	}

	// TransactionUpdater replaces the whole record stored under
	// referenceID. The bool reports whether the reference existed.
	TransactionUpdater interface {
		Update(ctx context.Context, referenceID string, rec core.TransactionRecord) (bool, error)
	}

	// AccountReader lists the demo accounts shown in the sidebar.
	AccountReader interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	// UserStore reads and updates the demo user profile.
	UserStore interface {
		GetUser(ctx context.Context) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
	}
)
