// Package storage is the sqlite ledger backend. Amounts travel as decimal
// strings and civil dates as YYYY-MM-DD text, so nothing is lost to float
// conversion between the database and the reporting pipeline.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bankdash/internal/core"
	applog "bankdash/internal/log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("transaction not found")

type SQLiteRepository struct {
	db  *sql.DB
	log *applog.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:  db,
		log: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const recordColumns = `reference_id, account_id, occurred_on, counterparty, category, amount, direction, status, description`

// FetchAll implements ledger.TransactionFetcher. Rows with an amount that no
// longer parses are kept with a zero amount rather than failing the whole
// snapshot; the reporting layer already tolerates zero contributions.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM transactions ORDER BY created_at, reference_id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]core.TransactionRecord, 0)
	for rows.Next() {
		rec, err := r.scanRecord(ctx, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

// Insert implements ledger.TransactionWriter. The reference id is assigned
// here; callers never pick their own.
func (r *SQLiteRepository) Insert(ctx context.Context, rec core.TransactionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec.ReferenceID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (reference_id, account_id, occurred_on, counterparty, category, amount, direction, status, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ReferenceID, rec.AccountID, rec.OccurredAt.Key(), rec.Counterparty, rec.Category,
		rec.Amount.String(), string(rec.Direction), string(rec.Status), rec.Description)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	r.log.InfoContext(ctx, "Transaction saved to SQLite",
		applog.NewFields().
			WithTransaction(rec.ReferenceID, rec.AccountID, rec.Amount.String(), string(rec.Direction)).
			ToSlice()...)

	return rec.ReferenceID, nil
}

// Update implements ledger.TransactionUpdater. The stored record is replaced
// wholesale, the version bumps, and the row goes back to the export queue.
func (r *SQLiteRepository) Update(ctx context.Context, referenceID string, rec core.TransactionRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, occurred_on = ?, counterparty = ?, category = ?, amount = ?,
		    direction = ?, status = ?, description = ?,
		    version = version + 1, export_state = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE reference_id = ?`,
		rec.AccountID, rec.OccurredAt.Key(), rec.Counterparty, rec.Category, rec.Amount.String(),
		string(rec.Direction), string(rec.Status), rec.Description, referenceID)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetByReference returns a single record with its current version, for the
// export worker.
func (r *SQLiteRepository) GetByReference(ctx context.Context, referenceID string) (core.TransactionRecord, int64, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+`, version FROM transactions WHERE reference_id = ?`, referenceID)

	var (
		rec                                 core.TransactionRecord
		occurredOn, amount, direction, stat string
		version                             int64
	)
	err := row.Scan(&rec.ReferenceID, &rec.AccountID, &occurredOn, &rec.Counterparty, &rec.Category,
		&amount, &direction, &stat, &rec.Description, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionRecord{}, 0, ErrNotFound
	}
	if err != nil {
		return core.TransactionRecord{}, 0, fmt.Errorf("get transaction: %w", err)
	}

	rec.OccurredAt = core.ParseDate(occurredOn)
	rec.Amount = r.parseStoredAmount(ctx, rec.ReferenceID, amount)
	rec.Direction = core.Direction(direction)
	rec.Status = core.Status(stat)
	return rec, version, nil
}

// PendingExport identifies a row the statement worker still has to push out.
type PendingExport struct {
	ReferenceID string
	Version     int64
}

func (r *SQLiteRepository) GetPendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reference_id, version FROM transactions
		WHERE export_state = 'pending'
		ORDER BY created_at, reference_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ReferenceID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkExported flips the export state only if the row is still at the version
// the worker exported. A concurrent update wins and the row stays pending.
func (r *SQLiteRepository) MarkExported(ctx context.Context, referenceID string, version int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_state = 'exported', updated_at = CURRENT_TIMESTAMP
		WHERE reference_id = ? AND version = ? AND export_state = 'pending'`,
		referenceID, version)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.InfoContext(ctx, "Export superseded by newer version", applog.FieldReferenceID, referenceID, applog.FieldVersion, version)
	}
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, referenceID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_state = 'error', updated_at = CURRENT_TIMESTAMP
		WHERE reference_id = ?`, referenceID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, account_number, balance, available_balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a                  core.Account
			balance, available string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.AccountNumber, &balance, &available); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Balance = r.parseStoredAmount(ctx, a.ID, balance)
		a.AvailableBalance = r.parseStoredAmount(ctx, a.ID, available)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) GetUser(ctx context.Context) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, username, password, first_name, last_name, email, phone FROM users LIMIT 1`)

	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.Email, &u.Phone)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser moves profile fields only; identity and credentials stay fixed.
// The demo has a single user, so no id is required on the way in.
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	if u.ID == "" {
		current, err := r.GetUser(ctx)
		if err != nil {
			return err
		}
		u.ID = current.ID
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, email = ?, phone = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanRecord(ctx context.Context, rows *sql.Rows) (core.TransactionRecord, error) {
	var (
		rec                                 core.TransactionRecord
		occurredOn, amount, direction, stat string
	)
	if err := rows.Scan(&rec.ReferenceID, &rec.AccountID, &occurredOn, &rec.Counterparty, &rec.Category,
		&amount, &direction, &stat, &rec.Description); err != nil {
		return core.TransactionRecord{}, fmt.Errorf("scan transaction: %w", err)
	}
	rec.OccurredAt = core.ParseDate(occurredOn)
	rec.Amount = r.parseStoredAmount(ctx, rec.ReferenceID, amount)
	rec.Direction = core.Direction(direction)
	rec.Status = core.Status(stat)
	return rec, nil
}

func (r *SQLiteRepository) parseStoredAmount(ctx context.Context, id, raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		r.log.WarnContext(ctx, "Stored amount does not parse, using zero", applog.FieldReferenceID, id, "raw", raw)
		return decimal.Zero
	}
	return d
}
