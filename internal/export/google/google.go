package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bankdash/internal/core"
	ports "bankdash/internal/export"
	applog "bankdash/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends transaction rows to a Google Sheets statement.
type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	statementSheet string
	log            *applog.Logger
}

var _ ports.StatementAppender = (*Client)(nil)

// Settings holds everything needed to reach the statement spreadsheet.
// CredentialsJSON takes precedence over CredentialsFile when both are set.
type Settings struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New builds a Sheets client authenticated with service-account
// credentials.
func New(ctx context.Context, settings Settings) (*Client, error) {
	spreadsheetID := strings.TrimSpace(settings.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	sheetName := strings.TrimSpace(settings.SheetName)
	if sheetName == "" {
		sheetName = "Statement"
	}

	credentialsJSON, err := resolveCredentials(settings)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		statementSheet: sheetName,
		log:            applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentSheets),
	}, nil
}

func resolveCredentials(settings Settings) ([]byte, error) {
	switch {
	case strings.TrimSpace(settings.CredentialsJSON) != "":
		return []byte(settings.CredentialsJSON), nil
	case strings.TrimSpace(settings.CredentialsFile) != "":
		credentialsJSON, err := os.ReadFile(settings.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return credentialsJSON, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// Append writes one row: date, account, counterparty, category, signed
// amount, status, description. The sign follows the ledger convention of
// credits positive and debits negative.
func (c *Client) Append(ctx context.Context, rec core.TransactionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []any{
		rec.OccurredAt.Key(),
		rec.AccountID,
		rec.CounterpartyKey(),
		rec.Category,
		rec.Signed().StringFixed(2),
		string(rec.Status),
		rec.Description,
	}

	rng := fmt.Sprintf("%s!A:G", c.statementSheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.statementSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	c.log.InfoContext(ctx, "Transaction appended to statement",
		applog.FieldReferenceID, rec.ReferenceID,
		applog.FieldSheetsRef, ref)

	return ref, nil
}
