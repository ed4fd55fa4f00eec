// Package google implements the sheets ports on top of the Google Sheets API
// using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"fluxoconta/internal/core"
	ports "fluxoconta/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ ports.TransactionAppender = (*Client)(nil)
	_ ports.SnapshotReplacer    = (*Client)(nil)
)

// Options configure the Sheets client. Exactly one of CredentialsFile or
// CredentialsJSON must be set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if opts.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		raw, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

var headerRow = []any{"Data", "Descrição", "Categoria", "Tipo", "Valor", "Cartão", "Parcela"}

// AppendTransactions appends one row per transaction after the last filled
// row of the sheet.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: toRows(txs)}
	rng := fmt.Sprintf("%s!A:G", c.sheetName)

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Appended transactions to sheet", "count", len(txs), "sheet", c.sheetName)
	return nil
}

// ReplaceTransactions clears the sheet and rewrites it with a header row and
// the full transaction list.
func (c *Client) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	rng := fmt.Sprintf("%s!A:G", c.sheetName)

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := make([][]any, 0, len(txs)+1)
	values = append(values, headerRow)
	values = append(values, toRows(txs)...)

	vr := &gsheet.ValueRange{Values: values}
	start := fmt.Sprintf("%s!A1", c.sheetName)

	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, start, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("rewrite sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Rewrote sheet with full ledger", "count", len(txs), "sheet", c.sheetName)
	return nil
}

func toRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		installment := ""
		if tx.TotalInstallments > 0 {
			installment = fmt.Sprintf("%d/%d", tx.Installment, tx.TotalInstallments)
		}
		rows = append(rows, []any{
			tx.Date.String(),
			tx.Description,
			tx.Category,
			core.TypeLabel(tx.Type),
			tx.Amount,
			tx.Card,
			installment,
		})
	}
	return rows
}
