// Package importer ingests spreadsheet files and turns their rows into
// canonical transactions. Parsing is tolerant: a bad row is rejected with a
// reason and never aborts the batch.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fluxoconta/internal/core"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// RawRow maps a lowercase header name to the cell value of one data row.
type RawRow map[string]string

// sourceRow carries one data row together with its physical 1-based row
// number in the source file. The header occupies row 1, so numbering stays
// stable across blank or malformed lines.
type sourceRow struct {
	num int
	row RawRow
}

// fieldAliases lists the accepted header names per semantic field, in
// priority order. The first alias present in the header row wins.
var fieldAliases = map[string][]string{
	"date":         {"data", "date", "dt"},
	"description":  {"descricao", "descrição", "description", "desc", "historico", "histórico"},
	"category":     {"categoria", "category", "cat"},
	"type":         {"tipo", "type", "tp"},
	"amount":       {"valor", "value", "amount", "val", "preço", "preco"},
	"card":         {"cartao", "card", "cartão", "bandeira"},
	"installments": {"parcelas", "installments", "parcela", "installment", "parc"},
}

var installmentPattern = regexp.MustCompile(`(\d+)(?:\D+(\d+))?`)

// Parse reads an import file and produces a batch of validated transactions.
// File-level problems (unknown extension, empty file, missing parser) return
// an error; row-level problems land in batch.Invalid.
func Parse(data []byte, filename string, existing []core.Category) (*core.ImportBatch, error) {
	var (
		rows    []sourceRow
		rowErrs []core.RowError
		err     error
	)

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "csv":
		rows, rowErrs, err = readCSV(data)
	case "xlsx":
		rows, err = readXLSX(data)
	case "xls", "ods":
		// Recognized formats without an available parser.
		return nil, fmt.Errorf("%s: %w", filename, core.ErrLibraryUnavailable)
	default:
		return nil, fmt.Errorf("%s: %w", filename, core.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && len(rowErrs) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, core.ErrEmptyFile)
	}

	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Nome)] = true
	}

	batch := &core.ImportBatch{Invalid: rowErrs}
	queued := make(map[string]bool)

	for _, src := range rows {
		tx, rowErr := normalizeRow(src.row, src.num)
		if rowErr != nil {
			batch.Invalid = append(batch.Invalid, *rowErr)
			continue
		}

		if tx.Category != core.Uncategorized && !known[strings.ToLower(tx.Category)] {
			if !queued[strings.ToLower(tx.Category)] {
				queued[strings.ToLower(tx.Category)] = true
				batch.CategoriesToCreate = append(batch.CategoriesToCreate, tx.Category)
			}
		}

		batch.Valid = append(batch.Valid, tx)
		batch.Stats.Add(tx)
	}

	slog.Debug("Import file parsed",
		"filename", filename,
		"valid", len(batch.Valid),
		"invalid", len(batch.Invalid),
		"new_categories", len(batch.CategoriesToCreate))

	return batch, nil
}

// normalizeRow validates and converts one raw row. It returns a RowError
// instead of a transaction when the row cannot be salvaged.
func normalizeRow(row RawRow, srcRow int) (core.Transaction, *core.RowError) {
	dateRaw, hasDate := findField(row, "date")
	descRaw, hasDesc := findField(row, "description")
	amountRaw, hasAmount := findField(row, "amount")
	if !hasDate || !hasDesc || !hasAmount {
		return core.Transaction{}, &core.RowError{Row: srcRow, Reason: core.ReasonMissingFields}
	}

	date, ok := parseDate(dateRaw)
	if !ok {
		return core.Transaction{}, &core.RowError{Row: srcRow, Reason: core.ReasonInvalidDate}
	}

	amount, err := ParseAmount(amountRaw)
	if err != nil {
		return core.Transaction{}, &core.RowError{Row: srcRow, Reason: core.ReasonInvalidAmount}
	}

	txType := core.Expense
	if typeRaw, hasType := findField(row, "type"); hasType {
		txType = core.ClassifyType(typeRaw)
	}

	category := core.Uncategorized
	if catRaw, hasCat := findField(row, "category"); hasCat && strings.TrimSpace(catRaw) != "" {
		category = strings.TrimSpace(catRaw)
	}

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Type:        txType,
		Date:        date,
		Description: strings.TrimSpace(descRaw),
		Category:    category,
		Amount:      amount,
	}

	// Card and installments only exist on credit purchases.
	if txType == core.Credit {
		if cardRaw, hasCard := findField(row, "card"); hasCard {
			tx.Card = strings.TrimSpace(cardRaw)
		}
		if instRaw, hasInst := findField(row, "installments"); hasInst {
			tx.Installment, tx.TotalInstallments = parseInstallments(instRaw)
		}
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, &core.RowError{Row: srcRow, Reason: core.ReasonProcessing}
	}
	return tx, nil
}

// findField resolves a semantic field to the row value via the alias table.
func findField(row RawRow, field string) (string, bool) {
	for _, alias := range fieldAliases[field] {
		if v, ok := row[alias]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

var dateLayouts = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02"},
	{regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), "02/01/2006"},
	{regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), "02-01-2006"},
}

// fallbackLayouts cover the loose formats spreadsheet tools emit when the
// column is not one of the three canonical shapes.
var fallbackLayouts = []string{
	"2006-1-2",
	"2006/01/02",
	"2/1/2006",
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseDate(raw string) (core.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return core.Date{}, false
	}
	for _, dl := range dateLayouts {
		if dl.pattern.MatchString(s) {
			t, err := time.Parse(dl.layout, s)
			if err != nil {
				return core.Date{}, false
			}
			return core.DateOf(t), true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), true
		}
	}
	return core.Date{}, false
}

// ParseAmount converts a monetary string to a positive float. Currency
// markers and whitespace are stripped, a decimal comma becomes a dot, and
// thousands-separator dots are removed ("R$ 1.234,56" -> 1234.56).
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, core.ErrInvalidAmount
	}

	s = strings.NewReplacer("R$", "", "$", "", "€", "").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	// Decimal comma wins over dot: convert the comma, then every remaining
	// dot before the last one is a thousands separator.
	s = strings.Replace(s, ",", ".", 1)
	if last := strings.LastIndex(s, "."); last >= 0 {
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, core.ErrInvalidAmount
	}
	return v, nil
}

// parseInstallments reads "<n>" or "<n>/<m>"-style text (any non-digit
// separator). A single number means installment n of n.
func parseInstallments(raw string) (installment, total int) {
	m := installmentPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0
	}
	installment, _ = strconv.Atoi(m[1])
	if installment < 1 {
		installment = 1
	}
	total = installment
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil && n >= installment {
			total = n
		}
	}
	return installment, total
}

// readCSV decodes a UTF-8 CSV with a header row, stripping an optional BOM.
// A record that fails to parse becomes a RowError for its physical line and
// never aborts the file.
func readCSV(data []byte) ([]sourceRow, []core.RowError, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, core.ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	headers := normalizeHeaders(header)
	var (
		rows    []sourceRow
		rowErrs []core.RowError
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			rowErrs = append(rowErrs, core.RowError{Row: line, Reason: core.ReasonProcessing})
			continue
		}
		if row, ok := buildRow(headers, record); ok {
			// FieldPos reports the physical line the record started on,
			// which survives blank lines the reader silently skips.
			line, _ := r.FieldPos(0)
			rows = append(rows, sourceRow{num: line, row: row})
		}
	}
	return rows, rowErrs, nil
}

// readXLSX decodes the first sheet of an xlsx workbook, first row as header.
func readXLSX(data []byte) ([]sourceRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) < 2 {
		return nil, core.ErrEmptyFile
	}

	headers := normalizeHeaders(records[0])
	var rows []sourceRow
	for i, record := range records[1:] {
		if row, ok := buildRow(headers, record); ok {
			rows = append(rows, sourceRow{num: i + 2, row: row})
		}
	}
	return rows, nil
}

// normalizeHeaders case-folds, trims and BOM-strips header cells.
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// buildRow pairs header names with cell values, dropping fully empty rows.
func buildRow(headers, record []string) (RawRow, bool) {
	row := make(RawRow, len(headers))
	empty := true
	for i, h := range headers {
		if h == "" || i >= len(record) {
			continue
		}
		v := strings.TrimSpace(strings.TrimPrefix(record[i], "\ufeff"))
		row[h] = v
		if v != "" {
			empty = false
		}
	}
	if empty {
		return nil, false
	}
	return row, true
}
