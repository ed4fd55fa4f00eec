package importer

import (
	"errors"
	"strings"
	"testing"

	"fluxoconta/internal/core"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"50", 50, true},
		{"50,00", 50, true},
		{"R$ 50,00", 50, true},
		{"1.234,56", 1234.56, true},
		{"R$ 1.234,56", 1234.56, true},
		{"1.234.567,89", 1234567.89, true},
		{"1234.56", 1234.56, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-10,00", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.raw)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q): unexpected error %v", i, tc.raw, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.raw)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("case %d (%q): got %v, want %v", i, tc.raw, got, tc.want)
		}
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2026-01-05", "2026-01-05", true},
		{"05/01/2026", "2026-01-05", true},
		{"05-01-2026", "2026-01-05", true},
		{"2026-1-5", "2026-01-05", true},
		{"", "", false},
		{"31/02/2026", "", false},
		{"not a date", "", false},
	}
	for i, tc := range cases {
		got, ok := parseDate(tc.raw)
		if ok != tc.ok {
			t.Fatalf("case %d (%q): ok=%v, want %v", i, tc.raw, ok, tc.ok)
		}
		if tc.ok && got.String() != tc.want {
			t.Fatalf("case %d (%q): got %s, want %s", i, tc.raw, got, tc.want)
		}
	}
}

func TestParseInstallments(t *testing.T) {
	cases := []struct {
		raw               string
		installment, total int
	}{
		{"1/12", 1, 12},
		{"3 de 10", 3, 10},
		{"2-6", 2, 6},
		{"4", 4, 4},
		{"", 0, 0},
		{"n/a", 0, 0},
		// A total below the current number is ignored.
		{"5/2", 5, 5},
	}
	for i, tc := range cases {
		inst, total := parseInstallments(tc.raw)
		if inst != tc.installment || total != tc.total {
			t.Fatalf("case %d (%q): got %d/%d, want %d/%d", i, tc.raw, inst, total, tc.installment, tc.total)
		}
	}
}

func TestParseCSVWithAliases(t *testing.T) {
	csv := "\xef\xbb\xbfDT,Histórico,Cat,TP,Val\n" +
		"05/01/2026,Supermercado,Alimentação,saída,\"R$ 350,50\"\n" +
		"2026-01-10,Salário,Salário,entrada,\"5.000,00\"\n"

	batch, err := Parse([]byte(csv), "extrato.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 2 || len(batch.Invalid) != 0 {
		t.Fatalf("got %d valid, %d invalid", len(batch.Valid), len(batch.Invalid))
	}

	first := batch.Valid[0]
	if first.Date.String() != "2026-01-05" || first.Amount != 350.50 || first.Type != core.Expense {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Category != "Alimentação" {
		t.Fatalf("category: got %q", first.Category)
	}
	if first.ID == "" {
		t.Fatalf("expected assigned ID")
	}

	second := batch.Valid[1]
	if second.Type != core.Income || second.Amount != 5000 {
		t.Fatalf("unexpected second row: %+v", second)
	}

	if batch.Stats.Income != 5000 || batch.Stats.Expense != 350.50 {
		t.Fatalf("unexpected stats: %+v", batch.Stats)
	}
}

func TestParseRowErrors(t *testing.T) {
	csv := "data,descricao,valor\n" +
		"bad-date,Algo,10,00\n" +
		"05/01/2026,,10,00\n" +
		"05/01/2026,Algo,abc\n" +
		"05/01/2026,Ok,\"20,00\"\n"

	batch, err := Parse([]byte(csv), "extrato.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 1 {
		t.Fatalf("got %d valid", len(batch.Valid))
	}
	if len(batch.Invalid) != 3 {
		t.Fatalf("got %d invalid", len(batch.Invalid))
	}

	// Row numbers count the header as row 1.
	if batch.Invalid[0].Row != 2 || batch.Invalid[0].Reason != core.ReasonInvalidDate {
		t.Fatalf("unexpected first rejection: %+v", batch.Invalid[0])
	}
	if batch.Invalid[1].Row != 3 || batch.Invalid[1].Reason != core.ReasonMissingFields {
		t.Fatalf("unexpected second rejection: %+v", batch.Invalid[1])
	}
	if batch.Invalid[2].Row != 4 || batch.Invalid[2].Reason != core.ReasonInvalidAmount {
		t.Fatalf("unexpected third rejection: %+v", batch.Invalid[2])
	}
}

func TestParseMalformedRowDoesNotAbortBatch(t *testing.T) {
	csv := "data,descricao,valor\n" +
		"2026-01-05,Mercado,\"100,00\"\n" +
		"2026-01-06,Ub\"er,20\n" +
		"2026-01-07,Padaria,\"30,00\"\n"

	batch, err := Parse([]byte(csv), "extrato.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 2 {
		t.Fatalf("got %d valid (%+v)", len(batch.Valid), batch.Invalid)
	}
	if len(batch.Invalid) != 1 {
		t.Fatalf("got %d invalid", len(batch.Invalid))
	}
	if batch.Invalid[0].Row != 3 || batch.Invalid[0].Reason != core.ReasonProcessing {
		t.Fatalf("unexpected rejection: %+v", batch.Invalid[0])
	}
	if batch.Valid[1].Description != "Padaria" {
		t.Fatalf("rows after the bad one should survive, got %+v", batch.Valid[1])
	}
}

func TestParseRowNumbersSurviveBlankLines(t *testing.T) {
	csv := "data,descricao,valor\n" +
		"2026-01-05,Primeira,\"10,00\"\n" +
		"\n" +
		"bad-date,Algo,\"10,00\"\n"

	batch, err := Parse([]byte(csv), "extrato.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 1 || len(batch.Invalid) != 1 {
		t.Fatalf("got %d valid, %d invalid", len(batch.Valid), len(batch.Invalid))
	}
	// The blank line still counts, so the bad row is physical row 4.
	if batch.Invalid[0].Row != 4 || batch.Invalid[0].Reason != core.ReasonInvalidDate {
		t.Fatalf("unexpected rejection: %+v", batch.Invalid[0])
	}
}

func TestParseDefaultsAndNewCategories(t *testing.T) {
	csv := "data,descricao,valor,categoria\n" +
		"05/01/2026,Sem tipo,\"10,00\",\n" +
		"06/01/2026,Nova,\"20,00\",Viagens\n" +
		"07/01/2026,Nova de novo,\"30,00\",viagens\n" +
		"08/01/2026,Conhecida,\"40,00\",Transporte\n"

	existing := []core.Category{{ID: "1", Nome: "Transporte", Tipo: core.Expense}}
	batch, err := Parse([]byte(csv), "extrato.csv", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch.Valid[0].Type != core.Expense {
		t.Fatalf("missing type should default to expense")
	}
	if batch.Valid[0].Category != core.Uncategorized {
		t.Fatalf("missing category should fall back, got %q", batch.Valid[0].Category)
	}

	// The two "viagens" spellings collapse into one pending creation and
	// the known category is not repeated.
	if len(batch.CategoriesToCreate) != 1 || batch.CategoriesToCreate[0] != "Viagens" {
		t.Fatalf("unexpected categories to create: %v", batch.CategoriesToCreate)
	}
}

func TestParseCreditFields(t *testing.T) {
	csv := "data,descricao,valor,tipo,cartao,parcelas\n" +
		"05/01/2026,iPhone,\"1.200,00\",cartão,PicPay,1/12\n" +
		"06/01/2026,Mercado,\"100,00\",saída,Visa,1/3\n"

	batch, err := Parse([]byte(csv), "fatura.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 2 {
		t.Fatalf("got %d valid (%+v)", len(batch.Valid), batch.Invalid)
	}

	credit := batch.Valid[0]
	if credit.Card != "PicPay" || credit.Installment != 1 || credit.TotalInstallments != 12 {
		t.Fatalf("unexpected credit fields: %+v", credit)
	}

	// Card columns are ignored outside credit rows.
	expense := batch.Valid[1]
	if expense.Card != "" || expense.Installment != 0 || expense.TotalInstallments != 0 {
		t.Fatalf("expense should not carry card fields: %+v", expense)
	}
}

func TestParseFileErrors(t *testing.T) {
	if _, err := Parse([]byte("data,descricao,valor\n"), "vazio.csv", nil); !errors.Is(err, core.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := Parse([]byte("x"), "doc.pdf", nil); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Parse([]byte("x"), "antigo.xls", nil); !errors.Is(err, core.ErrLibraryUnavailable) {
		t.Fatalf("expected ErrLibraryUnavailable for xls, got %v", err)
	}
	if _, err := Parse([]byte("x"), "planilha.ods", nil); !errors.Is(err, core.ErrLibraryUnavailable) {
		t.Fatalf("expected ErrLibraryUnavailable for ods, got %v", err)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	data := Template()
	if !strings.HasPrefix(string(data), "\xef\xbb\xbf") {
		t.Fatalf("template should start with a BOM")
	}

	batch, err := Parse(data, TemplateFilename, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Valid) != 6 || len(batch.Invalid) != 0 {
		t.Fatalf("got %d valid, %d invalid", len(batch.Valid), len(batch.Invalid))
	}

	var income, expense, credit int
	for _, tx := range batch.Valid {
		switch tx.Type {
		case core.Income:
			income++
		case core.Expense:
			expense++
		case core.Credit:
			credit++
		}
	}
	if income != 1 || expense != 2 || credit != 3 {
		t.Fatalf("type mix: income=%d expense=%d credit=%d", income, expense, credit)
	}
}
