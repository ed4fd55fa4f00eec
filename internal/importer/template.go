package importer

import (
	"bytes"
	"encoding/csv"
)

// TemplateFilename is the download name offered for the import template.
const TemplateFilename = "modelo_importacao_fluxoconta.csv"

var templateRows = [][]string{
	{"data", "descricao", "categoria", "tipo", "valor", "cartao", "parcelas"},
	{"01/01/2026", "Salário mensal", "Salário", "entrada", "5000,00", "", ""},
	{"05/01/2026", "Supermercado Extra", "Alimentação", "saída", "350,50", "", ""},
	{"10/01/2026", "Netflix", "Assinaturas", "cartão", "45,90", "Nubank", "1/1"},
	{"15/01/2026", "iPhone 15", "Eletrônicos", "cartão", "1200,00", "PicPay", "1/12"},
	{"20/01/2026", "Uber", "Transporte", "saída", "35,80", "", ""},
	{"25/01/2026", "Spotify", "Assinaturas", "cartão", "21,90", "Nubank", "1/1"},
}

// Template renders the example import file: a BOM-prefixed UTF-8 CSV with a
// header and six sample rows (one income, two expenses, three card charges).
func Template() []byte {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	for _, row := range templateRows {
		_ = w.Write(row)
	}
	w.Flush()
	return buf.Bytes()
}
