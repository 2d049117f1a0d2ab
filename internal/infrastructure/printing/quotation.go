package printing

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// QuotationLine is a printed quotation item
type QuotationLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// QuotationDocument is everything printed on a quotation
type QuotationDocument struct {
	Company       string
	Code          string
	Status        string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	ClientName    string
	ClientRUC     string
	ClientAddress string
	ContactName   string
	ContactEmail  string
	SellerName    string
	Items         []QuotationLine
	Total         decimal.Decimal
	Notes         string
}

var quotationFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"money": func(d decimal.Decimal) string { return "S/ " + d.StringFixed(2) },
	"qty":   func(d decimal.Decimal) string { return d.String() },
	"inc":   func(i int) int { return i + 1 },
}

var quotationTemplate = template.Must(template.New("quotation").Funcs(quotationFuncs).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>Cotización {{.Code}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11px; color: #222; }
  header { display: flex; justify-content: space-between; border-bottom: 2px solid #1F4E78; padding-bottom: 8px; }
  h1 { font-size: 20px; color: #1F4E78; margin: 0; }
  .meta td { padding: 2px 8px 2px 0; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.items th { background: #1F4E78; color: #fff; padding: 6px; text-align: left; }
  table.items td { border-bottom: 1px solid #ddd; padding: 6px; }
  .num { text-align: right; }
  .total td { font-weight: bold; border-top: 2px solid #1F4E78; }
  .notes { margin-top: 16px; white-space: pre-wrap; }
</style>
</head>
<body>
<header>
  <div><h1>{{.Company}}</h1><div>Cotización</div></div>
  <div><h1>{{.Code}}</h1><div>Estado: {{.Status}}</div></div>
</header>
<table class="meta">
  <tr><td>Cliente:</td><td>{{.ClientName}}</td><td>RUC:</td><td>{{.ClientRUC}}</td></tr>
  <tr><td>Dirección:</td><td colspan="3">{{.ClientAddress}}</td></tr>
  {{- if .ContactName}}
  <tr><td>Atención:</td><td>{{.ContactName}}</td><td>Email:</td><td>{{.ContactEmail}}</td></tr>
  {{- end}}
  <tr><td>Emisión:</td><td>{{date .IssuedAt}}</td><td>Vigencia:</td><td>{{date .ExpiresAt}}</td></tr>
  <tr><td>Vendedor:</td><td colspan="3">{{.SellerName}}</td></tr>
</table>
<table class="items">
  <thead><tr><th>#</th><th>Descripción</th><th class="num">Cantidad</th><th class="num">P. Unitario</th><th class="num">Subtotal</th></tr></thead>
  <tbody>
  {{- range $i, $it := .Items}}
    <tr><td>{{inc $i}}</td><td>{{$it.Description}}</td><td class="num">{{qty $it.Quantity}}</td><td class="num">{{money $it.UnitPrice}}</td><td class="num">{{money $it.Subtotal}}</td></tr>
  {{- end}}
    <tr class="total"><td colspan="4" class="num">Total</td><td class="num">{{money .Total}}</td></tr>
  </tbody>
</table>
{{- if .Notes}}
<div class="notes">{{.Notes}}</div>
{{- end}}
</body>
</html>`))

// RenderQuotationHTML renders the quotation document as HTML
func RenderQuotationHTML(doc QuotationDocument) (string, error) {
	var buf bytes.Buffer
	if err := quotationTemplate.Execute(&buf, doc); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render quotation", err)
	}
	return buf.String(), nil
}

// QuotationPrinter turns quotations into PDF files
type QuotationPrinter struct {
	renderer PDFRenderer
}

// NewQuotationPrinter creates a QuotationPrinter
func NewQuotationPrinter(renderer PDFRenderer) *QuotationPrinter {
	return &QuotationPrinter{renderer: renderer}
}

// Print renders the quotation to PDF bytes
func (p *QuotationPrinter) Print(ctx context.Context, doc QuotationDocument) ([]byte, error) {
	page, err := RenderQuotationHTML(doc)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       page,
		Title:      "Cotización " + doc.Code,
		Margins:    DefaultMargins(),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
