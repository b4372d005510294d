package report

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pandawa-motor/pandawa/internal/closure"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

// CompanyBalance is one company's modal position at closing time.
type CompanyBalance struct {
	Name   string
	Modal  int64
	Profit int64
}

// ClosureSummary collects everything the month-end report prints.
type ClosureSummary struct {
	Month     int
	Year      int
	ClosedAt  time.Time
	Notes     string
	Counts    closure.RecordCounts
	Companies []CompanyBalance
}

// Period renders the Indonesian month name plus year, e.g. "Agustus 2026".
func (s ClosureSummary) Period() string {
	return shared.Period{Month: s.Month, Year: s.Year}.Label()
}

// rupiah formats whole-rupiah amounts with Indonesian digit grouping.
var rupiah = message.NewPrinter(language.Indonesian)

func formatRupiah(v int64) string {
	return rupiah.Sprintf("Rp %d", v)
}

var kindLabels = map[closure.EntityKind]string{
	closure.KindPembelian:    "Pembelian motor",
	closure.KindPenjualan:    "Penjualan motor",
	closure.KindPembukuan:    "Pembukuan",
	closure.KindCicilan:      "Cicilan",
	closure.KindFeePenjualan: "Fee penjualan",
	closure.KindOperational:  "Biaya operasional",
	closure.KindBiroJasa:     "Biro jasa",
	closure.KindAssets:       "Aset",
}

var closureTemplate = template.Must(template.New("closure").Funcs(template.FuncMap{
	"rupiah": formatRupiah,
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Laporan Tutup Buku {{.Summary.Period}}</title>
<style>
body { font-family: sans-serif; margin: 40px; color: #222; }
h1 { font-size: 20px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
th, td { border: 1px solid #bbb; padding: 6px 10px; font-size: 13px; text-align: left; }
th { background: #f0f0f0; }
td.num { text-align: right; }
.meta { font-size: 12px; color: #555; margin-bottom: 16px; }
</style>
</head>
<body>
<h1>Laporan Tutup Buku &mdash; {{.Summary.Period}}</h1>
<p class="meta">Ditutup pada {{.ClosedAt}}{{if .Summary.Notes}} &middot; Catatan: {{.Summary.Notes}}{{end}}</p>

<h2>Arsip per jenis catatan</h2>
<table>
<tr><th>Jenis</th><th>Jumlah baris</th></tr>
{{range .Rows}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td></tr>
{{end}}<tr><th>Total</th><th style="text-align:right">{{.Total}}</th></tr>
</table>

{{if .Summary.Companies}}<h2>Saldo perusahaan</h2>
<table>
<tr><th>Perusahaan</th><th>Modal</th><th>Keuntungan</th></tr>
{{range .Summary.Companies}}<tr><td>{{.Name}}</td><td class="num">{{rupiah .Modal}}</td><td class="num">{{rupiah .Profit}}</td></tr>
{{end}}</table>
{{end}}</body>
</html>
`))

type closureRow struct {
	Label string
	Count int64
}

type closureView struct {
	Summary  ClosureSummary
	ClosedAt string
	Rows     []closureRow
	Total    int64
}

// BuildClosureHTML renders the month-end summary document.
func BuildClosureHTML(s ClosureSummary) (string, error) {
	view := closureView{
		Summary:  s,
		ClosedAt: s.ClosedAt.Format("02-01-2006 15:04"),
		Total:    s.Counts.Total(),
	}
	for _, kind := range closure.Kinds {
		view.Rows = append(view.Rows, closureRow{
			Label: kindLabels[kind],
			Count: s.Counts.Get(kind),
		})
	}
	var buf bytes.Buffer
	if err := closureTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Renderer turns a closure summary into a PDF through Gotenberg.
type Renderer struct {
	client *Client
}

// NewRenderer constructs a Renderer.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

// RenderClosure renders the summary PDF bytes.
func (r *Renderer) RenderClosure(ctx context.Context, s ClosureSummary) ([]byte, error) {
	html, err := BuildClosureHTML(s)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}
