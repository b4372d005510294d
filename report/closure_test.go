package report

import (
	"strings"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/closure"
)

func TestBuildClosureHTML(t *testing.T) {
	summary := ClosureSummary{
		Month:    8,
		Year:     2026,
		ClosedAt: time.Date(2026, 9, 1, 2, 30, 0, 0, time.UTC),
		Notes:    "tutup buku rutin",
		Counts: closure.RecordCounts{
			Pembelian: 12,
			Penjualan: 9,
			Cicilan:   31,
		},
		Companies: []CompanyBalance{
			{Name: "Pandawa Sport", Modal: 512_500_000, Profit: 44_000_000},
			{Name: "Pandawa Start", Modal: 350_000_000, Profit: 0},
		},
	}

	html, err := BuildClosureHTML(summary)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, want := range []string{
		"Laporan Tutup Buku",
		"Agustus 2026",
		"Ditutup pada 01-09-2026 02:30",
		"tutup buku rutin",
		"Pembelian motor",
		"Biro jasa",
		"Pandawa Sport",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered document missing %q", want)
		}
	}
	// 12 + 9 + 31 archived rows in total.
	if !strings.Contains(html, ">52<") {
		t.Error("rendered document missing the archive total")
	}
}

func TestBuildClosureHTMLOmitsEmptyCompanyTable(t *testing.T) {
	html, err := BuildClosureHTML(ClosureSummary{Month: 1, Year: 2026})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(html, "Saldo perusahaan") {
		t.Error("company balance table rendered without company data")
	}
}

func TestFormatRupiahUsesIndonesianGrouping(t *testing.T) {
	if got := formatRupiah(512_500_000); got != "Rp 512.500.000" {
		t.Fatalf("formatRupiah = %q", got)
	}
}
