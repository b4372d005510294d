package shared

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodRangeDecemberWrapsIntoNextYear(t *testing.T) {
	p, err := NewPeriod(12, 2025)
	if err != nil {
		t.Fatalf("new period: %v", err)
	}
	start, end := p.Range()
	if !start.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}

func TestPeriodValidation(t *testing.T) {
	cases := []struct {
		month, year int
		ok          bool
	}{
		{1, 2020, true},
		{12, 2030, true},
		{0, 2025, false},
		{13, 2025, false},
		{6, 2019, false},
		{6, 2031, false},
	}
	for _, tc := range cases {
		_, err := NewPeriod(tc.month, tc.year)
		if tc.ok && err != nil {
			t.Errorf("period %d/%d: unexpected error %v", tc.month, tc.year, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("period %d/%d: expected ErrInvalidPeriod, got %v", tc.month, tc.year, err)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	p := Period{Month: 8, Year: 2026}
	if got := p.Label(); got != "Agustus 2026" {
		t.Fatalf("unexpected label: %s", got)
	}
	if got := p.String(); got != "2026-08" {
		t.Fatalf("unexpected string: %s", got)
	}
}

func TestParseDivision(t *testing.T) {
	if d, err := ParseDivision("  Sport ", false); err != nil || d != DivisionSport {
		t.Fatalf("expected sport, got %q err=%v", d, err)
	}
	if d, err := ParseDivision("ALL", true); err != nil || d != DivisionAll {
		t.Fatalf("expected all, got %q err=%v", d, err)
	}
	if _, err := ParseDivision("all", false); !errors.Is(err, ErrUnknownDivision) {
		t.Fatalf("expected ErrUnknownDivision for all without wildcard, got %v", err)
	}
	if _, err := ParseDivision("bengkel", true); !errors.Is(err, ErrUnknownDivision) {
		t.Fatalf("expected ErrUnknownDivision, got %v", err)
	}
}
