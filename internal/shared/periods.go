package shared

import (
	"errors"
	"fmt"
	"time"
)

// Accounting periods are whole calendar months addressed as (month, year).
// The year bounds mirror the range offered by the front-end period picker.
const (
	MinPeriodYear = 2020
	MaxPeriodYear = 2030
)

// ErrInvalidPeriod indicates a month or year outside the accepted range.
var ErrInvalidPeriod = errors.New("invalid period")

// Period addresses one calendar month.
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates and constructs a Period.
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the month and year bounds.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < MinPeriodYear || p.Year > MaxPeriodYear {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Range returns the half-open [start, end) date range covering the period.
// December rolls over into January of the following year; time.Date
// normalises month 13 for us.
func (p Period) Range() (start, end time.Time) {
	start = time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(p.Year, time.Month(p.Month)+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Label renders the period with its Indonesian month name, e.g. "Agustus 2025".
func (p Period) Label() string {
	if p.Month < 1 || p.Month > 12 {
		return p.String()
	}
	return fmt.Sprintf("%s %d", monthNames[p.Month-1], p.Year)
}
