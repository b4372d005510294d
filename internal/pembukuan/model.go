package pembukuan

import (
	"errors"
	"time"
)

// Entry is one manual bookkeeping line. JSON field names follow the
// pembukuan table columns.
type Entry struct {
	ID        int64     `json:"id"`
	Division  string    `json:"divisi"`
	Date      time.Time `json:"tanggal"`
	Notes     string    `json:"keterangan"`
	Debit     int64     `json:"debit"`
	Credit    int64     `json:"kredit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryForm carries create/update input. A line carries a debit or a credit,
// not both.
type EntryForm struct {
	Division string `json:"divisi" validate:"required,oneof=sport start"`
	Date     string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	Notes    string `json:"keterangan" validate:"required,max=500"`
	Debit    int64  `json:"debit" validate:"min=0"`
	Credit   int64  `json:"kredit" validate:"min=0"`
}

// Filters narrows entry listings.
type Filters struct {
	Division string
	Month    int
	Year     int
	Page     int
	Limit    int
}

var (
	ErrNotFound   = errors.New("pembukuan: entry not found")
	ErrOneSided   = errors.New("pembukuan: entry needs exactly one of debit or kredit")
)
