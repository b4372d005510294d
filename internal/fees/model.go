package fees

import (
	"errors"
	"time"
)

// Fee is one sales fee payout. JSON field names follow the fee_penjualan
// table columns.
type Fee struct {
	ID        int64     `json:"id"`
	Division  string    `json:"divisi"`
	Date      time.Time `json:"tanggal"`
	SaleID    int64     `json:"penjualan_id"`
	Recipient string    `json:"penerima"`
	Amount    int64     `json:"jumlah"`
	Notes     string    `json:"keterangan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeeForm carries create/update input.
type FeeForm struct {
	Division  string `json:"divisi" validate:"required,oneof=sport start"`
	Date      string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	SaleID    int64  `json:"penjualan_id" validate:"required,min=1"`
	Recipient string `json:"penerima" validate:"required,max=100"`
	Amount    int64  `json:"jumlah" validate:"required,min=1"`
	Notes     string `json:"keterangan" validate:"max=500"`
}

// Filters narrows fee listings.
type Filters struct {
	Division string
	Month    int
	Year     int
	SaleID   int64
	Page     int
	Limit    int
}

var ErrNotFound = errors.New("fee penjualan: record not found")
