package purchases

import (
	"errors"
	"time"
)

// Status of a purchased unit. Sold units become eligible for the month-end
// close of their purchase month.
type Status string

const (
	StatusReady Status = "ready"
	StatusSold  Status = "sold"
)

// Purchase is one motorcycle unit bought into stock. JSON field names follow
// the pembelian table columns.
type Purchase struct {
	ID            int64     `json:"id"`
	Division      string    `json:"divisi"`
	Date          time.Time `json:"tanggal"`
	BrandID       int64     `json:"brand_id"`
	Model         string    `json:"jenis_motor"`
	Year          int       `json:"tahun"`
	Color         string    `json:"warna"`
	Plate         string    `json:"plat"`
	PurchasePrice int64     `json:"harga_beli"`
	Status        Status    `json:"status"`
	Notes         string    `json:"keterangan"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PurchaseForm carries create/update input.
type PurchaseForm struct {
	Division      string `json:"divisi" validate:"required,oneof=sport start"`
	Date          string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	BrandID       int64  `json:"brand_id" validate:"required,min=1"`
	Model         string `json:"jenis_motor" validate:"required,max=100"`
	Year          int    `json:"tahun" validate:"required,min=1980,max=2035"`
	Color         string `json:"warna" validate:"max=50"`
	Plate         string `json:"plat" validate:"required,max=20"`
	PurchasePrice int64  `json:"harga_beli" validate:"required,min=1"`
	Notes         string `json:"keterangan" validate:"max=500"`
}

// Filters narrows purchase listings.
type Filters struct {
	Division string
	Month    int
	Year     int
	Status   string
	Search   string
	Page     int
	Limit    int
}

var (
	ErrNotFound    = errors.New("pembelian: unit not found")
	ErrAlreadySold = errors.New("pembelian: unit already sold")
	ErrUnitSold    = errors.New("pembelian: sold units cannot be modified")
)
