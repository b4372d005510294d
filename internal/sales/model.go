package sales

import (
	"errors"
	"time"
)

// Status of a sale. Credit sales stay booked until their installment plan
// completes; cash sales are sold immediately.
type Status string

const (
	StatusBooked Status = "booked"
	StatusSold   Status = "sold"
)

// PaymentType is the jenis_pembayaran column.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCredit PaymentType = "credit"
)

// Sale is one unit sale. JSON field names follow the penjualan table columns.
type Sale struct {
	ID          int64       `json:"id"`
	Division    string      `json:"divisi"`
	Date        time.Time   `json:"tanggal"`
	PurchaseID  int64       `json:"pembelian_id"`
	Buyer       string      `json:"pembeli"`
	PaymentType PaymentType `json:"jenis_pembayaran"`
	Price       int64       `json:"harga_jual"`
	DownPayment int64       `json:"dp"`
	Status      Status      `json:"status"`
	Notes       string      `json:"keterangan"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SaleForm carries create input.
type SaleForm struct {
	Division    string `json:"divisi" validate:"required,oneof=sport start"`
	Date        string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	PurchaseID  int64  `json:"pembelian_id" validate:"required,min=1"`
	Buyer       string `json:"pembeli" validate:"required,max=100"`
	PaymentType string `json:"jenis_pembayaran" validate:"required,oneof=cash credit"`
	Price       int64  `json:"harga_jual" validate:"required,min=1"`
	DownPayment int64  `json:"dp" validate:"min=0"`
	Notes       string `json:"keterangan" validate:"max=500"`
	TenorMonths int    `json:"tenor_bulan" validate:"min=0,max=60"`
}

// Filters narrows sale listings.
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
	ErrNotFound       = errors.New("penjualan: sale not found")
	ErrDownPayment    = errors.New("penjualan: down payment exceeds price")
	ErrTenorRequired  = errors.New("penjualan: credit sale requires a tenor")
	ErrAlreadySold    = errors.New("penjualan: sale already completed")
)
