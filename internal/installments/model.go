package installments

import (
	"errors"
	"time"
)

// Status of an installment plan. Overdue plans are still payable; the cron
// sweep only flags them.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Installment is one credit plan. JSON field names follow the cicilan table
// columns: total_tagihan is the financed amount, terbayar the running sum of
// payments, jatuh_tempo the next due date.
type Installment struct {
	ID        int64     `json:"id"`
	Division  string    `json:"divisi"`
	Date      time.Time `json:"tanggal"`
	SaleID    int64     `json:"penjualan_id"`
	Total     int64     `json:"total_tagihan"`
	Paid      int64     `json:"terbayar"`
	DueDate   time.Time `json:"jatuh_tempo"`
	Status    Status    `json:"status"`
	Notes     string    `json:"keterangan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining returns the unpaid balance.
func (i Installment) Remaining() int64 {
	return i.Total - i.Paid
}

// PaymentForm records one collection against a plan.
type PaymentForm struct {
	Amount int64  `json:"amount" validate:"required,min=1"`
	Notes  string `json:"notes" validate:"max=255"`
}

// Filters narrows installment listings.
type Filters struct {
	Division string
	Month    int
	Year     int
	Status   string
	SaleID   int64
	Page     int
	Limit    int
}

var (
	ErrNotFound  = errors.New("cicilan: plan not found")
	ErrCompleted = errors.New("cicilan: plan already completed")
	ErrOverpay   = errors.New("cicilan: payment exceeds remaining balance")
)
