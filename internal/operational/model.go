package operational

import (
	"errors"
	"time"
)

// Expense is one operational cost entry. JSON field names follow the
// operational table columns.
type Expense struct {
	ID        int64     `json:"id"`
	Division  string    `json:"divisi"`
	Date      time.Time `json:"tanggal"`
	CompanyID int64     `json:"company_id"`
	Category  string    `json:"kategori"`
	Amount    int64     `json:"jumlah"`
	Notes     string    `json:"keterangan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpenseForm carries create/update input.
type ExpenseForm struct {
	Division  string `json:"divisi" validate:"required,oneof=sport start"`
	Date      string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	CompanyID int64  `json:"company_id" validate:"required,min=1"`
	Category  string `json:"kategori" validate:"required,max=50"`
	Amount    int64  `json:"jumlah" validate:"required,min=1"`
	Notes     string `json:"keterangan" validate:"max=500"`
}

// Filters narrows expense listings.
type Filters struct {
	Division  string
	Month     int
	Year      int
	CompanyID int64
	Category  string
	Page      int
	Limit     int
}

var ErrNotFound = errors.New("operational: expense not found")
