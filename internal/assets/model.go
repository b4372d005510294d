package assets

import (
	"errors"
	"time"
)

// Asset is one company asset record. JSON field names follow the assets
// table columns.
type Asset struct {
	ID        int64     `json:"id"`
	Division  string    `json:"divisi"`
	Date      time.Time `json:"tanggal"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"nama"`
	Price     int64     `json:"harga"`
	Notes     string    `json:"keterangan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetForm carries create input.
type AssetForm struct {
	Division  string `json:"divisi" validate:"required,oneof=sport start"`
	Date      string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	CompanyID int64  `json:"company_id" validate:"required,min=1"`
	Name      string `json:"nama" validate:"required,max=100"`
	Price     int64  `json:"harga" validate:"required,min=1"`
	Notes     string `json:"keterangan" validate:"max=500"`
}

// RepriceForm revises an asset's recorded price.
type RepriceForm struct {
	Price int64  `json:"harga" validate:"required,min=1"`
	Notes string `json:"keterangan" validate:"max=255"`
}

// Filters narrows asset listings.
type Filters struct {
	Division  string
	Month     int
	Year      int
	CompanyID int64
	Search    string
	Page      int
	Limit     int
}

var ErrNotFound = errors.New("assets: asset not found")
