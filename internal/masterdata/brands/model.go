package brands

import (
	"time"
)

// Brand represents a motorcycle brand master.
type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandForm represents the form data for creating/updating a brand.
type BrandForm struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
