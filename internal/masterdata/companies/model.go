package companies

import (
	"time"
)

// Company represents a dealership company entity. Modal and Profit are the
// running balances maintained by the modal ledger; CRUD never writes them.
type Company struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Modal     int64     `json:"modal"`
	Profit    int64     `json:"profit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
