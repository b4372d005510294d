package modal

import (
	"errors"
	"time"
)

// Account names the two company balances the ledger posts against.
type Account string

const (
	AccountModal  Account = "modal"
	AccountProfit Account = "profit"
)

// Entry is one signed posting in modal_ledger. Amounts are whole rupiah.
type Entry struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Account   Account   `json:"account"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Ref       string    `json:"ref,omitempty"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Balances mirrors the running balances on the companies row. Each balance
// equals the sum of its ledger entries.
type Balances struct {
	CompanyID int64 `json:"company_id"`
	Modal     int64 `json:"modal"`
	Profit    int64 `json:"profit"`
}

// AdjustInput posts a signed modal adjustment for a company.
type AdjustInput struct {
	CompanyID int64  `json:"company_id" validate:"required,min=1"`
	Amount    int64  `json:"amount" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=255"`
	Ref       string `json:"ref" validate:"max=100"`
	ActorID   int64  `json:"-"`
}

// ProfitInput deducts from or restores to a company's profit balance. The
// amount is always positive; the operation supplies the sign.
type ProfitInput struct {
	CompanyID int64  `json:"company_id" validate:"required,min=1"`
	Amount    int64  `json:"amount" validate:"required,min=1"`
	Reason    string `json:"reason" validate:"required,max=255"`
	Ref       string `json:"ref" validate:"max=100"`
	ActorID   int64  `json:"-"`
}

// AdjustResult returns the posted entry alongside the new balance.
type AdjustResult struct {
	Entry      Entry `json:"entry"`
	NewBalance int64 `json:"new_balance"`
}

// ErrCompanyNotFound is returned when posting against an unknown company.
var ErrCompanyNotFound = errors.New("modal: company not found")

// ErrZeroAmount rejects postings that would not move a balance.
var ErrZeroAmount = errors.New("modal: amount must be non-zero")

// ErrInsufficientProfit rejects a profit deduction that would drive the
// balance negative. Modal itself may go negative (the original books allow
// an overdrawn modal during a heavy purchasing month).
var ErrInsufficientProfit = errors.New("modal: insufficient profit balance")
