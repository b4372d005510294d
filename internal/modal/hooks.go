package modal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Poster is the slice of Service the hooks need.
type Poster interface {
	Adjust(ctx context.Context, in AdjustInput) (AdjustResult, error)
	DeductProfit(ctx context.Context, in ProfitInput) (AdjustResult, error)
	RestoreProfit(ctx context.Context, in ProfitInput) (AdjustResult, error)
}

// InstallmentPaidEvent is emitted when an installment payment is recorded.
type InstallmentPaidEvent struct {
	CompanyID     int64
	InstallmentID int64
	Amount        int64
	Division      string
	PaidAt        time.Time
	ActorID       int64
}

// ExpensePostedEvent is emitted when an operational expense is posted.
type ExpensePostedEvent struct {
	CompanyID int64
	ExpenseID int64
	Amount    int64
	Category  string
	ActorID   int64
}

// AssetRepricedEvent is emitted when an asset's recorded price changes.
type AssetRepricedEvent struct {
	CompanyID int64
	AssetID   int64
	OldPrice  int64
	NewPrice  int64
	ActorID   int64
}

// Hooks wires domain events from the operational modules into the modal
// ledger. A nil Hooks is a no-op so modules can run without the ledger in
// tests. Month-end closing never posts through here.
type Hooks struct {
	poster Poster
}

// NewHooks constructs hooks around a posting service.
func NewHooks(poster Poster) *Hooks {
	return &Hooks{poster: poster}
}

// HandleInstallmentPaid credits modal with the collected payment.
func (h *Hooks) HandleInstallmentPaid(ctx context.Context, evt InstallmentPaidEvent) error {
	if h == nil || h.poster == nil {
		return nil
	}
	if evt.Amount <= 0 {
		return errors.New("modal: installment payment amount required")
	}
	_, err := h.poster.Adjust(ctx, AdjustInput{
		CompanyID: evt.CompanyID,
		Amount:    evt.Amount,
		Reason:    fmt.Sprintf("pembayaran cicilan %s", evt.Division),
		Ref:       fmt.Sprintf("cicilan:%d", evt.InstallmentID),
		ActorID:   evt.ActorID,
	})
	return err
}

// HandleExpensePosted debits modal with the expense amount.
func (h *Hooks) HandleExpensePosted(ctx context.Context, evt ExpensePostedEvent) error {
	if h == nil || h.poster == nil {
		return nil
	}
	if evt.Amount <= 0 {
		return errors.New("modal: expense amount required")
	}
	_, err := h.poster.Adjust(ctx, AdjustInput{
		CompanyID: evt.CompanyID,
		Amount:    -evt.Amount,
		Reason:    fmt.Sprintf("biaya operasional %s", evt.Category),
		Ref:       fmt.Sprintf("operational:%d", evt.ExpenseID),
		ActorID:   evt.ActorID,
	})
	return err
}

// HandleAssetRepriced moves the price delta through the profit balance: a
// price increase deducts profit, a decrease restores it.
func (h *Hooks) HandleAssetRepriced(ctx context.Context, evt AssetRepricedEvent) error {
	if h == nil || h.poster == nil {
		return nil
	}
	delta := evt.NewPrice - evt.OldPrice
	if delta == 0 {
		return nil
	}
	in := ProfitInput{
		CompanyID: evt.CompanyID,
		Ref:       fmt.Sprintf("asset:%d", evt.AssetID),
		ActorID:   evt.ActorID,
	}
	if delta > 0 {
		in.Amount = delta
		in.Reason = "revisi harga aset naik"
		_, err := h.poster.DeductProfit(ctx, in)
		return err
	}
	in.Amount = -delta
	in.Reason = "revisi harga aset turun"
	_, err := h.poster.RestoreProfit(ctx, in)
	return err
}
