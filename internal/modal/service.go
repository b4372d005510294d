package modal

import (
	"context"
	"fmt"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type auditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service posts company balance adjustments through the modal ledger.
type Service struct {
	repo  Repository
	audit auditRecorder
	now   func() time.Time
}

// NewService constructs a Service. Audit may be nil.
func NewService(repo Repository, audit auditRecorder) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Adjust posts a signed amount against a company's modal balance. The ledger
// entry and the balance update commit in one transaction, so
// companies.modal always equals the sum of its entries.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (AdjustResult, error) {
	if in.Amount == 0 {
		return AdjustResult{}, ErrZeroAmount
	}
	result, err := s.post(ctx, AccountModal, in.CompanyID, in.Amount, in.Reason, in.Ref, in.ActorID, nil)
	if err != nil {
		return AdjustResult{}, err
	}
	s.recordAudit(ctx, in.ActorID, "modal.adjust", in.CompanyID, result)
	return result, nil
}

// DeductProfit subtracts a positive amount from a company's profit balance.
// Deductions past zero are rejected.
func (s *Service) DeductProfit(ctx context.Context, in ProfitInput) (AdjustResult, error) {
	if in.Amount <= 0 {
		return AdjustResult{}, ErrZeroAmount
	}
	guard := func(newBalance int64) error {
		if newBalance < 0 {
			return ErrInsufficientProfit
		}
		return nil
	}
	result, err := s.post(ctx, AccountProfit, in.CompanyID, -in.Amount, in.Reason, in.Ref, in.ActorID, guard)
	if err != nil {
		return AdjustResult{}, err
	}
	s.recordAudit(ctx, in.ActorID, "modal.deduct_profit", in.CompanyID, result)
	return result, nil
}

// RestoreProfit adds a positive amount back to a company's profit balance,
// undoing an earlier deduction.
func (s *Service) RestoreProfit(ctx context.Context, in ProfitInput) (AdjustResult, error) {
	if in.Amount <= 0 {
		return AdjustResult{}, ErrZeroAmount
	}
	result, err := s.post(ctx, AccountProfit, in.CompanyID, in.Amount, in.Reason, in.Ref, in.ActorID, nil)
	if err != nil {
		return AdjustResult{}, err
	}
	s.recordAudit(ctx, in.ActorID, "modal.restore_profit", in.CompanyID, result)
	return result, nil
}

// CompanyBalances reads the current balances.
func (s *Service) CompanyBalances(ctx context.Context, companyID int64) (Balances, error) {
	return s.repo.Balances(ctx, companyID)
}

// Ledger lists a company's posting history, newest first.
func (s *Service) Ledger(ctx context.Context, companyID int64, limit, offset int) ([]Entry, error) {
	return s.repo.ListEntries(ctx, companyID, limit, offset)
}

// VerifyBalance recomputes a balance from the ledger and reports the drift
// against the companies column. Zero drift is the invariant.
func (s *Service) VerifyBalance(ctx context.Context, companyID int64, account Account) (int64, error) {
	balances, err := s.repo.Balances(ctx, companyID)
	if err != nil {
		return 0, err
	}
	sum, err := s.repo.SumLedger(ctx, companyID, account)
	if err != nil {
		return 0, err
	}
	switch account {
	case AccountProfit:
		return balances.Profit - sum, nil
	default:
		return balances.Modal - sum, nil
	}
}

func (s *Service) post(ctx context.Context, account Account, companyID, amount int64, reason, ref string, actorID int64, guard func(int64) error) (AdjustResult, error) {
	var result AdjustResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		entry := Entry{
			CompanyID: companyID,
			Account:   account,
			Amount:    amount,
			Reason:    reason,
			Ref:       ref,
		}
		if actorID != 0 {
			actor := actorID
			entry.ActorID = &actor
		}
		posted, err := repo.AppendEntry(ctx, entry)
		if err != nil {
			return err
		}
		balance, err := repo.AddToBalance(ctx, companyID, account, amount)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(balance); err != nil {
				return err
			}
		}
		result = AdjustResult{Entry: posted, NewBalance: balance}
		return nil
	})
	if err != nil {
		return AdjustResult{}, err
	}
	return result, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, companyID int64, result AdjustResult) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "company",
		EntityID: fmt.Sprintf("%d", companyID),
		Meta: map[string]any{
			"amount":      result.Entry.Amount,
			"reason":      result.Entry.Reason,
			"ref":         result.Entry.Ref,
			"new_balance": result.NewBalance,
		},
		At: s.now(),
	})
}
