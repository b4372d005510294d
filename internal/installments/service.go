package installments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/sales"
)

// saleCompleter marks the credit sale sold once its plan finishes.
type saleCompleter interface {
	Complete(ctx context.Context, id int64) error
}

// companyResolver maps a division onto the company whose modal the payment
// credits.
type companyResolver interface {
	CompanyIDForDivision(ctx context.Context, division string) (int64, error)
}

// Service manages cicilan plans and their collections.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	sales     saleCompleter
	hooks     *modal.Hooks
	companies companyResolver
	now       func() time.Time
}

// NewService constructs a Service. Sales, hooks, and companies may be nil.
func NewService(logger *slog.Logger, repo Repository, salesSvc saleCompleter, hooks *modal.Hooks, companies companyResolver) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		sales:     salesSvc,
		hooks:     hooks,
		companies: companies,
		now:       time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Installment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Installment, error) {
	return s.repo.Get(ctx, id)
}

// OpenPlan creates the cicilan row for a credit sale. The first due date is
// one month after the sale date.
func (s *Service) OpenPlan(ctx context.Context, in sales.PlanInput) error {
	if in.Total <= 0 {
		return fmt.Errorf("cicilan: plan total must be positive, got %d", in.Total)
	}
	_, err := s.repo.Create(ctx, Installment{
		Division: in.Division,
		Date:     in.StartDate,
		SaleID:   in.SaleID,
		Total:    in.Total,
		Paid:     0,
		DueDate:  in.StartDate.AddDate(0, 1, 0),
		Status:   StatusActive,
		Notes:    fmt.Sprintf("tenor %d bulan", in.TenorMonths),
	})
	return err
}

// RecordPayment applies one collection. The final payment completes the plan
// and marks its sale sold; every payment credits the division company's
// modal through the ledger hooks.
func (s *Service) RecordPayment(ctx context.Context, id int64, form PaymentForm, actorID int64) (Installment, error) {
	plan, err := s.repo.Get(ctx, id)
	if err != nil {
		return Installment{}, err
	}
	if plan.Status == StatusCompleted {
		return Installment{}, ErrCompleted
	}
	if form.Amount > plan.Remaining() {
		return Installment{}, ErrOverpay
	}

	updated, err := s.repo.ApplyPayment(ctx, id, form.Amount, plan.DueDate.AddDate(0, 1, 0))
	if err != nil {
		return Installment{}, err
	}

	if updated.Remaining() == 0 {
		if err := s.repo.SetStatus(ctx, id, StatusCompleted); err != nil {
			return Installment{}, err
		}
		updated.Status = StatusCompleted
		if s.sales != nil {
			if err := s.sales.Complete(ctx, updated.SaleID); err != nil {
				s.logger.Error("complete sale after final payment",
					slog.Int64("penjualan_id", updated.SaleID), slog.Any("error", err))
			}
		}
	}

	s.postModal(ctx, updated, form.Amount, actorID)
	return updated, nil
}

// SweepOverdue flags active plans past their due date. Run by the nightly
// cron.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdue(ctx, s.now())
}

func (s *Service) postModal(ctx context.Context, plan Installment, amount, actorID int64) {
	if s.hooks == nil || s.companies == nil {
		return
	}
	companyID, err := s.companies.CompanyIDForDivision(ctx, plan.Division)
	if err != nil {
		s.logger.Error("resolve company for division",
			slog.String("divisi", plan.Division), slog.Any("error", err))
		return
	}
	err = s.hooks.HandleInstallmentPaid(ctx, modal.InstallmentPaidEvent{
		CompanyID:     companyID,
		InstallmentID: plan.ID,
		Amount:        amount,
		Division:      plan.Division,
		PaidAt:        s.now(),
		ActorID:       actorID,
	})
	if err != nil {
		s.logger.Error("post installment payment to modal",
			slog.Int64("cicilan_id", plan.ID), slog.Any("error", err))
	}
}
