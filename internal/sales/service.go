package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// unitStock claims and releases pembelian units.
type unitStock interface {
	MarkSold(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
}

// PlanInput describes the installment plan a credit sale opens.
type PlanInput struct {
	SaleID      int64
	Division    string
	Total       int64
	TenorMonths int
	StartDate   time.Time
}

// planOpener creates installment plans for credit sales.
type planOpener interface {
	OpenPlan(ctx context.Context, in PlanInput) error
}

// Service manages the active penjualan records.
type Service struct {
	repo    Repository
	stock   unitStock
	plans   planOpener
	periods periodGuard
}

// NewService constructs a Service. Stock is required; plans and periods may
// be nil (cash-only setups, tests).
func NewService(repo Repository, stock unitStock, plans planOpener, periods periodGuard) *Service {
	return &Service{repo: repo, stock: stock, plans: plans, periods: periods}
}

// BindPlans wires the installment opener after both services exist. The
// installment service completes sales on final payment, so the two are
// constructed before either can reference the other.
func (s *Service) BindPlans(plans planOpener) {
	s.plans = plans
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Sale, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// Create books a sale. The referenced unit is claimed first; a cash sale is
// immediately sold, a credit sale stays booked and opens an installment plan
// over the remaining amount.
func (s *Service) Create(ctx context.Context, form SaleForm) (Sale, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Sale{}, err
	}
	if s.periods != nil {
		closed, err := s.periods.IsDateClosed(ctx, date)
		if err != nil {
			return Sale{}, err
		}
		if closed {
			return Sale{}, shared.ErrPeriodClosed
		}
	}
	if form.DownPayment > form.Price {
		return Sale{}, ErrDownPayment
	}
	paymentType := PaymentType(form.PaymentType)
	if paymentType == PaymentCredit && form.TenorMonths <= 0 {
		return Sale{}, ErrTenorRequired
	}

	if err := s.stock.MarkSold(ctx, form.PurchaseID); err != nil {
		return Sale{}, err
	}

	sale := Sale{
		Division:    form.Division,
		Date:        date,
		PurchaseID:  form.PurchaseID,
		Buyer:       form.Buyer,
		PaymentType: paymentType,
		Price:       form.Price,
		DownPayment: form.DownPayment,
		Status:      StatusSold,
		Notes:       form.Notes,
	}
	if paymentType == PaymentCredit {
		sale.Status = StatusBooked
	}

	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		// Return the claimed unit to stock; the sale row was never written.
		_ = s.stock.Release(ctx, form.PurchaseID)
		return Sale{}, err
	}

	if paymentType == PaymentCredit && s.plans != nil {
		err := s.plans.OpenPlan(ctx, PlanInput{
			SaleID:      created.ID,
			Division:    created.Division,
			Total:       created.Price - created.DownPayment,
			TenorMonths: form.TenorMonths,
			StartDate:   date,
		})
		if err != nil {
			_ = s.repo.Delete(ctx, created.ID)
			_ = s.stock.Release(ctx, form.PurchaseID)
			return Sale{}, fmt.Errorf("open installment plan: %w", err)
		}
	}
	return created, nil
}

// Complete marks a booked credit sale as sold. Invoked when its installment
// plan finishes.
func (s *Service) Complete(ctx context.Context, id int64) error {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if sale.Status == StatusSold {
		return ErrAlreadySold
	}
	return s.repo.SetStatus(ctx, id, StatusSold)
}

// Delete removes a sale and returns its unit to stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.periods != nil {
		closed, err := s.periods.IsDateClosed(ctx, sale.Date)
		if err != nil {
			return err
		}
		if closed {
			return shared.ErrPeriodClosed
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.stock.Release(ctx, sale.PurchaseID)
}
