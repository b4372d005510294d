package purchases

import (
	"context"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

// periodGuard answers whether a date falls into an already-closed month.
type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// Service manages the active pembelian records.
type Service struct {
	repo    Repository
	periods periodGuard
}

// NewService constructs a Service. The period guard may be nil.
func NewService(repo Repository, periods periodGuard) *Service {
	return &Service{repo: repo, periods: periods}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Purchase, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form PurchaseForm) (Purchase, error) {
	p, err := s.fromForm(ctx, form)
	if err != nil {
		return Purchase{}, err
	}
	p.Status = StatusReady
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, form PurchaseForm) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusSold {
		return ErrUnitSold
	}
	p, err := s.fromForm(ctx, form)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusSold {
		return ErrUnitSold
	}
	return s.repo.Delete(ctx, id)
}

// MarkSold claims a ready unit for a sale.
func (s *Service) MarkSold(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusReady, StatusSold)
}

// Release returns a unit to stock after its sale is deleted.
func (s *Service) Release(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusSold, StatusReady)
}

func (s *Service) fromForm(ctx context.Context, form PurchaseForm) (Purchase, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Purchase{}, err
	}
	if s.periods != nil {
		closed, err := s.periods.IsDateClosed(ctx, date)
		if err != nil {
			return Purchase{}, err
		}
		if closed {
			return Purchase{}, shared.ErrPeriodClosed
		}
	}
	return Purchase{
		Division:      form.Division,
		Date:          date,
		BrandID:       form.BrandID,
		Model:         form.Model,
		Year:          form.Year,
		Color:         form.Color,
		Plate:         form.Plate,
		PurchasePrice: form.PurchasePrice,
		Notes:         form.Notes,
	}, nil
}
