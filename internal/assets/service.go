package assets

import (
	"context"
	"log/slog"
	"time"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// Service manages company assets. Price revisions move the delta through
// the profit balance via the modal hooks.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	hooks   *modal.Hooks
	periods periodGuard
}

// NewService constructs a Service. Hooks and periods may be nil.
func NewService(logger *slog.Logger, repo Repository, hooks *modal.Hooks, periods periodGuard) *Service {
	return &Service{logger: logger, repo: repo, hooks: hooks, periods: periods}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Asset, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form AssetForm) (Asset, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Asset{}, err
	}
	if err := s.guard(ctx, date); err != nil {
		return Asset{}, err
	}
	return s.repo.Create(ctx, Asset{
		Division:  form.Division,
		Date:      date,
		CompanyID: form.CompanyID,
		Name:      form.Name,
		Price:     form.Price,
		Notes:     form.Notes,
	})
}

// Reprice updates an asset's price and settles the difference against the
// owning company's profit. A failed profit adjustment aborts the revision.
func (s *Service) Reprice(ctx context.Context, id int64, form RepriceForm, actorID int64) (Asset, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Asset{}, err
	}
	if err := s.guard(ctx, existing.Date); err != nil {
		return Asset{}, err
	}
	if form.Price == existing.Price {
		return existing, nil
	}

	err = s.hooks.HandleAssetRepriced(ctx, modal.AssetRepricedEvent{
		CompanyID: existing.CompanyID,
		AssetID:   existing.ID,
		OldPrice:  existing.Price,
		NewPrice:  form.Price,
		ActorID:   actorID,
	})
	if err != nil {
		return Asset{}, err
	}
	if err := s.repo.SetPrice(ctx, id, form.Price, form.Notes); err != nil {
		s.logger.Error("persist asset reprice after profit adjustment",
			slog.Int64("asset_id", id), slog.Any("error", err))
		return Asset{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard(ctx, existing.Date); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) guard(ctx context.Context, date time.Time) error {
	if s.periods == nil {
		return nil
	}
	closed, err := s.periods.IsDateClosed(ctx, date)
	if err != nil {
		return err
	}
	if closed {
		return shared.ErrPeriodClosed
	}
	return nil
}
