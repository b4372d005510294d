package pembukuan

import (
	"context"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// Service manages manual bookkeeping entries.
type Service struct {
	repo    Repository
	periods periodGuard
}

func NewService(repo Repository, periods periodGuard) *Service {
	return &Service{repo: repo, periods: periods}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Entry, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form EntryForm) (Entry, error) {
	e, err := s.fromForm(ctx, form)
	if err != nil {
		return Entry{}, err
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Update(ctx context.Context, id int64, form EntryForm) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	e, err := s.fromForm(ctx, form)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, e)
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

func (s *Service) fromForm(ctx context.Context, form EntryForm) (Entry, error) {
	if (form.Debit == 0) == (form.Credit == 0) {
		return Entry{}, ErrOneSided
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Entry{}, err
	}
	if err := s.guard(ctx, date); err != nil {
		return Entry{}, err
	}
	return Entry{
		Division: form.Division,
		Date:     date,
		Notes:    form.Notes,
		Debit:    form.Debit,
		Credit:   form.Credit,
	}, nil
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
