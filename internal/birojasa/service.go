package birojasa

import (
	"context"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// Service manages biro jasa brokerage jobs.
type Service struct {
	repo    Repository
	periods periodGuard
}

func NewService(repo Repository, periods periodGuard) *Service {
	return &Service{repo: repo, periods: periods}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Job, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form JobForm) (Job, error) {
	j, err := s.fromForm(ctx, form)
	if err != nil {
		return Job{}, err
	}
	j.Status = StatusProses
	return s.repo.Create(ctx, j)
}

func (s *Service) Update(ctx context.Context, id int64, form JobForm) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	j, err := s.fromForm(ctx, form)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, j)
}

// UpdateStatus transitions a job. Only selesai jobs become eligible for the
// month-end close.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (Job, error) {
	status, err := NormalizeStatus(raw)
	if err != nil {
		return Job{}, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Job{}, err
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return Job{}, err
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

func (s *Service) fromForm(ctx context.Context, form JobForm) (Job, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Job{}, err
	}
	if err := s.guard(ctx, date); err != nil {
		return Job{}, err
	}
	j := Job{
		Division:    form.Division,
		Date:        date,
		ServiceType: form.ServiceType,
		Plate:       form.Plate,
		Cost:        form.Cost,
		Notes:       form.Notes,
	}
	if form.EstimatedDone != "" {
		estimated, err := time.Parse("2006-01-02", form.EstimatedDone)
		if err != nil {
			return Job{}, err
		}
		j.EstimatedDone = estimated
	}
	return j, nil
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
