package brands

import (
	"context"
	"errors"
	"strings"

	"github.com/pandawa-motor/pandawa/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Brand, error) {
	if id <= 0 {
		return Brand{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form BrandForm) (Brand, error) {
	if strings.TrimSpace(form.Name) == "" {
		return Brand{}, errors.New("brand name is required")
	}
	return s.repo.Create(ctx, Brand{Name: form.Name, Country: form.Country})
}

func (s *Service) Update(ctx context.Context, id int64, form BrandForm) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(form.Name) == "" {
		return errors.New("brand name is required")
	}
	return s.repo.Update(ctx, id, Brand{Name: form.Name, Country: form.Country})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
