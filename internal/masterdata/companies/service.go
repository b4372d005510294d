package companies

import (
	"context"
	"strings"

	"github.com/pandawa-motor/pandawa/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// GetByCode resolves a company by its code. Division codes ("sport",
// "start") double as company codes in this book.
func (s *Service) GetByCode(ctx context.Context, code string) (Company, error) {
	if strings.TrimSpace(code) == "" {
		return Company{}, shared.ErrInvalidID
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, form CompanyForm) (Company, error) {
	company := Company{Code: form.Code, Name: form.Name, Address: form.Address}
	if err := s.validate(company); err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, form CompanyForm) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	company := Company{Code: form.Code, Name: form.Name, Address: form.Address}
	if err := s.validate(company); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, company)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
