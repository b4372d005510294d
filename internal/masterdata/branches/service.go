package branches

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form BranchForm) (Branch, error) {
	branch := Branch{CompanyID: form.CompanyID, Name: form.Name, Address: form.Address, Phone: form.Phone}
	if err := validate(branch); err != nil {
		return Branch{}, err
	}
	return s.repo.Create(ctx, branch)
}

func (s *Service) Update(ctx context.Context, id int64, form BranchForm) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	branch := Branch{CompanyID: form.CompanyID, Name: form.Name, Address: form.Address, Phone: form.Phone}
	if err := validate(branch); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, branch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func validate(b Branch) error {
	if b.CompanyID <= 0 {
		return errors.New("branch company is required")
	}
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("branch name is required")
	}
	return nil
}
