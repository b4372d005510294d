package operational

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type periodGuard interface {
	IsDateClosed(ctx context.Context, t time.Time) (bool, error)
}

// Service manages operational expenses. Posting an expense debits the
// owning company's modal; deleting one credits the amount back.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	hooks   *modal.Hooks
	poster  modal.Poster
	periods periodGuard
}

// NewService constructs a Service. Hooks, poster, and periods may be nil.
func NewService(logger *slog.Logger, repo Repository, hooks *modal.Hooks, poster modal.Poster, periods periodGuard) *Service {
	return &Service{logger: logger, repo: repo, hooks: hooks, poster: poster, periods: periods}
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Expense, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

// Create posts an expense and debits modal through the ledger hooks.
func (s *Service) Create(ctx context.Context, form ExpenseForm, actorID int64) (Expense, error) {
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return Expense{}, err
	}
	if err := s.guard(ctx, date); err != nil {
		return Expense{}, err
	}

	created, err := s.repo.Create(ctx, Expense{
		Division:  form.Division,
		Date:      date,
		CompanyID: form.CompanyID,
		Category:  form.Category,
		Amount:    form.Amount,
		Notes:     form.Notes,
	})
	if err != nil {
		return Expense{}, err
	}

	err = s.hooks.HandleExpensePosted(ctx, modal.ExpensePostedEvent{
		CompanyID: created.CompanyID,
		ExpenseID: created.ID,
		Amount:    created.Amount,
		Category:  created.Category,
		ActorID:   actorID,
	})
	if err != nil {
		s.logger.Error("post expense to modal",
			slog.Int64("operational_id", created.ID), slog.Any("error", err))
	}
	return created, nil
}

// Delete removes an expense and credits its amount back to modal.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard(ctx, existing.Date); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.poster != nil {
		_, err := s.poster.Adjust(ctx, modal.AdjustInput{
			CompanyID: existing.CompanyID,
			Amount:    existing.Amount,
			Reason:    fmt.Sprintf("pembatalan biaya operasional %s", existing.Category),
			Ref:       fmt.Sprintf("operational:%d", existing.ID),
			ActorID:   actorID,
		})
		if err != nil {
			s.logger.Error("reverse expense in modal",
				slog.Int64("operational_id", existing.ID), slog.Any("error", err))
		}
	}
	return nil
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
