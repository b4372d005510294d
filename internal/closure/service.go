package closure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

// Locker serialises close/restore runs per period. Advisory only; the
// monthly_closures unique index remains the enforcement point.
type Locker interface {
	Acquire(ctx context.Context, month, year int) (func(context.Context), error)
}

// ReportEnqueuer schedules the closure summary report after a close commits.
type ReportEnqueuer interface {
	EnqueueClosureReport(ctx context.Context, month, year int) error
}

type auditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the month-end close/restore workflow.
type Service struct {
	repo    Repository
	locks   Locker
	audit   auditRecorder
	reports ReportEnqueuer
	now     func() time.Time
}

// NewService constructs a Service. Locks, audit, and reports may be nil; the
// corresponding side effects are then skipped.
func NewService(repo Repository, locks Locker, audit auditRecorder, reports ReportEnqueuer) *Service {
	return &Service{
		repo:    repo,
		locks:   locks,
		audit:   audit,
		reports: reports,
		now:     time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Status performs the closure-existence read for a period. No side effects;
// the caller treats the answer as advisory.
func (s *Service) Status(ctx context.Context, month, year int) (StatusResult, error) {
	period, err := shared.NewPeriod(month, year)
	if err != nil {
		return StatusResult{}, err
	}
	rec, err := s.repo.FindRecord(ctx, period)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{Month: month, Year: year, IsClosed: rec != nil, Record: rec}, nil
}

// IsDateClosed reports whether the period containing t has been closed.
// Dates outside the supported year range count as open.
func (s *Service) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	period, err := shared.NewPeriod(int(t.Month()), t.Year())
	if err != nil {
		return false, nil
	}
	rec, err := s.repo.FindRecord(ctx, period)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// List returns closure history.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.repo.ListRecords(ctx, limit, offset)
}

// Preview counts the rows a close of the period would move. The per-kind
// counts are independent queries dispatched concurrently; any failure aborts
// the whole preview and partial results are discarded.
func (s *Service) Preview(ctx context.Context, month, year int, division string) (PreviewResult, error) {
	period, err := shared.NewPeriod(month, year)
	if err != nil {
		return PreviewResult{}, err
	}
	div, err := shared.ParseDivision(division, true)
	if err != nil {
		return PreviewResult{}, err
	}

	results := make([]int64, len(Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			n, err := s.repo.CountEligible(gctx, kind, period, div)
			if err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PreviewResult{}, err
	}

	var counts RecordCounts
	for i, kind := range Kinds {
		counts.Set(kind, results[i])
	}
	return PreviewResult{
		Month:         month,
		Year:          year,
		Division:      div,
		Counts:        counts,
		NothingToMove: counts.PrimaryTotal() == 0,
	}, nil
}

// CloseMonth finalises a period: every eligible row across the eight kinds is
// relocated to its history table and exactly one closure record is written,
// all inside one serializable transaction. Closing an already-closed period
// fails with ErrAlreadyClosed.
func (s *Service) CloseMonth(ctx context.Context, in CloseInput) (CloseResult, error) {
	period, err := shared.NewPeriod(in.Month, in.Year)
	if err != nil {
		return CloseResult{}, err
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, in.Month, in.Year)
		if err != nil {
			return CloseResult{}, err
		}
		defer release(ctx)
	}

	closedAt := s.now().UTC()
	var moved RecordCounts
	err = s.repo.WithMoveTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.FindRecord(ctx, period)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyClosed
		}
		for _, kind := range Kinds {
			n, err := repo.MoveToHistory(ctx, kind, period, closedAt)
			if err != nil {
				return fmt.Errorf("move %s: %w", kind, err)
			}
			moved.Set(kind, n)
		}
		rec := Record{
			Month:    period.Month,
			Year:     period.Year,
			ClosedAt: closedAt,
			Notes:    in.Notes,
			Moved:    moved,
		}
		if in.ActorID != 0 {
			actor := in.ActorID
			rec.CreatedBy = &actor
		}
		_, err = repo.InsertRecord(ctx, rec)
		return err
	})
	if err != nil {
		return CloseResult{}, err
	}

	s.recordAudit(ctx, in.ActorID, "closure.close", period, map[string]any{
		"records_moved": moved,
		"notes":         in.Notes,
	})
	if s.reports != nil {
		if err := s.reports.EnqueueClosureReport(ctx, period.Month, period.Year); err != nil {
			// The close has committed; a missing report is recoverable.
			s.recordAudit(ctx, in.ActorID, "closure.report_enqueue_failed", period, map[string]any{"error": err.Error()})
		}
	}

	return CloseResult{Month: period.Month, Year: period.Year, RecordsMoved: moved}, nil
}

// RestoreMonth is the inverse of CloseMonth for one division: tagged history
// rows move back to the active tables inside one serializable transaction.
// The closure record is deleted only once no history row carries the period
// tag anymore, so the other division's archived rows always match a record.
func (s *Service) RestoreMonth(ctx context.Context, in RestoreInput) (RestoreResult, error) {
	period, err := shared.NewPeriod(in.Month, in.Year)
	if err != nil {
		return RestoreResult{}, err
	}
	if in.Division == "" {
		return RestoreResult{}, ErrDivisionRequired
	}
	div, err := shared.ParseDivision(in.Division, false)
	if err != nil {
		return RestoreResult{}, err
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, in.Month, in.Year)
		if err != nil {
			return RestoreResult{}, err
		}
		defer release(ctx)
	}

	var restored RecordCounts
	err = s.repo.WithMoveTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.FindRecord(ctx, period)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotClosed
		}
		for _, kind := range Kinds {
			n, err := repo.RestoreFromHistory(ctx, kind, period, div)
			if err != nil {
				return fmt.Errorf("restore %s: %w", kind, err)
			}
			restored.Set(kind, n)
		}
		var remaining int64
		for _, kind := range Kinds {
			n, err := repo.CountHistory(ctx, kind, period)
			if err != nil {
				return fmt.Errorf("count history %s: %w", kind, err)
			}
			remaining += n
		}
		if remaining > 0 {
			return nil
		}
		_, err = repo.DeleteRecord(ctx, period)
		return err
	})
	if err != nil {
		return RestoreResult{}, err
	}

	s.recordAudit(ctx, in.ActorID, "closure.restore", period, map[string]any{
		"division":         string(div),
		"records_restored": restored,
	})

	return RestoreResult{Month: period.Month, Year: period.Year, Division: string(div), RecordsRestored: restored}, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, period shared.Period, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "monthly_closure",
		EntityID: period.String(),
		Meta:     meta,
		At:       s.now(),
	})
}

// ParseActor converts the session user id into an actor id, tolerating
// anonymous sessions.
func ParseActor(raw string) int64 {
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}
