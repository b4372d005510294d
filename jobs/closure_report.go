package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/pandawa-motor/pandawa/internal/closure"
	jobmetrics "github.com/pandawa-motor/pandawa/internal/jobs"
	"github.com/pandawa-motor/pandawa/internal/masterdata/companies"
	mdshared "github.com/pandawa-motor/pandawa/internal/masterdata/shared"
	"github.com/pandawa-motor/pandawa/report"
)

// ClosureReportJob renders the month-end summary PDF for a closed period and
// writes it to the report directory.
type ClosureReportJob struct {
	logger    *slog.Logger
	closures  ClosureReader
	companies *companies.Service
	renderer  *report.Renderer
	outDir    string
	metrics   *jobmetrics.Metrics
}

// ClosureReader is the slice of the closure service the report job needs.
type ClosureReader interface {
	Status(ctx context.Context, month, year int) (closure.StatusResult, error)
}

// NewClosureReportJob constructs the job.
func NewClosureReportJob(logger *slog.Logger, closures ClosureReader, companiesSvc *companies.Service, renderer *report.Renderer, outDir string, metrics *jobmetrics.Metrics) *ClosureReportJob {
	return &ClosureReportJob{
		logger:    logger,
		closures:  closures,
		companies: companiesSvc,
		renderer:  renderer,
		outDir:    outDir,
		metrics:   metrics,
	}
}

// Handle processes TaskTypeClosureReport tasks.
func (j *ClosureReportJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("closure_report")

	var payload ClosureReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}

	status, err := j.closures.Status(ctx, payload.Month, payload.Year)
	if err != nil {
		return tracker.End(fmt.Errorf("load closure %d-%d: %w", payload.Month, payload.Year, err))
	}
	if !status.IsClosed || status.Record == nil {
		// The close was restored before the report ran. Nothing to render.
		j.logger.Warn("closure report skipped, period is open",
			slog.Int("month", payload.Month), slog.Int("year", payload.Year))
		return tracker.End(nil)
	}

	summary := report.ClosureSummary{
		Month:    payload.Month,
		Year:     payload.Year,
		ClosedAt: status.Record.ClosedAt,
		Notes:    status.Record.Notes,
		Counts:   status.Record.Moved,
	}

	if j.companies != nil {
		list, _, err := j.companies.List(ctx, mdshared.ListFilters{Page: 1, Limit: mdshared.MaxLimit})
		if err != nil {
			return tracker.End(fmt.Errorf("list companies: %w", err))
		}
		for _, c := range list {
			summary.Companies = append(summary.Companies, report.CompanyBalance{
				Name:   c.Name,
				Modal:  c.Modal,
				Profit: c.Profit,
			})
		}
	}

	pdf, err := j.renderer.RenderClosure(ctx, summary)
	if err != nil {
		return tracker.End(fmt.Errorf("render closure pdf: %w", err))
	}

	name := fmt.Sprintf("laporan-tutup-buku-%04d-%02d.pdf", payload.Year, payload.Month)
	path := filepath.Join(j.outDir, name)
	if err := os.MkdirAll(j.outDir, 0o755); err != nil {
		return tracker.End(err)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return tracker.End(fmt.Errorf("write closure pdf: %w", err))
	}

	j.logger.Info("closure report written",
		slog.Int("month", payload.Month), slog.Int("year", payload.Year),
		slog.String("path", path), slog.Int("bytes", len(pdf)))
	return tracker.End(nil)
}
