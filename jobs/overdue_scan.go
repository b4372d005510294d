package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pandawa-motor/pandawa/internal/installments"
	jobmetrics "github.com/pandawa-motor/pandawa/internal/jobs"
)

// OverdueScanJob runs the nightly sweep that flags installment plans whose
// due date has passed.
type OverdueScanJob struct {
	logger  *slog.Logger
	plans   *installments.Service
	metrics *jobmetrics.Metrics
}

// NewOverdueScanJob constructs the job.
func NewOverdueScanJob(logger *slog.Logger, plans *installments.Service, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{logger: logger, plans: plans, metrics: metrics}
}

// Handle processes TaskTypeOverdueScan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("overdue_scan")

	count, err := j.plans.SweepOverdue(ctx)
	if err != nil {
		j.logger.Error("overdue sweep failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddOverdue(count)
	if count > 0 {
		j.logger.Info("installment plans marked overdue", slog.Int64("count", count))
	}
	return tracker.End(nil)
}
