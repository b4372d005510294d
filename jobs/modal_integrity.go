package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pandawa-motor/pandawa/internal/jobs"
	"github.com/pandawa-motor/pandawa/internal/masterdata/companies"
	mdshared "github.com/pandawa-motor/pandawa/internal/masterdata/shared"
	"github.com/pandawa-motor/pandawa/internal/modal"
)

// ModalIntegrityJob recomputes each company's modal and profit balances from
// the ledger and reports any drift against the companies columns.
type ModalIntegrityJob struct {
	logger    *slog.Logger
	companies *companies.Service
	modal     *modal.Service
	metrics   *jobmetrics.Metrics
}

// NewModalIntegrityJob constructs the job.
func NewModalIntegrityJob(logger *slog.Logger, companiesSvc *companies.Service, modalSvc *modal.Service, metrics *jobmetrics.Metrics) *ModalIntegrityJob {
	return &ModalIntegrityJob{logger: logger, companies: companiesSvc, modal: modalSvc, metrics: metrics}
}

// Handle processes TaskTypeModalIntegrity tasks. A drift is logged and
// exported as a metric rather than corrected; reconciliation is manual.
func (j *ModalIntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("modal_integrity")

	list, _, err := j.companies.List(ctx, mdshared.ListFilters{Page: 1, Limit: mdshared.MaxLimit})
	if err != nil {
		return tracker.End(fmt.Errorf("list companies: %w", err))
	}

	var firstErr error
	for _, c := range list {
		for _, account := range []modal.Account{modal.AccountModal, modal.AccountProfit} {
			drift, err := j.modal.VerifyBalance(ctx, c.ID, account)
			if err != nil {
				j.logger.Error("verify balance",
					slog.Int64("company_id", c.ID), slog.String("account", string(account)),
					slog.Any("error", err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			j.metrics.SetLedgerDrift(c.ID, string(account), drift)
			if drift != 0 {
				j.logger.Error("modal ledger drift detected",
					slog.Int64("company_id", c.ID), slog.String("account", string(account)),
					slog.Int64("drift", drift))
				if firstErr == nil {
					firstErr = errors.New("jobs: modal ledger drift detected")
				}
			}
		}
	}
	return tracker.End(firstErr)
}
