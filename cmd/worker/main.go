package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/pandawa-motor/pandawa/internal/app"
	"github.com/pandawa-motor/pandawa/internal/closure"
	"github.com/pandawa-motor/pandawa/internal/installments"
	jobmetrics "github.com/pandawa-motor/pandawa/internal/jobs"
	"github.com/pandawa-motor/pandawa/internal/masterdata/companies"
	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/platform/db"
	"github.com/pandawa-motor/pandawa/internal/shared"
	"github.com/pandawa-motor/pandawa/jobs"
	"github.com/pandawa-motor/pandawa/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)

	closureService := closure.NewService(closure.NewRepository(pool), nil, auditLogger, nil)
	companiesService := companies.NewService(companies.NewRepository(pool))
	modalService := modal.NewService(modal.NewRepository(pool), auditLogger)
	modalHooks := modal.NewHooks(modalService)
	installmentsService := installments.NewService(logger, installments.NewRepository(pool),
		nil, modalHooks, nil)

	metrics := jobmetrics.NewMetrics(nil)

	renderer := report.NewRenderer(report.NewClient(cfg.GotenbergURL))
	reportJob := jobs.NewClosureReportJob(logger, closureService, companiesService, renderer, cfg.ReportStorageDir, metrics)
	overdueJob := jobs.NewOverdueScanJob(logger, installmentsService, metrics)
	integrityJob := jobs.NewModalIntegrityJob(logger, companiesService, modalService, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeClosureReport, Handler: reportJob.Handle},
			{Type: jobs.TaskTypeOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskTypeModalIntegrity, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 0 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: jobs.NewModalIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
