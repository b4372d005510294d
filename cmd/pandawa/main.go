package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pandawa-motor/pandawa/internal/app"
	"github.com/pandawa-motor/pandawa/internal/assets"
	"github.com/pandawa-motor/pandawa/internal/birojasa"
	"github.com/pandawa-motor/pandawa/internal/closure"
	closurehttp "github.com/pandawa-motor/pandawa/internal/closure/http"
	"github.com/pandawa-motor/pandawa/internal/fees"
	"github.com/pandawa-motor/pandawa/internal/installments"
	"github.com/pandawa-motor/pandawa/internal/masterdata/branches"
	"github.com/pandawa-motor/pandawa/internal/masterdata/brands"
	"github.com/pandawa-motor/pandawa/internal/masterdata/companies"
	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/observability"
	"github.com/pandawa-motor/pandawa/internal/operational"
	"github.com/pandawa-motor/pandawa/internal/pembukuan"
	"github.com/pandawa-motor/pandawa/internal/platform/cache"
	"github.com/pandawa-motor/pandawa/internal/platform/db"
	"github.com/pandawa-motor/pandawa/internal/purchases"
	"github.com/pandawa-motor/pandawa/internal/sales"
	"github.com/pandawa-motor/pandawa/internal/shared"
	"github.com/pandawa-motor/pandawa/jobs"
)

// divisionCompanies resolves a division code onto its company row. Division
// codes double as company codes in this book.
type divisionCompanies struct {
	companies *companies.Service
}

func (d divisionCompanies) CompanyIDForDivision(ctx context.Context, division string) (int64, error) {
	c, err := d.companies.GetByCode(ctx, division)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "pandawa_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	periodLock := shared.NewPeriodLock(redisClient, cfg.ClosureLockTTL)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	closureService := closure.NewService(closure.NewRepository(dbpool), periodLock, auditLogger, jobClient)

	companiesService := companies.NewService(companies.NewRepository(dbpool))
	brandsService := brands.NewService(brands.NewRepository(dbpool))
	branchesService := branches.NewService(branches.NewRepository(dbpool))

	modalService := modal.NewService(modal.NewRepository(dbpool), auditLogger)
	modalHooks := modal.NewHooks(modalService)

	purchasesService := purchases.NewService(purchases.NewRepository(dbpool), closureService)
	salesService := sales.NewService(sales.NewRepository(dbpool), purchasesService, nil, closureService)
	installmentsService := installments.NewService(logger, installments.NewRepository(dbpool),
		salesService, modalHooks, divisionCompanies{companies: companiesService})
	salesService.BindPlans(installmentsService)

	feesService := fees.NewService(fees.NewRepository(dbpool), closureService)
	operationalService := operational.NewService(logger, operational.NewRepository(dbpool),
		modalHooks, modalService, closureService)
	pembukuanService := pembukuan.NewService(pembukuan.NewRepository(dbpool), closureService)
	birojasaService := birojasa.NewService(birojasa.NewRepository(dbpool), closureService)
	assetsService := assets.NewService(logger, assets.NewRepository(dbpool), modalHooks, closureService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		CompaniesHandler:    companies.NewHandler(logger, companiesService),
		BrandsHandler:       brands.NewHandler(logger, brandsService),
		BranchesHandler:     branches.NewHandler(logger, branchesService),
		PurchasesHandler:    purchases.NewHandler(logger, purchasesService),
		SalesHandler:        sales.NewHandler(logger, salesService),
		InstallmentsHandler: installments.NewHandler(logger, installmentsService),
		FeesHandler:         fees.NewHandler(logger, feesService),
		OperationalHandler:  operational.NewHandler(logger, operationalService),
		PembukuanHandler:    pembukuan.NewHandler(logger, pembukuanService),
		BiroJasaHandler:     birojasa.NewHandler(logger, birojasaService),
		AssetsHandler:       assets.NewHandler(logger, assetsService),
		ModalHandler:        modal.NewHandler(logger, modalService),
		ClosureHandler:      closurehttp.NewHandler(logger, closureService, metrics),
		JobHandler:          jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
