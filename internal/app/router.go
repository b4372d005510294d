package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pandawa-motor/pandawa/internal/assets"
	"github.com/pandawa-motor/pandawa/internal/birojasa"
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
	"github.com/pandawa-motor/pandawa/internal/purchases"
	"github.com/pandawa-motor/pandawa/internal/sales"
	"github.com/pandawa-motor/pandawa/internal/shared"
	"github.com/pandawa-motor/pandawa/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	CompaniesHandler    *companies.Handler
	BrandsHandler       *brands.Handler
	BranchesHandler     *branches.Handler
	PurchasesHandler    *purchases.Handler
	SalesHandler        *sales.Handler
	InstallmentsHandler *installments.Handler
	FeesHandler         *fees.Handler
	OperationalHandler  *operational.Handler
	PembukuanHandler    *pembukuan.Handler
	BiroJasaHandler     *birojasa.Handler
	AssetsHandler       *assets.Handler
	ModalHandler        *modal.Handler
	ClosureHandler      *closurehttp.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with Pandawa defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.CompaniesHandler != nil {
		r.Route("/masterdata/companies", params.CompaniesHandler.MountRoutes)
	}
	if params.BrandsHandler != nil {
		r.Route("/masterdata/brands", params.BrandsHandler.MountRoutes)
	}
	if params.BranchesHandler != nil {
		r.Route("/masterdata/branches", params.BranchesHandler.MountRoutes)
	}
	if params.PurchasesHandler != nil {
		r.Route("/pembelian", params.PurchasesHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route("/penjualan", params.SalesHandler.MountRoutes)
	}
	if params.InstallmentsHandler != nil {
		r.Route("/cicilan", params.InstallmentsHandler.MountRoutes)
	}
	if params.FeesHandler != nil {
		r.Route("/fee-penjualan", params.FeesHandler.MountRoutes)
	}
	if params.OperationalHandler != nil {
		r.Route("/operational", params.OperationalHandler.MountRoutes)
	}
	if params.PembukuanHandler != nil {
		r.Route("/pembukuan", params.PembukuanHandler.MountRoutes)
	}
	if params.BiroJasaHandler != nil {
		r.Route("/biro-jasa", params.BiroJasaHandler.MountRoutes)
	}
	if params.AssetsHandler != nil {
		r.Route("/assets", params.AssetsHandler.MountRoutes)
	}
	if params.ModalHandler != nil {
		r.Route("/modal", params.ModalHandler.MountRoutes)
	}
	if params.ClosureHandler != nil {
		r.Route("/closures", params.ClosureHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
