package modal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pandawa-motor/pandawa/internal/platform/httpx"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

const ledgerPageLimit = 100

type modalService interface {
	Adjust(ctx context.Context, in AdjustInput) (AdjustResult, error)
	DeductProfit(ctx context.Context, in ProfitInput) (AdjustResult, error)
	RestoreProfit(ctx context.Context, in ProfitInput) (AdjustResult, error)
	CompanyBalances(ctx context.Context, companyID int64) (Balances, error)
	Ledger(ctx context.Context, companyID int64, limit, offset int) ([]Entry, error)
}

// Handler exposes the modal ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   modalService
	validator *validator.Validate
}

// NewHandler constructs a modal HTTP handler.
func NewHandler(logger *slog.Logger, service modalService) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/adjust", h.adjust)
	r.Post("/profit/deduct", h.deductProfit)
	r.Post("/profit/restore", h.restoreProfit)
	r.Get("/companies/{companyID}/balances", h.balances)
	r.Get("/companies/{companyID}/ledger", h.ledger)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var in AdjustInput
	if !h.decode(w, r, &in) {
		return
	}
	in.ActorID = currentActor(r)
	result, err := h.service.Adjust(r.Context(), in)
	if err != nil {
		h.respondPostError(w, "adjust modal", err)
		return
	}
	h.logger.Info("modal adjusted",
		slog.Int64("company_id", in.CompanyID),
		slog.Int64("amount", in.Amount),
		slog.Int64("new_balance", result.NewBalance))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) deductProfit(w http.ResponseWriter, r *http.Request) {
	var in ProfitInput
	if !h.decode(w, r, &in) {
		return
	}
	in.ActorID = currentActor(r)
	result, err := h.service.DeductProfit(r.Context(), in)
	if err != nil {
		h.respondPostError(w, "deduct profit", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) restoreProfit(w http.ResponseWriter, r *http.Request) {
	var in ProfitInput
	if !h.decode(w, r, &in) {
		return
	}
	in.ActorID = currentActor(r)
	result, err := h.service.RestoreProfit(r.Context(), in)
	if err != nil {
		h.respondPostError(w, "restore profit", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyParam(w, r)
	if !ok {
		return
	}
	balances, err := h.service.CompanyBalances(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("company balances", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyParam(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > ledgerPageLimit {
		limit = ledgerPageLimit
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	entries, err := h.service.Ledger(r.Context(), companyID, limit, offset)
	if err != nil {
		h.logger.Error("modal ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, in any) bool {
	if err := httpx.DecodeJSON(r, in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondPostError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrCompanyNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrZeroAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientProfit):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Balance", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) companyParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company id must be a positive integer")
		return 0, false
	}
	return id, true
}

func currentActor(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
