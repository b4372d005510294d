package assets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/platform/httpx"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/reprice", h.reprice)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := Filters{
		Division: q.Get("division"),
		Search:   q.Get("search"),
	}
	filters.Month, _ = strconv.Atoi(q.Get("month"))
	filters.Year, _ = strconv.Atoi(q.Get("year"))
	filters.CompanyID, _ = strconv.ParseInt(q.Get("company_id"), 10, 64)
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Asset{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "pagination": shared.NewPagination(filters.Page, filters.Limit, total)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	asset, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get asset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form AssetForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asset, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondError(w, "create asset", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) reprice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var form RepriceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asset, err := h.service.Reprice(r.Context(), id, form, currentActor(r))
	if err != nil {
		h.respondError(w, "reprice asset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, modal.ErrCompanyNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Period Closed", err.Error())
	case errors.Is(err, modal.ErrInsufficientProfit):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Profit", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func currentActor(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
