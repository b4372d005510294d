package fees

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := Filters{Division: q.Get("division")}
	filters.Month, _ = strconv.Atoi(q.Get("month"))
	filters.Year, _ = strconv.Atoi(q.Get("year"))
	filters.SaleID, _ = strconv.ParseInt(q.Get("penjualan_id"), 10, 64)
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list fee penjualan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Fee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "pagination": shared.NewPagination(filters.Page, filters.Limit, total)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	fee, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get fee penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, fee)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form FeeForm
	if !h.decode(w, r, &form) {
		return
	}
	fee, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondError(w, "create fee penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fee)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var form FeeForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.respondError(w, "update fee penjualan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete fee penjualan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, form *FeeForm) bool {
	if err := httpx.DecodeJSON(r, form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
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
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Period Closed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
