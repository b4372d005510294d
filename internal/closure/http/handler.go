package closurehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pandawa-motor/pandawa/internal/closure"
	"github.com/pandawa-motor/pandawa/internal/observability"
	"github.com/pandawa-motor/pandawa/internal/platform/httpx"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

const recordsPageLimit = 100

type closureService interface {
	Status(ctx context.Context, month, year int) (closure.StatusResult, error)
	List(ctx context.Context, limit, offset int) ([]closure.Record, error)
	Preview(ctx context.Context, month, year int, division string) (closure.PreviewResult, error)
	CloseMonth(ctx context.Context, in closure.CloseInput) (closure.CloseResult, error)
	RestoreMonth(ctx context.Context, in closure.RestoreInput) (closure.RestoreResult, error)
}

// Handler wires the month-end close endpoints consumed by the closure page.
type Handler struct {
	logger    *slog.Logger
	service   closureService
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler constructs a closure HTTP handler.
func NewHandler(logger *slog.Logger, service closureService, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		metrics:   metrics,
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/status", h.status)
	r.Get("/preview", h.preview)
	r.Post("/close", h.closeMonth)
	r.Post("/restore", h.restoreMonth)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > recordsPageLimit {
		limit = recordsPageLimit
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	records, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list closures", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if records == nil {
		records = []closure.Record{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	result, err := h.service.Status(r.Context(), month, year)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("closure status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	month, year, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	division := strings.TrimSpace(r.URL.Query().Get("division"))
	if division == "" {
		division = string(shared.DivisionAll)
	}
	result, err := h.service.Preview(r.Context(), month, year, division)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidPeriod) || errors.Is(err, shared.ErrUnknownDivision) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("closure preview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) closeMonth(w http.ResponseWriter, r *http.Request) {
	var in closure.CloseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	// Validation gate: a malformed period never reaches the service.
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	in.ActorID = currentActor(r)

	result, err := h.service.CloseMonth(r.Context(), in)
	if err != nil {
		h.observe("close", "error")
		switch {
		case errors.Is(err, closure.ErrAlreadyClosed):
			httpx.Problem(w, http.StatusConflict, "Already Closed", err.Error())
		case errors.Is(err, shared.ErrLockHeld):
			httpx.Problem(w, http.StatusConflict, "Busy", err.Error())
		case errors.Is(err, shared.ErrInvalidPeriod):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("close month", slog.Any("error", err), slog.Int("month", in.Month), slog.Int("year", in.Year))
			httpx.RespondError(w, err)
		}
		return
	}
	h.observe("close", "ok")
	h.logger.Info("month closed",
		slog.Int("month", result.Month),
		slog.Int("year", result.Year),
		slog.Int64("records_moved", result.RecordsMoved.Total()))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) restoreMonth(w http.ResponseWriter, r *http.Request) {
	var in closure.RestoreInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	in.ActorID = currentActor(r)

	result, err := h.service.RestoreMonth(r.Context(), in)
	if err != nil {
		h.observe("restore", "error")
		switch {
		case errors.Is(err, closure.ErrNotClosed):
			httpx.Problem(w, http.StatusConflict, "Not Closed", err.Error())
		case errors.Is(err, shared.ErrLockHeld):
			httpx.Problem(w, http.StatusConflict, "Busy", err.Error())
		case errors.Is(err, closure.ErrDivisionRequired), errors.Is(err, shared.ErrUnknownDivision), errors.Is(err, shared.ErrInvalidPeriod):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("restore month", slog.Any("error", err), slog.Int("month", in.Month), slog.Int("year", in.Year))
			httpx.RespondError(w, err)
		}
		return
	}
	h.observe("restore", "ok")
	h.logger.Info("month restored",
		slog.Int("month", result.Month),
		slog.Int("year", result.Year),
		slog.String("division", result.Division))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) periodParams(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	rawMonth := strings.TrimSpace(r.URL.Query().Get("month"))
	rawYear := strings.TrimSpace(r.URL.Query().Get("year"))
	if rawMonth == "" || rawYear == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month and year are required")
		return 0, 0, false
	}
	month, errM := strconv.Atoi(rawMonth)
	year, errY := strconv.Atoi(rawYear)
	if errM != nil || errY != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month and year must be integers")
		return 0, 0, false
	}
	return month, year, true
}

func (h *Handler) observe(action, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveClosureRun(action, outcome)
	}
}

func currentActor(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	return closure.ParseActor(sess.User())
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" is invalid")
	}
	return strings.Join(fields, "; ")
}
