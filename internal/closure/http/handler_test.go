package closurehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandawa-motor/pandawa/internal/closure"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type stubService struct {
	statusResult  closure.StatusResult
	listResult    []closure.Record
	previewResult closure.PreviewResult
	closeResult   closure.CloseResult
	restoreResult closure.RestoreResult

	closeErr   error
	restoreErr error

	closeCalls   int
	restoreCalls int
	lastClose    closure.CloseInput
	lastPreview  string
}

func (s *stubService) Status(ctx context.Context, month, year int) (closure.StatusResult, error) {
	return s.statusResult, nil
}

func (s *stubService) List(ctx context.Context, limit, offset int) ([]closure.Record, error) {
	return s.listResult, nil
}

func (s *stubService) Preview(ctx context.Context, month, year int, division string) (closure.PreviewResult, error) {
	s.lastPreview = division
	return s.previewResult, nil
}

func (s *stubService) CloseMonth(ctx context.Context, in closure.CloseInput) (closure.CloseResult, error) {
	s.closeCalls++
	s.lastClose = in
	if s.closeErr != nil {
		return closure.CloseResult{}, s.closeErr
	}
	return s.closeResult, nil
}

func (s *stubService) RestoreMonth(ctx context.Context, in closure.RestoreInput) (closure.RestoreResult, error) {
	s.restoreCalls++
	if s.restoreErr != nil {
		return closure.RestoreResult{}, s.restoreErr
	}
	return s.restoreResult, nil
}

func newTestRouter(svc closureService) chi.Router {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, nil)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCloseMonthOK(t *testing.T) {
	svc := &stubService{closeResult: closure.CloseResult{
		Month: 8,
		Year:  2025,
		RecordsMoved: closure.RecordCounts{
			Pembelian: 3, Penjualan: 5, Cicilan: 2,
			FeePenjualan: 1, Operational: 4, Assets: 1,
		},
	}}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/close", map[string]any{"month": 8, "year": 2025, "notes": "tutup buku"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Month        int                  `json:"month"`
		Year         int                  `json:"year"`
		RecordsMoved closure.RecordCounts `json:"records_moved"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Month)
	assert.Equal(t, int64(5), resp.RecordsMoved.Penjualan)
	assert.Equal(t, "tutup buku", svc.lastClose.Notes)
	assert.Equal(t, 1, svc.closeCalls)
}

func TestCloseMonthValidationGate(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	for _, body := range []map[string]any{
		{"month": 0, "year": 2025},
		{"month": 13, "year": 2025},
		{"month": 8, "year": 2019},
		{"month": 8},
	} {
		rr := postJSON(t, router, "/close", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
	// Rejected requests must never reach the service.
	assert.Zero(t, svc.closeCalls)
}

func TestCloseMonthMalformedBody(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/close", bytes.NewReader([]byte("{bukan json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, svc.closeCalls)
}

func TestCloseMonthAlreadyClosedConflict(t *testing.T) {
	svc := &stubService{closeErr: closure.ErrAlreadyClosed}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/close", map[string]any{"month": 8, "year": 2025})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already closed")
}

func TestCloseMonthLockHeldConflict(t *testing.T) {
	svc := &stubService{closeErr: shared.ErrLockHeld}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/close", map[string]any{"month": 8, "year": 2025})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRestoreMonthRequiresDivision(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/restore", map[string]any{"month": 8, "year": 2025})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, svc.restoreCalls)
}

func TestRestoreMonthOK(t *testing.T) {
	svc := &stubService{restoreResult: closure.RestoreResult{
		Month: 8, Year: 2025, Division: "sport",
		RecordsRestored: closure.RecordCounts{Pembelian: 3},
	}}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/restore", map[string]any{"month": 8, "year": 2025, "division": "sport"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"records_restored"`)
	assert.Equal(t, 1, svc.restoreCalls)
}

func TestRestoreMonthNotClosedConflict(t *testing.T) {
	svc := &stubService{restoreErr: closure.ErrNotClosed}
	router := newTestRouter(svc)

	rr := postJSON(t, router, "/restore", map[string]any{"month": 8, "year": 2025, "division": "start"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPreviewDefaultsToAllDivisions(t *testing.T) {
	svc := &stubService{previewResult: closure.PreviewResult{Month: 8, Year: 2025, Division: shared.DivisionAll}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/preview?month=8&year=2025", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "all", svc.lastPreview)
}

func TestStatusRequiresPeriodParams(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/status?month=8", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/status?month=abc&year=2025", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"records": []}`, rr.Body.String())
}
