package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type fakeRepo struct {
	assets map[int64]Asset
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{assets: map[int64]Asset{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Asset, int, error) {
	out := make([]Asset, 0, len(f.assets))
	for _, a := range f.assets {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) Create(ctx context.Context, a Asset) (Asset, error) {
	a.ID = f.nextID
	f.nextID++
	f.assets[a.ID] = a
	return a, nil
}

func (f *fakeRepo) SetPrice(ctx context.Context, id int64, price int64, notes string) error {
	a, ok := f.assets[id]
	if !ok {
		return ErrNotFound
	}
	a.Price = price
	if notes != "" {
		a.Notes = notes
	}
	f.assets[id] = a
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.assets[id]; !ok {
		return ErrNotFound
	}
	delete(f.assets, id)
	return nil
}

type fakePoster struct {
	deducted []modal.ProfitInput
	restored []modal.ProfitInput
	err      error
}

func (f *fakePoster) Adjust(ctx context.Context, in modal.AdjustInput) (modal.AdjustResult, error) {
	return modal.AdjustResult{}, nil
}

func (f *fakePoster) DeductProfit(ctx context.Context, in modal.ProfitInput) (modal.AdjustResult, error) {
	if f.err != nil {
		return modal.AdjustResult{}, f.err
	}
	f.deducted = append(f.deducted, in)
	return modal.AdjustResult{}, nil
}

func (f *fakePoster) RestoreProfit(ctx context.Context, in modal.ProfitInput) (modal.AdjustResult, error) {
	if f.err != nil {
		return modal.AdjustResult{}, f.err
	}
	f.restored = append(f.restored, in)
	return modal.AdjustResult{}, nil
}

type stubGuard struct {
	closed bool
}

func (g stubGuard) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	return g.closed, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepricePriceIncreaseDeductsProfit(t *testing.T) {
	repo := newFakeRepo()
	repo.assets[1] = Asset{ID: 1, CompanyID: 3, Price: 8_000_000}

	poster := &fakePoster{}
	svc := NewService(testLogger(), repo, modal.NewHooks(poster), nil)

	updated, err := svc.Reprice(context.Background(), 1, RepriceForm{Price: 9_500_000}, 7)
	if err != nil {
		t.Fatalf("reprice: %v", err)
	}
	if updated.Price != 9_500_000 {
		t.Fatalf("price not persisted: %d", updated.Price)
	}
	if len(poster.deducted) != 1 {
		t.Fatalf("expected one profit deduction, got %d", len(poster.deducted))
	}
	if poster.deducted[0].Amount != 1_500_000 || poster.deducted[0].CompanyID != 3 {
		t.Fatalf("unexpected deduction: %+v", poster.deducted[0])
	}
	if len(poster.restored) != 0 {
		t.Fatal("no restore expected on a price increase")
	}
}

func TestRepricePriceDecreaseRestoresProfit(t *testing.T) {
	repo := newFakeRepo()
	repo.assets[1] = Asset{ID: 1, CompanyID: 3, Price: 8_000_000}

	poster := &fakePoster{}
	svc := NewService(testLogger(), repo, modal.NewHooks(poster), nil)

	if _, err := svc.Reprice(context.Background(), 1, RepriceForm{Price: 7_000_000}, 0); err != nil {
		t.Fatalf("reprice: %v", err)
	}
	if len(poster.restored) != 1 || poster.restored[0].Amount != 1_000_000 {
		t.Fatalf("expected restore of 1000000, got %+v", poster.restored)
	}
}

func TestRepriceSamePriceIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	repo.assets[1] = Asset{ID: 1, Price: 8_000_000}

	poster := &fakePoster{}
	svc := NewService(testLogger(), repo, modal.NewHooks(poster), nil)

	if _, err := svc.Reprice(context.Background(), 1, RepriceForm{Price: 8_000_000}, 0); err != nil {
		t.Fatalf("reprice: %v", err)
	}
	if len(poster.deducted)+len(poster.restored) != 0 {
		t.Fatal("no profit movement expected for unchanged price")
	}
}

func TestRepriceAbortsWhenProfitGuardFails(t *testing.T) {
	repo := newFakeRepo()
	repo.assets[1] = Asset{ID: 1, CompanyID: 3, Price: 8_000_000}

	poster := &fakePoster{err: modal.ErrInsufficientProfit}
	svc := NewService(testLogger(), repo, modal.NewHooks(poster), nil)

	_, err := svc.Reprice(context.Background(), 1, RepriceForm{Price: 50_000_000}, 0)
	if !errors.Is(err, modal.ErrInsufficientProfit) {
		t.Fatalf("expected ErrInsufficientProfit, got %v", err)
	}
	if repo.assets[1].Price != 8_000_000 {
		t.Fatal("price must stay unchanged when the profit adjustment fails")
	}
}

func TestRepriceRejectsClosedPeriod(t *testing.T) {
	repo := newFakeRepo()
	repo.assets[1] = Asset{ID: 1, Price: 8_000_000, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}

	svc := NewService(testLogger(), repo, nil, stubGuard{closed: true})

	if _, err := svc.Reprice(context.Background(), 1, RepriceForm{Price: 9_000_000}, 0); !errors.Is(err, shared.ErrPeriodClosed) {
		t.Fatalf("expected period closed, got %v", err)
	}
}
