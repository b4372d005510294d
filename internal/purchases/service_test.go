package purchases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type fakeRepo struct {
	units  map[int64]Purchase
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{units: map[int64]Purchase{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Purchase, int, error) {
	out := make([]Purchase, 0, len(f.units))
	for _, p := range f.units {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Purchase, error) {
	p, ok := f.units[id]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) Create(ctx context.Context, p Purchase) (Purchase, error) {
	p.ID = f.nextID
	f.nextID++
	f.units[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, p Purchase) error {
	existing, ok := f.units[id]
	if !ok {
		return ErrNotFound
	}
	p.ID = id
	p.Status = existing.Status
	f.units[id] = p
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.units[id]; !ok {
		return ErrNotFound
	}
	delete(f.units, id)
	return nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, id int64, from, to Status) error {
	p, ok := f.units[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status != from {
		return ErrAlreadySold
	}
	p.Status = to
	f.units[id] = p
	return nil
}

type stubGuard struct {
	closed bool
}

func (g stubGuard) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	return g.closed, nil
}

func unitForm() PurchaseForm {
	return PurchaseForm{
		Division:      "sport",
		Date:          "2025-08-05",
		BrandID:       1,
		Model:         "Vario 160",
		Year:          2023,
		Color:         "Hitam",
		Plate:         "N 1234 AB",
		PurchasePrice: 21_000_000,
	}
}

func TestCreateStartsReady(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), unitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != StatusReady {
		t.Fatalf("new unit must be ready, got %s", p.Status)
	}
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	svc := NewService(newFakeRepo(), stubGuard{closed: true})

	if _, err := svc.Create(context.Background(), unitForm()); !errors.Is(err, shared.ErrPeriodClosed) {
		t.Fatalf("expected period closed, got %v", err)
	}
}

func TestUpdateAndDeleteBlockedOnceSold(t *testing.T) {
	repo := newFakeRepo()
	repo.units[1] = Purchase{ID: 1, Status: StatusSold}
	svc := NewService(repo, nil)

	if err := svc.Update(context.Background(), 1, unitForm()); !errors.Is(err, ErrUnitSold) {
		t.Fatalf("expected ErrUnitSold on update, got %v", err)
	}
	if err := svc.Delete(context.Background(), 1); !errors.Is(err, ErrUnitSold) {
		t.Fatalf("expected ErrUnitSold on delete, got %v", err)
	}
}

func TestMarkSoldClaimsOnlyReadyUnits(t *testing.T) {
	repo := newFakeRepo()
	repo.units[1] = Purchase{ID: 1, Status: StatusReady}
	svc := NewService(repo, nil)

	if err := svc.MarkSold(context.Background(), 1); err != nil {
		t.Fatalf("mark sold: %v", err)
	}
	if err := svc.MarkSold(context.Background(), 1); !errors.Is(err, ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold on double claim, got %v", err)
	}

	if err := svc.Release(context.Background(), 1); err != nil {
		t.Fatalf("release: %v", err)
	}
	if repo.units[1].Status != StatusReady {
		t.Fatalf("release must return the unit to ready, got %s", repo.units[1].Status)
	}
}
