package pembukuan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

type fakeRepo struct {
	entries map[int64]Entry
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: map[int64]Entry{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Entry, int, error) {
	out := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeRepo) Create(ctx context.Context, e Entry) (Entry, error) {
	e.ID = f.nextID
	f.nextID++
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, e Entry) error {
	if _, ok := f.entries[id]; !ok {
		return ErrNotFound
	}
	e.ID = id
	f.entries[id] = e
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.entries[id]; !ok {
		return ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

type stubGuard struct {
	closed bool
}

func (g stubGuard) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	return g.closed, nil
}

func TestCreateRequiresExactlyOneSide(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	base := EntryForm{Division: "sport", Date: "2025-08-10", Notes: "setoran kas"}

	both := base
	both.Debit = 100
	both.Credit = 100
	if _, err := svc.Create(ctx, both); !errors.Is(err, ErrOneSided) {
		t.Fatalf("expected ErrOneSided for both sides, got %v", err)
	}

	neither := base
	if _, err := svc.Create(ctx, neither); !errors.Is(err, ErrOneSided) {
		t.Fatalf("expected ErrOneSided for empty line, got %v", err)
	}

	debitOnly := base
	debitOnly.Debit = 100
	if _, err := svc.Create(ctx, debitOnly); err != nil {
		t.Fatalf("debit-only line must pass: %v", err)
	}

	creditOnly := base
	creditOnly.Credit = 250
	if _, err := svc.Create(ctx, creditOnly); err != nil {
		t.Fatalf("credit-only line must pass: %v", err)
	}
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	svc := NewService(newFakeRepo(), stubGuard{closed: true})

	form := EntryForm{Division: "sport", Date: "2025-07-01", Notes: "late entry", Debit: 100}
	if _, err := svc.Create(context.Background(), form); !errors.Is(err, shared.ErrPeriodClosed) {
		t.Fatalf("expected period closed, got %v", err)
	}
}
