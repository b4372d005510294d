package birojasa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

func TestNormalizeStatusAcceptsLegacyCasing(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"proses", StatusProses},
		{"Proses", StatusProses},
		{"SELESAI", StatusSelesai},
		{"  Selesai ", StatusSelesai},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.raw)
		if err != nil {
			t.Errorf("NormalizeStatus(%q): unexpected error %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}

	if _, err := NormalizeStatus("batal"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

type fakeRepo struct {
	jobs   map[int64]Job
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: map[int64]Job{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Job, int, error) {
	out := make([]Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (f *fakeRepo) Create(ctx context.Context, j Job) (Job, error) {
	j.ID = f.nextID
	f.nextID++
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, j Job) error {
	existing, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.ID = id
	j.Status = existing.Status
	f.jobs[id] = j
	return nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, id int64, status Status) error {
	j, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	f.jobs[id] = j
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

type stubGuard struct {
	closed bool
}

func (g stubGuard) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	return g.closed, nil
}

func jobForm() JobForm {
	return JobForm{
		Division:    "start",
		Date:        "2025-08-12",
		ServiceType: "perpanjang STNK",
		Plate:       "N 4321 GH",
		Cost:        300_000,
	}
}

func TestCreateForcesProses(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	j, err := svc.Create(context.Background(), jobForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.Status != StatusProses {
		t.Fatalf("new job must start in proses, got %s", j.Status)
	}
}

func TestUpdateStatusNormalises(t *testing.T) {
	repo := newFakeRepo()
	repo.jobs[1] = Job{ID: 1, Status: StatusProses}
	svc := NewService(repo, nil)

	j, err := svc.UpdateStatus(context.Background(), 1, "SELESAI")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if j.Status != StatusSelesai {
		t.Fatalf("expected selesai, got %s", j.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), 1, "dibatalkan"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	svc := NewService(newFakeRepo(), stubGuard{closed: true})

	if _, err := svc.Create(context.Background(), jobForm()); !errors.Is(err, shared.ErrPeriodClosed) {
		t.Fatalf("expected period closed, got %v", err)
	}
}
