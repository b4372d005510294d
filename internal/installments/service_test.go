package installments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/modal"
	"github.com/pandawa-motor/pandawa/internal/sales"
)

type fakeRepo struct {
	plans       map[int64]Installment
	nextID      int64
	overdueRows int64
	overdueAsOf time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{plans: map[int64]Installment{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Installment, int, error) {
	out := make([]Installment, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Installment, error) {
	p, ok := f.plans[id]
	if !ok {
		return Installment{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) Create(ctx context.Context, ins Installment) (Installment, error) {
	ins.ID = f.nextID
	f.nextID++
	f.plans[ins.ID] = ins
	return ins, nil
}

func (f *fakeRepo) ApplyPayment(ctx context.Context, id int64, amount int64, nextDue time.Time) (Installment, error) {
	p, ok := f.plans[id]
	if !ok {
		return Installment{}, ErrNotFound
	}
	if p.Status == StatusCompleted {
		return Installment{}, ErrCompleted
	}
	if p.Paid+amount > p.Total {
		return Installment{}, ErrOverpay
	}
	p.Paid += amount
	p.DueDate = nextDue
	f.plans[id] = p
	return p, nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, id int64, status Status) error {
	p, ok := f.plans[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	f.plans[id] = p
	return nil
}

func (f *fakeRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	f.overdueAsOf = asOf
	return f.overdueRows, nil
}

type fakeSales struct {
	completed []int64
	err       error
}

func (f *fakeSales) Complete(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, id)
	return nil
}

type fakePoster struct {
	adjusts []modal.AdjustInput
	err     error
}

func (f *fakePoster) Adjust(ctx context.Context, in modal.AdjustInput) (modal.AdjustResult, error) {
	if f.err != nil {
		return modal.AdjustResult{}, f.err
	}
	f.adjusts = append(f.adjusts, in)
	return modal.AdjustResult{NewBalance: in.Amount}, nil
}

func (f *fakePoster) DeductProfit(ctx context.Context, in modal.ProfitInput) (modal.AdjustResult, error) {
	return modal.AdjustResult{}, nil
}

func (f *fakePoster) RestoreProfit(ctx context.Context, in modal.ProfitInput) (modal.AdjustResult, error) {
	return modal.AdjustResult{}, nil
}

type fakeCompanies struct {
	byDivision map[string]int64
}

func (f *fakeCompanies) CompanyIDForDivision(ctx context.Context, division string) (int64, error) {
	id, ok := f.byDivision[division]
	if !ok {
		return 0, errors.New("company not found")
	}
	return id, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenPlanSetsFirstDueOneMonthOut(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(testLogger(), repo, nil, nil, nil)

	start := time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)
	err := svc.OpenPlan(context.Background(), sales.PlanInput{
		SaleID:      7,
		Division:    "sport",
		Total:       24_000_000,
		TenorMonths: 12,
		StartDate:   start,
	})
	if err != nil {
		t.Fatalf("open plan: %v", err)
	}

	plan := repo.plans[1]
	if plan.Status != StatusActive {
		t.Fatalf("expected active plan, got %s", plan.Status)
	}
	if !plan.DueDate.Equal(start.AddDate(0, 1, 0)) {
		t.Fatalf("unexpected first due date: %s", plan.DueDate)
	}
	if plan.Notes != "tenor 12 bulan" {
		t.Fatalf("unexpected notes: %q", plan.Notes)
	}
}

func TestOpenPlanRejectsNonPositiveTotal(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(testLogger(), repo, nil, nil, nil)

	err := svc.OpenPlan(context.Background(), sales.PlanInput{SaleID: 1, Total: 0})
	if err == nil {
		t.Fatal("expected error for zero total")
	}
	if len(repo.plans) != 0 {
		t.Fatal("no plan should be created")
	}
}

func TestRecordPaymentCreditsModalAndAdvancesDue(t *testing.T) {
	repo := newFakeRepo()
	due := time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)
	repo.plans[1] = Installment{ID: 1, Division: "sport", SaleID: 9, Total: 10_000_000, Paid: 0, DueDate: due, Status: StatusActive}

	poster := &fakePoster{}
	svc := NewService(testLogger(), repo, nil, modal.NewHooks(poster),
		&fakeCompanies{byDivision: map[string]int64{"sport": 3}})

	updated, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 2_000_000}, 5)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if updated.Paid != 2_000_000 {
		t.Fatalf("unexpected paid: %d", updated.Paid)
	}
	if !updated.DueDate.Equal(due.AddDate(0, 1, 0)) {
		t.Fatalf("due date not advanced: %s", updated.DueDate)
	}
	if updated.Status != StatusActive {
		t.Fatalf("plan should stay active, got %s", updated.Status)
	}

	if len(poster.adjusts) != 1 {
		t.Fatalf("expected one modal credit, got %d", len(poster.adjusts))
	}
	credit := poster.adjusts[0]
	if credit.CompanyID != 3 || credit.Amount != 2_000_000 {
		t.Fatalf("unexpected credit: %+v", credit)
	}
	if credit.Ref != "cicilan:1" {
		t.Fatalf("unexpected ref: %s", credit.Ref)
	}
}

func TestFinalPaymentCompletesPlanAndSale(t *testing.T) {
	repo := newFakeRepo()
	repo.plans[1] = Installment{ID: 1, Division: "sport", SaleID: 9, Total: 5_000_000, Paid: 4_000_000, Status: StatusActive}

	salesSvc := &fakeSales{}
	svc := NewService(testLogger(), repo, salesSvc, nil, nil)

	updated, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 1_000_000}, 0)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected completed plan, got %s", updated.Status)
	}
	if len(salesSvc.completed) != 1 || salesSvc.completed[0] != 9 {
		t.Fatalf("expected sale 9 completed, got %v", salesSvc.completed)
	}
	if repo.plans[1].Status != StatusCompleted {
		t.Fatal("completion not persisted")
	}
}

func TestFinalPaymentSurvivesSaleCompletionFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.plans[1] = Installment{ID: 1, Division: "sport", SaleID: 9, Total: 1_000, Paid: 0, Status: StatusActive}

	salesSvc := &fakeSales{err: errors.New("sale gone")}
	svc := NewService(testLogger(), repo, salesSvc, nil, nil)

	updated, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 1_000}, 0)
	if err != nil {
		t.Fatalf("payment must not fail when sale completion fails: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("plan must still complete, got %s", updated.Status)
	}
}

func TestRecordPaymentRejectsOverpay(t *testing.T) {
	repo := newFakeRepo()
	repo.plans[1] = Installment{ID: 1, Total: 1_000_000, Paid: 900_000, Status: StatusActive}

	svc := NewService(testLogger(), repo, nil, nil, nil)

	_, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 200_000}, 0)
	if !errors.Is(err, ErrOverpay) {
		t.Fatalf("expected ErrOverpay, got %v", err)
	}
	if repo.plans[1].Paid != 900_000 {
		t.Fatal("overpay must not change the plan")
	}
}

func TestRecordPaymentRejectsCompletedPlan(t *testing.T) {
	repo := newFakeRepo()
	repo.plans[1] = Installment{ID: 1, Total: 1_000, Paid: 1_000, Status: StatusCompleted}

	svc := NewService(testLogger(), repo, nil, nil, nil)

	_, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 100}, 0)
	if !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
}

func TestPaymentProceedsWhenCompanyResolutionFails(t *testing.T) {
	repo := newFakeRepo()
	repo.plans[1] = Installment{ID: 1, Division: "bengkel", Total: 1_000_000, Status: StatusActive}

	poster := &fakePoster{}
	svc := NewService(testLogger(), repo, nil, modal.NewHooks(poster), &fakeCompanies{})

	if _, err := svc.RecordPayment(context.Background(), 1, PaymentForm{Amount: 100_000}, 0); err != nil {
		t.Fatalf("payment must not fail on modal posting problems: %v", err)
	}
	if len(poster.adjusts) != 0 {
		t.Fatal("no modal credit expected when the company cannot be resolved")
	}
}

func TestSweepOverdueUsesInjectedClock(t *testing.T) {
	repo := newFakeRepo()
	repo.overdueRows = 4

	svc := NewService(testLogger(), repo, nil, nil, nil)
	fixed := time.Date(2025, time.August, 29, 3, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	count, err := svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 4 {
		t.Fatalf("unexpected count: %d", count)
	}
	if !repo.overdueAsOf.Equal(fixed) {
		t.Fatalf("sweep used wrong clock: %s", repo.overdueAsOf)
	}
}
