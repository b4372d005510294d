package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pandawa-motor/pandawa/internal/purchases"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

type fakeRepo struct {
	sales   map[int64]Sale
	nextID  int64
	deleted []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sales: map[int64]Sale{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters) ([]Sale, int, error) {
	out := make([]Sale, 0, len(f.sales))
	for _, s := range f.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) Create(ctx context.Context, s Sale) (Sale, error) {
	s.ID = f.nextID
	f.nextID++
	f.sales[s.ID] = s
	return s, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.sales[id]; !ok {
		return ErrNotFound
	}
	delete(f.sales, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, id int64, status Status) error {
	s, ok := f.sales[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	f.sales[id] = s
	return nil
}

type fakeStock struct {
	sold     map[int64]bool
	soldErr  error
	released []int64
}

func newFakeStock() *fakeStock {
	return &fakeStock{sold: map[int64]bool{}}
}

func (f *fakeStock) MarkSold(ctx context.Context, id int64) error {
	if f.soldErr != nil {
		return f.soldErr
	}
	if f.sold[id] {
		return purchases.ErrAlreadySold
	}
	f.sold[id] = true
	return nil
}

func (f *fakeStock) Release(ctx context.Context, id int64) error {
	delete(f.sold, id)
	f.released = append(f.released, id)
	return nil
}

type fakePlans struct {
	opened []PlanInput
	err    error
}

func (f *fakePlans) OpenPlan(ctx context.Context, in PlanInput) error {
	if f.err != nil {
		return f.err
	}
	f.opened = append(f.opened, in)
	return nil
}

type stubGuard struct {
	closed bool
}

func (g stubGuard) IsDateClosed(ctx context.Context, t time.Time) (bool, error) {
	return g.closed, nil
}

func cashForm() SaleForm {
	return SaleForm{
		Division:    "sport",
		Date:        "2025-08-10",
		PurchaseID:  4,
		Buyer:       "Budi Santoso",
		PaymentType: "cash",
		Price:       23_500_000,
	}
}

func TestCreateCashSaleMarksUnitAndSellsImmediately(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	plans := &fakePlans{}
	svc := NewService(repo, stock, plans, nil)

	sale, err := svc.Create(context.Background(), cashForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.Status != StatusSold {
		t.Fatalf("cash sale must be sold, got %s", sale.Status)
	}
	if !stock.sold[4] {
		t.Fatal("unit must be claimed")
	}
	if len(plans.opened) != 0 {
		t.Fatal("cash sale must not open a plan")
	}
}

func TestCreateCreditSaleOpensPlanOverRemainder(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	plans := &fakePlans{}
	svc := NewService(repo, stock, plans, nil)

	form := cashForm()
	form.PaymentType = "credit"
	form.Price = 30_000_000
	form.DownPayment = 6_000_000
	form.TenorMonths = 12

	sale, err := svc.Create(context.Background(), form)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.Status != StatusBooked {
		t.Fatalf("credit sale must stay booked, got %s", sale.Status)
	}
	if len(plans.opened) != 1 {
		t.Fatalf("expected one plan, got %d", len(plans.opened))
	}
	plan := plans.opened[0]
	if plan.Total != 24_000_000 {
		t.Fatalf("plan must cover price minus down payment, got %d", plan.Total)
	}
	if plan.SaleID != sale.ID || plan.TenorMonths != 12 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestCreateCreditSaleRequiresTenor(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeStock(), &fakePlans{}, nil)

	form := cashForm()
	form.PaymentType = "credit"
	if _, err := svc.Create(context.Background(), form); !errors.Is(err, ErrTenorRequired) {
		t.Fatalf("expected ErrTenorRequired, got %v", err)
	}
}

func TestCreateRejectsDownPaymentAbovePrice(t *testing.T) {
	stock := newFakeStock()
	svc := NewService(newFakeRepo(), stock, nil, nil)

	form := cashForm()
	form.DownPayment = form.Price + 1
	if _, err := svc.Create(context.Background(), form); !errors.Is(err, ErrDownPayment) {
		t.Fatalf("expected ErrDownPayment, got %v", err)
	}
	if len(stock.sold) != 0 {
		t.Fatal("unit must not be claimed on validation failure")
	}
}

func TestCreateRejectsSoldUnit(t *testing.T) {
	stock := newFakeStock()
	stock.sold[4] = true
	svc := NewService(newFakeRepo(), stock, nil, nil)

	if _, err := svc.Create(context.Background(), cashForm()); !errors.Is(err, purchases.ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold, got %v", err)
	}
}

func TestCreateCompensatesWhenPlanFails(t *testing.T) {
	repo := newFakeRepo()
	stock := newFakeStock()
	plans := &fakePlans{err: errors.New("cicilan down")}
	svc := NewService(repo, stock, plans, nil)

	form := cashForm()
	form.PaymentType = "credit"
	form.TenorMonths = 6

	if _, err := svc.Create(context.Background(), form); err == nil {
		t.Fatal("expected error when plan creation fails")
	}
	if len(repo.sales) != 0 {
		t.Fatal("sale row must be rolled back")
	}
	if stock.sold[4] {
		t.Fatal("unit must be returned to stock")
	}
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	stock := newFakeStock()
	svc := NewService(newFakeRepo(), stock, nil, stubGuard{closed: true})

	if _, err := svc.Create(context.Background(), cashForm()); !errors.Is(err, shared.ErrPeriodClosed) {
		t.Fatalf("expected period closed error, got %v", err)
	}
	if len(stock.sold) != 0 {
		t.Fatal("unit must not be claimed in a closed period")
	}
}

func TestCompleteMarksBookedSaleSold(t *testing.T) {
	repo := newFakeRepo()
	repo.sales[1] = Sale{ID: 1, Status: StatusBooked}
	svc := NewService(repo, newFakeStock(), nil, nil)

	if err := svc.Complete(context.Background(), 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if repo.sales[1].Status != StatusSold {
		t.Fatalf("expected sold, got %s", repo.sales[1].Status)
	}

	if err := svc.Complete(context.Background(), 1); !errors.Is(err, ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold on second completion, got %v", err)
	}
}

func TestDeleteReleasesUnit(t *testing.T) {
	repo := newFakeRepo()
	repo.sales[1] = Sale{ID: 1, PurchaseID: 4, Status: StatusSold, Date: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)}
	stock := newFakeStock()
	stock.sold[4] = true
	svc := NewService(repo, stock, nil, nil)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stock.sold[4] {
		t.Fatal("unit must be released")
	}
}
