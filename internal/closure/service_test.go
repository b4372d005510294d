package closure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

// fakeRepository keeps closure state in memory. WithMoveTx snapshots the
// state and rolls it back when fn fails, mirroring the real transaction.
// Preview dispatches its count queries from concurrent goroutines, so every
// accessor takes the mutex.
type fakeRepository struct {
	mu       sync.Mutex
	records  map[string]Record
	eligible map[EntityKind]map[shared.Division]int64
	history  map[EntityKind]map[shared.Division]int64
	nextID   int64

	countCalls   int
	moveCalls    int
	restoreCalls int

	countErr   error
	restoreErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		records:  make(map[string]Record),
		eligible: make(map[EntityKind]map[shared.Division]int64),
		history:  make(map[EntityKind]map[shared.Division]int64),
		nextID:   1,
	}
}

func copyBuckets(src map[EntityKind]map[shared.Division]int64) map[EntityKind]map[shared.Division]int64 {
	out := make(map[EntityKind]map[shared.Division]int64, len(src))
	for kind, buckets := range src {
		copied := make(map[shared.Division]int64, len(buckets))
		for div, n := range buckets {
			copied[div] = n
		}
		out[kind] = copied
	}
	return out
}

func (f *fakeRepository) WithMoveTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	f.mu.Lock()
	savedRecords := make(map[string]Record, len(f.records))
	for k, v := range f.records {
		savedRecords[k] = v
	}
	savedEligible := copyBuckets(f.eligible)
	savedHistory := copyBuckets(f.history)
	f.mu.Unlock()

	if err := fn(ctx, f); err != nil {
		f.mu.Lock()
		f.records = savedRecords
		f.eligible = savedEligible
		f.history = savedHistory
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepository) FindRecord(ctx context.Context, period shared.Period) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[period.String()]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeRepository) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRepository) InsertRecord(ctx context.Context, rec Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rec.Period().String()
	if _, exists := f.records[key]; exists {
		return 0, ErrAlreadyClosed
	}
	rec.ID = f.nextID
	f.nextID++
	f.records[key] = rec
	return rec.ID, nil
}

func (f *fakeRepository) DeleteRecord(ctx context.Context, period shared.Period) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := period.String()
	if _, ok := f.records[key]; !ok {
		return false, nil
	}
	delete(f.records, key)
	return true, nil
}

func (f *fakeRepository) CountEligible(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil && kind == KindCicilan {
		return 0, f.countErr
	}
	var total int64
	for div, n := range f.eligible[kind] {
		if division == shared.DivisionAll || div == division {
			total += n
		}
	}
	return total, nil
}

func (f *fakeRepository) CountHistory(ctx context.Context, kind EntityKind, period shared.Period) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, n := range f.history[kind] {
		total += n
	}
	return total, nil
}

func (f *fakeRepository) MoveToHistory(ctx context.Context, kind EntityKind, period shared.Period, closedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveCalls++
	var moved int64
	for div, n := range f.eligible[kind] {
		moved += n
		if f.history[kind] == nil {
			f.history[kind] = make(map[shared.Division]int64)
		}
		f.history[kind][div] += n
	}
	delete(f.eligible, kind)
	return moved, nil
}

func (f *fakeRepository) RestoreFromHistory(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreCalls++
	if f.restoreErr != nil {
		return 0, f.restoreErr
	}
	n := f.history[kind][division]
	delete(f.history[kind], division)
	if f.eligible[kind] == nil {
		f.eligible[kind] = make(map[shared.Division]int64)
	}
	f.eligible[kind][division] += n
	return n, nil
}

func (f *fakeRepository) historyCount(kind EntityKind) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, n := range f.history[kind] {
		total += n
	}
	return total
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, log shared.AuditLog) error {
	f.actions = append(f.actions, log.Action)
	return nil
}

type fakeEnqueuer struct {
	enqueued [][2]int
	err      error
}

func (f *fakeEnqueuer) EnqueueClosureReport(ctx context.Context, month, year int) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, [2]int{month, year})
	return nil
}

type fakeLocker struct {
	err      error
	acquired int
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, month, year int) (func(context.Context), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired++
	return func(context.Context) { f.released++ }, nil
}

func seedEligibleFor(repo *fakeRepository, div shared.Division, counts RecordCounts) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, kind := range Kinds {
		n := counts.Get(kind)
		if n == 0 {
			continue
		}
		if repo.eligible[kind] == nil {
			repo.eligible[kind] = make(map[shared.Division]int64)
		}
		repo.eligible[kind][div] += n
	}
}

func seedEligible(repo *fakeRepository, counts RecordCounts) {
	seedEligibleFor(repo, shared.DivisionSport, counts)
}

func TestCloseMonthMovesAllKinds(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{
		Pembelian: 3, Penjualan: 5, Pembukuan: 0, Cicilan: 2,
		FeePenjualan: 1, Operational: 4, BiroJasa: 0, Assets: 1,
	})
	audit := &fakeAudit{}
	reports := &fakeEnqueuer{}
	svc := NewService(repo, nil, audit, reports)
	closedAt := time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return closedAt })

	result, err := svc.CloseMonth(context.Background(), CloseInput{Month: 8, Year: 2025, Notes: "tutup buku agustus", ActorID: 7})
	require.NoError(t, err)

	assert.Equal(t, 8, result.Month)
	assert.Equal(t, 2025, result.Year)
	assert.Equal(t, RecordCounts{
		Pembelian: 3, Penjualan: 5, Pembukuan: 0, Cicilan: 2,
		FeePenjualan: 1, Operational: 4, BiroJasa: 0, Assets: 1,
	}, result.RecordsMoved)

	rec, err := repo.FindRecord(context.Background(), shared.Period{Month: 8, Year: 2025})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, result.RecordsMoved, rec.Moved)
	assert.Equal(t, "tutup buku agustus", rec.Notes)
	require.NotNil(t, rec.CreatedBy)
	assert.Equal(t, int64(7), *rec.CreatedBy)
	assert.Equal(t, closedAt, rec.ClosedAt)

	assert.Equal(t, []string{"closure.close"}, audit.actions)
	assert.Equal(t, [][2]int{{8, 2025}}, reports.enqueued)
}

func TestCloseMonthAlreadyClosedRejected(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 7, Year: 2025})
	require.NoError(t, err)

	_, err = svc.CloseMonth(context.Background(), CloseInput{Month: 7, Year: 2025})
	require.ErrorIs(t, err, ErrAlreadyClosed)

	// The at-most-one invariant holds after the rejected attempt.
	records, err := repo.ListRecords(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCloseMonthInvalidPeriodNeverTouchesRepository(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	for _, in := range []CloseInput{
		{Month: 0, Year: 2025},
		{Month: 13, Year: 2025},
		{Month: 8, Year: 2019},
		{Month: 8, Year: 2031},
	} {
		_, err := svc.CloseMonth(context.Background(), in)
		require.ErrorIs(t, err, shared.ErrInvalidPeriod)
	}
	assert.Zero(t, repo.moveCalls)
	assert.Empty(t, repo.records)
}

func TestCloseMonthReleasesLock(t *testing.T) {
	repo := newFakeRepository()
	locks := &fakeLocker{}
	svc := NewService(repo, locks, nil, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 1, locks.acquired)
	assert.Equal(t, 1, locks.released)
}

func TestCloseMonthLockHeld(t *testing.T) {
	repo := newFakeRepository()
	locks := &fakeLocker{err: shared.ErrLockHeld}
	svc := NewService(repo, locks, nil, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 3, Year: 2025})
	require.ErrorIs(t, err, shared.ErrLockHeld)
	assert.Zero(t, repo.moveCalls)
}

func TestCloseCommitsWhenReportEnqueueFails(t *testing.T) {
	repo := newFakeRepository()
	audit := &fakeAudit{}
	reports := &fakeEnqueuer{err: errors.New("queue down")}
	svc := NewService(repo, nil, audit, reports)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 5, Year: 2025})
	require.NoError(t, err)

	rec, err := repo.FindRecord(context.Background(), shared.Period{Month: 5, Year: 2025})
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Contains(t, audit.actions, "closure.report_enqueue_failed")
}

func TestPreviewIsReadOnly(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{Pembelian: 3, Penjualan: 2, Cicilan: 1})
	svc := NewService(repo, nil, nil, nil)

	for i := 0; i < 3; i++ {
		result, err := svc.Preview(context.Background(), 8, 2025, "all")
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Counts.Pembelian)
		assert.Equal(t, int64(2), result.Counts.Penjualan)
		assert.Equal(t, int64(1), result.Counts.Cicilan)
		assert.False(t, result.NothingToMove)
	}
	assert.Zero(t, repo.moveCalls)
	assert.Zero(t, repo.restoreCalls)
	assert.Equal(t, 3*len(Kinds), repo.countCalls)
}

func TestPreviewConcurrentCallers(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{Pembelian: 4, Cicilan: 2})
	svc := NewService(repo, nil, nil, nil)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			result, err := svc.Preview(ctx, 8, 2025, "all")
			if err != nil {
				return err
			}
			if result.Counts.Pembelian != 4 || result.Counts.Cicilan != 2 {
				return errors.New("unexpected preview counts")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, repo.moveCalls)
	assert.Equal(t, 8*len(Kinds), repo.countCalls)
}

func TestPreviewZeroPrimaryCountsAdvisory(t *testing.T) {
	repo := newFakeRepository()
	// Secondary kinds alone must not suppress the advisory.
	seedEligible(repo, RecordCounts{FeePenjualan: 2, Operational: 1})
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.Preview(context.Background(), 8, 2025, "sport")
	require.NoError(t, err)
	assert.True(t, result.NothingToMove)
	assert.Equal(t, int64(2), result.Counts.FeePenjualan)
	assert.Equal(t, int64(1), result.Counts.Operational)
}

func TestPreviewAbortsOnAnyCountError(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{Pembelian: 3})
	repo.countErr = errors.New("relation missing")
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Preview(context.Background(), 8, 2025, "all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cicilan")
}

func TestPreviewRejectsUnknownDivision(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Preview(context.Background(), 8, 2025, "racing")
	require.ErrorIs(t, err, shared.ErrUnknownDivision)
	assert.Zero(t, repo.countCalls)
}

func TestRestoreMonthInverseOfClose(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{Pembelian: 4, Cicilan: 2})
	audit := &fakeAudit{}
	svc := NewService(repo, nil, audit, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 6, Year: 2025})
	require.NoError(t, err)

	result, err := svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "sport"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.RecordsRestored.Pembelian)
	assert.Equal(t, int64(2), result.RecordsRestored.Cicilan)
	assert.Equal(t, "sport", result.Division)

	rec, err := repo.FindRecord(context.Background(), shared.Period{Month: 6, Year: 2025})
	require.NoError(t, err)
	assert.Nil(t, rec, "closure record must be deleted once nothing stays archived")
	assert.Equal(t, []string{"closure.close", "closure.restore"}, audit.actions)
}

func TestRestoreSingleDivisionKeepsRecordWhileHistoryRemains(t *testing.T) {
	repo := newFakeRepository()
	seedEligibleFor(repo, shared.DivisionSport, RecordCounts{Pembelian: 2})
	seedEligibleFor(repo, shared.DivisionStart, RecordCounts{Pembelian: 3})
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 6, Year: 2025})
	require.NoError(t, err)

	result, err := svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "sport"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RecordsRestored.Pembelian)

	// The other division's rows are still archived under the period tag, so
	// the record must survive for them to reference.
	rec, err := repo.FindRecord(context.Background(), shared.Period{Month: 6, Year: 2025})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), repo.historyCount(KindPembelian))

	result, err = svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "start"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.RecordsRestored.Pembelian)

	rec, err = repo.FindRecord(context.Background(), shared.Period{Month: 6, Year: 2025})
	require.NoError(t, err)
	assert.Nil(t, rec, "record must go once the last division is restored")
}

func TestRestoreMonthRequiresDivision(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025})
	require.ErrorIs(t, err, ErrDivisionRequired)

	_, err = svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "all"})
	require.ErrorIs(t, err, shared.ErrUnknownDivision)
	assert.Zero(t, repo.restoreCalls)
}

func TestRestoreMonthNotClosed(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "start"})
	require.ErrorIs(t, err, ErrNotClosed)
}

func TestRestoreFailureRollsBack(t *testing.T) {
	repo := newFakeRepository()
	seedEligible(repo, RecordCounts{Penjualan: 3})
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CloseMonth(context.Background(), CloseInput{Month: 6, Year: 2025})
	require.NoError(t, err)

	repo.restoreErr = errors.New("restore gagal")
	_, err = svc.RestoreMonth(context.Background(), RestoreInput{Month: 6, Year: 2025, Division: "sport"})
	require.Error(t, err)

	// The failed restore must leave the closed state untouched.
	rec, err := repo.FindRecord(context.Background(), shared.Period{Month: 6, Year: 2025})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.Moved.Penjualan)
	assert.Equal(t, int64(3), repo.historyCount(KindPenjualan))
}

func TestStatusAdvisory(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.Status(context.Background(), 7, 2025)
	require.NoError(t, err)
	assert.False(t, result.IsClosed)
	assert.Nil(t, result.Record)

	_, err = svc.CloseMonth(context.Background(), CloseInput{Month: 7, Year: 2025})
	require.NoError(t, err)

	result, err = svc.Status(context.Background(), 7, 2025)
	require.NoError(t, err)
	assert.True(t, result.IsClosed)
	require.NotNil(t, result.Record)
	assert.Equal(t, 7, result.Record.Month)
	assert.Equal(t, 2025, result.Record.Year)
}
