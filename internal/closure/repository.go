package closure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pandawa-motor/pandawa/internal/platform/db"
	"github.com/pandawa-motor/pandawa/internal/shared"
)

// kindSpec describes how a movable kind maps onto its active/history table
// pair. History tables repeat the active columns and append closed_month,
// closed_year, closed_at.
type kindSpec struct {
	active  string
	history string
	dateCol string
	// statusPred is the terminal-status predicate; empty means the kind is
	// eligible by date range alone.
	statusPred string
	columns    []string
}

var kindSpecs = map[EntityKind]kindSpec{
	KindPembelian: {
		active: "pembelian", history: "pembelian_history", dateCol: "tanggal",
		statusPred: "status = 'sold'",
		columns: []string{"id", "divisi", "tanggal", "brand_id", "jenis_motor", "tahun", "warna", "plat", "harga_beli", "status", "keterangan", "created_at", "updated_at"},
	},
	KindPenjualan: {
		active: "penjualan", history: "penjualan_history", dateCol: "tanggal",
		statusPred: "status = 'sold'",
		columns: []string{"id", "divisi", "tanggal", "pembelian_id", "pembeli", "jenis_pembayaran", "harga_jual", "dp", "status", "keterangan", "created_at", "updated_at"},
	},
	KindPembukuan: {
		active: "pembukuan", history: "pembukuan_history", dateCol: "tanggal",
		columns: []string{"id", "divisi", "tanggal", "keterangan", "debit", "kredit", "created_at", "updated_at"},
	},
	KindCicilan: {
		active: "cicilan", history: "cicilan_history", dateCol: "tanggal",
		statusPred: "status = 'completed'",
		columns: []string{"id", "divisi", "tanggal", "penjualan_id", "total_tagihan", "terbayar", "jatuh_tempo", "status", "keterangan", "created_at", "updated_at"},
	},
	KindFeePenjualan: {
		active: "fee_penjualan", history: "fee_penjualan_history", dateCol: "tanggal",
		columns: []string{"id", "divisi", "tanggal", "penjualan_id", "penerima", "jumlah", "keterangan", "created_at", "updated_at"},
	},
	KindOperational: {
		active: "operational", history: "operational_history", dateCol: "tanggal",
		columns: []string{"id", "divisi", "tanggal", "company_id", "kategori", "jumlah", "keterangan", "created_at", "updated_at"},
	},
	KindBiroJasa: {
		active: "biro_jasa", history: "biro_jasa_history", dateCol: "tanggal",
		statusPred: "lower(status) = 'selesai'",
		columns: []string{"id", "divisi", "tanggal", "jenis_layanan", "plat", "biaya", "estimasi_selesai", "status", "keterangan", "created_at", "updated_at"},
	},
	KindAssets: {
		active: "assets", history: "assets_history", dateCol: "tanggal",
		columns: []string{"id", "divisi", "tanggal", "company_id", "nama", "harga", "keterangan", "created_at", "updated_at"},
	},
}

// Repository persists closure records and performs the active/history moves.
type Repository interface {
	WithMoveTx(ctx context.Context, fn func(context.Context, Repository) error) error
	FindRecord(ctx context.Context, period shared.Period) (*Record, error)
	ListRecords(ctx context.Context, limit, offset int) ([]Record, error)
	InsertRecord(ctx context.Context, rec Record) (int64, error)
	DeleteRecord(ctx context.Context, period shared.Period) (bool, error)
	CountEligible(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error)
	CountHistory(ctx context.Context, kind EntityKind, period shared.Period) (int64, error)
	MoveToHistory(ctx context.Context, kind EntityKind, period shared.Period, closedAt time.Time) (int64, error)
	RestoreFromHistory(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithMoveTx runs fn against a serializable transaction. Row relocation and
// the closure record commit as a single unit.
func (r *repository) WithMoveTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const recordColumns = `id, closure_month, closure_year, closure_date, notes, created_by,
	total_pembelian_moved, total_penjualan_moved, total_pembukuan_moved, total_cicilan_moved,
	total_fee_penjualan_moved, total_operational_moved, total_biro_jasa_moved, total_assets_moved`

// FindRecord returns the closure record for a period, or nil when the period
// is still open. At most one row can exist per the unique index.
func (r *repository) FindRecord(ctx context.Context, period shared.Period) (*Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM monthly_closures WHERE closure_month = $1 AND closure_year = $2`,
		period.Month, period.Year)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns closure history, newest period first.
func (r *repository) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM monthly_closures ORDER BY closure_year DESC, closure_month DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertRecord creates the closure record; a duplicate period surfaces as
// ErrAlreadyClosed via the unique index.
func (r *repository) InsertRecord(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO monthly_closures (
			closure_month, closure_year, closure_date, notes, created_by,
			total_pembelian_moved, total_penjualan_moved, total_pembukuan_moved, total_cicilan_moved,
			total_fee_penjualan_moved, total_operational_moved, total_biro_jasa_moved, total_assets_moved
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		rec.Month, rec.Year, rec.ClosedAt, rec.Notes, rec.CreatedBy,
		rec.Moved.Pembelian, rec.Moved.Penjualan, rec.Moved.Pembukuan, rec.Moved.Cicilan,
		rec.Moved.FeePenjualan, rec.Moved.Operational, rec.Moved.BiroJasa, rec.Moved.Assets,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyClosed
		}
		return 0, err
	}
	return id, nil
}

// DeleteRecord removes the closure record for a period.
func (r *repository) DeleteRecord(ctx context.Context, period shared.Period) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM monthly_closures WHERE closure_month = $1 AND closure_year = $2`,
		period.Month, period.Year)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountEligible counts active rows that a close of the period would move.
// Read-only; feeds the preview endpoint.
func (r *repository) CountEligible(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return 0, fmt.Errorf("closure: unknown kind %q", kind)
	}
	start, end := period.Range()

	conditions := []string{
		fmt.Sprintf("%s >= $1", spec.dateCol),
		fmt.Sprintf("%s < $2", spec.dateCol),
	}
	args := []interface{}{start, end}
	if spec.statusPred != "" {
		conditions = append(conditions, spec.statusPred)
	}
	if division != shared.DivisionAll && division != "" {
		conditions = append(conditions, fmt.Sprintf("divisi = $%d", len(args)+1))
		args = append(args, string(division))
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", spec.active, strings.Join(conditions, " AND "))
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountHistory counts history rows of one kind still tagged with the period,
// across all divisions.
func (r *repository) CountHistory(ctx context.Context, kind EntityKind, period shared.Period) (int64, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return 0, fmt.Errorf("closure: unknown kind %q", kind)
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE closed_month = $1 AND closed_year = $2", spec.history)
	var count int64
	if err := r.db.QueryRow(ctx, query, period.Month, period.Year).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MoveToHistory relocates eligible rows of one kind into its history table,
// tagged with the closed period. The delete and insert are a single
// statement so no row can be lost between them.
func (r *repository) MoveToHistory(ctx context.Context, kind EntityKind, period shared.Period, closedAt time.Time) (int64, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return 0, fmt.Errorf("closure: unknown kind %q", kind)
	}
	start, end := period.Range()

	where := fmt.Sprintf("%s >= $1 AND %s < $2", spec.dateCol, spec.dateCol)
	if spec.statusPred != "" {
		where += " AND " + spec.statusPred
	}
	cols := strings.Join(spec.columns, ", ")
	query := fmt.Sprintf(`WITH moved AS (
		DELETE FROM %s WHERE %s RETURNING %s
	)
	INSERT INTO %s (%s, closed_month, closed_year, closed_at)
	SELECT %s, $3, $4, $5 FROM moved`,
		spec.active, where, cols, spec.history, cols, cols)

	tag, err := r.db.Exec(ctx, query, start, end, period.Month, period.Year, closedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RestoreFromHistory moves a division's rows of one kind back to the active
// table, stripping the closed-period tag.
func (r *repository) RestoreFromHistory(ctx context.Context, kind EntityKind, period shared.Period, division shared.Division) (int64, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return 0, fmt.Errorf("closure: unknown kind %q", kind)
	}
	cols := strings.Join(spec.columns, ", ")
	query := fmt.Sprintf(`WITH restored AS (
		DELETE FROM %s WHERE closed_month = $1 AND closed_year = $2 AND divisi = $3 RETURNING %s
	)
	INSERT INTO %s (%s)
	SELECT %s FROM restored`,
		spec.history, cols, spec.active, cols, cols)

	tag, err := r.db.Exec(ctx, query, period.Month, period.Year, string(division))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.Month, &rec.Year, &rec.ClosedAt, &rec.Notes, &rec.CreatedBy,
		&rec.Moved.Pembelian, &rec.Moved.Penjualan, &rec.Moved.Pembukuan, &rec.Moved.Cicilan,
		&rec.Moved.FeePenjualan, &rec.Moved.Operational, &rec.Moved.BiroJasa, &rec.Moved.Assets,
	)
	return rec, err
}
