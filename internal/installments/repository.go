package installments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Installment, int, error)
	Get(ctx context.Context, id int64) (Installment, error)
	Create(ctx context.Context, ins Installment) (Installment, error)
	// ApplyPayment adds amount to terbayar and moves the due date, returning
	// the updated row. The guard keeps terbayar from passing total_tagihan.
	ApplyPayment(ctx context.Context, id int64, amount int64, nextDue time.Time) (Installment, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, penjualan_id, total_tagihan, terbayar, jatuh_tempo, status, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Installment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 0
	arg := func(v interface{}) string {
		n++
		args = append(args, v)
		return "$" + strconv.Itoa(n)
	}

	if filters.Division != "" && filters.Division != "all" {
		where += ` AND divisi = ` + arg(filters.Division)
	}
	if filters.Month >= 1 && filters.Month <= 12 && filters.Year > 0 {
		start := time.Date(filters.Year, time.Month(filters.Month), 1, 0, 0, 0, 0, time.UTC)
		where += ` AND tanggal >= ` + arg(start) + ` AND tanggal < ` + arg(start.AddDate(0, 1, 0))
	}
	if filters.Status != "" {
		where += ` AND status = ` + arg(filters.Status)
	}
	if filters.SaleID > 0 {
		where += ` AND penjualan_id = ` + arg(filters.SaleID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cicilan`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM cicilan` + where + ` ORDER BY jatuh_tempo ASC, id ASC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []Installment
	for rows.Next() {
		ins, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, ins)
	}
	return plans, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Installment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM cicilan WHERE id = $1`, id)
	ins, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Installment{}, ErrNotFound
	}
	return ins, err
}

func (r *repository) Create(ctx context.Context, ins Installment) (Installment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO cicilan (divisi, tanggal, penjualan_id, total_tagihan, terbayar, jatuh_tempo, status, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+columns,
		ins.Division, ins.Date, ins.SaleID, ins.Total, ins.Paid, ins.DueDate, ins.Status, ins.Notes)
	return scan(row)
}

func (r *repository) ApplyPayment(ctx context.Context, id int64, amount int64, nextDue time.Time) (Installment, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE cicilan
		 SET terbayar = terbayar + $1, jatuh_tempo = $2, updated_at = NOW()
		 WHERE id = $3 AND status <> 'completed' AND terbayar + $1 <= total_tagihan
		 RETURNING `+columns,
		amount, nextDue, id)
	ins, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish the guard failures for the caller.
		existing, gerr := r.Get(ctx, id)
		if gerr != nil {
			return Installment{}, gerr
		}
		if existing.Status == StatusCompleted {
			return Installment{}, ErrCompleted
		}
		return Installment{}, ErrOverpay
	}
	return ins, err
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cicilan SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverdue flags active plans whose due date has passed.
func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cicilan SET status = 'overdue', updated_at = NOW()
		 WHERE status = 'active' AND jatuh_tempo < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scan(row pgx.Row) (Installment, error) {
	var ins Installment
	var date, due pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&ins.ID, &ins.Division, &date, &ins.SaleID, &ins.Total, &ins.Paid,
		&due, &ins.Status, &ins.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Installment{}, err
	}
	if date.Valid {
		ins.Date = date.Time
	}
	if due.Valid {
		ins.DueDate = due.Time
	}
	if createdAt.Valid {
		ins.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		ins.UpdatedAt = updatedAt.Time
	}
	return ins, nil
}
