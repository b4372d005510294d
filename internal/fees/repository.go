package fees

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
	List(ctx context.Context, filters Filters) ([]Fee, int, error)
	Get(ctx context.Context, id int64) (Fee, error)
	Create(ctx context.Context, f Fee) (Fee, error)
	Update(ctx context.Context, id int64, f Fee) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, penjualan_id, penerima, jumlah, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Fee, int, error) {
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
	if filters.SaleID > 0 {
		where += ` AND penjualan_id = ` + arg(filters.SaleID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fee_penjualan`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM fee_penjualan` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var fees []Fee
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		fees = append(fees, f)
	}
	return fees, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Fee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM fee_penjualan WHERE id = $1`, id)
	f, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Fee{}, ErrNotFound
	}
	return f, err
}

func (r *repository) Create(ctx context.Context, f Fee) (Fee, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO fee_penjualan (divisi, tanggal, penjualan_id, penerima, jumlah, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+columns,
		f.Division, f.Date, f.SaleID, f.Recipient, f.Amount, f.Notes)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, id int64, f Fee) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE fee_penjualan SET divisi = $1, tanggal = $2, penjualan_id = $3, penerima = $4,
		 jumlah = $5, keterangan = $6, updated_at = NOW() WHERE id = $7`,
		f.Division, f.Date, f.SaleID, f.Recipient, f.Amount, f.Notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fee_penjualan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (Fee, error) {
	var f Fee
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&f.ID, &f.Division, &date, &f.SaleID, &f.Recipient, &f.Amount, &f.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Fee{}, err
	}
	if date.Valid {
		f.Date = date.Time
	}
	if createdAt.Valid {
		f.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		f.UpdatedAt = updatedAt.Time
	}
	return f, nil
}
