package sales

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
	List(ctx context.Context, filters Filters) ([]Sale, int, error)
	Get(ctx context.Context, id int64) (Sale, error)
	Create(ctx context.Context, s Sale) (Sale, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, pembelian_id, pembeli, jenis_pembayaran, harga_jual, dp, status, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Sale, int, error) {
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
	if filters.Search != "" {
		where += ` AND pembeli ILIKE ` + arg("%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM penjualan`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM penjualan` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM penjualan WHERE id = $1`, id)
	s, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, s Sale) (Sale, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO penjualan (divisi, tanggal, pembelian_id, pembeli, jenis_pembayaran, harga_jual, dp, status, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+columns,
		s.Division, s.Date, s.PurchaseID, s.Buyer, s.PaymentType, s.Price, s.DownPayment, s.Status, s.Notes)
	return scan(row)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM penjualan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE penjualan SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (Sale, error) {
	var s Sale
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&s.ID, &s.Division, &date, &s.PurchaseID, &s.Buyer, &s.PaymentType,
		&s.Price, &s.DownPayment, &s.Status, &s.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Sale{}, err
	}
	if date.Valid {
		s.Date = date.Time
	}
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return s, nil
}
