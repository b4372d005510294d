package assets

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
	List(ctx context.Context, filters Filters) ([]Asset, int, error)
	Get(ctx context.Context, id int64) (Asset, error)
	Create(ctx context.Context, a Asset) (Asset, error)
	SetPrice(ctx context.Context, id int64, price int64, notes string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, company_id, nama, harga, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Asset, int, error) {
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
	if filters.CompanyID > 0 {
		where += ` AND company_id = ` + arg(filters.CompanyID)
	}
	if filters.Search != "" {
		where += ` AND nama ILIKE ` + arg("%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM assets` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, a)
	}
	return assets, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM assets WHERE id = $1`, id)
	a, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a Asset) (Asset, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO assets (divisi, tanggal, company_id, nama, harga, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+columns,
		a.Division, a.Date, a.CompanyID, a.Name, a.Price, a.Notes)
	return scan(row)
}

func (r *repository) SetPrice(ctx context.Context, id int64, price int64, notes string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assets SET harga = $1, keterangan = COALESCE(NULLIF($2, ''), keterangan), updated_at = NOW()
		 WHERE id = $3`,
		price, notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (Asset, error) {
	var a Asset
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&a.ID, &a.Division, &date, &a.CompanyID, &a.Name, &a.Price, &a.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Asset{}, err
	}
	if date.Valid {
		a.Date = date.Time
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}
