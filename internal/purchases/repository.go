package purchases

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
	List(ctx context.Context, filters Filters) ([]Purchase, int, error)
	Get(ctx context.Context, id int64) (Purchase, error)
	Create(ctx context.Context, p Purchase) (Purchase, error)
	Update(ctx context.Context, id int64, p Purchase) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, from, to Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, brand_id, jenis_motor, tahun, warna, plat, harga_beli, status, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Purchase, int, error) {
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
		p := arg("%" + filters.Search + "%")
		where += ` AND (plat ILIKE ` + p + ` OR jenis_motor ILIKE ` + p + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pembelian`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM pembelian` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	return purchases, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Purchase, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM pembelian WHERE id = $1`, id)
	p, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Purchase) (Purchase, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO pembelian (divisi, tanggal, brand_id, jenis_motor, tahun, warna, plat, harga_beli, status, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+columns,
		p.Division, p.Date, p.BrandID, p.Model, p.Year, p.Color, p.Plate, p.PurchasePrice, p.Status, p.Notes)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, id int64, p Purchase) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pembelian SET divisi = $1, tanggal = $2, brand_id = $3, jenis_motor = $4, tahun = $5,
		 warna = $6, plat = $7, harga_beli = $8, keterangan = $9, updated_at = NOW()
		 WHERE id = $10`,
		p.Division, p.Date, p.BrandID, p.Model, p.Year, p.Color, p.Plate, p.PurchasePrice, p.Notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pembelian WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus transitions a unit between ready and sold. The from guard keeps
// two concurrent sales from claiming the same unit.
func (r *repository) SetStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pembelian SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadySold
	}
	return nil
}

func scan(row pgx.Row) (Purchase, error) {
	var p Purchase
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.Division, &date, &p.BrandID, &p.Model, &p.Year, &p.Color, &p.Plate,
		&p.PurchasePrice, &p.Status, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Purchase{}, err
	}
	if date.Valid {
		p.Date = date.Time
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}
