package pembukuan

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
	List(ctx context.Context, filters Filters) ([]Entry, int, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Create(ctx context.Context, e Entry) (Entry, error)
	Update(ctx context.Context, id int64, e Entry) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, keterangan, debit, kredit, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Entry, int, error) {
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

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pembukuan`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM pembukuan` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM pembukuan WHERE id = $1`, id)
	e, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (r *repository) Create(ctx context.Context, e Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO pembukuan (divisi, tanggal, keterangan, debit, kredit)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+columns,
		e.Division, e.Date, e.Notes, e.Debit, e.Credit)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, id int64, e Entry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pembukuan SET divisi = $1, tanggal = $2, keterangan = $3, debit = $4, kredit = $5, updated_at = NOW()
		 WHERE id = $6`,
		e.Division, e.Date, e.Notes, e.Debit, e.Credit, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pembukuan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (Entry, error) {
	var e Entry
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.Division, &date, &e.Notes, &e.Debit, &e.Credit, &createdAt, &updatedAt)
	if err != nil {
		return Entry{}, err
	}
	if date.Valid {
		e.Date = date.Time
	}
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return e, nil
}
