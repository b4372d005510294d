package operational

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
	List(ctx context.Context, filters Filters) ([]Expense, int, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Create(ctx context.Context, e Expense) (Expense, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, company_id, kategori, jumlah, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Expense, int, error) {
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
	if filters.Category != "" {
		where += ` AND kategori = ` + arg(filters.Category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM operational`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM operational` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, e)
	}
	return expenses, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM operational WHERE id = $1`, id)
	e, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrNotFound
	}
	return e, err
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO operational (divisi, tanggal, company_id, kategori, jumlah, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+columns,
		e.Division, e.Date, e.CompanyID, e.Category, e.Amount, e.Notes)
	return scan(row)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM operational WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (Expense, error) {
	var e Expense
	var date pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.Division, &date, &e.CompanyID, &e.Category, &e.Amount, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Expense{}, err
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
