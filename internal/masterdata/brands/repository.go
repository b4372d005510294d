package brands

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pandawa-motor/pandawa/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error)
	Get(ctx context.Context, id int64) (Brand, error)
	Create(ctx context.Context, brand Brand) (Brand, error)
	Update(ctx context.Context, id int64, brand Brand) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Brand, int, error) {
	query := `SELECT id, name, country, created_at, updated_at FROM brands WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM brands WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND name ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	query += ` ORDER BY name ` + dir

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, 0, err
		}
		brands = append(brands, b)
	}
	return brands, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Brand, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, country, created_at, updated_at FROM brands WHERE id = $1`, id)
	b, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, brand Brand) (Brand, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO brands (name, country) VALUES ($1, $2) RETURNING id, name, country, created_at, updated_at`,
		brand.Name, brand.Country)
	created, err := scanBrand(row)
	if err != nil {
		return Brand{}, mapConstraint(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, brand Brand) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE brands SET name = $1, country = $2, updated_at = NOW() WHERE id = $3`,
		brand.Name, brand.Country, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanBrand(row pgx.Row) (Brand, error) {
	var b Brand
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&b.ID, &b.Name, &b.Country, &createdAt, &updatedAt); err != nil {
		return Brand{}, err
	}
	if createdAt.Valid {
		b.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		b.UpdatedAt = updatedAt.Time
	}
	return b, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicate
		case "23503":
			return shared.ErrInUse
		}
	}
	return err
}
