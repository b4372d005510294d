package branches

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
	List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error)
	Get(ctx context.Context, id int64) (Branch, error)
	Create(ctx context.Context, branch Branch) (Branch, error)
	Update(ctx context.Context, id int64, branch Branch) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const branchColumns = `id, company_id, name, address, phone, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM branches WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += ` AND name ILIKE $` + strconv.Itoa(len(countArgs)+1)
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	if filters.CompanyID != nil {
		argCount++
		query += ` AND company_id = $` + strconv.Itoa(argCount)
		countQuery += ` AND company_id = $` + strconv.Itoa(len(countArgs)+1)
		args = append(args, *filters.CompanyID)
		countArgs = append(countArgs, *filters.CompanyID)
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

	var branches []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, b)
	}
	return branches, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Branch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id)
	b, err := scanBranch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, branch Branch) (Branch, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO branches (company_id, name, address, phone) VALUES ($1, $2, $3, $4) RETURNING `+branchColumns,
		branch.CompanyID, branch.Name, branch.Address, branch.Phone)
	created, err := scanBranch(row)
	if err != nil {
		return Branch{}, mapConstraint(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, branch Branch) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE branches SET company_id = $1, name = $2, address = $3, phone = $4, updated_at = NOW() WHERE id = $5`,
		branch.CompanyID, branch.Name, branch.Address, branch.Phone, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanBranch(row pgx.Row) (Branch, error) {
	var b Branch
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &b.Phone, &createdAt, &updatedAt); err != nil {
		return Branch{}, err
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
