package birojasa

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context, filters Filters) ([]Job, int, error)
	Get(ctx context.Context, id int64) (Job, error)
	Create(ctx context.Context, j Job) (Job, error)
	Update(ctx context.Context, id int64, j Job) error
	SetStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, divisi, tanggal, jenis_layanan, plat, biaya, estimasi_selesai, status, keterangan, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters Filters) ([]Job, int, error) {
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
		// Legacy rows carry mixed casing.
		where += ` AND lower(status) = ` + arg(strings.ToLower(filters.Status))
	}
	if filters.Search != "" {
		where += ` AND plat ILIKE ` + arg("%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM biro_jasa`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM biro_jasa` + where + ` ORDER BY tanggal DESC, id DESC`
	query += ` LIMIT ` + arg(filters.Limit) + ` OFFSET ` + arg((filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM biro_jasa WHERE id = $1`, id)
	j, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (r *repository) Create(ctx context.Context, j Job) (Job, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO biro_jasa (divisi, tanggal, jenis_layanan, plat, biaya, estimasi_selesai, status, keterangan)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+columns,
		j.Division, j.Date, j.ServiceType, j.Plate, j.Cost, nullableDate(j.EstimatedDone), j.Status, j.Notes)
	return scan(row)
}

func (r *repository) Update(ctx context.Context, id int64, j Job) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE biro_jasa SET divisi = $1, tanggal = $2, jenis_layanan = $3, plat = $4, biaya = $5,
		 estimasi_selesai = $6, keterangan = $7, updated_at = NOW() WHERE id = $8`,
		j.Division, j.Date, j.ServiceType, j.Plate, j.Cost, nullableDate(j.EstimatedDone), j.Notes, id)
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
		`UPDATE biro_jasa SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM biro_jasa WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: !t.IsZero()}
}

func scan(row pgx.Row) (Job, error) {
	var j Job
	var date, estimated pgtype.Date
	var rawStatus string
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&j.ID, &j.Division, &date, &j.ServiceType, &j.Plate, &j.Cost,
		&estimated, &rawStatus, &j.Notes, &createdAt, &updatedAt)
	if err != nil {
		return Job{}, err
	}
	// Normalise legacy casing on the way out.
	if status, nerr := NormalizeStatus(rawStatus); nerr == nil {
		j.Status = status
	} else {
		j.Status = Status(strings.ToLower(rawStatus))
	}
	if date.Valid {
		j.Date = date.Time
	}
	if estimated.Valid {
		j.EstimatedDone = estimated.Time
	}
	if createdAt.Valid {
		j.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		j.UpdatedAt = updatedAt.Time
	}
	return j, nil
}
