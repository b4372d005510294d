package modal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pandawa-motor/pandawa/internal/platform/db"
)

// Repository persists ledger entries and the companies balance columns.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	AppendEntry(ctx context.Context, entry Entry) (Entry, error)
	AddToBalance(ctx context.Context, companyID int64, account Account, amount int64) (int64, error)
	Balances(ctx context.Context, companyID int64) (Balances, error)
	SumLedger(ctx context.Context, companyID int64, account Account) (int64, error)
	ListEntries(ctx context.Context, companyID int64, limit, offset int) ([]Entry, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn inside one repeatable-read transaction so the ledger append
// and the balance update commit together.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) AppendEntry(ctx context.Context, entry Entry) (Entry, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO modal_ledger (company_id, account, amount, reason, ref, actor_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		 RETURNING id, created_at`,
		entry.CompanyID, entry.Account, entry.Amount, entry.Reason, entry.Ref, entry.ActorID)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Entry{}, ErrCompanyNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) AddToBalance(ctx context.Context, companyID int64, account Account, amount int64) (int64, error) {
	var column string
	switch account {
	case AccountModal:
		column = "modal"
	case AccountProfit:
		column = "profit"
	default:
		return 0, errors.New("modal: unknown account")
	}
	var balance int64
	err := r.db.QueryRow(ctx,
		`UPDATE companies SET `+column+` = `+column+` + $1, updated_at = NOW() WHERE id = $2 RETURNING `+column,
		amount, companyID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrCompanyNotFound
	}
	return balance, err
}

func (r *repository) Balances(ctx context.Context, companyID int64) (Balances, error) {
	b := Balances{CompanyID: companyID}
	err := r.db.QueryRow(ctx,
		`SELECT modal, profit FROM companies WHERE id = $1`, companyID).Scan(&b.Modal, &b.Profit)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balances{}, ErrCompanyNotFound
	}
	return b, err
}

// SumLedger recomputes a balance from its entries. The integrity cron
// compares this against the companies column.
func (r *repository) SumLedger(ctx context.Context, companyID int64, account Account) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM modal_ledger WHERE company_id = $1 AND account = $2`,
		companyID, account).Scan(&sum)
	return sum, err
}

func (r *repository) ListEntries(ctx context.Context, companyID int64, limit, offset int) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_id, account, amount, reason, COALESCE(ref, ''), actor_id, created_at
		 FROM modal_ledger WHERE company_id = $1
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Account, &e.Amount, &e.Reason, &e.Ref, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
