package closure

import (
	"errors"
	"time"

	"github.com/pandawa-motor/pandawa/internal/shared"
)

// EntityKind enumerates the record kinds relocated by a month-end close.
type EntityKind string

const (
	KindPembelian    EntityKind = "pembelian"
	KindPenjualan    EntityKind = "penjualan"
	KindPembukuan    EntityKind = "pembukuan"
	KindCicilan      EntityKind = "cicilan"
	KindFeePenjualan EntityKind = "fee_penjualan"
	KindOperational  EntityKind = "operational"
	KindBiroJasa     EntityKind = "biro_jasa"
	KindAssets       EntityKind = "assets"
)

// Kinds lists every movable kind in wire order.
var Kinds = []EntityKind{
	KindPembelian,
	KindPenjualan,
	KindPembukuan,
	KindCicilan,
	KindFeePenjualan,
	KindOperational,
	KindBiroJasa,
	KindAssets,
}

// RecordCounts carries per-kind row counts through the wire contract.
type RecordCounts struct {
	Pembelian    int64 `json:"pembelian"`
	Penjualan    int64 `json:"penjualan"`
	Pembukuan    int64 `json:"pembukuan"`
	Cicilan      int64 `json:"cicilan"`
	FeePenjualan int64 `json:"fee_penjualan"`
	Operational  int64 `json:"operational"`
	BiroJasa     int64 `json:"biro_jasa"`
	Assets       int64 `json:"assets"`
}

// Get returns the count for a kind.
func (c RecordCounts) Get(kind EntityKind) int64 {
	switch kind {
	case KindPembelian:
		return c.Pembelian
	case KindPenjualan:
		return c.Penjualan
	case KindPembukuan:
		return c.Pembukuan
	case KindCicilan:
		return c.Cicilan
	case KindFeePenjualan:
		return c.FeePenjualan
	case KindOperational:
		return c.Operational
	case KindBiroJasa:
		return c.BiroJasa
	case KindAssets:
		return c.Assets
	default:
		return 0
	}
}

// Set stores the count for a kind.
func (c *RecordCounts) Set(kind EntityKind, n int64) {
	switch kind {
	case KindPembelian:
		c.Pembelian = n
	case KindPenjualan:
		c.Penjualan = n
	case KindPembukuan:
		c.Pembukuan = n
	case KindCicilan:
		c.Cicilan = n
	case KindFeePenjualan:
		c.FeePenjualan = n
	case KindOperational:
		c.Operational = n
	case KindBiroJasa:
		c.BiroJasa = n
	case KindAssets:
		c.Assets = n
	}
}

// Total sums every kind.
func (c RecordCounts) Total() int64 {
	var total int64
	for _, kind := range Kinds {
		total += c.Get(kind)
	}
	return total
}

// PrimaryTotal sums the kinds whose emptiness drives the "nothing to move"
// advisory: unit purchases, sales, and installments. Secondary kinds do not
// suppress the advisory.
func (c RecordCounts) PrimaryTotal() int64 {
	return c.Pembelian + c.Penjualan + c.Cicilan
}

// Record represents one finalised accounting period. Created by a successful
// close, never mutated afterwards, removed again by a restore.
type Record struct {
	ID        int64        `json:"id"`
	Month     int          `json:"closure_month"`
	Year      int          `json:"closure_year"`
	ClosedAt  time.Time    `json:"closure_date"`
	Notes     string       `json:"notes,omitempty"`
	CreatedBy *int64       `json:"created_by,omitempty"`
	Moved     RecordCounts `json:"records_moved"`
}

// Period returns the record's period address.
func (r Record) Period() shared.Period {
	return shared.Period{Month: r.Month, Year: r.Year}
}

// StatusResult answers the closure-existence read.
type StatusResult struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	IsClosed bool    `json:"is_closed"`
	Record   *Record `json:"record,omitempty"`
}

// PreviewResult carries the read-only eligible-row counts for a period.
type PreviewResult struct {
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Division      shared.Division `json:"division"`
	Counts        RecordCounts    `json:"counts"`
	NothingToMove bool            `json:"nothing_to_move"`
}

// CloseInput bundles parameters for closing a month.
type CloseInput struct {
	Month   int    `json:"month" validate:"required,min=1,max=12"`
	Year    int    `json:"year" validate:"required,min=2020,max=2030"`
	Notes   string `json:"notes" validate:"max=500"`
	ActorID int64  `json:"-"`
}

// CloseResult is the payload returned by a successful close.
type CloseResult struct {
	Month        int          `json:"month"`
	Year         int          `json:"year"`
	RecordsMoved RecordCounts `json:"records_moved"`
}

// RestoreInput bundles parameters for restoring a closed month. Unlike close,
// a concrete division is mandatory.
type RestoreInput struct {
	Month    int    `json:"month" validate:"required,min=1,max=12"`
	Year     int    `json:"year" validate:"required,min=2020,max=2030"`
	Division string `json:"division" validate:"required"`
	ActorID  int64  `json:"-"`
}

// RestoreResult is the payload returned by a successful restore.
type RestoreResult struct {
	Month           int          `json:"month"`
	Year            int          `json:"year"`
	Division        string       `json:"division"`
	RecordsRestored RecordCounts `json:"records_restored"`
}

// ErrAlreadyClosed is returned when closing a period that already has a
// closure record. Enforced by the unique index on (closure_month,
// closure_year); the status endpoint is advisory only.
var ErrAlreadyClosed = errors.New("closure: period already closed")

// ErrNotClosed is returned when restoring a period without a closure record.
var ErrNotClosed = errors.New("closure: period is not closed")

// ErrDivisionRequired is returned when a restore omits its division.
var ErrDivisionRequired = errors.New("closure: division required")
