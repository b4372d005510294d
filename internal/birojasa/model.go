package birojasa

import (
	"errors"
	"strings"
	"time"
)

// Status of a service brokerage job. Historical data carries mixed casing
// ("Selesai", "SELESAI"), so comparisons and storage normalise to lowercase.
type Status string

const (
	StatusProses  Status = "proses"
	StatusSelesai Status = "selesai"
)

// NormalizeStatus lowercases and validates a raw status value.
func NormalizeStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusProses, StatusSelesai:
		return s, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Job is one service brokerage order (plat registration, mutation, tax).
// JSON field names follow the biro_jasa table columns.
type Job struct {
	ID            int64     `json:"id"`
	Division      string    `json:"divisi"`
	Date          time.Time `json:"tanggal"`
	ServiceType   string    `json:"jenis_layanan"`
	Plate         string    `json:"plat"`
	Cost          int64     `json:"biaya"`
	EstimatedDone time.Time `json:"estimasi_selesai"`
	Status        Status    `json:"status"`
	Notes         string    `json:"keterangan"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JobForm carries create/update input.
type JobForm struct {
	Division      string `json:"divisi" validate:"required,oneof=sport start"`
	Date          string `json:"tanggal" validate:"required,datetime=2006-01-02"`
	ServiceType   string `json:"jenis_layanan" validate:"required,max=100"`
	Plate         string `json:"plat" validate:"required,max=20"`
	Cost          int64  `json:"biaya" validate:"required,min=1"`
	EstimatedDone string `json:"estimasi_selesai" validate:"omitempty,datetime=2006-01-02"`
	Notes         string `json:"keterangan" validate:"max=500"`
}

// StatusForm updates a job's status.
type StatusForm struct {
	Status string `json:"status" validate:"required"`
}

// Filters narrows job listings.
type Filters struct {
	Division string
	Month    int
	Year     int
	Status   string
	Search   string
	Page     int
	Limit    int
}

var (
	ErrNotFound      = errors.New("biro jasa: job not found")
	ErrUnknownStatus = errors.New("biro jasa: unknown status")
)
