package shared

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CompanyID *int64
}

// ParseListFilters reads standard filters from the query string.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	f := ListFilters{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort_by"),
		SortDir: strings.ToLower(q.Get("sort_dir")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
	if raw := q.Get("company_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.CompanyID = &id
		}
	}
	return f
}

// Offset converts page/limit into the SQL offset.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
