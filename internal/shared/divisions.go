package shared

import (
	"errors"
	"strings"
)

// Division is the top-level business-unit tag partitioning most records.
type Division string

const (
	DivisionSport Division = "sport"
	DivisionStart Division = "start"
	// DivisionAll is accepted by read-only queries to span both units.
	DivisionAll Division = "all"
)

// ErrUnknownDivision indicates a division outside the known set.
var ErrUnknownDivision = errors.New("unknown division")

// ParseDivision normalises casing and validates the tag. allowAll permits the
// cross-division wildcard used by previews and listings.
func ParseDivision(raw string, allowAll bool) (Division, error) {
	switch d := Division(strings.ToLower(strings.TrimSpace(raw))); d {
	case DivisionSport, DivisionStart:
		return d, nil
	case DivisionAll:
		if allowAll {
			return d, nil
		}
		return "", ErrUnknownDivision
	default:
		return "", ErrUnknownDivision
	}
}
