package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageLimit applies when a request carries no usable limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps a single page.
	MaxPageLimit = 1000
)

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection accepts asc/desc in any case; empty yields def.
func ParseSortDirection(s string, def SortDirection) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "ASC":
		return SortAsc, nil
	case "DESC":
		return SortDesc, nil
	}
	return "", NewValidationError("sort_direction", fmt.Sprintf("expected ASC or DESC, got %q", s))
}

// Sort is one ordering key.
type Sort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// PageRequest selects a window of rows. Page, when positive, takes precedence
// over Offset.
type PageRequest struct {
	Offset int
	Page   int
	Limit  int
	Sort   []Sort
	Search string
}

// Normalize applies defaults: a non-positive limit becomes DefaultPageLimit,
// a positive page is converted to an offset.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Page > 0 {
		p.Offset = (p.Page - 1) * p.Limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Page = p.Offset/p.Limit + 1
	return p
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Rows       []T   `json:"rows"`
	TotalRows  int64 `json:"totalRows"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles page metadata for rows fetched with req.
func NewPage[T any](rows []T, total int64, req PageRequest) *Page[T] {
	req = req.Normalize()
	if rows == nil {
		rows = []T{}
	}
	limit := int64(req.Limit)
	return &Page[T]{
		Rows:       rows,
		TotalRows:  total,
		Offset:     req.Offset,
		Limit:      req.Limit,
		Page:       req.Page,
		TotalPages: int((total + limit - 1) / limit),
	}
}
