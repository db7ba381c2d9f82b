package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Pagination defaults and sort orders.
const (
	DefaultSortOrder = SortOrderAsc
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
	MaxPageSize      = 1000
)

var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'revenue:desc')")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds the CLI paging and sorting flags.
type Params struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int

	SortField string
	SortOrder string
}

// Validate checks that the flags are non-negative and not mixed.
func (p Params) Validate() error {
	switch {
	case p.Limit < 0:
		return errors.New("limit cannot be negative")
	case p.Offset < 0:
		return errors.New("offset cannot be negative")
	case p.Page < 0:
		return errors.New("page cannot be negative")
	case p.PageSize < 0:
		return errors.New("page-size cannot be negative")
	case p.PageSize > MaxPageSize:
		return fmt.Errorf("page-size must be at most %d", MaxPageSize)
	case p.Page > 0 && p.Offset > 0:
		return errors.New("page and offset parameters are mutually exclusive")
	case p.Page == 0 && p.PageSize > 0:
		return errors.New("page must be specified when using page-size")
	case p.PageSize == 0 && p.Page > 0:
		return errors.New("page-size must be specified when using page")
	}
	return nil
}

// IsPageBased reports whether --page is in effect.
func (p Params) IsPageBased() bool { return p.Page > 0 }

// IsEnabled reports whether any paging flag is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0
}

// OffsetLimit returns the effective window. A zero limit means "to the end".
//
//nolint:nonamedreturns // Named returns document the pair.
func (p Params) OffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize, p.PageSize
	}
	return p.Offset, p.Limit
}

// ParseSort parses "field" or "field:order". An empty string means no sorting.
//
//nolint:nonamedreturns // Named returns document the pair.
func ParseSort(s string) (field, order string, err error) {
	if s == "" {
		return "", DefaultSortOrder, nil
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		field, order = strings.TrimSpace(parts[0]), DefaultSortOrder
	case 2:
		field, order = strings.TrimSpace(parts[0]), strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, s)
	}
	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}

// Apply returns the window of items selected by p. Page-based requests past
// the end are pinned to the last page; offset-based ones return nothing.
func Apply[T any](p Params, items []T) []T {
	if len(items) == 0 {
		return items
	}
	offset, limit := p.OffsetLimit()
	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / p.PageSize) * p.PageSize
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}
