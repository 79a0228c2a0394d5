package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Pagination defaults and validation limits.
const (
	DefaultPage     = 1
	MinPage         = 1
	DefaultPageSize = 12
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Common validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = fmt.Errorf("page-size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrPageOutOfRange  = errors.New("page is beyond the last page")
	ErrInvalidIDList   = errors.New("invalid id list: use comma-separated integers (e.g., '27992,28560')")
)

// Params holds the page-based pagination flags.
type Params struct {
	// Page is the 1-based page number.
	Page int

	// PageSize is the number of records per page.
	PageSize int
}

// Validate checks that the page and page size are in range.
func (p Params) Validate() error {
	if p.Page < MinPage {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p.Page)
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	return nil
}

// Offset returns the global position of the first record on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates the total number of pages for totalItems.
func (p Params) CalculateTotalPages(totalItems int) int {
	if totalItems <= 0 || p.PageSize <= 0 {
		return 0
	}
	pages := totalItems / p.PageSize
	if totalItems%p.PageSize > 0 {
		pages++
	}
	return pages
}

// ClampPage returns page limited to [MinPage, totalPages]. With no pages it
// returns MinPage.
func ClampPage(page, totalPages int) int {
	if page < MinPage || totalPages < MinPage {
		return MinPage
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// ParseIDList parses a comma-separated list of record IDs.
// Empty elements are ignored; an empty string yields no IDs.
func ParseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIDList, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
