package pagination

import (
	"fmt"
)

// Meta describes one page of a paginated collection.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	First       int  `json:"first"        yaml:"first"`
	Last        int  `json:"last"         yaml:"last"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta creates pagination metadata from parameters and the total count.
// First and Last are 1-based positions of the records shown on the page,
// both 0 when the page is empty.
func NewMeta(params Params, totalCount int) Meta {
	totalPages := params.CalculateTotalPages(totalCount)

	first, last := 0, 0
	if offset := params.Offset(); offset < totalCount {
		first = offset + 1
		last = min(offset+params.PageSize, totalCount)
	}

	return Meta{
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		First:       first,
		Last:        last,
		HasPrevious: params.Page > MinPage,
		HasNext:     params.Page < totalPages,
	}
}

// Report returns the human-readable range line shown under a page.
func (m Meta) Report() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", m.First, m.Last, m.TotalItems)
}

// PageLabel returns the "Page p/P" indicator.
func (m Meta) PageLabel() string {
	return fmt.Sprintf("Page %d/%d", m.CurrentPage, max(m.TotalPages, 1))
}
