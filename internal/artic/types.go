package artic

import (
	"strconv"
	"strings"

	"github.com/rshade/pagesel/internal/selection"
)

// DefaultFields is the field projection requested from the API.
//
//nolint:gochecknoglobals // Read-only default.
var DefaultFields = []string{
	"id",
	"title",
	"place_of_origin",
	"artist_display",
	"inscriptions",
	"date_start",
	"date_end",
}

// Artwork is one record of the collection. Nullable API fields are pointers.
type Artwork struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistDisplay *string `json:"artist_display"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

// Pagination is the pagination envelope returned with every page.
type Pagination struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// PageResult is a single fetched page.
type PageResult struct {
	Pagination Pagination `json:"pagination"`
	Data       []Artwork  `json:"data"`
}

// IDs returns the record IDs in page order.
func (r *PageResult) IDs() []selection.ID {
	ids := make([]selection.ID, len(r.Data))
	for i, a := range r.Data {
		ids[i] = selection.ID(a.ID)
	}
	return ids
}

// Page returns the selection.Page for this result.
func (r *PageResult) Page() selection.Page {
	return selection.Page{
		Number: r.Pagination.CurrentPage,
		Size:   r.Pagination.Limit,
		IDs:    r.IDs(),
	}
}

// Text returns s, or "N/A" when s is nil or blank.
func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "N/A"
	}
	return *s
}

// Year returns the year as a string, or "N/A" when unknown.
func Year(y *int) string {
	if y == nil {
		return "N/A"
	}
	return strconv.Itoa(*y)
}
