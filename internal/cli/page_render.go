package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/cli/pagination"
	"github.com/rshade/pagesel/internal/selection"
)

const (
	tabPadding     = 2
	maxCellLen     = 40
	truncateSuffix = "..."
)

// recordJSON is one printed record.
type recordJSON struct {
	Selected      bool    `json:"selected"`
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistDisplay *string `json:"artist_display"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

// pageJSON is the JSON document printed by --output json.
type pageJSON struct {
	Pagination pagination.Meta `json:"pagination"`
	Selection  selection.State `json:"selection"`
	Notice     string          `json:"notice,omitempty"`
	Records    []recordJSON    `json:"records"`
}

// ndjsonSummary is the first line printed by --output ndjson.
type ndjsonSummary struct {
	Type       string          `json:"type"`
	Pagination pagination.Meta `json:"pagination"`
	Mode       selection.Mode  `json:"mode"`
	Count      int             `json:"count,omitempty"`
	Total      int             `json:"total_selected"`
	Notice     string          `json:"notice,omitempty"`
}

func renderPage(w io.Writer, format string, view pageView) error {
	switch format {
	case outputFormatJSON:
		return renderPageJSON(w, view)
	case outputFormatNDJSON:
		return renderPageNDJSON(w, view)
	default:
		return renderPageTable(w, view)
	}
}

func toRecords(view pageView) []recordJSON {
	records := make([]recordJSON, len(view.Result.Data))
	for i, a := range view.Result.Data {
		records[i] = recordJSON{
			Selected:      view.Selected[selection.ID(a.ID)],
			ID:            a.ID,
			Title:         a.Title,
			PlaceOfOrigin: a.PlaceOfOrigin,
			ArtistDisplay: a.ArtistDisplay,
			Inscriptions:  a.Inscriptions,
			DateStart:     a.DateStart,
			DateEnd:       a.DateEnd,
		}
	}
	return records
}

// renderPageJSON renders the page as a single indented JSON document.
func renderPageJSON(w io.Writer, view pageView) error {
	doc := pageJSON{
		Pagination: view.Meta,
		Selection:  view.State,
		Notice:     view.Notice,
		Records:    toRecords(view),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// renderPageNDJSON renders a summary line followed by one line per record.
func renderPageNDJSON(w io.Writer, view pageView) error {
	encoder := json.NewEncoder(w)

	summary := ndjsonSummary{
		Type:       "summary",
		Pagination: view.Meta,
		Mode:       view.State.Mode,
		Count:      view.State.Count,
		Total:      view.State.Total,
		Notice:     view.Notice,
	}
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("encoding NDJSON summary: %w", err)
	}

	for _, rec := range toRecords(view) {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("encoding NDJSON record: %w", err)
		}
	}
	return nil
}

// renderPageTable renders the page as an aligned text table.
func renderPageTable(w io.Writer, view pageView) error {
	if len(view.Result.Data) == 0 {
		fmt.Fprintln(w, "No records on this page")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "SEL\tID\tTITLE\tPLACE OF ORIGIN\tARTIST\tINSCRIPTIONS\tSTART\tEND")
		fmt.Fprintln(tw, "---\t--\t-----\t---------------\t------\t------------\t-----\t---")
		for _, a := range view.Result.Data {
			sel := "[ ]"
			if view.Selected[selection.ID(a.ID)] {
				sel = "[x]"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				sel,
				a.ID,
				truncate(a.Title),
				truncate(artic.Text(a.PlaceOfOrigin)),
				truncate(artic.Text(a.ArtistDisplay)),
				truncate(artic.Text(a.Inscriptions)),
				artic.Year(a.DateStart),
				artic.Year(a.DateEnd),
			)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flushing table writer: %w", err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s   %s\n", view.Meta.Report(), view.Meta.PageLabel())

	printer := message.NewPrinter(language.English)
	if view.State.Mode == selection.ModeBulk {
		printer.Fprintf(w, "Selected: %d rows (first %d, %d exceptions)\n",
			view.State.Total, view.State.Count, len(view.State.Included)+len(view.State.Excluded))
	} else {
		printer.Fprintf(w, "Selected: %d rows\n", view.State.Total)
	}
	if view.Notice != "" {
		fmt.Fprintln(w, view.Notice)
	}
	return nil
}

// truncate collapses whitespace and shortens s for table cells.
func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxCellLen {
		return s
	}
	return string(runes[:maxCellLen-len(truncateSuffix)]) + truncateSuffix
}
