package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/selection"
)

// Table column widths.
const (
	colWidthCheck        = 3
	colWidthPlace        = 16
	colWidthArtist       = 28
	colWidthInscriptions = 20
	colWidthYear         = 10
	minTitleWidth        = 20
	tableColumnCount     = 7
	tableCellPadding     = 2

	checkboxOn  = "[x]"
	checkboxOff = "[ ]"
)

const browserHelp = "space toggle • a page • n select first N • c clear • ←/→ page • g/G first/last • q quit"

// formatCount formats integers with thousands separators.
func formatCount(format string, values ...int) string {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return message.NewPrinter(language.English).Sprintf(format, args...)
}

// RenderLoading returns the string to display for a loading screen.
// If loading is nil, it returns the plain text "Loading...".
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s %s\n\n", loading.spinner.View(), loading.message)
}

func (m BrowserModel) columns() []table.Column {
	fixed := colWidthCheck + colWidthPlace + colWidthArtist + colWidthInscriptions + 2*colWidthYear
	titleWidth := max(m.width-fixed-tableColumnCount*tableCellPadding-borderPadding, minTitleWidth)

	return []table.Column{
		{Title: checkboxOff, Width: colWidthCheck},
		{Title: "Title", Width: titleWidth},
		{Title: "Place of Origin", Width: colWidthPlace},
		{Title: "Artist", Width: colWidthArtist},
		{Title: "Inscriptions", Width: colWidthInscriptions},
		{Title: "Start Date", Width: colWidthYear},
		{Title: "End Date", Width: colWidthYear},
	}
}

// rows derives the checkbox column from the tracker on every call.
func (m BrowserModel) rows() []table.Row {
	current := m.loader.Current()
	if current == nil {
		return []table.Row{}
	}

	page := current.Page()
	selected := make(map[selection.ID]struct{}, len(page.IDs))
	for _, id := range m.tracker.ProjectPage(page) {
		selected[id] = struct{}{}
	}

	rows := make([]table.Row, len(current.Data))
	for i, art := range current.Data {
		check := checkboxOff
		if _, ok := selected[selection.ID(art.ID)]; ok {
			check = checkboxOn
		}
		rows[i] = table.Row{
			check,
			singleLine(art.Title),
			singleLine(artic.Text(art.PlaceOfOrigin)),
			singleLine(artic.Text(art.ArtistDisplay)),
			singleLine(artic.Text(art.Inscriptions)),
			artic.Year(art.DateStart),
			artic.Year(art.DateEnd),
		}
	}
	return rows
}

func (m BrowserModel) tableHeight() int {
	return max(m.height-browserChromeHeight, minHeight)
}

func (m BrowserModel) buildTable() table.Model {
	columns := m.columns()
	// The header checkbox mirrors whether the whole page is selected.
	if p, ok := m.currentPage(); ok && m.tracker.PageFullyChecked(p) {
		columns[0].Title = checkboxOn
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.rows()),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

// rebuildTable rebuilds the table for a new size or page, keeping the cursor.
func (m *BrowserModel) rebuildTable() {
	cursor := m.table.Cursor()
	m.table = m.buildTable()
	m.table.SetCursor(max(cursor, 0))
}

// refreshRows re-projects the selection after an edit.
func (m *BrowserModel) refreshRows() {
	m.rebuildTable()
}

// View renders the current view (Bubble Tea interface).
func (m BrowserModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return m.renderHeader() + "\n" + RenderLoading(m.loadingState)
	case ViewStateError:
		return m.renderHeader() + "\n\n" + m.renderError()
	case ViewStatePrompt:
		return m.renderList() + "\n" + m.renderPrompt()
	case ViewStateList:
		return m.renderList()
	default:
		return ""
	}
}

func (m BrowserModel) renderHeader() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("ARTWORKS"))
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render("Selected: "))
	b.WriteString(ValueStyle.Render(formatCount("%d rows", m.tracker.TotalSelected())))

	if m.tracker.Mode() == selection.ModeBulk {
		b.WriteString("  ")
		b.WriteString(SubtleStyle.Render(formatCount("(first %d, %d exceptions)",
			m.tracker.BulkCount(), m.tracker.ExceptionCount())))
	}
	return b.String()
}

func (m BrowserModel) renderList() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	meta := m.meta()
	b.WriteString(LabelStyle.Render(meta.Report()))
	b.WriteString("   ")
	b.WriteString(ValueStyle.Render(meta.PageLabel()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(InfoStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(browserHelp))
	return b.String()
}

func (m BrowserModel) renderPrompt() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("Select first N rows: "))
	b.WriteString(m.textInput.View())
	if m.promptErr != "" {
		b.WriteString("\n")
		b.WriteString(CriticalStyle.Render(m.promptErr))
	}
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("enter apply • esc cancel"))
	return BoxStyle.Render(b.String())
}

func (m BrowserModel) renderError() string {
	var b strings.Builder
	b.WriteString(CriticalStyle.Render("Error Loading Artworks"))
	b.WriteString("\n\n")
	b.WriteString(ValueStyle.Render(errorMessage(m.err)))
	b.WriteString("\n\n")
	b.WriteString(SubtleStyle.Render("r retry • q quit"))
	return BoxStyle.Width(max(m.width-borderPadding, minTitleWidth)).Render(b.String())
}

// errorMessage returns the display text of a fetch error.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var fetchErr *artic.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message
	}
	return err.Error()
}

// singleLine collapses runs of whitespace, including newlines, into one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
