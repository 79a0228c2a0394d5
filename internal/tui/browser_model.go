package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/pagesel/internal/cli/pagination"
	"github.com/rshade/pagesel/internal/logging"
	"github.com/rshade/pagesel/internal/pager"
	"github.com/rshade/pagesel/internal/selection"
)

const (
	// DefaultMaxBulkCount is the largest accepted select-first-N request.
	DefaultMaxBulkCount = 200000

	bulkInputCharLimit = 7
	bulkInputWidth     = 12

	// browserChromeHeight is the number of lines used by header, footer and help.
	browserChromeHeight = 9
)

// Messages shown to the user.
const (
	msgInvalidBulk = "Please enter a valid positive number"
	msgCleared     = "Selection cleared"
)

// PageLoadedMsg carries the result of a page fetch.
type PageLoadedMsg struct {
	Result pager.Result
}

// BrowserConfig configures a BrowserModel.
type BrowserConfig struct {
	// StartPage is the 1-based page loaded first.
	StartPage int
	// PageSize is the requested page size, used until the server reports one.
	PageSize int
	// MaxBulkCount bounds the select-first-N input.
	MaxBulkCount int
}

// BrowserModel is the Bubble Tea model for the paginated artwork browser.
// Selection lives in the tracker and survives page changes; only the page on
// screen is held in memory.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowserModel struct {
	// View state
	state ViewState
	ctx   context.Context // Context for trace ID and fetch cancellation

	// Data
	loader  *pager.Loader
	tracker *selection.Tracker

	// Pagination
	page       int
	pageSize   int
	totalItems int
	totalPages int

	// Interactive components
	table     table.Model
	textInput textinput.Model

	// Display configuration
	width        int
	height       int
	maxBulkCount int

	// Status line and prompt validation message
	notice    string
	promptErr string

	// Loading spinner
	loadingState *LoadingState

	// Error state
	err error
}

// NewBrowserModel creates a browser that starts loading cfg.StartPage.
func NewBrowserModel(
	ctx context.Context,
	loader *pager.Loader,
	tracker *selection.Tracker,
	cfg BrowserConfig,
) BrowserModel {
	if cfg.StartPage < pagination.MinPage {
		cfg.StartPage = pagination.DefaultPage
	}
	if cfg.PageSize < pagination.MinPageSize {
		cfg.PageSize = pagination.DefaultPageSize
	}
	if cfg.MaxBulkCount < 1 {
		cfg.MaxBulkCount = DefaultMaxBulkCount
	}

	m := BrowserModel{
		state:        ViewStateLoading,
		ctx:          ctx,
		loader:       loader,
		tracker:      tracker,
		page:         cfg.StartPage,
		pageSize:     cfg.PageSize,
		maxBulkCount: cfg.MaxBulkCount,
		width:        defaultWidth,
		height:       defaultHeight,
		textInput:    newBulkTextInput(),
		loadingState: NewLoadingState(),
	}
	m.table = m.buildTable()
	return m
}

// newBulkTextInput creates the select-first-N input.
func newBulkTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Number of rows"
	ti.CharLimit = bulkInputCharLimit
	ti.Width = bulkInputWidth
	return ti
}

// Init starts the spinner and the first page fetch (Bubble Tea interface).
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.loadingState.Init(), m.fetchPage(m.page))
}

// fetchPage begins a new loader generation and returns the command that runs it.
func (m BrowserModel) fetchPage(page int) tea.Cmd {
	req := m.loader.Begin(m.ctx, page)
	return func() tea.Msg {
		return PageLoadedMsg{Result: req.Run()}
	}
}

// goToPage switches to the loading state for page. Edits are rejected until
// the page arrives.
func (m *BrowserModel) goToPage(page int) tea.Cmd {
	m.page = page
	m.state = ViewStateLoading
	m.err = nil
	m.loadingState.SetMessage("Loading page " + strconv.Itoa(page) + "...")
	return tea.Batch(m.loadingState.Init(), m.fetchPage(page))
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil
	case PageLoadedMsg:
		return m.handlePageLoaded(msg)
	}

	switch m.state {
	case ViewStateLoading:
		return m.handleLoadingUpdate(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStatePrompt:
		return m.handlePromptUpdate(msg)
	case ViewStateError:
		return m.handleErrorUpdate(msg)
	case ViewStateQuitting:
		return m, nil
	default:
		return m, nil
	}
}

func (m BrowserModel) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	log := m.logger()

	if !m.loader.Accept(msg.Result) {
		log.Debug().
			Ctx(m.ctx).
			Int("page", msg.Result.Page).
			Uint64("generation", msg.Result.Generation).
			Msg("discarding superseded page")
		return m, nil
	}

	if msg.Result.Err != nil {
		log.Error().
			Ctx(m.ctx).
			Err(msg.Result.Err).
			Int("page", msg.Result.Page).
			Msg("page load failed")
		m.err = msg.Result.Err
		m.state = ViewStateError
		return m, nil
	}

	data := msg.Result.Data
	m.totalItems = data.Pagination.Total
	m.totalPages = data.Pagination.TotalPages
	if data.Pagination.Limit > 0 {
		m.pageSize = data.Pagination.Limit
	}

	if m.page > max(m.totalPages, pagination.MinPage) {
		target := pagination.ClampPage(m.page, m.totalPages)
		log.Warn().
			Ctx(m.ctx).
			Err(pagination.ErrPageOutOfRange).
			Int("page", m.page).
			Int("total_pages", m.totalPages).
			Int("target", target).
			Msg("redirecting to last page")
		m.notice = formatCount("Page %d is beyond the last page. Showing page %d.", m.page, target)
		cmd := m.goToPage(target)
		return m, cmd
	}

	m.state = ViewStateList

	log.Debug().
		Ctx(m.ctx).
		Int("page", m.page).
		Int("records", len(data.Data)).
		Int64("duration_ms", msg.Result.Duration.Milliseconds()).
		Msg("page displayed")

	m.rebuildTable()
	m.table.SetCursor(0)
	return m, nil
}

func (m BrowserModel) handleLoadingUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			return m.quit()
		}
		return m, nil
	}
	return m, m.loadingState.Update(msg)
}

func (m BrowserModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		return m.quit()
	case keySpace, keySpaceName:
		m.toggleCursorRow()
		return m, nil
	case keyPageAll:
		m.togglePage()
		return m, nil
	case keyBulk:
		m.state = ViewStatePrompt
		m.promptErr = ""
		m.textInput.SetValue("")
		cmd := m.textInput.Focus()
		return m, cmd
	case keyClear:
		m.tracker.Clear()
		m.notice = msgCleared
		m.logger().Info().Ctx(m.ctx).Str("operation", "clear").Msg("selection cleared")
		m.refreshRows()
		return m, nil
	case keyRight, keyL, keyPgDown:
		if m.page < m.totalPages {
			cmd := m.goToPage(m.page + 1)
			return m, cmd
		}
		return m, nil
	case keyLeft, keyH, keyPgUp:
		if m.page > pagination.MinPage {
			cmd := m.goToPage(m.page - 1)
			return m, cmd
		}
		return m, nil
	case keyFirst:
		if m.page != pagination.MinPage {
			cmd := m.goToPage(pagination.MinPage)
			return m, cmd
		}
		return m, nil
	case keyLast:
		if m.totalPages > 0 && m.page != m.totalPages {
			cmd := m.goToPage(m.totalPages)
			return m, cmd
		}
		return m, nil
	}

	// Forward row navigation to the table
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)
	return m, cmd
}

func (m BrowserModel) handlePromptUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			return m.quit()
		case keyEsc:
			m.closePrompt()
			return m, nil
		case keyEnter:
			m.submitBulk()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m BrowserModel) handleErrorUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			return m.quit()
		case keyRetry:
			cmd := m.goToPage(m.page)
			return m, cmd
		}
	}
	return m, nil
}

func (m BrowserModel) quit() (tea.Model, tea.Cmd) {
	m.state = ViewStateQuitting
	m.loader.Close()
	return m, tea.Quit
}

// currentPage returns the selection.Page on screen. ok is false while no page
// is loaded.
func (m *BrowserModel) currentPage() (selection.Page, bool) {
	current := m.loader.Current()
	if current == nil {
		return selection.Page{}, false
	}
	return current.Page(), true
}

func (m *BrowserModel) toggleCursorRow() {
	p, ok := m.currentPage()
	if !ok || len(p.IDs) == 0 {
		return
	}

	cursor := m.table.Cursor()
	if err := m.tracker.Toggle(p, cursor); err != nil {
		m.logger().Error().Ctx(m.ctx).Err(err).Int("index", cursor).Msg("toggle failed")
		return
	}
	m.notice = ""
	m.refreshRows()
}

func (m *BrowserModel) togglePage() {
	p, ok := m.currentPage()
	if !ok || len(p.IDs) == 0 {
		return
	}

	checked := !m.tracker.PageFullyChecked(p)
	if err := m.tracker.SetPageChecked(p, checked); err != nil {
		m.logger().Error().Ctx(m.ctx).Err(err).Int("page", p.Number).Msg("page toggle failed")
		return
	}
	m.notice = ""
	m.refreshRows()
}

func (m *BrowserModel) closePrompt() {
	m.state = ViewStateList
	m.promptErr = ""
	m.textInput.Blur()
}

// submitBulk parses the prompt and declares a bulk selection clamped to the
// collection size.
func (m *BrowserModel) submitBulk() {
	requested, err := strconv.Atoi(strings.TrimSpace(m.textInput.Value()))
	if err != nil || requested < 1 {
		m.promptErr = msgInvalidBulk
		return
	}
	if requested > m.maxBulkCount {
		m.promptErr = formatCount("Please enter a number no greater than %d", m.maxBulkCount)
		return
	}

	count, clamped, err := m.tracker.DeclareBulkWithin(requested, m.totalItems)
	if err != nil {
		m.promptErr = msgInvalidBulk
		return
	}

	if clamped {
		m.notice = formatCount("Only %d rows available. Selecting all %d rows.", count, count)
	} else {
		m.notice = formatCount("Selected the first %d rows", count)
	}

	m.logger().Info().
		Ctx(m.ctx).
		Str("operation", "declare_bulk").
		Str("mode", m.tracker.Mode().String()).
		Int("requested", requested).
		Int("count", count).
		Bool("clamped", clamped).
		Msg("bulk selection declared")

	m.closePrompt()
	m.refreshRows()
}

// meta returns pagination metadata for the page on screen.
func (m BrowserModel) meta() pagination.Meta {
	return pagination.NewMeta(pagination.Params{Page: m.page, PageSize: m.pageSize}, m.totalItems)
}

func (m BrowserModel) logger() *zerolog.Logger {
	l := logging.ComponentLogger(logging.FromContext(m.ctx), "tui")
	return &l
}

// State returns the current view state.
func (m BrowserModel) State() ViewState {
	return m.state
}

// Page returns the page being shown or loaded.
func (m BrowserModel) Page() int {
	return m.page
}

// Err returns the last fetch error.
func (m BrowserModel) Err() error {
	return m.err
}
