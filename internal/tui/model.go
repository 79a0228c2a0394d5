// Package tui implements the interactive artwork browser.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewState is the current screen of a model.
type ViewState int

const (
	// ViewStateLoading shows a spinner while a page fetch is pending.
	ViewStateLoading ViewState = iota
	// ViewStateList shows the current page.
	ViewStateList
	// ViewStatePrompt shows the select-first-N input over the current page.
	ViewStatePrompt
	// ViewStateError shows a fetch error with a retry hint.
	ViewStateError
	// ViewStateQuitting is entered just before the program exits.
	ViewStateQuitting
)

// String returns the state name used in logs.
func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStatePrompt:
		return "prompt"
	case ViewStateError:
		return "error"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Key bindings.
const (
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyEnter     = "enter"
	keyEsc       = "esc"
	keySpace     = " "
	keySpaceName = "space"
	keyPageAll   = "a"
	keyBulk      = "n"
	keyClear     = "c"
	keyRetry     = "r"
	keyRight     = "right"
	keyLeft      = "left"
	keyL         = "l"
	keyH         = "h"
	keyPgDown    = "pgdown"
	keyPgUp      = "pgup"
	keyFirst     = "g"
	keyLast      = "G"
)

// Layout defaults.
const (
	defaultWidth  = 120
	defaultHeight = 30
	minHeight     = 3
	borderPadding = 2
)

// LoadingState holds the spinner shown while data loads.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a LoadingState with the default message.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSpinner)
	return &LoadingState{
		spinner: s,
		message: "Loading artworks...",
	}
}

// SetMessage replaces the text shown next to the spinner.
func (l *LoadingState) SetMessage(msg string) {
	l.message = msg
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(tick)
	return cmd
}
