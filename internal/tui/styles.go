package tui

import "github.com/charmbracelet/lipgloss"

// Colors.
const (
	ColorHeader   = lipgloss.Color("39")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("255")
	ColorInfo     = lipgloss.Color("86")
	ColorCritical = lipgloss.Color("196")
	ColorSubtle   = lipgloss.Color("241")
	ColorBorder   = lipgloss.Color("63")
	ColorSpinner  = lipgloss.Color("205")
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorValue)
	InfoStyle   = lipgloss.NewStyle().Foreground(ColorInfo)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCritical)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorHeader).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorSubtle).
				BorderBottom(true).
				Padding(0, 1)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(false)
)
