package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/pagesel/internal/cli/pagination"
	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/internal/logging"
	"github.com/rshade/pagesel/internal/pager"
	"github.com/rshade/pagesel/internal/selection"
	"github.com/rshade/pagesel/internal/tui"
)

// ErrNotTerminal is returned when browse runs without an interactive terminal.
var ErrNotTerminal = errors.New("browse requires an interactive terminal; use 'pagesel page' instead")

// NewBrowseCmd creates the interactive browse command.
func NewBrowseCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the collection interactively",
		Long: `Opens an interactive table showing one page of the collection at a time.

Rows can be selected individually, a whole page at a time, or in bulk with
"select first N". Selections are kept while moving between pages; only the
page on screen is loaded.`,
		Example: `  # Start on the first page
  pagesel browse

  # Start on page 10
  pagesel browse --page 10`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, page)
		},
	}

	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "page to open first")

	return cmd
}

func runBrowse(cmd *cobra.Command, page int) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return ErrNotTerminal
	}

	cfg := config.GetGlobalConfig()
	params := pagination.Params{Page: page, PageSize: cfg.UI.PageSize}
	if err := params.Validate(); err != nil {
		return err
	}

	loader := pager.NewLoader(newClient(cfg, cmd.Root().Version))
	defer loader.Close()
	tracker := selection.NewTracker()

	model := tui.NewBrowserModel(ctx, loader, tracker, tui.BrowserConfig{
		StartPage:    params.Page,
		PageSize:     params.PageSize,
		MaxBulkCount: cfg.UI.MaxBulkCount,
	})

	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("operation", "browse").
		Int("page", params.Page).
		Int("page_size", params.PageSize).
		Msg("starting browser")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "cli").
		Str("operation", "browse").
		Str("mode", tracker.Mode().String()).
		Int("count", tracker.TotalSelected()).
		Msg("browser closed")

	printer := message.NewPrinter(language.English)
	_, err := printer.Fprintf(cmd.OutOrStdout(), "Selected: %d rows\n", tracker.TotalSelected())
	return err
}
