package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/cli/pagination"
	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/internal/logging"
	"github.com/rshade/pagesel/internal/selection"
)

// Output formats for the page command.
const (
	outputFormatTable  = "table"
	outputFormatJSON   = "json"
	outputFormatNDJSON = "ndjson"
)

type pageOptions struct {
	page        int
	output      string
	selectFirst int
	check       string
}

// NewPageCmd creates the non-interactive page command.
func NewPageCmd() *cobra.Command {
	var opts pageOptions

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print one page of the collection with its selection state",
		Long: `Fetches exactly one page and prints it with a selection column.

--select-first declares a bulk selection of the first N records of the whole
collection (clamped to its size). --check replaces the checked rows of the
printed page with the given IDs, the same way unticking and ticking boxes on
that page would.`,
		Example: `  # Print the first page
  pagesel page

  # Select the first 30 records and show page 3
  pagesel page --page 3 --select-first 30

  # Bulk select 30, then keep only two rows checked on page 3
  pagesel page --page 3 --select-first 30 --check 27992,28560

  # Emit NDJSON for scripting
  pagesel page --output ndjson`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("select-first") && opts.selectFirst < 1 {
				return fmt.Errorf("--select-first: %w: got %d", selection.ErrInvalidBulkCount, opts.selectFirst)
			}
			return runPage(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", pagination.DefaultPage, "page to print")
	cmd.Flags().StringVar(&opts.output, "output", outputFormatTable, "output format: table, json, ndjson")
	cmd.Flags().IntVar(&opts.selectFirst, "select-first", 0, "select the first N records of the collection")
	cmd.Flags().StringVar(&opts.check, "check", "", "comma-separated IDs that are checked on this page")

	return cmd
}

// pageView is a fetched page together with its projected selection.
type pageView struct {
	Result   *artic.PageResult
	Meta     pagination.Meta
	Selected map[selection.ID]bool
	State    selection.State
	Notice   string
}

func runPage(cmd *cobra.Command, opts pageOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	switch opts.output {
	case outputFormatTable, outputFormatJSON, outputFormatNDJSON:
	default:
		return fmt.Errorf("unsupported output format: %s", opts.output)
	}

	cfg := config.GetGlobalConfig()
	params := pagination.Params{Page: opts.page, PageSize: cfg.UI.PageSize}
	if err := params.Validate(); err != nil {
		return err
	}

	checkIDs, err := pagination.ParseIDList(opts.check)
	if err != nil {
		return err
	}

	result, err := newClient(cfg, cmd.Root().Version).FetchPage(ctx, params.Page)
	if err != nil {
		return err
	}
	if last := max(result.Pagination.TotalPages, pagination.MinPage); params.Page > last {
		return fmt.Errorf("%w: page %d, last page is %d", pagination.ErrPageOutOfRange, params.Page, last)
	}

	tracker := selection.NewTracker()
	view := pageView{Result: result}

	if opts.selectFirst > 0 {
		count, clamped, declareErr := tracker.DeclareBulkWithin(opts.selectFirst, result.Pagination.Total)
		if declareErr != nil {
			return declareErr
		}
		if clamped {
			view.Notice = fmt.Sprintf("Only %d rows available. Selecting all %d rows.", count, count)
		}
	}

	page := result.Page()
	if cmd.Flags().Changed("check") {
		checked := make([]selection.ID, len(checkIDs))
		for i, id := range checkIDs {
			checked[i] = selection.ID(id)
		}
		if editErr := tracker.ApplyPageEdit(page, checked); editErr != nil {
			return editErr
		}
	}

	view.Selected = make(map[selection.ID]bool, len(page.IDs))
	for _, id := range tracker.ProjectPage(page) {
		view.Selected[id] = true
	}
	view.State = tracker.Snapshot()
	view.Meta = pagination.NewMeta(
		pagination.Params{Page: page.Number, PageSize: page.Size},
		result.Pagination.Total,
	)

	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("operation", "page").
		Int("page", page.Number).
		Str("mode", view.State.Mode.String()).
		Int("count", view.State.Total).
		Msg("page projected")

	return renderPage(cmd.OutOrStdout(), opts.output, view)
}
