package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/internal/logging"
	"github.com/rshade/pagesel/pkg/version"
)

// Command annotations read by the root command.
const (
	// annotationInteractive marks commands that take over the terminal.
	annotationInteractive = "interactive"
	// annotationSkipConfigFile marks commands that run before a config file exists.
	annotationSkipConfigFile = "skip-config-file"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the pagesel CLI.
// It loads configuration, wires up logging and tracing, and registers the
// browse, page and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "pagesel",
		Short:         "Browse and select records from a paginated collection",
		Long:          "pagesel: browse a server-paginated collection one page at a time and select rows across pages",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $PAGESEL_HOME/config.yaml or ~/.pagesel/config.yaml)")
	cmd.PersistentFlags().Int("page-size", 0, "records per page (overrides config file and env var)")
	cmd.PersistentFlags().String("api-url", "", "collection endpoint (overrides config file and env var)")
	cmd.SetVersionTemplate(version.Template())
	cmd.AddCommand(NewBrowseCmd(), NewPageCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Browse the collection interactively
  pagesel browse

  # Open the browser on page 5 with 25 rows per page
  pagesel browse --page 5 --page-size 25

  # Print page 3 with the first 30 records selected
  pagesel page --page 3 --select-first 30

  # Print a page as JSON
  pagesel page --output json

  # Initialize configuration
  pagesel config init`

// loadConfig loads the config file and environment, applies flag overrides
// and installs the result as the global configuration.
func loadConfig(cmd *cobra.Command) error {
	var cfg *config.Config
	if cmd.Annotations[annotationSkipConfigFile] == "true" {
		cfg = config.New()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
	} else {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("page-size") {
		cfg.UI.PageSize, _ = cmd.Flags().GetInt("page-size")
	}
	if cmd.Flags().Changed("api-url") {
		cfg.API.BaseURL, _ = cmd.Flags().GetString("api-url")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd())
	return cmd
}
