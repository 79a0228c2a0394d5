package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/internal/logging"
	"github.com/rshade/pagesel/pkg/version"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
//
// Interactive commands own the terminal, so they log to the configured file
// (or the default log file with --debug) and discard entries otherwise.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()
	interactive := cmd.Annotations[annotationInteractive] == "true"

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		if interactive {
			if loggingCfg.File == "" {
				loggingCfg.File, _ = config.DefaultLogPath()
			}
		} else {
			loggingCfg.Format = logging.FormatConsole
			loggingCfg.File = ""
		}
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(loggingCfg.File); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	logCfg := loggingCfg.ToLoggingConfig()
	if interactive && logCfg.Output != logging.OutputFile {
		logCfg.Output = logging.OutputDiscard
	}

	result := logging.NewLoggerWithPath(logCfg)
	switch {
	case result.UsingFile:
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	case result.FallbackUsed && interactive:
		result.Logger = logging.NewLoggerWithWriter(logCfg, io.Discard)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open log file, logging disabled: %s\n",
			result.FallbackReason)
	case result.FallbackUsed:
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}
	logger = logging.ComponentLogger(result.Logger, "cli")

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = result.Logger.WithContext(ctx)
	cmd.SetContext(ctx)

	ver := cmd.Root().Version
	logger.Info().
		Ctx(ctx).
		Str("command", cmd.Name()).
		Str("version", ver).
		Bool("development", version.IsDevelopment(ver)).
		Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
