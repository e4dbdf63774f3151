package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerport/internal/buildinfo"
	"github.com/cleared-dev/ledgerport/internal/config"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	logFormat  string
	strict     bool

	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ledgerport",
		Short: "Classify charts of accounts and export ledgers and statements",
		Long: `ledgerport reads a company's chart of accounts and journal entries from
SQLite or PostgreSQL, maps every account onto the five-category reporting
model and produces opening balances, Beancount ledgers and financial
statements.

Example:
  ledgerport init acme --company 7 --company-name Acme
  ledgerport ingest --accounts plano.csv --entries lancamentos.csv
  ledgerport pipeline --start 2024-01-01 --end 2024-12-31`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.debug)
			if err != nil {
				return err
			}
			opts.logger = logger
			slog.SetDefault(logger)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "config file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", LogFormatText, "log format: text or json")
	flags.BoolVar(&opts.strict, "strict", false, "fail when a run produces diagnostics")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newIngestCommand(opts),
		newPipelineCommand(opts),
		newOpeningBalancesCommand(opts),
		newReportCommand(opts),
		newServeCommand(opts),
		newClassifyCommand(opts),
		newModelsCommand(opts),
	)

	return rootCmd
}

func newLogger(w io.Writer, format string, debug bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case LogFormatText, "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
