package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/config"
	"github.com/roach88/ftr/internal/ftr"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose             bool
	Format              string // "json" | "text"
	ConfigPath          string
	Workers             int
	MaxDecompressedSize int64

	// Database is set by the --db flag of the store commands, or by the
	// config file when the flag is absent.
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the ftr CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "ftr",
		Short: "ftr - inspect FTR transaction recordings",
		Long: `Decode FTR transaction recordings (CBOR chunks with LZ4 payloads),
print their records, and keep them in a SQLite database for later queries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", defaults.Workers, "files decoded in parallel")
	cmd.PersistentFlags().Int64Var(&opts.MaxDecompressedSize, "max-decompressed-size", defaults.MaxDecompressedSize,
		"largest uncompressed size a compressed chunk may declare, in bytes")

	// Add subcommands
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewImportsCommand(opts))
	cmd.AddCommand(NewTxCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// resolve merges the config file under the flags. A flag given on the
// command line always wins over the file.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		o.Verbose = cfg.Verbose
	}
	if !flags.Changed("workers") {
		o.Workers = cfg.Workers
	}
	if !flags.Changed("max-decompressed-size") {
		o.MaxDecompressedSize = cfg.MaxDecompressedSize
	}
	if o.Database == "" {
		o.Database = cfg.Database
	}

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.Workers < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid workers %d: must be at least 1", o.Workers))
	}
	if o.MaxDecompressedSize <= 0 {
		return NewExitError(ExitCommandError, "invalid max-decompressed-size: must be positive")
	}
	return nil
}

// logger writes decoder events to stderr; chunk events need --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) decodeOptions(cmd *cobra.Command) []ftr.Option {
	return []ftr.Option{
		ftr.WithLogger(o.logger(cmd)),
		ftr.WithMaxDecompressedSize(o.MaxDecompressedSize),
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// requireDatabase fails when neither --db nor the config names a database.
func (o *RootOptions) requireDatabase() error {
	if o.Database == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set database in the config file")
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
