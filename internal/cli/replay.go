package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ImportID string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Print the stored records of an import",
		Long: `Read back every record of an import in the order it was decoded and
print it exactly as dump prints the file.

Stored attribute values have passed through JSON: byte strings come back
as base64 text.

Exit codes:
  0 - Import found
  1 - No such import
  2 - Command error (database not found, etc.)

Examples:
  ftr replay --db ./ftr.db --import 0190f3c2-...
  ftr replay --db ./ftr.db --import 0190f3c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.ImportID, "import", "", "import id (required)")
	_ = cmd.MarkFlagRequired("import")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	if err := opts.requireDatabase(); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	imp, err := st.GetImport(ctx, opts.ImportID)
	if store.IsNotFound(err) {
		msg := fmt.Sprintf("import %s not found", opts.ImportID)
		if opts.Format == "json" {
			if err := out.Error(ErrCodeNotFound, msg, nil); err != nil {
				return err
			}
		}
		return NewExitError(ExitFailure, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read import", err)
	}

	records, err := st.ReadRecords(ctx, imp.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}
	out.VerboseLog("%s: %d record(s) from %s", imp.ID, len(records), imp.Path)

	rw := &recordWriter{
		format: opts.Format,
		w:      cmd.OutOrStdout(),
		errW:   cmd.ErrOrStderr(),
	}
	return rw.writeRecords(imp.Path, records)
}
