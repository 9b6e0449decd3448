package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/ftr"
	"github.com/roach88/ftr/internal/store"
)

// ImportsResult lists the imports of a database.
type ImportsResult struct {
	Imports []store.Import `json:"imports"`
}

// NewImportsCommand creates the imports command.
func NewImportsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List the imports of a database",
		Long: `List every imported file with its id, import time and record count,
oldest first. With --verbose the stream descriptors of each import are
listed under it.

Examples:
  ftr imports --db ./ftr.db
  ftr imports --db ./ftr.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImports(rootOpts, cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runImports(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.requireDatabase(); err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	imports, err := st.ListImports(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list imports", err)
	}

	streams := make(map[string][]ftr.StreamDescriptor)
	if opts.Verbose {
		for _, imp := range imports {
			if streams[imp.ID], err = st.ListStreams(cmd.Context(), imp.ID); err != nil {
				return WrapExitError(ExitCommandError, "failed to list streams", err)
			}
		}
	}

	return opts.formatter(cmd).Result(ImportsResult{Imports: imports}, func(w io.Writer) {
		if len(imports) == 0 {
			fmt.Fprintln(w, "No imports found in database.")
			return
		}
		for _, imp := range imports {
			fmt.Fprintf(w, "%s  %s  %6d records  %s\n",
				imp.ID, imp.ImportedAt.UTC().Format(timeDisplay), imp.RecordCount, imp.Path)
			for _, sd := range streams[imp.ID] {
				fmt.Fprint(w, "    ")
				writeText(w, sd)
			}
		}
	})
}

const timeDisplay = "2006-01-02 15:04:05"
