package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/ftr"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Print the records of FTR files",
		Long: `Decode each file and print its records in decode order.

Files are decoded in parallel (see --workers) and printed in argument order.
A file that fails to decode is reported and the others are still printed.

Exit codes:
  0 - All files decoded
  1 - At least one file failed to decode
  2 - Command error

Examples:
  ftr dump run.ftr
  ftr dump --format json a.ftr b.ftr.zst`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runDump(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	out := opts.formatter(cmd)
	out.VerboseLog("decoding %d file(s) with %d worker(s)", len(paths), max(opts.Workers, 1))

	results := ftr.DecodeFiles(cmd.Context(), paths, opts.Workers, opts.decodeOptions(cmd)...)

	rw := &recordWriter{
		format:  opts.Format,
		w:       cmd.OutOrStdout(),
		errW:    cmd.ErrOrStderr(),
		headers: len(paths) > 1,
	}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			if err := rw.writeFailure(res.Path, res.Err); err != nil {
				return err
			}
			continue
		}
		out.VerboseLog("%s: %d record(s)", res.Path, len(res.Records))
		if err := rw.writeRecords(res.Path, res.Records); err != nil {
			return err
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed to decode", failed, len(paths)))
	}
	return nil
}
