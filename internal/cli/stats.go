package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/canon"
	"github.com/roach88/ftr/internal/ftr"
)

// kindOrder is the display order of record kinds.
var kindOrder = []ftr.RecordKind{
	ftr.KindStream,
	ftr.KindGenerator,
	ftr.KindTransaction,
	ftr.KindAttribute,
	ftr.KindRelation,
	ftr.KindDiagnostic,
}

// FileStats is the stats result for one file.
type FileStats struct {
	Path string `json:"path"`

	// Digest hashes the canonical JSON of the decoded records, so two
	// recordings with equal content compare equal whatever their encoding.
	Digest  string       `json:"digest,omitempty"`
	Summary *ftr.Summary `json:"summary,omitempty"`
	Error   *CLIError    `json:"error,omitempty"`
}

// StatsResult holds the stats of every file.
type StatsResult struct {
	Files  []FileStats `json:"files"`
	Failed int         `json:"failed"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file>...",
		Short: "Summarize FTR files",
		Long: `Decode each file and report record counts by kind, the stream ids
seen and the recorded time span.

Exit codes:
  0 - All files decoded
  1 - At least one file failed to decode
  2 - Command error

Examples:
  ftr stats run.ftr
  ftr stats --format json *.ftr`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	results := ftr.DecodeFiles(cmd.Context(), paths, opts.Workers, opts.decodeOptions(cmd)...)

	stats := StatsResult{Files: make([]FileStats, 0, len(results))}
	for _, res := range results {
		fs := FileStats{Path: res.Path}
		if res.Err != nil {
			stats.Failed++
			fs.Error = &CLIError{Code: errorCode(res.Err), Message: res.Err.Error()}
			stats.Files = append(stats.Files, fs)
			continue
		}

		digest, err := canon.Hash(canon.DomainRecords, recordObjects(res.Records))
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to hash %s", res.Path), err)
		}
		summary := ftr.Summarize(res.Records)
		fs.Digest = digest
		fs.Summary = &summary
		stats.Files = append(stats.Files, fs)
	}

	if err := opts.formatter(cmd).Result(stats, func(w io.Writer) { writeStatsText(w, stats) }); err != nil {
		return err
	}

	if stats.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed to decode", stats.Failed, len(paths)))
	}
	return nil
}

func writeStatsText(w io.Writer, stats StatsResult) {
	for i, fs := range stats.Files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, fs.Path)
		if fs.Error != nil {
			fmt.Fprintf(w, "  error: %s\n", fs.Error.Message)
			continue
		}

		sum := fs.Summary
		counts := make([]string, 0, len(kindOrder))
		for _, k := range kindOrder {
			if n := sum.Counts[k]; n > 0 {
				counts = append(counts, fmt.Sprintf("%s=%d", k, n))
			}
		}
		if len(counts) == 0 {
			counts = append(counts, "none")
		}
		fmt.Fprintf(w, "  records: %s\n", strings.Join(counts, " "))

		ids := make([]string, len(sum.Streams))
		for j, id := range sum.Streams {
			ids[j] = fmt.Sprint(id)
		}
		fmt.Fprintf(w, "  streams: %d [%s]\n", len(ids), strings.Join(ids, " "))
		if sum.Counts[ftr.KindTransaction] > 0 {
			fmt.Fprintf(w, "  time: %d..%d\n", sum.FirstStart, sum.LastEnd)
		}
		fmt.Fprintf(w, "  digest: %s\n", fs.Digest)
	}
}
