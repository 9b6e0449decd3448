package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/ftr/internal/canon"
	"github.com/roach88/ftr/internal/ftr"
	"github.com/roach88/ftr/internal/store"
)

// Import statuses.
const (
	StatusImported = "imported"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// ImportFileResult is the outcome of importing one file.
type ImportFileResult struct {
	Path     string    `json:"path"`
	Status   string    `json:"status"`
	ImportID string    `json:"import_id,omitempty"`
	Records  int       `json:"records"`
	Error    *CLIError `json:"error,omitempty"`
}

// ImportResult holds the outcome of every file.
type ImportResult struct {
	Files    []ImportFileResult `json:"files"`
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Failed   int                `json:"failed"`
}

// decodedFile is a file read, hashed and decoded, ready to be stored.
// Decoding is skipped when existing is set.
type decodedFile struct {
	hash     string
	records  []ftr.Record
	existing *store.Import
	err      error
	storeErr error
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Decode FTR files into a SQLite database",
		Long: `Decode each file and store its records in the database.

A file whose content is already in the database is skipped, so running
import twice on the same recordings is harmless. The content hash is taken
after zstd unwrapping: a recording and its archived copy are one import.

Exit codes:
  0 - All files imported or skipped
  1 - At least one file failed to decode
  2 - Command error (database cannot be opened or written)

Examples:
  ftr import --db ./ftr.db run.ftr
  ftr import --db ./ftr.db --format json *.ftr`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runImport(opts *RootOptions, cmd *cobra.Command, paths []string) error {
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

	decoded := decodeForImport(ctx, st, paths, opts.Workers, opts.decodeOptions(cmd))

	result := ImportResult{Files: make([]ImportFileResult, 0, len(paths))}
	for i, path := range paths {
		d := decoded[i]
		fr := ImportFileResult{Path: path}
		if d.storeErr != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to look up %s", path), d.storeErr)
		}
		if d.existing != nil {
			fr.Status = StatusSkipped
			fr.ImportID = d.existing.ID
			fr.Records = d.existing.RecordCount
			result.Skipped++
			out.VerboseLog("%s: %s as %s", path, fr.Status, fr.ImportID)
			result.Files = append(result.Files, fr)
			continue
		}
		if d.err != nil {
			fr.Status = StatusFailed
			fr.Error = &CLIError{Code: errorCode(d.err), Message: d.err.Error()}
			result.Failed++
			result.Files = append(result.Files, fr)
			continue
		}

		imp, inserted, err := st.ImportRecords(ctx, path, d.hash, d.records)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to store %s", path), err)
		}
		fr.ImportID = imp.ID
		fr.Records = imp.RecordCount
		if inserted {
			fr.Status = StatusImported
			result.Imported++
		} else {
			fr.Status = StatusSkipped
			result.Skipped++
		}
		out.VerboseLog("%s: %s as %s", path, fr.Status, imp.ID)
		result.Files = append(result.Files, fr)
	}

	if err := out.Result(result, func(w io.Writer) { writeImportText(w, result) }); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed to import", result.Failed, len(paths)))
	}
	return nil
}

func writeImportText(w io.Writer, result ImportResult) {
	for _, fr := range result.Files {
		switch fr.Status {
		case StatusImported:
			fmt.Fprintf(w, "imported %s (id %s, %d records)\n", fr.Path, fr.ImportID, fr.Records)
		case StatusSkipped:
			fmt.Fprintf(w, "skipped %s (already imported as %s)\n", fr.Path, fr.ImportID)
		default:
			fmt.Fprintf(w, "failed %s: %s\n", fr.Path, fr.Error.Message)
		}
	}
}

// decodeForImport reads, hashes and decodes files in parallel. Writes to
// the database stay sequential.
func decodeForImport(ctx context.Context, st *store.Store, paths []string, workers int, opts []ftr.Option) []decodedFile {
	results := make([]decodedFile, len(paths))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = decodeOne(ctx, st, path, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func decodeOne(ctx context.Context, st *store.Store, path string, opts []ftr.Option) decodedFile {
	if err := ctx.Err(); err != nil {
		return decodedFile{err: err}
	}
	data, err := ftr.ReadFile(path)
	if err != nil {
		return decodedFile{err: err}
	}
	hash := canon.HashWithDomain(canon.DomainContainer, data)

	imp, err := st.FindImportByHash(ctx, hash)
	switch {
	case err == nil:
		return decodedFile{hash: hash, existing: &imp}
	case !store.IsNotFound(err):
		return decodedFile{hash: hash, storeErr: err}
	}

	records, err := ftr.DecodeContext(ctx, data, opts...)
	if err != nil {
		var de *ftr.DecodeError
		if errors.As(err, &de) {
			de.File = path
		}
		return decodedFile{err: err}
	}
	return decodedFile{hash: hash, records: records}
}
