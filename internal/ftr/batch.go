package ftr

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of decoding one file. Exactly one of Records
// and Err is set.
type FileResult struct {
	Path    string
	Records []Record
	Err     error
}

// DecodeFiles decodes paths in parallel, at most workers at a time, one
// independent session per file. Results are in the order of paths. A
// failing file does not affect the others; once ctx is done, files not yet
// started report ctx.Err().
func DecodeFiles(ctx context.Context, paths []string, workers int, opts ...Option) []FileResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Records, results[i].Err = DecodeFileContext(ctx, path, opts...)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
