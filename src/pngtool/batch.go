package pngtool

import (
	"context"

	"git.handmade.network/hmn/pngscope/src/utils"
	"golang.org/x/sync/errgroup"
)

type FileResult[T any] struct {
	Path  string
	Value T
	Err   error
}

/*
RunBatch calls process for every path, at most workers at a time, and returns
the results in the same order as paths. A failing or panicking file only
fails itself. Once ctx is canceled, files that have not started yet fail with
the context's error.
*/
func RunBatch[T any](
	ctx context.Context,
	paths []string,
	workers int,
	process func(ctx context.Context, path string) (T, error),
) []FileResult[T] {
	results := make([]FileResult[T], len(paths))

	var g errgroup.Group
	g.SetLimit(utils.IntMax(workers, 1))
	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		g.Go(func() error {
			results[i].Value, results[i].Err = processOne(ctx, path, process)
			return nil
		})
	}
	g.Wait()

	return results
}

func processOne[T any](
	ctx context.Context,
	path string,
	process func(ctx context.Context, path string) (T, error),
) (value T, err error) {
	defer utils.RecoverPanicAsError(&err)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return value, ctxErr
	}
	return process(ctx, path)
}

func CountFailures[T any](results []FileResult[T]) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}
