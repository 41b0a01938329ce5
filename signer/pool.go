package signer

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// workerPool maps a pure function over a batch, in parallel once the batch
// is larger than threshold. Results keep input order.
type workerPool struct {
	threshold int
	workers   int
}

func (wp workerPool) parallel(n int) bool {
	return n > wp.threshold && wp.workers > 1
}

// run calls fn(i) for every i in [0, n) and stores the results by index.
// The first error wins; on error no results are returned.
func run[T any](wp workerPool, n int, fn func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)

	if !wp.parallel(n) {
		for i := 0; i < n; i++ {
			v, err := fn(i)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(wp.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := fn(i)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
