package export

import (
	"context"
	"sync"
)

// Batch calls fn for every input with at most workers calls in flight. The
// returned slice holds each input's error at the input's index. Inputs not
// started before ctx is cancelled report ctx.Err().
func Batch(ctx context.Context, inputs []string, workers int, fn func(ctx context.Context, input string) error) []error {
	if workers < 1 {
		workers = 1
	}
	errs := make([]error, len(inputs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, input := range inputs {
		if ctx.Err() != nil {
			for j := i; j < len(inputs); j++ {
				errs[j] = ctx.Err()
			}
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < len(inputs); j++ {
				errs[j] = ctx.Err()
			}
			wg.Wait()
			return errs
		}
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(ctx, input)
		}(i, input)
	}
	wg.Wait()
	return errs
}
