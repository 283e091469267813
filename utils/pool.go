package utils

import (
	"context"
	"sync"
	"time"
)

// ForEachLimited runs f for every item with at most `limit` calls in flight. Each call gets its
// own context bounded by timeout (no timeout when timeout is 0). It returns once every call has
// returned.
func ForEachLimited[T any](ctx context.Context, limit int, timeout time.Duration, items []T,
	f func(ctx context.Context, index int, item T)) {
	if limit <= 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	wg := &sync.WaitGroup{}
	for i, item := range items {
		sem <- struct{}{}
		wg.Add(1)

		go func(i int, item T) {
			defer func() {
				<-sem
				wg.Done()
			}()

			callCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			f(callCtx, i, item)
		}(i, item)
	}

	wg.Wait()
}
