package shared

import (
	"context"
	"sync"
)

// ForEachBounded calls f for every index in [0, n) using at most limit
// goroutines. It stops handing out new indices once ctx is done and returns
// ctx.Err() in that case; calls already started are waited for.
func ForEachBounded(ctx context.Context, limit, n int, f func(i int)) error {
	if limit < 1 {
		limit = 1
	}

	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup

	var err error
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case guard <- struct{}{}: // would block if guard channel is already filled
		}
		if err != nil {
			break
		}
		// a slot may win the select race against a cancelled context
		if ctx.Err() != nil {
			<-guard
			err = ctx.Err()
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-guard }()
			f(i)
		}(i)
	}
	wg.Wait()
	return err
}
