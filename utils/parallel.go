package utils

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// RangeWorkFunc processes the items in [from, to).
type RangeWorkFunc func(ctx context.Context, from, to int) error

// GroupWorkParallel splits totalSize items into at most ParallelFactor contiguous ranges and
// runs work on each range in its own goroutine. The last range takes the remainder. The first
// error, or a recovered panic, cancels the context handed to the remaining ranges; all errors
// are combined.
func GroupWorkParallel(ctx context.Context, totalSize int, work RangeWorkFunc) error {
	if totalSize <= 0 {
		return nil
	}
	numGroups := ParallelFactor
	if numGroups > totalSize {
		numGroups = totalSize
	}
	groupSize := totalSize / numGroups

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wait     sync.WaitGroup
		errMu    sync.Mutex
		combined error
	)
	storeError := func(err error) {
		errMu.Lock()
		combined = multierr.Combine(combined, err)
		errMu.Unlock()
		cancel()
	}

	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		from := groupSize * groupNum
		to := from + groupSize
		if groupNum == numGroups-1 {
			to = totalSize
		}
		go func() {
			defer wait.Done()
			defer func() {
				if thePanic := recover(); thePanic != nil {
					storeError(fmt.Errorf("got panic processing items [%d, %d): %v", from, to, thePanic))
				}
			}()
			if err := ctx.Err(); err != nil {
				return
			}
			if err := work(ctx, from, to); err != nil {
				storeError(err)
			}
		}()
	}
	wait.Wait()
	if combined == nil {
		return ctx.Err()
	}
	return combined
}
