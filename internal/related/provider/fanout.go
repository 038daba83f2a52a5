package provider

import (
	"context"
	"time"
)

// DefaultTimeout is the per-provider deadline for a lookup.
const DefaultTimeout = time.Second

// Collect queries every provider concurrently and merges their results.
//
// Each provider is raced against the timeout independently; whichever settles
// first wins. A provider that errors or misses the deadline contributes
// nothing, and its eventual result is discarded rather than awaited. The call
// therefore completes within roughly one timeout regardless of how many
// providers hang. Collect never fails.
func Collect(ctx context.Context, providers []Provider, path string, timeout time.Duration) []string {
	if len(providers) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	out := make(chan []string, len(providers))
	for _, p := range providers {
		go race(ctx, p, path, timeout, out)
	}

	var merged []string
	for range providers {
		merged = append(merged, <-out...)
	}
	return merged
}

// race runs a single provider against the timeout and reports the winner.
func race(ctx context.Context, p Provider, path string, timeout time.Duration, out chan<- []string) {
	// Buffered so the provider goroutine can finish after the race is lost.
	settled := make(chan []string, 1)

	go func() {
		defer func() {
			if recover() != nil {
				// A panicking provider contributes nothing.
				settled <- nil
			}
		}()
		files, err := p.RelatedFiles(ctx, path)
		if err != nil {
			settled <- nil
			return
		}
		settled <- files
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case files := <-settled:
		out <- files
	case <-timer.C:
		out <- nil
	case <-ctx.Done():
		out <- nil
	}
}
