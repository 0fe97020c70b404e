package pool

import (
	"context"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of goroutines used for parallel work such as prime
// search or proof verification.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
type Pool struct {
	workerCount int
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	return &Pool{workerCount: count}
}

// Workers returns the maximum number of goroutines the pool runs at once.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful.
//
// The result will be a slice containing the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				results[i] = f()
			}
		}
		return results
	}

	remaining := int64(count)
	var g errgroup.Group
	for w := 0; w < p.workerCount; w++ {
		g.Go(func() error {
			for atomic.LoadInt64(&remaining) > 0 {
				res := f()
				if res == nil {
					continue
				}
				i := atomic.AddInt64(&remaining, -1)
				if i < 0 {
					return nil
				}
				results[i] = res
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Parallelize calls f count times, passing in indices from 0..count-1.
//
// The first error returned by f cancels ctx for the remaining calls and is
// returned once all started calls have finished.
func (p *Pool) Parallelize(ctx context.Context, count int, f func(ctx context.Context, i int) error) error {
	if p == nil {
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f(gctx, i)
		})
	}
	return g.Wait()
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// When calling this function concurrently, which value ends up getting read is
// raced, but the same bytes are never returned twice.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
