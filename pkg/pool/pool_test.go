package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Search(t *testing.T) {
	for _, p := range []*Pool{nil, NewPool(4)} {
		var calls int64
		results := p.Search(3, func() interface{} {
			n := atomic.AddInt64(&calls, 1)
			if n%2 == 0 {
				return nil
			}
			return n
		})
		require.Len(t, results, 3)
		for _, r := range results {
			assert.NotNil(t, r)
			assert.EqualValues(t, 1, r.(int64)%2)
		}
	}
}

func TestPool_Parallelize(t *testing.T) {
	for _, p := range []*Pool{nil, NewPool(0)} {
		out := make([]int, 16)
		err := p.Parallelize(context.Background(), len(out), func(_ context.Context, i int) error {
			out[i] = i * i
			return nil
		})
		require.NoError(t, err)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	}
}

func TestPool_ParallelizeError(t *testing.T) {
	errBoom := errors.New("boom")
	for _, p := range []*Pool{nil, NewPool(2)} {
		err := p.Parallelize(context.Background(), 8, func(_ context.Context, i int) error {
			if i == 3 {
				return errBoom
			}
			return nil
		})
		assert.ErrorIs(t, err, errBoom)
	}
}

func TestPool_Workers(t *testing.T) {
	var p *Pool
	assert.Equal(t, 1, p.Workers())
	assert.Equal(t, 5, NewPool(5).Workers())
}
