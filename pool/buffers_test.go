package pool

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffers(t *testing.T) {
	ctx := context.Background()
	b := NewBuffers()

	buf := b.Alloc(ctx, 8712)
	require.Len(t, buf, 8712)
	other := b.Alloc(ctx, 17424)
	require.Len(t, other, 17424)

	b.Free(ctx, buf)
	b.Free(ctx, other)
	b.Free(ctx, nil)

	again := b.Alloc(ctx, 8712)
	require.Len(t, again, 8712)

	stats := b.GetStats()
	require.Equal(t, uint64(3), stats.Requested)
	require.Equal(t, uint64(2), stats.Freed)
	require.GreaterOrEqual(t, stats.Allocated, uint64(2))
	require.LessOrEqual(t, stats.Allocated, uint64(3))
}

func TestBuffersConcurrent(t *testing.T) {
	ctx := context.Background()
	b := NewBuffers()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := b.Alloc(ctx, 32768)
				buf[0] = byte(j)
				b.Free(ctx, buf)
			}
		}()
	}
	wg.Wait()

	stats := b.GetStats()
	require.Equal(t, uint64(1600), stats.Requested)
	require.Equal(t, uint64(1600), stats.Freed)
}

func TestBuffersNoReuse(t *testing.T) {
	ctx := context.Background()
	ReuseMemory = false
	defer func() { ReuseMemory = true }()

	b := NewBuffers()
	for i := 0; i < 4; i++ {
		buf := b.Alloc(ctx, 1024)
		b.Free(ctx, buf)
	}
	stats := b.GetStats()
	require.Equal(t, uint64(4), stats.Allocated)
	require.Equal(t, uint64(4), stats.Freed)
}

func TestSizeClassDropsForeignBuffers(t *testing.T) {
	allocs := 0
	c := newSizeClass(64, func() { allocs++ })

	buf := c.get()
	require.Len(t, buf, 64)
	require.Equal(t, 1, allocs)

	require.True(t, c.put(buf[:10]))
	require.False(t, c.put(make([]byte, 32)))
}
