// buffers.go implements a size-classed pool of DXT output buffers.

package pool

import (
	"context"
	"sync/atomic"

	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/xsync"
)

// Buffers pools byte buffers by their exact size. A video stream has
// a constant frame size, so in practice it keeps a single size class alive.
//
// It is safe for concurrent use.
type Buffers struct {
	pools xsync.Map[int, *sizeClass]

	allocated atomic.Uint64
	requested atomic.Uint64
	freed     atomic.Uint64
}

func NewBuffers() *Buffers {
	return &Buffers{}
}

type BuffersStatistics struct {
	Allocated uint64 `json:",omitempty"`
	Requested uint64 `json:",omitempty"`
	Freed     uint64 `json:",omitempty"`
}

func (b *Buffers) GetStats() BuffersStatistics {
	return BuffersStatistics{
		Allocated: b.allocated.Load(),
		Requested: b.requested.Load(),
		Freed:     b.freed.Load(),
	}
}

func (b *Buffers) sizeClassFor(size int) *sizeClass {
	if c, ok := b.pools.Load(size); ok {
		return c
	}
	c, _ := b.pools.LoadOrStore(size, newSizeClass(size, func() {
		b.allocated.Add(1)
	}))
	return c
}

// Alloc returns a buffer of exactly the given size. The content is not
// zeroed when the buffer is reused.
func (b *Buffers) Alloc(ctx context.Context, size int) []byte {
	logger.Tracef(ctx, "Alloc(ctx, %d)", size)
	b.requested.Add(1)
	return b.sizeClassFor(size).get()
}

// Free puts the buffer back to the size class of its capacity.
func (b *Buffers) Free(ctx context.Context, buf []byte) {
	if buf == nil {
		return
	}
	logger.Tracef(ctx, "Free(ctx, %d)", cap(buf))
	b.freed.Add(1)
	b.sizeClassFor(cap(buf)).put(buf)
}
