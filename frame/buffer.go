// buffer.go defines the output buffers frames decode into.

package frame

import (
	"context"
	"sync"

	"github.com/xaionaro-go/hapdxt/logger"
)

// Allocator provides the memory for frames owning their output buffer.
type Allocator interface {
	Alloc(ctx context.Context, size int) []byte
	Free(ctx context.Context, buf []byte)
}

// HeapAllocator allocates on the Go heap and leaves freeing to the GC.
type HeapAllocator struct{}

var _ Allocator = HeapAllocator{}

func (HeapAllocator) Alloc(_ context.Context, size int) []byte {
	return make([]byte, size)
}

func (HeapAllocator) Free(context.Context, []byte) {}

// Buffer is the output buffer of a frame: either an *OwnedBuffer or
// a *BorrowedBuffer.
type Buffer interface {
	// Bytes returns the whole writable region, Capacity bytes long.
	Bytes() []byte
	Capacity() int
	IsOwned() bool

	release(ctx context.Context)
}

// OwnedBuffer is allocated for, and freed together with, its frame.
type OwnedBuffer struct {
	data      []byte
	allocator Allocator
	freeOnce  sync.Once
}

var _ Buffer = (*OwnedBuffer)(nil)

func newOwnedBuffer(
	ctx context.Context,
	allocator Allocator,
	size int,
) *OwnedBuffer {
	return &OwnedBuffer{
		data:      allocator.Alloc(ctx, size)[:size],
		allocator: allocator,
	}
}

func (b *OwnedBuffer) Bytes() []byte {
	return b.data
}

func (b *OwnedBuffer) Capacity() int {
	return len(b.data)
}

func (*OwnedBuffer) IsOwned() bool {
	return true
}

func (b *OwnedBuffer) release(ctx context.Context) {
	b.freeOnce.Do(func() {
		logger.Tracef(ctx, "freeing an owned buffer of %d bytes", len(b.data))
		b.allocator.Free(ctx, b.data)
		b.data = nil
	})
}

// BorrowedBuffer is memory managed by the caller; the frame only writes
// into it and never frees it.
type BorrowedBuffer struct {
	data []byte
}

var _ Buffer = (*BorrowedBuffer)(nil)

func (b *BorrowedBuffer) Bytes() []byte {
	return b.data
}

func (b *BorrowedBuffer) Capacity() int {
	return len(b.data)
}

func (*BorrowedBuffer) IsOwned() bool {
	return false
}

func (b *BorrowedBuffer) release(context.Context) {
	b.data = nil
}
