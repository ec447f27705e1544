// pool.go implements one size class of the DXT buffer pool.

// Package pool provides pools of reusable DXT output buffers.
package pool

import (
	"sync"
)

// ReuseMemory may be disabled to make every Alloc allocate, which helps to
// catch consumers touching a texture after its frame was released.
var ReuseMemory = true

// sizeClass recycles buffers of exactly one size.
type sizeClass struct {
	size int
	pool sync.Pool
}

func newSizeClass(size int, onAlloc func()) *sizeClass {
	c := &sizeClass{size: size}
	c.pool.New = func() any {
		onAlloc()
		buf := make([]byte, size)
		return &buf
	}
	return c
}

func (c *sizeClass) get() []byte {
	if !ReuseMemory {
		return *c.pool.New().(*[]byte)
	}
	return *c.pool.Get().(*[]byte)
}

// put returns buf to the class; it reports false if the buffer was dropped.
func (c *sizeClass) put(buf []byte) bool {
	if !ReuseMemory || cap(buf) != c.size {
		return false
	}
	buf = buf[:c.size]
	c.pool.Put(&buf)
	return true
}
