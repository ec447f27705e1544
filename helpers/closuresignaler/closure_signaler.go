// Package closuresignaler signals the closure of a long-living object to
// everyone waiting on it.
package closuresignaler

import (
	"context"
	"sync"

	"github.com/xaionaro-go/hapdxt/logger"
)

type ClosureSignaler struct {
	closeOnce sync.Once
	c         chan struct{}
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close closes the channel; it returns true only for the call which
// actually did it.
func (c *ClosureSignaler) Close(ctx context.Context) bool {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close") }()
	closed := false
	c.closeOnce.Do(func() {
		close(c.c)
		closed = true
	})
	return closed
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}
