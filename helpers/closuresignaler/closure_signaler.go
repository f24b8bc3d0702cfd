// Package closuresignaler provides a close-once broadcast: every goroutine
// waiting on CloseChan is released when Close is called.
package closuresignaler

import (
	"context"
	"sync"

	"github.com/xaionaro-go/hwdec/logger"
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

// Close returns true only for the call that actually closed the signaler.
func (c *ClosureSignaler) Close(ctx context.Context) (_ret bool) {
	logger.Tracef(ctx, "Close")
	defer func() { logger.Tracef(ctx, "/Close: %v", _ret) }()
	c.closeOnce.Do(func() {
		close(c.c)
		_ret = true
	})
	return
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}
