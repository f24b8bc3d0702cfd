package session

import (
	"context"
	"sync"

	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/types"
)

// dummyEngine produces one frame per SendData call carrying a copy of the
// sent data.
type dummyEngine struct {
	SendDataFn func(ctx context.Context, data []byte) error
	CloseFn    func(ctx context.Context) error

	locker      sync.Mutex
	pending     []*types.Frame
	sequence    uint64
	endOfStream bool

	SendDataCallCount        int
	SendEndOfStreamCallCount int
	CloseCallCount           int
}

var _ driver.Engine = (*dummyEngine)(nil)

func (e *dummyEngine) String() string {
	return "dummy"
}

func (e *dummyEngine) SendData(ctx context.Context, data []byte) error {
	e.locker.Lock()
	e.SendDataCallCount++
	e.locker.Unlock()
	if e.SendDataFn != nil {
		if err := e.SendDataFn(ctx, data); err != nil {
			return err
		}
	}
	e.locker.Lock()
	defer e.locker.Unlock()
	e.pending = append(e.pending, &types.Frame{
		Sequence: e.sequence,
		KeyFrame: e.sequence == 0,
		Properties: types.FrameProperties{
			Resolution:  types.Resolution{Width: 320, Height: 240},
			PixelFormat: types.PixelFormatNV12,
		},
		Data: append([]byte(nil), data...),
	})
	e.sequence++
	return nil
}

func (e *dummyEngine) ReceiveFrame(ctx context.Context) (*types.Frame, error) {
	e.locker.Lock()
	defer e.locker.Unlock()
	if len(e.pending) == 0 {
		if e.endOfStream {
			return nil, driver.ErrEOF{}
		}
		return nil, driver.ErrAgain{}
	}
	f := e.pending[0]
	e.pending = e.pending[1:]
	return f, nil
}

func (e *dummyEngine) SendEndOfStream(ctx context.Context) error {
	e.locker.Lock()
	defer e.locker.Unlock()
	e.SendEndOfStreamCallCount++
	e.endOfStream = true
	return nil
}

func (e *dummyEngine) Close(ctx context.Context) error {
	e.locker.Lock()
	e.CloseCallCount++
	e.locker.Unlock()
	if e.CloseFn != nil {
		return e.CloseFn(ctx)
	}
	return nil
}

// gatedSendData returns a SendDataFn that reports each call on "entered"
// and then waits for a token on "release" (or for ctx to be done).
func gatedSendData(entered chan<- struct{}, release <-chan struct{}) func(ctx context.Context, data []byte) error {
	return func(ctx context.Context, data []byte) error {
		entered <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
