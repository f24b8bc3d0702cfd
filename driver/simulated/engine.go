package simulated

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/types"
)

type EngineConfig struct {
	Properties    types.FrameProperties
	IntraOnly     bool
	DecodeLatency time.Duration
}

type Engine struct {
	Name   string
	Config EngineConfig

	splitter         *annexb.Splitter
	receivedKeyFrame bool
	nextSequence     uint64
	pending          []*types.Frame
	endOfStream      bool
	closed           bool

	DroppedAccessUnits uint64
}

var _ driver.Engine = (*Engine)(nil)

func newEngine(
	name string,
	codec annexb.Codec,
	cfg EngineConfig,
) *Engine {
	return &Engine{
		Name:     name,
		Config:   cfg,
		splitter: annexb.NewSplitter(codec),
	}
}

func (e *Engine) String() string {
	return fmt.Sprintf("SimulatedEngine(%s, %s)", e.Name, e.splitter.Codec())
}

func (e *Engine) SendData(
	ctx context.Context,
	data []byte,
) error {
	if e.closed {
		return fmt.Errorf("the engine is closed")
	}
	if e.endOfStream {
		return fmt.Errorf("the end of stream was already signaled")
	}
	e.splitter.Write(data)
	e.decodeReady(ctx)
	return nil
}

func (e *Engine) decodeReady(ctx context.Context) {
	for au := e.splitter.Next(); au != nil; au = e.splitter.Next() {
		e.decode(ctx, au)
	}
}

func (e *Engine) decode(
	ctx context.Context,
	au *annexb.AccessUnit,
) {
	if !e.receivedKeyFrame && !au.KeyFrame {
		logger.Tracef(ctx, "dropping a non-key access unit before the first key frame")
		e.DroppedAccessUnits++
		return
	}
	if e.Config.IntraOnly && !au.KeyFrame {
		e.DroppedAccessUnits++
		return
	}
	e.receivedKeyFrame = true
	seq := e.nextSequence
	e.nextSequence++
	e.pending = append(e.pending, &types.Frame{
		Sequence:   seq,
		PTS:        e.Config.Properties.FrameRate.FrameTimestamp(seq),
		KeyFrame:   au.KeyFrame,
		Properties: e.Config.Properties,
	})
}

func (e *Engine) ReceiveFrame(ctx context.Context) (*types.Frame, error) {
	if e.closed {
		return nil, fmt.Errorf("the engine is closed")
	}
	if len(e.pending) == 0 {
		if e.endOfStream {
			return nil, driver.ErrEOF{}
		}
		return nil, driver.ErrAgain{}
	}
	if d := e.Config.DecodeLatency; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	f := e.pending[0]
	e.pending[0] = nil
	e.pending = e.pending[1:]
	return f, nil
}

func (e *Engine) SendEndOfStream(ctx context.Context) error {
	if e.closed {
		return fmt.Errorf("the engine is closed")
	}
	if e.endOfStream {
		return nil
	}
	e.splitter.Flush()
	e.decodeReady(ctx)
	e.endOfStream = true
	return nil
}

func (e *Engine) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close: %s", e)
	if e.closed {
		return fmt.Errorf("the engine is already closed")
	}
	e.closed = true
	e.pending = nil
	return nil
}
