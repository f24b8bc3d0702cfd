package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/typing"
	"golang.org/x/sync/errgroup"
)

const pollInterval = 100 * time.Microsecond

type streamResult struct {
	Rejected          bool
	Frames            uint64
	Bytes             uint64
	WouldBlock        uint64
	FirstFrameLatency typing.Optional[time.Duration]
	Duration          time.Duration
	Properties        types.FrameProperties
	Err               error
}

func (r streamResult) String() string {
	if r.Rejected {
		return "rejected: no free engine"
	}
	if r.Err != nil {
		return "failed: " + r.Err.Error()
	}
	fps := float64(r.Frames) / r.Duration.Seconds()
	firstFrame := "n/a"
	if r.FirstFrameLatency.IsSet() {
		firstFrame = r.FirstFrameLatency.Get().String()
	}
	return fmt.Sprintf(
		"%d frames (%s) from %s in %v (%s, first frame after %s, %d would-block)",
		r.Frames, r.Properties, humanize.Bytes(r.Bytes), r.Duration.Round(time.Millisecond),
		humanize.SI(fps, "fps"), firstFrame, r.WouldBlock,
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// runStream decodes the whole stream in a session of its own. Frames are
// drained by a separate goroutine: a blocking submit does not return while
// the output queue is full.
func runStream(
	ctx context.Context,
	mgr *manager.Manager,
	req types.DecoderRequest,
	data []byte,
	chunkSize int,
	blocking bool,
) (_ret streamResult) {
	startedAt := time.Now()
	defer func() { _ret.Duration = time.Since(startedAt) }()

	h, err := mgr.CreateSession(ctx, req)
	if err != nil {
		if errors.As(err, &types.ErrCapacityExhausted{}) {
			return streamResult{Rejected: true}
		}
		return streamResult{Err: err}
	}
	defer func() {
		if err := mgr.DestroySession(ctx, h); err != nil && _ret.Err == nil {
			_ret.Err = err
		}
	}()

	var (
		submitted streamResult
		received  streamResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for len(data) > 0 {
			n, err := mgr.Submit(gctx, h, data[:min(chunkSize, len(data))], blocking)
			switch {
			case err == nil:
			case errors.As(err, &types.ErrWouldBlock{}):
				submitted.WouldBlock++
			default:
				return fmt.Errorf("unable to submit: %w", err)
			}
			submitted.Bytes += uint64(n)
			data = data[n:]
			if n == 0 {
				if err := sleepCtx(gctx, pollInterval); err != nil {
					return err
				}
			}
		}
		if err := mgr.SendEndOfStream(gctx, h); err != nil {
			return fmt.Errorf("unable to send the end of stream: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for {
			f, err := mgr.ReceiveFrame(gctx, h)
			switch {
			case err == nil:
			case errors.As(err, &types.ErrEndOfStream{}):
				return nil
			case types.IsSteadyState(err):
				if err := sleepCtx(gctx, pollInterval); err != nil {
					return err
				}
				continue
			default:
				return fmt.Errorf("unable to receive a frame: %w", err)
			}
			if received.Frames == 0 {
				received.FirstFrameLatency = typing.Opt(time.Since(startedAt))
				received.Properties = f.Properties
			}
			received.Frames++
		}
	})
	err = g.Wait()

	return streamResult{
		Frames:            received.Frames,
		Bytes:             submitted.Bytes,
		WouldBlock:        submitted.WouldBlock,
		FirstFrameLatency: received.FirstFrameLatency,
		Properties:        received.Properties,
		Err:               err,
	}
}
