package session

import (
	"context"

	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/pool"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/xsync"
)

const bufferPreallocSize = 64 << 10

var bufferPool = pool.NewPool(
	func() *[]byte {
		buf := make([]byte, 0, bufferPreallocSize)
		return &buf
	},
	func(buf *[]byte) {
		*buf = (*buf)[:0]
	},
)

func getBuffer(data []byte) *[]byte {
	buf := bufferPool.Get()
	*buf = append((*buf)[:0], data...)
	return buf
}

func putBuffer(buf *[]byte) {
	bufferPool.Put(buf)
}

// Submit hands a prefix of the chunk (at most Config.MaxChunkSize bytes)
// over to the hardware and returns the amount of consumed bytes; the
// caller resubmits the rest. The consumed bytes are copied, so the caller
// may reuse the chunk right after the call.
//
// If the input queue is full, a non-blocking submit returns ErrWouldBlock
// consuming nothing, while a blocking one waits for free space, for the
// closure of the session (ErrSessionClosed) or for ctx to be done.
// Once the output queue is full the input queue is not consumed, so a
// blocking submit returns only if another goroutine receives frames.
func (s *Session) Submit(
	ctx context.Context,
	chunk []byte,
	blocking bool,
) (_ret int, _err error) {
	logger.Tracef(ctx, "Submit(%d, %t)", len(chunk), blocking)
	defer func() { logger.Tracef(ctx, "/Submit(%d, %t): %d %v", len(chunk), blocking, _ret, _err) }()

	ctx = xsync.WithNoLogging(ctx, true)
	if !blocking {
		// another blocking submit holds the input
		if !s.submitLocker.ManualTryLock(ctx) {
			s.stats.WouldBlock.Inc()
			return 0, types.ErrWouldBlock{}
		}
		defer s.submitLocker.ManualUnlock(ctx)
		return s.submitLocked(ctx, chunk, blocking)
	}
	return xsync.DoR2(ctx, &s.submitLocker, func() (int, error) {
		return s.submitLocked(ctx, chunk, blocking)
	})
}

func (s *Session) submitLocked(
	ctx context.Context,
	chunk []byte,
	blocking bool,
) (int, error) {
	if err := s.checkState(ctx, "Submit", types.SessionStateActive); err != nil {
		return 0, err
	}
	if s.closer.IsClosed() {
		return 0, types.ErrSessionClosed{}
	}
	if err := s.failure(); err != nil {
		return 0, err
	}
	if len(chunk) == 0 {
		return 0, nil
	}

	n := min(len(chunk), int(s.config.MaxChunkSize))
	buf := getBuffer(chunk[:n])

	if !blocking {
		select {
		case s.inputCh <- buf:
		default:
			putBuffer(buf)
			s.stats.WouldBlock.Inc()
			return 0, types.ErrWouldBlock{}
		}
	} else {
		select {
		case s.inputCh <- buf:
		case <-s.closer.CloseChan():
			putBuffer(buf)
			return 0, types.ErrSessionClosed{}
		case <-s.workerDone:
			putBuffer(buf)
			if err := s.failure(); err != nil {
				return 0, err
			}
			return 0, types.ErrSessionClosed{}
		case <-ctx.Done():
			putBuffer(buf)
			return 0, ctx.Err()
		}
	}

	if s.closer.IsClosed() {
		// the session got closed while the chunk was being enqueued,
		// so the chunk will never reach the hardware
		return 0, types.ErrSessionClosed{}
	}
	s.stats.BytesSubmitted.Add(uint64(n))
	s.stats.ChunksSubmitted.Inc()
	return n, nil
}

// ReceiveFrame pops the oldest decoded frame. It never blocks: if no frame
// is queued it returns ErrNoFrameAvailable, or ErrEndOfStream once the
// stream is fully drained after SendEndOfStream.
func (s *Session) ReceiveFrame(ctx context.Context) (_ret *types.Frame, _err error) {
	logger.Tracef(ctx, "ReceiveFrame")
	defer func() { logger.Tracef(ctx, "/ReceiveFrame: %v %v", _ret, _err) }()

	if err := s.checkState(ctx, "ReceiveFrame", types.SessionStateActive, types.SessionStateDraining); err != nil {
		return nil, err
	}

	select {
	case f, ok := <-s.outputCh:
		if ok {
			s.stats.FramesReceived.Inc()
			return f, nil
		}
		if err := s.failure(); err != nil {
			return nil, err
		}
		if s.closer.IsClosed() {
			return nil, types.ErrInvalidSessionState{State: types.SessionStateClosed, Operation: "ReceiveFrame"}
		}
		return nil, types.ErrEndOfStream{}
	default:
		return nil, types.ErrNoFrameAvailable{}
	}
}
