package session

import (
	"context"
	"errors"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/types"
)

// serve is the hardware worker loop. It is the only user of the engine
// until Close, and the only sender to outputCh.
func (s *Session) serve(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "serve: %s", s)
	defer func() { logger.Debugf(ctx, "/serve: %s: %v", s, _err) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case buf, ok := <-s.inputCh:
			if !ok {
				return s.flush(ctx)
			}
			err := s.engine.SendData(ctx, *buf)
			putBuffer(buf)
			if err != nil {
				return s.engineError(ctx, err)
			}
			if err := s.drainEngine(ctx, false); err != nil {
				return err
			}
		}
	}
}

func (s *Session) flush(ctx context.Context) error {
	logger.Debugf(ctx, "flushing %s", s)
	if err := s.engine.SendEndOfStream(ctx); err != nil {
		return s.engineError(ctx, err)
	}
	return s.drainEngine(ctx, true)
}

func (s *Session) engineError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return types.ErrEngine{Err: err}
}

func (s *Session) drainEngine(
	ctx context.Context,
	endOfStream bool,
) error {
	for {
		f, err := s.engine.ReceiveFrame(ctx)
		switch {
		case err == nil:
		case errors.As(err, &driver.ErrAgain{}) && !endOfStream:
			return nil
		case errors.As(err, &driver.ErrEOF{}) && endOfStream:
			return nil
		default:
			return s.engineError(ctx, err)
		}
		if f == nil {
			continue
		}
		if err := s.pushFrame(ctx, f); err != nil {
			return err
		}
	}
}

func (s *Session) pushFrame(
	ctx context.Context,
	f *types.Frame,
) error {
	if xatomic.LoadPointer(&s.properties) == nil {
		props := f.Properties
		logger.Debugf(ctx, "%s: the frame properties are: %s", s, props)
		xatomic.StorePointer(&s.properties, &props)
	}
	s.stats.FramesDecoded.Inc()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.outputCh <- f:
		return nil
	}
}
