// Package session implements a single decode session: the lifecycle state
// machine, the hardware worker and the submit/drain protocol with bounded
// queues on both sides of the engine.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-ng/xatomic"
	"github.com/google/uuid"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/helpers/closuresignaler"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xcontext"
	"github.com/xaionaro-go/xsync"
)

type State = types.SessionState

type Params struct {
	// ID is generated if empty.
	ID          string
	Request     types.DecoderRequest
	Reservation resource.Reservation
	Releaser    resource.Releaser
	Engine      driver.Engine
	Config      Config
}

type Session struct {
	id          string
	request     types.DecoderRequest
	reservation resource.Reservation
	releaser    resource.Releaser
	engine      driver.Engine
	config      Config

	stateLocker xsync.Mutex
	state       State

	// submitLocker serializes the senders to inputCh with its closure.
	submitLocker xsync.Mutex
	inputCh      chan *[]byte
	outputCh     chan *types.Frame
	closer       *closuresignaler.ClosureSignaler

	workerCancel context.CancelFunc
	workerDone   chan struct{}
	workerErr    *error

	properties *types.FrameProperties

	stats Stats
}

func New(
	ctx context.Context,
	params Params,
) (_ret *Session, _err error) {
	logger.Debugf(ctx, "New(%s)", params.Request)
	defer func() { logger.Debugf(ctx, "/New(%s): %v %v", params.Request, _ret, _err) }()

	if params.Engine == nil {
		return nil, fmt.Errorf("the engine is not set")
	}
	if params.Releaser == nil {
		return nil, fmt.Errorf("the releaser is not set")
	}
	if params.Reservation.IsZero() {
		return nil, fmt.Errorf("the reservation is not set")
	}
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if params.ID == "" {
		params.ID = uuid.New().String()
	}

	return &Session{
		id:          params.ID,
		request:     params.Request.Clone(),
		reservation: params.Reservation,
		releaser:    params.Releaser,
		engine:      params.Engine,
		config:      params.Config,
		state:       types.SessionStateCreated,
		inputCh:     make(chan *[]byte, params.Config.InputQueueDepth),
		outputCh:    make(chan *types.Frame, params.Config.OutputQueueDepth),
		closer:      closuresignaler.New(),
		workerDone:  make(chan struct{}),
	}, nil
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(%s, %s)", s.id, s.request)
}

func (s *Session) ID() string {
	return s.id
}

// Request returns a copy of the request the session was created with.
func (s *Session) Request() types.DecoderRequest {
	return s.request.Clone()
}

func (s *Session) Reservation() resource.Reservation {
	return s.reservation
}

func (s *Session) Config() Config {
	return s.config
}

func (s *Session) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

func (s *Session) State() State {
	return xsync.DoR1(xsync.WithNoLogging(context.Background(), true), &s.stateLocker, func() State {
		return s.state
	})
}

// transition moves the session into state "to" if the current state is
// one of "from", and returns the state before the call.
func (s *Session) transition(
	ctx context.Context,
	operation string,
	to State,
	from ...State,
) (State, error) {
	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &s.stateLocker, func() (State, error) {
		prev := s.state
		for _, allowed := range from {
			if prev == allowed {
				s.state = to
				logger.Debugf(ctx, "%s: %s -> %s", s, prev, to)
				return prev, nil
			}
		}
		return prev, types.ErrInvalidSessionState{State: prev, Operation: operation}
	})
}

func (s *Session) checkState(
	ctx context.Context,
	operation string,
	allowed ...State,
) error {
	state := s.State()
	for _, a := range allowed {
		if state == a {
			return nil
		}
	}
	return types.ErrInvalidSessionState{State: state, Operation: operation}
}

// Start launches the hardware worker and makes the session Active.
func (s *Session) Start(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Start")
	defer func() { logger.Debugf(ctx, "/Start: %v", _err) }()

	workerCtx, cancelFn := context.WithCancel(xcontext.DetachDone(ctx))
	err := xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.stateLocker, func() error {
		if s.state != types.SessionStateCreated {
			return types.ErrInvalidSessionState{State: s.state, Operation: "Start"}
		}
		s.state = types.SessionStateActive
		s.workerCancel = cancelFn
		return nil
	})
	if err != nil {
		cancelFn()
		return err
	}

	observability.Go(workerCtx, func(ctx context.Context) {
		defer close(s.workerDone)
		defer close(s.outputCh)
		err := s.serve(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, context.Canceled) && s.closer.IsClosed() {
			return
		}
		logger.Errorf(ctx, "the hardware worker of %s failed: %v", s, err)
		xatomic.StorePointer(&s.workerErr, &err)
	})
	return nil
}

func (s *Session) failure() error {
	errPtr := xatomic.LoadPointer(&s.workerErr)
	if errPtr == nil {
		return nil
	}
	return *errPtr
}

// SendEndOfStream marks the end of the input: the session becomes Draining
// and the engine is flushed once the queued input is consumed.
func (s *Session) SendEndOfStream(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "SendEndOfStream")
	defer func() { logger.Debugf(ctx, "/SendEndOfStream: %v", _err) }()

	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.submitLocker, func() error {
		if _, err := s.transition(ctx, "SendEndOfStream", types.SessionStateDraining, types.SessionStateActive); err != nil {
			return err
		}
		close(s.inputCh)
		return nil
	})
}

// GetProperties returns the format of decoded frames, which becomes known
// once the first frame is decoded.
func (s *Session) GetProperties(ctx context.Context) (types.FrameProperties, error) {
	if err := s.checkState(ctx, "GetProperties", types.SessionStateActive, types.SessionStateDraining); err != nil {
		return types.FrameProperties{}, err
	}
	props := xatomic.LoadPointer(&s.properties)
	if props == nil {
		return types.FrameProperties{}, types.ErrPropertiesNotYetAvailable{}
	}
	return *props, nil
}

// Close stops the session: blocked submits return ErrSessionClosed, queued
// frames are discarded, the engine is closed and the reservation released.
func (s *Session) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()

	prev, err := s.transition(
		ctx, "Close", types.SessionStateClosed,
		types.SessionStateCreated, types.SessionStateActive, types.SessionStateDraining,
	)
	if err != nil {
		return err
	}
	s.closer.Close(ctx)

	if prev != types.SessionStateCreated {
		s.workerCancel()
		<-s.workerDone
		for range s.outputCh {
			s.stats.FramesDiscarded.Inc()
		}
	}
	s.discardInput()

	var errs []error
	if err := s.engine.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("unable to close the engine: %w", err))
	}
	if err := s.releaser.Release(ctx, s.reservation); err != nil {
		errs = append(errs, fmt.Errorf("unable to release %s: %w", s.reservation, err))
	}
	return errors.Join(errs...)
}

func (s *Session) discardInput() {
	for {
		select {
		case buf, ok := <-s.inputCh:
			if !ok {
				return
			}
			putBuffer(buf)
		default:
			return
		}
	}
}
