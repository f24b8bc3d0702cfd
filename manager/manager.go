// Package manager is the façade clients use to create decode sessions on a
// device, route data and frames by handle and destroy the sessions.
//
// CreateSession and DestroySession are expected to be serialized by the
// caller; routing by handle is safe for concurrent use.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/session"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/xsync"
)

type Config struct {
	Session session.Config
}

func DefaultConfig() Config {
	return Config{
		Session: session.DefaultConfig(),
	}
}

type Manager struct {
	driver   driver.Driver
	registry *resource.Registry
	config   Config

	locker    xsync.Mutex
	slots     []slot
	freeSlots []uint32
}

// New enumerates the capabilities of the device into the capacity ledger.
func New(
	ctx context.Context,
	drv driver.Driver,
	cfg Config,
) (_ret *Manager, _err error) {
	logger.Debugf(ctx, "New(%s)", drv)
	defer func() { logger.Debugf(ctx, "/New(%s): %v", drv, _err) }()

	if err := cfg.Session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	caps, err := drv.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get the capabilities of %s: %w", drv, err)
	}
	return &Manager{
		driver:   drv,
		registry: resource.NewRegistry(ctx, caps),
		config:   cfg,
	}, nil
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager(%s)", m.driver)
}

func (m *Manager) Driver() driver.Driver {
	return m.driver
}

func (m *Manager) Registry() *resource.Registry {
	return m.registry
}

// Capacity returns the reserved/total engines per decoder kind.
func (m *Manager) Capacity() []resource.KindUsage {
	return m.registry.Snapshot()
}

// CreateSession validates the request, reserves an engine of the requested
// kind and starts a session on it.
func (m *Manager) CreateSession(
	ctx context.Context,
	req types.DecoderRequest,
) (_ret Handle, _err error) {
	logger.Debugf(ctx, "CreateSession: %s", spew.Sdump(req))
	defer func() { logger.Debugf(ctx, "/CreateSession(%s): %v %v", req, _ret, _err) }()

	if err := req.Validate(); err != nil {
		return Handle{}, err
	}
	req = req.Clone()

	reservation, err := m.registry.Reserve(ctx, req.Kind)
	if err != nil {
		return Handle{}, err
	}

	engine, err := m.driver.NewEngine(ctx, reservation, req)
	if err != nil {
		if rErr := m.registry.Release(ctx, reservation); rErr != nil {
			logger.Errorf(ctx, "unable to release %s: %v", reservation, rErr)
		}
		return Handle{}, fmt.Errorf("unable to initialize a %s engine: %w", req.Kind, err)
	}

	sess, err := session.New(ctx, session.Params{
		Request:     req,
		Reservation: reservation,
		Releaser:    m.registry,
		Engine:      engine,
		Config:      m.config.Session,
	})
	if err != nil {
		if cErr := engine.Close(ctx); cErr != nil {
			logger.Errorf(ctx, "unable to close engine %s: %v", engine, cErr)
		}
		if rErr := m.registry.Release(ctx, reservation); rErr != nil {
			logger.Errorf(ctx, "unable to release %s: %v", reservation, rErr)
		}
		return Handle{}, fmt.Errorf("unable to create a session: %w", err)
	}

	if err := sess.Start(ctx); err != nil {
		if cErr := sess.Close(ctx); cErr != nil {
			logger.Errorf(ctx, "unable to close session %s: %v", sess, cErr)
		}
		return Handle{}, fmt.Errorf("unable to start the session: %w", err)
	}

	return m.store(ctx, sess), nil
}

func (m *Manager) store(
	ctx context.Context,
	sess *session.Session,
) Handle {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &m.locker, func() Handle {
		var idx uint32
		if n := len(m.freeSlots); n > 0 {
			idx = m.freeSlots[n-1]
			m.freeSlots = m.freeSlots[:n-1]
		} else {
			idx = uint32(len(m.slots))
			m.slots = append(m.slots, slot{})
		}
		s := &m.slots[idx]
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		s.session = sess
		return Handle{index: idx, generation: s.generation}
	})
}

func (m *Manager) lookupLocked(h Handle) (*slot, error) {
	if h.IsZero() || int(h.index) >= len(m.slots) {
		return nil, types.ErrInvalidHandle{}
	}
	s := &m.slots[h.index]
	if h.generation > s.generation {
		return nil, types.ErrInvalidHandle{}
	}
	if h.generation < s.generation || s.session == nil {
		return nil, types.ErrInvalidSessionState{State: types.SessionStateClosed}
	}
	return s, nil
}

// Session returns the session referred by the handle.
func (m *Manager) Session(
	ctx context.Context,
	h Handle,
) (*session.Session, error) {
	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &m.locker, func() (*session.Session, error) {
		s, err := m.lookupLocked(h)
		if err != nil {
			return nil, err
		}
		return s.session, nil
	})
}

func (m *Manager) take(
	ctx context.Context,
	h Handle,
) (*session.Session, error) {
	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &m.locker, func() (*session.Session, error) {
		s, err := m.lookupLocked(h)
		if err != nil {
			return nil, err
		}
		sess := s.session
		s.session = nil
		m.freeSlots = append(m.freeSlots, h.index)
		return sess, nil
	})
}

// DestroySession closes the session discarding any undelivered frames and
// releases its engine. The handle becomes stale.
func (m *Manager) DestroySession(
	ctx context.Context,
	h Handle,
) (_err error) {
	logger.Debugf(ctx, "DestroySession(%s)", h)
	defer func() { logger.Debugf(ctx, "/DestroySession(%s): %v", h, _err) }()

	sess, err := m.take(ctx, h)
	if err != nil {
		return err
	}
	return sess.Close(ctx)
}

func (m *Manager) Submit(
	ctx context.Context,
	h Handle,
	chunk []byte,
	blocking bool,
) (int, error) {
	sess, err := m.Session(ctx, h)
	if err != nil {
		return 0, err
	}
	return sess.Submit(ctx, chunk, blocking)
}

func (m *Manager) SendEndOfStream(
	ctx context.Context,
	h Handle,
) error {
	sess, err := m.Session(ctx, h)
	if err != nil {
		return err
	}
	return sess.SendEndOfStream(ctx)
}

func (m *Manager) ReceiveFrame(
	ctx context.Context,
	h Handle,
) (*types.Frame, error) {
	sess, err := m.Session(ctx, h)
	if err != nil {
		return nil, err
	}
	return sess.ReceiveFrame(ctx)
}

func (m *Manager) GetProperties(
	ctx context.Context,
	h Handle,
) (types.FrameProperties, error) {
	sess, err := m.Session(ctx, h)
	if err != nil {
		return types.FrameProperties{}, err
	}
	return sess.GetProperties(ctx)
}

// Close destroys every live session.
func (m *Manager) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()

	sessions := xsync.DoR1(xsync.WithNoLogging(ctx, true), &m.locker, func() []*session.Session {
		var result []*session.Session
		for idx := range m.slots {
			s := &m.slots[idx]
			if s.session == nil {
				continue
			}
			result = append(result, s.session)
			s.session = nil
			m.freeSlots = append(m.freeSlots, uint32(idx))
		}
		return result
	})

	var errs []error
	for _, sess := range sessions {
		if err := sess.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unable to close %v: %w", sess, err))
		}
	}
	return errors.Join(errs...)
}
