// Package hwdec is the process-wide entry point: Initialize the device once
// from a manifest, then create decode sessions and exchange data and frames
// with them by handle.
package hwdec

import (
	"context"

	_ "github.com/xaionaro-go/hwdec/driver/simulated"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/manifest"
	"github.com/xaionaro-go/hwdec/types"
	"github.com/xaionaro-go/xsync"
)

var (
	defaultManagerLocker xsync.Mutex
	defaultManager       *manager.Manager
)

// Initialize loads the device manifest and prepares the default Manager.
// It must be called once, before any other function of the package.
func Initialize(
	ctx context.Context,
	manifestPath string,
) (_err error) {
	logger.Debugf(ctx, "Initialize(%s)", manifestPath)
	defer func() { logger.Debugf(ctx, "/Initialize(%s): %v", manifestPath, _err) }()

	return xsync.DoR1(ctx, &defaultManagerLocker, func() error {
		if defaultManager != nil {
			return types.ErrAlreadyInitialized{}
		}
		m, err := manifest.Load(ctx, manifestPath)
		if err != nil {
			return err
		}
		mgr, err := m.NewManager(ctx)
		if err != nil {
			return err
		}
		defaultManager = mgr
		return nil
	})
}

// InitializeWithManager makes the given Manager the default one.
func InitializeWithManager(
	ctx context.Context,
	mgr *manager.Manager,
) error {
	return xsync.DoR1(ctx, &defaultManagerLocker, func() error {
		if defaultManager != nil {
			return types.ErrAlreadyInitialized{}
		}
		defaultManager = mgr
		return nil
	})
}

// Teardown destroys the remaining sessions and forgets the default
// Manager, so that Initialize may be called again.
func Teardown(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Teardown")
	defer func() { logger.Debugf(ctx, "/Teardown: %v", _err) }()

	mgr := xsync.DoR1(ctx, &defaultManagerLocker, func() *manager.Manager {
		mgr := defaultManager
		defaultManager = nil
		return mgr
	})
	if mgr == nil {
		return types.ErrNotInitialized{}
	}
	return mgr.Close(ctx)
}

// Default returns the Manager prepared by Initialize.
func Default(ctx context.Context) (*manager.Manager, error) {
	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &defaultManagerLocker, func() (*manager.Manager, error) {
		if defaultManager == nil {
			return nil, types.ErrNotInitialized{}
		}
		return defaultManager, nil
	})
}

// CreateSession returns the zero Handle on failure.
func CreateSession(
	ctx context.Context,
	req types.DecoderRequest,
) (manager.Handle, error) {
	mgr, err := Default(ctx)
	if err != nil {
		return manager.Handle{}, err
	}
	return mgr.CreateSession(ctx, req)
}

func DestroySession(
	ctx context.Context,
	h manager.Handle,
) error {
	mgr, err := Default(ctx)
	if err != nil {
		return err
	}
	return mgr.DestroySession(ctx, h)
}

// SendData submits a chunk of the bitstream and returns the amount of
// consumed bytes. See session.Session.Submit.
func SendData(
	ctx context.Context,
	h manager.Handle,
	chunk []byte,
	blocking bool,
) (int, error) {
	mgr, err := Default(ctx)
	if err != nil {
		return 0, err
	}
	return mgr.Submit(ctx, h, chunk, blocking)
}

func SendEndOfStream(
	ctx context.Context,
	h manager.Handle,
) error {
	mgr, err := Default(ctx)
	if err != nil {
		return err
	}
	return mgr.SendEndOfStream(ctx, h)
}

func GetProperties(
	ctx context.Context,
	h manager.Handle,
) (types.FrameProperties, error) {
	mgr, err := Default(ctx)
	if err != nil {
		return types.FrameProperties{}, err
	}
	return mgr.GetProperties(ctx, h)
}

func ReceiveFrame(
	ctx context.Context,
	h manager.Handle,
) (*types.Frame, error) {
	mgr, err := Default(ctx)
	if err != nil {
		return nil, err
	}
	return mgr.ReceiveFrame(ctx, h)
}

// IsSteadyState returns true if the error only tells to try again later.
func IsSteadyState(err error) bool {
	return types.IsSteadyState(err)
}
