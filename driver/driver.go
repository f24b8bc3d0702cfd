// driver.go defines the boundary to the hardware (or its substitute).

// Package driver defines how the session layer talks to the hardware that
// performs the actual decoding, and keeps a registry of the available
// driver implementations.
package driver

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/types"
)

// Driver is one device able to host decode engines.
type Driver interface {
	fmt.Stringer

	// Capabilities enumerates how many engines of each kind the device has.
	Capabilities(ctx context.Context) (map[types.DecoderKind]uint, error)

	// NewEngine binds a new engine to an already secured reservation.
	NewEngine(
		ctx context.Context,
		reservation resource.Reservation,
		req types.DecoderRequest,
	) (Engine, error)
}

// Engine is one hardware decode engine bound to a session.
//
// It is called from a single goroutine at a time and never concurrently.
type Engine interface {
	fmt.Stringer

	// SendData hands a piece of the encoded bitstream to the engine.
	// Chunk boundaries do not need to match access-unit boundaries. The
	// engine must not retain data after the call returns.
	SendData(ctx context.Context, data []byte) error

	// ReceiveFrame returns the next decoded frame, ErrAgain if the engine
	// needs more input, or ErrEOF after SendEndOfStream once everything
	// is flushed.
	ReceiveFrame(ctx context.Context) (*types.Frame, error)

	SendEndOfStream(ctx context.Context) error

	Close(ctx context.Context) error
}
