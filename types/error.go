// error.go defines the error taxonomy shared by the registry, sessions and the manager.

package types

import (
	"errors"
	"fmt"
)

type ErrCapacityExhausted struct {
	Kind  DecoderKind
	Total uint
}

func (e ErrCapacityExhausted) Error() string {
	return fmt.Sprintf("all %d engines of decoder kind '%s' are reserved", e.Total, e.Kind)
}

type ErrUnknownDecoderKind struct {
	Kind DecoderKind
}

func (e ErrUnknownDecoderKind) Error() string {
	return fmt.Sprintf("decoder kind '%s' is not configured on this device", e.Kind)
}

type ErrInvalidRequest struct {
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return "invalid decoder request: " + e.Reason
}

type ErrInvalidSessionState struct {
	State     SessionState
	Operation string
}

func (e ErrInvalidSessionState) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("the session is in state '%s'", e.State)
	}
	return fmt.Sprintf("operation %s is not allowed in session state '%s'", e.Operation, e.State)
}

type ErrDoubleRelease struct {
	ReservationID uint64
}

func (e ErrDoubleRelease) Error() string {
	return fmt.Sprintf("reservation #%d is not outstanding (released twice?)", e.ReservationID)
}

type ErrWouldBlock struct{}

func (ErrWouldBlock) Error() string {
	return "the hardware input queue is full"
}

type ErrSessionClosed struct{}

func (ErrSessionClosed) Error() string {
	return "the session was closed"
}

type ErrNoFrameAvailable struct{}

func (ErrNoFrameAvailable) Error() string {
	return "no decoded frame is available, yet"
}

type ErrEndOfStream struct{}

func (ErrEndOfStream) Error() string {
	return "end of stream"
}

type ErrPropertiesNotYetAvailable struct{}

func (ErrPropertiesNotYetAvailable) Error() string {
	return "frame properties are not known, yet"
}

type ErrInvalidHandle struct{}

func (ErrInvalidHandle) Error() string {
	return "invalid session handle"
}

type ErrNotInitialized struct{}

func (ErrNotInitialized) Error() string {
	return "not initialized"
}

type ErrAlreadyInitialized struct{}

func (ErrAlreadyInitialized) Error() string {
	return "already initialized"
}

type ErrEngine struct {
	Err error
}

func (e ErrEngine) Error() string {
	return fmt.Sprintf("the hardware engine failed: %v", e.Err)
}

func (e ErrEngine) Unwrap() error {
	return e.Err
}

// IsSteadyState returns true if the error is an expected polling signal
// rather than a failure.
func IsSteadyState(err error) bool {
	return errors.As(err, &ErrWouldBlock{}) || errors.As(err, &ErrNoFrameAvailable{})
}
