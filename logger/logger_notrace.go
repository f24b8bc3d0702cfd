//go:build !debug_trace
// +build !debug_trace

package logger

import (
	"context"
)

// Tracef is a no-op unless built with the debug_trace tag; the hot paths
// (Submit, ReceiveFrame, the hardware worker loop) call it per chunk.
func Tracef(ctx context.Context, format string, args ...any) {}
