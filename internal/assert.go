// Package internal contains helpers shared by the hwdec packages that are
// not part of the public API.
package internal

import (
	"context"

	"github.com/xaionaro-go/hwdec/logger"
)

// Assert panics (through the logger, so the message reaches the log sink
// first) if mustBeTrue is false. It guards accounting invariants whose
// violation means memory corruption or a bug in this module.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panic(ctx, "assertion failed", extraArgs)
}
