package hwdec

import (
	"errors"

	"github.com/xaionaro-go/hwdec/types"
)

const (
	StatusSuccess     = int32(0)
	StatusError       = int32(-1)
	StatusEndOfStream = int32(-2)
	StatusTryAgain    = -eagain
)

// StatusCode converts an error of this module into the status code of the
// C interface of the decoder.
func StatusCode(err error) int32 {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.As(err, &types.ErrWouldBlock{}), errors.As(err, &types.ErrNoFrameAvailable{}):
		return StatusTryAgain
	case errors.As(err, &types.ErrEndOfStream{}):
		return StatusEndOfStream
	default:
		return StatusError
	}
}
