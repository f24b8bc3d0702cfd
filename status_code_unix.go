//go:build unix

package hwdec

import (
	"golang.org/x/sys/unix"
)

const eagain = int32(unix.EAGAIN)
