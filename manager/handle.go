package manager

import (
	"fmt"

	"github.com/xaionaro-go/hwdec/session"
)

// Handle is an opaque reference to a session of a Manager. The zero value
// never refers to a session.
//
// A handle stays distinguishable from handles issued later for the same
// slot, so using it after DestroySession is detected.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "Handle(<nil>)"
	}
	return fmt.Sprintf("Handle(%d.%d)", h.index, h.generation)
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d.%d", h.index, h.generation)), nil
}

type slot struct {
	generation uint32
	session    *session.Session
}
