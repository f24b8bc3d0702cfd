package types

import (
	"fmt"
	"time"
)

// Frame describes one decoded output frame.
type Frame struct {
	// Sequence is the position of the frame in the production order of the
	// hardware, starting from zero.
	Sequence   uint64
	PTS        time.Duration
	KeyFrame   bool
	Properties FrameProperties

	// Data is the pixel data if the driver copies it out of the device
	// memory; nil otherwise.
	Data []byte
}

func (f *Frame) String() string {
	if f == nil {
		return "Frame(nil)"
	}
	return fmt.Sprintf("Frame(#%d, pts:%v, key:%t, %s)", f.Sequence, f.PTS, f.KeyFrame, f.Properties.Resolution)
}
