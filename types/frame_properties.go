// frame_properties.go defines the format of decoded frames.

package types

import (
	"fmt"
)

type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r *Resolution) Parse(s string) error {
	_, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height)
	if err != nil {
		return fmt.Errorf("unable to parse resolution '%s': %w", s, err)
	}
	return nil
}

type PixelFormat string

func (pf PixelFormat) String() string {
	return string(pf)
}

const (
	PixelFormatUnknown    PixelFormat = "unknown"
	PixelFormatNV12       PixelFormat = "nv12"
	PixelFormatYUV420P    PixelFormat = "yuv420p"
	PixelFormatYUV420P10  PixelFormat = "yuv420p10le"
	PixelFormatP010       PixelFormat = "p010le"
	PixelFormatXilinxNV12 PixelFormat = "xv15"
)

func (pf PixelFormat) BitsPerPixel() uint {
	switch pf {
	case PixelFormatNV12, PixelFormatYUV420P:
		return 12
	case PixelFormatYUV420P10, PixelFormatP010, PixelFormatXilinxNV12:
		return 15
	}
	return 0
}

// FrameProperties describes the decoded-frame format once the hardware
// has determined it from the bitstream.
type FrameProperties struct {
	Resolution   Resolution  `json:"resolution"`
	PixelFormat  PixelFormat `json:"pixel_format"`
	BitsPerPixel uint        `json:"bits_per_pixel,omitempty"`
	FrameRate    Rational    `json:"frame_rate"`
}

func (p FrameProperties) String() string {
	return fmt.Sprintf("%s %s @ %s fps", p.Resolution, p.PixelFormat, p.FrameRate)
}
