// Package annexb finds access-unit boundaries in H.264/H.265 Annex-B byte
// streams. It looks only at NAL unit headers and the first bit of slice
// headers; it does not parse parameter sets.
package annexb

import (
	"fmt"

	"github.com/xaionaro-go/hwdec/types"
)

type Codec int

const (
	UndefinedCodec = Codec(iota)
	CodecH264
	CodecHEVC
)

func (c Codec) String() string {
	switch c {
	case UndefinedCodec:
		return "<undefined>"
	case CodecH264:
		return "h264"
	case CodecHEVC:
		return "hevc"
	}
	return fmt.Sprintf("<unexpected_%d>", int(c))
}

func CodecFromDecoderKind(kind types.DecoderKind) (Codec, error) {
	switch kind {
	case types.DecoderKindH264:
		return CodecH264, nil
	case types.DecoderKindHEVC:
		return CodecHEVC, nil
	}
	return UndefinedCodec, fmt.Errorf("decoder kind '%s' does not use an Annex-B byte stream", kind)
}

// NALUnit is a view on a NAL unit without its start code.
type NALUnit []byte

func (c Codec) headerSize() int {
	if c == CodecHEVC {
		return 2
	}
	return 1
}

func (c Codec) Type(nal NALUnit) uint8 {
	if len(nal) == 0 {
		return 0xff
	}
	switch c {
	case CodecH264:
		return nal[0] & 0x1f
	case CodecHEVC:
		return (nal[0] >> 1) & 0x3f
	}
	return 0xff
}

// IsVCL returns true for NAL units carrying slice data.
func (c Codec) IsVCL(nal NALUnit) bool {
	t := c.Type(nal)
	switch c {
	case CodecH264:
		return t >= 1 && t <= 5
	case CodecHEVC:
		return t <= 31
	}
	return false
}

// IsKeyFrame returns true for IDR (H.264) and IRAP (H.265) slices.
func (c Codec) IsKeyFrame(nal NALUnit) bool {
	t := c.Type(nal)
	switch c {
	case CodecH264:
		return t == 5
	case CodecHEVC:
		return t >= 16 && t <= 23
	}
	return false
}

// IsFirstSliceOfPicture checks first_mb_in_slice == 0 (H.264, ue(v) zero
// is a single '1' bit) or first_slice_segment_in_pic_flag (H.265).
func (c Codec) IsFirstSliceOfPicture(nal NALUnit) bool {
	if !c.IsVCL(nal) {
		return false
	}
	h := c.headerSize()
	if len(nal) <= h {
		return false
	}
	return nal[h]&0x80 != 0
}

// StartsAccessUnit returns true for non-VCL NAL units which may only
// appear before the first slice of a picture.
func (c Codec) StartsAccessUnit(nal NALUnit) bool {
	t := c.Type(nal)
	switch c {
	case CodecH264:
		return t == 6 || t == 7 || t == 8 || t == 9 || (t >= 14 && t <= 18)
	case CodecHEVC:
		return (t >= 32 && t <= 35) || t == 39 || (t >= 41 && t <= 44) || (t >= 48 && t <= 55)
	}
	return false
}
