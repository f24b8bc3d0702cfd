package annexb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func splitAll(s *Splitter, stream []byte, chunkSize int) []*AccessUnit {
	var result []*AccessUnit
	for len(stream) > 0 {
		n := min(chunkSize, len(stream))
		s.Write(stream[:n])
		stream = stream[n:]
		for au := s.Next(); au != nil; au = s.Next() {
			result = append(result, au)
		}
	}
	s.Flush()
	for au := s.Next(); au != nil; au = s.Next() {
		result = append(result, au)
	}
	return result
}

func TestSplitterAccessUnits(t *testing.T) {
	for _, codec := range []Codec{CodecH264, CodecHEVC} {
		for _, chunkSize := range []int{1, 3, 7, 64, 1 << 20} {
			t.Run(codec.String(), func(t *testing.T) {
				stream := Generate(codec, 10, 4)
				aus := splitAll(NewSplitter(codec), stream, chunkSize)
				require.Len(t, aus, 10, "chunkSize:%d", chunkSize)

				var total int
				for idx, au := range aus {
					require.Equal(t, idx%4 == 0, au.KeyFrame, "au #%d", idx)
					if au.KeyFrame {
						require.Greater(t, au.NALCount, 1)
					} else {
						require.Equal(t, 1, au.NALCount)
					}
					total += len(au.Data)
				}
				require.Equal(t, len(stream), total, "all NAL units must be preserved with 4-byte start codes")
			})
		}
	}
}

func TestSplitterThreeByteStartCodesAndGarbage(t *testing.T) {
	stream := []byte{
		0xde, 0xad, // garbage before the first start code
		0, 0, 1, 0x65, 0x88, 0x11,
		0, 0, 1, 0x41, 0x9a, 0x22,
		0, 0, 1, 0x41, 0x9a, 0x33, 0, 0, // trailing zeros are dropped
	}
	aus := splitAll(NewSplitter(CodecH264), stream, 5)
	require.Len(t, aus, 3)
	require.True(t, aus[0].KeyFrame)
	require.Equal(t, []byte{0, 0, 0, 1, 0x41, 0x9a, 0x33}, aus[2].Data)
}

func TestSplitterMultiSlicePicture(t *testing.T) {
	stream := []byte{
		0, 0, 0, 1, 0x65, 0x88, 0x11, // first slice of an IDR picture
		0, 0, 0, 1, 0x65, 0x40, 0x12, // second slice: first_mb_in_slice != 0
		0, 0, 0, 1, 0x41, 0x9a, 0x13,
	}
	aus := splitAll(NewSplitter(CodecH264), stream, len(stream))
	require.Len(t, aus, 2)
	require.Equal(t, 2, aus[0].NALCount)
}

func TestSplitterEmpty(t *testing.T) {
	s := NewSplitter(CodecH264)
	require.Nil(t, s.Next())
	s.Flush()
	require.Nil(t, s.Next())
}
