package session

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/atomic"
)

type Stats struct {
	BytesSubmitted  atomic.Uint64
	ChunksSubmitted atomic.Uint64
	WouldBlock      atomic.Uint64
	FramesDecoded   atomic.Uint64
	FramesReceived  atomic.Uint64
	FramesDiscarded atomic.Uint64
}

type StatsSnapshot struct {
	BytesSubmitted  uint64 `json:"bytes_submitted"`
	ChunksSubmitted uint64 `json:"chunks_submitted"`
	WouldBlock      uint64 `json:"would_block"`
	FramesDecoded   uint64 `json:"frames_decoded"`
	FramesReceived  uint64 `json:"frames_received"`
	FramesDiscarded uint64 `json:"frames_discarded,omitempty"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		BytesSubmitted:  s.BytesSubmitted.Load(),
		ChunksSubmitted: s.ChunksSubmitted.Load(),
		WouldBlock:      s.WouldBlock.Load(),
		FramesDecoded:   s.FramesDecoded.Load(),
		FramesReceived:  s.FramesReceived.Load(),
		FramesDiscarded: s.FramesDiscarded.Load(),
	}
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"submitted %s in %d chunks (%d would-block), decoded %d frames, received %d, discarded %d",
		humanize.Bytes(s.BytesSubmitted), s.ChunksSubmitted, s.WouldBlock,
		s.FramesDecoded, s.FramesReceived, s.FramesDiscarded,
	)
}
