package annexb

import (
	"bytes"
)

var startCode = []byte{0, 0, 1}

// AccessUnit is the set of NAL units of one coded picture, re-serialized
// with 4-byte start codes.
type AccessUnit struct {
	Data     []byte
	KeyFrame bool
	NALCount int
}

// Splitter reassembles access units from arbitrarily chunked input.
type Splitter struct {
	codec   Codec
	buf     []byte
	current *AccessUnit
	hasVCL  bool
	ready   []*AccessUnit
}

func NewSplitter(codec Codec) *Splitter {
	return &Splitter{
		codec: codec,
	}
}

func (s *Splitter) Codec() Codec {
	return s.codec
}

// Write appends more of the byte stream. It never fails; the input is
// copied.
func (s *Splitter) Write(data []byte) {
	s.buf = append(s.buf, data...)
}

// Buffered returns the amount of bytes not yet assigned to an access unit.
func (s *Splitter) Buffered() int {
	return len(s.buf)
}

// Next returns the next complete access unit, or nil if more data is
// required to know where the current one ends.
func (s *Splitter) Next() *AccessUnit {
	for len(s.ready) == 0 {
		if !s.parseNALUnit() {
			return nil
		}
	}
	au := s.ready[0]
	s.ready[0] = nil
	s.ready = s.ready[1:]
	return au
}

func (s *Splitter) parseNALUnit() bool {
	p0 := bytes.Index(s.buf, startCode)
	if p0 < 0 {
		return false
	}
	p1 := bytes.Index(s.buf[p0+len(startCode):], startCode)
	if p1 < 0 {
		s.buf = s.buf[p0:]
		return false
	}
	p1 += p0 + len(startCode)
	s.addNALUnit(trimTrailingZeros(s.buf[p0+len(startCode) : p1]))
	s.buf = s.buf[p1:]
	return true
}

// Flush marks the end of the stream: the buffered tail becomes the last
// NAL unit and the current access unit is completed. The remaining units
// are then returned by Next.
func (s *Splitter) Flush() {
	for s.parseNALUnit() {
	}
	if p0 := bytes.Index(s.buf, startCode); p0 >= 0 {
		s.addNALUnit(trimTrailingZeros(s.buf[p0+len(startCode):]))
	}
	s.buf = nil
	if s.current != nil {
		s.ready = append(s.ready, s.current)
		s.current = nil
		s.hasVCL = false
	}
}

func (s *Splitter) addNALUnit(nal NALUnit) {
	if len(nal) == 0 {
		return
	}
	if s.current != nil && s.hasVCL {
		if s.codec.StartsAccessUnit(nal) || s.codec.IsFirstSliceOfPicture(nal) {
			s.ready = append(s.ready, s.current)
			s.current = nil
			s.hasVCL = false
		}
	}
	if s.current == nil {
		s.current = &AccessUnit{}
	}
	s.current.Data = append(s.current.Data, 0, 0, 0, 1)
	s.current.Data = append(s.current.Data, nal...)
	s.current.NALCount++
	if s.codec.IsVCL(nal) {
		s.hasVCL = true
		if s.codec.IsKeyFrame(nal) {
			s.current.KeyFrame = true
		}
	}
}

func trimTrailingZeros(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}
