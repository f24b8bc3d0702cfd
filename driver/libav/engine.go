//go:build with_libav

package libav

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/types"
)

type Engine struct {
	name      string
	intraOnly bool
	copyData  bool
	frameRate types.Rational

	closer       *astikit.Closer
	codec        *astiav.Codec
	codecContext *astiav.CodecContext
	packet       *astiav.Packet
	frame        *astiav.Frame
	splitter     *annexb.Splitter

	receivedKeyFrame bool
	packetCount      int64
	frameCount       uint64
	pending          []*types.Frame
	endOfStream      bool
}

var _ driver.Engine = (*Engine)(nil)

func newEngine(
	ctx context.Context,
	name string,
	req types.DecoderRequest,
	params types.Parameters,
) (_ret *Engine, _err error) {
	id, ok := codecID(req.Kind)
	if !ok {
		return nil, driver.ErrUnsupportedKind{Driver: Name, Kind: req.Kind.String()}
	}
	codec, err := annexb.CodecFromDecoderKind(req.Kind)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		name:      name,
		intraOnly: req.IntraOnly,
		frameRate: types.Rational{Num: 30, Den: 1},
		closer:    astikit.NewCloser(),
		splitter:  annexb.NewSplitter(codec),
	}
	defer func() {
		if _err != nil {
			e.closer.Close()
		}
	}()

	if v, ok := params.Get(ParamCopyData); ok {
		e.copyData = v == "1" || v == "true"
	}
	if v, ok := params.Get(ParamFrameRate); ok {
		r, err := types.RationalFromString(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse the frame rate: %w", err)
		}
		e.frameRate = *r
	}

	e.codec = astiav.FindDecoder(id)
	if e.codec == nil {
		return nil, fmt.Errorf("unable to find a decoder for %s", req.Kind)
	}
	e.codecContext = astiav.AllocCodecContext(e.codec)
	if e.codecContext == nil {
		return nil, fmt.Errorf("unable to allocate a codec context")
	}
	e.closer.Add(e.codecContext.Free)

	options := astiav.NewDictionary()
	e.closer.Add(options.Free)
	if v, ok := params.Get(ParamThreads); ok {
		if err := options.Set("threads", v, 0); err != nil {
			return nil, fmt.Errorf("unable to set option 'threads' to '%s': %w", v, err)
		}
	}
	if err := e.codecContext.Open(e.codec, options); err != nil {
		return nil, fmt.Errorf("unable to open the decoder '%s': %w", e.codec.Name(), err)
	}
	logger.Debugf(ctx, "opened decoder '%s' for %s", e.codec.Name(), name)

	e.packet = astiav.AllocPacket()
	e.closer.Add(e.packet.Free)
	e.frame = astiav.AllocFrame()
	e.closer.Add(e.frame.Free)
	return e, nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("LibAVEngine(%s, %s)", e.name, e.codec.Name())
}

func (e *Engine) SendData(
	ctx context.Context,
	data []byte,
) error {
	if e.endOfStream {
		return fmt.Errorf("the end of stream was already signaled")
	}
	e.splitter.Write(data)
	return e.decodeReady(ctx)
}

func (e *Engine) decodeReady(ctx context.Context) error {
	for au := e.splitter.Next(); au != nil; au = e.splitter.Next() {
		if err := e.decode(ctx, au); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) decode(
	ctx context.Context,
	au *annexb.AccessUnit,
) error {
	if !e.receivedKeyFrame && !au.KeyFrame {
		logger.Tracef(ctx, "dropping a non-key access unit before the first key frame")
		return nil
	}
	if e.intraOnly && !au.KeyFrame {
		return nil
	}
	e.receivedKeyFrame = true

	if err := e.packet.FromData(au.Data); err != nil {
		return fmt.Errorf("unable to fill a packet: %w", err)
	}
	defer e.packet.Unref()
	e.packet.SetPts(e.packetCount)
	e.packet.SetDts(e.packetCount)
	e.packetCount++
	if au.KeyFrame {
		e.packet.SetFlags(e.packet.Flags().Add(astiav.PacketFlagKey))
	}

	for {
		err := e.codecContext.SendPacket(e.packet)
		if err == nil {
			break
		}
		if !errors.Is(err, astiav.ErrEagain) {
			return fmt.Errorf("unable to send a packet to the decoder: %w", err)
		}
		// the decoder wants its output to be taken before more input
		if err := e.receiveAll(ctx); err != nil {
			return err
		}
	}
	return e.receiveAll(ctx)
}

// receiveAll moves every frame FFmpeg has ready into the pending queue.
func (e *Engine) receiveAll(ctx context.Context) error {
	for {
		err := e.codecContext.ReceiveFrame(e.frame)
		switch {
		case err == nil:
		case errors.Is(err, astiav.ErrEagain):
			return nil
		case errors.Is(err, astiav.ErrEof):
			e.endOfStream = true
			return nil
		default:
			return fmt.Errorf("unable to receive a frame from the decoder: %w", err)
		}
		f, err := e.convertFrame()
		e.frame.Unref()
		if err != nil {
			return err
		}
		logger.Tracef(ctx, "decoded %s", f)
		e.pending = append(e.pending, f)
	}
}

func (e *Engine) convertFrame() (*types.Frame, error) {
	pixFmt := types.PixelFormat(e.frame.PixelFormat().String())
	seq := e.frameCount
	e.frameCount++
	f := &types.Frame{
		Sequence: seq,
		PTS:      e.frameRate.FrameTimestamp(uint64(max(e.frame.Pts(), 0))),
		KeyFrame: e.frame.Flags().Has(astiav.FrameFlagKey),
		Properties: types.FrameProperties{
			Resolution: types.Resolution{
				Width:  uint32(e.frame.Width()),
				Height: uint32(e.frame.Height()),
			},
			PixelFormat:  pixFmt,
			BitsPerPixel: pixFmt.BitsPerPixel(),
			FrameRate:    e.frameRate,
		},
	}
	if e.copyData {
		data, err := e.frame.Data().Bytes(1)
		if err != nil {
			return nil, fmt.Errorf("unable to copy the frame data: %w", err)
		}
		f.Data = data
	}
	return f, nil
}

func (e *Engine) ReceiveFrame(ctx context.Context) (*types.Frame, error) {
	if len(e.pending) == 0 {
		if e.endOfStream {
			return nil, driver.ErrEOF{}
		}
		return nil, driver.ErrAgain{}
	}
	f := e.pending[0]
	e.pending[0] = nil
	e.pending = e.pending[1:]
	return f, nil
}

func (e *Engine) SendEndOfStream(ctx context.Context) error {
	if e.endOfStream {
		return nil
	}
	e.splitter.Flush()
	if err := e.decodeReady(ctx); err != nil {
		return err
	}
	if err := e.codecContext.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("unable to send the flush request to the decoder: %w", err)
	}
	if err := e.receiveAll(ctx); err != nil {
		return err
	}
	if !e.endOfStream {
		return fmt.Errorf("the decoder did not report the end of stream after flushing")
	}
	return nil
}

func (e *Engine) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close: %s", e.name)
	e.pending = nil
	return e.closer.Close()
}
