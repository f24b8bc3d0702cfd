//go:build with_libav

// Package libav provides a driver decoding with FFmpeg (through go-astiav).
// It is a software stand-in for the hardware: each engine is an FFmpeg
// decoder context fed with the access units found in the submitted stream.
package libav

import (
	"context"
	"fmt"
	"maps"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/types"
)

const Name = "libav"

const (
	// ParamCopyData makes the engine copy the pixel data out of FFmpeg
	// frames into types.Frame.Data.
	ParamCopyData = "copy_data"

	// ParamFrameRate is used to compute PTS of decoded frames.
	ParamFrameRate = "frame_rate"

	// ParamThreads is passed to FFmpeg as the "threads" option.
	ParamThreads = "threads"
)

func init() {
	driver.Register(Name, func(ctx context.Context, cfg driver.Config) (driver.Driver, error) {
		return New(ctx, cfg)
	})
}

func codecID(kind types.DecoderKind) (astiav.CodecID, bool) {
	switch kind {
	case types.DecoderKindH264:
		return astiav.CodecIDH264, true
	case types.DecoderKindHEVC:
		return astiav.CodecIDHevc, true
	}
	return astiav.CodecIDNone, false
}

type Driver struct {
	Config driver.Config
}

var _ driver.Driver = (*Driver)(nil)

func New(
	ctx context.Context,
	cfg driver.Config,
) (*Driver, error) {
	for kind := range cfg.Engines {
		id, ok := codecID(kind)
		if !ok {
			return nil, driver.ErrUnsupportedKind{Driver: Name, Kind: kind.String()}
		}
		if astiav.FindDecoder(id) == nil {
			return nil, fmt.Errorf("FFmpeg is built without a decoder for %s", kind)
		}
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device options: %w", err)
	}
	return &Driver{Config: cfg}, nil
}

func (d *Driver) String() string {
	return fmt.Sprintf("LibAV(%s)", d.Config.DeviceName)
}

func (d *Driver) Capabilities(ctx context.Context) (map[types.DecoderKind]uint, error) {
	return maps.Clone(d.Config.Engines), nil
}

func (d *Driver) NewEngine(
	ctx context.Context,
	reservation resource.Reservation,
	req types.DecoderRequest,
) (_ret driver.Engine, _err error) {
	logger.Debugf(ctx, "NewEngine(%v, %v)", reservation, req)
	defer func() { logger.Debugf(ctx, "/NewEngine(%v, %v): %v %v", reservation, req, _ret, _err) }()

	if _, ok := d.Config.Engines[req.Kind]; !ok {
		return nil, driver.ErrUnsupportedKind{Driver: Name, Kind: req.Kind.String()}
	}
	params := append(d.Config.Options.Clone(), req.CustomParams...).Deduplicate()
	return newEngine(ctx, fmt.Sprintf("%s/%d", d.Config.DeviceName, reservation.ID), req, params)
}
