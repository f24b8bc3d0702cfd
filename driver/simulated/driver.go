// Package simulated provides a pure-Go stand-in for a hardware decoder
// device: it finds access units in the submitted Annex-B stream and
// produces one frame descriptor (without pixel data) per decoded picture.
package simulated

import (
	"context"
	"fmt"
	"maps"

	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/types"
)

const Name = "simulated"

func init() {
	driver.Register(Name, func(ctx context.Context, cfg driver.Config) (driver.Driver, error) {
		return New(ctx, cfg)
	})
}

const (
	ParamWidth         = "width"
	ParamHeight        = "height"
	ParamPixelFormat   = "pixel_format"
	ParamFrameRate     = "frame_rate"
	ParamDecodeLatency = "decode_latency"
)

var DefaultProperties = types.FrameProperties{
	Resolution:   types.Resolution{Width: 1920, Height: 1080},
	PixelFormat:  types.PixelFormatNV12,
	BitsPerPixel: types.PixelFormatNV12.BitsPerPixel(),
	FrameRate:    types.Rational{Num: 30, Den: 1},
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
		if _, err := annexb.CodecFromDecoderKind(kind); err != nil {
			return nil, driver.ErrUnsupportedKind{Driver: Name, Kind: kind.String()}
		}
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device options: %w", err)
	}
	logger.Debugf(ctx, "simulated device '%s' with engines %v", cfg.DeviceName, cfg.Engines)
	return &Driver{
		Config: cfg,
	}, nil
}

func (d *Driver) String() string {
	return fmt.Sprintf("Simulated(%s)", d.Config.DeviceName)
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
	codec, err := annexb.CodecFromDecoderKind(req.Kind)
	if err != nil {
		return nil, err
	}

	params := append(d.Config.Options.Clone(), req.CustomParams...).Deduplicate()
	cfg, err := engineConfigFromParams(params)
	if err != nil {
		return nil, err
	}
	cfg.IntraOnly = req.IntraOnly

	return newEngine(fmt.Sprintf("%s/%d", d.Config.DeviceName, reservation.ID), codec, cfg), nil
}

func engineConfigFromParams(params types.Parameters) (EngineConfig, error) {
	cfg := EngineConfig{
		Properties: DefaultProperties,
	}
	if v, ok, err := params.GetInt(ParamWidth); err != nil {
		return cfg, err
	} else if ok {
		if v <= 0 {
			return cfg, fmt.Errorf("width must be positive, got %d", v)
		}
		cfg.Properties.Resolution.Width = uint32(v)
	}
	if v, ok, err := params.GetInt(ParamHeight); err != nil {
		return cfg, err
	} else if ok {
		if v <= 0 {
			return cfg, fmt.Errorf("height must be positive, got %d", v)
		}
		cfg.Properties.Resolution.Height = uint32(v)
	}
	if v, ok := params.Get(ParamPixelFormat); ok {
		cfg.Properties.PixelFormat = types.PixelFormat(v)
		cfg.Properties.BitsPerPixel = cfg.Properties.PixelFormat.BitsPerPixel()
	}
	if v, ok := params.Get(ParamFrameRate); ok {
		r, err := types.RationalFromString(v)
		if err != nil {
			return cfg, fmt.Errorf("unable to parse the frame rate: %w", err)
		}
		if r.IsZero() {
			return cfg, fmt.Errorf("the frame rate must be positive, got %s", r)
		}
		cfg.Properties.FrameRate = *r
	}
	if v, ok, err := params.GetDuration(ParamDecodeLatency); err != nil {
		return cfg, err
	} else if ok {
		cfg.DecodeLatency = v
	}
	return cfg, nil
}
