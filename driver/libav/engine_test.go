//go:build with_libav

package libav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/resource"
	"github.com/xaionaro-go/hwdec/types"
)

func TestDriver(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, driver.Config{
		Engines: map[types.DecoderKind]uint{types.DecoderKindAV1: 1},
	})
	require.ErrorAs(t, err, &driver.ErrUnsupportedKind{})

	d, err := New(ctx, driver.Config{
		DeviceName: "sw",
		Engines:    map[types.DecoderKind]uint{types.DecoderKindH264: 2},
	})
	require.NoError(t, err)
	caps, err := d.Capabilities(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(2), caps[types.DecoderKindH264])

	_, err = d.NewEngine(ctx, resource.Reservation{ID: 1, Kind: types.DecoderKindHEVC}, types.DecoderRequest{
		Kind:      types.DecoderKindHEVC,
		VendorTag: "test",
	})
	require.ErrorAs(t, err, &driver.ErrUnsupportedKind{})
}

func TestEngineEmptyStream(t *testing.T) {
	ctx := context.Background()
	d, err := New(ctx, driver.Config{
		Engines: map[types.DecoderKind]uint{types.DecoderKindH264: 1},
	})
	require.NoError(t, err)

	engine, err := d.NewEngine(ctx, resource.Reservation{ID: 1, Kind: types.DecoderKindH264}, types.DecoderRequest{
		Kind:      types.DecoderKindH264,
		VendorTag: "test",
	})
	require.NoError(t, err)
	defer engine.Close(ctx)

	_, err = engine.ReceiveFrame(ctx)
	require.ErrorAs(t, err, &driver.ErrAgain{})
	require.NoError(t, engine.SendEndOfStream(ctx))
	_, err = engine.ReceiveFrame(ctx)
	require.ErrorAs(t, err, &driver.ErrEOF{})
}
