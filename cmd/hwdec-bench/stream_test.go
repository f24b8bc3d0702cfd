package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/driver/simulated"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/session"
	"github.com/xaionaro-go/hwdec/types"
)

func newSmallQueuesManager(t *testing.T, engines uint) *manager.Manager {
	ctx := context.Background()
	drv, err := simulated.New(ctx, driver.Config{
		DeviceName: "bench",
		Engines:    map[types.DecoderKind]uint{types.DecoderKindH264: engines},
	})
	require.NoError(t, err)
	mgr, err := manager.New(ctx, drv, manager.Config{
		Session: session.Config{
			InputQueueDepth:  2,
			OutputQueueDepth: 2,
			MaxChunkSize:     64,
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close(context.Background()) })
	return mgr
}

func TestRunStreamLong(t *testing.T) {
	const frameCount = 2000
	data := annexb.Generate(annexb.CodecH264, frameCount, 30)
	req := types.DecoderRequest{Kind: types.DecoderKindH264, VendorTag: "Xilinx"}

	for _, blocking := range []bool{true, false} {
		t.Run(map[bool]string{true: "blocking", false: "non_blocking"}[blocking], func(t *testing.T) {
			mgr := newSmallQueuesManager(t, 1)
			ctx, cancelFn := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancelFn()

			r := runStream(ctx, mgr, req, data, 256, blocking)
			require.NoError(t, r.Err)
			require.False(t, r.Rejected)
			require.Equal(t, uint64(frameCount), r.Frames)
			require.Equal(t, uint64(len(data)), r.Bytes)
			require.True(t, r.FirstFrameLatency.IsSet())
			require.Equal(t, simulated.DefaultProperties, r.Properties)
			require.Empty(t, mgr.Sessions(ctx))
		})
	}
}

func TestRunStreamRejected(t *testing.T) {
	ctx := context.Background()
	mgr := newSmallQueuesManager(t, 1)
	req := types.DecoderRequest{Kind: types.DecoderKindH264, VendorTag: "Xilinx"}

	h, err := mgr.CreateSession(ctx, req)
	require.NoError(t, err)
	defer mgr.DestroySession(ctx, h)

	r := runStream(ctx, mgr, req, annexb.Generate(annexb.CodecH264, 10, 5), 256, true)
	require.True(t, r.Rejected)
	require.NoError(t, r.Err)
	require.Equal(t, "rejected: no free engine", r.String())
}
