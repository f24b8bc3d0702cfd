package hwdec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hwdec/bitstream/annexb"
	"github.com/xaionaro-go/hwdec/types"
)

const testManifest = `
device:
  name: test
  driver: simulated
  decoders:
    - kind: h264
      engines: 1
session:
  input_queue_depth: 2
  output_queue_depth: 4
  max_chunk_size: 256
`

func writeManifest(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))
	return path
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	_, err := CreateSession(ctx, types.DecoderRequest{Kind: types.DecoderKindH264, VendorTag: "Xilinx"})
	require.ErrorAs(t, err, &types.ErrNotInitialized{})
	require.ErrorAs(t, Teardown(ctx), &types.ErrNotInitialized{})
	require.Equal(t, StatusError, StatusCode(err))
}

func TestSingleEngineScenario(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Initialize(ctx, writeManifest(t)))
	defer Teardown(ctx)
	require.ErrorAs(t, Initialize(ctx, writeManifest(t)), &types.ErrAlreadyInitialized{})

	req := types.DecoderRequest{Kind: types.DecoderKindH264, VendorTag: "Xilinx"}
	h, err := CreateSession(ctx, req)
	require.NoError(t, err)

	_, err = CreateSession(ctx, req)
	require.ErrorAs(t, err, &types.ErrCapacityExhausted{})
	require.Equal(t, StatusError, StatusCode(err))

	_, err = GetProperties(ctx, h)
	require.ErrorAs(t, err, &types.ErrPropertiesNotYetAvailable{})

	_, err = ReceiveFrame(ctx, h)
	require.Equal(t, StatusTryAgain, StatusCode(err))
	require.True(t, IsSteadyState(err))

	stream := annexb.Generate(annexb.CodecH264, 12, 4)
	var frames []*types.Frame
	drain := func() error {
		for {
			f, err := ReceiveFrame(ctx, h)
			if err != nil {
				return err
			}
			frames = append(frames, f)
		}
	}
	for len(stream) > 0 {
		n, err := SendData(ctx, h, stream, false)
		require.LessOrEqual(t, n, 256)
		switch StatusCode(err) {
		case StatusSuccess:
		case StatusTryAgain:
			require.Zero(t, n)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
		stream = stream[n:]
		require.ErrorAs(t, drain(), &types.ErrNoFrameAvailable{})
	}
	require.NoError(t, SendEndOfStream(ctx, h))

	deadline := time.Now().Add(5 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline))
		err := drain()
		if StatusCode(err) == StatusEndOfStream {
			break
		}
		require.Equal(t, StatusTryAgain, StatusCode(err), err)
		time.Sleep(time.Millisecond)
	}
	require.Len(t, frames, 12)
	for idx, f := range frames {
		require.Equal(t, uint64(idx), f.Sequence)
	}

	props, err := GetProperties(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.PixelFormatNV12, props.PixelFormat)

	require.NoError(t, DestroySession(ctx, h))
	require.ErrorAs(t, DestroySession(ctx, h), &types.ErrInvalidSessionState{})

	h, err = CreateSession(ctx, req)
	require.NoError(t, err)
	require.False(t, h.IsZero())

	require.NoError(t, Teardown(ctx))
	require.NoError(t, Initialize(ctx, writeManifest(t)))
}

func TestStatusCode(t *testing.T) {
	for _, tc := range []struct {
		Err    error
		Status int32
	}{
		{nil, StatusSuccess},
		{types.ErrWouldBlock{}, StatusTryAgain},
		{fmt.Errorf("wrapped: %w", types.ErrNoFrameAvailable{}), StatusTryAgain},
		{types.ErrEndOfStream{}, StatusEndOfStream},
		{types.ErrSessionClosed{}, StatusError},
		{types.ErrCapacityExhausted{}, StatusError},
		{errors.New("something"), StatusError},
	} {
		t.Run(fmt.Sprint(tc.Err), func(t *testing.T) {
			require.Equal(t, tc.Status, StatusCode(tc.Err))
		})
	}
	require.Equal(t, int32(-11), StatusTryAgain)
}
