package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hwdec/driver"
	_ "github.com/xaionaro-go/hwdec/driver/simulated"
	"github.com/xaionaro-go/hwdec/session"
	"github.com/xaionaro-go/hwdec/types"
)

const sampleManifest = `
device:
  name: u30-0
  driver: simulated
  decoders:
    - kind: h264
      engines: 4
    - kind: h265
      engines: 2
  options:
    - {key: decode_latency, value: 2ms}
session:
  input_queue_depth: 4
`

func TestParse(t *testing.T) {
	ctx := context.Background()
	m, err := Parse(ctx, strings.NewReader(sampleManifest), "yaml")
	require.NoError(t, err)

	require.Equal(t, "u30-0", m.Device.Name)
	require.Equal(t, "simulated", m.Device.Driver)
	engines, err := m.Engines()
	require.NoError(t, err)
	require.Equal(t, map[types.DecoderKind]uint{
		types.DecoderKindH264: 4,
		types.DecoderKindHEVC: 2,
	}, engines)
	require.Equal(t, types.Parameters{{Key: "decode_latency", Value: "2ms"}}, m.Device.Options)
	require.Equal(t, session.Config{
		InputQueueDepth:  4,
		OutputQueueDepth: session.DefaultOutputQueueDepth,
		MaxChunkSize:     session.DefaultMaxChunkSize,
	}, m.Session)

	cfg, err := m.DriverConfig()
	require.NoError(t, err)
	require.Equal(t, driver.Config{
		DeviceName: "u30-0",
		Engines:    engines,
		Options:    m.Device.Options,
	}, cfg)
}

func TestLoadAndEnvOverride(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "device.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))
	t.Setenv("HWDEC_SESSION_MAX_CHUNK_SIZE", "4096")

	m, err := Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, uint(4096), m.Session.MaxChunkSize)

	mgr, err := m.NewManager(ctx)
	require.NoError(t, err)
	defer mgr.Close(ctx)
	require.Len(t, mgr.Capacity(), 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestInvalidManifests(t *testing.T) {
	for name, text := range map[string]string{
		"no_driver": `
device:
  decoders:
    - {kind: h264, engines: 1}
`,
		"unknown_kind": `
device:
  driver: simulated
  decoders:
    - {kind: mpeg2, engines: 1}
`,
		"duplicate_kind": `
device:
  driver: simulated
  decoders:
    - {kind: h264, engines: 1}
    - {kind: avc, engines: 1}
`,
		"duplicate_option": `
device:
  driver: simulated
  options:
    - {key: width, value: "1"}
    - {key: width, value: "2"}
`,
		"zero_queue": `
device:
  driver: simulated
session:
  output_queue_depth: 0
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(text), "yaml")
			require.Error(t, err)
		})
	}
}

func TestNewManagerUnknownDriver(t *testing.T) {
	ctx := context.Background()
	m, err := Parse(ctx, strings.NewReader("device:\n  driver: nonexistent\n"), "yaml")
	require.NoError(t, err)
	_, err = m.NewManager(ctx)
	require.ErrorAs(t, err, &driver.ErrUnknownDriver{})
}
