// Package manifest loads the description of the hardware device: which
// driver serves it, how many engines of each decoder kind it has, and the
// defaults of the sessions created on it.
package manifest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"github.com/xaionaro-go/hwdec/driver"
	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/manager"
	"github.com/xaionaro-go/hwdec/session"
	"github.com/xaionaro-go/hwdec/types"
)

// EnvPrefix is the prefix of environment variables overriding the manifest,
// e.g. HWDEC_SESSION_MAX_CHUNK_SIZE.
const EnvPrefix = "HWDEC"

type Decoder struct {
	Kind    string `mapstructure:"kind"`
	Engines uint   `mapstructure:"engines"`
}

type Device struct {
	Name     string           `mapstructure:"name"`
	Driver   string           `mapstructure:"driver"`
	Decoders []Decoder        `mapstructure:"decoders"`
	Options  types.Parameters `mapstructure:"options"`
}

type Manifest struct {
	Device  Device         `mapstructure:"device"`
	Session session.Config `mapstructure:"session"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := session.DefaultConfig()
	v.SetDefault("device.name", "hwdec0")
	v.SetDefault("device.driver", "")
	v.SetDefault("session.input_queue_depth", defaults.InputQueueDepth)
	v.SetDefault("session.output_queue_depth", defaults.OutputQueueDepth)
	v.SetDefault("session.max_chunk_size", defaults.MaxChunkSize)
	return v
}

// Load reads the manifest from a file; the format is derived from the
// extension of the file (yaml, json, toml, ...).
func Load(
	ctx context.Context,
	path string,
) (_ret *Manifest, _err error) {
	logger.Debugf(ctx, "Load(%s)", path)
	defer func() { logger.Debugf(ctx, "/Load(%s): %v", path, _err) }()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read the manifest at '%s': %w", path, err)
	}
	return unmarshal(v)
}

// Parse reads the manifest of the given format ("yaml", "json", ...).
func Parse(
	ctx context.Context,
	r io.Reader,
	format string,
) (_ret *Manifest, _err error) {
	logger.Debugf(ctx, "Parse(%s)", format)
	defer func() { logger.Debugf(ctx, "/Parse(%s): %v", format, _err) }()

	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("unable to read the manifest: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Manifest, error) {
	m := &Manifest{}
	if err := v.Unmarshal(m); err != nil {
		return nil, fmt.Errorf("unable to parse the manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

func (m *Manifest) Validate() error {
	if m.Device.Driver == "" {
		return fmt.Errorf("device.driver is not set")
	}
	if _, err := m.Engines(); err != nil {
		return err
	}
	if err := m.Device.Options.Validate(); err != nil {
		return fmt.Errorf("device.options: %w", err)
	}
	if err := m.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Engines returns the amount of engines per decoder kind.
func (m *Manifest) Engines() (map[types.DecoderKind]uint, error) {
	result := make(map[types.DecoderKind]uint, len(m.Device.Decoders))
	for idx, dec := range m.Device.Decoders {
		kind, err := types.DecoderKindFromString(dec.Kind)
		if err != nil {
			return nil, fmt.Errorf("device.decoders[%d]: %w", idx, err)
		}
		if _, ok := result[kind]; ok {
			return nil, fmt.Errorf("device.decoders[%d]: decoder kind '%s' is listed twice", idx, kind)
		}
		result[kind] = dec.Engines
	}
	return result, nil
}

func (m *Manifest) DriverConfig() (driver.Config, error) {
	engines, err := m.Engines()
	if err != nil {
		return driver.Config{}, err
	}
	return driver.Config{
		DeviceName: m.Device.Name,
		Engines:    engines,
		Options:    m.Device.Options.Clone(),
	}, nil
}

func (m *Manifest) ManagerConfig() manager.Config {
	return manager.Config{
		Session: m.Session,
	}
}

// NewManager builds the driver named in the manifest and a Manager on top
// of it.
func (m *Manifest) NewManager(ctx context.Context) (*manager.Manager, error) {
	cfg, err := m.DriverConfig()
	if err != nil {
		return nil, err
	}
	drv, err := driver.New(ctx, m.Device.Driver, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize driver '%s': %w", m.Device.Driver, err)
	}
	return manager.New(ctx, drv, m.ManagerConfig())
}
