package driver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xaionaro-go/hwdec/logger"
	"github.com/xaionaro-go/hwdec/types"
)

// Config is the driver-independent part of the device description.
type Config struct {
	DeviceName string
	Engines    map[types.DecoderKind]uint
	Options    types.Parameters
}

type Factory func(ctx context.Context, cfg Config) (Driver, error)

var (
	factoriesLocker sync.Mutex
	factories       = map[string]Factory{}
)

// Register makes a driver available by name. It is expected to be called
// from init functions; registering the same name twice panics.
func Register(name string, factory Factory) {
	factoriesLocker.Lock()
	defer factoriesLocker.Unlock()
	if _, ok := factories[name]; ok {
		panic(fmt.Sprintf("driver '%s' is already registered", name))
	}
	factories[name] = factory
}

func Names() []string {
	factoriesLocker.Lock()
	defer factoriesLocker.Unlock()
	result := make([]string, 0, len(factories))
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func New(
	ctx context.Context,
	name string,
	cfg Config,
) (_ret Driver, _err error) {
	logger.Debugf(ctx, "New(%s, %s)", name, cfg.DeviceName)
	defer func() { logger.Debugf(ctx, "/New(%s, %s): %v %v", name, cfg.DeviceName, _ret, _err) }()
	factoriesLocker.Lock()
	factory, ok := factories[name]
	factoriesLocker.Unlock()
	if !ok {
		return nil, ErrUnknownDriver{Name: name}
	}
	return factory(ctx, cfg)
}
