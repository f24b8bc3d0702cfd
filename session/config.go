package session

import (
	"fmt"
)

const (
	DefaultInputQueueDepth  = 8
	DefaultOutputQueueDepth = 16
	DefaultMaxChunkSize     = 1 << 20
)

type Config struct {
	// InputQueueDepth is the amount of chunks that may wait for the
	// hardware before Submit blocks (or returns ErrWouldBlock).
	InputQueueDepth uint `mapstructure:"input_queue_depth" json:"input_queue_depth"`

	// OutputQueueDepth is the amount of decoded frames kept until the
	// client receives them; when full the hardware stops taking input.
	OutputQueueDepth uint `mapstructure:"output_queue_depth" json:"output_queue_depth"`

	// MaxChunkSize is the size of the hardware input buffer: Submit never
	// consumes more than this amount of bytes at once.
	MaxChunkSize uint `mapstructure:"max_chunk_size" json:"max_chunk_size"`
}

func DefaultConfig() Config {
	return Config{
		InputQueueDepth:  DefaultInputQueueDepth,
		OutputQueueDepth: DefaultOutputQueueDepth,
		MaxChunkSize:     DefaultMaxChunkSize,
	}
}

func (cfg Config) Validate() error {
	if cfg.InputQueueDepth < 1 {
		return fmt.Errorf("the input queue depth must be at least 1")
	}
	if cfg.OutputQueueDepth < 1 {
		return fmt.Errorf("the output queue depth must be at least 1")
	}
	if cfg.MaxChunkSize < 1 {
		return fmt.Errorf("the max chunk size must be at least 1")
	}
	return nil
}
