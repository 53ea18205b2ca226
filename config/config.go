package config

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/ngfx/handle"
)

// Config drives a stress run over the reference counting, handle and
// deferred destruction layers.
type Config struct {
	// Limits caps live ids per resource type in the run's resource.Table.
	Limits map[handle.Type]uint32

	LogLevel zapcore.Level

	// Workers is the number of goroutines churning each subsystem.
	Workers int

	// Iterations is the number of operations each worker performs.
	Iterations int

	// Objects is the number of shared objects the pointer workers clone
	// and drop.
	Objects int

	// FenceInterval is how often the fence goroutine completes the next
	// fence value.
	FenceInterval time.Duration
}

const (
	defaultLogLevel      = zapcore.InfoLevel
	defaultWorkers       = 4
	defaultIterations    = 10000
	defaultObjects       = 64
	defaultFenceInterval = time.Millisecond
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Limits:        make(map[handle.Type]uint32),
		LogLevel:      defaultLogLevel,
		Workers:       defaultWorkers,
		Iterations:    defaultIterations,
		Objects:       defaultObjects,
		FenceInterval: defaultFenceInterval,
	}
}
