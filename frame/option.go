// option.go defines functional options for configuring frames and outputs.

package frame

import (
	"context"
	"runtime"
)

// AllocFrameFunc creates the frame a sample is decoded into. It is the hook
// to decode into caller-managed (for example pooled or GPU-mapped) memory:
// return a NewEmptyFrame with a buffer assigned via SetBuffer, and pin the
// owner of that memory with SetPayload.
type AllocFrameFunc func(ctx context.Context, sample Sample) (*Frame, error)

type OutputConfig struct {
	// Workers is the amount of frames decoded concurrently by Serve.
	Workers uint `yaml:"workers"`

	QueueSizeInput  uint `yaml:"queue_size_input"`
	QueueSizeOutput uint `yaml:"queue_size_output"`

	Allocator      Allocator      `yaml:"-"`
	AllocFrameFunc AllocFrameFunc `yaml:"-"`
}

func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Workers:         uint(runtime.NumCPU()),
		QueueSizeInput:  1,
		QueueSizeOutput: 1,
		Allocator:       HeapAllocator{},
	}
}

type Option interface {
	apply(*OutputConfig)
}

type Options []Option

func (s Options) apply(cfg *OutputConfig) {
	for _, opt := range s {
		opt.apply(cfg)
	}
}

func (s Options) config() OutputConfig {
	cfg := DefaultOutputConfig()
	s.apply(&cfg)
	return cfg
}

// OptionConfig replaces the whole configuration, e.g. with one loaded from
// a file. Zero values are replaced with the defaults.
type OptionConfig OutputConfig

func (opt OptionConfig) apply(cfg *OutputConfig) {
	def := *cfg
	*cfg = OutputConfig(opt)
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Allocator == nil {
		cfg.Allocator = def.Allocator
	}
	if cfg.AllocFrameFunc == nil {
		cfg.AllocFrameFunc = def.AllocFrameFunc
	}
}

type OptionWorkers uint

func (opt OptionWorkers) apply(cfg *OutputConfig) {
	if opt > 0 {
		cfg.Workers = uint(opt)
	}
}

type OptionQueueSizeInput uint

func (opt OptionQueueSizeInput) apply(cfg *OutputConfig) {
	cfg.QueueSizeInput = uint(opt)
}

type OptionQueueSizeOutput uint

func (opt OptionQueueSizeOutput) apply(cfg *OutputConfig) {
	cfg.QueueSizeOutput = uint(opt)
}

type OptionAllocatorValue struct {
	Allocator
}

func (opt OptionAllocatorValue) apply(cfg *OutputConfig) {
	if opt.Allocator != nil {
		cfg.Allocator = opt.Allocator
	}
}

// OptionAllocator sets the allocator of owned output buffers.
func OptionAllocator(allocator Allocator) OptionAllocatorValue {
	return OptionAllocatorValue{allocator}
}

type OptionAllocFrameFunc AllocFrameFunc

func (opt OptionAllocFrameFunc) apply(cfg *OutputConfig) {
	cfg.AllocFrameFunc = AllocFrameFunc(opt)
}
