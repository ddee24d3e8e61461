package epoll

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Allocator simulates the allocator handle an Aggregator owns (§3). It
// lets a test (or an embedder with a real arena/bump allocator) make
// add() fail with [KindOutOfMemory] without partial registry mutation.
// A nil Allocator never fails.
type Allocator interface {
	Alloc() error
}

// aggregatorOptions holds configuration applied at Aggregator creation.
type aggregatorOptions struct {
	allocator Allocator
	logger    *logiface.Logger[*stumpy.Event]
}

// Option configures an Aggregator at creation time.
type Option interface {
	apply(*aggregatorOptions)
}

type optionFunc func(*aggregatorOptions)

func (f optionFunc) apply(o *aggregatorOptions) { f(o) }

// WithAllocator installs an Allocator consulted on every add(), mirroring
// the reference implementation's uk_malloc failure path.
func WithAllocator(a Allocator) Option {
	return optionFunc(func(o *aggregatorOptions) {
		o.allocator = a
	})
}

// WithLogger overrides the package-level logger for one Aggregator. The
// signal-mask warning from [Aggregator.Wait] is not affected: it always
// goes to the package-level logger.
func WithLogger(l *logiface.Logger[*stumpy.Event]) Option {
	return optionFunc(func(o *aggregatorOptions) {
		o.logger = l
	})
}

func resolveOptions(opts []Option) aggregatorOptions {
	var cfg aggregatorOptions
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.apply(&cfg)
	}
	return cfg
}
