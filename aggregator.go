package epoll

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Aggregator is one instance of the event aggregation facility: a
// registry of entries, each binding a descriptor to a monitored file and
// an interest mask, plus the machinery to block until any of them has
// something to report (§2, §3).
//
// An Aggregator is itself pollable: it exposes its own [PollQueue] (own)
// so that one aggregator can be nested inside another, the same way the
// reference OS lets an epoll descriptor be added to another epoll set.
type Aggregator struct {
	alloc Allocator
	log   *logiface.Logger[*stumpy.Event]

	mu   sync.RWMutex
	head *entry
	tail *entry
	n    int

	own *PollQueue

	refs atomic.Int32
}

// New creates an Aggregator with one owning reference (§4.4). Callers
// that share an Aggregator across multiple owners should call [Acquire]
// for each additional owner and [Release] when each is done, rather than
// relying on garbage collection.
func New(opts ...Option) *Aggregator {
	cfg := resolveOptions(opts)
	a := &Aggregator{
		alloc: cfg.allocator,
		log:   cfg.logger,
		own:   NewPollQueue(),
	}
	a.refs.Store(1)
	return a
}

// Queue returns the aggregator's own PollQueue, letting it be monitored
// by another Aggregator just like any other [File].
func (a *Aggregator) Queue() *PollQueue { return a.own }

// Len returns the number of entries currently registered.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.n
}

// setReadable posts the aggregator's single readiness bit (In), waking
// blocked Wait callers per notify.
func (a *Aggregator) setReadable(notify NotifyMode) {
	a.own.Set(In, notify)
}

func (a *Aggregator) alloc1() error {
	if a.alloc == nil {
		return nil
	}
	return a.alloc.Alloc()
}
