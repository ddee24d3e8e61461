package epoll

import (
	"sync"
	"time"
)

// NotifyMode controls how many blocked waiters a [PollQueue.Set] wakes.
// Edge-triggered and exclusive entries need only wake one waiter to make
// forward progress; level-triggered entries must wake every waiter,
// since the condition they represent is still true for whoever looks at
// it next.
type NotifyMode int

const (
	// NotifyOne wakes at most one blocked waiter.
	NotifyOne NotifyMode = iota
	// NotifyAll wakes every blocked waiter.
	NotifyAll
)

// notifyModeFor derives the wake fan-out from an entry's options: an
// edge-triggered or exclusive entry wakes one waiter, everything else
// wakes all of them. The EPOLLEXCLUSIVE/EPOLLET interaction for
// level-triggered entries is not pinned down by the reference OS this
// facility imitates (see DESIGN.md); exclusive alone is treated the same
// as edge-triggered here.
func notifyModeFor(m Mask) NotifyMode {
	if m.edgeTriggered() || m.exclusive() {
		return NotifyOne
	}
	return NotifyAll
}

// nativeHook is the record linked into a PollQueue's hook list: an
// interest mask plus explicit pointers back to the owning entry and its
// aggregator. The reference OS recovers the owning entry from the hook
// via container_of; this is the first-class equivalent the design notes
// call for.
type nativeHook struct {
	mask  atomicMask
	owner *entry
	agg   *Aggregator
}

// PollQueue is the generic mechanism a monitored file uses to report
// readiness to interested observers: hook subscription for push-based
// delivery, plus a readiness word and condition variable so any holder
// can block until a bit is set. The Aggregator uses one instance of this
// same type for its own single-bit "some entry is ready" state (§3).
type PollQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	ready Mask
	hooks []*nativeHook
}

// NewPollQueue creates an empty, all-clear PollQueue.
func NewPollQueue() *PollQueue {
	pq := &PollQueue{}
	pq.cond = sync.NewCond(&pq.mu)
	return pq
}

// Register links hook into the queue and atomically samples current
// readiness, mirroring uk_pollq_poll_register: a nonzero return is bits
// that already happened and will not additionally arrive via callback,
// so the caller must fold it into the entry's accumulator itself.
func (pq *PollQueue) Register(hook *nativeHook, mask Mask) Mask {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	hook.mask.store(mask)
	pq.hooks = append(pq.hooks, hook)
	return pq.ready & mask
}

// Reregister swaps a registered hook's interest mask in place.
func (pq *PollQueue) Reregister(hook *nativeHook, mask Mask) {
	hook.mask.store(mask)
}

// Unregister unlinks hook from the queue. A no-op if hook isn't present.
func (pq *PollQueue) Unregister(hook *nativeHook) {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	for i, h := range pq.hooks {
		if h == hook {
			pq.hooks = append(pq.hooks[:i], pq.hooks[i+1:]...)
			return
		}
	}
}

// Set ORs bit into the queue's readiness word, wakes blocked [WaitUntil]
// callers per notify, and delivers bit to every hook whose interest
// intersects it — each such hook's owning entry gets the bits OR'd into
// its accumulator, the owning aggregator is posted readable (with the
// wake fan-out the *entry* calls for, not the caller's notify), and a
// one-shot entry has its interest zeroed so it receives no further
// deliveries until modify re-arms it.
//
// The accumulator OR happens-before the aggregator readable-bit set, so
// any extractor observing the aggregator readable and then draining the
// accumulator sees at least the bits that caused the wake (§5).
func (pq *PollQueue) Set(bit Mask, notify NotifyMode) {
	pq.mu.Lock()
	pq.ready |= bit
	hooks := append([]*nativeHook(nil), pq.hooks...)
	if notify == NotifyAll {
		pq.cond.Broadcast()
	} else {
		pq.cond.Signal()
	}
	pq.mu.Unlock()

	for _, h := range hooks {
		deliver(&h.mask, h.owner, h.agg, bit)
	}
}

// Clear drops bit from the queue's readiness word.
func (pq *PollQueue) Clear(bit Mask) {
	pq.mu.Lock()
	pq.ready &^= bit
	pq.mu.Unlock()
}

// Immediate returns the bits of mask that are currently true, without
// consuming or otherwise affecting any registration. This is the
// "pollqueue immediate-poll" re-check the extraction engine uses to
// suppress stale edges for level-triggered entries (§4.3).
func (pq *PollQueue) Immediate(mask Mask) Mask {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return pq.ready & mask
}

// WaitUntil blocks until the queue's readiness intersects mask or
// deadline elapses, and returns the observed (unconsumed) intersection —
// zero means the deadline was reached first. A zero deadline blocks
// forever.
func (pq *PollQueue) WaitUntil(mask Mask, deadline time.Time) Mask {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	if r := pq.ready & mask; r != 0 {
		return r
	}
	if !deadline.IsZero() && !deadline.After(time.Now()) {
		return 0
	}

	var timer *time.Timer
	if !deadline.IsZero() {
		timer = time.AfterFunc(time.Until(deadline), func() {
			pq.mu.Lock()
			pq.cond.Broadcast()
			pq.mu.Unlock()
		})
		defer timer.Stop()
	}

	for {
		pq.cond.Wait()
		if r := pq.ready & mask; r != 0 {
			return r
		}
		if !deadline.IsZero() && !deadline.After(time.Now()) {
			return 0
		}
	}
}
