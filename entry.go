package epoll

// class distinguishes which of the two monitored-file protocols an entry
// participates in (§3).
type class int

const (
	classNative class = iota
	classLegacy
)

// entry is one binding of (descriptor, monitored file, interest, user
// datum) inside one Aggregator — the unit the registry, the notification
// glue, and the extraction engine all operate on.
type entry struct {
	desc  int
	class class

	// native fields: a weak reference to the monitored file (so the
	// aggregator never extends its lifetime) and the hook registered
	// against its PollQueue.
	weak WeakFile
	hook *nativeHook

	// legacy fields: a strong reference (the entry itself is what keeps
	// a legacy binding alive, per §3) and the hook linked on the file's
	// epoll-link list.
	legacyFile Legacy
	legacyHook *LegacyHook

	event Event // interest mask (+ options) and user datum

	accum atomicMask // raised-but-undelivered bits, OR'd without a lock

	agg *Aggregator

	next *entry // singly-linked list, registration order (§4.1)
}

// accumulate ORs delivered into the entry's accumulator. Called by
// notification producers (native callbacks, legacy upcalls) without
// holding the aggregator's lock.
func (e *entry) accumulate(delivered Mask) {
	e.accum.or(delivered)
}

// drain atomically exchanges the accumulator for zero, returning what
// was there. Called by the extractor under the aggregator's read lock.
func (e *entry) drain() Mask {
	return e.accum.swap(0)
}

// deliver is the hook-delivery sequence shared by [PollQueue.Set] (for
// nativeHook) and [LegacyHook.Signal] (for LegacyHook): both protocols
// reduce to "intersect candidate against the hook's own atomic mask,
// accumulate what's left on the owning entry, zero the hook mask if it
// was one-shot, and post the owning aggregator readable with the fan-out
// that mask calls for." Reading hookMask once up front — rather than
// re-reading it from the entry's event field — keeps this race-free
// against a concurrent modify() rewriting the entry's event under the
// aggregator's write lock (§5): hookMask is the only copy of the entry's
// options a notification producer may read without that lock.
func deliver(hookMask *atomicMask, owner *entry, agg *Aggregator, candidate Mask) Mask {
	mask := hookMask.load()
	delivered := candidate & mask
	if delivered == 0 {
		return 0
	}
	owner.accumulate(delivered)
	if mask.oneShot() {
		hookMask.store(0)
	}
	agg.setReadable(notifyModeFor(mask))
	return delivered
}
