package epoll

// LegacyHook is the callback record a [Legacy] file is given at Link
// time. It plays the same role as nativeHook but for the upcall
// protocol: the Legacy file drives it directly instead of a PollQueue
// fanning events out to it.
type LegacyHook struct {
	mask  atomicMask
	owner *entry
	agg   *Aggregator
}

// Signal delivers revents from the Legacy file to the owning entry,
// mirroring eventpoll_signal: bits outside the current interest mask are
// dropped, a one-shot entry's interest is zeroed so it receives no
// further deliveries until modify re-arms it (extending the native
// behaviour for invariant symmetry, see DESIGN.md), and the owning
// aggregator is posted readable with the wake fan-out the entry's
// options call for.
func (h *LegacyHook) Signal(revents Mask) {
	deliver(&h.mask, h.owner, h.agg, revents)
}

// CloseNotify tells the owning aggregator that the Legacy file behind
// this hook is gone, mirroring eventpoll_notify_close: the entry is
// force-deleted from the registry regardless of what a concurrent
// control-plane operation might be doing to it, and no further upcalls
// through this hook are valid.
func (h *LegacyHook) CloseNotify() {
	h.agg.forceDelete(h.owner)
}
