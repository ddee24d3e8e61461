package epoll

// lifecycle.go implements §4.4: reference-counted teardown in two
// phases, mirroring epoll_release's split between releasing resources
// (unhooking every entry from whatever it's watching, so no further
// callback or upcall reaches this aggregator) and releasing the object
// itself (once nothing still references it).

// Acquire adds one owning reference to a, mirroring the reference OS's
// refcount_get on the epoll file. Pair with [Release].
func (a *Aggregator) Acquire() {
	a.refs.Add(1)
}

// Release drops one owning reference. The last Release tears down every
// registered entry's protocol hook and empties the registry, so no
// further callback or upcall reaches a through those entries. The
// Aggregator value itself is not invalidated.
func (a *Aggregator) Release() {
	if a.refs.Add(-1) != 0 {
		return
	}
	a.releaseResources()
}

// Close is an alias for Release, for embedders that prefer an
// io.Closer-shaped API. It always returns nil: teardown here has no
// failure mode of its own.
func (a *Aggregator) Close() error {
	a.Release()
	return nil
}

// releaseResources unhooks every entry from its protocol and then drops
// the whole list at once instead of unlinking entries one by one,
// mirroring the "release resources" half of epoll_release.
func (a *Aggregator) releaseResources() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for e := a.head; e != nil; e = e.next {
		a.detach(e)
	}
	a.head = nil
	a.tail = nil
	a.n = 0
}
