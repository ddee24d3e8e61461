package epoll

// registry.go implements §4.1: the descriptor-keyed entry list an
// Aggregator maintains, and the four mutations the control plane drives
// it through (add native, add legacy, modify, delete). All mutations
// take the aggregator's write lock; find takes no lock of its own and is
// only called from those mutations. Extraction (§4.3) takes the read
// lock, so it only ever blocks behind a registry mutation, never behind
// another extraction.

// find returns the entry for desc, or nil. Caller must hold a.mu for
// reading (or writing, if it's about to mutate what it finds).
func (a *Aggregator) find(desc int) *entry {
	for e := a.head; e != nil; e = e.next {
		if e.desc == desc {
			return e
		}
	}
	return nil
}

// link appends e to the registration-order list. Caller must hold a.mu
// for writing.
func (a *Aggregator) link(e *entry) {
	if a.tail == nil {
		a.head = e
		a.tail = e
	} else {
		a.tail.next = e
		a.tail = e
	}
	a.n++
}

// unlink removes target from the list. Caller must hold a.mu for
// writing. A no-op if target isn't present.
func (a *Aggregator) unlink(target *entry) {
	var prev *entry
	for e := a.head; e != nil; e = e.next {
		if e == target {
			if prev == nil {
				a.head = e.next
			} else {
				prev.next = e.next
			}
			if e == a.tail {
				a.tail = prev
			}
			e.next = nil
			a.n--
			return
		}
		prev = e
	}
}

// addNative registers desc against a native file, mirroring epoll_add:
// reject a duplicate descriptor, charge the allocator, wrap the file in
// a weak reference, hook it into the file's PollQueue, and fold any
// already-true bits the hook registration observed into the entry's
// accumulator before the entry is even visible to extraction.
func (a *Aggregator) addNative(desc int, handle *FileHandle, ev Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.find(desc) != nil {
		return newErr("add", KindAlreadyPresent)
	}
	if err := a.alloc1(); err != nil {
		return wrapErr("add", KindOutOfMemory, err)
	}

	ev.Events = effective(ev.Events)
	e := &entry{
		desc:  desc,
		class: classNative,
		weak:  handle.Weak(),
		event: ev,
		agg:   a,
	}
	e.hook = &nativeHook{owner: e, agg: a}

	pq := handle.File().Queue()
	if pre := pq.Register(e.hook, ev.Events); pre != 0 {
		e.accumulate(pre)
	}

	a.link(e)

	if e.accum.load() != 0 {
		a.setReadable(notifyModeFor(ev.Events))
	}
	return nil
}

// addLegacy registers desc against a legacy file, mirroring
// epoll_add_legacy: same duplicate/allocator checks, then link the hook
// and take a synchronous poll to seed the accumulator. Linking first
// means no delivery window is missed: readiness raised before the poll
// is seen by the poll, readiness raised after it arrives through the
// hook. A failing
// initial poll is not itself a failure of add (§7): it synthesizes an
// error-ready accumulator instead, so the caller learns about the
// broken file through the normal extraction path, the same way the
// reference OS lets a broken file report itself through epoll.
func (a *Aggregator) addLegacy(desc int, f Legacy, ev Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.find(desc) != nil {
		return newErr("add", KindAlreadyPresent)
	}
	if err := a.alloc1(); err != nil {
		return wrapErr("add", KindOutOfMemory, err)
	}

	ev.Events = effective(ev.Events)
	e := &entry{
		desc:       desc,
		class:      classLegacy,
		legacyFile: f,
		event:      ev,
		agg:        a,
	}
	e.legacyHook = &LegacyHook{owner: e, agg: a}
	e.legacyHook.mask.store(ev.Events)

	f.Link(e.legacyHook)

	pre, err := f.Poll()
	if err != nil {
		e.accumulate(Err & ev.Events)
	} else if delivered := pre & ev.Events; delivered != 0 {
		e.accumulate(delivered)
	}

	a.link(e)

	if e.accum.load() != 0 {
		a.setReadable(notifyModeFor(ev.Events))
	}
	return nil
}

// modify updates desc's interest mask in place, mirroring epoll_mod:
// reattach the new effective mask to whichever protocol the entry uses,
// reset the accumulator to zero so a stale notification under the old
// mask can't leak through, then re-sample immediate readiness the same
// way add does, since a modify that widens interest to a condition
// already true must make the entry immediately extractable.
func (a *Aggregator) modify(desc int, ev Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.find(desc)
	if e == nil {
		return newErr("modify", KindNotFound)
	}

	ev.Events = effective(ev.Events)
	e.event = ev
	e.drain() // modify re-arms from no-known-events (§4.1)

	switch e.class {
	case classNative:
		handle, ok := e.weak.Upgrade()
		if !ok {
			a.unlink(e)
			return newErr("modify", KindBadDescriptor)
		}
		pq := handle.File().Queue()
		pq.Reregister(e.hook, ev.Events)
		if pre := pq.Immediate(ev.Events); pre != 0 {
			e.accumulate(pre)
		}
	case classLegacy:
		e.legacyHook.mask.store(ev.Events)
		pre, err := e.legacyFile.Poll()
		if err != nil {
			e.accumulate(Err & ev.Events)
		} else if delivered := pre & ev.Events; delivered != 0 {
			e.accumulate(delivered)
		}
	}

	if e.accum.load() != 0 {
		a.setReadable(notifyModeFor(ev.Events))
	}
	return nil
}

// delete removes desc from the registry, mirroring epoll_del /
// epoll_unregister_entry: unhook from whichever protocol the entry used
// so no further deliveries reach it, then unlink it.
func (a *Aggregator) delete(desc int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.find(desc)
	if e == nil {
		return newErr("delete", KindNotFound)
	}
	a.detach(e)
	a.unlink(e)
	return nil
}

// detach unhooks e from its protocol without unlinking it from the
// registry list. Caller must hold a.mu for writing.
func (a *Aggregator) detach(e *entry) {
	switch e.class {
	case classNative:
		if handle, ok := e.weak.Upgrade(); ok {
			handle.File().Queue().Unregister(e.hook)
		}
	case classLegacy:
		e.legacyFile.Unlink(e.legacyHook)
	}
}

// forceDelete removes e from the registry regardless of what a
// concurrent control-plane call is doing, mirroring
// eventpoll_notify_close: a Legacy file's close upcall always wins.
func (a *Aggregator) forceDelete(e *entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unlink(e)
}
