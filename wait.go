package epoll

import "time"

// wait.go implements §4.3, the extraction engine: block until the
// aggregator's own readiness bit is set, unconditionally clear it, then
// walk the registry converting each entry's accumulated bits into the
// caller's Event slice — re-sampling level-triggered entries against
// their real current state (and re-arming the aggregator readable bit
// if any of them are still true) so they keep reporting for as long as
// the condition holds.

// resample drains e's accumulator and, for a level-triggered entry that
// isn't one-shot, discards it in favour of a fresh sample of the
// entry's real current state, re-arming the accumulator with that
// sample so the entry remains extractable on the next call for as long
// as the condition is still true. A level entry's accumulator only
// exists to wake the aggregator between samples (§4.2); the sample
// itself, not delivery history, is the source of truth for what gets
// reported, or a consumer that has since drained the real condition
// would keep seeing a stale event one call too many.
//
// Edge-triggered and one-shot entries report exactly what was
// accumulated since the last drain — re-sampling them would turn an
// edge into a level, and one-shot must stay silent regardless of
// current readiness until modify re-arms it.
//
// Caller must hold a.mu for reading (or writing).
func (a *Aggregator) resample(e *entry) Mask {
	drained := e.drain()
	if drained == 0 {
		return 0
	}
	if e.event.Events.edgeTriggered() || e.event.Events.oneShot() {
		return drained
	}

	var current Mask
	switch e.class {
	case classNative:
		if handle, ok := e.weak.Upgrade(); ok {
			current = handle.File().Queue().Immediate(e.event.Events)
		}
	case classLegacy:
		if c, err := e.legacyFile.Poll(); err == nil {
			current = c & e.event.Events
		}
	}
	if current == 0 {
		// Stale edge: the accumulator fired, but nothing is true right
		// now. Skip without re-arming.
		return 0
	}
	e.accumulate(current)
	return current
}

// Wait blocks until at least one registered entry has a reportable
// event, a deadline passes, or both (a zero deadline blocks forever),
// writing up to len(out) events and returning how many were written.
//
// sigmask mirrors the reference OS's epoll_pwait signal-mask argument.
// This facility has no signal delivery model of its own (§7): a non-nil
// sigmask logs a one-time warning and is rejected with
// [KindNotImplemented], rather than silently ignored.
//
// A zero-length out is reported as [KindFault]; the reference OS's
// InvalidArg (bad max) and Fault (null buf) both collapse to this one
// check here, since this package has no separate "max" argument to
// validate independently of the slice itself.
func (a *Aggregator) Wait(out []Event, deadline time.Time, sigmask []byte) (int, error) {
	if len(out) == 0 {
		return 0, newErr("wait", KindFault)
	}
	if sigmask != nil {
		// Logged once per process, not once per Aggregator: the
		// condition is a property of this package (it has no signal
		// delivery model at all), not of any one instance or its
		// configured logger, so this always goes to the package-level
		// logger rather than a.logger().
		sigmaskWarnOnce.Do(func() {
			packageLogger().Warning().
				Str("op", "wait").
				Log("signal mask argument is not implemented and is rejected")
		})
		return 0, newErr("wait", KindNotImplemented)
	}

	for {
		if a.own.WaitUntil(In, deadline) == 0 {
			return 0, nil
		}
		a.own.Clear(In)

		a.mu.RLock()
		n := 0
		levelRelevelled := false
		for e := a.head; e != nil && n < len(out); e = e.next {
			bits := a.resample(e)
			if bits == 0 {
				continue
			}
			if !e.event.Events.edgeTriggered() && !e.event.Events.oneShot() {
				levelRelevelled = true
			}
			out[n] = Event{Events: bits, Data: e.event.Data}
			n++
		}
		a.mu.RUnlock()

		if levelRelevelled {
			a.setReadable(NotifyAll)
		}
		if n > 0 {
			return n, nil
		}
	}
}
