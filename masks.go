package epoll

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Mask is a bitset of epoll event and option bits. It is wire-identical to
// the reference OS's epoll_event.events field.
type Mask uint32

// Interest bits: the conditions a caller can ask to be notified about.
const (
	In    Mask = unix.EPOLLIN
	Out   Mask = unix.EPOLLOUT
	Pri   Mask = unix.EPOLLPRI
	RDHup Mask = unix.EPOLLRDHUP
	Err   Mask = unix.EPOLLERR
	Hup   Mask = unix.EPOLLHUP
)

// Option bits: they modify delivery semantics rather than naming a condition.
const (
	ET        Mask = unix.EPOLLET
	OneShot   Mask = unix.EPOLLONESHOT
	WakeUp    Mask = unix.EPOLLWAKEUP
	Exclusive Mask = unix.EPOLLEXCLUSIVE
)

// interestBits is every bit a caller may legitimately ask to monitor.
const interestBits = In | Out | Pri | RDHup

// optionBits is every bit that changes delivery semantics rather than
// naming a condition.
const optionBits = ET | OneShot | WakeUp | Exclusive

// alwaysOn is forced into every entry's effective mask regardless of
// interest: error and hangup are always reported when they occur.
const alwaysOn = Err | Hup

// effective computes the mask an entry actually stores: requested
// interest and options, restricted to the bits this facility
// understands, plus the always-on housekeeping bits. Option bits (ET,
// one-shot, wake-up, exclusive) are preserved rather than stripped —
// they govern delivery semantics throughout this package and must
// survive alongside the interest bits they modify.
//
// This is also the mask handed straight through to
// [PollQueue.Register]/[PollQueue.Reregister] (registry.go), which
// differs from the reference OS's events2mask: the C strips option bits
// before registering a pollqueue wait, since a pollqueue only ever raises
// real condition bits and has no use for ET/OneShot/WakeUp/Exclusive.
// Carrying them through here is harmless for the same reason — a
// PollQueue never ORs an option bit into its readiness word — but it
// does mean a hook's stored mask (hook.mask) is this same effective,
// option-bearing mask, not the narrower registration-only mask the
// reference OS computes; callers reading option bits back off a hook
// mask (pollqueue.go's Set, legacy.go's Signal) rely on that.
func effective(requested Mask) Mask {
	return (requested & (interestBits | optionBits)) | alwaysOn
}

// edgeTriggered reports whether m carries the edge-triggered option.
func (m Mask) edgeTriggered() bool { return m&ET != 0 }

// oneShot reports whether m carries the one-shot option.
func (m Mask) oneShot() bool { return m&OneShot != 0 }

// exclusive reports whether m carries the exclusive-wake option.
func (m Mask) exclusive() bool { return m&Exclusive != 0 }

// Event is the record exchanged at the wait() boundary: an event mask and
// an opaque 64-bit datum supplied at registration time and echoed back
// unmodified. It is wire-identical to the reference OS's struct
// epoll_event (packed representation is the caller's concern; this type
// models the decoded fields only).
type Event struct {
	Events Mask
	Data   uint64
}

// atomicMask is an atomic Mask, used for hook interest masks and entry
// accumulators — the only fields in this package written outside the
// aggregator's read/write lock (§5).
type atomicMask struct {
	v atomic.Uint32
}

func (a *atomicMask) load() Mask       { return Mask(a.v.Load()) }
func (a *atomicMask) store(m Mask)     { a.v.Store(uint32(m)) }
func (a *atomicMask) or(m Mask) Mask   { return Mask(a.v.Or(uint32(m))) }
func (a *atomicMask) swap(m Mask) Mask { return Mask(a.v.Swap(uint32(m))) }
