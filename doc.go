// Package epoll implements the core of an epoll-compatible event
// aggregation facility: an object (the aggregator, or "epoll file") that
// lets a caller register interest in a set of monitored files and then
// block, with an optional deadline, until one or more of them become
// ready.
//
// # Architecture
//
// An [Aggregator] owns a registry of [entry] values, each binding one
// descriptor number to one monitored file, one interest [Mask], one
// opaque 64-bit user datum, and a private readiness accumulator. Files
// come in two classes:
//
//   - native files participate in the [PollQueue] callback protocol
//     ([File.Queue]); readiness transitions are pushed to the aggregator
//     via a registered hook.
//   - legacy files have no pollqueue subscription; their readiness is
//     pushed via the [Legacy] upcall protocol instead ([Legacy.Link]).
//
// [Ctl] is the single control-plane entry point, dispatching add/modify/
// delete under the aggregator's write lock. [Aggregator.Wait] is the
// extraction engine: it blocks until the aggregator itself becomes
// readable, then walks the registry draining each entry's accumulator,
// re-sampling level-triggered entries against present reality before
// delivering them.
//
// # Concurrency
//
// The registry's list linkage and entry interest masks are protected by
// a per-aggregator reader/writer lock: [Ctl] holds it for write,
// [Aggregator.Wait] holds it for read. Each entry's accumulator is a
// plain uint32 manipulated only with atomic OR (by notification
// producers, lock-free) and atomic exchange-to-zero (by the extractor,
// under the read lock); see [entry.accumulate] and [entry.drain].
//
// # Scope
//
// Out of scope, treated as external collaborators described here only by
// the interfaces this package needs of them: the descriptor table
// ([Descriptors]), the underlying file/pollqueue primitives ([File],
// [PollQueue], [Legacy] describe only their contracts), parameter
// decoding and thread suspension at a syscall boundary, clock and
// deadline arithmetic beyond an absolute monotonic deadline, and memory
// allocation.
package epoll
