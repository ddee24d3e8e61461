package epoll

import "weak"

// File is the native monitored-file contract (§3): anything that reports
// readiness via push callback through a [PollQueue] rather than through
// the upcall protocol. Sockets, pipes, and eventfds are the reference
// OS's examples; this package is agnostic to what backs it.
type File interface {
	// Queue returns the PollQueue this file posts readiness bits to. The
	// same *PollQueue is returned for the lifetime of the file.
	Queue() *PollQueue
}

// Legacy is the upcall monitored-file contract (§3): a file that cannot
// expose a PollQueue (it lives behind a narrower, older interface) and
// instead is handed a [LegacyHook] to call back into directly. The
// aggregator holds a strong reference to a Legacy file for as long as it
// is registered, since there is no weak-reference escape hatch in this
// protocol.
type Legacy interface {
	// Poll samples current readiness synchronously, without blocking.
	Poll() (Mask, error)
	// Link registers hook to receive future Signal/CloseNotify upcalls.
	Link(hook *LegacyHook)
	// Unlink removes a previously linked hook. A no-op if not linked.
	Unlink(hook *LegacyHook)
}

// Descriptors resolves an external descriptor number to the file (native
// or legacy) it currently names. This is the seam between this package's
// descriptor-keyed registry and whatever descriptor table the embedding
// process actually owns (§6); this package never interprets descriptor
// numbers itself beyond using them as registry keys.
type Descriptors interface {
	Resolve(desc int) (Resolved, error)
}

// Resolved is one descriptor-table lookup result: exactly one of File or
// Legacy is non-nil. Release, if non-nil, must be called exactly once
// when the caller is done with the resolution (mirroring a descriptor
// table's own refcounting).
//
// File is a *FileHandle, not a bare [File]: the descriptor table is
// expected to own the handle (and so keep it alive) for as long as the
// descriptor is valid, while the aggregator only ever takes a weak
// reference to it (§3, §9).
type Resolved struct {
	File    *FileHandle
	Legacy  Legacy
	Release func()
}

// FileHandle is the strong anchor a native [File] is wrapped in so that
// an Aggregator can hold a weak reference to it (see [WeakFile]) instead
// of extending its lifetime. Embedders construct one per file, once, at
// the point the file becomes monitorable.
type FileHandle struct {
	file File
}

// NewFileHandle wraps f for weak-reference tracking.
func NewFileHandle(f File) *FileHandle {
	return &FileHandle{file: f}
}

// File returns the wrapped native file.
func (h *FileHandle) File() File { return h.file }

// Weak returns a [WeakFile] referencing h.
func (h *FileHandle) Weak() WeakFile {
	return WeakFile{p: weak.Make(h)}
}

// WeakFile is a weak reference to a [FileHandle], used by native
// registry entries so that a registration never keeps its monitored
// file alive on its own (§3, §9). Call [WeakFile.Upgrade] to obtain a
// strong reference for the duration of a single operation.
type WeakFile struct {
	p weak.Pointer[FileHandle]
}

// Upgrade attempts to recover a strong reference to the handle. The
// second return is false if the handle has since been garbage
// collected, mirroring the reference OS's "stale weak reference" path
// (the entry is then torn down as if the file had closed).
func (w WeakFile) Upgrade() (*FileHandle, bool) {
	h := w.p.Value()
	return h, h != nil
}
