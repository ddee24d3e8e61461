//go:build linux

package pipefile

import (
	"sync"

	"golang.org/x/sys/unix"

	epoll "github.com/joeycumines/go-epoll"
)

// LegacyPipe is the same pipe primitive as [File], but exposed through
// the upcall protocol ([epoll.Legacy]) instead of a pollqueue, for
// tests that exercise the legacy registration path.
type LegacyPipe struct {
	rfd, wfd int

	mu     sync.Mutex
	hook   *epoll.LegacyHook
	closed bool
}

// NewLegacy creates a pipe-backed LegacyPipe.
func NewLegacy() (*LegacyPipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &LegacyPipe{rfd: fds[0], wfd: fds[1]}, nil
}

// Poll implements [epoll.Legacy]: a synchronous, non-blocking sample of
// the read end's current readiness.
func (p *LegacyPipe) Poll() (epoll.Mask, error) {
	ok, err := pollReadable(p.rfd)
	if err != nil {
		return 0, err
	}
	if ok {
		return epoll.In, nil
	}
	return 0, nil
}

// Link implements [epoll.Legacy].
func (p *LegacyPipe) Link(hook *epoll.LegacyHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hook = hook
}

// Unlink implements [epoll.Legacy].
func (p *LegacyPipe) Unlink(hook *epoll.LegacyHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hook == hook {
		p.hook = nil
	}
}

// Read reads from the pipe's read end.
func (p *LegacyPipe) Read(buf []byte) (int, error) {
	return unix.Read(p.rfd, buf)
}

// Write writes to the pipe's write end and signals the linked hook
// directly, mirroring an upcall-driven legacy file's own wake path.
func (p *LegacyPipe) Write(buf []byte) (int, error) {
	n, err := unix.Write(p.wfd, buf)
	if n > 0 {
		p.mu.Lock()
		h := p.hook
		p.mu.Unlock()
		if h != nil {
			h.Signal(epoll.In)
		}
	}
	return n, err
}

// Close notifies the linked hook (if any) that this file is gone, then
// closes the underlying fds.
func (p *LegacyPipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	h := p.hook
	p.hook = nil
	p.mu.Unlock()

	if h != nil {
		h.CloseNotify()
	}
	_ = unix.Close(p.rfd)
	return unix.Close(p.wfd)
}
