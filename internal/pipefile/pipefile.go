//go:build linux

// Package pipefile is a minimal, real-fd backed implementation of
// [epoll.File] and [epoll.Legacy], used by this module's own tests to
// exercise end-to-end registration and extraction against an actual
// kernel pipe instead of a fake. The fd primitives it wraps (read,
// write, close, non-blocking poll) are the same unix syscalls the
// teacher's fd_unix.go reaches for; here they back a real push
// producer instead of a loop's registered callback.
package pipefile

import (
	"sync"

	"golang.org/x/sys/unix"

	epoll "github.com/joeycumines/go-epoll"
)

// File wraps one end-pair of an OS pipe as a native [epoll.File]. Write
// posts readiness to the read end's [epoll.PollQueue] directly on every
// successful write, whether or not unread data was already pending;
// Read clears the bit once a non-blocking poll of the
// underlying fd confirms nothing is left to read, so level-triggered
// consumers keep seeing it as long as the pipe has unread data and
// edge-triggered consumers see exactly one notification per write.
type File struct {
	rfd, wfd int
	queue    *epoll.PollQueue

	mu     sync.Mutex
	closed bool
}

// New creates a pipe-backed File.
func New() (*File, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &File{
		rfd:   fds[0],
		wfd:   fds[1],
		queue: epoll.NewPollQueue(),
	}, nil
}

// Queue implements [epoll.File].
func (f *File) Queue() *epoll.PollQueue { return f.queue }

// Read reads from the pipe's read end, clearing readiness once the
// underlying fd reports nothing left to read.
func (f *File) Read(buf []byte) (int, error) {
	n, err := unix.Read(f.rfd, buf)
	if still, perr := pollReadable(f.rfd); perr == nil && !still {
		f.queue.Clear(epoll.In)
	}
	return n, err
}

// Write writes to the pipe's write end and posts In readiness.
func (f *File) Write(buf []byte) (int, error) {
	n, err := unix.Write(f.wfd, buf)
	if n > 0 {
		f.queue.Set(epoll.In, epoll.NotifyAll)
	}
	return n, err
}

// Close closes both pipe ends and posts Hup.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.queue.Set(epoll.Hup, epoll.NotifyAll)
	_ = unix.Close(f.rfd)
	return unix.Close(f.wfd)
}

func pollReadable(fd int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(fds, 0); err != nil {
		return false, err
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}
