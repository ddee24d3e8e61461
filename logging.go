// logging.go wires this package's diagnostics into logiface, so a host
// process can route them to zerolog, logrus, slog, or whatever it
// already uses, while getting a sensible default (stumpy, to stderr)
// out of the box.
//
// Diagnostics are deliberately sparse: the core is a hot, lock-light
// data path, and the only condition the spec requires logging for is the
// once-per-process warning when a caller passes a non-nil signal mask to
// Wait (§7). That warning is the only log line this package emits;
// registry mutations are not logged.
package epoll

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

var (
	globalLog struct {
		sync.RWMutex
		logger *logiface.Logger[*stumpy.Event]
	}

	// sigmaskWarnOnce fires the "not implemented" log line at most once
	// per process, mirroring uk_pr_warn_once — not per Aggregator, since
	// the condition it warns about (no signal mask support) is a
	// property of this package, not of any one instance.
	sigmaskWarnOnce sync.Once
)

func init() {
	globalLog.logger = stumpy.L.New(stumpy.L.WithStumpy())
}

// SetLogger replaces the package-level logger. The once-per-process
// signal-mask warning from [Aggregator.Wait] always goes to this logger,
// including for an Aggregator given its own via [WithLogger].
func SetLogger(l *logiface.Logger[*stumpy.Event]) {
	globalLog.Lock()
	defer globalLog.Unlock()
	globalLog.logger = l
}

func packageLogger() *logiface.Logger[*stumpy.Event] {
	globalLog.RLock()
	defer globalLog.RUnlock()
	return globalLog.logger
}

// logger resolves the Aggregator's own logger, falling back to the
// package-level one.
func (a *Aggregator) logger() *logiface.Logger[*stumpy.Event] {
	if a.log != nil {
		return a.log
	}
	return packageLogger()
}
