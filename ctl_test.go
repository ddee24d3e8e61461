package epoll_test

import (
	"errors"
	"testing"
	"time"

	epoll "github.com/joeycumines/go-epoll"
	"github.com/joeycumines/go-epoll/internal/pipefile"
)

// mapDescriptors is a trivial [epoll.Descriptors] backed by a fixed
// table, good enough for tests that don't need real descriptor-number
// churn.
type mapDescriptors map[int]epoll.Resolved

func (m mapDescriptors) Resolve(desc int) (epoll.Resolved, error) {
	r, ok := m[desc]
	if !ok {
		return epoll.Resolved{}, errors.New("no such descriptor")
	}
	return r, nil
}

func mustPipe(t *testing.T) *pipefile.File {
	t.Helper()
	f, err := pipefile.New()
	if err != nil {
		t.Fatalf("pipefile.New: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func waitFor(t *testing.T, agg *epoll.Aggregator, out []epoll.Event) int {
	t.Helper()
	n, err := agg.Wait(out, time.Now().Add(2*time.Second), nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return n
}

func TestCtlAddDuplicateIsAlreadyPresent(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	p := mustPipe(t)
	descs := mapDescriptors{7: {File: epoll.NewFileHandle(p)}}

	if err := epoll.Ctl(agg, epoll.OpAdd, 7, epoll.Event{Events: epoll.In}, descs); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := epoll.Ctl(agg, epoll.OpAdd, 7, epoll.Event{Events: epoll.In}, descs)
	if !errors.Is(err, epoll.ErrAlreadyPresent) {
		t.Fatalf("expected AlreadyPresent, got %v", err)
	}
}

func TestCtlModifyDeleteUnknownIsNotFound(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	if err := epoll.Ctl(agg, epoll.OpModify, 42, epoll.Event{Events: epoll.In}, nil); !errors.Is(err, epoll.ErrNotFound) {
		t.Fatalf("modify: expected NotFound, got %v", err)
	}
	if err := epoll.Ctl(agg, epoll.OpDelete, 42, epoll.Event{}, nil); !errors.Is(err, epoll.ErrNotFound) {
		t.Fatalf("delete: expected NotFound, got %v", err)
	}
}

func TestLevelTriggeredRepeatsUntilDrained(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	p := mustPipe(t)
	descs := mapDescriptors{1: {File: epoll.NewFileHandle(p)}}
	if err := epoll.Ctl(agg, epoll.OpAdd, 1, epoll.Event{Events: epoll.In, Data: 99}, descs); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := p.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := make([]epoll.Event, 4)
	n := waitFor(t, agg, out)
	if n != 1 || out[0].Events&epoll.In == 0 || out[0].Data != 99 {
		t.Fatalf("unexpected first wait result: n=%d out=%v", n, out[:n])
	}

	// Level-triggered and still unread: must keep reporting.
	n = waitFor(t, agg, out)
	if n != 1 || out[0].Events&epoll.In == 0 {
		t.Fatalf("expected level-triggered entry to report again, n=%d out=%v", n, out[:n])
	}

	buf := make([]byte, 16)
	if _, err := p.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}

	_, err := agg.Wait(out, time.Now().Add(100*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("Wait after drain: %v", err)
	}
}

func TestEdgeTriggeredDeliversOnce(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	p := mustPipe(t)
	descs := mapDescriptors{2: {File: epoll.NewFileHandle(p)}}
	if err := epoll.Ctl(agg, epoll.OpAdd, 2, epoll.Event{Events: epoll.In | epoll.ET}, descs); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := p.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := make([]epoll.Event, 4)
	if n := waitFor(t, agg, out); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}

	n, err := agg.Wait(out, time.Now().Add(100*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 0 {
		t.Fatalf("edge-triggered entry should not repeat without a new transition, got n=%d", n)
	}
}

func TestOneShotSuppressesFurtherDelivery(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	p := mustPipe(t)
	descs := mapDescriptors{3: {File: epoll.NewFileHandle(p)}}
	if err := epoll.Ctl(agg, epoll.OpAdd, 3, epoll.Event{Events: epoll.In | epoll.OneShot}, descs); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := p.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := make([]epoll.Event, 4)
	if n := waitFor(t, agg, out); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}

	if _, err := p.Write([]byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err := agg.Wait(out, time.Now().Add(100*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 0 {
		t.Fatalf("one-shot entry should not deliver again before modify re-arms it, got n=%d", n)
	}

	if err := epoll.Ctl(agg, epoll.OpModify, 3, epoll.Event{Events: epoll.In | epoll.OneShot}, nil); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if n := waitFor(t, agg, out); n != 1 {
		t.Fatalf("expected re-armed entry to deliver, got n=%d", n)
	}
}

func TestLegacyCloseNotifyRemovesEntry(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	lp, err := pipefile.NewLegacy()
	if err != nil {
		t.Fatalf("pipefile.NewLegacy: %v", err)
	}
	descs := mapDescriptors{5: {Legacy: lp}}
	if err := epoll.Ctl(agg, epoll.OpAdd, 5, epoll.Event{Events: epoll.In}, descs); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := lp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// The entry should be gone: a modify against it now reports NotFound.
	deadline := time.Now().Add(time.Second)
	for {
		err := epoll.Ctl(agg, epoll.OpModify, 5, epoll.Event{Events: epoll.In}, nil)
		if errors.Is(err, epoll.ErrNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("entry was not removed after close-notify, last err=%v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestExclusiveEdgeWakesExactlyOneWaiter(t *testing.T) {
	agg := epoll.New()
	defer agg.Release()

	p := mustPipe(t)
	descs := mapDescriptors{6: {File: epoll.NewFileHandle(p)}}
	if err := epoll.Ctl(agg, epoll.OpAdd, 6, epoll.Event{Events: epoll.In | epoll.ET | epoll.Exclusive}, descs); err != nil {
		t.Fatalf("add: %v", err)
	}

	type result struct {
		n   int
		err error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			out := make([]epoll.Event, 4)
			n, err := agg.Wait(out, time.Now().Add(2*time.Second), nil)
			results <- result{n, err}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := p.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case r := <-results:
		if r.err != nil {
			t.Fatalf("Wait: %v", r.err)
		}
		if r.n != 1 {
			t.Fatalf("expected 1 event, got %d", r.n)
		}
	case <-time.After(time.Second):
		t.Fatal("no waiter woke")
	}

	select {
	case <-results:
		t.Fatal("a second waiter should not have woken for one exclusive edge transition")
	case <-time.After(100 * time.Millisecond):
	}
}
