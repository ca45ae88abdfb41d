// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bassosimone/runtimex"
)

// Loop is the execution context delivering the events of [*Connector]
// and [*Session] instances.
//
// Blocking network operations run on their own goroutines. When one of
// them completes, its completion handler is posted to the Loop, and the
// goroutine running [*Loop.Run] (or [*Loop.Poll]) executes the handlers
// one at a time in FIFO order. Hence, event callbacks bound to the same
// Loop never run concurrently with each other, and the events of a
// session are delivered in the order in which its operations completed.
//
// A Loop is passed explicitly to every constructor that needs it. Create
// one using [NewLoop].
type Loop struct {
	// mu protects queue.
	mu sync.Mutex

	// queue contains the handlers waiting to run.
	queue []func()

	// running is true while Run or Poll executes.
	running atomic.Bool

	// stop is set by Stop and cleared when Run returns.
	stop atomic.Bool

	// wakeup is signalled by Post and Stop to unblock Run.
	wakeup chan struct{}
}

// NewLoop returns a new, idle [*Loop].
func NewLoop() *Loop {
	return &Loop{
		wakeup: make(chan struct{}, 1),
	}
}

// Post schedules fn to run on the loop. It never blocks and it is
// safe to call from any goroutine, including from a running handler.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) notify() {
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

// Stop causes a running [*Loop.Run] or [*Loop.Poll] to return once the
// handler it is executing, if any, completes. Handlers still queued stay
// queued. When neither is executing, the next Run or Poll returns
// immediately.
func (l *Loop) Stop() {
	l.stop.Store(true)
	l.notify()
}

// Run executes handlers as they are posted until ctx is done or [*Loop.Stop]
// is called. It returns ctx.Err() in the former case and nil in the latter.
//
// Calling Run or [*Loop.Poll] while another Run or Poll is executing is a
// programmer error and causes a panic.
func (l *Loop) Run(ctx context.Context) error {
	runtimex.Assert(l.running.CompareAndSwap(false, true))
	defer l.running.Store(false)
	defer l.stop.Store(false)

	for {
		if l.stop.Load() {
			return nil
		}
		if fn := l.next(); fn != nil {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wakeup:
		}
	}
}

// Poll executes the handlers queued when it is called and returns how
// many of them ran. Handlers posted while Poll executes wait for the next
// call. Poll never blocks waiting for new handlers.
//
// Like Run, Poll honors [*Loop.Stop]: once a handler calls Stop, Poll
// returns leaving the rest of the snapshot queued, and the stop request
// is consumed, so it does not affect the next Run or Poll.
func (l *Loop) Poll() int {
	runtimex.Assert(l.running.CompareAndSwap(false, true))
	defer l.running.Store(false)
	defer l.stop.Store(false)

	l.mu.Lock()
	ready := l.queue
	l.queue = nil
	l.mu.Unlock()

	for idx, fn := range ready {
		if l.stop.Load() {
			l.mu.Lock()
			l.queue = append(ready[idx:len(ready):len(ready)], l.queue...)
			l.mu.Unlock()
			return idx
		}
		fn()
	}
	return len(ready)
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) <= 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}
