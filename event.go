// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"sync"
)

// ErrorEvent is the payload of the error events emitted by
// [*Connector] and [*Session].
type ErrorEvent struct {
	// Err is the error that caused the event.
	Err error

	// Message is the human readable description (Err.Error()).
	Message string

	// BytesTransferred is the number of bytes moved by the failed
	// operation, zero when the failure happened before any I/O.
	BytesTransferred int

	// Class is the label assigned to Err by the [ErrClassifier].
	Class string
}

func newErrorEvent(classifier ErrClassifier, err error, count int) ErrorEvent {
	return ErrorEvent{
		Err:              err,
		Message:          err.Error(),
		BytesTransferred: count,
		Class:            classifier.Classify(err),
	}
}

// Subscription is the token returned when subscribing to an event.
//
// The zero value is valid and unsubscribing it does nothing.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the handler. Calling it more than once is harmless.
//
// A handler unsubscribed while an event is being delivered may still
// observe that single event.
func (s Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

type eventHandler[T any] struct {
	id uint64
	fn func(T)
}

// eventSource is the set of handlers subscribed to one kind of event.
type eventSource[T any] struct {
	mu       sync.Mutex
	handlers []eventHandler[T]
	nextID   uint64
}

func (es *eventSource[T]) subscribe(fn func(T)) Subscription {
	es.mu.Lock()
	es.nextID++
	id := es.nextID
	es.handlers = append(es.handlers, eventHandler[T]{id: id, fn: fn})
	es.mu.Unlock()

	var once sync.Once
	return Subscription{cancel: func() {
		once.Do(func() { es.remove(id) })
	}}
}

func (es *eventSource[T]) remove(id uint64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	for idx, h := range es.handlers {
		if h.id == id {
			// build a new slice: emit may be iterating over the old one
			handlers := make([]eventHandler[T], 0, len(es.handlers)-1)
			handlers = append(handlers, es.handlers[:idx]...)
			es.handlers = append(handlers, es.handlers[idx+1:]...)
			return
		}
	}
}

// emit invokes the handlers in subscription order without holding the
// lock, so handlers are free to subscribe, unsubscribe, and issue I/O.
func (es *eventSource[T]) emit(value T) {
	es.mu.Lock()
	handlers := es.handlers
	es.mu.Unlock()
	for _, h := range handlers {
		h.fn(value)
	}
}

func (es *eventSource[T]) len() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return len(es.handlers)
}

// unitHandler adapts a payload-less callback to an eventSource[Unit].
func unitHandler(fn func()) func(Unit) {
	return func(Unit) { fn() }
}
