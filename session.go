// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/bassosimone/safeconn"
)

// SessionState is the state of a [*Session].
type SessionState int

const (
	// SessionOpen is the state in which Read and Write are allowed.
	SessionOpen SessionState = iota

	// SessionClosing is the transient state while Close runs.
	SessionClosing

	// SessionClosed is the terminal state reached by Close.
	SessionClosed

	// SessionFailed is the state after an I/O error. Only Close is allowed.
	SessionFailed
)

// String implements [fmt.Stringer].
func (s SessionState) String() string {
	switch s {
	case SessionOpen:
		return "open"
	case SessionClosing:
		return "closing"
	case SessionClosed:
		return "closed"
	case SessionFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session owns one established TCP connection.
//
// Read and Write arm asynchronous operations whose outcome is delivered
// as events through the [*Loop] the session is bound to:
//
//   - OnRead: a chunk of data arrived (one event per completed Read)
//   - OnReadComplete: the peer closed its side of the connection
//   - OnWrite: a Write completed, with the number of bytes written
//   - OnError: a Read or Write failed and the session is now failed
//   - OnClose: Close completed (exactly once)
//
// At most one Read and one Write may be outstanding at any time, and a
// Read is never re-armed automatically: the owner issues the next Read
// once it has consumed the previous chunk.
//
// Sessions are created by [*Connector]. A pending Read or Write keeps
// the session reachable until its completion has been delivered, so the
// owner may hold the session only from within its own handlers. An idle
// session released by its owner without calling Close gets its connection
// closed by the runtime once the session is garbage collected.
type Session struct {
	// conn is the owned connection.
	conn net.Conn

	// errClassifier classifies errors in events and logs.
	errClassifier ErrClassifier

	// laddr, protocol, raddr are the connection metadata for logging.
	laddr, protocol, raddr string

	// logger is the logger to use.
	logger SLogger

	// loop delivers the events.
	loop *Loop

	// readBufferSize is the size of the buffer of each Read.
	readBufferSize int

	// timeNow is the function to get the current time.
	timeNow func() time.Time

	// mu protects state, reading, and writing.
	mu      sync.Mutex
	state   SessionState
	reading bool
	writing bool

	onClose        eventSource[Unit]
	onError        eventSource[ErrorEvent]
	onRead         eventSource[[]byte]
	onReadComplete eventSource[Unit]
	onWrite        eventSource[int]
}

func newSession(loop *Loop, conn net.Conn, cfg *Config, logger SLogger) *Session {
	s := &Session{
		conn:           conn,
		errClassifier:  cfg.ErrClassifier,
		laddr:          safeconn.LocalAddr(conn),
		protocol:       safeconn.Network(conn),
		raddr:          safeconn.RemoteAddr(conn),
		logger:         logger,
		loop:           loop,
		readBufferSize: max(1, cfg.ReadBufferSize),
		timeNow:        cfg.TimeNow,
		state:          SessionOpen,
	}
	// The cleanup must not reference s, otherwise s is never collected.
	runtime.AddCleanup(s, func(conn net.Conn) { conn.Close() }, conn)
	s.logState("sessionOpen", nil)
	return s
}

// OnRead subscribes to the read event. The handler owns the chunk.
func (s *Session) OnRead(fn func(data []byte)) Subscription {
	return s.onRead.subscribe(fn)
}

// OnReadComplete subscribes to the end-of-stream event.
func (s *Session) OnReadComplete(fn func()) Subscription {
	return s.onReadComplete.subscribe(unitHandler(fn))
}

// OnWrite subscribes to the write-completed event.
func (s *Session) OnWrite(fn func(bytesTransferred int)) Subscription {
	return s.onWrite.subscribe(fn)
}

// OnError subscribes to the I/O error event.
func (s *Session) OnError(fn func(ev ErrorEvent)) Subscription {
	return s.onError.subscribe(fn)
}

// OnClose subscribes to the close event.
func (s *Session) OnClose(fn func()) Subscription {
	return s.onClose.subscribe(unitHandler(fn))
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LocalAddr returns the local address of the connection.
func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr returns the remote address of the connection.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Write queues a copy of data for asynchronous transmission.
//
// It returns [ErrSessionNotOpen] when the session is not open and
// [ErrWritePending] when a previous Write has not completed yet. In
// both cases no event is emitted.
func (s *Session) Write(data []byte) error {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.writing {
		s.mu.Unlock()
		return ErrWritePending
	}
	s.writing = true
	s.mu.Unlock()

	buf := bytes.Clone(data)
	go func() {
		count, err := s.conn.Write(buf)
		s.loop.Post(func() {
			s.writeDone(count, err)
		})
	}()
	return nil
}

func (s *Session) writeDone(count int, err error) {
	s.mu.Lock()
	s.writing = false
	if s.state != SessionOpen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = SessionFailed
	}
	s.mu.Unlock()

	if err != nil {
		s.fail(err, count)
		return
	}
	s.onWrite.emit(count)
}

// Read arms one asynchronous read.
//
// The outcome is either an OnRead event carrying the received bytes, an
// OnReadComplete event when the peer has closed the connection, or an
// OnError event. It returns [ErrSessionNotOpen] when the session is not
// open and [ErrReadPending] when a previous Read has not completed yet.
func (s *Session) Read() error {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.reading {
		s.mu.Unlock()
		return ErrReadPending
	}
	s.reading = true
	s.mu.Unlock()

	buf := make([]byte, s.readBufferSize)
	go func() {
		count, err := s.conn.Read(buf)
		s.loop.Post(func() {
			s.readDone(buf[:count], err)
		})
	}()
	return nil
}

func (s *Session) readDone(data []byte, err error) {
	eof := errors.Is(err, io.EOF) || (err == nil && len(data) <= 0)

	s.mu.Lock()
	s.reading = false
	if s.state != SessionOpen {
		s.mu.Unlock()
		return
	}
	if err != nil && !eof {
		s.state = SessionFailed
	}
	s.mu.Unlock()

	if len(data) > 0 {
		s.onRead.emit(data)
	}
	switch {
	case eof:
		s.onReadComplete.emit(Unit{})
	case err != nil:
		s.fail(err, len(data))
	}
}

// Close closes the connection, which aborts any pending operation, and
// emits the close event. Close is idempotent: calling it again once the
// session is closing or closed does nothing and returns nil.
//
// Completions of operations aborted by Close are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == SessionClosing || s.state == SessionClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = SessionClosing
	s.mu.Unlock()

	err := s.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil // e.g., already closed because the context is done
	}

	s.mu.Lock()
	s.state = SessionClosed
	s.mu.Unlock()

	s.logState("sessionClosed", err)
	s.loop.Post(func() {
		s.onClose.emit(Unit{})
	})
	return err
}

func (s *Session) checkOpenLocked() error {
	if s.state != SessionOpen {
		return fmt.Errorf("%w (state: %s)", ErrSessionNotOpen, s.state)
	}
	return nil
}

func (s *Session) fail(err error, count int) {
	s.logState("sessionFailed", err)
	s.onError.emit(newErrorEvent(s.errClassifier, err, count))
}

func (s *Session) logState(event string, err error) {
	s.logger.Info(
		event,
		slog.Any("err", err),
		slog.String("errClass", s.errClassifier.Classify(err)),
		slog.String("localAddr", s.laddr),
		slog.String("protocol", s.protocol),
		slog.String("remoteAddr", s.raddr),
		slog.Time("t", s.timeNow()),
	)
}
