// SPDX-License-Identifier: GPL-3.0-or-later

// Package evhttp provides event-driven TCP sessions and an HTTP/1.x message
// model for exchanging requests and responses over them.
//
// # Core Abstractions
//
// Network operations never block the caller. They complete on their own
// goroutines and report their outcome as events, which a [*Loop] delivers
// one at a time, in completion order, on the goroutine running it:
//
//   - [*Connector]: resolves an [Endpoint], connects to it, and emits
//     OnResolve followed by OnConnect with a new [*Session], or OnError
//   - [*Session]: owns one connection; Read and Write arm one asynchronous
//     operation each and emit OnRead, OnReadComplete, OnWrite, OnError;
//     Close emits OnClose exactly once
//
// Every OnX method returns a [Subscription] whose Unsubscribe method
// removes the handler.
//
// The HTTP message model is synchronous and does no I/O:
//
//   - [MessageBase]: version and ordered, case-insensitive [HeaderMap]
//   - [Body]: append-only payload
//   - [*Request]: serializes to the HTTP/1.x wire format with Bytes
//   - [*Response]: parses chunks of arbitrary size with Append
//
// # Typical Exchange
//
// Subscribe to the [*Connector] events and call Connect. In OnConnect,
// subscribe to the session events and Write the request bytes. In OnWrite,
// call Read. In OnRead, Append the chunk to a [*Response] and call Read
// again. In OnReadComplete, the response is complete: Close the session.
// See the testable examples.
//
// Reads are not re-armed automatically. The owner decides when to issue
// the next Read, which bounds how much data is buffered ahead of it.
//
// # Session State
//
// A [*Session] starts in [SessionOpen]. An I/O error moves it to
// [SessionFailed]. Close moves it through [SessionClosing] to [SessionClosed].
// Read and Write outside [SessionOpen] fail immediately with
// [ErrSessionNotOpen]; a second Read (or Write) while one is outstanding
// fails with [ErrReadPending] (or [ErrWritePending]).
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with [log/slog]).
// By default, logging is disabled. Error classification is configurable via
// [ErrClassifier]; the default uses github.com/bassosimone/errclass.
//
// Each phase emits a *Start/*Done pair (resolveStart/resolveDone,
// connectStart/connectDone, closeStart/closeDone, dnsExchangeStart/dnsExchangeDone)
// with localAddr, remoteAddr, protocol, t0, t, err, and errClass. Sessions
// emit sessionOpen, sessionFailed, and sessionClosed. Per-I/O events (readStart,
// readDone, writeStart, writeDone) use [slog.LevelDebug]; all other events use
// [slog.LevelInfo].
//
// Use [NewSpanID] to generate a unique, time-ordered identifier (UUIDv7) for each
// exchange and attach it to the logger with [*slog.Logger.With].
//
// # Context
//
// The context passed to [*Connector.Connect] bounds name resolution and
// connection establishment as well as the lifetime of the connection, through
// [CancelWatchFunc]. Cancelling it makes pending session I/O fail.
//
// # Design Boundaries
//
// There is no TLS, no HTTP/2 framing (HTTP versions are labels only), no
// connection pooling, no retry, no redirects, and no chunked transfer decoding:
// a [*Response] body contains the raw bytes following the header block.
package evhttp
