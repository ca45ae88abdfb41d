// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import "errors"

// Errors returned by the connector and session layer.
var (
	// ErrInvalidEndpoint indicates an [Endpoint] with an empty host
	// or a port outside of [0, 65535].
	ErrInvalidEndpoint = errors.New("evhttp: invalid endpoint")

	// ErrResolve wraps failures of the resolve phase of [*Connector.Connect].
	ErrResolve = errors.New("evhttp: cannot resolve endpoint")

	// ErrConnect wraps failures of the connect phase of [*Connector.Connect].
	ErrConnect = errors.New("evhttp: cannot connect to endpoint")

	// ErrSessionNotOpen is returned by [*Session] operations issued
	// when the session is not in the [SessionOpen] state.
	ErrSessionNotOpen = errors.New("evhttp: session is not open")

	// ErrReadPending is returned by [*Session.Read] when a read is
	// already outstanding.
	ErrReadPending = errors.New("evhttp: read already pending")

	// ErrWritePending is returned by [*Session.Write] when a write is
	// already outstanding.
	ErrWritePending = errors.New("evhttp: write already pending")
)

// Errors returned by the HTTP message model.
var (
	// ErrParse is the root of all the response parsing errors.
	ErrParse = errors.New("evhttp: cannot parse HTTP response")

	// ErrUnknownVersion indicates an HTTP version token not
	// matching any [HTTPVersion] value.
	ErrUnknownVersion = errors.New("unknown HTTP version")
)
