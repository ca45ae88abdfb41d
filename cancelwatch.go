// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"net"
)

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc binds the lifetime of a connection to a context: when
// the context is done, the connection is closed, so that a pending
// [*Session.Read] or [*Session.Write] fails instead of blocking.
//
// [*Connector.Connect] places this stage at the end of its dial pipeline
// with the context passed to Connect. Closing the returned connection
// unregisters the watcher, so no goroutine outlives the connection.
type CancelWatchFunc struct{}

var _ Func[net.Conn, net.Conn] = &CancelWatchFunc{}

// Call registers the watcher with [context.AfterFunc] and wraps conn.
func (op *CancelWatchFunc) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return &cancelWatchedConn{Conn: conn, stop: stop}, nil
}

type cancelWatchedConn struct {
	net.Conn
	stop func() bool
}

// Close unregisters the context watcher and closes the underlying connection.
func (c *cancelWatchedConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
