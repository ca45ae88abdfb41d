// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// NewConnector returns a new [*Connector] delivering its events through loop.
//
// The cfg argument contains the common configuration; the connector copies
// the fields it needs, and the sessions it creates inherit them.
//
// The logger argument is the [SLogger] used by the connector and by every
// [*Session] it creates.
func NewConnector(loop *Loop, cfg *Config, logger SLogger) *Connector {
	return &Connector{
		Dialer:         cfg.Dialer,
		ErrClassifier:  cfg.ErrClassifier,
		Logger:         logger,
		ReadBufferSize: cfg.ReadBufferSize,
		Resolver:       cfg.Resolver,
		TimeNow:        cfg.TimeNow,
		loop:           loop,
	}
}

// Connector turns an [Endpoint] into a [*Session].
//
// Each [*Connector.Connect] call resolves the endpoint, emits the resolve
// event, connects, and emits the connect event carrying the new session.
// A failure in either phase emits the error event instead, and the attempt
// ends there: the connector never retries.
//
// All exported fields are safe to modify after construction but before
// the first Connect.
type Connector struct {
	// Dialer is the [Dialer] to use.
	Dialer Dialer

	// ErrClassifier classifies errors for logging and [ErrorEvent].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// ReadBufferSize is inherited by the created sessions.
	ReadBufferSize int

	// Resolver resolves domain names.
	Resolver Resolver

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time

	loop      *Loop
	onConnect eventSource[*Session]
	onError   eventSource[ErrorEvent]
	onResolve eventSource[Unit]
}

// OnResolve subscribes to the event emitted when resolution completed
// and the connection attempt is proceeding.
func (c *Connector) OnResolve(fn func()) Subscription {
	return c.onResolve.subscribe(unitHandler(fn))
}

// OnConnect subscribes to the event emitted with a new [*Session]. Every
// handler receives the same session: subscribe a single owner.
func (c *Connector) OnConnect(fn func(session *Session)) Subscription {
	return c.onConnect.subscribe(fn)
}

// OnError subscribes to resolve and connect failures. The error wraps
// either [ErrResolve] or [ErrConnect] and BytesTransferred is zero.
func (c *Connector) OnError(fn func(ev ErrorEvent)) Subscription {
	return c.onError.subscribe(fn)
}

// Connect starts an asynchronous connection attempt to endpoint.
//
// It returns [ErrInvalidEndpoint] without emitting events if the endpoint
// is invalid. Otherwise, it returns nil and the outcome is delivered
// through the events. Multiple attempts may run concurrently.
//
// The ctx bounds resolution and connection establishment. It also bounds
// the lifetime of the connection: when ctx is done, the connection of the
// created session is closed and pending I/O fails.
func (c *Connector) Connect(ctx context.Context, endpoint Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return err
	}
	go c.run(ctx, endpoint)
	return nil
}

func (c *Connector) config() *Config {
	return &Config{
		Dialer:         c.Dialer,
		ErrClassifier:  c.ErrClassifier,
		ReadBufferSize: c.ReadBufferSize,
		Resolver:       c.Resolver,
		TimeNow:        c.TimeNow,
	}
}

func (c *Connector) run(ctx context.Context, endpoint Endpoint) {
	cfg := c.config()

	addrs, err := NewResolveFunc(cfg, c.Logger).Call(ctx, endpoint.Host)
	if err != nil {
		c.postError(fmt.Errorf("%w %s: %w", ErrResolve, endpoint, err))
		return
	}
	c.loop.Post(func() {
		c.onResolve.emit(Unit{})
	})

	dial := Compose3[netip.AddrPort, net.Conn, net.Conn, net.Conn](
		NewConnectFunc(cfg, "tcp", c.Logger),
		NewObserveConnFunc(cfg, c.Logger),
		NewCancelWatchFunc(),
	)
	var conn net.Conn
	for _, addr := range addrs {
		conn, err = dial.Call(ctx, netip.AddrPortFrom(addr, uint16(endpoint.Port)))
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		c.postError(fmt.Errorf("%w %s: %w", ErrConnect, endpoint, err))
		return
	}

	session := newSession(c.loop, conn, cfg, c.Logger)
	c.loop.Post(func() {
		c.onConnect.emit(session)
	})
}

func (c *Connector) postError(err error) {
	ev := newErrorEvent(c.ErrClassifier, err, 0)
	c.loop.Post(func() {
		c.onError.emit(ev)
	})
}
