// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/bassosimone/dnscodec"
	"github.com/bassosimone/dnsoverstream"
	"github.com/bassosimone/minest"
	"github.com/miekg/dns"
)

// NewDNSResolver returns a [*DNSResolver] querying server.
//
// The network argument must be either "udp" (DNS-over-UDP) or "tcp"
// (DNS-over-TCP).
func NewDNSResolver(cfg *Config, network string, server netip.AddrPort, logger SLogger) *DNSResolver {
	return &DNSResolver{
		Dialer:        cfg.Dialer,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Network:       network,
		Server:        server,
		TimeNow:       cfg.TimeNow,
	}
}

// DNSResolver is a [Resolver] sending A queries to a specific DNS server
// instead of using the system resolver.
//
// Each lookup dials a new connection to Server, performs one exchange,
// and closes the connection. The exchange is logged as
// dnsExchangeStart/dnsExchangeDone plus dnsQuery/dnsResponse events
// carrying the raw messages.
//
// Install it as [Config.Resolver] before constructing a [*Connector].
//
// All fields are safe to modify after construction but before first use.
type DNSResolver struct {
	// Dialer is the [Dialer] used to reach Server.
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// Network is either "udp" or "tcp".
	Network string

	// Server is the DNS server address.
	Server netip.AddrPort

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time
}

var _ Resolver = &DNSResolver{}

// LookupHost implements [Resolver].
func (r *DNSResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	connect := &ConnectFunc{
		Dialer:        r.Dialer,
		ErrClassifier: r.ErrClassifier,
		Logger:        r.Logger,
		Network:       r.Network,
		TimeNow:       r.TimeNow,
	}
	conn, err := Compose2[netip.AddrPort, net.Conn, net.Conn](connect, NewCancelWatchFunc()).Call(ctx, r.Server)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	resp, err := r.exchange(ctx, conn, host)
	if err != nil {
		return nil, err
	}
	return resp.RecordsA()
}

func (r *DNSResolver) exchange(ctx context.Context, conn net.Conn, host string) (*dnscodec.Response, error) {
	query := dnscodec.NewQuery(host, dns.TypeA)
	t0 := r.TimeNow()
	deadline, _ := ctx.Deadline()
	lc := newDNSExchangeLogContext(r, conn)
	lc.logStart(t0, deadline, host)

	var (
		resp *dnscodec.Response
		err  error
	)
	switch r.Network {
	case "udp":
		// We already own the connection, so the transport must not dial.
		txp := minest.NewDNSOverUDPTransport(dnsUnusedDialer{}, r.Server)
		txp.ObserveRawQuery = lc.observeQuery(t0)
		txp.ObserveRawResponse = lc.observeResponse(t0)
		resp, err = txp.ExchangeWithConn(ctx, conn, query)

	case "tcp":
		dialer := dnsoverstream.NewStreamOpenerDialerTCP(dnsUnusedDialer{})
		txp := dnsoverstream.NewTransport(dialer, r.Server)
		txp.ObserveRawQuery = lc.observeQuery(t0)
		txp.ObserveRawResponse = lc.observeResponse(t0)
		resp, err = txp.ExchangeWithStreamOpener(ctx, dnsoverstream.NewTCPStreamOpener(conn), query)

	default:
		err = fmt.Errorf("evhttp: unsupported DNS network %q", r.Network)
	}

	lc.logDone(t0, deadline, host, err)
	return resp, err
}
