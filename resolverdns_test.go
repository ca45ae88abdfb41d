// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dnsAnswer builds the response to the raw query, answering A queries
// with 10.0.0.1 and 10.0.0.2.
func dnsAnswer(t *testing.T, rawQuery []byte) []byte {
	query := new(dns.Msg)
	if err := query.Unpack(rawQuery); err != nil {
		t.Errorf("cannot unpack query: %s", err)
		return nil
	}
	resp := new(dns.Msg)
	resp.SetReply(query)
	for _, value := range []string{"10.0.0.1", "10.0.0.2"} {
		resp.Answer = append(resp.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   query.Question[0].Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    3600,
			},
			A: net.ParseIP(value),
		})
	}
	rawResp, err := resp.Pack()
	if err != nil {
		t.Errorf("cannot pack response: %s", err)
	}
	return rawResp
}

// dnsServerUDP answers a single query over UDP on the loopback interface.
func dnsServerUDP(t *testing.T) netip.AddrPort {
	pconn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pconn.Close() })
	go func() {
		buf := make([]byte, dns.MaxMsgSize)
		count, addr, err := pconn.ReadFrom(buf)
		if err != nil {
			return
		}
		pconn.WriteTo(dnsAnswer(t, buf[:count]), addr)
	}()
	return netip.MustParseAddrPort(pconn.LocalAddr().String())
}

// dnsServerTCP answers a single length-prefixed query over TCP.
func dnsServerTCP(t *testing.T) netip.AddrPort {
	endpoint := loopbackServer(t, func(conn net.Conn) {
		var length uint16
		if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
			return
		}
		rawQuery := make([]byte, length)
		if _, err := io.ReadFull(conn, rawQuery); err != nil {
			return
		}
		rawResp := dnsAnswer(t, rawQuery)
		frame := binary.BigEndian.AppendUint16(nil, uint16(len(rawResp)))
		conn.Write(append(frame, rawResp...))
	})
	return netip.AddrPortFrom(netip.MustParseAddr(endpoint.Host), uint16(endpoint.Port))
}

func TestDNSResolverLookupHost(t *testing.T) {
	for _, network := range []string{"udp", "tcp"} {
		t.Run(network, func(t *testing.T) {
			var server netip.AddrPort
			switch network {
			case "udp":
				server = dnsServerUDP(t)
			case "tcp":
				server = dnsServerTCP(t)
			}
			logger, records := newCapturingLogger()
			resolver := NewDNSResolver(NewConfig(), network, server, logger)

			addrs, err := resolver.LookupHost(context.Background(), "example.org")

			require.NoError(t, err)
			assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, addrs)
			assert.Equal(t, []string{
				"connectStart",
				"connectDone",
				"dnsExchangeStart",
				"dnsQuery",
				"dnsResponse",
				"dnsExchangeDone",
			}, recordNames(*records))
		})
	}
}

// A connector configured with a DNSResolver resolves through it.
func TestDNSResolverAsConnectorResolver(t *testing.T) {
	cfg := NewConfig()
	cfg.Resolver = NewDNSResolver(cfg, "udp", dnsServerUDP(t), DefaultSLogger())

	addrs, err := NewResolveFunc(cfg, DefaultSLogger()).Call(context.Background(), "example.org")
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("10.0.0.2"),
	}, addrs)
}

// newFailingConn returns a connection whose I/O fails with err.
func newFailingConn(err error) *netstub.FuncConn {
	conn := newMinimalConn()
	conn.CloseFunc = func() error { return nil }
	conn.ReadFunc = func(b []byte) (int, error) { return 0, err }
	conn.WriteFunc = func(b []byte) (int, error) { return 0, err }
	conn.SetDeadlineFunc = func(time.Time) error { return nil }
	conn.SetReadDeadFunc = func(time.Time) error { return nil }
	conn.SetWriteDeaFunc = func(time.Time) error { return nil }
	return conn
}

func TestDNSResolverErrors(t *testing.T) {
	wantErr := errors.New("mocked error")

	tests := []struct {
		// name describes what this test case verifies.
		name string

		// network is the DNS network.
		network string

		// dial is the DialContextFunc to use.
		dial func(ctx context.Context, network, address string) (net.Conn, error)

		// wantErr is the expected error, nil for any error.
		wantErr error
	}{
		{
			name:    "dial error",
			network: "udp",
			dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return nil, wantErr
			},
			wantErr: wantErr,
		},
		{
			name:    "UDP write error",
			network: "udp",
			dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return newFailingConn(wantErr), nil
			},
		},
		{
			name:    "TCP write error",
			network: "tcp",
			dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return newFailingConn(wantErr), nil
			},
		},
		{
			name:    "unsupported network",
			network: "sctp",
			dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return newFailingConn(wantErr), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Dialer = &netstub.FuncDialer{DialContextFunc: tt.dial}
			resolver := NewDNSResolver(cfg, tt.network, netip.MustParseAddrPort("8.8.8.8:53"), DefaultSLogger())

			addrs, err := resolver.LookupHost(context.Background(), "example.org")

			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Nil(t, addrs)
		})
	}
}

func TestDNSUnusedDialerPanics(t *testing.T) {
	assert.Panics(t, func() {
		dnsUnusedDialer{}.DialContext(context.Background(), "udp", "127.0.0.1:53")
	})
}
