// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLogContext returns a log context for a UDP exchange with fixed
// addresses and a capturing logger.
func newTestLogContext() (*dnsExchangeLogContext, *[]slog.Record) {
	logger, records := newCapturingLogger()
	cfg := NewConfig()
	resolver := NewDNSResolver(cfg, "udp", netip.MustParseAddrPort("8.8.8.8:53"), logger)
	conn := newMinimalConn()
	conn.LocalAddrFunc = func() net.Addr { return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321} }
	conn.RemoteAddrFunc = func() net.Addr { return &net.UDPAddr{IP: net.IPv4(8, 8, 8, 8), Port: 53} }
	return newDNSExchangeLogContext(resolver, conn), records
}

// attrsOf returns the attributes of record keyed by name.
func attrsOf(record slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value)
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value
		return true
	})
	return attrs
}

func TestDNSExchangeLogContextStartDone(t *testing.T) {
	lc, records := newTestLogContext()
	t0 := time.Now()
	wantErr := errors.New("mocked error")

	lc.logStart(t0, t0.Add(time.Second), "example.org")
	lc.logDone(t0, t0.Add(time.Second), "example.org", wantErr)

	require.Equal(t, []string{"dnsExchangeStart", "dnsExchangeDone"}, recordNames(*records))

	start := attrsOf((*records)[0])
	assert.Equal(t, "example.org", start["dnsQueryName"].String())
	assert.Equal(t, "127.0.0.1:54321", start["localAddr"].String())
	assert.Equal(t, "8.8.8.8:53", start["remoteAddr"].String())
	assert.Equal(t, "udp", start["protocol"].String())
	assert.Equal(t, "udp", start["serverProtocol"].String())

	done := attrsOf((*records)[1])
	assert.Equal(t, wantErr, done["err"].Any())
	assert.NotEmpty(t, done["errClass"].String())
}

// The response event carries the query seen by the query observer.
func TestDNSExchangeLogContextObservers(t *testing.T) {
	lc, records := newTestLogContext()
	t0 := time.Now()
	rawQuery := []byte{0x00, 0x01, 0x02}
	rawResp := []byte{0x03, 0x04, 0x05}

	lc.observeQuery(t0)(rawQuery)
	lc.observeResponse(t0)(rawResp)

	require.Equal(t, []string{"dnsQuery", "dnsResponse"}, recordNames(*records))
	assert.Equal(t, rawQuery, attrsOf((*records)[0])["dnsRawQuery"].Any())

	resp := attrsOf((*records)[1])
	assert.Equal(t, rawQuery, resp["dnsRawQuery"].Any())
	assert.Equal(t, rawResp, resp["dnsRawResponse"].Any())
}
