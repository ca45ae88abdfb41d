// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"log/slog"
	"net"
	"time"

	"github.com/bassosimone/safeconn"
)

// dnsExchangeLogContext holds the logging state of a single DNS
// exchange performed by the [*DNSResolver].
type dnsExchangeLogContext struct {
	errClassifier ErrClassifier
	laddr         string
	logger        SLogger
	protocol      string
	raddr         string
	timeNow       func() time.Time

	// rawQuery is the last query seen by the query observer, so that
	// the response observer can log it alongside the response.
	rawQuery []byte
}

func newDNSExchangeLogContext(r *DNSResolver, conn net.Conn) *dnsExchangeLogContext {
	return &dnsExchangeLogContext{
		errClassifier: r.ErrClassifier,
		laddr:         safeconn.LocalAddr(conn),
		logger:        r.Logger,
		protocol:      safeconn.Network(conn),
		raddr:         safeconn.RemoteAddr(conn),
		timeNow:       r.TimeNow,
	}
}

func (lc *dnsExchangeLogContext) attrs(extra ...any) []any {
	return append([]any{
		slog.String("localAddr", lc.laddr),
		slog.String("protocol", lc.protocol),
		slog.String("remoteAddr", lc.raddr),
		slog.String("serverProtocol", lc.protocol),
	}, extra...)
}

func (lc *dnsExchangeLogContext) logStart(t0, deadline time.Time, name string) {
	lc.logger.Info("dnsExchangeStart", lc.attrs(
		slog.Time("deadline", deadline),
		slog.String("dnsQueryName", name),
		slog.Time("t", t0),
	)...)
}

func (lc *dnsExchangeLogContext) logDone(t0, deadline time.Time, name string, err error) {
	lc.logger.Info("dnsExchangeDone", lc.attrs(
		slog.Time("deadline", deadline),
		slog.String("dnsQueryName", name),
		slog.Any("err", err),
		slog.String("errClass", lc.errClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", lc.timeNow()),
	)...)
}

func (lc *dnsExchangeLogContext) observeQuery(t0 time.Time) func([]byte) {
	return func(rawQuery []byte) {
		lc.rawQuery = rawQuery
		lc.logger.Info("dnsQuery", lc.attrs(
			slog.Any("dnsRawQuery", rawQuery),
			slog.Time("t", t0),
		)...)
	}
}

func (lc *dnsExchangeLogContext) observeResponse(t0 time.Time) func([]byte) {
	return func(rawResp []byte) {
		lc.logger.Info("dnsResponse", lc.attrs(
			slog.Any("dnsRawQuery", lc.rawQuery),
			slog.Any("dnsRawResponse", rawResp),
			slog.Time("t0", t0),
			slog.Time("t", lc.timeNow()),
		)...)
	}
}
