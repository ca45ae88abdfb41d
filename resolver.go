// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"
)

// Resolver maps a host name to its addresses.
//
// The [*net.Resolver] type satisfies this interface, and so does [*DNSResolver].
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// errNoAddresses indicates a lookup returning no usable address.
var errNoAddresses = errors.New("no addresses for host")

// NewResolveFunc returns a new [*ResolveFunc] using [Config.Resolver].
func NewResolveFunc(cfg *Config, logger SLogger) *ResolveFunc {
	return &ResolveFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Resolver:      cfg.Resolver,
		TimeNow:       cfg.TimeNow,
	}
}

// ResolveFunc resolves a host into a non-empty list of addresses.
//
// IP address literals are returned as is without a lookup. Otherwise the
// lookup is logged as resolveStart/resolveDone and results that are not
// valid IP addresses are skipped.
//
// All fields are safe to modify after construction but before first use.
type ResolveFunc struct {
	// ErrClassifier classifies errors for structured logging.
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	Logger SLogger

	// Resolver performs the lookup.
	Resolver Resolver

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time
}

var _ Func[string, []netip.Addr] = &ResolveFunc{}

// Call resolves host.
func (op *ResolveFunc) Call(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.Logger.Info(
		"resolveStart",
		slog.Time("deadline", deadline),
		slog.String("host", host),
		slog.Time("t", t0),
	)

	addrs, err := op.lookup(ctx, host)

	op.Logger.Info(
		"resolveDone",
		slog.Any("addrs", addrs),
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.String("host", host),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
	)
	return addrs, err
}

func (op *ResolveFunc) lookup(ctx context.Context, host string) ([]netip.Addr, error) {
	values, err := op.Resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var addrs []netip.Addr
	for _, value := range values {
		if addr, err := netip.ParseAddr(value); err == nil {
			addrs = append(addrs, addr.Unmap())
		}
	}
	if len(addrs) <= 0 {
		return nil, fmt.Errorf("%w: %s", errNoAddresses, host)
	}
	return addrs, nil
}
