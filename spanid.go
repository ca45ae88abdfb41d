// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a span.
//
// Here a span is one request/response exchange: connect, write the
// request, read the response, close. Attach the ID to the logger with
// [*slog.Logger.With] before constructing the [*Connector] so that every
// event of the exchange carries the same spanID.
//
// This function panics if the system random number generator fails.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
