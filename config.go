// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"net"
	"time"
)

// DefaultReadBufferSize is the size of the buffer used by each [*Session.Read].
const DefaultReadBufferSize = 4096

// Config holds common configuration for evhttp operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging and [ErrorEvent].
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// ReadBufferSize is the maximum number of bytes a single [*Session.Read]
	// delivers with one read event.
	//
	// Set by [NewConfig] to [DefaultReadBufferSize].
	ReadBufferSize int

	// Resolver maps host names to addresses during [*Connector.Connect].
	//
	// Set by [NewConfig] to [*net.Resolver] (the system resolver).
	Resolver Resolver

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:         &net.Dialer{},
		ErrClassifier:  DefaultErrClassifier,
		ReadBufferSize: DefaultReadBufferSize,
		Resolver:       &net.Resolver{},
		TimeNow:        time.Now,
	}
}
