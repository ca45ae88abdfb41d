// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"fmt"
	"math"
	"net"
	"strconv"
)

// Endpoint is the host and port a [*Connector] connects to.
//
// Host is either a domain name or an IP address literal.
type Endpoint struct {
	Host string
	Port int
}

// NewEndpoint returns an [Endpoint] for the given host and port.
func NewEndpoint(host string, port int) Endpoint {
	return Endpoint{Host: host, Port: port}
}

// Validate returns [ErrInvalidEndpoint] when the host is empty or
// the port is outside of [0, 65535].
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidEndpoint)
	}
	if e.Port < 0 || e.Port > math.MaxUint16 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidEndpoint, e.Port)
	}
	return nil
}

// String returns the endpoint in host:port form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
