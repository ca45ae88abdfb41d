// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointValidate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint Endpoint
		wantErr  bool
	}{
		{"domain name", NewEndpoint("example.org", 80), false},
		{"IPv4 literal", NewEndpoint("93.184.216.34", 443), false},
		{"IPv6 literal", NewEndpoint("2001:db8::1", 8080), false},
		{"port zero", NewEndpoint("example.org", 0), false},
		{"max port", NewEndpoint("example.org", 65535), false},
		{"empty host", NewEndpoint("", 80), true},
		{"negative port", NewEndpoint("example.org", -1), true},
		{"port too large", NewEndpoint("example.org", 65536), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.endpoint.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidEndpoint)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEndpointString(t *testing.T) {
	assert.Equal(t, "example.org:80", NewEndpoint("example.org", 80).String())
	assert.Equal(t, "[2001:db8::1]:8080", NewEndpoint("2001:db8::1", 8080).String())
}
