// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpanID(t *testing.T) {
	const count = 64
	seen := make(map[string]struct{}, count)

	for range count {
		spanID := NewSpanID()

		parsed, err := uuid.Parse(spanID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())

		_, duplicate := seen[spanID]
		require.False(t, duplicate, "duplicate span ID: %s", spanID)
		seen[spanID] = struct{}{}
	}
}
