// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
)

func TestDefaultErrClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"deadline exceeded", context.DeadlineExceeded, errclass.ETIMEDOUT},
		{"wrapped deadline exceeded", fmt.Errorf("%w: %w", ErrConnect, context.DeadlineExceeded), errclass.ETIMEDOUT},
		{"unknown error", errors.New("unknown error"), errclass.EGENERIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultErrClassifier.Classify(tt.err))
		})
	}
}

func TestErrClassifierFunc(t *testing.T) {
	classifier := ErrClassifierFunc(func(err error) string {
		if errors.Is(err, ErrParse) {
			return "EPARSE"
		}
		return ""
	})
	assert.Equal(t, "EPARSE", classifier.Classify(fmt.Errorf("%w: bad", ErrParse)))
	assert.Equal(t, "", classifier.Classify(nil))
}
