// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import "bytes"

// Body is the append-only payload of a [*Request] or [*Response].
//
// The zero value is an empty body ready to use. Body does not enforce
// any size limit: that is a responsibility of the caller.
type Body struct {
	data []byte
}

// Append grows the body by len(data) bytes, keeping the previous content.
// The body does not retain data.
func (b *Body) Append(data []byte) {
	b.data = append(b.data, data...)
}

// Set replaces the whole content of the body with a copy of data.
func (b *Body) Set(data []byte) {
	b.data = append(b.data[:0], data...)
}

// Bytes returns a copy of the body content.
func (b *Body) Bytes() []byte {
	return bytes.Clone(b.data)
}

// String returns the body content as a string.
func (b *Body) String() string {
	return string(b.data)
}

// Len returns the body length in bytes.
func (b *Body) Len() int {
	return len(b.data)
}

// Reset empties the body, retaining the allocated storage.
func (b *Body) Reset() {
	b.data = b.data[:0]
}
