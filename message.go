// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"fmt"
	"slices"

	"github.com/indigo-web/utils/strcomp"
)

// HTTPVersion is the HTTP version carried in a start line.
//
// The version is only a label: it does not change how messages are
// serialized or parsed. The zero value is not a valid version.
type HTTPVersion int

const (
	// HTTPVersion09 is HTTP/0.9.
	HTTPVersion09 HTTPVersion = iota + 1

	// HTTPVersion10 is HTTP/1.0.
	HTTPVersion10

	// HTTPVersion11 is HTTP/1.1.
	HTTPVersion11

	// HTTPVersion20 is HTTP/2.0.
	HTTPVersion20
)

var httpVersionTokens = [...]string{
	HTTPVersion09: "0.9",
	HTTPVersion10: "1.0",
	HTTPVersion11: "1.1",
	HTTPVersion20: "2.0",
}

// String returns the version number without the "HTTP/" prefix (e.g., "1.1").
func (v HTTPVersion) String() string {
	if !v.Valid() {
		return fmt.Sprintf("HTTPVersion(%d)", int(v))
	}
	return httpVersionTokens[v]
}

// Valid returns whether v is one of the defined versions.
func (v HTTPVersion) Valid() bool {
	return v >= HTTPVersion09 && v <= HTTPVersion20
}

// ParseHTTPVersion maps a version number without the "HTTP/" prefix
// (e.g., "1.0") to an [HTTPVersion]. Any other token yields
// [ErrUnknownVersion].
func ParseHTTPVersion(token string) (HTTPVersion, error) {
	for v := HTTPVersion09; v <= HTTPVersion20; v++ {
		if httpVersionTokens[v] == token {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, token)
}

// HeaderField is a single name/value header pair.
type HeaderField struct {
	Name  string
	Value string
}

// HeaderMap is an ordered collection of header fields.
//
// Names are compared case-insensitively but keep the case they were
// first inserted with. Setting an existing name replaces its value in
// place, so a name never appears twice. The zero value is ready to use.
type HeaderMap struct {
	fields []HeaderField
}

func (h *HeaderMap) index(name string) int {
	return slices.IndexFunc(h.fields, func(f HeaderField) bool {
		return strcomp.EqualFold(f.Name, name)
	})
}

// Set inserts the header at the end or overwrites the value of an
// existing header with the same name.
func (h *HeaderMap) Set(name, value string) {
	if idx := h.index(name); idx >= 0 {
		h.fields[idx].Value = value
		return
	}
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Get returns the value of the named header and whether it exists.
func (h *HeaderMap) Get(name string) (string, bool) {
	if idx := h.index(name); idx >= 0 {
		return h.fields[idx].Value, true
	}
	return "", false
}

// Has returns whether the named header exists.
func (h *HeaderMap) Has(name string) bool {
	return h.index(name) >= 0
}

// Del removes the named header and reports whether it existed.
func (h *HeaderMap) Del(name string) bool {
	idx := h.index(name)
	if idx < 0 {
		return false
	}
	h.fields = slices.Delete(h.fields, idx, idx+1)
	return true
}

// Fields returns a copy of the header fields in insertion order.
func (h *HeaderMap) Fields() []HeaderField {
	return slices.Clone(h.fields)
}

// Len returns the number of header fields.
func (h *HeaderMap) Len() int {
	return len(h.fields)
}

// MessageBase contains the version and headers shared by [*Request]
// and [*Response], so that serialization and parsing agree on how
// headers are stored and compared.
type MessageBase struct {
	// Version is the HTTP version of the start line.
	Version HTTPVersion

	// Headers contains the header fields.
	Headers HeaderMap
}

// SetHeader inserts or overwrites a header.
func (m *MessageBase) SetHeader(name, value string) {
	m.Headers.Set(name, value)
}

// Header returns the value of the named header and whether it exists.
func (m *MessageBase) Header(name string) (string, bool) {
	return m.Headers.Get(name)
}

// HasHeader returns whether the named header exists (case-insensitive).
func (m *MessageBase) HasHeader(name string) bool {
	return m.Headers.Has(name)
}

// HeaderFields returns the header fields in insertion order.
func (m *MessageBase) HeaderFields() []HeaderField {
	return m.Headers.Fields()
}

// appendHeaderBlock appends the header lines and the terminating
// empty line to buf using the HTTP/1.x wire format.
func (m *MessageBase) appendHeaderBlock(buf []byte) []byte {
	for _, f := range m.Headers.fields {
		buf = append(buf, f.Name...)
		buf = append(buf, ": "...)
		buf = append(buf, f.Value...)
		buf = append(buf, crlf...)
	}
	return append(buf, crlf...)
}

const crlf = "\r\n"
