// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import "github.com/bassosimone/runtimex"

// Request is an HTTP/1.x request.
//
// A request is owned by its creator. Once [*Request.Bytes] is called,
// the bytes are independent of the request, which may be discarded.
type Request struct {
	MessageBase

	// Method is the request method (e.g., "GET").
	Method string

	// Path is the request target (e.g., "/").
	Path string

	// Body is the request payload.
	Body Body
}

// NewRequest returns a [*Request] without headers and with an empty body.
//
// This function panics if method or path is empty or the version is
// not valid: these are programmer errors.
func NewRequest(method, path string, version HTTPVersion) *Request {
	runtimex.Assert(method != "" && path != "" && version.Valid())
	return &Request{
		MessageBase: MessageBase{Version: version},
		Method:      method,
		Path:        path,
	}
}

// Bytes serializes the request using the HTTP/1.x wire format:
//
//	<METHOD> <PATH> HTTP/<VERSION>\r\n
//	<Name>: <Value>\r\n   (one line per header, in insertion order)
//	\r\n
//	<body bytes>
//
// This method has no side effects on the request.
func (r *Request) Bytes() []byte {
	buf := make([]byte, 0, 128+r.Body.Len())
	buf = append(buf, r.Method...)
	buf = append(buf, ' ')
	buf = append(buf, r.Path...)
	buf = append(buf, " HTTP/"...)
	buf = append(buf, r.Version.String()...)
	buf = append(buf, crlf...)
	buf = r.appendHeaderBlock(buf)
	return append(buf, r.Body.data...)
}
