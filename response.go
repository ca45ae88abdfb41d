// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// headerTerminator is the empty line ending the header block.
var headerTerminator = []byte("\r\n\r\n")

// Response is an HTTP/1.x response reconstructed incrementally from the
// chunks received by a [*Session].
//
// Feed every chunk to [*Response.Append]. The parser stages bytes until
// the header block is complete, parses the status line and the header
// fields exactly once, then appends everything else to Body. Chunks may
// be split anywhere, including inside the "\r\n\r\n" terminator.
//
// Body holds the raw bytes following the header block: no transfer
// coding is decoded. The zero value is ready to use.
type Response struct {
	MessageBase

	// StatusCode is the numeric status code (e.g., 200).
	StatusCode int

	// Reason is the reason phrase (e.g., "OK"), possibly empty.
	Reason string

	// Body is the response payload received so far.
	Body Body

	// headerParsed is true once the header block has been parsed.
	headerParsed bool

	// staging buffers bytes while the header block is incomplete.
	staging []byte

	// err is the sticky parse error.
	err error
}

// NewResponse returns an empty [*Response] waiting for its header block.
func NewResponse() *Response {
	return &Response{}
}

// HeaderParsed returns true if and only if the header block has been
// fully received and parsed.
func (r *Response) HeaderParsed() bool {
	return r.headerParsed
}

// Append consumes the next chunk of the response.
//
// A malformed header block causes an error wrapping [ErrParse]. The error
// is sticky: subsequent calls return it without consuming data.
func (r *Response) Append(data []byte) error {
	if r.err != nil {
		return r.err
	}
	if r.headerParsed {
		r.Body.Append(data)
		return nil
	}

	// The terminator may straddle the previous chunk and this one.
	from := max(0, len(r.staging)-len(headerTerminator)+1)
	r.staging = append(r.staging, data...)
	idx := bytes.Index(r.staging[from:], headerTerminator)
	if idx < 0 {
		return nil
	}
	idx += from

	staging := r.staging
	r.staging = nil
	// Copy the header block: parsed strings must not pin the staging buffer.
	if err := r.parseHeaderBlock(string(staging[:idx])); err != nil {
		r.err = err
		return err
	}
	r.headerParsed = true
	r.Body.Append(staging[idx+len(headerTerminator):])
	return nil
}

func (r *Response) parseHeaderBlock(block string) error {
	statusLine, fields, _ := strings.Cut(block, crlf)
	if err := r.parseStatusLine(statusLine); err != nil {
		return err
	}
	if fields == "" {
		return nil
	}
	for _, line := range strings.Split(fields, crlf) {
		name, value, found := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return fmt.Errorf("%w: malformed header field %q", ErrParse, line)
		}
		// Note: a repeated name overwrites the previous value (e.g., only
		// the last Set-Cookie is kept).
		r.SetHeader(name, strings.TrimSpace(value))
	}
	return nil
}

// parseStatusLine parses "HTTP/<version> <status> <reason>".
func (r *Response) parseStatusLine(line string) error {
	proto, rest, found := strings.Cut(line, " ")
	token, isHTTP := strings.CutPrefix(proto, "HTTP/")
	if !found || !isHTTP {
		return fmt.Errorf("%w: malformed status line %q", ErrParse, line)
	}
	version, err := ParseHTTPVersion(token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	code, reason, _ := strings.Cut(rest, " ")
	status, err := strconv.Atoi(code)
	if err != nil || len(code) != 3 || status < 100 {
		return fmt.Errorf("%w: invalid status code %q", ErrParse, code)
	}
	r.Version = version
	r.StatusCode = status
	r.Reason = reason
	return nil
}

// Bytes serializes the parsed response back to the HTTP/1.x wire format.
//
// Before the header block is parsed, it returns nil.
func (r *Response) Bytes() []byte {
	if !r.headerParsed {
		return nil
	}
	buf := make([]byte, 0, 128+r.Body.Len())
	buf = append(buf, "HTTP/"...)
	buf = append(buf, r.Version.String()...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.StatusCode), 10)
	buf = append(buf, ' ')
	buf = append(buf, r.Reason...)
	buf = append(buf, crlf...)
	buf = r.appendHeaderBlock(buf)
	return append(buf, r.Body.data...)
}
