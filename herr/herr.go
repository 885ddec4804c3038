/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package herr implements the engine's error taxonomy: a small set of
// protocol/limit/auth error kinds, each mapped to a canonical HTTP status and
// registered as a github.com/nabbar/golib/errors CodeError so embedders get
// the same code/parent/stack-trace machinery as the rest of the golib family.
package herr

import (
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

// Kind classifies an engine error by the HTTP-facing category it belongs to.
type Kind uint8

const (
	KindBadFormat Kind = iota
	KindProtocol
	KindBadRequest
	KindRequestTooLarge
	KindRequestURLTooLarge
	KindRangeNotSatisfiable
	KindUnauthorized
	KindNotFound
)

const (
	CodeBadFormat liberr.CodeError = iota + liberr.MinPkgHttpServer
	CodeProtocol
	CodeBadRequest
	CodeRequestTooLarge
	CodeRequestURLTooLarge
	CodeRangeNotSatisfiable
	CodeUnauthorized
	CodeNotFound
)

func init() {
	liberr.RegisterIdFctMessage(CodeBadFormat, message)
}

func message(code liberr.CodeError) string {
	switch code {
	case CodeBadFormat:
		return "malformed input could not be decoded"
	case CodeProtocol:
		return "malformed request/status line, method or header"
	case CodeBadRequest:
		return "request violates a wire-format constraint"
	case CodeRequestTooLarge:
		return "request exceeds a configured size limit"
	case CodeRequestURLTooLarge:
		return "uri or status message exceeds the configured limit"
	case CodeRangeNotSatisfiable:
		return "range or content-range header is malformed"
	case CodeUnauthorized:
		return "authentication challenge failed or is required"
	case CodeNotFound:
		return "no virtual host matched the request"
	}
	return ""
}

var kindCode = map[Kind]liberr.CodeError{
	KindBadFormat:           CodeBadFormat,
	KindProtocol:            CodeProtocol,
	KindBadRequest:          CodeBadRequest,
	KindRequestTooLarge:     CodeRequestTooLarge,
	KindRequestURLTooLarge:  CodeRequestURLTooLarge,
	KindRangeNotSatisfiable: CodeRangeNotSatisfiable,
	KindUnauthorized:        CodeUnauthorized,
	KindNotFound:            CodeNotFound,
}

// Error is a wire-facing engine error: a Kind, the status it maps to, and
// whether the connection must be closed once the error response flushes.
type Error struct {
	Lib    liberr.Error
	Kind   Kind
	Status int
	Fatal  bool
}

func (e *Error) Error() string {
	if e.Lib == nil {
		return e.statusText()
	}
	return e.statusText() + ": " + e.Lib.Error()
}

func (e *Error) statusText() string {
	return fmt.Sprintf("http %d", e.Status)
}

func newErr(kind Kind, status int, fatal bool, format string, args ...interface{}) *Error {
	return &Error{
		Lib:    kindCode[kind].Error(fmt.Errorf(format, args...)),
		Kind:   kind,
		Status: status,
		Fatal:  fatal,
	}
}

// Protocol maps malformed request/status lines and headers to a ProtocolError.
// status is one of 400/405/406 depending on the specific violation.
func Protocol(status int, format string, args ...interface{}) *Error {
	return newErr(KindProtocol, status, true, format, args...)
}

// BadRequest is a 400: header count exceeded, bad content-length, bad auth header.
func BadRequest(format string, args ...interface{}) *Error {
	return newErr(KindBadRequest, 400, true, format, args...)
}

// TooLarge is a 413: header block or body exceeds a configured limit.
func TooLarge(format string, args ...interface{}) *Error {
	return newErr(KindRequestTooLarge, 413, true, format, args...)
}

// URLTooLarge is a 414: URI or status message too long.
func URLTooLarge(format string, args ...interface{}) *Error {
	return newErr(KindRequestURLTooLarge, 414, true, format, args...)
}

// RangeNotSatisfiable is a 416: malformed Range/Content-Range.
func RangeNotSatisfiable(format string, args ...interface{}) *Error {
	return newErr(KindRangeNotSatisfiable, 416, false, format, args...)
}

// Unauthorized is a 401: auth failed or challenge required.
func Unauthorized(format string, args ...interface{}) *Error {
	return newErr(KindUnauthorized, 401, false, format, args...)
}

// NotFound is a 404: no host matched the request.
func NotFound(format string, args ...interface{}) *Error {
	return newErr(KindNotFound, 404, false, format, args...)
}

// BadFormat reports an internal decode failure (e.g. base64); it carries no
// HTTP status and is returned directly to the caller rather than the wire.
func BadFormat(format string, args ...interface{}) *Error {
	return newErr(KindBadFormat, 0, false, format, args...)
}
