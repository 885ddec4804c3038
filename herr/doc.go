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

// Package herr implements the engine's error taxonomy.
//
// # Overview
//
// Every failure the parser, the connection state machine or the host/endpoint
// registries can raise is represented as an *herr.Error: a Kind (the
// protocol-facing category), the HTTP status it maps to, and a Fatal flag
// telling the caller whether the connection must be closed once the error
// response has been flushed. Constructors (Protocol, BadRequest, TooLarge,
// URLTooLarge, RangeNotSatisfiable, Unauthorized, NotFound, BadFormat) pick
// the Kind/status/Fatal combination for their category so call sites never
// hand-assemble one.
//
// # Integration with github.com/nabbar/golib/errors
//
// Each Kind is also registered as a liberr.CodeError via
// liberr.RegisterIdFctMessage, so the Lib field on an *Error carries the same
// code/parent/stack-trace machinery the rest of the golib family uses. This
// lets an embedder format, wrap or compare these errors the same way it
// already does for every other golib-based component, rather than learning a
// bespoke error type for just this package.
//
// # Fatal vs non-fatal
//
// Fatal errors (protocol violations, bad requests, size limits) leave the
// wire in an unrecoverable state: the request line or headers could not be
// trusted, so the connection is torn down after the response is sent.
// Non-fatal errors (416, 401, 404) are failures the application layer can
// recover from on the same connection — a bad Range header or a missing
// credential doesn't mean the next pipelined request is unparseable.
package herr
