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

// Package limits holds the per-connection bounds that the parser and state
// machine check before growing any buffer.
//
// # Overview
//
// An HttpLimits value bounds one connection's resource usage: header and URI
// sizes, header count, request/response body sizes, keep-alive count and the
// inactivity/request/session timeout classes. A Conn is created with a
// snapshot of the limits in effect for the endpoint/host that accepted it, so
// changing the engine's defaults afterwards never perturbs connections
// already in flight.
//
// # Defaults and overrides
//
// Default returns the engine's built-in values, sized for the common case of
// small headers and megabyte-scale bodies. An endpoint created without its
// own limits inherits the engine's current default; one created with an
// explicit *HttpLimits keeps that value independently of later calls to
// SetDefaultLimits.
//
// # Validation
//
// Validate runs the struct through github.com/go-playground/validator's tag
// based rules (gt=0, gte=0) and converts any validator.FieldError into an
// engine-local field error wrapped in a github.com/nabbar/golib/errors
// CodeError, so a misconfigured limits value fails the same way any other
// golib-based configuration error does, before the endpoint it belongs to is
// ever started.
package limits
