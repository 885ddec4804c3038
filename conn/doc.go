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

// Package conn implements the per-connection state machine driving one
// TCP connection through a sequence of HTTP/1.x requests or responses.
//
// # Overview
//
// A Conn moves through StateBegin -> StateConnected -> StateParsed ->
// StateContent -> StateRunning -> StateComplete and back to StateBegin,
// continuing at once if pipelined bytes remain (the keep-alive budget is not
// consulted for this), without ever
// touching the socket directly: Feed supplies newly read bytes, and Process
// drives the state machine as far as it can go without blocking, returning
// when more bytes are needed, the Pipeline reports write-blocked, or the
// active request finished with nothing left pipelined behind it.
//
// # The Pipeline contract
//
// A Conn is agnostic to what happens once a request is parsed and matched to
// a host/route; it calls out to a Pipeline (StartPipeline, ProcessPipeline,
// Writable, Finalize) and waits for that Pipeline to call SetComplete(true)
// before advancing past StateRunning. This mirrors the host/endpoint split:
// the connection machinery in this package never needs to know what an
// embedder's handler actually does with a matched request.
//
// # Pipelining and backpressure
//
// When a completed request leaves trailing bytes in the input buffer (a
// pipelined next request already arrived), Process re-enters StateBegin and
// keeps draining without blocking, so a client that pipelines several
// requests over one connection has them all processed within a single
// Process call. receiveHighWaterMark bounds how many body packets can queue
// up before the parser stops accepting more, so a slow Pipeline on a fast
// sender cannot grow that queue without limit.
//
// # Auth state across keep-alive requests
//
// A client-mode Conn retains the most recently parsed WWW-Authenticate
// challenge in AuthChallenge and its digest nonce-use counter in AuthNc,
// surviving across the keep-alive requests sharing one connection; AuthNc
// resets to zero every time a new nonce is parsed, whether or not it differs
// from the previous one.
package conn
