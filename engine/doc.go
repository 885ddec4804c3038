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

// Package engine provides the top-level wiring an embedder holds.
//
// # Overview
//
// An Engine creates endpoints (AddEndpoint) and hosts (AddHost), holds the
// engine-wide default limits.HttpLimits new endpoints inherit unless given
// their own, and coordinates Start/Stop across every registered endpoint as
// one unit. It is the composition root this module otherwise leaves
// unopinionated: packet, rx, conn, host and endpoint each work in isolation,
// and Engine is what an embedder actually constructs to get a running
// server.
//
// # Startup rollback
//
// Start binds every registered endpoint concurrently using
// golang.org/x/sync/errgroup. If any one endpoint fails to bind — most
// commonly EADDRINUSE — every endpoint that did succeed is stopped again
// before Start returns its error, so a partially-bound Engine is never left
// running: callers can treat Start as all-or-nothing.
//
// # Connection tracking
//
// onAccept is wired as every endpoint's Notifier; it allocates a conn.Conn
// for each accepted socket and tracks it by ID so Connections() and Forget()
// give an embedder visibility into and control over the live connection set
// without the conn package itself needing to know about net.Conn. The engine
// does not drive the socket read/write loop itself — that I/O glue is left to
// the embedder, consistent with conn.Conn's Feed/Process model.
package engine
