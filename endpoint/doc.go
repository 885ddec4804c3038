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

// Package endpoint implements the listening-address acceptor.
//
// # Overview
//
// One Endpoint owns one bound (ip, port): a host.Registry of the virtual
// hosts reachable through it, an optional github.com/nabbar/golib/certificates
// TLS configuration, and the accept loop that hands each freshly accepted
// *net.TCPConn (TCP_NODELAY already set) to a Notifier callback.
//
// # Validation before Start
//
// Start refuses to bind a socket for an Endpoint with no host registry or no
// host yet added to it — an endpoint accepting connections for zero virtual
// hosts could never route anything, so the failure is surfaced at Start time
// rather than as a silent 404 on the first connection. A bind conflict on an
// already-used port is reported as a distinct ErrorCannotOpen case
// (EADDRINUSE) so a caller orchestrating several endpoints, such as the
// engine's startup rollback, can tell a port conflict apart from any other
// listen failure.
//
// # Async accept loop
//
// When Async is set, Start launches acceptLoop in a background goroutine; it
// accepts in a tight loop until the listener is closed by Stop, dispatching
// each connection to the installed Notifier on its own goroutine so one slow
// notifier never stalls the accept loop.
//
// # Registry and TLS application by pattern
//
// A Registry tracks every Endpoint created by an embedder so
// SecureEndpointByName can apply a TLS configuration to every endpoint whose
// "ip:port" matches a pattern, with an empty ip or port segment (or an empty
// pattern) acting as a wildcard on that segment.
package endpoint
