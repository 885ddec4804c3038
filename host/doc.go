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

// Package host implements the virtual host registry.
//
// # Overview
//
// A Host is one logical virtual host: a route list in match order, an
// optional default (empty-pattern) route, and a MIME/uri-prefix streaming
// policy gate deciding whether a given body should be streamed to the
// handler or buffered first. A Registry holds the set of Hosts an endpoint
// accepts connections for and resolves an incoming request's Host header to
// one of them.
//
// # Route ordering and grouping
//
// AddRoute keeps any empty-pattern default route last and maintains a
// NextGroup index on each route: a run of routes sharing the same
// StartSegment all point at the first route past that run, letting a route
// matcher skip an entire mismatched group in one step instead of scanning it
// route by route.
//
// # Cloning and copy-on-write
//
// Clone creates a virtual-host child that shares its parent's route slice
// and streaming map by reference until the first write; Name, IP and Port
// are deliberately not inherited since those identify the child host
// distinctly from its parent. The first AddRoute or SetStreaming call on a
// clone detaches (copies) whichever backing slice/map it would otherwise
// share, so mutating a clone never perturbs its parent or siblings cloned
// from the same parent.
//
// # Host resolution precedence
//
// Registry.Match tries, in order: an exact Name match, a "*suffix" wildcard
// substring match, then a bare "*" wildcard host. If named virtual hosting is
// disabled (SetHasNamedVirtualHosts(false)) the registry's first host is
// always returned regardless of the requested name. Match always returns a
// non-nil Host when at least one is registered, even on a resolution miss,
// so error rendering has a host (and its limits/protocol) to work with; the
// returned found is what actually decides whether the request is a 404.
package host
