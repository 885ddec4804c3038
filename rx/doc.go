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

// Package rx implements the receive-side parser.
//
// # Overview
//
// An Rx value is one inbound message: a request line or status line, its
// headers, and the bookkeeping a connection's state machine needs to know
// how much body remains and whether it is length-delimited or chunked.
// ParseRequestLine, ParseStatusLine and ParseHeaders each take the Rx being
// built, the limits.HttpLimits bounding it, and the current
// packet.Packet of unread bytes; each returns ok=false rather than blocking
// when the packet doesn't yet contain a complete line or header block, so a
// caller's state machine can re-enter the same parse step on the next read.
//
// # Chunked body framing
//
// GetChunkPacketSize drives the chunk-size/chunk-data/trailer state machine
// (ChunkNone -> ChunkStart -> ChunkData -> ... -> ChunkEof) across as many
// calls as it takes for a chunked body to arrive in pieces. It is
// deliberately self-re-entrant: when a ChunkData call observes
// RemainingContent has reached zero, it transitions back to ChunkStart and
// falls through to parse the next chunk-size line in the same call rather
// than requiring the driver to call it again first — this is what lets a
// chunked body's final "0\r\n\r\n" be consumed in the same pass that
// recognises end-of-chunk, instead of leaving it to be misread as the start
// of whatever request follows on a pipelined connection.
//
// ParseHeaders deliberately does not consume the blank line that terminates
// a chunked message's header block: that blank line is left in the packet so
// it doubles as the leading CRLF the first chunk-size line expects.
//
// # Conditional requests and ranges
//
// ContentNotModified implements If-Modified-Since/If-None-Match precondition
// evaluation; parseRange and parseContentRange build the Range list consumed
// by a handler implementing partial-content responses.
package rx
