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

// Package packet implements the sized byte buffer shuttled between the
// receive parser and the downstream pipeline.
//
// A Packet owns an unread byte slice. Split divides it at an offset into a
// consumed prefix and an unconsumed suffix; the suffix becomes the
// connection's next input buffer, which is how pipelined bytes that arrived
// past the end of one request survive into the next without being re-read
// from the socket.
//
// # Ownership
//
// New wraps a caller-owned slice; once passed to New, the Packet owns it and
// the caller must not mutate it. Advance and Append mutate a Packet in place,
// while Split always allocates a fresh backing array for its suffix so the
// returned Packet can outlive the original's buffer once the prefix is handed
// to a pipeline that may retain or free it independently.
//
// # End-of-stream sentinel
//
// NewEnd produces a zero-length Packet with IsEnd true, pushed onto a
// connection's receive queue once a chunked or length-delimited body has
// been fully received, so a pipeline reading from that queue has an explicit
// signal to stop rather than inferring completion from a zero Len.
package packet
