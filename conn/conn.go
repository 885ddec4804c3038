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

// Package conn implements the per-connection state machine: a single
// threaded, cooperative driver loop that advances a Conn through
// Begin -> Connected -> Parsed -> Content -> Running -> Complete, calling
// the rx parser and a downstream Pipeline, and never blocking.
package conn

import (
	"context"
	"time"

	uuid "github.com/hashicorp/go-uuid"
	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"

	"github.com/sunfirefox/http/auth"
	"github.com/sunfirefox/http/herr"
	"github.com/sunfirefox/http/host"
	"github.com/sunfirefox/http/limits"
	"github.com/sunfirefox/http/packet"
	"github.com/sunfirefox/http/rx"
)

// State is a position in the connection lifecycle.
type State uint8

const (
	StateBegin State = iota
	StateConnected
	StateParsed
	StateContent
	StateRunning
	StateComplete
)

// receiveHighWaterMark bounds the body-packet queue depth before the parser
// applies backpressure.
const receiveHighWaterMark = 64

// Pipeline is the downstream handler contract the parser drives once a
// request is matched to a host/route.
type Pipeline interface {
	StartPipeline(c *Conn)
	ProcessPipeline(c *Conn)
	Writable(c *Conn) bool
	Finalize(c *Conn)
}

// Conn is one TCP connection carrying a sequence of HTTP/1.x requests
// (server side) or responses (client side), pipelined or not.
type Conn struct {
	ID string

	Server bool
	HTTP10 bool

	Limits limits.HttpLimits

	state    libatm.Value[State]
	complete libatm.Value[bool]
	connErr  libatm.Value[bool]

	keepAliveCount int

	Rx    *rx.Rx
	Host  *host.Host
	Route *host.Route

	// AuthChallenge is the most recently parsed WWW-Authenticate challenge,
	// client-mode state that survives across the keep-alive requests that
	// share this connection. AuthNc is the digest nonce-use counter; it
	// resets to 0 each time a challenge carrying a nonce is parsed.
	AuthChallenge auth.Challenge
	AuthNc        int

	input *packet.Packet

	receiveQueue []*packet.Packet
	canProceed   bool
	advancing    bool

	pipeline Pipeline
	log      liblog.FuncLog

	lastErr *herr.Error
}

// New allocates a Conn ready to receive its first request, with a fresh
// connection id for log correlation.
func New(server bool, lim limits.HttpLimits, pipeline Pipeline, log liblog.FuncLog) *Conn {
	id, _ := uuid.GenerateUUID()
	c := &Conn{
		ID:             id,
		Server:         server,
		Limits:         lim,
		keepAliveCount: lim.KeepAliveCount,
		pipeline:       pipeline,
		log:            log,
	}
	c.state = libatm.NewValue[State]()
	c.complete = libatm.NewValue[bool]()
	c.connErr = libatm.NewValue[bool]()
	c.state.Store(StateBegin)
	return c
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() State { return c.state.Load() }

func (c *Conn) setState(s State) { c.state.Store(s) }

// Complete reports whether the active request has finished processing.
func (c *Conn) Complete() bool { return c.complete.Load() }

// SetComplete lets the Pipeline signal that it has finished handling the
// active request, so processRunning can advance the driver loop to
// StateComplete on its next turn.
func (c *Conn) SetComplete(v bool) { c.complete.Store(v) }

// Error returns the most recent parse/protocol error raised on this
// connection, or nil.
func (c *Conn) Error() *herr.Error { return c.lastErr }

// KeepAliveCount exposes the keep-alive budget: it starts at
// Limits.KeepAliveCount and is set to 0 by an HTTP/1.0 message, a
// keep-alive-ending header or a fatal error. Completed requests do not
// decrement it.
func (c *Conn) KeepAliveCount() int { return c.keepAliveCount }

// Feed appends newly read bytes to the connection's current input buffer,
// creating one if this is the first data since the last request completed.
func (c *Conn) Feed(b []byte) {
	if c.input == nil {
		c.input = packet.New(nil)
	}
	c.input.Append(b)
}

// Process is the driver loop: while canProceed, dispatch on state. It never
// blocks; it returns when the parser needs more bytes, when
// the pipeline signals write-blocked, or when the request completed with no
// pipelined bytes left to process.
func (c *Conn) Process() {
	c.canProceed = true
	c.advancing = true
	defer func() { c.advancing = false }()

	for c.canProceed {
		switch c.state.Load() {
		case StateBegin, StateConnected:
			c.canProceed = c.parseIncoming()
		case StateParsed:
			c.canProceed = c.processParsed()
		case StateContent:
			c.canProceed = c.processContent()
		case StateRunning:
			c.canProceed = c.processRunning()
		case StateComplete:
			c.canProceed = c.processCompletion()
		}
	}
}

// parseIncoming waits for a full header block, then parses the request or
// status line and headers.
func (c *Conn) parseIncoming() bool {
	if c.input == nil || c.input.Len() == 0 {
		return false
	}

	buf := c.input.Bytes()
	headerEnd := indexHeaderEnd(buf)
	if headerEnd < 0 {
		if int64(len(buf)) >= c.Limits.HeaderSize {
			c.fail(herr.TooLarge("header block exceeds configured limit"))
		}
		return false
	}
	if int64(headerEnd) >= c.Limits.HeaderSize {
		c.fail(herr.TooLarge("header block exceeds configured limit"))
		return false
	}

	if c.Rx == nil {
		c.Rx = rx.New(c.Server)
	}

	var ok bool
	var perr *herr.Error
	if c.Server {
		ok, perr = rx.ParseRequestLine(c.Rx, c.Limits, c.input)
	} else {
		ok, perr = rx.ParseStatusLine(c.Rx, c.Limits, c.input)
	}
	if !ok {
		return false
	}
	if perr != nil {
		c.fail(perr)
		return false
	}

	if ok, perr = rx.ParseHeaders(c.Rx, c.Limits, c.input); !ok {
		return false
	}
	if perr != nil {
		c.fail(perr)
		return false
	}

	if c.Rx.HTTP10 {
		c.HTTP10 = true
		c.keepAliveCount = 0
	}
	if !c.Rx.KeepAlive {
		c.keepAliveCount = 0
	}

	if c.Rx.Challenge.Nonce != "" {
		c.AuthChallenge = c.Rx.Challenge
		c.AuthNc = 0
	}

	c.setState(StateParsed)
	return true
}

func indexHeaderEnd(buf []byte) int {
	for i := 0; i+3 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' && buf[i+2] == '\r' && buf[i+3] == '\n' {
			return i
		}
	}
	return -1
}

// processParsed hands control to the pipeline and advances to StateContent.
// It does no host/route matching itself; Host and Route keep whatever the
// caller assigned.
func (c *Conn) processParsed() bool {
	if c.pipeline != nil {
		c.pipeline.StartPipeline(c)
	}
	c.setState(StateContent)
	return true
}

// processContent pulls body bytes out of the input buffer (fixed-length or
// chunked), pushes them onto the receive queue, and yields on backpressure.
// For a chunked body it re-enters GetChunkPacketSize once a chunk's data is
// fully consumed, since RemainingContent hitting 0 only ends the message
// once ChunkState reaches ChunkEof (the "0\r\n\r\n" terminator); anywhere
// before that it means "read the next chunk header", not "done".
func (c *Conn) processContent() bool {
	if c.complete.Load() || c.connErr.Load() {
		c.setState(StateRunning)
		return true
	}
	if !c.Rx.Chunked && c.Rx.RemainingContent <= 0 {
		c.setState(StateRunning)
		return true
	}
	if c.input == nil {
		return false
	}

	var remaining int64
	if c.Rx.Chunked {
		if c.Rx.ChunkState != rx.ChunkEof {
			n, err := rx.GetChunkPacketSize(c.Rx, c.input)
			if err != nil {
				c.fail(err)
				return false
			}
			if c.Rx.ChunkState != rx.ChunkEof && n == 0 {
				// Not enough bytes yet for the next chunk-size line.
				return false
			}
			remaining = n
		}
		if c.Rx.ChunkState == rx.ChunkEof {
			c.Rx.EOF = true
			c.receiveQueue = append(c.receiveQueue, packet.NewEnd())
			c.setState(StateRunning)
			return true
		}
	} else {
		remaining = c.Rx.RemainingContent
	}

	if len(c.receiveQueue) >= receiveHighWaterMark {
		// Backpressure: leave input untouched until the pipeline drains the queue.
		return false
	}

	available := int64(c.input.Len())
	nbytes := remaining
	if available < nbytes {
		nbytes = available
	}

	if nbytes > 0 {
		prefix, suffix := c.input.Split(int(nbytes))
		c.Rx.RemainingContent -= nbytes
		c.Rx.ReceivedContent += nbytes

		if c.Rx.ReceivedContent >= c.Limits.ReceiveBodySize {
			c.fail(herr.TooLarge("received body of %d bytes exceeds limit %d", c.Rx.ReceivedContent, c.Limits.ReceiveBodySize))
			return false
		}

		c.receiveQueue = append(c.receiveQueue, prefix)
		c.input = suffix
	} else {
		c.input = nil
	}

	if !c.Rx.Chunked && c.Rx.RemainingContent == 0 {
		c.Rx.EOF = true
		c.receiveQueue = append(c.receiveQueue, packet.NewEnd())
		c.setState(StateRunning)
		return true
	}
	return true
}

// processRunning drives the pipeline until it reports completion or a
// write-blocked yield.
func (c *Conn) processRunning() bool {
	if c.pipeline == nil {
		c.setState(StateComplete)
		return true
	}
	c.pipeline.ProcessPipeline(c)

	if c.complete.Load() || c.connErr.Load() {
		c.setState(StateComplete)
		return true
	}
	if !c.pipeline.Writable(c) {
		return false
	}
	return true
}

// processCompletion tears down the Rx and, if unconsumed pipelined bytes
// remain, splices them into a fresh input buffer so the driver loop
// re-enters from Begin with the next request's bytes already in hand.
func (c *Conn) processCompletion() bool {
	more := c.input != nil && !c.connErr.Load() && c.input.Len() > 0

	if c.pipeline != nil {
		c.pipeline.Finalize(c)
	}
	c.Rx = nil
	c.Route = nil
	c.complete.Store(false)
	c.receiveQueue = nil

	if more {
		c.setState(StateBegin)
		return true
	}
	c.input = nil
	c.setState(StateBegin)
	return false
}

func (c *Conn) fail(e *herr.Error) {
	c.lastErr = e
	c.connErr.Store(true)
	if e.Fatal {
		c.keepAliveCount = 0
	}
	c.setState(StateRunning)
}

// Wait blocks (respecting ctx) until the connection reaches at least the
// given state or ctx/timeout expires, for client-mode callers driving a
// request synchronously.
func (c *Conn) Wait(ctx context.Context, state State, timeout time.Duration) bool {
	if c.state.Load() >= state {
		return true
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if c.state.Load() >= state {
				return true
			}
			if timeout > 0 && time.Now().After(deadline) {
				return false
			}
		}
	}
}
