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

package conn_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunfirefox/http/conn"
	"github.com/sunfirefox/http/limits"
)

// fakePipeline is a minimal conn.Pipeline double: it marks the request
// complete as soon as ProcessPipeline runs, unless told to stall.
type fakePipeline struct {
	started    int
	processed  int
	finalized  int
	writable   bool
	completeOn int // ProcessPipeline call number that triggers SetComplete
}

func (f *fakePipeline) StartPipeline(c *conn.Conn) { f.started++ }

func (f *fakePipeline) ProcessPipeline(c *conn.Conn) {
	f.processed++
	if f.completeOn < 0 {
		return
	}
	if f.completeOn == 0 || f.processed >= f.completeOn {
		c.SetComplete(true)
	}
}

func (f *fakePipeline) Writable(c *conn.Conn) bool { return f.writable }

func (f *fakePipeline) Finalize(c *conn.Conn) { f.finalized++ }

// recordingPipeline wraps a fakePipeline to observe Conn state at the moment
// ProcessPipeline runs, before processCompletion tears Rx down.
type recordingPipeline struct {
	*fakePipeline
	onProcess func(c *conn.Conn)
}

func (r *recordingPipeline) ProcessPipeline(c *conn.Conn) {
	r.fakePipeline.ProcessPipeline(c)
	if r.onProcess != nil {
		r.onProcess(c)
	}
}

var _ = Describe("Conn lifecycle", func() {
	It("drives a simple GET with no body through to Complete", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		c.Feed([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"))
		c.Process()

		Expect(p.started).To(Equal(1))
		Expect(p.processed).To(Equal(1))
		Expect(p.finalized).To(Equal(1))
		Expect(c.State()).To(Equal(conn.StateBegin))
	})

	It("does not advance past Running while the pipeline reports not writable", func() {
		p := &fakePipeline{writable: false, completeOn: -1}
		c := conn.New(true, limits.Default(), p, nil)

		c.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
		c.Process()

		Expect(p.started).To(Equal(1))
		Expect(p.processed).To(Equal(1))
		Expect(c.State()).To(Equal(conn.StateRunning))
		Expect(p.finalized).To(Equal(0))
	})

	It("zeroes the keep-alive budget for an HTTP/1.0 request", func() {
		p := &fakePipeline{writable: true}
		lim := limits.Default()
		c := conn.New(true, lim, p, nil)

		c.Feed([]byte("GET / HTTP/1.0\r\nHost: example.com\r\n\r\n"))
		c.Process()

		Expect(c.KeepAliveCount()).To(Equal(0))
	})

	It("zeroes the keep-alive budget when Connection: close is sent", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		c.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n"))
		c.Process()

		Expect(c.KeepAliveCount()).To(Equal(0))
	})

	It("reports a parse error through Error() and forces the keep-alive budget to zero on a fatal error", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		// "BOGUS" is not a recognised method: ParseRequestLine reports a
		// fatal 405, which stops the driver loop before the pipeline runs.
		c.Feed([]byte("BOGUS / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
		c.Process()

		Expect(c.Error()).ToNot(BeNil())
		Expect(c.Error().Status).To(Equal(405))
		Expect(c.Error().Fatal).To(BeTrue())
		Expect(c.KeepAliveCount()).To(Equal(0))
		Expect(c.State()).To(Equal(conn.StateRunning))
		Expect(p.processed).To(Equal(0))
	})

	It("splices unconsumed pipelined bytes into the next request's input", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		first := "GET /a HTTP/1.1\r\nHost: example.com\r\n\r\n"
		second := "GET /b HTTP/1.1\r\nHost: example.com\r\n\r\n"
		c.Feed([]byte(first + second))

		// A completed request with leftover bytes re-enters StateBegin and
		// the driver loop keeps running without blocking, so both pipelined
		// requests drain within a single Process call.
		c.Process()

		Expect(p.started).To(Equal(2))
		Expect(p.finalized).To(Equal(2))
		Expect(c.State()).To(Equal(conn.StateBegin))
	})

	It("queues body bytes for a POST with a declared Content-Length", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		body := "field=value"
		req := "POST /submit HTTP/1.1\r\nHost: example.com\r\nContent-Length: " +
			itoa(len(body)) + "\r\n\r\n" + body
		c.Feed([]byte(req))
		c.Process()

		Expect(p.started).To(Equal(1))
		Expect(p.processed).To(Equal(1))
		Expect(p.finalized).To(Equal(1))
	})

	It("consumes a chunked body fully, including the terminating 0-chunk, before leaving Content state", func() {
		var sawEOF bool
		p := &fakePipeline{writable: true}
		p2 := &recordingPipeline{fakePipeline: p, onProcess: func(c *conn.Conn) {
			sawEOF = c.Rx != nil && c.Rx.EOF
		}}
		c := conn.New(true, limits.Default(), p2, nil)

		req := "PUT /upload HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"5\r\nhello\r\n0\r\n\r\n"
		c.Feed([]byte(req))
		c.Process()

		Expect(sawEOF).To(BeTrue())
		Expect(p.started).To(Equal(1))
		Expect(p.processed).To(Equal(1))
		Expect(p.finalized).To(Equal(1))
		Expect(c.State()).To(Equal(conn.StateBegin))
	})

	It("does not corrupt a pipelined request following a chunked body", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		chunked := "PUT /upload HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"5\r\nhello\r\n0\r\n\r\n"
		next := "GET /after HTTP/1.1\r\nHost: example.com\r\n\r\n"
		c.Feed([]byte(chunked + next))
		c.Process()

		// If the terminating "0\r\n\r\n" had been left unparsed in the input
		// buffer (the chunked-EOF bug), it would be mistaken for the start of
		// the next request line and both requests would fail to complete.
		Expect(p.started).To(Equal(2))
		Expect(p.processed).To(Equal(2))
		Expect(p.finalized).To(Equal(2))
		Expect(c.State()).To(Equal(conn.StateBegin))
	})

	It("holds a multi-chunk body in Content state across chunk boundaries before completing", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		req := "PUT /upload HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"3\r\nfoo\r\n4\r\nbarz\r\n0\r\n\r\n"
		c.Feed([]byte(req))
		c.Process()

		Expect(p.started).To(Equal(1))
		Expect(p.processed).To(Equal(1))
		Expect(p.finalized).To(Equal(1))
		Expect(c.State()).To(Equal(conn.StateBegin))
	})

	It("retains the parsed WWW-Authenticate challenge and resets the nonce counter on each new challenge", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(false, limits.Default(), p, nil)
		c.AuthNc = 7 // a prior request on this connection already used the old nonce

		resp := "HTTP/1.1 401 Unauthorized\r\n" +
			`WWW-Authenticate: Digest realm="example", domain="/", nonce="abc123", opaque="xyz", qop="auth", algorithm="MD5", stale="false"` +
			"\r\nContent-Length: 0\r\n\r\n"
		c.Feed([]byte(resp))
		c.Process()

		Expect(c.AuthChallenge.Realm).To(Equal("example"))
		Expect(c.AuthChallenge.Domain).To(Equal("/"))
		Expect(c.AuthChallenge.Nonce).To(Equal("abc123"))
		Expect(c.AuthChallenge.Opaque).To(Equal("xyz"))
		Expect(c.AuthChallenge.Qop).To(Equal("auth"))
		Expect(c.AuthChallenge.Algorithm).To(Equal("MD5"))
		Expect(c.AuthChallenge.Stale).To(Equal("false"))
		Expect(c.AuthNc).To(Equal(0))
	})

	It("Wait returns true once the connection reaches the target state", func() {
		p := &fakePipeline{writable: true}
		c := conn.New(true, limits.Default(), p, nil)

		c.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
		c.Process()

		ok := c.Wait(context.Background(), conn.StateBegin, time.Second)
		Expect(ok).To(BeTrue())
	})

	It("Wait returns false when the context is already cancelled and the state hasn't been reached", func() {
		p := &fakePipeline{writable: false}
		c := conn.New(true, limits.Default(), p, nil)
		c.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
		c.Process()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ok := c.Wait(ctx, conn.StateComplete, time.Second)
		Expect(ok).To(BeFalse())
	})
})

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
