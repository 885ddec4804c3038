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

package packet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunfirefox/http/packet"
)

var _ = Describe("Packet", func() {
	Describe("New", func() {
		It("wraps the given bytes", func() {
			p := packet.New([]byte("hello"))
			Expect(p.Len()).To(Equal(5))
			Expect(p.Bytes()).To(Equal([]byte("hello")))
			Expect(p.IsEnd()).To(BeFalse())
		})
	})

	Describe("NewEnd", func() {
		It("creates an end-of-stream sentinel with zero length", func() {
			p := packet.NewEnd()
			Expect(p.IsEnd()).To(BeTrue())
			Expect(p.Len()).To(Equal(0))
		})
	})

	Describe("nil receiver", func() {
		It("treats a nil *Packet as empty and not-end", func() {
			var p *packet.Packet
			Expect(p.Len()).To(Equal(0))
			Expect(p.Bytes()).To(BeNil())
			Expect(p.IsEnd()).To(BeFalse())
		})
	})

	Describe("Append", func() {
		It("grows the unread slice", func() {
			p := packet.New([]byte("ab"))
			p.Append([]byte("cd"))
			Expect(p.Bytes()).To(Equal([]byte("abcd")))
		})
	})

	Describe("Advance", func() {
		It("drops n bytes from the front", func() {
			p := packet.New([]byte("abcdef"))
			p.Advance(2)
			Expect(p.Bytes()).To(Equal([]byte("cdef")))
		})

		It("clamps to empty when n exceeds the length", func() {
			p := packet.New([]byte("ab"))
			p.Advance(10)
			Expect(p.Len()).To(Equal(0))
		})

		It("is a no-op for n<=0", func() {
			p := packet.New([]byte("ab"))
			p.Advance(0)
			Expect(p.Bytes()).To(Equal([]byte("ab")))
		})
	})

	Describe("Split", func() {
		It("divides at offset into a consumed prefix and unread suffix", func() {
			p := packet.New([]byte("GET / HTTP/1.1"))
			prefix, suffix := p.Split(4)
			Expect(prefix.Bytes()).To(Equal([]byte("GET ")))
			Expect(suffix.Bytes()).To(Equal([]byte("/ HTTP/1.1")))
		})

		It("gives the suffix a backing array independent of the original", func() {
			p := packet.New([]byte("abcdef"))
			_, suffix := p.Split(3)
			suffix.Append([]byte("Z"))
			Expect(p.Bytes()).To(Equal([]byte("abcdef")))
		})

		It("clamps an out-of-range offset to the packet length", func() {
			p := packet.New([]byte("ab"))
			prefix, suffix := p.Split(99)
			Expect(prefix.Bytes()).To(Equal([]byte("ab")))
			Expect(suffix.Len()).To(Equal(0))
		})

		It("clamps a negative offset to zero", func() {
			p := packet.New([]byte("ab"))
			prefix, suffix := p.Split(-5)
			Expect(prefix.Len()).To(Equal(0))
			Expect(suffix.Bytes()).To(Equal([]byte("ab")))
		})

		It("carries the mime tag to both halves", func() {
			p := packet.New([]byte("abcdef"))
			p.SetMime("text/plain")
			prefix, suffix := p.Split(3)
			Expect(prefix.Mime()).To(Equal("text/plain"))
			Expect(suffix.Mime()).To(Equal("text/plain"))
		})
	})
})
