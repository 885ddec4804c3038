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
// receive parser and the downstream pipeline. A Packet owns an unread byte
// slice; Split divides it at an offset into a consumed prefix and an
// unconsumed suffix, the suffix (copied into its own array) becoming the
// connection's next input buffer.
package packet

// Packet is a sized byte buffer with MIME/length metadata.
type Packet struct {
	data []byte
	mime string
	end  bool
}

// New wraps data as a Packet. The slice is owned by the Packet; callers must
// not mutate it afterwards.
func New(data []byte) *Packet {
	return &Packet{data: data}
}

// NewEnd creates an end-of-stream sentinel packet, pushed onto the receive
// queue once a body has been fully received.
func NewEnd() *Packet {
	return &Packet{end: true}
}

// IsEnd reports whether this is the end-of-stream sentinel.
func (p *Packet) IsEnd() bool {
	return p != nil && p.end
}

// Len returns the number of unread bytes.
func (p *Packet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.data)
}

// Bytes returns the unread byte slice. The caller must not retain it past the
// next Advance/Split/Append call.
func (p *Packet) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.data
}

// Mime returns the packet's associated MIME type, if any.
func (p *Packet) Mime() string {
	return p.mime
}

// SetMime tags the packet with a MIME type.
func (p *Packet) SetMime(mime string) {
	p.mime = mime
}

// Append grows the packet by appending more received bytes.
func (p *Packet) Append(b []byte) {
	p.data = append(p.data, b...)
}

// Advance drops n consumed bytes from the front of the unread slice.
func (p *Packet) Advance(n int) {
	if n <= 0 {
		return
	}
	if n >= len(p.data) {
		p.data = p.data[:0]
		return
	}
	p.data = p.data[n:]
}

// Split divides the packet at offset into a consumed prefix and an
// unconsumed suffix. The suffix is a fresh copy so it can outlive the
// original packet's backing array once the prefix is handed to a handler
// that may free or reuse it.
func (p *Packet) Split(offset int) (prefix, suffix *Packet) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(p.data) {
		offset = len(p.data)
	}
	prefix = &Packet{data: p.data[:offset], mime: p.mime}

	rest := make([]byte, len(p.data)-offset)
	copy(rest, p.data[offset:])
	suffix = &Packet{data: rest, mime: p.mime}
	return
}
