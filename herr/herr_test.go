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

package herr_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunfirefox/http/herr"
)

var _ = Describe("herr constructors", func() {
	It("maps Protocol to the given status and marks it fatal", func() {
		e := herr.Protocol(405, "unknown method %q", "FOO")
		Expect(e.Status).To(Equal(405))
		Expect(e.Kind).To(Equal(herr.KindProtocol))
		Expect(e.Fatal).To(BeTrue())
		Expect(e.Error()).To(ContainSubstring("http 405"))
		Expect(e.Error()).To(ContainSubstring("FOO"))
	})

	It("maps BadRequest to 400, fatal", func() {
		e := herr.BadRequest("bad content-length value %q", "xx")
		Expect(e.Status).To(Equal(400))
		Expect(e.Fatal).To(BeTrue())
	})

	It("maps TooLarge to 413, fatal", func() {
		e := herr.TooLarge("body exceeds limit")
		Expect(e.Status).To(Equal(413))
		Expect(e.Fatal).To(BeTrue())
	})

	It("maps URLTooLarge to 414, fatal", func() {
		e := herr.URLTooLarge("uri too long")
		Expect(e.Status).To(Equal(414))
		Expect(e.Fatal).To(BeTrue())
	})

	It("maps RangeNotSatisfiable to 416, non-fatal", func() {
		e := herr.RangeNotSatisfiable("bad range")
		Expect(e.Status).To(Equal(416))
		Expect(e.Fatal).To(BeFalse())
	})

	It("maps Unauthorized to 401, non-fatal", func() {
		e := herr.Unauthorized("missing credentials")
		Expect(e.Status).To(Equal(401))
		Expect(e.Fatal).To(BeFalse())
	})

	It("maps NotFound to 404, non-fatal", func() {
		e := herr.NotFound("no host matched %q", "example.com")
		Expect(e.Status).To(Equal(404))
		Expect(e.Fatal).To(BeFalse())
	})

	It("gives BadFormat no HTTP status", func() {
		e := herr.BadFormat("not valid base64: %v", errors.New("illegal char"))
		Expect(e.Status).To(Equal(0))
		Expect(e.Error()).To(ContainSubstring("illegal char"))
	})

	It("renders just the status text when no wrapped error is present", func() {
		e := &herr.Error{Status: 404}
		Expect(e.Error()).To(Equal("http 404"))
	})
})
