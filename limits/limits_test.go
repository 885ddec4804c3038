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

package limits_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunfirefox/http/limits"
)

var _ = Describe("HttpLimits", func() {
	Describe("Default", func() {
		It("returns a self-consistent, already-valid set of limits", func() {
			l := limits.Default()
			Expect(l.Validate()).To(BeNil())
			Expect(l.HeaderSize).To(BeNumerically(">", 0))
			Expect(l.KeepAliveCount).To(Equal(100))
			Expect(l.SessionTimeout).To(Equal(10 * time.Minute))
		})
	})

	Describe("Validate", func() {
		It("rejects a zero HeaderSize", func() {
			l := limits.Default()
			l.HeaderSize = 0
			err := l.Validate()
			Expect(err).ToNot(BeNil())
		})

		It("rejects a zero HeaderCount", func() {
			l := limits.Default()
			l.HeaderCount = 0
			Expect(l.Validate()).ToNot(BeNil())
		})

		It("rejects a zero URISize", func() {
			l := limits.Default()
			l.URISize = 0
			Expect(l.Validate()).ToNot(BeNil())
		})

		It("rejects a zero ReceiveBodySize", func() {
			l := limits.Default()
			l.ReceiveBodySize = 0
			Expect(l.Validate()).ToNot(BeNil())
		})

		It("accepts a zero ChunkSize and TransmissionBodySize (gte=0)", func() {
			l := limits.Default()
			l.ChunkSize = 0
			l.TransmissionBodySize = 0
			Expect(l.Validate()).To(BeNil())
		})

		It("accepts a zero KeepAliveCount as disabling keep-alive", func() {
			l := limits.Default()
			l.KeepAliveCount = 0
			Expect(l.Validate()).To(BeNil())
		})
	})
})
