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

package auth_test

import (
	"encoding/base64"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunfirefox/http/auth"
)

var _ = Describe("Basic auth", func() {
	Describe("ParseBasic", func() {
		It("decodes a user:pass payload", func() {
			payload := base64.StdEncoding.EncodeToString([]byte("alice:secret"))
			creds, err := auth.ParseBasic(payload)
			Expect(err).To(BeNil())
			Expect(creds.Username).To(Equal("alice"))
			Expect(creds.Password).To(Equal("secret"))
		})

		It("accepts a username with no password", func() {
			payload := base64.StdEncoding.EncodeToString([]byte("alice"))
			creds, err := auth.ParseBasic(payload)
			Expect(err).To(BeNil())
			Expect(creds.Username).To(Equal("alice"))
			Expect(creds.Password).To(Equal(""))
		})

		It("yields no credentials for an empty payload", func() {
			creds, err := auth.ParseBasic("")
			Expect(err).To(BeNil())
			Expect(creds).To(Equal(auth.BasicCredentials{}))
		})

		It("rejects a payload that is not valid base64", func() {
			_, err := auth.ParseBasic("not-base64-!!!")
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("LoginChallenge", func() {
		It("quotes the realm", func() {
			Expect(auth.LoginChallenge("example")).To(Equal(`Basic realm="example"`))
		})
	})

	Describe("SetBasicHeader", func() {
		It("base64-encodes user:pass", func() {
			header := auth.SetBasicHeader("alice", "secret")
			Expect(header).To(HavePrefix("basic "))
			decoded, err := base64.StdEncoding.DecodeString(header[len("basic "):])
			Expect(err).ToNot(HaveOccurred())
			Expect(string(decoded)).To(Equal("alice:secret"))
		})
	})
})

var _ = Describe("ParseChallenge", func() {
	It("accepts a basic challenge with a realm", func() {
		c, err := auth.ParseChallenge("basic", `realm="example"`)
		Expect(err).To(BeNil())
		Expect(c.Scheme).To(Equal("basic"))
		Expect(c.Realm).To(Equal("example"))
	})

	It("rejects a basic challenge with no realm", func() {
		_, err := auth.ParseChallenge("basic", "")
		Expect(err).ToNot(BeNil())
	})

	It("accepts a digest challenge with realm and nonce", func() {
		c, err := auth.ParseChallenge("digest", `realm="example", nonce="abc123"`)
		Expect(err).To(BeNil())
		Expect(c.Realm).To(Equal("example"))
		Expect(c.Nonce).To(Equal("abc123"))
	})

	It("rejects a digest challenge missing nonce", func() {
		_, err := auth.ParseChallenge("digest", `realm="example"`)
		Expect(err).ToNot(BeNil())
	})

	It("requires domain/opaque/algorithm/stale when qop is present", func() {
		_, err := auth.ParseChallenge("digest", `realm="example", nonce="abc123", qop="auth"`)
		Expect(err).ToNot(BeNil())
	})

	It("accepts a full qop-bearing digest challenge with every field populated", func() {
		c, err := auth.ParseChallenge("digest",
			`realm="example", domain="/", nonce="abc123", opaque="xyz", qop="auth", algorithm="MD5", stale="false"`)
		Expect(err).To(BeNil())
		Expect(c.Realm).To(Equal("example"))
		Expect(c.Domain).To(Equal("/"))
		Expect(c.Nonce).To(Equal("abc123"))
		Expect(c.Opaque).To(Equal("xyz"))
		Expect(c.Qop).To(Equal("auth"))
		Expect(c.Algorithm).To(Equal("MD5"))
		Expect(c.Stale).To(Equal("false"))
	})

	It("fails when opaque is removed from an otherwise full qop-bearing challenge", func() {
		_, err := auth.ParseChallenge("digest",
			`realm="example", domain="/", nonce="abc123", qop="auth", algorithm="MD5", stale="false"`)
		Expect(err).ToNot(BeNil())
	})

	It("unescapes backslash-escaped characters inside a quoted value", func() {
		c, err := auth.ParseChallenge("basic", `realm="a\"b"`)
		Expect(err).To(BeNil())
		Expect(c.Realm).To(Equal(`a"b`))
	})
})
