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

// Package auth parses and generates the Basic and Digest authentication
// headers exercised while the receive parser reads Authorization and
// WWW-Authenticate.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sunfirefox/http/herr"
)

// BasicCredentials holds a decoded client Authorization: basic header.
type BasicCredentials struct {
	Username string
	Password string
}

// ParseBasic decodes a base64 "user:pass" authDetails value, the server side
// of Basic auth. An empty authDetails is not an error; it simply yields no
// credentials.
func ParseBasic(authDetails string) (BasicCredentials, *herr.Error) {
	if authDetails == "" {
		return BasicCredentials{}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(authDetails)
	if err != nil {
		return BasicCredentials{}, herr.BadFormat("basic auth payload is not valid base64: %v", err)
	}

	s := string(decoded)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return BasicCredentials{Username: s[:i], Password: s[i+1:]}, nil
	}
	return BasicCredentials{Username: s}, nil
}

// LoginChallenge builds the WWW-Authenticate header value a server sends to
// demand Basic credentials.
func LoginChallenge(realm string) string {
	return fmt.Sprintf("Basic realm=%q", realm)
}

// SetBasicHeader builds the client-side Authorization header value for Basic
// auth.
func SetBasicHeader(username, password string) string {
	raw := username + ":" + password
	return "basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// Challenge is a parsed WWW-Authenticate challenge, client side. Scheme is
// "basic" or "digest"; the digest fields are only populated for a digest
// challenge.
type Challenge struct {
	Scheme    string
	Realm     string
	Domain    string
	Nonce     string
	Opaque    string
	Qop       string
	Algorithm string
	Stale     string
}

// ParseChallenge tokenises a WWW-Authenticate header value into a Challenge,
// validating the required fields per scheme: basic needs only realm; digest
// needs realm+nonce, and additionally domain+opaque+algorithm+stale whenever
// qop is present.
func ParseChallenge(scheme, authDetails string) (Challenge, *herr.Error) {
	c := Challenge{Scheme: strings.ToLower(scheme)}

	buf := authDetails
	for len(buf) > 0 {
		buf = strings.TrimLeft(buf, " \t")
		if buf == "" {
			break
		}

		i := 0
		for i < len(buf) && buf[i] != '=' && buf[i] != ',' && buf[i] != ' ' && buf[i] != '\t' {
			i++
		}
		key := buf[:i]
		buf = buf[i:]
		buf = strings.TrimLeft(buf, " \t")

		if len(buf) == 0 || buf[0] != '=' {
			// malformed pair with no value; skip to next comma.
			if j := strings.IndexByte(buf, ','); j >= 0 {
				buf = buf[j+1:]
				continue
			}
			break
		}
		buf = buf[1:]
		buf = strings.TrimLeft(buf, " \t")

		var value string
		if len(buf) > 0 && buf[0] == '"' {
			buf = buf[1:]
			end := indexUnescapedQuote(buf)
			if end < 0 {
				value = unescape(buf)
				buf = ""
			} else {
				value = unescape(buf[:end])
				buf = buf[end+1:]
				if j := strings.IndexByte(buf, ','); j >= 0 {
					buf = buf[j+1:]
				} else {
					buf = ""
				}
			}
		} else {
			j := strings.IndexByte(buf, ',')
			if j < 0 {
				value = strings.TrimSpace(buf)
				buf = ""
			} else {
				value = strings.TrimSpace(buf[:j])
				buf = buf[j+1:]
			}
		}

		applyField(&c, key, value)
	}

	if c.Scheme == "basic" {
		if c.Realm == "" {
			return c, herr.Unauthorized("basic challenge is missing realm")
		}
		return c, nil
	}

	if c.Realm == "" || c.Nonce == "" {
		return c, herr.Unauthorized("digest challenge is missing realm or nonce")
	}
	if c.Qop != "" {
		if c.Domain == "" || c.Opaque == "" || c.Algorithm == "" || c.Stale == "" {
			return c, herr.Unauthorized("digest challenge with qop is missing domain, opaque, algorithm or stale")
		}
	}
	return c, nil
}

func applyField(c *Challenge, key, value string) {
	switch strings.ToLower(key) {
	case "algorithm":
		c.Algorithm = value
	case "domain":
		c.Domain = value
	case "nonce":
		c.Nonce = value
	case "opaque":
		c.Opaque = value
	case "qop":
		c.Qop = value
	case "realm":
		c.Realm = value
	case "stale":
		c.Stale = value
	}
}

// indexUnescapedQuote finds the closing '"' of a quoted-string value, skipping
// any backslash-escaped quote along the way.
func indexUnescapedQuote(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unescape reverses the backslash-escaping a quoted-string value may carry.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
