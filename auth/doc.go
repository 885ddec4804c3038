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
//
// # Server side: Basic credentials
//
// ParseBasic decodes an Authorization: basic payload into a
// BasicCredentials. LoginChallenge and SetBasicHeader build, respectively,
// the WWW-Authenticate challenge a server sends to demand credentials and
// the Authorization header value a client sends in response.
//
// # Client side: parsed challenges
//
// ParseChallenge tokenises a WWW-Authenticate header value into a Challenge,
// enforcing the field combinations RFC 7235/7616 require: a basic challenge
// needs only realm, a digest challenge needs realm and nonce, and one that
// advertises qop additionally needs domain, opaque, algorithm and stale. A
// connection acting as a client retains the most recent Challenge it parsed
// and resets its nonce-use counter every time a new nonce arrives, so a
// subsequent request on the same connection can compute a fresh digest
// response without re-requesting the challenge.
package auth
