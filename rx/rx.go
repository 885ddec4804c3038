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

// Package rx implements the receive-side parser: request/status line,
// headers, Range/conditional-request fields and chunked body framing. It
// never blocks; every parse step returns ok=false to signal "need more
// bytes" rather than waiting on I/O, so the caller's state machine can
// re-enter it on the next socket event.
package rx

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sunfirefox/http/auth"
	"github.com/sunfirefox/http/herr"
	"github.com/sunfirefox/http/limits"
	"github.com/sunfirefox/http/packet"
	"github.com/sunfirefox/http/uri"
)

// MethodFlag is a bitset over the recognised HTTP methods.
type MethodFlag uint16

const (
	MethodGet MethodFlag = 1 << iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodOptions
	MethodTrace
)

// ChunkState is where the chunk-framing state machine currently sits.
type ChunkState uint8

const (
	ChunkNone ChunkState = iota
	ChunkStart
	ChunkData
	ChunkEof
)

// RemainingUnbounded marks remainingContent as unknown/unbounded: an
// HTTP/1.0 body with no Content-Length, read until the connection closes.
const RemainingUnbounded = math.MaxInt64

// Range is one node of a Range: header's byte-range list. Start == -1 means
// "last N bytes"; End == -1 means "to end of resource".
type Range struct {
	Start int64
	End   int64
	Len   int64
}

// Rx is one inbound (or, client-side, one received response) message.
type Rx struct {
	Server bool // true when parsing a request line; false for a status line

	Method      string
	MethodFlags MethodFlag

	RawURI   string
	URI      uri.URI
	PathInfo string

	Status        int
	StatusMessage string

	HTTP10    bool
	KeepAlive bool

	Headers map[string][]string

	Length           int64 // -1 if unset
	RemainingContent int64
	ReceivedContent  int64
	NeedInputPipeline bool
	EOF              bool

	Chunked    bool
	ChunkState ChunkState

	MimeType string
	Form     bool

	Cookie string

	InputRange *Range
	Ranges     []*Range

	IfMatch     bool
	IfModified  bool
	HasIfHeader bool
	Since       time.Time
	ETags       []string

	AuthType      string
	AuthDetails   string
	AuthAlgorithm string
	AuthStale     string
	Challenge     auth.Challenge

	HostName string
	Referer  string
	UserAgent string
	Redirect string
	Pragma   string

	Connection string

	OmitBody bool
}

// New creates an empty Rx ready to receive a request (server=true) or a
// response (server=false), with Length set to the -1 "unset" sentinel and
// RemainingContent starting at 0.
func New(server bool) *Rx {
	return &Rx{
		Server:           server,
		Length:           -1,
		RemainingContent: 0,
		Headers:          make(map[string][]string),
		KeepAlive:        true,
	}
}

// cursor is the token-scanning primitive: it finds delim in the packet's
// unread bytes, returns the token before it, and advances the packet past
// the delimiter. ok is false if delim is absent, meaning the caller must
// wait for more bytes.
type cursor struct {
	p *packet.Packet
}

func (c *cursor) token(delim string) (string, bool) {
	buf := c.p.Bytes()
	idx := strings.Index(string(buf), delim)
	if idx < 0 {
		return "", false
	}
	tok := string(buf[:idx])
	c.p.Advance(idx + len(delim))
	return tok, true
}

// ParseRequestLine consumes "METHOD SP URI SP PROTO\r\n" from p. ok is false
// if the line is not yet fully buffered (need more bytes); err is non-nil on
// a malformed line once the full line is available.
func ParseRequestLine(rx *Rx, lim limits.HttpLimits, p *packet.Packet) (ok bool, err *herr.Error) {
	c := &cursor{p: p}

	method, found := c.token(" ")
	if !found {
		return false, nil
	}
	rawURI, found := c.token(" ")
	if !found {
		return false, nil
	}
	proto, found := c.token("\r\n")
	if !found {
		return false, nil
	}

	flag, known := methodFlags[method]
	if !known {
		return true, herr.Protocol(405, "unknown method %q", method)
	}
	rx.Method = method
	rx.MethodFlags = flag
	if flag == MethodPost || flag == MethodPut {
		rx.NeedInputPipeline = true
	}
	if flag == MethodHead || flag == MethodOptions || flag == MethodTrace {
		rx.OmitBody = true
	}

	if rawURI == "" {
		return true, herr.BadRequest("empty request URI")
	}
	if int64(len(rawURI)) >= lim.URISize {
		return true, herr.URLTooLarge("request URI exceeds configured limit")
	}

	switch proto {
	case "HTTP/1.0":
		rx.HTTP10 = true
		rx.KeepAlive = false
		if flag == MethodPost || flag == MethodPut {
			rx.RemainingContent = RemainingUnbounded
			rx.NeedInputPipeline = true
		}
	case "HTTP/1.1":
	default:
		return true, herr.Protocol(406, "unsupported protocol %q", proto)
	}

	rx.RawURI = rawURI
	parsed, perr := uri.Parse(rawURI)
	if perr != nil {
		return true, herr.BadRequest("malformed request uri: %v", perr)
	}
	rx.URI = parsed
	rx.PathInfo = parsed.PathInfo

	return true, nil
}

var methodFlags = map[string]MethodFlag{
	"GET":     MethodGet,
	"HEAD":    MethodHead,
	"POST":    MethodPost,
	"PUT":     MethodPut,
	"DELETE":  MethodDelete,
	"OPTIONS": MethodOptions,
	"TRACE":   MethodTrace,
}

// ParseStatusLine consumes "PROTO SP STATUS SP MESSAGE\r\n", client side.
func ParseStatusLine(rx *Rx, lim limits.HttpLimits, p *packet.Packet) (ok bool, err *herr.Error) {
	c := &cursor{p: p}

	proto, found := c.token(" ")
	if !found {
		return false, nil
	}
	status, found := c.token(" ")
	if !found {
		return false, nil
	}
	message, found := c.token("\r\n")
	if !found {
		return false, nil
	}

	switch proto {
	case "HTTP/1.0":
		rx.HTTP10 = true
		rx.KeepAlive = false
	case "HTTP/1.1":
	default:
		return true, herr.Protocol(406, "unsupported protocol %q", proto)
	}

	if status == "" {
		return true, herr.Protocol(406, "missing response status code")
	}
	code, cerr := strconv.Atoi(status)
	if cerr != nil {
		return true, herr.Protocol(406, "non-numeric response status code %q", status)
	}
	rx.Status = code

	if int64(len(message)) >= lim.URISize {
		return true, herr.URLTooLarge("response status message exceeds configured limit")
	}
	rx.StatusMessage = message
	return true, nil
}

// ParseHeaders consumes header lines and the terminating blank line,
// dispatching on each header's key; for a chunked message the blank line is
// left unconsumed. ok is false if the terminating blank line has not yet
// been buffered.
func ParseHeaders(rx *Rx, lim limits.HttpLimits, p *packet.Packet) (ok bool, err *herr.Error) {
	c := &cursor{p: p}
	count := 0

	for {
		if len(p.Bytes()) >= 2 && p.Bytes()[0] == '\r' && p.Bytes()[1] == '\n' {
			if !rx.Chunked {
				// For a chunked body this trailing CRLF is left in place: it
				// doubles as the delimiter GetChunkPacketSize expects before
				// the first chunk-size line.
				p.Advance(2)
			}
			break
		}

		if count >= lim.HeaderCount {
			return true, herr.BadRequest("too many headers")
		}

		key, found := c.token(":")
		if !found {
			return false, nil
		}
		if key == "" {
			return true, herr.BadRequest("bad header format: empty key")
		}
		value, found := c.token("\r\n")
		if !found {
			return false, nil
		}
		value = strings.TrimLeft(value, " \t")
		key = strings.ToLower(key)

		if strings.ContainsAny(key, "%<>/\\") {
			return true, herr.BadRequest("bad header key %q", key)
		}

		rx.Headers[key] = append(rx.Headers[key], value)
		count++

		if e := applyHeader(rx, lim, key, value); e != nil {
			return true, e
		}
	}

	if rx.RemainingContent == 0 {
		rx.EOF = true
	}
	return true, nil
}

func applyHeader(rx *Rx, lim limits.HttpLimits, key, value string) *herr.Error {
	switch key[0] {
	case 'a':
		switch key {
		case "authorization":
			parts := strings.SplitN(value, " ", 2)
			rx.AuthType = strings.ToLower(parts[0])
			if len(parts) == 2 {
				rx.AuthDetails = strings.TrimLeft(parts[1], " \t")
			}
		}

	case 'c':
		switch key {
		case "content-length":
			if rx.Length >= 0 {
				return herr.BadRequest("multiple content-length headers")
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return herr.BadRequest("bad content-length value %q", value)
			}
			if n >= lim.ReceiveBodySize {
				return herr.TooLarge("content-length %d exceeds limit %d", n, lim.ReceiveBodySize)
			}
			rx.Length = n
			if rx.Server || rx.Method != "HEAD" {
				rx.RemainingContent = n
				rx.NeedInputPipeline = true
			}

		case "content-range":
			r, ok := parseContentRange(value)
			if !ok {
				return herr.RangeNotSatisfiable("bad content-range header %q", value)
			}
			rx.InputRange = r

		case "content-type":
			rx.MimeType = value
			rx.Form = strings.Contains(value, "application/x-www-form-urlencoded")

		case "cookie":
			if rx.Cookie != "" {
				rx.Cookie += "; " + value
			} else {
				rx.Cookie = value
			}

		case "connection":
			rx.Connection = value
			switch strings.ToUpper(value) {
			case "CLOSE":
				rx.KeepAlive = false
			}
		}

	case 'h':
		if key == "host" {
			rx.HostName = value
		}

	case 'i':
		switch key {
		case "if-modified-since", "if-unmodified-since":
			v := value
			if i := strings.IndexByte(v, ';'); i >= 0 {
				v = v[:i]
			}
			if t, terr := http1Date(v); terr == nil {
				rx.Since = t
				rx.IfModified = key[3] == 'm'
				rx.HasIfHeader = true
			}

		case "if-match", "if-none-match":
			v := value
			if i := strings.IndexByte(v, ';'); i >= 0 {
				v = v[:i]
			}
			rx.IfMatch = key[3] == 'm'
			rx.HasIfHeader = true
			for _, w := range strings.FieldsFunc(v, func(r rune) bool { return r == ' ' || r == ',' }) {
				rx.ETags = append(rx.ETags, w)
			}

		case "if-range":
			v := value
			if i := strings.IndexByte(v, ';'); i >= 0 {
				v = v[:i]
			}
			rx.IfMatch = true
			rx.HasIfHeader = true
			for _, w := range strings.FieldsFunc(v, func(r rune) bool { return r == ' ' || r == ',' }) {
				rx.ETags = append(rx.ETags, w)
			}
		}

	case 'k':
		if key == "keep-alive" {
			// "Keep-Alive: timeout=N, max=1" - deliberately close one request
			// early so the client leads termination (relieves server TIME_WAIT).
			v := strings.TrimSpace(value)
			if len(v) > 2 && v[len(v)-1] == '1' && v[len(v)-2] == '=' &&
				(v[len(v)-3] == 'x' || v[len(v)-3] == 'X') {
				rx.KeepAlive = false
			}
		}

	case 'l':
		if key == "location" {
			rx.Redirect = value
		}

	case 'p':
		if key == "pragma" {
			rx.Pragma = value
		}

	case 'r':
		switch key {
		case "range":
			ranges, ok := parseRange(value)
			if !ok {
				return herr.RangeNotSatisfiable("bad range header %q", value)
			}
			rx.Ranges = ranges
		case "referer":
			rx.Referer = value
		}

	case 't':
		if key == "transfer-encoding" {
			if strings.ToLower(value) == "chunked" {
				rx.Chunked = true
				rx.ChunkState = ChunkStart
				rx.RemainingContent = RemainingUnbounded
				rx.NeedInputPipeline = true
			}
		}

	case 'u':
		if key == "user-agent" {
			rx.UserAgent = value
		}

	case 'w':
		if key == "www-authenticate" {
			parts := strings.SplitN(value, " ", 2)
			scheme := strings.ToLower(parts[0])
			rx.AuthType = scheme
			rest := ""
			if len(parts) == 2 {
				rest = parts[1]
			}
			challenge, cerr := auth.ParseChallenge(scheme, rest)
			if cerr != nil {
				return herr.BadRequest("bad authentication header: %v", cerr)
			}
			rx.Challenge = challenge
			rx.AuthAlgorithm = challenge.Algorithm
			rx.AuthStale = challenge.Stale
		}
	}
	return nil
}

func http1Date(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, strconvErr(s)
}

type dateErr string

func (e dateErr) Error() string { return "unparseable http date: " + string(e) }

func strconvErr(s string) error { return dateErr(s) }

// GetChunkPacketSize runs the chunk-framing state machine over the unread
// bytes of p. It returns the number of bytes now known to belong to the
// current chunk (0 if more input is needed), and advances p past the
// chunk-size line when one was consumed.
func GetChunkPacketSize(rx *Rx, p *packet.Packet) (need int64, err *herr.Error) {
	switch rx.ChunkState {
	case ChunkData:
		if rx.RemainingContent != 0 {
			return rx.RemainingContent, nil
		}
		rx.ChunkState = ChunkStart
		fallthrough

	case ChunkStart:
		buf := p.Bytes()
		if len(buf) < 3 {
			return 0, nil
		}
		if buf[0] != '\r' || buf[1] != '\n' {
			return 0, herr.BadRequest("bad chunk specification")
		}

		i := 2
		for i < len(buf) && buf[i] != '\n' {
			i++
		}
		if i >= len(buf) || i < 2 || buf[i-1] != '\r' || buf[i] != '\n' {
			if i > 80 {
				return 0, herr.BadRequest("bad chunk specification")
			}
			return 0, nil
		}

		sizeLine := string(buf[2 : i-1])
		size, serr := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if serr != nil {
			return 0, herr.BadRequest("bad chunk size %q", sizeLine)
		}

		consumed := i + 1
		if size == 0 && len(buf) >= consumed+2 && buf[consumed] == '\r' && buf[consumed+1] == '\n' {
			consumed += 2
		}

		p.Advance(consumed)
		rx.RemainingContent = size
		rx.ChunkState = ChunkData
		if size == 0 {
			rx.ChunkState = ChunkEof
			rx.EOF = true
		}
		return size, nil
	}
	return 0, nil
}

// FormatHeaders folds every received header back out as "Name-Word: value"
// lines, one per line, each '-'-separated word title-cased.
func FormatHeaders(rx *Rx) string {
	var b strings.Builder
	for key, values := range rx.Headers {
		b.WriteString(titleCase(key))
		b.WriteString(": ")
		b.WriteString(strings.Join(values, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func titleCase(key string) string {
	words := strings.Split(key, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "-")
}

// ContentNotModified combines the if-modified-since/if-unmodified-since and
// etag checks for a conditional GET, dropping any parsed ranges when the
// resource must be transferred in full.
func (rx *Rx) ContentNotModified(modified time.Time, etag string) bool {
	if !rx.HasIfHeader {
		return false
	}
	same := matchModified(rx, modified) && matchEtag(rx, etag)
	if len(rx.Ranges) > 0 && !same {
		rx.Ranges = nil
	}
	return same
}

func matchModified(rx *Rx, modified time.Time) bool {
	if rx.Since.IsZero() {
		return true
	}
	if rx.IfModified {
		return !modified.After(rx.Since)
	}
	return modified.After(rx.Since)
}

func matchEtag(rx *Rx, requestEtag string) bool {
	if len(rx.ETags) == 0 {
		return true
	}
	if requestEtag == "" {
		return false
	}
	for _, tag := range rx.ETags {
		if tag == requestEtag {
			return !rx.IfMatch
		}
	}
	return rx.IfMatch
}

// parseContentRange parses "bytes n1-n2/length" (POST/PUT Content-Range).
func parseContentRange(value string) (*Range, bool) {
	i := 0
	for i < len(value) && (value[i] < '0' || value[i] > '9') {
		i++
	}
	if i >= len(value) {
		return nil, false
	}
	rest := value[i:]

	dash := strings.IndexByte(rest, '-')
	if dash < 0 {
		return nil, false
	}
	start, serr := strconv.ParseInt(rest[:dash], 10, 64)
	if serr != nil {
		return nil, false
	}
	rest = rest[dash+1:]

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return nil, false
	}
	end, eerr := strconv.ParseInt(rest[:slash], 10, 64)
	if eerr != nil {
		return nil, false
	}
	size, sizerr := strconv.ParseInt(rest[slash+1:], 10, 64)
	if sizerr != nil {
		return nil, false
	}

	if start < 0 || end < 0 || size < 0 || end <= start {
		return nil, false
	}
	return &Range{Start: start, End: end, Len: end - start}, true
}

// parseRange parses "bytes=n1-n2,n3-n4,..." including the "-N" (last N
// bytes) and "N-" (skip first N bytes) shorthands, and validates the
// resulting list has no overlap and that an open-start range has no
// successor.
func parseRange(value string) ([]*Range, bool) {
	eq := strings.IndexByte(value, '=')
	if eq < 0 {
		return nil, false
	}
	body := value[eq+1:]
	if body == "" {
		return nil, false
	}

	var ranges []*Range
	for _, tok := range strings.Split(body, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, false
		}

		r := &Range{Start: -1, End: -1}
		dash := strings.IndexByte(tok, '-')
		if dash < 0 {
			return nil, false
		}

		if tok[0] != '-' {
			start, err := strconv.ParseInt(tok[:dash], 10, 64)
			if err != nil {
				return nil, false
			}
			r.Start = start
		}

		if dash+1 < len(tok) {
			end, err := strconv.ParseInt(tok[dash+1:], 10, 64)
			if err != nil {
				return nil, false
			}
			r.End = end + 1
		}

		if r.Start >= 0 && r.End >= 0 {
			r.Len = r.End - r.Start
		}
		ranges = append(ranges, r)
	}

	for i, r := range ranges {
		if r.Start == -1 && i != len(ranges)-1 {
			return nil, false
		}
		if i > 0 {
			prev := ranges[i-1]
			if prev.End >= 0 && r.Start >= 0 && r.Start < prev.End {
				return nil, false
			}
		}
	}
	return ranges, true
}
