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

// Package uri normalises a raw request-line URI into scheme/host/path/ext/query
// parts plus a percent-decoded, dot-resolved pathInfo, the way rx hands a raw
// URI off before route matching.
package uri

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// URI is the normalised form of a request URI or an absolute-form client URI.
type URI struct {
	Scheme   string
	Host     string
	Path     string
	Ext      string
	Query    string
	PathInfo string
}

// Parse splits raw into its component parts and resolves "." / ".." segments
// in the path, producing PathInfo. raw may be origin-form ("/a/b?q") or
// absolute-form ("http://host/a/b?q"); both are accepted since the parser
// hands either shape through depending on whether the peer is a proxy client.
func Parse(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, err
	}

	host := u.Host
	if host != "" {
		if ascii, herr := idna.Lookup.ToASCII(host); herr == nil {
			host = ascii
		}
	}

	path := resolveDotSegments(u.Path)

	return URI{
		Scheme:   u.Scheme,
		Host:     host,
		Path:     path,
		Ext:      ext(path),
		Query:    u.RawQuery,
		PathInfo: path,
	}, nil
}

// Normalize re-derives the normalised string form of a URI, idempotent: calling
// Parse on its own output reproduces it exactly.
func (u URI) Normalize() string {
	var b strings.Builder
	if u.Scheme != "" && u.Host != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
		b.WriteString(u.Host)
	}
	if u.Path == "" {
		b.WriteString("/")
	} else {
		b.WriteString((&url.URL{Path: u.Path}).EscapedPath())
	}
	if u.Query != "" {
		b.WriteString("?")
		b.WriteString(u.Query)
	}
	return b.String()
}

func ext(path string) string {
	i := strings.LastIndexByte(path, '/')
	name := path
	if i >= 0 {
		name = path[i+1:]
	}
	j := strings.LastIndexByte(name, '.')
	if j < 0 {
		return ""
	}
	return name[j+1:]
}

// resolveDotSegments removes "." and ".." path segments the way a browser or
// proxy would before handing the path to the route matcher, without escaping
// above the root (a leading ".." is dropped rather than walking past "/").
func resolveDotSegments(path string) string {
	if path == "" {
		return "/"
	}

	absolute := strings.HasPrefix(path, "/")
	trailingSlash := strings.HasSuffix(path, "/") && path != "/"

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))

	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	result := strings.Join(out, "/")
	if absolute {
		result = "/" + result
	}
	if trailingSlash && !strings.HasSuffix(result, "/") {
		result += "/"
	}
	if result == "" {
		result = "/"
	}
	return result
}
