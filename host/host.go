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

// Package host implements the virtual host registry: Host, Route, route
// insertion ordering and the MIME/uri-prefix streaming policy gate that
// decides whether a body is streamed or buffered to the handler.
package host

import (
	"strings"
	"sync"
)

// Route is a matching rule plus an opaque terminal handler binding. The core
// treats it as opaque beyond pattern/startSegment/nextGroup bookkeeping.
type Route struct {
	Name         string
	Pattern      string
	StartSegment string
	NextGroup    int
	Handler      interface{}
}

// Host is one logical virtual host. Routes and the streaming policy map are
// shared copy-on-write with a parent when this Host was created by Clone.
type Host struct {
	mu sync.RWMutex

	Name     string
	IP       string
	Port     int
	Protocol string

	parent *Host

	routes       []*Route
	defaultRoute *Route
	streams      map[string]streamRule

	secureEndpoint  interface{}
	defaultEndpoint interface{}
}

type streamRule struct {
	uriPrefix string
	enabled   bool
}

// New creates a fresh Host with its own route list and the form/json
// streaming defaults pre-seeded as buffered (not streamed).
func New() *Host {
	h := &Host{
		Protocol: "HTTP/1.1",
		streams:  make(map[string]streamRule),
	}
	h.SetStreaming("application/x-www-form-urlencoded", "", false)
	h.SetStreaming("application/json", "", false)
	return h
}

// Clone creates a virtual-host child of parent: routes and the streaming map
// are shared by reference until the first write (copy-on-write). Name, IP
// and Port are NOT inherited; the caller sets them.
func (parent *Host) Clone() *Host {
	parent.mu.RLock()
	defer parent.mu.RUnlock()

	return &Host{
		parent:   parent,
		Protocol: parent.Protocol,
		routes:   parent.routes,
		streams:  parent.streams,
	}
}

// cow detaches this host's route slice from its parent's before a mutation,
// copying each Route as well, so appending to a cloned host's routes (and the
// NextGroup fix-ups that follow) never mutates the parent's list or routes.
func (h *Host) cow() {
	if h.parent != nil && routesShareBacking(h.routes, h.parent.routes) {
		cp := make([]*Route, len(h.parent.routes))
		for i, r := range h.parent.routes {
			rc := *r
			cp[i] = &rc
		}
		h.routes = cp
	}
}

func routesShareBacking(a, b []*Route) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return &a[0] == &b[0]
}

// AddRoute inserts route, keeping any existing empty-pattern default route
// last, then walks backwards fixing up NextGroup links so a run of routes
// sharing StartSegment all point at the first route of the next differing
// group.
func (h *Host) AddRoute(route *Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cow()

	pos := len(h.routes)
	if route.Pattern != "" && pos > 0 && h.routes[pos-1].Pattern == "" {
		pos = pos - 1
		h.routes = append(h.routes, nil)
		copy(h.routes[pos+1:], h.routes[pos:])
		h.routes[pos] = route
	} else {
		h.routes = append(h.routes, route)
	}

	if pos > 0 {
		prev := h.routes[pos-1]
		if prev.StartSegment != route.StartSegment {
			prev.NextGroup = pos
			for i := pos - 2; i >= 0; i-- {
				if h.routes[i].StartSegment == prev.StartSegment {
					h.routes[i].NextGroup = pos
				} else {
					break
				}
			}
		}
	}
}

// Routes returns the host's routes in match order.
func (h *Host) Routes() []*Route {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Route, len(h.routes))
	copy(out, h.routes)
	return out
}

// LookupRoute finds a route by name; "" maps to "default".
func (h *Host) LookupRoute(name string) *Route {
	if name == "" {
		name = "default"
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.routes {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// LookupRouteByPattern finds a route by pattern; "/" and "^/" normalise to
// the empty (default-route) pattern.
func (h *Host) LookupRouteByPattern(pattern string) *Route {
	if pattern == "/" || pattern == "^/" || pattern == "^/$" {
		pattern = ""
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.routes {
		if r.Pattern == pattern {
			return r
		}
	}
	return nil
}

// ResetRoutes discards all routes on this host (does not affect a parent's).
func (h *Host) ResetRoutes() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = nil
}

// DefaultRoute returns the host's configured default (empty-pattern) route.
func (h *Host) DefaultRoute() *Route {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultRoute
}

// SetDefaultRoute records the host's default route.
func (h *Host) SetDefaultRoute(r *Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultRoute = r
}

// SetSecureEndpoint/SetDefaultEndpoint record the endpoint(s) this host is
// reachable through; opaque to host beyond storage (endpoint owns the type).
func (h *Host) SetSecureEndpoint(ep interface{})  { h.mu.Lock(); h.secureEndpoint = ep; h.mu.Unlock() }
func (h *Host) SetDefaultEndpoint(ep interface{}) { h.mu.Lock(); h.defaultEndpoint = ep; h.mu.Unlock() }

// GetStreaming reports whether bodies of the given MIME type under uriPath
// should be streamed to the handler rather than buffered, per the
// MIME-prefix -> uri-prefix-gate -> enabled-bool policy map. Defaults to
// true (stream) when no rule matches.
func (h *Host) GetStreaming(mime, uriPath string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if rule, ok := h.streams[mime]; ok {
		if rule.uriPrefix == "" || strings.HasPrefix(uriPath, rule.uriPrefix) {
			return rule.enabled
		}
	}
	return true
}

// SetStreaming installs a streaming policy rule for a MIME type, optionally
// gated to uriPrefix.
func (h *Host) SetStreaming(mime, uriPrefix string, enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streams == nil {
		h.streams = make(map[string]streamRule)
	} else if h.parent != nil {
		// a clone never writes into a map it may still share with its parent
		cp := make(map[string]streamRule, len(h.streams)+1)
		for k, v := range h.streams {
			cp[k] = v
		}
		h.streams = cp
	}
	h.streams[mime] = streamRule{uriPrefix: uriPrefix, enabled: enabled}
}

// Registry holds the set of hosts known to an endpoint and resolves an
// incoming request's Host header to one of them.
type Registry struct {
	mu              sync.RWMutex
	hosts           []*Host
	named           map[string]*Host
	wildcardSuffix  map[string]*Host
	hasWildcardStar bool
	starHost        *Host
	namedVhosts     bool
}

// NewRegistry creates an empty host registry.
func NewRegistry() *Registry {
	return &Registry{
		named:          make(map[string]*Host),
		wildcardSuffix: make(map[string]*Host),
	}
}

// SetHasNamedVirtualHosts toggles name-based virtual hosting for this
// registry's endpoint.
func (r *Registry) SetHasNamedVirtualHosts(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namedVhosts = on
}

// Add registers h under its Name, classifying bare "*" and "*suffix" wildcard
// forms for the lookup precedence Match uses.
func (r *Registry) Add(h *Host) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hosts = append(r.hosts, h)
	switch {
	case h.Name == "*":
		r.hasWildcardStar = true
		r.starHost = h
	case strings.HasPrefix(h.Name, "*"):
		r.wildcardSuffix[h.Name[1:]] = h
	case h.Name != "":
		r.named[h.Name] = h
	}
}

// Len reports how many hosts are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hosts)
}

// HasHosts reports whether at least one host is registered.
func (r *Registry) HasHosts() bool {
	return r.Len() > 0
}

// Match resolves requestHost to a Host using exact name match first, then
// "*suffix" substring match, then a bare "*" wildcard. found is false (404)
// when nothing matches; the first registered host is still returned then so
// error rendering has context. An empty registry yields (nil, false) in
// either vhost mode.
func (r *Registry) Match(requestHost string) (h *Host, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.hosts) == 0 {
		return nil, false
	}
	if !r.namedVhosts {
		return r.hosts[0], true
	}

	if exact, ok := r.named[requestHost]; ok {
		return exact, true
	}
	for suffix, host := range r.wildcardSuffix {
		if strings.Contains(requestHost, suffix) {
			return host, true
		}
	}
	if r.hasWildcardStar {
		return r.starHost, true
	}
	return r.hosts[0], false
}
