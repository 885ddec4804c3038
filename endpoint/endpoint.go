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

// Package endpoint implements the listening-address acceptor: one Endpoint
// per bound (ip, port), owning a host registry, accepting connections with
// TCP_NODELAY set, and dispatching each accepted socket to a notifier.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"syscall"

	tlscfg "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/sunfirefox/http/host"
	"github.com/sunfirefox/http/limits"
)

const (
	ErrorCannotOpen liberr.CodeError = iota + liberr.MinPkgHttpServer + 200
	ErrorBadState
	ErrorCannotFind
)

func init() {
	liberr.RegisterIdFctMessage(ErrorCannotOpen, message)
}

func message(code liberr.CodeError) string {
	switch code {
	case ErrorCannotOpen:
		return "cannot open listening socket"
	case ErrorBadState:
		return "endpoint is not in a valid state for this operation"
	case ErrorCannotFind:
		return "no endpoint matched the given address pattern"
	}
	return ""
}

// Notifier is invoked once per accepted connection, already TCP_NODELAY'd.
type Notifier func(conn net.Conn, ep *Endpoint)

// Endpoint represents one listening address.
type Endpoint struct {
	mu sync.Mutex

	IP   string
	Port int

	Async  bool
	Named  bool
	Limits limits.HttpLimits

	TLS tlscfg.TLSConfig

	hosts    *host.Registry
	listener net.Listener

	notifier Notifier
	context  interface{}
	log      liblog.FuncLog
}

// Create allocates a stopped Endpoint bound to (ip, port). An empty ip means
// "all interfaces".
func Create(ip string, port int, lim limits.HttpLimits, log liblog.FuncLog) *Endpoint {
	return &Endpoint{
		IP:     ip,
		Port:   port,
		Limits: lim,
		hosts:  host.NewRegistry(),
		log:    log,
	}
}

// AddHost registers h on this endpoint.
func (e *Endpoint) AddHost(h *host.Host) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hosts.Add(h)
}

// SetHasNamedVirtualHosts toggles name-based vhost dispatch.
func (e *Endpoint) SetHasNamedVirtualHosts(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Named = on
	e.hosts.SetHasNamedVirtualHosts(on)
}

// HasNamedVirtualHosts reports the current vhost-dispatch mode.
func (e *Endpoint) HasNamedVirtualHosts() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Named
}

// MatchHost resolves a request Host header to a virtual host: exact/wildcard
// lookup when named vhosts are enabled, otherwise the first registered host.
// found=false means "no host matched"; the caller should still use the
// returned host (if non-nil) to render a 404.
func (e *Endpoint) MatchHost(requestHost string) (h *host.Host, found bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hosts.Match(requestHost)
}

// SetNotifier installs the per-accept callback.
func (e *Endpoint) SetNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = n
}

// SetContext/GetContext store an embedder-opaque value on the endpoint.
func (e *Endpoint) SetContext(ctx interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.context = ctx
}

func (e *Endpoint) GetContext() interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.context
}

func (e *Endpoint) validate() liberr.Error {
	if e.hosts == nil {
		return ErrorBadState.Error(errors.New("missing host registry on endpoint"))
	}
	if !e.hosts.HasHosts() {
		return ErrorBadState.Error(errors.New("endpoint has no host bound"))
	}
	return nil
}

// Start validates, binds the listening socket with TCP_NODELAY, and if Async
// begins accepting in a background goroutine that invokes the notifier per
// connection. EADDRINUSE is reported as a distinct error so callers can tell
// a bind conflict apart from other listen failures.
func (e *Endpoint) Start(ctx context.Context) liberr.Error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if verr := e.validate(); verr != nil {
		return verr
	}

	addr := net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return ErrorCannotOpen.Error(fmt.Errorf("socket already bound on %s", addr))
		}
		return ErrorCannotOpen.Error(err)
	}
	e.listener = ln

	if e.Async {
		go e.acceptLoop()
	}
	return nil
}

func (e *Endpoint) acceptLoop() {
	for {
		e.mu.Lock()
		ln := e.listener
		e.mu.Unlock()
		if ln == nil {
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}

		e.mu.Lock()
		n := e.notifier
		e.mu.Unlock()
		if n != nil {
			go n(conn, e)
		} else {
			_ = conn.Close()
		}
	}
}

// Stop closes the listening socket; it can be Started again afterwards.
func (e *Endpoint) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener != nil {
		_ = e.listener.Close()
		e.listener = nil
	}
}

// Secure installs a TLS configuration on this endpoint.
func (e *Endpoint) Secure(cfg tlscfg.TLSConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.TLS = cfg
}

// Registry tracks every created Endpoint so SecureEndpointByName and
// configuration-by-pattern lookups can reach them by (ip, port).
type Registry struct {
	mu        sync.RWMutex
	endpoints []*Endpoint
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds ep to the registry.
func (r *Registry) Register(ep *Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, ep)
}

// SecureEndpointByName applies cfg to every registered endpoint whose
// (ip, port) matches pattern "ip:port"; an empty ip segment, or an empty
// pattern entirely, acts as a wildcard on that segment.
// Returns ErrorCannotFind if nothing matched.
func (r *Registry) SecureEndpointByName(pattern string, cfg tlscfg.TLSConfig) liberr.Error {
	patIP, patPort := splitAddr(pattern)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := 0
	for _, ep := range r.endpoints {
		if patIP != "" && patIP != ep.IP {
			continue
		}
		if patPort != "" && patPort != strconv.Itoa(ep.Port) {
			continue
		}
		ep.Secure(cfg)
		matched++
	}
	if matched == 0 {
		return ErrorCannotFind.Error(fmt.Errorf("no endpoint matched pattern %q", pattern))
	}
	return nil
}

func splitAddr(pattern string) (ip, port string) {
	if pattern == "" {
		return "", ""
	}
	if i := strings.LastIndexByte(pattern, ':'); i >= 0 {
		return pattern[:i], pattern[i+1:]
	}
	return pattern, ""
}
