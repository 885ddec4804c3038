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

// Package engine provides the top-level wiring an embedder holds: it creates
// endpoints and hosts, owns the live connection set, and coordinates start/stop
// of every endpoint as one unit.
package engine

import (
	"context"
	"fmt"
	"net"
	"sync"

	libctx "github.com/nabbar/golib/context"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	"golang.org/x/sync/errgroup"

	"github.com/sunfirefox/http/conn"
	"github.com/sunfirefox/http/endpoint"
	"github.com/sunfirefox/http/host"
	"github.com/sunfirefox/http/limits"
)

const (
	ErrorAlreadyRunning liberr.CodeError = iota + liberr.MinPkgHttpServer + 300
	ErrorStartFailed
	ErrorNotRunning
)

func init() {
	liberr.RegisterIdFctMessage(ErrorAlreadyRunning, message)
}

func message(code liberr.CodeError) string {
	switch code {
	case ErrorAlreadyRunning:
		return "engine is already running"
	case ErrorStartFailed:
		return "one or more endpoints failed to start"
	case ErrorNotRunning:
		return "engine is not running"
	}
	return ""
}

// settingsKey indexes the per-engine state bag held in libctx.Config.
type settingsKey string

const keyDefaultLimits settingsKey = "default-limits"

// Engine owns every endpoint and the connections they accept, coordinating
// their lifecycle as one unit.
type Engine struct {
	mu sync.Mutex

	cfg libctx.Config[settingsKey]
	log liblog.FuncLog

	endpoints *endpoint.Registry
	eps       []*endpoint.Endpoint

	conns   map[string]*trackedConn
	running bool

	cancel context.CancelFunc
	group  *errgroup.Group
}

// trackedConn pairs a Conn with the socket it was accepted on, so the engine
// can drain or close it without the conn package needing to know about net.Conn.
type trackedConn struct {
	conn   *conn.Conn
	socket net.Conn
}

// New creates an idle Engine. log may be nil; callers relying on logging
// should inject a real liblog.FuncLog.
func New(log liblog.FuncLog) *Engine {
	e := &Engine{
		cfg:       libctx.New[settingsKey](context.Background()),
		log:       log,
		endpoints: endpoint.NewRegistry(),
		conns:     make(map[string]*trackedConn),
	}
	return e
}

// SetDefaultLimits stores the HttpLimits new endpoints should inherit unless
// given their own.
func (e *Engine) SetDefaultLimits(lim limits.HttpLimits) {
	e.cfg.Store(keyDefaultLimits, lim)
}

// DefaultLimits returns the engine-wide default limits, or the package
// default if none was set.
func (e *Engine) DefaultLimits() limits.HttpLimits {
	if v, ok := e.cfg.Load(keyDefaultLimits); ok {
		if lim, ok := v.(limits.HttpLimits); ok {
			return lim
		}
	}
	return limits.Default()
}

// AddEndpoint creates, registers and returns a new Endpoint bound to
// (ip, port), using *lim if lim is non-nil or the engine's default limits
// otherwise. The caller still owns calling Start.
func (e *Engine) AddEndpoint(ip string, port int, lim *limits.HttpLimits) *endpoint.Endpoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	use := e.DefaultLimits()
	if lim != nil {
		use = *lim
	}

	ep := endpoint.Create(ip, port, use, e.log)
	e.endpoints.Register(ep)
	e.eps = append(e.eps, ep)
	return ep
}

// AddHost creates, attaches and returns a new Host on ep.
func (e *Engine) AddHost(ep *endpoint.Endpoint, name string) *host.Host {
	h := host.New()
	h.Name = name
	ep.AddHost(h)
	return h
}

// Endpoints exposes the underlying endpoint registry, e.g. for
// SecureEndpointByName calls that need the real certificates.TLSConfig type.
func (e *Engine) Endpoints() *endpoint.Registry {
	return e.endpoints
}

// Start binds and begins accepting on every registered endpoint concurrently,
// using errgroup so a single failing bind aborts the whole startup and every
// endpoint that did bind is stopped again.
func (e *Engine) Start(ctx context.Context) liberr.Error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrorAlreadyRunning.Error(fmt.Errorf("engine already has %d endpoint(s) running", len(e.eps)))
	}
	runCtx, cancel := context.WithCancel(ctx)
	grp, grpCtx := errgroup.WithContext(runCtx)
	eps := make([]*endpoint.Endpoint, len(e.eps))
	copy(eps, e.eps)
	e.mu.Unlock()

	for _, ep := range eps {
		ep := ep
		ep.Async = true
		ep.SetNotifier(e.onAccept)
		grp.Go(func() error {
			return ep.Start(grpCtx)
		})
	}

	if err := grp.Wait(); err != nil {
		for _, ep := range eps {
			ep.Stop()
		}
		cancel()
		return ErrorStartFailed.Error(err)
	}

	e.mu.Lock()
	e.running = true
	e.cancel = cancel
	e.group = grp
	e.mu.Unlock()
	return nil
}

// Stop closes every endpoint's listening socket and marks the engine idle.
// It can be Started again afterwards.
func (e *Engine) Stop() liberr.Error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrorNotRunning.Error(nil)
	}
	eps := make([]*endpoint.Endpoint, len(e.eps))
	copy(eps, e.eps)
	cancel := e.cancel
	e.running = false
	e.mu.Unlock()

	for _, ep := range eps {
		ep.Stop()
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// onAccept is the endpoint.Notifier wired to every endpoint: it allocates a
// Conn for the accepted socket and records it; no read loop is started. The wire transfer
// itself (reading conn.Read into Conn.Feed, writing responses back) is the
// embedder's responsibility; the engine only tracks the Conn's lifetime so
// Connections()/Forget can observe and drain it.
func (e *Engine) onAccept(nc net.Conn, ep *endpoint.Endpoint) {
	c := conn.New(true, ep.Limits, nil, e.log)

	e.mu.Lock()
	e.conns[c.ID] = &trackedConn{conn: c, socket: nc}
	e.mu.Unlock()
}

// Connections returns the ids of every connection currently tracked by the
// engine.
func (e *Engine) Connections() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.conns))
	for id := range e.conns {
		out = append(out, id)
	}
	return out
}

// Forget drops a connection from the engine's tracked set once it has
// finished (socket closed, no keep-alive left).
func (e *Engine) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.conns, id)
}
