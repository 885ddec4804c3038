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

// Package dispatcher implements the minimal per-connection event queue that
// re-enters a connection's driver loop on every readable/writable socket
// event, the Go stand-in for the event-loop dispatcher the parser assumes.
package dispatcher

import (
	"sync"
)

// Event is one readable/writable/timeout notification for a connection.
type Event uint8

const (
	EventReadable Event = iota
	EventWritable
	EventTimeout
)

// Handler re-enters a connection's state machine in response to an Event.
type Handler func(Event)

// Dispatcher serialises event handling for one connection: events queue up
// and are run one at a time on a single goroutine, so the handler (typically
// Conn.Process) never needs its own locking.
type Dispatcher struct {
	mu      sync.Mutex
	queue   []Event
	running bool
	handler Handler
}

// New creates a Dispatcher that invokes handler for each queued Event.
func New(handler Handler) *Dispatcher {
	return &Dispatcher{handler: handler}
}

// Queue enqueues an event and, if no drain loop is already running, starts
// one. Queue never blocks the caller.
func (d *Dispatcher) Queue(e Event) {
	d.mu.Lock()
	d.queue = append(d.queue, e)
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	go d.drain()
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		e := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.handler(e)
	}
}

// Pending reports the current queue depth, useful for backpressure checks
// on the connection that owns this dispatcher.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
