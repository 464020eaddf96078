// go-xmodem
// Copyright (c) 2026 The RetroLink Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-xmodem.
//
// go-xmodem is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-xmodem is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-xmodem; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package xmodem

import (
	"sync"
	"time"
)

// MockTransport is a scripted transport for unit-testing the state
// machines: reads are served from a queued script, writes are recorded.
// An empty read queue behaves like a silent line and returns
// ErrTransportTimeout.
type MockTransport struct {
	mu      sync.Mutex
	reads   []mockRead
	writes  [][]byte
	timeout time.Duration
	closed  bool
}

type mockRead struct {
	err  error
	data []byte
}

// NewMockTransport creates an empty mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{timeout: time.Second}
}

// QueueRead appends bytes to the read script. Consecutive calls produce
// separate reads, so partial-frame delivery can be simulated.
func (m *MockTransport) QueueRead(data ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, mockRead{data: data})
}

// QueueReadError appends an error to the read script.
func (m *MockTransport) QueueReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, mockRead{err: err})
}

// Read pops from the read script.
func (m *MockTransport) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}
	if len(m.reads) == 0 {
		return 0, ErrTransportTimeout
	}

	head := m.reads[0]
	if head.err != nil {
		m.reads = m.reads[1:]
		return 0, head.err
	}
	n := copy(p, head.data)
	if n < len(head.data) {
		m.reads[0].data = head.data[n:]
	} else {
		m.reads = m.reads[1:]
	}
	return n, nil
}

// Write records the written bytes.
func (m *MockTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p), nil
}

// Writes returns every recorded Write call in order.
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// WrittenBytes returns all written bytes flattened into one slice.
func (m *MockTransport) WrittenBytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, w := range m.writes {
		out = append(out, w...)
	}
	return out
}

// SetTimeout records the requested deadline; the mock never blocks.
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected reports whether Close was called.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// PipeTransport is one endpoint of an in-memory duplex channel, used by
// the end-to-end tests to run a real Sender against a real Receiver.
type PipeTransport struct {
	recv <-chan byte
	send chan<- byte
	done chan struct{}
	once *sync.Once

	mu      sync.Mutex
	timeout time.Duration
}

// NewPipe returns two connected transports. Bytes written to one are read
// from the other. Closing either endpoint unblocks both.
func NewPipe() (*PipeTransport, *PipeTransport) {
	ab := make(chan byte, 1<<15)
	ba := make(chan byte, 1<<15)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &PipeTransport{recv: ba, send: ab, done: done, once: once, timeout: time.Second}
	b := &PipeTransport{recv: ab, send: ba, done: done, once: once, timeout: time.Second}
	return a, b
}

// Read blocks for the first byte up to the configured timeout, then drains
// whatever else is immediately available.
func (p *PipeTransport) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	timeout := p.timeout
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-p.recv:
		buf[0] = b
	case <-timer.C:
		return 0, ErrTransportTimeout
	case <-p.done:
		return 0, ErrTransportClosed
	}

	n := 1
	for n < len(buf) {
		select {
		case b := <-p.recv:
			buf[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Write pushes bytes to the peer. It fails if the pipe is closed or the
// peer stops draining.
func (p *PipeTransport) Write(buf []byte) (int, error) {
	for i, b := range buf {
		select {
		case p.send <- b:
		case <-p.done:
			return i, ErrTransportClosed
		}
	}
	return len(buf), nil
}

// SetTimeout sets the read deadline.
func (p *PipeTransport) SetTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = timeout
	return nil
}

// Close tears down both directions of the pipe.
func (p *PipeTransport) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// IsConnected reports whether the pipe is still open.
func (p *PipeTransport) IsConnected() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Type returns TransportPipe.
func (*PipeTransport) Type() TransportType {
	return TransportPipe
}
