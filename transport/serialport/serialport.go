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

// Package serialport implements the xmodem.Transport interface over a
// serial port (8N1, 9600 baud unless configured otherwise).
package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	xmodem "github.com/retrolink/go-xmodem"
)

// DefaultBaudRate is the classic XMODEM line speed.
const DefaultBaudRate = 9600

const defaultTimeout = 10 * time.Second

// Transport is a serial-port implementation of xmodem.Transport.
type Transport struct {
	port     serial.Port
	portName string
	mode     serial.Mode

	mu        sync.Mutex
	timeout   time.Duration
	connected bool
}

// Option is a functional option for configuring the serial transport.
type Option func(*Transport) error

// WithBaudRate sets the line speed (default 9600).
func WithBaudRate(baudRate int) Option {
	return func(t *Transport) error {
		if baudRate <= 0 {
			return errors.New("baud rate must be positive")
		}
		t.mode.BaudRate = baudRate
		return nil
	}
}

// New opens the named serial port in 8N1 framing and applies the options.
func New(portName string, opts ...Option) (*Transport, error) {
	if portName == "" {
		return nil, errors.New("port name is required")
	}

	t := &Transport{
		portName: portName,
		mode: serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	port, err := serial.Open(portName, &t.mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	t.port = port
	t.connected = true
	return t, nil
}

// Read reads up to len(p) bytes. The serial library signals an expired
// read deadline with a zero-byte read, which is mapped to
// xmodem.ErrTransportTimeout.
func (t *Transport) Read(p []byte) (int, error) {
	port, err := t.activePort()
	if err != nil {
		return 0, err
	}

	n, err := port.Read(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", xmodem.ErrTransportRead, err)
	}
	if n == 0 {
		return 0, xmodem.ErrTransportTimeout
	}
	return n, nil
}

// Write sends p over the port.
func (t *Transport) Write(p []byte) (int, error) {
	port, err := t.activePort()
	if err != nil {
		return 0, err
	}

	n, err := port.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", xmodem.ErrTransportWrite, err)
	}
	return n, nil
}

// SetTimeout sets the read deadline applied to each Read.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	if t.port == nil {
		return nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	return nil
}

// Close closes the port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns true if the port is open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type returns xmodem.TransportSerial.
func (*Transport) Type() xmodem.TransportType {
	return xmodem.TransportSerial
}

// PortName returns the device path the transport was opened on.
func (t *Transport) PortName() string {
	return t.portName
}

func (t *Transport) activePort() (serial.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected || t.port == nil {
		return nil, xmodem.ErrTransportClosed
	}
	return t.port, nil
}
