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
	"fmt"
	"time"
)

// Transport is the duplex channel the protocol engine runs over. This can
// be implemented by a serial port, an in-memory pipe for tests, or any
// other byte-stream medium. The engine never configures the physical
// channel; it only reads, writes, and adjusts the read deadline.
type Transport interface {
	// Read fills p with up to len(p) bytes. It blocks until at least one
	// byte is available or the configured timeout elapses, in which case it
	// returns an error matching ErrTransportTimeout.
	Read(p []byte) (int, error)

	// Write sends p over the channel.
	Write(p []byte) (int, error)

	// SetTimeout sets the read deadline applied to each Read call.
	SetTimeout(timeout time.Duration) error

	// Close closes the transport connection.
	Close() error

	// IsConnected returns true if the transport is usable.
	IsConnected() bool

	// Type returns the transport type.
	Type() TransportType
}

// TransportType represents the type of transport.
type TransportType string

const (
	// TransportSerial represents a serial-port transport.
	TransportSerial TransportType = "serial"
	// TransportPipe represents an in-memory pipe transport.
	TransportPipe TransportType = "pipe"
	// TransportMock represents a scripted mock transport for testing.
	TransportMock TransportType = "mock"
)

// readByte reads exactly one byte, the granularity of all control-byte
// exchanges.
func readByte(t Transport) (byte, error) {
	var buf [1]byte
	for {
		n, err := t.Read(buf[:])
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return buf[0], nil
		}
	}
}

// readFull fills p completely, looping over partial reads. A timeout on
// any partial read surfaces as-is, leaving the frame incomplete.
func readFull(t Transport, p []byte) error {
	for n := 0; n < len(p); {
		r, err := t.Read(p[n:])
		if err != nil {
			return err
		}
		n += r
	}
	return nil
}

// writeAll writes p completely, wrapping short-write and transport
// failures as ErrTransportWrite.
func writeAll(t Transport, p []byte) error {
	for n := 0; n < len(p); {
		w, err := t.Write(p[n:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransportWrite, err)
		}
		if w == 0 {
			return fmt.Errorf("%w: short write", ErrTransportWrite)
		}
		n += w
	}
	return nil
}
