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

/*
Package xmodem implements the XMODEM file-transfer protocol: a half-duplex,
block-oriented, acknowledgment-driven transfer of a byte stream between two
endpoints over an unreliable duplex channel, typically a serial link.

Both classic variants are supported: the original 8-bit additive checksum
(negotiated by NAK) and CRC-16/CCITT (negotiated by 'C'). Blocks are always
128 bytes; a short final chunk is filled with the pad byte (0x1A by
default). Retransmission is idempotent: a retried block is byte-identical
to its first transmission.

Features:
  - Sender and Receiver state machines with bounded per-block retries
  - Checksum and CRC-16/CCITT modes, negotiated by the receiver
  - Pluggable Transport interface with a serial-port backend
  - Context-aware cancellation checked at every timeout boundary
  - Structured error taxonomy with retryability classification

Basic usage:

	import (
	    "github.com/retrolink/go-xmodem"
	    "github.com/retrolink/go-xmodem/transport/serialport"
	)

	// Open the channel
	port, err := serialport.New("/dev/ttyUSB0", serialport.WithBaudRate(9600))
	if err != nil {
	    log.Fatal(err)
	}
	defer port.Close()

	// Send a file
	f, err := os.Open("firmware.bin")
	if err != nil {
	    log.Fatal(err)
	}
	defer f.Close()

	sender, err := xmodem.NewSender(port, f, xmodem.WithMaxRetries(10))
	if err != nil {
	    log.Fatal(err)
	}
	if err := sender.Send(); err != nil {
	    log.Fatal(err)
	}

The receiving side mirrors this with NewReceiver and an io.Writer sink;
TrimPadding strips the trailing pad bytes once the transfer completes.
*/
package xmodem
