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

// Package frame implements the XMODEM packet codec: frame construction,
// validation, and the two checksum variants (8-bit additive sum and
// CRC-16/CCITT).
package frame

// Control bytes exchanged outside of frame payloads.
const (
	SOH        = 0x01 // Start of Header, first byte of every frame
	EOT        = 0x04 // End of Transmission, no more blocks follow
	ACK        = 0x06 // Positive acknowledgment
	NAK        = 0x15 // Negative acknowledgment, also selects checksum mode
	CAN        = 0x18 // Cancel, aborts the session immediately
	CRCRequest = 0x43 // ASCII 'C', receiver request for CRC-16 mode
)

// Pad is the byte used to fill the final block when the source data is not
// a multiple of BlockSize (0x1A, ASCII SUB, the conventional XMODEM pad).
const Pad = 0x1A

// BlockSize is the fixed payload length of every XMODEM block.
const BlockSize = 128

// headerSize covers SOH, the sequence number, and its complement.
const headerSize = 3

// Size returns the total on-wire frame length for the given checksum
// variant: header, payload, plus one checksum byte or two CRC bytes.
func Size(crc bool) int {
	if crc {
		return headerSize + BlockSize + 2
	}
	return headerSize + BlockSize + 1
}
