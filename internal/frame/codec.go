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

package frame

import (
	"errors"
	"fmt"
)

// Decode and Encode error conditions. Decode failures normally trigger a
// NAK rather than surfacing to the caller; ErrInvalidPayload indicates a
// programming error, not a protocol condition.
var (
	ErrInvalidPayload     = errors.New("payload must be exactly 128 bytes")
	ErrMalformedHeader    = errors.New("malformed frame header")
	ErrComplementMismatch = errors.New("sequence complement mismatch")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
)

// Block is a decoded XMODEM block: a sequence number in 1..255 and its
// 128-byte payload.
type Block struct {
	Payload []byte
	Seq     byte
}

// Complement returns the redundant sequence-validation byte carried next
// to the sequence number. Seq and its complement always sum to 255.
func Complement(seq byte) byte {
	return 255 - seq
}

// Encode builds the on-wire frame for one block: SOH, sequence number,
// complement, the 128 payload bytes, and the trailing checksum (one byte)
// or CRC-16 (two bytes, big-endian) depending on crc.
func Encode(seq byte, payload []byte, crc bool) ([]byte, error) {
	if len(payload) != BlockSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPayload, len(payload))
	}

	buf := make([]byte, 0, Size(crc))
	buf = append(buf, SOH, seq, Complement(seq))
	buf = append(buf, payload...)
	if crc {
		c := CRC16(payload)
		buf = append(buf, byte(c>>8), byte(c))
	} else {
		buf = append(buf, Checksum8(payload))
	}
	return buf, nil
}

// Decode validates a raw frame and extracts its block. raw must start at
// the SOH byte and span the full frame length for the checksum variant.
// The returned payload aliases raw; callers that retain it across reads
// must copy.
func Decode(raw []byte, crc bool) (Block, error) {
	if len(raw) != Size(crc) {
		return Block{}, fmt.Errorf("%w: frame length %d, want %d",
			ErrMalformedHeader, len(raw), Size(crc))
	}
	if raw[0] != SOH {
		return Block{}, fmt.Errorf("%w: leading byte 0x%02X", ErrMalformedHeader, raw[0])
	}

	seq := raw[1]
	if int(seq)+int(raw[2]) != 255 {
		return Block{}, fmt.Errorf("%w: seq 0x%02X, complement 0x%02X",
			ErrComplementMismatch, seq, raw[2])
	}

	payload := raw[headerSize : headerSize+BlockSize]
	if crc {
		got := uint16(raw[headerSize+BlockSize])<<8 | uint16(raw[headerSize+BlockSize+1])
		if want := CRC16(payload); got != want {
			return Block{}, fmt.Errorf("%w: got 0x%04X, want 0x%04X",
				ErrChecksumMismatch, got, want)
		}
	} else {
		got := raw[headerSize+BlockSize]
		if want := Checksum8(payload); got != want {
			return Block{}, fmt.Errorf("%w: got 0x%02X, want 0x%02X",
				ErrChecksumMismatch, got, want)
		}
	}

	return Block{Seq: seq, Payload: payload}, nil
}
