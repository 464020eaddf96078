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
	"errors"
	"fmt"

	"github.com/retrolink/go-xmodem/internal/frame"
)

// BlockSize is the fixed payload length of every XMODEM block.
const BlockSize = frame.BlockSize

// PadByte is the default fill byte for a final block shorter than
// BlockSize (0x1A, ASCII SUB).
const PadByte = frame.Pad

// Mode selects the error-detection variant for one session. It is fixed
// for the session's lifetime: the receiver's initiation byte proposes it,
// and the sender adopts whichever initiation byte it first observes.
type Mode int

const (
	// ModeChecksum uses the 8-bit additive checksum, selected by NAK.
	ModeChecksum Mode = iota
	// ModeCRC16 uses CRC-16/CCITT, selected by 'C'.
	ModeCRC16
)

// String returns the CLI spelling of the mode.
func (m Mode) String() string {
	if m == ModeCRC16 {
		return "crc16"
	}
	return "checksum"
}

// ParseMode converts the CLI spelling of a mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "checksum":
		return ModeChecksum, nil
	case "crc16":
		return ModeCRC16, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want checksum or crc16)", s)
	}
}

// crc reports whether the mode uses the two-byte CRC trailer.
func (m Mode) crc() bool {
	return m == ModeCRC16
}

// initiationByte is the control byte a receiver emits to request the mode.
func (m Mode) initiationByte() byte {
	if m == ModeCRC16 {
		return frame.CRCRequest
	}
	return frame.NAK
}

// Status is the lifecycle state of a session.
type Status int

const (
	// StatusPending means the transfer has not started.
	StatusPending Status = iota
	// StatusActive means the state machine is running.
	StatusActive
	// StatusCompleted means the transfer finished successfully.
	StatusCompleted
	// StatusCancelled means either side aborted (CAN or exhausted retries).
	StatusCancelled
	// StatusFailed means the channel became unusable.
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Session is the transient per-transfer state owned by one state machine.
// LastBlock is 0 until the first block is sent or accepted; sequence
// numbers themselves never take the value 0.
type Session struct {
	// Mode is the negotiated error-detection variant.
	Mode Mode
	// Status is the lifecycle state.
	Status Status
	// LastBlock is the sequence number of the last transmitted (sender) or
	// accepted (receiver) block.
	LastBlock byte
	// Blocks counts blocks acknowledged (sender) or accepted (receiver).
	Blocks int
	// Retries counts retransmission attempts consumed on the current block.
	Retries int
}

// nextSeq advances a sequence number with the XMODEM wraparound: after
// block 255 comes block 1, never 0.
func nextSeq(seq byte) byte {
	if seq == 255 {
		return 1
	}
	return seq + 1
}

// statusForError maps a terminal error to the session status it leaves
// behind.
func statusForError(err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, ErrTransferCancelled):
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// TrimPadding strips trailing pad bytes from a reassembled transfer. XMODEM
// carries no length information, so trimming is a sink-side policy applied
// once over the whole payload, never per block.
func TrimPadding(data []byte, pad byte) []byte {
	end := len(data)
	for end > 0 && data[end-1] == pad {
		end--
	}
	return data[:end]
}
