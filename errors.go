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

// Transport-level errors.
var (
	// ErrTransportTimeout indicates no byte arrived within the read deadline.
	ErrTransportTimeout = errors.New("transport read timeout")
	// ErrTransportRead indicates the channel failed while reading.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates the channel failed while writing.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportClosed indicates an operation on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
)

// Decode-time errors, re-exported from the frame codec so callers never
// import internal packages.
var (
	// ErrInvalidPayload indicates an Encode call with a payload that is not
	// exactly 128 bytes. Programming error, not a protocol condition.
	ErrInvalidPayload = frame.ErrInvalidPayload
	// ErrMalformedHeader indicates a frame that does not start with SOH or
	// has the wrong length.
	ErrMalformedHeader = frame.ErrMalformedHeader
	// ErrComplementMismatch indicates a sequence number whose complement
	// byte does not sum to 255 with it.
	ErrComplementMismatch = frame.ErrComplementMismatch
	// ErrChecksumMismatch indicates a frame whose trailing checksum or CRC
	// does not match the payload.
	ErrChecksumMismatch = frame.ErrChecksumMismatch
)

// Session-level errors.
var (
	// ErrUnexpectedSequence indicates a valid frame whose sequence number is
	// neither the expected next block nor a duplicate of the last one.
	ErrUnexpectedSequence = errors.New("unexpected sequence number")
	// ErrTransferCancelled is the terminal cancellation condition. Errors
	// returned for cancelled sessions match it via errors.Is and wrap the
	// specific reason.
	ErrTransferCancelled = errors.New("transfer cancelled")
	// ErrCancelledByPeer indicates the remote side sent CAN.
	ErrCancelledByPeer = errors.New("cancelled by peer")
	// ErrMaxRetriesExceeded indicates the retry budget for a single block or
	// handshake ran out.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ErrorType classifies errors for retry decisions and caller-visible
// outcome mapping.
type ErrorType int

const (
	// ErrorTypeUnknown is the zero classification.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTransient marks conditions that are retried locally
	// (timeouts, corrupt frames).
	ErrorTypeTransient
	// ErrorTypeProtocol marks terminal protocol conditions (cancellation,
	// exhausted retry budgets).
	ErrorTypeProtocol
	// ErrorTypeIO marks an unusable channel. Fatal, never retried.
	ErrorTypeIO
	// ErrorTypePermanent marks caller mistakes such as invalid payloads.
	ErrorTypePermanent
)

// String returns a human-readable name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeProtocol:
		return "protocol"
	case ErrorTypeIO:
		return "io"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// TransferError wraps an engine error with the operation and block it
// occurred on.
type TransferError struct {
	Err       error
	Op        string
	Type      ErrorType
	Block     byte
	Retryable bool
}

// NewTransferError builds a TransferError, deriving Retryable from the
// error type.
func NewTransferError(op string, block byte, err error, errType ErrorType) *TransferError {
	return &TransferError{
		Op:        op,
		Block:     block,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient,
	}
}

// NewTimeoutError builds the TransferError for a read deadline expiring
// during op.
func NewTimeoutError(op string, block byte) *TransferError {
	return NewTransferError(op, block, ErrTransportTimeout, ErrorTypeTransient)
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	if e.Block != 0 {
		return fmt.Sprintf("xmodem %s (block %d): %v", e.Op, e.Block, e.Err)
	}
	return fmt.Sprintf("xmodem %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error represents a condition the state
// machines retry locally rather than surface to the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransferError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrComplementMismatch),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrUnexpectedSequence):
		return true
	default:
		return false
	}
}

// GetErrorType classifies an arbitrary error into an ErrorType.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var te *TransferError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrComplementMismatch),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrUnexpectedSequence):
		return ErrorTypeTransient
	case errors.Is(err, ErrTransferCancelled),
		errors.Is(err, ErrCancelledByPeer),
		errors.Is(err, ErrMaxRetriesExceeded):
		return ErrorTypeProtocol
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportClosed):
		return ErrorTypeIO
	case errors.Is(err, ErrInvalidPayload):
		return ErrorTypePermanent
	default:
		return ErrorTypeUnknown
	}
}
