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
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrolink/go-xmodem/internal/frame"
)

func queueFrame(t *testing.T, mock *MockTransport, seq byte, payload []byte, crc bool) {
	t.Helper()
	mock.QueueRead(mustEncode(t, seq, payload, crc)...)
}

func TestNewReceiver_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewReceiver(nil, &bytes.Buffer{})
	require.Error(t, err)

	_, err = NewReceiver(NewMockTransport(), nil)
	require.Error(t, err)

	_, err = NewReceiver(NewMockTransport(), &bytes.Buffer{}, WithTimeout(0))
	require.Error(t, err)
}

func TestReceiver_AcceptsBlocksInOrder(t *testing.T) {
	t.Parallel()

	p1 := patternBytes(BlockSize)
	p2 := paddedBlock(patternBytes(40), PadByte)

	mock := NewMockTransport()
	queueFrame(t, mock, 1, p1, false)
	queueFrame(t, mock, 2, p2, false)
	mock.QueueRead(frame.EOT)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink, WithMode(ModeChecksum))
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	session := receiver.Session()
	assert.Equal(t, StatusCompleted, session.Status)
	assert.Equal(t, 2, session.Blocks)
	assert.Equal(t, byte(2), session.LastBlock)
	assert.True(t, bytes.Equal(append(append([]byte{}, p1...), p2...), sink.Bytes()))

	writes := mock.Writes()
	require.Len(t, writes, 4)
	assert.Equal(t, []byte{frame.NAK}, writes[0], "checksum mode initiates with NAK")
	assert.Equal(t, []byte{frame.ACK}, writes[1])
	assert.Equal(t, []byte{frame.ACK}, writes[2])
	assert.Equal(t, []byte{frame.ACK}, writes[3], "EOT acknowledged")
}

func TestReceiver_CRCModeInitiatesWithC(t *testing.T) {
	t.Parallel()

	payload := patternBytes(BlockSize)
	mock := NewMockTransport()
	queueFrame(t, mock, 1, payload, true)
	mock.QueueRead(frame.EOT)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink) // CRC-16 is the default
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	writes := mock.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, []byte{frame.CRCRequest}, writes[0])
	assert.True(t, bytes.Equal(payload, sink.Bytes()))
}

func TestReceiver_NAKsCorruptFrameThenAccepts(t *testing.T) {
	t.Parallel()

	payload := patternBytes(BlockSize)
	corrupt := mustEncode(t, 1, payload, true)
	corrupt[10] ^= 0xFF

	mock := NewMockTransport()
	mock.QueueRead(corrupt...)
	queueFrame(t, mock, 1, payload, true)
	mock.QueueRead(frame.EOT)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink)
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	assert.True(t, bytes.Equal(payload, sink.Bytes()), "payload forwarded exactly once")

	writes := mock.Writes()
	require.Len(t, writes, 4)
	assert.Equal(t, []byte{frame.NAK}, writes[1], "corrupt frame NAKed")
	assert.Equal(t, []byte{frame.ACK}, writes[2])
	assert.Equal(t, []byte{frame.ACK}, writes[3])
}

// TestReceiver_DuplicateBlockReAcked simulates a lost ACK: the sender
// retransmits block 1, which is re-acknowledged without re-forwarding its
// payload to the sink.
func TestReceiver_DuplicateBlockReAcked(t *testing.T) {
	t.Parallel()

	p1 := patternBytes(BlockSize)
	p2 := paddedBlock(patternBytes(10), PadByte)

	mock := NewMockTransport()
	queueFrame(t, mock, 1, p1, true)
	queueFrame(t, mock, 1, p1, true) // duplicate
	queueFrame(t, mock, 2, p2, true)
	mock.QueueRead(frame.EOT)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink)
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	assert.Equal(t, 2*BlockSize, sink.Len(), "duplicate payload must not be re-forwarded")
	assert.Equal(t, 2, receiver.Session().Blocks)

	writes := mock.Writes()
	require.Len(t, writes, 5)
	for _, w := range writes[1:] {
		assert.Equal(t, []byte{frame.ACK}, w)
	}
}

func TestReceiver_UnexpectedSequenceNAKed(t *testing.T) {
	t.Parallel()

	p1 := patternBytes(BlockSize)
	p2 := paddedBlock(patternBytes(10), PadByte)

	mock := NewMockTransport()
	queueFrame(t, mock, 1, p1, true)
	queueFrame(t, mock, 3, p2, true) // out of order: neither next nor duplicate
	queueFrame(t, mock, 2, p2, true)
	mock.QueueRead(frame.EOT)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink)
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	assert.Equal(t, 2*BlockSize, sink.Len())

	writes := mock.Writes()
	require.Len(t, writes, 5)
	assert.Equal(t, []byte{frame.ACK}, writes[1])
	assert.Equal(t, []byte{frame.NAK}, writes[2], "out-of-order frame NAKed, state unchanged")
	assert.Equal(t, []byte{frame.ACK}, writes[3])
}

func TestReceiver_CancelledByPeer(t *testing.T) {
	t.Parallel()

	payload := patternBytes(BlockSize)
	mock := NewMockTransport()
	queueFrame(t, mock, 1, payload, true)
	mock.QueueRead(frame.CAN)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink)
	require.NoError(t, err)

	err = receiver.Receive()
	require.ErrorIs(t, err, ErrTransferCancelled)
	require.ErrorIs(t, err, ErrCancelledByPeer)
	assert.Equal(t, StatusCancelled, receiver.Session().Status)

	// No writes after observing CAN.
	writes := mock.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, []byte{frame.CRCRequest}, writes[0])
	assert.Equal(t, []byte{frame.ACK}, writes[1])
}

func TestReceiver_EmptyTransfer(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueRead(frame.EOT) // EOT before any block

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink)
	require.NoError(t, err)
	require.NoError(t, receiver.Receive())

	assert.Equal(t, 0, sink.Len())
	assert.Equal(t, 0, receiver.Session().Blocks)
	assert.Equal(t, StatusCompleted, receiver.Session().Status)

	writes := mock.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, []byte{frame.CRCRequest}, writes[0])
	assert.Equal(t, []byte{frame.ACK}, writes[1])
}

func TestReceiver_InitiationExhausted(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport() // silent line
	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink, WithMaxRetries(3))
	require.NoError(t, err)

	err = receiver.Receive()
	require.ErrorIs(t, err, ErrTransferCancelled)
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)

	writes := mock.Writes()
	require.Len(t, writes, 4) // 3 initiation bytes, then double CAN
	assert.Equal(t, []byte{frame.CAN, frame.CAN}, writes[3])
}

func TestReceiver_ConsecutiveFailureLimit(t *testing.T) {
	t.Parallel()

	payload := patternBytes(BlockSize)
	corrupt := mustEncode(t, 1, payload, true)
	corrupt[10] ^= 0xFF

	mock := NewMockTransport()
	mock.QueueRead(corrupt...)
	mock.QueueRead(corrupt...)
	mock.QueueRead(corrupt...)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink, WithMaxRetries(3))
	require.NoError(t, err)

	err = receiver.Receive()
	require.ErrorIs(t, err, ErrTransferCancelled)
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 0, sink.Len())

	writes := mock.Writes()
	require.Len(t, writes, 4) // initiation, two NAKs, double CAN
	assert.Equal(t, []byte{frame.CAN, frame.CAN}, writes[3])
}

// TestReceiver_IncompleteFrameTimesOut delivers only a frame prefix; the
// receiver NAKs the stalled frame and, with nothing further arriving,
// eventually cancels.
func TestReceiver_IncompleteFrameTimesOut(t *testing.T) {
	t.Parallel()

	partial := mustEncode(t, 1, patternBytes(BlockSize), true)[:10]
	mock := NewMockTransport()
	mock.QueueRead(partial...)

	var sink bytes.Buffer
	receiver, err := NewReceiver(mock, &sink, WithMaxRetries(3))
	require.NoError(t, err)

	err = receiver.Receive()
	require.ErrorIs(t, err, ErrTransferCancelled)
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 0, sink.Len())
}

func TestReceiver_SinkErrorIsFatal(t *testing.T) {
	t.Parallel()

	payload := patternBytes(BlockSize)
	mock := NewMockTransport()
	queueFrame(t, mock, 1, payload, true)

	receiver, err := NewReceiver(mock, failingWriter{})
	require.NoError(t, err)

	err = receiver.Receive()
	require.Error(t, err)
	assert.Equal(t, ErrorTypeIO, GetErrorType(err))
	assert.Equal(t, StatusFailed, receiver.Session().Status)

	// The peer is told to stop before the receiver gives up.
	writes := mock.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, []byte{frame.CAN, frame.CAN}, writes[len(writes)-1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
