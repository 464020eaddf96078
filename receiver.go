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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/retrolink/go-xmodem/internal/frame"
	"github.com/retrolink/go-xmodem/internal/retry"
)

// Receiver drives the receiving side of one XMODEM session: it initiates
// the handshake with its mode-selection byte, validates incoming frames,
// acknowledges them in strict sequence order, and forwards each newly
// accepted payload to the sink exactly once.
//
// A Receiver runs exactly one session and is not safe for concurrent use.
type Receiver struct {
	transport Transport
	sink      io.Writer
	config    *Config
	session   Session
	failures  int
}

// NewReceiver creates a Receiver appending accepted payloads to sink. Pad
// bytes in the final block are forwarded as-is; use TrimPadding on the
// reassembled data if the sink is a file.
func NewReceiver(transport Transport, sink io.Writer, opts ...Option) (*Receiver, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	config, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		transport: transport,
		sink:      sink,
		config:    config,
		session:   Session{Mode: config.Mode},
	}, nil
}

// Session returns a snapshot of the session state.
func (r *Receiver) Session() Session {
	return r.session
}

// Receive runs the transfer to a terminal state. A nil return means
// Completed; cancellation matches ErrTransferCancelled; anything else is
// an I/O failure.
func (r *Receiver) Receive() error {
	return r.ReceiveContext(context.Background())
}

// ReceiveContext is Receive with a caller-supplied context, re-evaluated
// at every read-timeout boundary.
func (r *Receiver) ReceiveContext(ctx context.Context) error {
	err := r.run(ctx)
	r.session.Status = statusForError(err)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"blocks": r.session.Blocks,
			"mode":   r.session.Mode.String(),
		}).Info("receive completed")
	}
	return err
}

func (r *Receiver) run(ctx context.Context) error {
	r.session.Status = StatusActive

	started, err := r.initiate(ctx)
	if err != nil {
		return err
	}
	if !started {
		// EOT before any block: an empty, completed transfer.
		return nil
	}

	if err := r.transport.SetTimeout(r.config.Timeout); err != nil {
		return NewTransferError("set timeout", 0, err, ErrorTypeIO)
	}
	return r.receiveBlocks(ctx)
}

// initiate writes the mode-selection byte (NAK for checksum, 'C' for
// CRC-16) at the configured interval until the sender answers. started is
// true when an SOH was consumed and the first frame body is pending;
// false when the sender signalled EOT immediately.
func (r *Receiver) initiate(ctx context.Context) (started bool, err error) {
	if err := r.transport.SetTimeout(r.config.InitInterval); err != nil {
		return false, NewTransferError("set timeout", 0, err, ErrorTypeIO)
	}
	initiation := r.config.Mode.initiationByte()

	started, err = retry.Do(ctx, retry.Config{
		MaxAttempts: r.config.MaxRetries,
		Description: "initiate transfer",
	}, func() (bool, bool, error) {
		if err := writeAll(r.transport, []byte{initiation}); err != nil {
			return false, false, NewTransferError("write initiation", 0, err, ErrorTypeIO)
		}
		debugf("initiation sent", logrus.Fields{"mode": r.config.Mode.String()})

		b, err := readByte(r.transport)
		if errors.Is(err, ErrTransportTimeout) {
			return false, true, nil
		}
		if err != nil {
			return false, false, NewTransferError("await frame", 0, err, ErrorTypeIO)
		}
		switch b {
		case frame.SOH:
			return true, false, nil
		case frame.EOT:
			if err := writeAll(r.transport, []byte{frame.ACK}); err != nil {
				return false, false, NewTransferError("ack eot", 0, err, ErrorTypeIO)
			}
			return false, false, nil
		case frame.CAN:
			return false, false, fmt.Errorf("%w: %w", ErrTransferCancelled, ErrCancelledByPeer)
		default:
			debugf("ignoring byte during initiation", logrus.Fields{"byte": fmt.Sprintf("0x%02X", b)})
			return false, true, nil
		}
	})
	return started, r.finishRetry(err)
}

// receiveBlocks is the frame loop: assemble, validate, acknowledge. The
// first SOH has already been consumed by initiate.
func (r *Receiver) receiveBlocks(ctx context.Context) error {
	expected := byte(1)
	last := byte(0) // sentinel: no block accepted yet
	sohPending := true
	rest := make([]byte, frame.Size(r.session.Mode.crc())-1)
	raw := make([]byte, 0, frame.Size(r.session.Mode.crc()))

	for {
		if err := ctx.Err(); err != nil {
			return r.abort(err)
		}

		if !sohPending {
			b, err := readByte(r.transport)
			if errors.Is(err, ErrTransportTimeout) {
				if err := r.reject(ErrTransportTimeout); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return NewTransferError("await frame", expected, err, ErrorTypeIO)
			}
			switch b {
			case frame.SOH:
				// Frame body follows.
			case frame.EOT:
				if err := writeAll(r.transport, []byte{frame.ACK}); err != nil {
					return NewTransferError("ack eot", 0, err, ErrorTypeIO)
				}
				return nil
			case frame.CAN:
				// Terminal: no further channel writes.
				return fmt.Errorf("%w: %w", ErrTransferCancelled, ErrCancelledByPeer)
			default:
				debugf("ignoring byte between frames", logrus.Fields{"byte": fmt.Sprintf("0x%02X", b)})
				continue
			}
		}
		sohPending = false

		if err := readFull(r.transport, rest); err != nil {
			if errors.Is(err, ErrTransportTimeout) {
				if err := r.reject(fmt.Errorf("incomplete frame: %w", err)); err != nil {
					return err
				}
				continue
			}
			return NewTransferError("read frame", expected, err, ErrorTypeIO)
		}

		raw = append(raw[:0], frame.SOH)
		raw = append(raw, rest...)
		block, err := frame.Decode(raw, r.session.Mode.crc())
		if err != nil {
			if err := r.reject(err); err != nil {
				return err
			}
			continue
		}

		switch {
		case block.Seq == expected:
			if _, err := r.sink.Write(block.Payload); err != nil {
				_ = writeAll(r.transport, []byte{frame.CAN, frame.CAN})
				return NewTransferError("write sink", block.Seq, err, ErrorTypeIO)
			}
			if err := writeAll(r.transport, []byte{frame.ACK}); err != nil {
				return NewTransferError("ack block", block.Seq, err, ErrorTypeIO)
			}
			debugf("block accepted", logrus.Fields{"block": block.Seq})
			last = expected
			expected = nextSeq(expected)
			r.failures = 0
			r.session.LastBlock = block.Seq
			r.session.Blocks++

		case block.Seq == last && last != 0:
			// Duplicate after a lost ACK: re-acknowledge, never re-forward.
			if err := writeAll(r.transport, []byte{frame.ACK}); err != nil {
				return NewTransferError("ack duplicate", block.Seq, err, ErrorTypeIO)
			}
			debugf("duplicate block re-acknowledged", logrus.Fields{"block": block.Seq})

		default:
			if err := r.reject(fmt.Errorf("%w: got %d, expected %d",
				ErrUnexpectedSequence, block.Seq, expected)); err != nil {
				return err
			}
		}
	}
}

// reject NAKs the current frame attempt and enforces the consecutive-
// failure budget. A nil return means the loop should continue waiting for
// a retransmission.
func (r *Receiver) reject(reason error) error {
	r.failures++
	r.session.Retries = r.failures
	debugf("frame rejected", logrus.Fields{"failures": r.failures, "reason": reason.Error()})

	if r.failures >= r.config.MaxRetries {
		return r.abort(fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, reason))
	}
	if err := writeAll(r.transport, []byte{frame.NAK}); err != nil {
		return NewTransferError("write nak", 0, err, ErrorTypeIO)
	}
	return nil
}

// abort signals the peer with a double CAN (best effort) and reports the
// session as cancelled for the given reason.
func (r *Receiver) abort(reason error) error {
	_ = writeAll(r.transport, []byte{frame.CAN, frame.CAN})
	debugf("session aborted", logrus.Fields{"role": "receiver", "reason": reason.Error()})
	if errors.Is(reason, ErrTransferCancelled) {
		return reason
	}
	return fmt.Errorf("%w: %w", ErrTransferCancelled, reason)
}

// finishRetry maps a retry.Do failure to the session-level outcome.
func (r *Receiver) finishRetry(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, retry.ErrExhausted):
		return r.abort(ErrMaxRetriesExceeded)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return r.abort(err)
	default:
		return err
	}
}
