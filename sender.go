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

// Sender drives the transmitting side of one XMODEM session: it waits for
// the receiver's initiation byte, transmits successive 128-byte blocks
// from its source, retransmits on NAK or timeout, and terminates with EOT.
//
// A Sender runs exactly one session and is not safe for concurrent use.
type Sender struct {
	transport Transport
	src       io.Reader
	config    *Config
	session   Session
	lastFrame []byte
	eof       bool
}

// NewSender creates a Sender reading its payload from src. A final chunk
// shorter than BlockSize is filled with the configured pad byte.
func NewSender(transport Transport, src io.Reader, opts ...Option) (*Sender, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if src == nil {
		return nil, errors.New("source is required")
	}
	config, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Sender{
		transport: transport,
		src:       src,
		config:    config,
		session:   Session{Mode: config.Mode},
	}, nil
}

// Session returns a snapshot of the session state.
func (s *Sender) Session() Session {
	return s.session
}

// Send runs the transfer to a terminal state. A nil return means
// Completed; cancellation (peer CAN, exhausted retries, or context abort)
// matches ErrTransferCancelled; anything else is an I/O failure.
func (s *Sender) Send() error {
	return s.SendContext(context.Background())
}

// SendContext is Send with a caller-supplied context. The context is
// re-evaluated at every read-timeout boundary, never inside an unbounded
// read.
func (s *Sender) SendContext(ctx context.Context) error {
	err := s.run(ctx)
	s.session.Status = statusForError(err)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"blocks": s.session.Blocks,
			"mode":   s.session.Mode.String(),
		}).Info("send completed")
	}
	return err
}

func (s *Sender) run(ctx context.Context) error {
	s.session.Status = StatusActive
	if err := s.transport.SetTimeout(s.config.Timeout); err != nil {
		return NewTransferError("set timeout", 0, err, ErrorTypeIO)
	}

	mode, err := s.awaitInitiation(ctx)
	if err != nil {
		return err
	}
	s.session.Mode = mode
	debugf("transfer initiated", logrus.Fields{"role": "sender", "mode": mode.String()})

	seq := byte(1)
	for {
		payload, more, err := s.nextChunk()
		if err != nil {
			return NewTransferError("read source", seq, err, ErrorTypeIO)
		}
		if !more {
			break
		}
		if err := s.sendBlock(ctx, seq, payload); err != nil {
			return err
		}
		s.session.Blocks++
		seq = nextSeq(seq)
	}

	return s.sendEOT(ctx)
}

// awaitInitiation blocks for the receiver's first control byte. The byte
// observed decides the session mode regardless of the configured
// preference: NAK selects checksum, 'C' selects CRC-16.
func (s *Sender) awaitInitiation(ctx context.Context) (Mode, error) {
	mode, err := retry.Do(ctx, retry.Config{
		MaxAttempts: s.config.MaxRetries,
		Description: "await initiation",
	}, func() (Mode, bool, error) {
		b, err := readByte(s.transport)
		if errors.Is(err, ErrTransportTimeout) {
			return 0, true, nil
		}
		if err != nil {
			return 0, false, NewTransferError("await initiation", 0, err, ErrorTypeIO)
		}
		switch b {
		case frame.NAK:
			return ModeChecksum, false, nil
		case frame.CRCRequest:
			return ModeCRC16, false, nil
		case frame.CAN:
			return 0, false, fmt.Errorf("%w: %w", ErrTransferCancelled, ErrCancelledByPeer)
		default:
			debugf("ignoring byte during initiation", logrus.Fields{"byte": fmt.Sprintf("0x%02X", b)})
			return 0, true, nil
		}
	})
	return mode, s.finishRetry(err)
}

// sendBlock transmits block seq until it is positively acknowledged or the
// retry budget runs out. Retransmissions resend the identical frame bytes;
// the source is read exactly once per block.
func (s *Sender) sendBlock(ctx context.Context, seq byte, payload []byte) error {
	raw, err := frame.Encode(seq, payload, s.session.Mode.crc())
	if err != nil {
		return NewTransferError("encode", seq, err, ErrorTypePermanent)
	}
	s.lastFrame = raw
	s.session.LastBlock = seq
	s.session.Retries = 0

	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}
		if attempt > 0 {
			s.session.Retries++
			debugf("retransmitting block", logrus.Fields{"block": seq, "attempt": attempt + 1})
		}

		if err := writeAll(s.transport, s.lastFrame); err != nil {
			return NewTransferError("write frame", seq, err, ErrorTypeIO)
		}

		b, err := readByte(s.transport)
		if errors.Is(err, ErrTransportTimeout) {
			debugf("ack timeout", logrus.Fields{"block": seq, "attempt": attempt + 1})
			continue
		}
		if err != nil {
			return NewTransferError("await ack", seq, err, ErrorTypeIO)
		}

		switch b {
		case frame.ACK:
			debugf("block acknowledged", logrus.Fields{"block": seq})
			return nil
		case frame.CAN:
			// Terminal: the peer gave up, no further channel writes.
			return fmt.Errorf("%w: %w", ErrTransferCancelled, ErrCancelledByPeer)
		case frame.NAK, frame.CRCRequest:
			debugf("block rejected", logrus.Fields{"block": seq, "byte": fmt.Sprintf("0x%02X", b)})
		default:
			debugf("unexpected ack byte", logrus.Fields{"block": seq, "byte": fmt.Sprintf("0x%02X", b)})
		}
	}

	return s.abort(fmt.Errorf("block %d: %w", seq, ErrMaxRetriesExceeded))
}

// sendEOT terminates the session: EOT is written and rewritten until the
// receiver acknowledges it, with the same retry structure as a data block.
func (s *Sender) sendEOT(ctx context.Context) error {
	_, err := retry.Do(ctx, retry.Config{
		MaxAttempts: s.config.MaxRetries,
		Description: "eot handshake",
	}, func() (struct{}, bool, error) {
		if err := writeAll(s.transport, []byte{frame.EOT}); err != nil {
			return struct{}{}, false, NewTransferError("write eot", 0, err, ErrorTypeIO)
		}
		b, err := readByte(s.transport)
		if errors.Is(err, ErrTransportTimeout) {
			return struct{}{}, true, nil
		}
		if err != nil {
			return struct{}{}, false, NewTransferError("await eot ack", 0, err, ErrorTypeIO)
		}
		switch b {
		case frame.ACK:
			return struct{}{}, false, nil
		case frame.CAN:
			return struct{}{}, false, fmt.Errorf("%w: %w", ErrTransferCancelled, ErrCancelledByPeer)
		default:
			return struct{}{}, true, nil
		}
	})
	return s.finishRetry(err)
}

// nextChunk reads the next 128-byte payload from the source, padding a
// short final chunk. more is false once the source is drained.
func (s *Sender) nextChunk() (payload []byte, more bool, err error) {
	if s.eof {
		return nil, false, nil
	}
	buf := make([]byte, BlockSize)
	n, err := io.ReadFull(s.src, buf)
	switch {
	case errors.Is(err, io.EOF):
		s.eof = true
		return nil, false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		for i := n; i < BlockSize; i++ {
			buf[i] = s.config.PadByte
		}
		return buf, true, nil
	case err != nil:
		return nil, false, err
	}
	return buf, true, nil
}

// abort signals the peer with a double CAN (best effort) and reports the
// session as cancelled for the given reason.
func (s *Sender) abort(reason error) error {
	_ = writeAll(s.transport, []byte{frame.CAN, frame.CAN})
	debugf("session aborted", logrus.Fields{"role": "sender", "reason": reason.Error()})
	if errors.Is(reason, ErrTransferCancelled) {
		return reason
	}
	return fmt.Errorf("%w: %w", ErrTransferCancelled, reason)
}

// finishRetry maps a retry.Do failure to the session-level outcome.
func (s *Sender) finishRetry(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, retry.ErrExhausted):
		return s.abort(ErrMaxRetriesExceeded)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return s.abort(err)
	default:
		return err
	}
}
