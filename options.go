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
	"time"
)

// Config holds the tunables shared by both state machines. Zero values are
// never used directly; construct via DefaultConfig or the option setters.
type Config struct {
	// Mode is the receiver's requested mode, and the sender's preference
	// (the sender ultimately honors the initiation byte it observes).
	Mode Mode
	// Timeout bounds each blocking read during the block phase.
	Timeout time.Duration
	// InitInterval is the pause between initiation attempts.
	InitInterval time.Duration
	// MaxRetries bounds retransmissions of a single block, and the number
	// of initiation attempts.
	MaxRetries int
	// PadByte fills the final block when the source runs short.
	PadByte byte
}

// DefaultConfig returns the conventional XMODEM policy values: CRC mode,
// 10-second reads, one-second initiation interval, 10 retries, SUB padding.
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeCRC16,
		Timeout:      10 * time.Second,
		InitInterval: time.Second,
		MaxRetries:   10,
		PadByte:      PadByte,
	}
}

// Option is a functional option for configuring a Sender or Receiver.
type Option func(*Config) error

// WithMode sets the checksum variant (the receiver requests it; the sender
// treats it as a preference only).
func WithMode(mode Mode) Option {
	return func(c *Config) error {
		if mode != ModeChecksum && mode != ModeCRC16 {
			return errors.New("invalid mode")
		}
		c.Mode = mode
		return nil
	}
}

// WithTimeout sets the per-read deadline for the block phase.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		c.Timeout = timeout
		return nil
	}
}

// WithInitInterval sets the pause between handshake attempts.
func WithInitInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return errors.New("init interval must be positive")
		}
		c.InitInterval = interval
		return nil
	}
}

// WithMaxRetries sets the per-block and handshake retry budget.
func WithMaxRetries(maxRetries int) Option {
	return func(c *Config) error {
		if maxRetries < 1 {
			return errors.New("max retries must be at least 1")
		}
		c.MaxRetries = maxRetries
		return nil
	}
}

// WithPadByte sets the fill byte for a short final block.
func WithPadByte(pad byte) Option {
	return func(c *Config) error {
		c.PadByte = pad
		return nil
	}
}

func applyOptions(opts []Option) (*Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}
	return config, nil
}
