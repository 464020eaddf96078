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

// Package retry provides the bounded-retry loop shared by the protocol
// handshake phases.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when an operation did not succeed within the
// configured number of attempts.
var ErrExhausted = errors.New("retry attempts exhausted")

// Operation is one attempt of a retryable action.
// Returns: result, shouldRetry, error.
//   - result: the value if the attempt succeeded
//   - shouldRetry: true if the attempt failed transiently and should be retried
//   - error: a permanent error that stops further attempts
type Operation[T any] func() (T, bool, error)

// Config bounds a retry loop.
type Config struct {
	// OnRetry runs before each re-attempt; returning an error stops the loop.
	OnRetry func() error
	// Description names the operation for diagnostics.
	Description string
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is slept between attempts.
	Delay time.Duration
}

// Do executes op up to cfg.MaxAttempts times, sleeping cfg.Delay between
// attempts. The context is re-checked at every attempt boundary so a
// caller-initiated abort never waits on a full retry budget.
func Do[T any](ctx context.Context, cfg Config, op Operation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, shouldRetry, err := op()
		if err != nil {
			return zero, err
		}
		if !shouldRetry {
			return result, nil
		}
		if attempt+1 >= cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			if err := cfg.OnRetry(); err != nil {
				return zero, err
			}
		}
		if cfg.Delay > 0 {
			if err := sleep(ctx, cfg.Delay); err != nil {
				return zero, err
			}
		}
	}

	return zero, ErrExhausted
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
