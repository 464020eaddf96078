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
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var debugEnabled atomic.Bool

// SetDebugEnabled toggles protocol-level trace logging. When enabled, the
// state machines log every block transmit, acknowledgment, retry, and
// cancellation with structured fields at debug level.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
	if enabled {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// DebugEnabled reports whether protocol trace logging is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// debugf emits a protocol trace event with structured fields.
func debugf(event string, fields logrus.Fields) {
	if !debugEnabled.Load() {
		return
	}
	logrus.WithFields(fields).Debug(event)
}
