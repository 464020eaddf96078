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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSeq(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		seq  byte
		want byte
	}{
		{name: "first block advances", seq: 1, want: 2},
		{name: "mid-range advances", seq: 100, want: 101},
		{name: "wraps to one, never zero", seq: 255, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := nextSeq(tt.seq); got != tt.want {
				t.Errorf("nextSeq(%d) = %d, want %d", tt.seq, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("checksum")
	require.NoError(t, err)
	assert.Equal(t, ModeChecksum, mode)

	mode, err = ParseMode("crc16")
	require.NoError(t, err)
	assert.Equal(t, ModeCRC16, mode)

	_, err = ParseMode("crc")
	require.Error(t, err)
}

func TestModeRoundTrip(t *testing.T) {
	t.Parallel()
	for _, mode := range []Mode{ModeChecksum, ModeCRC16} {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		want   string
		status Status
	}{
		{status: StatusPending, want: "pending"},
		{status: StatusActive, want: "active"},
		{status: StatusCompleted, want: "completed"},
		{status: StatusCancelled, want: "cancelled"},
		{status: StatusFailed, want: "failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestTrimPadding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{
			name: "trailing padding removed",
			data: []byte{0x41, 0x42, PadByte, PadByte},
			want: []byte{0x41, 0x42},
		},
		{
			name: "no padding untouched",
			data: []byte{0x41, 0x42},
			want: []byte{0x41, 0x42},
		},
		{
			name: "interior padding preserved",
			data: []byte{0x41, PadByte, 0x42, PadByte},
			want: []byte{0x41, PadByte, 0x42},
		},
		{
			name: "all padding",
			data: bytes.Repeat([]byte{PadByte}, 128),
			want: []byte{},
		},
		{
			name: "empty input",
			data: []byte{},
			want: []byte{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TrimPadding(tt.data, PadByte)
			assert.Equal(t, len(tt.want), len(got))
			assert.True(t, bytes.Equal(tt.want, got))
		})
	}
}
