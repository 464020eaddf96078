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

package detection

import (
	"strings"
	"testing"
)

func TestMergePorts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		primary   []PortInfo
		extra     []PortInfo
		wantPaths []string
	}{
		{
			name:      "both empty",
			wantPaths: []string{},
		},
		{
			name:      "extra only",
			extra:     []PortInfo{{Path: "COM1"}, {Path: "COM2"}},
			wantPaths: []string{"COM1", "COM2"},
		},
		{
			name:      "primary wins duplicates",
			primary:   []PortInfo{{Path: "COM3", Description: "USB adapter"}},
			extra:     []PortInfo{{Path: "COM3", Description: "registry"}, {Path: "COM4"}},
			wantPaths: []string{"COM3", "COM4"},
		},
		{
			name:      "empty path skipped",
			primary:   []PortInfo{{Path: "/dev/ttyS0"}},
			extra:     []PortInfo{{Path: ""}},
			wantPaths: []string{"/dev/ttyS0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mergePorts(tt.primary, tt.extra)
			if len(got) != len(tt.wantPaths) {
				t.Fatalf("mergePorts() returned %d ports, want %d", len(got), len(tt.wantPaths))
			}
			for i, want := range tt.wantPaths {
				if got[i].Path != want {
					t.Errorf("port %d path = %q, want %q", i, got[i].Path, want)
				}
			}
		})
	}
}

func TestMergePorts_KeepsPrimaryMetadata(t *testing.T) {
	t.Parallel()

	primary := []PortInfo{{Path: "COM3", Description: "FTDI adapter", VIDPID: "0403:6001"}}
	extra := []PortInfo{{Path: "COM3", Description: "\\Device\\Serial0"}}

	got := mergePorts(primary, extra)
	if len(got) != 1 {
		t.Fatalf("expected 1 port, got %d", len(got))
	}
	if got[0].VIDPID != "0403:6001" {
		t.Errorf("primary metadata lost: %+v", got[0])
	}
}

func TestPortInfo_String(t *testing.T) {
	t.Parallel()

	info := PortInfo{Path: "/dev/ttyUSB0", Description: "CP2102 bridge", VIDPID: "10C4:EA60"}
	s := info.String()
	for _, want := range []string{"/dev/ttyUSB0", "CP2102 bridge", "[10C4:EA60]"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}

	bare := PortInfo{Path: "COM1"}
	if bare.String() != "COM1" {
		t.Errorf("String() = %q, want bare path", bare.String())
	}
}
