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

// Package detection discovers candidate serial ports for a transfer.
package detection

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one candidate serial port.
type PortInfo struct {
	// Path is the device path (/dev/ttyUSB0, COM3).
	Path string
	// Description is the product or friendly name, when known.
	Description string
	// VIDPID is the USB vendor:product pair as "VVVV:PPPP", when known.
	VIDPID string
	// SerialNumber is the USB serial number, when known.
	SerialNumber string
	// IsUSB reports whether the port sits behind a USB adapter.
	IsUSB bool
}

// String renders the port for CLI listings.
func (p PortInfo) String() string {
	var sb strings.Builder
	sb.WriteString(p.Path)
	if p.Description != "" {
		fmt.Fprintf(&sb, "  %s", p.Description)
	}
	if p.VIDPID != "" {
		fmt.Fprintf(&sb, "  [%s]", p.VIDPID)
	}
	return sb.String()
}

// ListPorts returns the serial ports visible on this machine, sorted by
// path. USB metadata is filled in where the platform exposes it.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		info := PortInfo{
			Path:         d.Name,
			Description:  d.Product,
			SerialNumber: d.SerialNumber,
			IsUSB:        d.IsUSB,
		}
		if d.IsUSB && d.VID != "" && d.PID != "" {
			info.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
		}
		ports = append(ports, info)
	}

	// Some platforms expose ports the enumerator misses (e.g. the Windows
	// registry's SERIALCOMM map); merge those in.
	if extra, err := platformPorts(); err == nil {
		ports = mergePorts(ports, extra)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports, nil
}

// mergePorts combines two port listings, deduplicating by path. Entries in
// primary win over extra.
func mergePorts(primary, extra []PortInfo) []PortInfo {
	seen := make(map[string]bool, len(primary))
	for _, p := range primary {
		seen[p.Path] = true
	}

	merged := primary
	for _, p := range extra {
		if p.Path == "" || seen[p.Path] {
			continue
		}
		seen[p.Path] = true
		merged = append(merged, p)
	}
	return merged
}
