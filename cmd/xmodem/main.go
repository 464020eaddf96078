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

// Command xmodem sends or receives a file over a serial link using the
// XMODEM protocol.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	xmodem "github.com/retrolink/go-xmodem"
	"github.com/retrolink/go-xmodem/detection"
	"github.com/retrolink/go-xmodem/transport/serialport"
)

// Exit codes: success, usage error, session cancelled, channel/file I/O
// failure.
const (
	exitOK        = 0
	exitUsage     = 1
	exitCancelled = 2
	exitFailed    = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return exitUsage
	}

	switch args[0] {
	case "send":
		return runSend(args[1:])
	case "receive":
		return runReceive(args[1:])
	case "ports":
		return runPorts()
	case "help", "-h", "--help":
		usage()
		return exitOK
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		usage()
		return exitUsage
	}
}

func usage() {
	_, _ = fmt.Fprintln(os.Stderr, `Usage:
  xmodem send    -port <device> -file <path> [options]
  xmodem receive -port <device> -file <path> [options]
  xmodem ports

Options:
  -port     serial device path (e.g. /dev/ttyUSB0 or COM3)
  -file     file to send, or destination for received data
  -mode     error detection: checksum or crc16 (default crc16)
  -baud     line speed (default 9600)
  -timeout  per-read deadline (default 10s)
  -retries  per-block retry budget (default 10)
  -debug    enable protocol trace logging`)
}

type transferConfig struct {
	port    string
	file    string
	mode    string
	timeout time.Duration
	baud    int
	retries int
	debug   bool
}

func parseTransferFlags(name string, args []string) (*transferConfig, error) {
	cfg := &transferConfig{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.port, "port", "", "serial device path")
	fs.StringVar(&cfg.file, "file", "", "file to transfer")
	fs.StringVar(&cfg.mode, "mode", xmodem.ModeCRC16.String(), "checksum or crc16")
	fs.IntVar(&cfg.baud, "baud", serialport.DefaultBaudRate, "line speed")
	fs.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "per-read deadline")
	fs.IntVar(&cfg.retries, "retries", 10, "per-block retry budget")
	fs.BoolVar(&cfg.debug, "debug", false, "enable protocol trace logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.port == "" {
		return nil, errors.New("-port is required")
	}
	if cfg.file == "" {
		return nil, errors.New("-file is required")
	}
	if cfg.debug {
		xmodem.SetDebugEnabled(true)
	}
	return cfg, nil
}

func (cfg *transferConfig) engineOptions() ([]xmodem.Option, error) {
	mode, err := xmodem.ParseMode(cfg.mode)
	if err != nil {
		return nil, err
	}
	return []xmodem.Option{
		xmodem.WithMode(mode),
		xmodem.WithTimeout(cfg.timeout),
		xmodem.WithMaxRetries(cfg.retries),
	}, nil
}

func (cfg *transferConfig) openTransport() (*serialport.Transport, error) {
	transport, err := serialport.New(cfg.port, serialport.WithBaudRate(cfg.baud))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.port, err)
	}
	return transport, nil
}

func runSend(args []string) int {
	cfg, err := parseTransferFlags("send", args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	opts, err := cfg.engineOptions()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	f, err := os.Open(cfg.file)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", cfg.file, err)
		return exitFailed
	}
	defer func() { _ = f.Close() }()

	transport, err := cfg.openTransport()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	defer func() { _ = transport.Close() }()

	sender, err := xmodem.NewSender(transport, f, opts...)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	_, _ = fmt.Printf("Sending %s over %s, waiting for receiver...\n", cfg.file, cfg.port)
	if err := sender.Send(); err != nil {
		return reportFailure("send", err)
	}
	_, _ = fmt.Printf("Transfer completed: %d blocks (%s mode).\n",
		sender.Session().Blocks, sender.Session().Mode)
	return exitOK
}

func runReceive(args []string) int {
	cfg, err := parseTransferFlags("receive", args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	opts, err := cfg.engineOptions()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	transport, err := cfg.openTransport()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	defer func() { _ = transport.Close() }()

	var sink bytes.Buffer
	receiver, err := xmodem.NewReceiver(transport, &sink, opts...)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	_, _ = fmt.Printf("Receiving into %s over %s...\n", cfg.file, cfg.port)
	if err := receiver.Receive(); err != nil {
		return reportFailure("receive", err)
	}

	data := xmodem.TrimPadding(sink.Bytes(), xmodem.PadByte)
	if err := os.WriteFile(cfg.file, data, 0o644); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", cfg.file, err)
		return exitFailed
	}
	_, _ = fmt.Printf("Transfer completed: %d blocks, %d bytes saved.\n",
		receiver.Session().Blocks, len(data))
	return exitOK
}

func runPorts() int {
	ports, err := detection.ListPorts()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	if len(ports) == 0 {
		_, _ = fmt.Println("No serial ports found.")
		return exitOK
	}
	for _, p := range ports {
		_, _ = fmt.Println(p.String())
	}
	return exitOK
}

// reportFailure prints the terminal error and maps it to an exit code:
// cancellation is distinct from an I/O failure.
func reportFailure(op string, err error) int {
	_, _ = fmt.Fprintf(os.Stderr, "%s failed: %v\n", op, err)
	if errors.Is(err, xmodem.ErrTransferCancelled) {
		return exitCancelled
	}
	return exitFailed
}
