// go-pn532i2c
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532i2c.
//
// go-pn532i2c is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532i2c is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532i2c; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

/*
Package pn532 provides the transport layer for PN532 NFC controllers
attached over I2C.

The PN532 speaks a framed host protocol: every command is wrapped in an
information frame with length and data checksums, acknowledged by a fixed
ACK frame, and answered with a response frame whose first data byte is the
command code plus one. Over I2C every read starts with a status byte whose
low bit tells whether the controller has data ready; the host polls that
bit instead of waiting on an IRQ line.

This package defines the shared pieces: the Interface and Transport
contracts, the Bus abstraction over a raw I2C adapter, error sentinels and
their classification, and retry helpers. The I2C implementation lives in
transport/i2c.

Basic Usage:

	import (
	    pn532 "github.com/ZaparooProject/go-pn532i2c"
	    "github.com/ZaparooProject/go-pn532i2c/transport/i2c"
	)

	transport, err := i2c.New("/dev/i2c-1")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Frame level: one command, one response
	if err := transport.WriteCommand([]byte{0x02}, nil); err != nil {
	    log.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := transport.ReadResponse(buf, time.Second)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("firmware: % X\n", buf[:n])

	// Command level, with retries
	rt := pn532.NewTransportWithRetry(transport, nil)
	resp, err := rt.SendCommand(0x02, nil)

Error Handling:

Exchange failures wrap one of four sentinels that map onto the numeric
codes of the chip driver contract:

	switch {
	case errors.Is(err, pn532.ErrNoSpace):
	    // buffer too small, nothing was copied
	case errors.Is(err, pn532.ErrTimeout):
	    // ready bit never observed
	}

IsRetryable reports whether repeating the whole exchange might help.

Thread Safety:

WriteCommand and ReadResponse must not be interleaved between goroutines.
SendCommand serializes complete exchanges.
*/
package pn532
