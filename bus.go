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

package pn532

import "time"

// DefaultAddress is the 7-bit I2C address of the PN532 (0x48 >> 1)
const DefaultAddress uint16 = 0x48 >> 1

// Bus is the byte-level bus the transport is built on. Implementations
// perform a single read or write burst addressed to a 7-bit device address.
//
// A failed or short Read is not a hard error for the transport: it is
// treated as "not ready yet" and polled again.
type Bus interface {
	// Read fills p with len(p) bytes read from addr
	Read(addr uint16, p []byte) error

	// Write writes p to addr in one burst
	Write(addr uint16, p []byte) error
}

// Clock suspends the caller between polls. Tests inject a fake so that no
// real time passes.
type Clock interface {
	Sleep(d time.Duration)
}

// SystemClock sleeps with time.Sleep
type SystemClock struct{}

// Sleep implements Clock
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// BusFunc adapts a pair of functions to the Bus interface
type BusFunc struct {
	ReadFunc  func(addr uint16, p []byte) error
	WriteFunc func(addr uint16, p []byte) error
}

// Read implements Bus
func (b BusFunc) Read(addr uint16, p []byte) error {
	if b.ReadFunc == nil {
		return ErrTransportRead
	}
	return b.ReadFunc(addr, p)
}

// Write implements Bus
func (b BusFunc) Write(addr uint16, p []byte) error {
	if b.WriteFunc == nil {
		return ErrTransportWrite
	}
	return b.WriteFunc(addr, p)
}
