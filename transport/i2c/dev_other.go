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

//go:build !linux

package i2c

import (
	pn532 "github.com/ZaparooProject/go-pn532i2c"
)

// DevBus is only available on Linux
type DevBus struct{}

// OpenDevBus is a stub for non-Linux platforms
func OpenDevBus(string) (*DevBus, error) {
	return nil, pn532.ErrUnsupportedPlatform
}

// Read implements pn532.Bus
func (*DevBus) Read(uint16, []byte) error {
	return pn532.ErrUnsupportedPlatform
}

// Write implements pn532.Bus
func (*DevBus) Write(uint16, []byte) error {
	return pn532.ErrUnsupportedPlatform
}

// Close implements io.Closer
func (*DevBus) Close() error {
	return nil
}

// String returns an empty name
func (*DevBus) String() string {
	return ""
}
