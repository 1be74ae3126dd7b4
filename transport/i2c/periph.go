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

package i2c

import (
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Max clock frequency (400 kHz).
const maxClockFreq = 400 * physic.KiloHertz

// PeriphBus is a pn532.Bus backed by a periph.io I2C bus
type PeriphBus struct {
	bus  i2c.BusCloser
	name string
}

// OpenPeriphBus initializes the periph host drivers and opens the named
// bus ("1", "I2C1" or "/dev/i2c-1"; empty selects the first bus).
func OpenPeriphBus(name string) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", name, err)
	}

	_ = bus.SetSpeed(maxClockFreq) // Ignore error, continue with default speed

	return NewPeriphBus(bus, name), nil
}

// NewPeriphBus wraps an already opened periph.io bus
func NewPeriphBus(bus i2c.BusCloser, name string) *PeriphBus {
	if name == "" {
		name = bus.String()
	}
	return &PeriphBus{bus: bus, name: name}
}

// Read implements pn532.Bus
func (b *PeriphBus) Read(addr uint16, p []byte) error {
	if err := b.bus.Tx(addr, nil, p); err != nil {
		return fmt.Errorf("I2C read failed: %w", err)
	}
	return nil
}

// Write implements pn532.Bus
func (b *PeriphBus) Write(addr uint16, p []byte) error {
	if err := b.bus.Tx(addr, p, nil); err != nil {
		return fmt.Errorf("I2C write failed: %w", err)
	}
	return nil
}

// Close closes the underlying bus
func (b *PeriphBus) Close() error {
	if err := b.bus.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", b.name, err)
	}
	return nil
}

// String returns the bus name
func (b *PeriphBus) String() string {
	return b.name
}

var _ pn532.Bus = (*PeriphBus)(nil)
