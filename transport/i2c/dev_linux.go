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

//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"io"
	"sync"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"golang.org/x/sys/unix"
)

// I2C_SLAVE ioctl from linux/i2c-dev.h
const i2cSlave = 0x0703

// DevBus is a pn532.Bus on a Linux i2c-dev character device such as
// /dev/i2c-1. It needs no periph.io host drivers.
type DevBus struct {
	path    string
	mu      sync.Mutex
	fd      int
	addr    uint16
	addrSet bool
}

// OpenDevBus opens an i2c-dev device node
func OpenDevBus(path string) (*DevBus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &DevBus{path: path, fd: fd}, nil
}

// Read implements pn532.Bus
func (b *DevBus) Read(addr uint16, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectAddress(addr); err != nil {
		return err
	}

	n, err := retryEINTR(func() (int, error) { return unix.Read(b.fd, p) })
	if err != nil {
		return fmt.Errorf("I2C read failed: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("I2C read failed: %w (%d of %d bytes)", io.ErrUnexpectedEOF, n, len(p))
	}
	return nil
}

// Write implements pn532.Bus
func (b *DevBus) Write(addr uint16, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.selectAddress(addr); err != nil {
		return err
	}

	n, err := retryEINTR(func() (int, error) { return unix.Write(b.fd, p) })
	if err != nil {
		return fmt.Errorf("I2C write failed: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("I2C write failed: %w (%d of %d bytes)", io.ErrShortWrite, n, len(p))
	}
	return nil
}

// Close closes the device node
func (b *DevBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", b.path, err)
	}
	return nil
}

// String returns the device path
func (b *DevBus) String() string {
	return b.path
}

func (b *DevBus) selectAddress(addr uint16) error {
	if b.fd < 0 {
		return pn532.ErrTransportClosed
	}
	if b.addrSet && b.addr == addr {
		return nil
	}
	if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("failed to select I2C address 0x%02X: %w", addr, err)
	}
	b.addr = addr
	b.addrSet = true
	return nil
}

func retryEINTR(op func() (int, error)) (int, error) {
	for {
		n, err := op()
		if !errors.Is(err, unix.EINTR) {
			return n, err
		}
	}
}

var _ pn532.Bus = (*DevBus)(nil)
