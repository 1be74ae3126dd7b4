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
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/go-pn532i2c/detection"
	pni2c "github.com/ZaparooProject/go-pn532i2c/transport/i2c"
	"golang.org/x/sys/unix"
)

const (
	// I2CFuncs is the ioctl command to get adapter functionality
	I2CFuncs = 0x0705

	// I2CFuncI2C indicates plain I2C support
	I2CFuncI2C = 0x00000001

	firstAddress = 0x08
	lastAddress  = 0x77
)

// i2cBusInfo contains information about an I2C bus
type i2cBusInfo struct {
	Path   string // Device path, e.g., "/dev/i2c-1"
	Number int    // Bus number
}

// detectPlatform searches for PN532 devices on Linux I2C buses
func detectPlatform(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findI2CBuses("/dev/i2c-*")
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}

		busDevices, err := detectBusDevices(ctx, bus, opts)
		if err != nil {
			continue // Skip this bus on error
		}
		devices = append(devices, busDevices...)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// detectBusDevices checks a single I2C bus for PN532 devices
func detectBusDevices(ctx context.Context, info i2cBusInfo, opts *detection.Options) ([]detection.DeviceInfo, error) {
	bus, err := pni2c.OpenDevBus(info.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = bus.Close() }()

	addresses := []uint16{opts.Address}
	if opts.Mode == detection.Full {
		addresses = scanI2CBus(ctx, bus)
	}

	devices := make([]detection.DeviceInfo, 0, len(addresses))
	for _, addr := range addresses {
		device, ok := candidate(ctx, bus, info.Path, addr, opts)
		if ok {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

// findI2CBuses discovers I2C adapters matching pattern that support plain
// I2C transfers
func findI2CBuses(pattern string) ([]i2cBusInfo, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]i2cBusInfo, 0, len(matches))
	for _, path := range matches {
		var busNum int
		if _, err := fmt.Sscanf(filepath.Base(path), "i2c-%d", &busNum); err != nil {
			continue
		}

		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, I2CFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&I2CFuncI2C == 0 {
			continue
		}

		buses = append(buses, i2cBusInfo{Path: path, Number: busNum})
	}

	return buses, nil
}

// scanI2CBus returns the addresses that acknowledge a one-byte read. Every
// PN532 read returns at least its status byte.
func scanI2CBus(ctx context.Context, bus *pni2c.DevBus) []uint16 {
	var found []uint16
	buf := make([]byte, 1)
	for addr := uint16(firstAddress); addr <= lastAddress; addr++ {
		if ctx.Err() != nil {
			break
		}
		if err := bus.Read(addr, buf); err == nil {
			found = append(found, addr)
		}
	}
	return found
}
