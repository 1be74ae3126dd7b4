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

package detection

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}

		// A bare bus path ignores every address on that bus
		if normalizedDevice == normalizedPath(ignorePath) ||
			strings.HasPrefix(normalizedDevice, normalizedPath(ignorePath)+":") {
			return true
		}
	}
	return false
}

// DevicePath joins a bus path and a 7-bit address as "/dev/i2c-1:0x24"
func DevicePath(busPath string, addr uint16) string {
	return fmt.Sprintf("%s:0x%02X", busPath, addr)
}

func normalizedPath(path string) string {
	bus, addr, ok := strings.Cut(path, ":")
	cleaned := filepath.Clean(bus)
	if ok {
		cleaned += ":" + addr
	}
	return strings.ToLower(cleaned)
}
