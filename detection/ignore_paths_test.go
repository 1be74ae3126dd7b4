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
	"testing"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := getPathIgnoredTests()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsPathIgnored(tt.devicePath, tt.ignorePaths)
			if result != tt.expected {
				t.Errorf("IsPathIgnored(%q, %v) = %v, want %v",
					tt.devicePath, tt.ignorePaths, result, tt.expected)
			}
		})
	}
}

type pathIgnoredTest struct {
	name        string
	devicePath  string
	ignorePaths []string
	expected    bool
}

func getPathIgnoredTests() []pathIgnoredTest {
	basicTests := []pathIgnoredTest{
		{
			name:        "empty ignore list",
			devicePath:  "/dev/i2c-1:0x24",
			ignorePaths: []string{},
			expected:    false,
		},
		{
			name:        "empty device path",
			devicePath:  "",
			ignorePaths: []string{"/dev/i2c-1:0x24"},
			expected:    false,
		},
		{
			name:        "exact match",
			devicePath:  "/dev/i2c-1:0x24",
			ignorePaths: []string{"/dev/i2c-1:0x24"},
			expected:    true,
		},
		{
			name:        "bus path ignores every address",
			devicePath:  "/dev/i2c-1:0x24",
			ignorePaths: []string{"/dev/i2c-1"},
			expected:    true,
		},
		{
			name:        "bus prefix is not a bus",
			devicePath:  "/dev/i2c-10:0x24",
			ignorePaths: []string{"/dev/i2c-1"},
			expected:    false,
		},
	}

	caseTests := []pathIgnoredTest{
		{
			name:        "case insensitive address",
			devicePath:  "/dev/i2c-1:0x2A",
			ignorePaths: []string{"/dev/i2c-1:0x2a"},
			expected:    true,
		},
	}

	multipleTests := []pathIgnoredTest{
		{
			name:        "other address",
			devicePath:  "/dev/i2c-1:0x25",
			ignorePaths: []string{"/dev/i2c-1:0x24"},
			expected:    false,
		},
		{
			name:        "multiple paths with match",
			devicePath:  "/dev/i2c-2:0x24",
			ignorePaths: []string{"/dev/i2c-1", "/dev/i2c-2:0x24"},
			expected:    true,
		},
		{
			name:        "multiple paths no match",
			devicePath:  "/dev/i2c-3:0x24",
			ignorePaths: []string{"/dev/i2c-1", "/dev/i2c-2:0x24"},
			expected:    false,
		},
	}

	specialTests := []pathIgnoredTest{
		{
			name:        "path with relative components",
			devicePath:  "/dev/../dev/i2c-1:0x24",
			ignorePaths: []string{"/dev/i2c-1:0x24"},
			expected:    true,
		},
		{
			name:        "empty strings in ignore list",
			devicePath:  "/dev/i2c-1:0x24",
			ignorePaths: []string{"", "/dev/i2c-1:0x24", ""},
			expected:    true,
		},
	}

	result := make([]pathIgnoredTest, 0, len(basicTests)+len(caseTests)+len(multipleTests)+len(specialTests))
	result = append(result, basicTests...)
	result = append(result, caseTests...)
	result = append(result, multipleTests...)
	result = append(result, specialTests...)
	return result
}

func TestOptionsWithIgnorePaths(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if opts.IgnorePaths != nil {
		t.Errorf("DefaultOptions().IgnorePaths should be nil, got %v", opts.IgnorePaths)
	}
	if opts.Address != 0x24 {
		t.Errorf("DefaultOptions().Address = 0x%02X, want 0x24", opts.Address)
	}
}

func TestDevicePath(t *testing.T) {
	t.Parallel()

	if got := DevicePath("/dev/i2c-1", 0x24); got != "/dev/i2c-1:0x24" {
		t.Errorf("DevicePath() = %q", got)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{Passive, Safe, Full} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("aggressive"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}
