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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
}

func (f *fakeDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

func (f *fakeDetector) Transport() string {
	return f.transport
}

// Not parallel: the detector registry is global.
func TestDetectAll(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = make(map[string]Detector)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})

	_, err := DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDevicesFound)

	errBroken := errors.New("broken")
	RegisterDetector(&fakeDetector{transport: "broken", err: errBroken})

	_, err = DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDevicesFound)
	require.ErrorIs(t, err, errBroken)

	RegisterDetector(&fakeDetector{transport: "i2c", devices: []DeviceInfo{
		{Path: "/dev/i2c-1:0x24", Confidence: Medium},
		{Path: "/dev/i2c-2:0x24", Confidence: High},
	}})

	devices, err := DetectAll(context.Background(), &Options{})
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "/dev/i2c-2:0x24", devices[0].Path)
	assert.Len(t, Detectors(), 2)
	assert.Equal(t, "broken", Detectors()[0].Transport())
}
