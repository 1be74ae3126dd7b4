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

// Package i2c detects PN532 controllers on I2C buses
package i2c

import (
	"context"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/detection"
	pni2c "github.com/ZaparooProject/go-pn532i2c/transport/i2c"
)

const (
	// DefaultPN532Address is the standard I2C address for PN532 (0x48 >> 1)
	DefaultPN532Address = pn532.DefaultAddress

	cmdGetFirmwareVersion = 0x02
	pn532IC               = 0x32
)

// detector implements the Detector interface for I2C devices
type detector struct{}

// New creates a new I2C detector
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(pn532.TransportI2C)
}

// Detect searches for PN532 devices on I2C buses
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}
	return detectPlatform(ctx, opts)
}

// Firmware is the decoded GetFirmwareVersion response
type Firmware struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

// String formats the firmware as "PN532 v1.6"
func (f Firmware) String() string {
	return fmt.Sprintf("PN5%02X v%d.%d", f.IC, f.Version, f.Revision)
}

// Metadata returns the firmware fields as detection metadata
func (f Firmware) Metadata() map[string]string {
	return map[string]string{
		"ic":       fmt.Sprintf("0x%02X", f.IC),
		"version":  fmt.Sprintf("%d.%d", f.Version, f.Revision),
		"support":  fmt.Sprintf("0x%02X", f.Support),
		"firmware": f.String(),
	}
}

// ParseFirmware decodes a SendCommand response to GetFirmwareVersion
func ParseFirmware(resp []byte) (Firmware, error) {
	if len(resp) < 5 || resp[0] != cmdGetFirmwareVersion+1 {
		return Firmware{}, fmt.Errorf("%w: unexpected firmware response % X", pn532.ErrInvalidFrame, resp)
	}
	return Firmware{IC: resp[1], Version: resp[2], Revision: resp[3], Support: resp[4]}, nil
}

// Probe runs one GetFirmwareVersion exchange with the device at addr and
// returns its firmware. The bus is left open.
func Probe(ctx context.Context, bus pn532.Bus, addr uint16, opts ...pni2c.Option) (Firmware, error) {
	t, err := pni2c.NewWithBus(bus, append([]pni2c.Option{pni2c.WithAddress(addr)}, opts...)...)
	if err != nil {
		return Firmware{}, err
	}

	resp, err := t.SendCommandContext(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return Firmware{}, err
	}
	return ParseFirmware(resp)
}

// candidate builds the DeviceInfo for addr on busPath, probing it through
// bus unless the mode is passive. ok is false when the candidate should be
// dropped.
func candidate(
	ctx context.Context,
	bus pn532.Bus,
	busPath string,
	addr uint16,
	opts *detection.Options,
) (device detection.DeviceInfo, ok bool) {
	devicePath := detection.DevicePath(busPath, addr)
	if detection.IsPathIgnored(devicePath, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	device = detection.DeviceInfo{
		Transport: string(pn532.TransportI2C),
		Path:      devicePath,
		Name:      fmt.Sprintf("I2C device at %s address 0x%02X", busPath, addr),
		Metadata: map[string]string{
			"bus":     busPath,
			"address": fmt.Sprintf("0x%02X", addr),
		},
		Confidence: detection.Low,
	}
	if addr == opts.Address {
		device.Confidence = detection.Medium
	}

	if opts.Mode == detection.Passive {
		return device, device.Confidence == detection.Medium
	}

	probeOpts := []pni2c.Option{pni2c.WithBusName(busPath)}
	if opts.ProbeTimeout > 0 {
		probeOpts = append(probeOpts,
			pni2c.WithAckTimeout(opts.ProbeTimeout),
			pni2c.WithTimeout(opts.ProbeTimeout))
	}

	fw, err := Probe(ctx, bus, addr, probeOpts...)
	if err != nil || fw.IC != pn532IC {
		// Low confidence devices that don't answer are dropped
		return device, device.Confidence == detection.Medium
	}

	device.Confidence = detection.High
	device.Name = fmt.Sprintf("%s at %s", fw, devicePath)
	for k, v := range fw.Metadata() {
		device.Metadata[k] = v
	}
	return device, true
}
