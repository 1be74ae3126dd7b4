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

// Package detection finds PN532 controllers attached to the host
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no candidate device was found
	ErrNoDevicesFound = errors.New("no PN532 devices found")
	// ErrDetectionTimeout is returned when the context ends mid-scan
	ErrDetectionTimeout = errors.New("device detection timed out")
	// ErrUnsupportedPlatform is returned where bus enumeration is not available
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode controls how intrusive detection is
type Mode int

const (
	// Passive only enumerates buses and reports the default address
	Passive Mode = iota
	// Safe runs one GetFirmwareVersion exchange at the configured address
	Safe
	// Full also scans every 7-bit address for responders
	Full
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Safe:
		return "safe"
	case Full:
		return "full"
	default:
		return "passive"
	}
}

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch s {
	case "passive", "":
		return Passive, nil
	case "safe":
		return Safe, nil
	case "full":
		return Full, nil
	default:
		return Passive, fmt.Errorf("unknown detection mode %q", s)
	}
}

// Confidence rates how likely a candidate is a PN532
type Confidence int

const (
	// Low means something answered at an unusual address
	Low Confidence = iota
	// Medium means a bus with the default address, not confirmed
	Medium
	// High means the device answered GetFirmwareVersion with a valid frame
	High
)

// String returns the confidence name
func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// DeviceInfo describes a detected device
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// Options configures detection
type Options struct {
	IgnorePaths  []string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Mode         Mode
	Address      uint16
}

// DefaultOptions returns the default detection options
func DefaultOptions() Options {
	return Options{
		Mode:         Safe,
		Timeout:      5 * time.Second,
		ProbeTimeout: 250 * time.Millisecond,
		Address:      0x24,
	}
}

// Detector finds devices on one kind of transport
type Detector interface {
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
	Transport() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// RegisterDetector makes a detector available to DetectAll. Registering the
// same transport twice replaces the earlier detector.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors ordered by transport name
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	detectors := make([]Detector, 0, len(registry))
	for _, d := range registry {
		detectors = append(detectors, d)
	}
	sort.Slice(detectors, func(i, j int) bool {
		return detectors[i].Transport() < detectors[j].Transport()
	})
	return detectors
}

// DetectAll runs every registered detector and merges the results, highest
// confidence first. Detector errors are ignored unless nothing was found.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		devices []DeviceInfo
		errs    []error
	)
	for _, d := range Detectors() {
		found, err := d.Detect(ctx, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
			continue
		}
		devices = append(devices, found...)
	}

	if len(devices) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(append([]error{ErrNoDevicesFound}, errs...)...)
		}
		return nil, ErrNoDevicesFound
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices, nil
}
