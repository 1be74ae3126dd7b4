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
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/metrics"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Transport
type Option func(*Transport) error

// WithAddress sets the 7-bit device address
func WithAddress(addr uint16) Option {
	return func(t *Transport) error {
		if addr == 0 || addr > 0x7F {
			return fmt.Errorf("%w: I2C address 0x%X is not a 7-bit address", pn532.ErrInvalidParameter, addr)
		}
		t.address = addr
		return nil
	}
}

// WithBusName sets the bus name used in errors and logs
func WithBusName(name string) Option {
	return func(t *Transport) error {
		t.busName = name
		return nil
	}
}

// WithClock replaces the clock that paces polling
func WithClock(clock pn532.Clock) Option {
	return func(t *Transport) error {
		if clock == nil {
			return fmt.Errorf("%w: nil clock", pn532.ErrInvalidParameter)
		}
		t.clock = clock
		return nil
	}
}

// WithPollInterval sets the pause between two ready checks
func WithPollInterval(interval time.Duration) Option {
	return func(t *Transport) error {
		if interval <= 0 {
			return fmt.Errorf("%w: poll interval must be positive", pn532.ErrInvalidParameter)
		}
		t.interval = interval
		return nil
	}
}

// WithAckTimeout sets how long WriteCommand waits for the ACK
func WithAckTimeout(timeout time.Duration) Option {
	return func(t *Transport) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: ACK timeout must be positive", pn532.ErrInvalidParameter)
		}
		t.ackTimeout = timeout
		return nil
	}
}

// WithTimeout sets the response timeout used by SendCommand. Zero waits forever.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) error {
		return t.SetTimeout(timeout)
	}
}

// WithLogger sets the logger for frame traces
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		t.logger = logger
		return nil
	}
}

// WithMetrics records frame and exchange metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) error {
		t.metrics = m
		return nil
	}
}
