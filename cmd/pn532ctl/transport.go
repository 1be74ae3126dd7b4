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

package main

import (
	"fmt"
	"io"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/internal/config"
	pntest "github.com/ZaparooProject/go-pn532i2c/internal/testing"
	"github.com/ZaparooProject/go-pn532i2c/metrics"
	"github.com/ZaparooProject/go-pn532i2c/transport/i2c"
	"go.uber.org/zap"
)

// openBus opens the bus selected by cfg.Driver
func openBus(cfg config.BusConfig) (pn532.Bus, error) {
	switch cfg.Driver {
	case "periph":
		bus, err := i2c.OpenPeriphBus(cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to open I2C bus: %w", err)
		}
		return bus, nil
	case "dev":
		bus, err := i2c.OpenDevBus(cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to open I2C bus: %w", err)
		}
		return bus, nil
	case "replay":
		script, err := pntest.LoadScript(cfg.Replay)
		if err != nil {
			return nil, fmt.Errorf("failed to load replay script: %w", err)
		}
		return pntest.NewScriptedBusFromScript(script).Lenient(), nil
	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}
}

// openTransport opens the configured bus and creates an I2C transport on it
func openTransport(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*i2c.Transport, error) {
	bus, err := openBus(cfg.Bus)
	if err != nil {
		return nil, err
	}

	busName := cfg.Bus.Name
	if cfg.Bus.Driver == "replay" {
		busName = cfg.Bus.Replay
	}

	opts := []i2c.Option{
		i2c.WithBusName(busName),
		i2c.WithAddress(cfg.Bus.Address),
		i2c.WithTimeout(cfg.Bus.ResponseTimeout),
		i2c.WithLogger(logger.Named("i2c")),
		i2c.WithMetrics(m),
	}
	if cfg.Bus.PollInterval > 0 {
		opts = append(opts, i2c.WithPollInterval(cfg.Bus.PollInterval))
	}
	if cfg.Bus.AckTimeout > 0 {
		opts = append(opts, i2c.WithAckTimeout(cfg.Bus.AckTimeout))
	}

	transport, err := i2c.NewWithBus(bus, opts...)
	if err != nil {
		if c, ok := bus.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("failed to create I2C transport: %w", err)
	}
	return transport, nil
}
