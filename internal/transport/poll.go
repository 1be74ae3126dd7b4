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

// Package transport provides internal transport utilities
package transport

import (
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
)

// DefaultPollInterval is the pause between two ready checks
const DefaultPollInterval = time.Millisecond

// ReadyFunc performs one read burst and reports whether the peer signalled
// ready. A failed read reports false.
type ReadyFunc func() bool

// PollConfig configures a ready-bit polling loop
type PollConfig struct {
	// Clock suspends the caller between polls
	Clock pn532.Clock
	// Interval is the pause after each unsuccessful poll
	Interval time.Duration
	// MaxPolls is the number of pauses allowed before giving up.
	// Zero polls forever.
	MaxPolls int
}

// Poll calls ready until it returns true. After every unsuccessful call it
// sleeps for Interval; once more than MaxPolls sleeps have elapsed it
// returns pn532.ErrTimeout. It returns the number of sleeps taken.
func Poll(config PollConfig, ready ReadyFunc) (int, error) {
	clock := config.Clock
	if clock == nil {
		clock = pn532.SystemClock{}
	}

	for polls := 0; ; {
		if ready() {
			return polls, nil
		}

		clock.Sleep(config.Interval)
		polls++

		if config.MaxPolls > 0 && polls > config.MaxPolls {
			return polls, pn532.ErrTimeout
		}
	}
}

// PollsFor converts a timeout into a poll budget, rounding up. A zero or
// negative timeout yields zero, which Poll treats as unbounded.
func PollsFor(timeout, interval time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return int((timeout + interval - 1) / interval)
}
