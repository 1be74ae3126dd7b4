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

package transport

import (
	"testing"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClock struct {
	slept []time.Duration
}

func (c *countingClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
}

func TestPoll_ReadyImmediately(t *testing.T) {
	t.Parallel()

	clock := &countingClock{}
	calls := 0
	polls, err := Poll(PollConfig{Clock: clock, Interval: time.Millisecond, MaxPolls: 10}, func() bool {
		calls++
		return true
	})

	require.NoError(t, err)
	assert.Zero(t, polls)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.slept)
}

func TestPoll_ReadyAfterRetries(t *testing.T) {
	t.Parallel()

	clock := &countingClock{}
	calls := 0
	polls, err := Poll(PollConfig{Clock: clock, Interval: 2 * time.Millisecond, MaxPolls: 10}, func() bool {
		calls++
		return calls == 4
	})

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 2 * time.Millisecond, 2 * time.Millisecond}, clock.slept)
}

func TestPoll_Timeout(t *testing.T) {
	t.Parallel()

	clock := &countingClock{}
	calls := 0
	polls, err := Poll(PollConfig{Clock: clock, Interval: time.Millisecond, MaxPolls: 10}, func() bool {
		calls++
		return false
	})

	require.ErrorIs(t, err, pn532.ErrTimeout)
	assert.Equal(t, 11, polls)
	assert.Equal(t, 11, calls)
	assert.Len(t, clock.slept, 11)
}

func TestPoll_Unbounded(t *testing.T) {
	t.Parallel()

	clock := &countingClock{}
	calls := 0
	polls, err := Poll(PollConfig{Clock: clock, Interval: time.Millisecond}, func() bool {
		calls++
		return calls > 1000
	})

	require.NoError(t, err)
	assert.Equal(t, 1000, polls)
}

func TestPollsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timeout  time.Duration
		interval time.Duration
		want     int
	}{
		{name: "zero is unbounded", timeout: 0, interval: time.Millisecond, want: 0},
		{name: "negative is unbounded", timeout: -time.Second, interval: time.Millisecond, want: 0},
		{name: "exact", timeout: 100 * time.Millisecond, interval: time.Millisecond, want: 100},
		{name: "rounds up", timeout: 1500 * time.Microsecond, interval: time.Millisecond, want: 2},
		{name: "sub-interval", timeout: time.Microsecond, interval: time.Millisecond, want: 1},
		{name: "default interval", timeout: 5 * time.Millisecond, interval: 0, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PollsFor(tt.timeout, tt.interval))
		})
	}
}
