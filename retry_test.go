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

package pn532

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithConfig(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("permanent")

	tests := []struct {
		wantErr   error
		name      string
		failures  []error
		attempts  int
		wantCalls int
	}{
		{
			name:      "success first try",
			attempts:  3,
			wantCalls: 1,
		},
		{
			name:      "success after retryable failures",
			failures:  []error{ErrTimeout, ErrInvalidFrame},
			attempts:  3,
			wantCalls: 3,
		},
		{
			name:      "non-retryable stops immediately",
			failures:  []error{errPermanent},
			attempts:  3,
			wantErr:   errPermanent,
			wantCalls: 1,
		},
		{
			name:      "attempts exhausted",
			failures:  []error{ErrTimeout, ErrTimeout, ErrTimeout},
			attempts:  2,
			wantErr:   ErrTimeout,
			wantCalls: 2,
		},
		{
			name:      "zero attempts means one",
			failures:  []error{ErrTimeout},
			attempts:  0,
			wantErr:   ErrTimeout,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := RetryWithConfig(context.Background(), fastRetryConfig(tt.attempts), func(context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRetryWithConfig_RetryTimeout(t *testing.T) {
	t.Parallel()

	config := &RetryConfig{
		MaxAttempts:       100,
		InitialBackoff:    20 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 1,
		RetryTimeout:      30 * time.Millisecond,
	}

	calls := 0
	err := RetryWithConfig(context.Background(), config, func(context.Context) error {
		calls++
		return ErrTimeout
	})

	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, calls, 100)
}

func TestRetryWithConfig_AttemptsSeeRetryDeadline(t *testing.T) {
	t.Parallel()

	config := fastRetryConfig(1)
	config.RetryTimeout = 30 * time.Millisecond

	var deadline time.Time
	var hasDeadline bool
	start := time.Now()
	err := RetryWithConfig(context.Background(), config, func(ctx context.Context) error {
		deadline, hasDeadline = ctx.Deadline()
		return nil
	})

	require.NoError(t, err)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(30*time.Millisecond), deadline, 25*time.Millisecond)
}

func TestRetryWithConfig_NilConfig(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), nil, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	config := &RetryConfig{BackoffMultiplier: 2, MaxBackoff: 50 * time.Millisecond}

	assert.Equal(t, 20*time.Millisecond, nextBackoff(10*time.Millisecond, config))
	assert.Equal(t, 50*time.Millisecond, nextBackoff(40*time.Millisecond, config))

	config.BackoffMultiplier = 0.5
	assert.Equal(t, 10*time.Millisecond, nextBackoff(10*time.Millisecond, config), "multiplier below 1 holds the delay")
}

func TestWithJitter(t *testing.T) {
	t.Parallel()

	base := 10 * time.Millisecond
	assert.Equal(t, base, withJitter(base, 0))
	assert.Equal(t, time.Duration(0), withJitter(0, 0.5))

	for range 100 {
		got := withJitter(base, 5)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, 2*base)
	}
}
