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
	"fmt"
	"time"
)

// Interface is the frame-level contract a PN532 link exposes to the command
// set built on top of it.
//
// One exchange is WriteCommand followed by ReadResponse. Exchanges must not
// overlap: a second WriteCommand replaces the remembered command code and
// the next ReadResponse validates only against it.
type Interface interface {
	// Begin prepares the link and forgets any remembered command
	Begin() error

	// Wakeup wakes a sleeping PN532. Reserved; implementations may no-op.
	Wakeup() error

	// WriteCommand sends header+body as one information frame and waits for
	// the ACK. header[0] is the command code.
	WriteCommand(header, body []byte) error

	// ReadResponse waits for the response to the last command and copies its
	// payload (after the response code) into buf. A zero timeout waits forever.
	ReadResponse(buf []byte, timeout time.Duration) (int, error)
}

// Transport defines the command-level interface used by higher layers.
// SendCommand runs one full exchange.
type Transport interface {
	// SendCommand sends a command to the PN532 and waits for response.
	// The returned slice starts with the response code (cmd+1).
	SendCommand(cmd byte, args []byte) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the response timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport and repeats whole exchanges that
// failed with a retryable error.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// SendCommand sends a command with retry logic
func (t *TransportWithRetry) SendCommand(cmd byte, args []byte) ([]byte, error) {
	return t.SendCommandContext(context.Background(), cmd, args)
}

// SendCommandContext sends a command with retry logic, stopping early when
// ctx is done.
func (t *TransportWithRetry) SendCommandContext(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	tc := AsTransportContext(t.transport)

	var result []byte
	err := RetryWithConfig(ctx, t.config, func(ctx context.Context) error {
		var err error
		result, err = tc.SendCommandContext(ctx, cmd, args)
		if err != nil {
			return &TransportError{
				Op:        "SendCommand",
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// SetTimeout sets the response timeout for the transport
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	if err := t.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
