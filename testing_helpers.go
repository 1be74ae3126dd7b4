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
	"sync"
	"time"
)

// MockTransport is a command-level Transport for testing code that sits on
// top of the frame layer. Responses and errors are configured per command
// code; errors queued with QueueError are returned first, one per call.
type MockTransport struct {
	responses map[byte][]byte
	errors    map[byte]error
	queued    map[byte][]error
	calls     map[byte]int
	lastArgs  map[byte][]byte
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a mock transport with no configured responses
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[byte][]byte),
		errors:    make(map[byte]error),
		queued:    make(map[byte][]error),
		calls:     make(map[byte]int),
		lastArgs:  make(map[byte][]byte),
		timeout:   time.Second,
	}
}

// SetResponse configures the response returned for cmd
func (m *MockTransport) SetResponse(cmd byte, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = append([]byte(nil), response...)
}

// SetError configures an error returned for every call of cmd
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[cmd] = err
}

// QueueError makes the next call of cmd fail with err. Queued errors are
// consumed in order before SetError and SetResponse apply.
func (m *MockTransport) QueueError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[cmd] = append(m.queued[cmd], err)
}

// SendCommand implements Transport
func (m *MockTransport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, NewTransportError("SendCommand", "mock", ErrTransportClosed, ErrorTypePermanent)
	}

	m.calls[cmd]++
	m.lastArgs[cmd] = append([]byte(nil), args...)

	if q := m.queued[cmd]; len(q) > 0 {
		m.queued[cmd] = q[1:]
		return nil, q[0]
	}
	if err, ok := m.errors[cmd]; ok {
		return nil, err
	}
	if resp, ok := m.responses[cmd]; ok {
		return append([]byte(nil), resp...), nil
	}
	return nil, fmt.Errorf("%w: no mock response for command 0x%02X", ErrInvalidFrame, cmd)
}

// SendCommandContext implements TransportContext
func (m *MockTransport) SendCommandContext(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before sending command: %w", err)
	}
	return m.SendCommand(cmd, args)
}

// CallCount returns how many times cmd was sent
func (m *MockTransport) CallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[cmd]
}

// LastArgs returns the arguments of the last call of cmd
func (m *MockTransport) LastArgs(cmd byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastArgs[cmd]
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout implements Transport
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrInvalidParameter, timeout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var (
	_ Transport        = (*MockTransport)(nil)
	_ TransportContext = (*MockTransport)(nil)
)
