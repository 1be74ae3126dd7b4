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

// Package i2c provides I2C transport implementation for PN532
package i2c

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/internal/frame"
	"github.com/ZaparooProject/go-pn532i2c/internal/transport"
	"github.com/ZaparooProject/go-pn532i2c/metrics"
	"go.uber.org/zap"
)

const (
	// Ready bit in the status byte that prefixes every read.
	pn532Ready = 0x01

	defaultAckTimeout      = 10 * time.Millisecond
	defaultResponseTimeout = 1 * time.Second
)

// Transport implements the PN532 frame protocol over an I2C bus.
//
// The frame-level methods (WriteCommand, ReadResponse) are not safe for
// concurrent use and one exchange must finish before the next starts.
// SendCommand and SendCommandContext serialize complete exchanges and may be
// called from several goroutines.
type Transport struct {
	bus     pn532.Bus
	clock   pn532.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
	busName string
	tx      []byte
	rx      [1 + frame.MaxFrameLength]byte
	payload [frame.MaxLength]byte

	mu              sync.Mutex
	interval        time.Duration
	ackTimeout      time.Duration
	responseTimeout time.Duration
	address         uint16
	command         byte
	closed          bool
}

// New opens the named I2C bus through periph.io and creates a transport on it
func New(busName string, opts ...Option) (*Transport, error) {
	bus, err := OpenPeriphBus(busName)
	if err != nil {
		return nil, err
	}

	t, err := NewWithBus(bus, append([]Option{WithBusName(busName)}, opts...)...)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return t, nil
}

// NewWithBus creates a transport on an already opened bus. If bus
// implements io.Closer, Close closes it.
func NewWithBus(bus pn532.Bus, opts ...Option) (*Transport, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: nil bus", pn532.ErrInvalidParameter)
	}

	t := &Transport{
		bus:             bus,
		clock:           pn532.SystemClock{},
		logger:          pn532.Logger(),
		tx:              make([]byte, 0, frame.MaxFrameLength),
		interval:        transport.DefaultPollInterval,
		ackTimeout:      defaultAckTimeout,
		responseTimeout: defaultResponseTimeout,
		address:         pn532.DefaultAddress,
	}
	if s, ok := bus.(fmt.Stringer); ok {
		t.busName = s.String()
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Begin prepares the transport for a new session. The I2C link needs no
// setup traffic; the remembered command is cleared.
func (t *Transport) Begin() error {
	t.command = 0
	t.logger.Debug("begin", zap.String("bus", t.busName), zap.Uint16("address", t.address))
	return nil
}

// Wakeup is a no-op: over I2C the PN532 wakes when it sees its address.
func (*Transport) Wakeup() error {
	return nil
}

// WriteCommand sends header+body as one frame and waits for the ACK.
// header[0] is remembered as the command the next ReadResponse answers.
func (t *Transport) WriteCommand(header, body []byte) error {
	if len(header) == 0 {
		return pn532.NewTransportError("writeCommand", t.busName,
			fmt.Errorf("%w: header must start with a command code", pn532.ErrInvalidParameter),
			pn532.ErrorTypePermanent)
	}

	t.command = header[0]

	if err := t.sendFrame(header, body); err != nil {
		t.metrics.ObserveResult("writeCommand", err)
		return err
	}

	err := t.waitAck()
	t.metrics.ObserveResult("writeCommand", err)
	return err
}

// ReadResponse waits for the response to the last command and copies its
// payload into buf. A zero timeout waits forever; otherwise each of the two
// polling phases gives up after timeout.
func (t *Transport) ReadResponse(buf []byte, timeout time.Duration) (int, error) {
	maxPolls := transport.PollsFor(timeout, t.interval)

	length, err := t.readLength(maxPolls)
	if err != nil {
		t.metrics.ObserveResult("readResponse", err)
		return 0, err
	}

	n, err := t.readFrame(buf, length, maxPolls)
	t.metrics.ObserveResult("readResponse", err)
	return n, err
}

// SendCommand sends a command to the PN532 and waits for response
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	return t.SendCommandContext(context.Background(), cmd, args)
}

// SendCommandContext runs one exchange. ctx is checked before each phase and
// its deadline, if sooner, bounds the response timeout.
func (t *Transport) SendCommandContext(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before sending command: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, pn532.NewTransportError("SendCommand", t.busName, pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}

	timeout := t.responseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("context deadline passed before sending command: %w", context.DeadlineExceeded)
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}

	if err := t.WriteCommand([]byte{cmd}, args); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled while waiting for command response: %w", err)
	}

	n, err := t.ReadResponse(t.payload[:], timeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, pn532.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}

	resp := make([]byte, n+1)
	resp[0] = cmd + 1
	copy(resp[1:], t.payload[:n])
	return resp, nil
}

// SetTimeout sets the response timeout used by SendCommand. Zero waits forever.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", pn532.ErrInvalidParameter, timeout)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.responseTimeout = timeout
	return nil
}

// Close marks the transport closed and closes the bus if it can be closed
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if c, ok := t.bus.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close I2C bus: %w", err)
		}
	}
	return nil
}

// IsConnected returns true if the transport has a bus and is not closed
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bus != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}

// LastCommand returns the command code the next ReadResponse validates against
func (t *Transport) LastCommand() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.command
}

// Ensure Transport implements the pn532 interfaces
var (
	_ pn532.Interface        = (*Transport)(nil)
	_ pn532.TransportContext = (*Transport)(nil)
)
