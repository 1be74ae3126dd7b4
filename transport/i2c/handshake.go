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
	"errors"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/internal/frame"
	"github.com/ZaparooProject/go-pn532i2c/internal/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sendFrame encodes header+body and writes it in a single burst
func (t *Transport) sendFrame(header, body []byte) error {
	frm, err := frame.AppendFrame(t.tx[:0], header, body)
	if err != nil {
		t.logger.Debug("command does not fit in a frame", zap.Error(err))
		return pn532.NewDataTooLargeError("sendFrame", t.busName)
	}

	t.trace("write", frm)

	if err := t.bus.Write(t.address, frm); err != nil {
		return &pn532.TransportError{
			Op: "sendFrame", Port: t.busName,
			Err:       fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err),
			Type:      pn532.ErrorTypeTransient,
			Retryable: true,
		}
	}

	t.metrics.FrameSent()
	return nil
}

// waitAck polls until the PN532 is ready and checks for the ACK frame
func (t *Transport) waitAck() error {
	buf := t.rx[:1+frame.AckLength]

	t.logger.Debug("waiting for ACK")
	if err := t.poll("waitAck", buf, transport.PollsFor(t.ackTimeout, t.interval)); err != nil {
		t.logger.Debug("timeout waiting for ACK", zap.Duration("ackTimeout", t.ackTimeout))
		return err
	}

	if !frame.IsAck(buf[1:]) {
		t.trace("invalid ACK", buf[1:])
		return pn532.NewInvalidAckError("waitAck", t.busName)
	}
	return nil
}

// readLength reads the frame announcement to learn the response length,
// then asks the PN532 to send the whole frame again.
func (t *Transport) readLength(maxPolls int) (int, error) {
	hdr := t.rx[:1+frame.HeaderLength]

	if err := t.poll("readLength", hdr, maxPolls); err != nil {
		return 0, err
	}

	length, err := frame.DecodeLength(hdr[1:])
	if err != nil {
		t.trace("invalid frame start", hdr[1:])
		return 0, pn532.NewInvalidFrameError("readLength", t.busName, err)
	}

	// The probe consumed the announcement; request redelivery of the frame.
	if err := t.bus.Write(t.address, frame.NackFrame); err != nil {
		return 0, &pn532.TransportError{
			Op: "readLength", Port: t.busName,
			Err:       fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err),
			Type:      pn532.ErrorTypeTransient,
			Retryable: true,
		}
	}

	return length, nil
}

// readFrame reads the full frame of the announced length and decodes it
// against the remembered command.
func (t *Transport) readFrame(buf []byte, length, maxPolls int) (int, error) {
	raw := t.rx[:1+frame.HeaderLength+length+frame.TrailerLength]

	if err := t.poll("readFrame", raw, maxPolls); err != nil {
		return 0, err
	}

	t.trace("read", raw[1:])

	n, err := frame.DecodeFull(raw[1:], t.command, buf)
	switch {
	case errors.Is(err, pn532.ErrNoSpace):
		t.logger.Debug("response does not fit", zap.Int("capacity", len(buf)), zap.Int("length", length))
		return 0, pn532.NewNoSpaceError("readFrame", t.busName)
	case err != nil:
		t.logger.Debug("invalid response frame", zap.Error(err))
		return 0, pn532.NewInvalidFrameError("readFrame", t.busName, err)
	}

	t.metrics.FrameReceived()
	return n, nil
}

// poll reads buf until its status byte has the ready bit set. Bytes of
// reads that are not ready are never looked at.
func (t *Transport) poll(op string, buf []byte, maxPolls int) error {
	polls, err := transport.Poll(transport.PollConfig{
		Clock:    t.clock,
		Interval: t.interval,
		MaxPolls: maxPolls,
	}, func() bool {
		if err := t.bus.Read(t.address, buf); err != nil {
			return false
		}
		return buf[0]&pn532Ready != 0
	})

	t.metrics.ObservePolls(op, polls)
	if err != nil {
		return pn532.NewTimeoutError(op, t.busName)
	}
	return nil
}

func (t *Transport) trace(msg string, data []byte) {
	if ce := t.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(zap.String("data", fmt.Sprintf("% X", data)))
	}
}
