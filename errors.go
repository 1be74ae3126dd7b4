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
	"errors"
	"fmt"
)

// Exchange errors. Every exchange stops at the first one it hits; the
// caller restarts from WriteCommand.
var (
	// ErrInvalidAck is returned when the bytes read after a command do not
	// match the acknowledgement frame.
	ErrInvalidAck = errors.New("invalid ACK frame")
	// ErrTimeout is returned when the ready bit is not observed within the
	// polling budget.
	ErrTimeout = errors.New("timeout waiting for PN532 ready")
	// ErrInvalidFrame covers every structural or checksum mismatch in a
	// response frame.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrNoSpace is returned when the decoded payload does not fit in the
	// caller's buffer. Nothing is copied.
	ErrNoSpace = errors.New("response payload exceeds buffer")
)

// Caller and bus errors
var (
	ErrFrameTooLarge       = errors.New("frame data exceeds 254 bytes")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportClosed     = errors.New("transport closed")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by repeating the exchange
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may clear on the next exchange
	ErrorTypeTransient
	// ErrorTypeTimeout errors are transient errors caused by an expired poll budget
	ErrorTypeTimeout
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return "permanent"
	}
}

// Wire-level result codes reported by the chip driver contract.
const (
	CodeOK           = 0
	CodeInvalidAck   = -1
	CodeTimeout      = -2
	CodeInvalidFrame = -3
	CodeNoSpace      = -4
)

// TransportError wraps an exchange error with the phase and bus it came from
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError whose retryability follows its type
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a timeout error for the given phase
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTimeout, ErrorTypeTimeout)
}

// NewInvalidAckError creates an invalid ACK error
func NewInvalidAckError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrInvalidAck, ErrorTypeTransient)
}

// NewInvalidFrameError wraps a frame decoding error
func NewInvalidFrameError(op, port string, err error) *TransportError {
	if err == nil {
		err = ErrInvalidFrame
	}
	return NewTransportError(op, port, err, ErrorTypeTransient)
}

// NewNoSpaceError creates a buffer capacity error
func NewNoSpaceError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrNoSpace, ErrorTypePermanent)
}

// NewDataTooLargeError creates a frame size error
func NewDataTooLargeError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrFrameTooLarge, ErrorTypePermanent)
}

// IsRetryable reports whether repeating the whole exchange might succeed
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrInvalidAck),
		errors.Is(err, ErrInvalidFrame),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite):
		return true
	default:
		return false
	}
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrInvalidAck),
		errors.Is(err, ErrInvalidFrame),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// ErrorCode maps err onto the numeric result codes of the chip driver
// contract. Errors outside the four exchange kinds map to CodeInvalidAck,
// the generic failure code.
func ErrorCode(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNoSpace):
		return CodeNoSpace
	case errors.Is(err, ErrInvalidFrame):
		return CodeInvalidFrame
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	default:
		return CodeInvalidAck
	}
}
