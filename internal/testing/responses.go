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

// Package testing provides bus fixtures for exercising PN532 transports
// without hardware.
package testing

import (
	"github.com/ZaparooProject/go-pn532i2c/internal/frame"
)

// Ready status bytes that prefix every bus read
const (
	StatusReady    byte = 0x01
	StatusNotReady byte = 0x00
)

// Command bytes for reference
const (
	CmdGetFirmwareVersion  = 0x02
	CmdSAMConfiguration    = 0x14
	CmdInDataExchange      = 0x40
	CmdInListPassiveTarget = 0x4A
)

// ResponseFrame builds a PN532-to-host information frame carrying the
// response code and payload.
func ResponseFrame(code byte, payload ...byte) []byte {
	data := append([]byte{code}, payload...)
	length := byte(len(data) + 1)

	raw := make([]byte, 0, len(data)+frame.HeaderLength+1+frame.TrailerLength)
	raw = append(raw, frame.Preamble, frame.StartCode1, frame.StartCode2,
		length, frame.CalculateLengthChecksum(length), frame.Pn532ToHost)
	raw = append(raw, data...)
	return append(raw, frame.CalculateDataChecksum(frame.Pn532ToHost, data), frame.Postamble)
}

// CommandFrame builds the host-to-PN532 frame the transport writes for
// header and body. It panics on oversized input.
func CommandFrame(header, body []byte) []byte {
	raw, err := frame.Encode(header, body)
	if err != nil {
		panic(err)
	}
	return raw
}

// Ready prefixes raw with the ready status byte, as the PN532 presents it
// on the bus.
func Ready(raw []byte) []byte {
	return append([]byte{StatusReady}, raw...)
}

// AckRead is the bus read that carries an ACK
func AckRead() []byte {
	return Ready(frame.AckFrame)
}

// LengthProbe is the bus read the transport performs to learn the length
// of resp: the ready byte plus the first five frame bytes.
func LengthProbe(resp []byte) []byte {
	return Ready(resp)[:1+frame.HeaderLength]
}

// BuildFirmwareVersionResponse creates a GetFirmwareVersion response frame
// for a PN532 version 1.6 that supports ISO14443A/B and ISO18092.
func BuildFirmwareVersionResponse() []byte {
	return ResponseFrame(CmdGetFirmwareVersion+1, 0x32, 0x01, 0x06, 0x07)
}

// BuildSAMConfigurationResponse creates a SAMConfiguration response frame
func BuildSAMConfigurationResponse() []byte {
	return ResponseFrame(CmdSAMConfiguration + 1)
}

// BuildDataExchangeResponse creates an InDataExchange response frame
func BuildDataExchangeResponse(data []byte) []byte {
	return ResponseFrame(CmdInDataExchange+1, append([]byte{0x00}, data...)...)
}

// BuildErrorResponse creates a response frame whose status byte is errorCode
func BuildErrorResponse(cmd, errorCode byte) []byte {
	return ResponseFrame(cmd+1, errorCode)
}

// ExchangeSteps returns the bus traffic of one complete, successful
// exchange of header+body answered by resp.
func ExchangeSteps(header, body, resp []byte) []Step {
	return []Step{
		WriteStep(CommandFrame(header, body)),
		ReadStep(AckRead()),
		ReadStep(LengthProbe(resp)),
		WriteStep(frame.NackFrame),
		ReadStep(Ready(resp)),
	}
}
