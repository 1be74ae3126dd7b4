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

package frame

import (
	"bytes"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
)

// Encode builds a host-to-PN532 information frame carrying header followed by body:
//
//	00 00 FF LEN LCS D4 header... body... DCS 00
func Encode(header, body []byte) ([]byte, error) {
	return AppendFrame(make([]byte, 0, len(header)+len(body)+HeaderLength+1+TrailerLength), header, body)
}

// AppendFrame appends the frame Encode would build to dst. dst is returned
// unchanged when the data does not fit in a normal frame.
func AppendFrame(dst, header, body []byte) ([]byte, error) {
	dataLen := len(header) + len(body)
	if dataLen > MaxDataLength {
		// TODO: extended frames (LEN=FF FF) are not implemented
		return dst, fmt.Errorf("%w: %d bytes", pn532.ErrFrameTooLarge, dataLen)
	}

	length := byte(dataLen + 1) // TFI + data
	dst = append(dst, Preamble, StartCode1, StartCode2, length, CalculateLengthChecksum(length), HostToPn532)
	dst = append(dst, header...)
	dst = append(dst, body...)

	sum := HostToPn532 + CalculateChecksum(header) + CalculateChecksum(body)
	return append(dst, ^sum+1, Postamble), nil
}

// Decode validates a normal information frame sent with the given TFI and
// returns its data, the bytes between TFI and DCS, as a subslice of raw.
func Decode(raw []byte, tfi byte) ([]byte, error) {
	if len(raw) < HeaderLength {
		return nil, fmt.Errorf("%w: short frame (%d bytes)", pn532.ErrInvalidFrame, len(raw))
	}
	if err := checkStart(raw); err != nil {
		return nil, err
	}

	length := raw[3]
	if length+raw[4] != 0 {
		return nil, fmt.Errorf("%w: length checksum", pn532.ErrInvalidFrame)
	}
	if length == 0 {
		return nil, fmt.Errorf("%w: empty frame", pn532.ErrInvalidFrame)
	}

	end := HeaderLength + int(length) + 1
	if len(raw) < end {
		return nil, fmt.Errorf("%w: truncated (%d of %d bytes)", pn532.ErrInvalidFrame, len(raw), end)
	}
	if raw[5] != tfi {
		return nil, fmt.Errorf("%w: direction 0x%02X", pn532.ErrInvalidFrame, raw[5])
	}
	if ValidateChecksum(raw[HeaderLength:end]) {
		return nil, fmt.Errorf("%w: data checksum", pn532.ErrInvalidFrame)
	}
	return raw[HeaderLength+1 : end-1], nil
}

// DecodeLength validates the frame announcement (the first five bytes after
// the ready byte) and returns its LEN field. LCS is not checked here; it is
// checked when the full frame is decoded.
func DecodeLength(hdr []byte) (int, error) {
	if len(hdr) < HeaderLength {
		return 0, fmt.Errorf("%w: short header (%d bytes)", pn532.ErrInvalidFrame, len(hdr))
	}
	if err := checkStart(hdr); err != nil {
		return 0, err
	}
	return int(hdr[3]), nil
}

// DecodeFull validates a PN532-to-host frame (without the ready byte) that
// answers cmd and copies its payload, the bytes after the response code,
// into out. It returns the payload length.
//
// Nothing is copied unless the whole frame is valid and the payload fits.
func DecodeFull(raw []byte, cmd byte, out []byte) (int, error) {
	if len(raw) < HeaderLength {
		return 0, fmt.Errorf("%w: short frame (%d bytes)", pn532.ErrInvalidFrame, len(raw))
	}
	if err := checkStart(raw); err != nil {
		return 0, err
	}

	length := raw[3]
	if length+raw[4] != 0 {
		return 0, fmt.Errorf("%w: length checksum", pn532.ErrInvalidFrame)
	}
	if length < 2 {
		return 0, fmt.Errorf("%w: length %d too short for a response", pn532.ErrInvalidFrame, length)
	}

	// TFI through DCS
	end := HeaderLength + int(length) + 1
	if len(raw) < end {
		return 0, fmt.Errorf("%w: truncated (%d of %d bytes)", pn532.ErrInvalidFrame, len(raw), end)
	}

	if raw[5] != Pn532ToHost {
		return 0, fmt.Errorf("%w: direction 0x%02X", pn532.ErrInvalidFrame, raw[5])
	}
	if raw[6] != cmd+1 {
		return 0, fmt.Errorf("%w: response code 0x%02X for command 0x%02X", pn532.ErrInvalidFrame, raw[6], cmd)
	}

	n := int(length) - 2
	if n > len(out) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", pn532.ErrNoSpace, n, len(out))
	}

	if ValidateChecksum(raw[HeaderLength:end]) {
		return 0, fmt.Errorf("%w: data checksum", pn532.ErrInvalidFrame)
	}

	return copy(out, raw[HeaderLength+2:HeaderLength+2+n]), nil
}

// IsAck reports whether p is the ACK frame
func IsAck(p []byte) bool {
	return bytes.Equal(p, AckFrame)
}

func checkStart(b []byte) error {
	if b[0] != Preamble || b[1] != StartCode1 || b[2] != StartCode2 {
		return fmt.Errorf("%w: bad start sequence % X", pn532.ErrInvalidFrame, b[:3])
	}
	return nil
}
