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
	"testing"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// response builds a PN532-to-host frame answering with code
func response(code byte, payload ...byte) []byte {
	data := append([]byte{code}, payload...)
	length := byte(len(data) + 1)
	raw := []byte{Preamble, StartCode1, StartCode2, length, CalculateLengthChecksum(length), Pn532ToHost}
	raw = append(raw, data...)
	return append(raw, CalculateDataChecksum(Pn532ToHost, data), Postamble)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		body   []byte
		want   []byte
	}{
		{
			name:   "GetFirmwareVersion",
			header: []byte{0x02},
			want:   []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00},
		},
		{
			name:   "header and body",
			header: []byte{0x4A, 0x01},
			body:   []byte{0x00},
			want:   []byte{0x00, 0x00, 0xFF, 0x04, 0xFC, 0xD4, 0x4A, 0x01, 0x00, 0xE1, 0x00},
		},
		{
			name:   "SAMConfiguration",
			header: []byte{0x14},
			body:   []byte{0x01, 0x14, 0x01},
			want:   []byte{0x00, 0x00, 0xFF, 0x05, 0xFB, 0xD4, 0x14, 0x01, 0x14, 0x01, 0x02, 0x00},
		},
		{
			name: "no data",
			want: []byte{0x00, 0x00, 0xFF, 0x01, 0xFF, 0xD4, 0x2C, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Encode(tt.header, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_SizeLimit(t *testing.T) {
	t.Parallel()

	got, err := Encode([]byte{0x40}, make([]byte, MaxDataLength-1))
	require.NoError(t, err)
	assert.Len(t, got, MaxFrameLength)
	assert.Equal(t, byte(0xFF), got[3])
	assert.Equal(t, byte(0x01), got[4])

	_, err = Encode([]byte{0x40}, make([]byte, MaxDataLength))
	require.ErrorIs(t, err, pn532.ErrFrameTooLarge)
}

func TestAppendFrame_KeepsPrefix(t *testing.T) {
	t.Parallel()

	dst := []byte{0xAA}
	got, err := AppendFrame(dst, []byte{0x02}, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), got[0])
	assert.Len(t, got, 10)

	same, err := AppendFrame(dst, make([]byte, 300), nil)
	require.Error(t, err)
	assert.Equal(t, dst, same)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 253; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*31 + n)
		}
		split := n / 3
		header, body := data[:split+1], data[split+1:]

		raw, err := Encode(header, body)
		require.NoError(t, err, "n=%d", n)

		assert.Zero(t, raw[3]+raw[4], "n=%d: LEN+LCS", n)
		assert.Zero(t, CalculateChecksum(raw[HeaderLength:len(raw)-1]), "n=%d: TFI+data+DCS", n)

		got, err := Decode(raw, HostToPn532)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, data, got, "n=%d", n)
	}
}

func TestDecode_WrongDirection(t *testing.T) {
	t.Parallel()

	raw, err := Encode([]byte{0x02}, nil)
	require.NoError(t, err)

	_, err = Decode(raw, Pn532ToHost)
	require.ErrorIs(t, err, pn532.ErrInvalidFrame)
}

func TestDecodeLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		hdr     []byte
		want    int
	}{
		{
			name: "firmware version announcement",
			hdr:  []byte{0x00, 0x00, 0xFF, 0x06, 0xFA},
			want: 6,
		},
		{
			name: "length checksum not checked yet",
			hdr:  []byte{0x00, 0x00, 0xFF, 0x06, 0x00},
			want: 6,
		},
		{
			name:    "bad preamble",
			hdr:     []byte{0x01, 0x00, 0xFF, 0x06, 0xFA},
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "bad start code",
			hdr:     []byte{0x00, 0x00, 0xFE, 0x06, 0xFA},
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "short header",
			hdr:     []byte{0x00, 0x00, 0xFF},
			wantErr: pn532.ErrInvalidFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeLength(tt.hdr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFull(t *testing.T) {
	t.Parallel()

	raw := response(0x03, 0x32, 0x01, 0x06, 0x07)
	out := make([]byte, 8)

	n, err := DecodeFull(raw, 0x02, out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x32, 0x01, 0x06, 0x07}, out[:n])
}

func TestDecodeFull_EmptyPayload(t *testing.T) {
	t.Parallel()

	n, err := DecodeFull(response(0x15), 0x14, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDecodeFull_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		raw     []byte
		cmd     byte
		outLen  int
	}{
		{
			name:    "response to another command",
			raw:     response(0x03, 0x32),
			cmd:     0x4A,
			outLen:  8,
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "host direction",
			raw:     []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x03, 0x29, 0x00},
			cmd:     0x02,
			outLen:  8,
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "length below response minimum",
			raw:     []byte{0x00, 0x00, 0xFF, 0x01, 0xFF, 0xD5, 0x2B, 0x00},
			cmd:     0x02,
			outLen:  8,
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "truncated",
			raw:     response(0x03, 0x32, 0x01, 0x06, 0x07)[:8],
			cmd:     0x02,
			outLen:  8,
			wantErr: pn532.ErrInvalidFrame,
		},
		{
			name:    "buffer too small",
			raw:     response(0x03, 0x32, 0x01, 0x06, 0x07),
			cmd:     0x02,
			outLen:  3,
			wantErr: pn532.ErrNoSpace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeFull(tt.raw, tt.cmd, make([]byte, tt.outLen))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeFull_NoSpaceLeavesBufferUntouched(t *testing.T) {
	t.Parallel()

	out := bytes.Repeat([]byte{0xEE}, 3)
	_, err := DecodeFull(response(0x03, 0x32, 0x01, 0x06, 0x07), 0x02, out)
	require.ErrorIs(t, err, pn532.ErrNoSpace)
	assert.Equal(t, []byte{0xEE, 0xEE, 0xEE}, out)
}

func TestDecodeFull_BadChecksumLeavesBufferUntouched(t *testing.T) {
	t.Parallel()

	raw := response(0x03, 0x32, 0x01, 0x06, 0x07)
	raw[len(raw)-2]++

	out := bytes.Repeat([]byte{0xEE}, 8)
	_, err := DecodeFull(raw, 0x02, out)
	require.ErrorIs(t, err, pn532.ErrInvalidFrame)
	assert.Equal(t, bytes.Repeat([]byte{0xEE}, 8), out)
}

// Flipping any byte from the preamble through DCS must be rejected.
func TestDecodeFull_SingleByteFlips(t *testing.T) {
	t.Parallel()

	valid := response(0x41, 0x00, 0x04, 0xAB, 0xCD, 0xEF)
	dcs := len(valid) - 2

	for pos := 0; pos <= dcs; pos++ {
		for _, mask := range []byte{0x01, 0x80, 0xFF} {
			raw := append([]byte(nil), valid...)
			raw[pos] ^= mask

			_, err := DecodeFull(raw, 0x40, make([]byte, 16))
			require.ErrorIs(t, err, pn532.ErrInvalidFrame, "pos=%d mask=0x%02X", pos, mask)
		}
	}
}

func TestIsAck(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAck([]byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}))
	assert.False(t, IsAck(NackFrame))
	assert.False(t, IsAck(AckFrame[:5]))
}
