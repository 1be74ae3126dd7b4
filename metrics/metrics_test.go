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

package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ResultOK},
		{name: "invalid ack", err: pn532.NewInvalidAckError("waitAck", "i2c-1"), want: ResultInvalidAck},
		{name: "timeout", err: pn532.NewTimeoutError("readLength", "i2c-1"), want: ResultTimeout},
		{
			name: "invalid frame",
			err:  pn532.NewInvalidFrameError("readFrame", "i2c-1", fmt.Errorf("%w: data checksum", pn532.ErrInvalidFrame)),
			want: ResultInvalidFrame,
		},
		{name: "no space", err: pn532.NewNoSpaceError("readFrame", "i2c-1"), want: ResultNoSpace},
		{name: "other", err: errors.New("boom"), want: ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Result(tt.err))
		})
	}
}

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FrameSent()
	m.FrameSent()
	m.FrameReceived()
	m.ObserveResult("writeCommand", nil)
	m.ObserveResult("readResponse", pn532.NewTimeoutError("readLength", ""))
	m.ObservePolls("waitAck", 3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Frames.WithLabelValues("tx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Frames.WithLabelValues("rx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Exchanges.WithLabelValues("writeCommand", ResultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Exchanges.WithLabelValues("readResponse", ResultTimeout)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Polls))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.FrameSent()
		m.FrameReceived()
		m.ObservePolls("waitAck", 1)
		m.ObserveResult("writeCommand", nil)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	m := New(reg)
	m.FrameSent()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `pn532_frames_total{direction="tx"} 1`))
}
