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

// Package metrics exposes Prometheus metrics for PN532 frame exchanges.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultOK           = "ok"
	ResultInvalidAck   = "invalid_ack"
	ResultTimeout      = "timeout"
	ResultInvalidFrame = "invalid_frame"
	ResultNoSpace      = "no_space"
	ResultError        = "error"
)

// Metrics holds the exchange collectors
type Metrics struct {
	Frames    *prometheus.CounterVec   // labels: direction=tx|rx
	Exchanges *prometheus.CounterVec   // labels: op, result
	Polls     *prometheus.HistogramVec // labels: phase
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pn532",
			Name:      "frames_total",
			Help:      "Information frames written to and accepted from the PN532.",
		}, []string{"direction"}),
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pn532",
			Name:      "exchange_results_total",
			Help:      "WriteCommand and ReadResponse outcomes.",
		}, []string{"op", "result"}),
		Polls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pn532",
			Name:      "ready_polls",
			Help:      "Not-ready polls before the PN532 signalled ready or the budget ran out.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 500, 1000},
		}, []string{"phase"}),
	}

	if reg != nil {
		reg.MustRegister(m.Frames, m.Exchanges, m.Polls)
	}
	return m
}

// NewRegistry creates a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the Prometheus HTTP handler for reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// FrameSent counts a command frame written to the bus
func (m *Metrics) FrameSent() {
	if m == nil {
		return
	}
	m.Frames.WithLabelValues("tx").Inc()
}

// FrameReceived counts a response frame that decoded successfully
func (m *Metrics) FrameReceived() {
	if m == nil {
		return
	}
	m.Frames.WithLabelValues("rx").Inc()
}

// ObservePolls records how many polls a phase needed
func (m *Metrics) ObservePolls(phase string, polls int) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(phase).Observe(float64(polls))
}

// ObserveResult counts the outcome of op
func (m *Metrics) ObserveResult(op string, err error) {
	if m == nil {
		return
	}
	m.Exchanges.WithLabelValues(op, Result(err)).Inc()
}

// Result maps err to its result label
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, pn532.ErrInvalidAck):
		return ResultInvalidAck
	case errors.Is(err, pn532.ErrTimeout):
		return ResultTimeout
	case errors.Is(err, pn532.ErrInvalidFrame):
		return ResultInvalidFrame
	case errors.Is(err, pn532.ErrNoSpace):
		return ResultNoSpace
	default:
		return ResultError
	}
}
