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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/detection"
	detecti2c "github.com/ZaparooProject/go-pn532i2c/detection/i2c"
	"github.com/ZaparooProject/go-pn532i2c/internal/config"
	pntest "github.com/ZaparooProject/go-pn532i2c/internal/testing"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const cmdGetFirmwareVersion = 0x02

func queryFirmware(ctx context.Context, t pn532.TransportContext) (detecti2c.Firmware, error) {
	resp, err := t.SendCommandContext(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return detecti2c.Firmware{}, fmt.Errorf("GetFirmwareVersion failed: %w", err)
	}
	return detecti2c.ParseFirmware(resp)
}

func supportedProtocols(support byte) string {
	var protocols []string
	if support&0x01 != 0 {
		protocols = append(protocols, "ISO14443A")
	}
	if support&0x02 != 0 {
		protocols = append(protocols, "ISO14443B")
	}
	if support&0x04 != 0 {
		protocols = append(protocols, "ISO18092")
	}
	if len(protocols) == 0 {
		return "none"
	}
	return strings.Join(protocols, " ")
}

func printFirmware(w io.Writer, fw detecti2c.Firmware) {
	_, _ = fmt.Fprintf(w, "%s (IC 0x%02X, support 0x%02X: %s)\n",
		fw, fw.IC, fw.Support, supportedProtocols(fw.Support))
}

// runMonitor queries the firmware version at the configured rate until ctx
// ends, count queries were made, or a replay script runs out. Failed
// queries are logged and counted by the transport metrics.
func runMonitor(
	ctx context.Context,
	t pn532.TransportContext,
	c config.MonitorConfig,
	count int,
	w io.Writer,
	logger *zap.Logger,
) error {
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(c.Rate), burst)

	for n := 0; count == 0 || n < count; n++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil //nolint:nilerr // interrupted
		}

		fw, err := queryFirmware(ctx, t)
		switch {
		case errors.Is(err, pntest.ErrScriptExhausted):
			logger.Info("replay script finished")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			logger.Warn("query failed", zap.Error(err), zap.Int("code", pn532.ErrorCode(err)))
			continue
		}
		printFirmware(w, fw)
	}
	return nil
}

func runDetect(ctx context.Context, cfg *config.Config, w io.Writer) error {
	mode, err := detection.ParseMode(cfg.Detect.Mode)
	if err != nil {
		return err
	}

	opts := detection.DefaultOptions()
	opts.Mode = mode
	opts.Address = cfg.Bus.Address
	opts.IgnorePaths = cfg.Detect.IgnorePaths
	if cfg.Detect.Timeout > 0 {
		opts.Timeout = cfg.Detect.Timeout
	}

	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tCONFIDENCE\tNAME")
	for _, d := range devices {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Path, d.Confidence, d.Name)
	}
	return tw.Flush()
}
