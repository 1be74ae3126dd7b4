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

// Command pn532ctl talks to a PN532 over I2C: it reads the firmware
// version, monitors the link, or looks for controllers on the host's buses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"github.com/ZaparooProject/go-pn532i2c/internal/config"
	"github.com/ZaparooProject/go-pn532i2c/internal/logging"
	"github.com/ZaparooProject/go-pn532i2c/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type flags struct {
	configPath  *string
	bus         *string
	driver      *string
	replay      *string
	address     *uint
	timeout     *time.Duration
	metricsAddr *string
	rate        *float64
	count       *int
	debug       *bool
	monitor     *bool
	detect      *bool
}

func parseFlags(args []string, output io.Writer) (*flags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("pn532ctl", flag.ContinueOnError)
	fs.SetOutput(output)

	f := &flags{
		configPath:  fs.String("config", "", "Config file (default: ./pn532.yaml or /etc/pn532/pn532.yaml if present)"),
		bus:         fs.String("bus", "", "I2C bus name or device path (e.g., /dev/i2c-1 or 1)"),
		driver:      fs.String("driver", "", "Bus driver: periph, dev or replay"),
		replay:      fs.String("replay", "", "YAML bus script played by the replay driver"),
		address:     fs.Uint("address", 0, "7-bit I2C address of the PN532 (default: 0x24)"),
		timeout:     fs.Duration("timeout", 0, "Response timeout, 0 waits forever (default: from config)"),
		metricsAddr: fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9532)"),
		rate:        fs.Float64("rate", 0, "Queries per second in monitor mode"),
		count:       fs.Int("count", 0, "Stop monitor mode after this many queries (0: run until interrupted)"),
		debug:       fs.Bool("debug", false, "Enable debug output"),
		monitor:     fs.Bool("monitor", false, "Query the firmware version repeatedly"),
		detect:      fs.Bool("detect", false, "List PN532 controllers found on the I2C buses"),
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, f *flags, fs *flag.FlagSet) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "bus":
			cfg.Bus.Name = *f.bus
		case "driver":
			cfg.Bus.Driver = *f.driver
		case "replay":
			cfg.Bus.Replay = *f.replay
			if !isSet(fs, "driver") {
				cfg.Bus.Driver = "replay"
			}
		case "address":
			cfg.Bus.Address = uint16(*f.address) // #nosec G115 -- validated below
		case "timeout":
			cfg.Bus.ResponseTimeout = *f.timeout
		case "metrics-addr":
			cfg.Metrics.Addr = *f.metricsAddr
		case "rate":
			cfg.Monitor.Rate = *f.rate
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		}
	})
	if isSet(fs, "address") && *f.address > 0x7F {
		return fmt.Errorf("address 0x%X is not a 7-bit address", *f.address)
	}
	return cfg.Validate()
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f, fs); err != nil {
		return err
	}

	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	pn532.SetLogger(logger.Named("pn532"))

	if *f.detect {
		return runDetect(ctx, cfg, stdout)
	}

	registry := metrics.NewRegistry()
	m := metrics.New(registry)
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics, registry, logger)
		defer stop()
	}

	transport, err := openTransport(cfg, logger, m)
	if err != nil {
		return err
	}
	defer func() { _ = transport.Close() }()

	if err := transport.Begin(); err != nil {
		return fmt.Errorf("failed to initialize transport: %w", err)
	}
	if err := transport.Wakeup(); err != nil {
		return fmt.Errorf("failed to wake up PN532: %w", err)
	}

	rt := pn532.NewTransportWithRetry(transport, retryConfig(cfg.Retry))

	if *f.monitor {
		return runMonitor(ctx, rt, cfg.Monitor, *f.count, stdout, logger)
	}

	fw, err := queryFirmware(ctx, rt)
	if err != nil {
		return err
	}
	printFirmware(stdout, fw)
	return nil
}

func retryConfig(c config.RetryConfig) *pn532.RetryConfig {
	return &pn532.RetryConfig{
		MaxAttempts:       c.MaxAttempts,
		InitialBackoff:    c.InitialBackoff,
		MaxBackoff:        c.MaxBackoff,
		BackoffMultiplier: c.BackoffMultiplier,
		Jitter:            c.Jitter,
		RetryTimeout:      c.RetryTimeout,
	}
}

// serveMetrics starts the Prometheus endpoint and returns a function that
// shuts it down.
func serveMetrics(c config.MetricsConfig, registry *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(c.Path, metrics.Handler(registry))

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", c.Addr), zap.String("path", c.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
