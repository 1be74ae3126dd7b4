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

// Package config loads pn532ctl settings from a file and the environment
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PN532_BUS_NAME
const EnvPrefix = "PN532"

// BusConfig selects and tunes the I2C bus
type BusConfig struct {
	Name            string        `mapstructure:"name"`
	Driver          string        `mapstructure:"driver"`
	Replay          string        `mapstructure:"replay"`
	Address         uint16        `mapstructure:"address"`
	PollInterval    time.Duration `mapstructure:"pollInterval"`
	AckTimeout      time.Duration `mapstructure:"ackTimeout"`
	ResponseTimeout time.Duration `mapstructure:"responseTimeout"`
}

// RetryConfig mirrors pn532.RetryConfig
type RetryConfig struct {
	MaxAttempts       int           `mapstructure:"maxAttempts"`
	InitialBackoff    time.Duration `mapstructure:"initialBackoff"`
	MaxBackoff        time.Duration `mapstructure:"maxBackoff"`
	BackoffMultiplier float64       `mapstructure:"backoffMultiplier"`
	Jitter            float64       `mapstructure:"jitter"`
	RetryTimeout      time.Duration `mapstructure:"retryTimeout"`
}

// LumberjackConfig configures log file rotation
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures log level and outputs
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// MonitorConfig paces repeated firmware queries
type MonitorConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

// DetectConfig configures bus detection
type DetectConfig struct {
	Mode        string        `mapstructure:"mode"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IgnorePaths []string      `mapstructure:"ignorePaths"`
}

// Config is the top-level configuration
type Config struct {
	Bus     BusConfig     `mapstructure:"bus"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Detect  DetectConfig  `mapstructure:"detect"`
}

// Load reads configuration from path (YAML, TOML or JSON) and PN532_*
// environment variables. With an empty path, pn532.yaml is looked up in the
// working directory and /etc/pn532; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pn532")
		v.SetConfigName("pn532")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check by type
func (c *Config) Validate() error {
	switch c.Bus.Driver {
	case "periph", "dev", "replay":
	default:
		return fmt.Errorf("bus.driver: unknown driver %q", c.Bus.Driver)
	}
	if c.Bus.Driver == "replay" && c.Bus.Replay == "" {
		return errors.New("bus.replay: a script is required for the replay driver")
	}
	if c.Bus.Address == 0 || c.Bus.Address > 0x7F {
		return fmt.Errorf("bus.address: 0x%X is not a 7-bit address", c.Bus.Address)
	}
	if c.Bus.ResponseTimeout < 0 {
		return errors.New("bus.responseTimeout: must not be negative")
	}
	if c.Monitor.Rate <= 0 {
		return errors.New("monitor.rate: must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bus.name", "/dev/i2c-1")
	v.SetDefault("bus.driver", "periph")
	v.SetDefault("bus.replay", "")
	v.SetDefault("bus.address", 0x24)
	v.SetDefault("bus.pollInterval", "1ms")
	v.SetDefault("bus.ackTimeout", "10ms")
	v.SetDefault("bus.responseTimeout", "1s")

	v.SetDefault("retry.maxAttempts", 3)
	v.SetDefault("retry.initialBackoff", "10ms")
	v.SetDefault("retry.maxBackoff", "200ms")
	v.SetDefault("retry.backoffMultiplier", 2.0)
	v.SetDefault("retry.jitter", 0.1)
	v.SetDefault("retry.retryTimeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 7)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("monitor.rate", 2.0)
	v.SetDefault("monitor.burst", 1)

	v.SetDefault("detect.mode", "safe")
	v.SetDefault("detect.timeout", "5s")
}
