// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ZaparooProject/go-xbee"
	"github.com/ZaparooProject/go-xbee/detection"
)

// Config is the merged result of defaults, the TOML file and flags
type Config struct {
	Device       string
	Transport    string
	Detect       DetectConfig
	Log          LogConfig
	BaudRate     int
	SPIFrequency int64
	Timeout      time.Duration
	Retries      int
}

// DetectConfig controls auto detection when no device is configured
type DetectConfig struct {
	Mode        string
	IgnorePaths []string
	Blocklist   []string
	Timeout     time.Duration
}

// LogConfig controls the CLI logger
type LogConfig struct {
	Level  string
	Format string
	File   LogFileConfig
	Debug  bool
}

// LogFileConfig enables rotating file output when Filename is set
type LogFileConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func defaultConfig() Config {
	return Config{
		Transport:    string(xbee.TransportUART),
		BaudRate:     9600,
		SPIFrequency: 1_000_000,
		Timeout:      2 * time.Second,
		Retries:      3,
		Detect: DetectConfig{
			Mode:    detection.Safe.String(),
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File: LogFileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 7,
			},
		},
	}
}

// xbeecat.toml key mapping
type fileConfig struct {
	Device       string     `toml:"device"`
	Transport    string     `toml:"transport"`
	Timeout      string     `toml:"timeout"`
	Detect       fileDetect `toml:"detect"`
	Log          fileLog    `toml:"log"`
	BaudRate     int        `toml:"baud_rate"`
	SPIFrequency int64      `toml:"spi_frequency_hz"`
	Retries      int        `toml:"retries"`
}

type fileDetect struct {
	Mode        string   `toml:"mode"`
	Timeout     string   `toml:"timeout"`
	IgnorePaths []string `toml:"ignore_paths"`
	Blocklist   []string `toml:"blocklist"`
}

type fileLog struct {
	Level  string      `toml:"level"`
	Format string      `toml:"format"`
	File   fileLogFile `toml:"file"`
	Debug  bool        `toml:"debug"`
}

type fileLogFile struct {
	Filename   string `toml:"filename"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// loadConfig overlays the keys defined in path onto the defaults. An empty
// path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("load config: unknown keys %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("spi_frequency_hz") {
		cfg.SPIFrequency = raw.SPIFrequency
	}
	if meta.IsDefined("retries") {
		cfg.Retries = raw.Retries
	}
	if meta.IsDefined("timeout") {
		if cfg.Timeout, err = parseDuration("timeout", raw.Timeout); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("detect", "mode") {
		cfg.Detect.Mode = strings.ToLower(strings.TrimSpace(raw.Detect.Mode))
	}
	if meta.IsDefined("detect", "timeout") {
		if cfg.Detect.Timeout, err = parseDuration("detect.timeout", raw.Detect.Timeout); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("detect", "ignore_paths") {
		cfg.Detect.IgnorePaths = raw.Detect.IgnorePaths
	}
	if meta.IsDefined("detect", "blocklist") {
		cfg.Detect.Blocklist = raw.Detect.Blocklist
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "format") {
		cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
	}
	if meta.IsDefined("log", "debug") {
		cfg.Log.Debug = raw.Log.Debug
	}
	if meta.IsDefined("log", "file", "filename") {
		cfg.Log.File.Filename = strings.TrimSpace(raw.Log.File.Filename)
	}
	if meta.IsDefined("log", "file", "max_size_mb") {
		cfg.Log.File.MaxSizeMB = raw.Log.File.MaxSizeMB
	}
	if meta.IsDefined("log", "file", "max_backups") {
		cfg.Log.File.MaxBackups = raw.Log.File.MaxBackups
	}
	if meta.IsDefined("log", "file", "max_age_days") {
		cfg.Log.File.MaxAgeDays = raw.Log.File.MaxAgeDays
	}
	if meta.IsDefined("log", "file", "compress") {
		cfg.Log.File.Compress = raw.Log.File.Compress
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("load config: %s: %w", key, err)
	}
	return d, nil
}

func (c *Config) validate() error {
	switch xbee.TransportType(c.Transport) {
	case xbee.TransportUART, xbee.TransportSPI:
	default:
		return fmt.Errorf("unsupported transport %q (expected uart or spi)", c.Transport)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if _, err := detection.ParseMode(c.Detect.Mode); err != nil {
		return err
	}
	return nil
}

// detectionOptions converts the detect table for the detection package
func (c *Config) detectionOptions() *detection.Options {
	opts := detection.DefaultOptions()
	opts.Mode, _ = detection.ParseMode(c.Detect.Mode)
	opts.Timeout = c.Detect.Timeout
	opts.Transports = []string{string(xbee.TransportUART)}
	opts.IgnorePaths = c.Detect.IgnorePaths
	opts.BaudRates = []int{c.BaudRate}
	if c.Detect.Blocklist != nil {
		opts.Blocklist = c.Detect.Blocklist
	}
	return &opts
}
