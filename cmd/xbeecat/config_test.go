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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/go-xbee/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xbeecat.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, "uart", cfg.Transport)
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "safe", cfg.Detect.Mode)
}

func TestLoadConfig_OverlaysDefinedKeys(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
device = " /dev/ttyUSB1 "
baud_rate = 115200
timeout = "750ms"

[detect]
mode = "FULL"
ignore_paths = ["/dev/ttyS0"]

[log]
level = "debug"

[log.file]
filename = "/tmp/xbeecat.log"
compress = true
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Device)
	assert.Equal(t, 115200, cfg.BaudRate)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "full", cfg.Detect.Mode)
	assert.Equal(t, []string{"/dev/ttyS0"}, cfg.Detect.IgnorePaths)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/xbeecat.log", cfg.Log.File.Filename)
	assert.True(t, cfg.Log.File.Compress)

	// keys left out keep their defaults
	def := defaultConfig()
	assert.Equal(t, def.Transport, cfg.Transport)
	assert.Equal(t, def.Retries, cfg.Retries)
	assert.Equal(t, def.Detect.Timeout, cfg.Detect.Timeout)
	assert.Equal(t, def.Log.File.MaxSizeMB, cfg.Log.File.MaxSizeMB)
}

func TestLoadConfig_ZeroValuesOverride(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[detect]\nblocklist = []\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Detect.Blocklist)
	assert.Empty(t, cfg.Detect.Blocklist)
	assert.Empty(t, cfg.detectionOptions().Blocklist)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "unknown key", body: "baudrate = 9600\n", wantErr: "unknown keys baudrate"},
		{name: "unknown nested key", body: "[log]\ncolour = true\n", wantErr: "unknown keys log.colour"},
		{name: "bad duration", body: "timeout = \"soon\"\n", wantErr: "timeout"},
		{name: "bad detect duration", body: "[detect]\ntimeout = \"5\"\n", wantErr: "detect.timeout"},
		{name: "bad transport", body: "transport = \"i2c\"\n", wantErr: "unsupported transport"},
		{name: "bad baud", body: "baud_rate = 0\n", wantErr: "baud_rate"},
		{name: "bad retries", body: "retries = 0\n", wantErr: "retries"},
		{name: "bad mode", body: "[detect]\nmode = \"aggressive\"\n", wantErr: "aggressive"},
		{name: "syntax", body: "device = \n", wantErr: "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDetectionOptions(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Detect.Mode = "passive"
	cfg.Detect.Timeout = time.Second
	cfg.Detect.IgnorePaths = []string{"/dev/ttyACM0"}
	cfg.BaudRate = 57600

	opts := cfg.detectionOptions()
	assert.Equal(t, detection.Passive, opts.Mode)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, []string{"uart"}, opts.Transports)
	assert.Equal(t, []string{"/dev/ttyACM0"}, opts.IgnorePaths)
	assert.Equal(t, []int{57600}, opts.BaudRates)
	assert.Equal(t, detection.DefaultOptions().Blocklist, opts.Blocklist)
}
