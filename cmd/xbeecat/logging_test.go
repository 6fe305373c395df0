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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-xbee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestInitLogger_ConsoleLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := initLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", zap.String("port", "/dev/ttyUSB0"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"port":"/dev/ttyUSB0"`)
}

func TestInitLogger_DebugOverridesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := initLogger(LogConfig{Level: "error", Debug: true}, &buf)
	log.Debug("frame bytes")
	assert.Contains(t, buf.String(), "frame bytes")
}

func TestInitLogger_RotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "xbeecat.log")
	var console bytes.Buffer
	log := initLogger(LogConfig{
		Level:  "info",
		Format: "console",
		File:   LogFileConfig{Filename: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}, &console)
	log.Info("radio connected")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "radio connected")
	assert.Contains(t, console.String(), "radio connected")
}

func TestDiagnosticLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	report := diagnosticLogger(zap.New(core))

	report(xbee.Diagnostic{Kind: xbee.DiagnosticUnsynchronized, Byte: 0x41})
	report(xbee.Diagnostic{
		Kind:  xbee.DiagnosticChecksum,
		Byte:  0x00,
		Frame: []byte{0x7E, 0x00, 0x02, 0x8A, 0x06, 0x00},
	})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "checksum", entries[1].ContextMap()["kind"])
	assert.Contains(t, entries[1].ContextMap(), "discarded")
	assert.NotContains(t, entries[0].ContextMap(), "discarded")
}
