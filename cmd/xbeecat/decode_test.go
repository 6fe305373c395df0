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
	"context"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/ZaparooProject/go-xbee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// escaped wire captures of the frames in describe_test.go
const (
	zbRxWire       = "7E000E90007D33A200400A01271234017D5E4142"
	zbIOSampleWire = "7E001692007D33A20040522BAAFFFE0101000182000102000BB809"
)

func runCLI(t *testing.T, stdin io.Reader, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd := newRootCmd(stdin, &out, &errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDecode_Args(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, nil, "decode", "7E", "00", "02", "8A", "06", "6F")
	require.NoError(t, err)
	assert.Equal(t, "ModemStatusResponse status=coordinator started\n", out)
}

func TestDecode_StdinHex(t *testing.T) {
	t.Parallel()

	input := modemStatusHex + "\n" + zbTxStatusHex + "\n" + zbRxWire + "\n"
	out, _, err := runCLI(t, strings.NewReader(input), "decode")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ModemStatusResponse"))
	assert.True(t, strings.HasPrefix(lines[1], "ZBTxStatusResponse"))
	assert.Contains(t, lines[2], "data=7e41")
}

func TestDecode_StdinRaw(t *testing.T) {
	t.Parallel()

	wire, err := hex.DecodeString(zbIOSampleWire)
	require.NoError(t, err)

	out, _, err := runCLI(t, bytes.NewReader(wire), "decode", "--raw", "--output", "yaml")
	require.NoError(t, err)

	var records []struct {
		Fields map[string]any `yaml:"fields"`
		Type   string         `yaml:"type"`
		APIID  string         `yaml:"api_id"`
		Length int            `yaml:"length"`
		OK     bool           `yaml:"checksum_ok"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ZBIOSampleResponse", rec.Type)
	assert.Equal(t, "0x92", rec.APIID)
	assert.Equal(t, 22, rec.Length)
	assert.True(t, rec.OK)

	samples, ok := rec.Fields["samples"].([]any)
	require.True(t, ok)
	require.Len(t, samples, 1)
	assert.Equal(t, map[string]any{"D0": true, "A1": 512, "supply": 3000}, samples[0])
}

func TestDecode_DropsAreLogged(t *testing.T) {
	t.Parallel()

	out, errOut, err := runCLI(t, nil, "decode", "--log-level", "warn", "FF 7E00028A0600")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "decoder dropped input")
	assert.Contains(t, errOut, "checksum")
}

func TestDecode_InvalidInput(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, nil, "decode", "7E0G")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hex input")

	_, _, err = runCLI(t, nil, "decode", "--output", "json", modemStatusHex)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestDecodeStream_Diagnostics(t *testing.T) {
	t.Parallel()

	input, err := hex.DecodeString("0102" + modemStatusHex)
	require.NoError(t, err)

	var dropped int
	records := decodeStream(input, func(xbee.Diagnostic) { dropped++ })
	require.Len(t, records, 1)
	assert.Equal(t, 2, dropped)
}
