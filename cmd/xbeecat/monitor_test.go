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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ZaparooProject/go-xbee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func queueHex(t *testing.T, mock *xbee.MockTransport, frames ...string) {
	t.Helper()
	for _, s := range frames {
		raw, err := hex.DecodeString(s)
		require.NoError(t, err)
		require.NoError(t, mock.QueueResponse(raw))
	}
}

func TestMonitor_PrintsUntilCancelled(t *testing.T) {
	t.Parallel()

	mock := xbee.NewMockTransport()
	require.NoError(t, mock.SetTimeout(10*time.Millisecond))
	queueHex(t, mock, modemStatusHex, zbRxHex)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, monitor(ctx, mock, &out, "text", zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ModemStatusResponse status=coordinator started", lines[0])
	assert.Contains(t, lines[1], "source64=0013A200400A0127")
}

func TestMonitor_YAML(t *testing.T) {
	t.Parallel()

	mock := xbee.NewMockTransport()
	require.NoError(t, mock.SetTimeout(10*time.Millisecond))
	queueHex(t, mock, zbTxStatusHex)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, monitor(ctx, mock, &out, "yaml", zap.NewNop()))
	assert.Contains(t, out.String(), "type: ZBTxStatusResponse")
	assert.Contains(t, out.String(), "delivery: success")
}

func TestMonitor_ReadError(t *testing.T) {
	t.Parallel()

	readErr := errors.New("port unplugged")
	mock := xbee.NewMockTransport()
	mock.SetReadError(readErr)

	err := monitor(context.Background(), mock, &bytes.Buffer{}, "text", zap.NewNop())
	require.ErrorIs(t, err, readErr)
}

func TestMonitor_InvalidOutput(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, nil, "monitor", "--output", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
