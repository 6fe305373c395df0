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

package xbee

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Frames captured from radios, written unescaped unless named wire*.
const (
	frameRx64      = "7E 00 10 80 00 13 A2 00 40 52 2B AA 16 03 F1 2E AA BD C9 FB"
	frameRx16      = "7E 00 0A 81 52 1A 23 01 12 33 85 A1 F2 91"
	frameRx64IO    = "7E 00 1A 82 00 13 A2 00 40 52 2B AA 23 01 02 14 88 00 80 00 8F 03 ED 00 08 02 4C 00 0C 3E"
	frameRx16IO    = "7E 00 14 83 7D 84 23 01 02 14 88 00 80 00 8F 03 ED 00 08 02 4C 00 0C 58"
	frameAT        = "7E 00 07 88 52 4D 59 00 00 00 7F"
	frameTxStatus  = "7E 00 03 89 2A 74 D8"
	frameModem     = "7E 00 02 8A 06 6F"
	frameZBTxStat  = "7E 00 07 8B 01 7D 84 00 00 01 71"
	frameZBRx      = "7E 00 12 90 00 13 A2 00 40 52 2B AA 7D 84 01 52 78 44 61 74 61 0D"
	frameZBExplRx  = "7E 00 18 91 00 13 A2 00 40 52 2B AA 7D 84 E0 E0 22 11 C1 05 02 52 78 44 61 74 61 52"
	frameZBIO      = "7E 00 16 92 00 13 A2 00 40 52 2B AA 7D 84 01 01 00 1C 0A 00 14 02 25 02 A6 45"
	frameZBIOVolts = "7E 00 18 92 00 13 A2 00 40 52 2B AA 7D 84 01 01 00 1C 8A 00 14 02 25 02 A6 0C 93 26"
	frameRemoteAT  = "7E 00 13 97 55 00 13 A2 00 40 52 2B AA 7D 84 53 4C 00 40 52 2B AA F0"
	frameRemoteAT0 = "7E 00 0F 97 55 00 13 A2 00 40 52 2B AA 7D 84 53 4C 00 57"

	wireZBIO = "7E 00 12 92 00 7D 33 A2 00 40 A0 96 7D 5E 0F 25 41 01 00 00 01 02 80 CB"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

// wire returns the escaped form of an unescaped frame
func wire(t testing.TB, s string) []byte {
	t.Helper()
	out, err := EscapeFrame(mustHex(t, s))
	require.NoError(t, err)
	return out
}

// collect returns a decoder that queues responses and records diagnostics
func collect(opts ...DecoderOption) (*Decoder, *ResponseQueue, *[]Diagnostic) {
	q := &ResponseQueue{}
	diags := &[]Diagnostic{}
	opts = append([]DecoderOption{
		WithHandler(q),
		WithDiagnostics(func(d Diagnostic) { *diags = append(*diags, d) }),
	}, opts...)
	return NewDecoder(opts...), q, diags
}
