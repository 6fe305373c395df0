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

package frame

import "testing"

// Run with: go test -fuzz=FuzzBuild -fuzztime=30s ./internal/frame/

// FuzzBuild checks that every built frame carries a consistent length field
// and a checksum that verifies.
func FuzzBuild(f *testing.F) {
	f.Add(byte(0x08), []byte{0x01, 0x53, 0x50})
	f.Add(byte(0x10), []byte{})
	f.Add(byte(0x7E), []byte{0x7E, 0x7D, 0x11, 0x13})

	f.Fuzz(func(t *testing.T, apiID byte, idData []byte) {
		if len(idData) >= MaxPayloadLength {
			return
		}
		frm := Build(apiID, idData)
		if !IsComplete(frm) {
			t.Fatalf("Build(%02X, %X) is not complete", apiID, idData)
		}
		if !VerifyChecksum(frm[APIIDOffset:]) {
			t.Fatalf("Build(%02X, %X) checksum does not verify", apiID, idData)
		}
	})
}

// FuzzDeclaredLength makes sure arbitrary buffers never panic.
func FuzzDeclaredLength(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x7E})
	f.Add([]byte{0x7E, 0xFF, 0xFF})

	f.Fuzz(func(_ *testing.T, buf []byte) {
		_, _ = DeclaredLength(buf)
		_ = IsComplete(buf)
	})
}
