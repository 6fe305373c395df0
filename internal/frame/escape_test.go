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

import (
	"bytes"
	"testing"
)

func TestAppendEscaped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  []byte
		want []byte
	}{
		{name: "empty", raw: nil, want: []byte{0xAA}},
		{name: "leading byte untouched", raw: []byte{0x7E, 0x01}, want: []byte{0xAA, 0x7E, 0x01}},
		{
			name: "all special bytes",
			raw:  []byte{0x7E, 0x7E, 0x7D, 0x11, 0x13},
			want: []byte{0xAA, 0x7E, 0x7D, 0x5E, 0x7D, 0x5D, 0x7D, 0x31, 0x7D, 0x33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AppendEscaped([]byte{0xAA}, tt.raw)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendEscaped() = %X, want %X", got, tt.want)
			}
		})
	}
}
