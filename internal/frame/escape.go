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

// AppendEscaped appends the wire encoding of raw to dst. raw[0] is copied
// unchanged, every later special byte becomes Escape, b^EscapeXOR.
func AppendEscaped(dst, raw []byte) []byte {
	if len(raw) == 0 {
		return dst
	}
	dst = append(dst, raw[0])
	for _, b := range raw[1:] {
		if IsSpecial(b) {
			dst = append(dst, Escape, b^EscapeXOR)
			continue
		}
		dst = append(dst, b)
	}
	return dst
}
