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

// IsSpecial reports whether b is one of the four reserved byte values.
func IsSpecial(b byte) bool {
	switch b {
	case Delimiter, Escape, XON, XOFF:
		return true
	default:
		return false
	}
}

// DeclaredLength returns the length field of a frame buffer. The second return
// value is false while fewer than HeaderLength bytes are available.
func DeclaredLength(buf []byte) (int, bool) {
	if len(buf) < HeaderLength {
		return 0, false
	}
	return int(buf[LengthOffset])<<8 | int(buf[LengthOffset+1]), true
}

// IsComplete reports whether buf holds exactly one frame whose byte count
// matches its declared length.
func IsComplete(buf []byte) bool {
	if len(buf) < MinFrameLength {
		return false
	}
	declared, _ := DeclaredLength(buf)
	return len(buf)-OverheadLength == declared
}

// Build assembles an unescaped frame around apiID and idData. The caller is
// responsible for keeping 1+len(idData) within MaxPayloadLength.
func Build(apiID byte, idData []byte) []byte {
	length := 1 + len(idData)
	out := make([]byte, 0, length+OverheadLength)
	out = append(out, Delimiter, byte(length>>8), byte(length))
	out = append(out, apiID)
	out = append(out, idData...)
	return append(out, CalculateChecksum(out[APIIDOffset:]))
}
