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
	"fmt"

	"github.com/ZaparooProject/go-xbee/internal/frame"
)

// IsSpecialByte reports whether b must be escaped on the wire
func IsSpecialByte(b byte) bool {
	return frame.IsSpecial(b)
}

// Escape returns the second byte of the two-byte escape sequence for b.
// b must be one of the special bytes.
func Escape(b byte) (byte, error) {
	if !frame.IsSpecial(b) {
		return 0, fmt.Errorf("escape 0x%02X: not a special byte: %w", b, ErrInvalidArgument)
	}
	return b ^ frame.EscapeXOR, nil
}

// Unescape reverses Escape. The result must be a special byte.
func Unescape(b byte) (byte, error) {
	u := b ^ frame.EscapeXOR
	if !frame.IsSpecial(u) {
		return 0, fmt.Errorf("unescape 0x%02X: result is not a special byte: %w", b, ErrInvalidArgument)
	}
	return u, nil
}

// EscapeFrame returns the wire encoding of an unescaped frame. The leading
// delimiter is copied as is and every later special byte is replaced by
// 0x7D followed by its Escape value.
func EscapeFrame(raw []byte) ([]byte, error) {
	if len(raw) == 0 || raw[0] != frame.Delimiter {
		return nil, fmt.Errorf("escape frame: missing start delimiter: %w", ErrInvalidArgument)
	}

	return frame.AppendEscaped(make([]byte, 0, len(raw)+len(raw)/8+1), raw), nil
}

// UnescapeFrame decodes a single escaped frame back to its raw form. It is
// the inverse of EscapeFrame and does not validate the frame contents.
func UnescapeFrame(wire []byte) ([]byte, error) {
	if len(wire) == 0 || wire[0] != frame.Delimiter {
		return nil, fmt.Errorf("unescape frame: missing start delimiter: %w", ErrInvalidArgument)
	}

	out := make([]byte, 1, len(wire))
	out[0] = frame.Delimiter
	for i := 1; i < len(wire); i++ {
		b := wire[i]
		if b != frame.Escape {
			out = append(out, b)
			continue
		}
		i++
		if i == len(wire) {
			return nil, fmt.Errorf("unescape frame: dangling escape at offset %d: %w", i-1, ErrFrameCorrupted)
		}
		u, err := Unescape(wire[i])
		if err != nil {
			return nil, fmt.Errorf("unescape frame at offset %d: %w", i, err)
		}
		out = append(out, u)
	}
	return out, nil
}
