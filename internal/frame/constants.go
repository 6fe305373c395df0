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

// Package frame provides the wire-level constants and helpers shared by the
// API frame encoder and the streaming decoder.
package frame

// Special bytes. None of these may appear literally after the delimiter of an
// escaped frame.
const (
	Delimiter = 0x7E // Frame start delimiter
	Escape    = 0x7D // Escape marker, next byte is XOR'ed with EscapeXOR
	XON       = 0x11 // Software flow control resume
	XOFF      = 0x13 // Software flow control pause

	EscapeXOR = 0x20
)

// Frame layout offsets and sizes
const (
	LengthOffset = 1 // Two byte big-endian length
	APIIDOffset  = 3 // First payload byte
	IDDataOffset = 4 // First API-specific byte

	HeaderLength   = 3 // delimiter + length
	OverheadLength = 4 // delimiter + length + checksum
	MinFrameLength = 5 // overhead + api id

	MaxPayloadLength = 0xFFFF
	MaxFrameLength   = MaxPayloadLength + OverheadLength
)
