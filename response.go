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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ZaparooProject/go-xbee/internal/frame"
)

// Response is a read-only view over one validated, unescaped API frame
// received from the radio. All fields are computed from the frame on access.
type Response interface {
	// APIID returns the frame discriminant
	APIID() APIID
	// Length returns the declared length: api id plus id data
	Length() int
	// IDData returns a copy of the bytes between the api id and the checksum
	IDData() []byte
	// Checksum returns the trailing checksum byte
	Checksum() byte
	// Verify reports whether the checksum matches the payload
	Verify() bool
	// Raw returns a copy of the complete unescaped frame
	Raw() []byte

	fmt.Stringer
}

// baseResponse carries the frame shared by every response type. Typed
// responses embed it and add their own field accessors.
type baseResponse struct {
	name string
	raw  []byte
}

// newBaseResponse checks that raw is a well-formed frame for id carrying at
// least minIDData bytes of id data. The checksum is not verified here so that
// damaged frames can still be inspected; use Verify.
func newBaseResponse(raw []byte, id APIID, name string, minIDData int) (baseResponse, error) {
	if len(raw) < frame.MinFrameLength {
		return baseResponse{}, fmt.Errorf("%s: %d bytes: %w", name, len(raw), ErrFrameTooShort)
	}
	if raw[0] != frame.Delimiter {
		return baseResponse{}, fmt.Errorf("%s: missing start delimiter: %w", name, ErrInvalidArgument)
	}
	declared, _ := frame.DeclaredLength(raw)
	if len(raw)-frame.OverheadLength != declared {
		return baseResponse{}, fmt.Errorf("%s: declared %d, got %d: %w",
			name, declared, len(raw)-frame.OverheadLength, ErrLengthMismatch)
	}
	if APIID(raw[frame.APIIDOffset]) != id {
		return baseResponse{}, fmt.Errorf("%s: got %s: %w", name, APIID(raw[frame.APIIDOffset]), ErrWrongAPIID)
	}
	if n := declared - 1; n < minIDData {
		return baseResponse{}, fmt.Errorf("%s: %d bytes of id data, need %d: %w", name, n, minIDData, ErrFrameTooShort)
	}
	return baseResponse{name: name, raw: bytes.Clone(raw)}, nil
}

func (r baseResponse) APIID() APIID {
	return APIID(r.raw[frame.APIIDOffset])
}

func (r baseResponse) Length() int {
	n, _ := frame.DeclaredLength(r.raw)
	return n
}

func (r baseResponse) IDData() []byte {
	return bytes.Clone(r.idData())
}

func (r baseResponse) Checksum() byte {
	return r.raw[len(r.raw)-1]
}

func (r baseResponse) Verify() bool {
	return frame.VerifyChecksum(r.raw[frame.APIIDOffset:])
}

func (r baseResponse) Raw() []byte {
	return bytes.Clone(r.raw)
}

func (r baseResponse) String() string {
	return fmt.Sprintf("%s(len=%d)", r.name, r.Length())
}

// idData aliases the frame, callers must not modify it
func (r baseResponse) idData() []byte {
	return r.raw[frame.IDDataOffset : len(r.raw)-1]
}

func (r baseResponse) u8(off int) byte {
	return r.idData()[off]
}

func (r baseResponse) u16(off int) uint16 {
	return binary.BigEndian.Uint16(r.idData()[off:])
}

func (r baseResponse) u64(off int) uint64 {
	return binary.BigEndian.Uint64(r.idData()[off:])
}

// tail returns a copy of the id data from off to the end
func (r baseResponse) tail(off int) []byte {
	return bytes.Clone(r.idData()[off:])
}
