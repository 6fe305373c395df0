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

// Request is an outbound API frame. Requests are immutable once built and
// Frame always returns the same bytes.
type Request interface {
	// APIID returns the frame discriminant
	APIID() APIID
	// FrameID returns the id echoed by the matching status frame, or
	// FrameIDNoResponse for requests that carry none
	FrameID() byte
	// IDData returns a copy of the bytes between the api id and the checksum
	IDData() []byte
	// Length returns the value of the frame length field
	Length() int
	// Checksum returns the frame checksum
	Checksum() byte
	// Frame returns the unescaped frame, ready for EscapeFrame
	Frame() []byte

	fmt.Stringer
}

// requestConfig collects the optional fields shared by request constructors.
// Fields a request type does not carry are ignored.
type requestConfig struct {
	parameter     []byte
	frameID       byte
	txOptions     byte
	radius        byte
	destination64 uint64
	destination16 uint16
}

// RequestOption sets an optional request field
type RequestOption func(*requestConfig)

// WithFrameID sets the frame id. FrameIDNoResponse suppresses the status frame.
func WithFrameID(id byte) RequestOption {
	return func(c *requestConfig) {
		c.frameID = id
	}
}

// WithDestination64 sets the 64-bit destination address
func WithDestination64(addr uint64) RequestOption {
	return func(c *requestConfig) {
		c.destination64 = addr
	}
}

// WithDestination16 sets the 16-bit destination address of ZigBee and remote
// AT requests
func WithDestination16(addr uint16) RequestOption {
	return func(c *requestConfig) {
		c.destination16 = addr
	}
}

// WithTxOptions sets the transmit options byte
func WithTxOptions(options byte) RequestOption {
	return func(c *requestConfig) {
		c.txOptions = options
	}
}

// WithBroadcastRadius sets the maximum hop count of ZigBee transmissions
func WithBroadcastRadius(radius byte) RequestOption {
	return func(c *requestConfig) {
		c.radius = radius
	}
}

// WithParameter sets the AT command parameter. Without one the command
// reads the register.
func WithParameter(param []byte) RequestOption {
	return func(c *requestConfig) {
		c.parameter = bytes.Clone(param)
	}
}

func newRequestConfig(txOptions byte, opts []RequestOption) requestConfig {
	c := requestConfig{
		frameID:       FrameIDDefault,
		txOptions:     txOptions,
		radius:        BroadcastRadiusMaxHops,
		destination64: Address64Coordinator,
		destination16: Address16UseAddress64,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// baseRequest holds the encoded id data of a request. It is computed once by
// the constructor.
type baseRequest struct {
	name   string
	idData []byte
	apiID  APIID
}

func newBaseRequest(id APIID, name string, idData []byte) (baseRequest, error) {
	if 1+len(idData) > frame.MaxPayloadLength {
		return baseRequest{}, fmt.Errorf("%s: %d bytes of id data: %w", name, len(idData), ErrDataTooLarge)
	}
	return baseRequest{apiID: id, name: name, idData: idData}, nil
}

func (r baseRequest) APIID() APIID {
	return r.apiID
}

func (r baseRequest) IDData() []byte {
	return bytes.Clone(r.idData)
}

func (r baseRequest) Length() int {
	return 1 + len(r.idData)
}

func (r baseRequest) Checksum() byte {
	sum := byte(r.apiID)
	for _, b := range r.idData {
		sum += b
	}
	return 0xFF - sum
}

func (r baseRequest) Frame() []byte {
	return frame.Build(byte(r.apiID), r.idData)
}

func (r baseRequest) String() string {
	return fmt.Sprintf("%s(len=%d)", r.name, r.Length())
}

// FrameID returns the first id data byte, which is the frame id for every
// request type.
func (r baseRequest) FrameID() byte {
	return r.idData[0]
}

// idDataWriter appends big-endian fields
type idDataWriter []byte

func (w idDataWriter) u8(v byte) idDataWriter {
	return append(w, v)
}

func (w idDataWriter) u16(v uint16) idDataWriter {
	return binary.BigEndian.AppendUint16(w, v)
}

func (w idDataWriter) u64(v uint64) idDataWriter {
	return binary.BigEndian.AppendUint64(w, v)
}

func (w idDataWriter) raw(p []byte) idDataWriter {
	return append(w, p...)
}

// checkATCommand validates a two-character AT command name
func checkATCommand(command string) error {
	if len(command) != 2 {
		return fmt.Errorf("AT command %q must be 2 characters: %w", command, ErrInvalidArgument)
	}
	return nil
}
