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
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Enable masks
const (
	rxAnalogMaskBits  = 0x3E   // A0..A5 in bits 1..6
	rxDigitalMaskBits = 0x01FF // D0..D8
	zbAnalogMaskBits  = 0x8F   // A0..A3 plus supply voltage
	zbDigitalMaskBits = 0x3CFF // D0..D7, D10..D13

	zbSupplyVoltageBit = 0x80
)

// Pin ranges
const (
	RxAnalogPins  = 6
	RxDigitalPins = 9
	ZBAnalogPins  = 4
	ZBDigitalPins = 14
)

// BitCount returns the number of set bits in n
func BitCount(n uint) int {
	return bits.OnesCount(n)
}

// word reads the big-endian word at off, failing when the sample data is
// shorter than the mask layout promises.
func word(data []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(data) {
		return 0, fmt.Errorf("sample word at %d of %d bytes: %w", off, len(data), ErrFrameTooShort)
	}
	return binary.BigEndian.Uint16(data[off:]), nil
}

// rxIOSample decodes the multi-sample layout shared by the 802.15.4 IO
// sample frames. The mask pair is two bytes starting at maskOffset in the id
// data and samples start right after it.
type rxIOSample struct {
	baseResponse
	maskOffset int
}

// SampleCount returns the number of samples in the frame
func (r rxIOSample) SampleCount() int {
	return int(r.u8(r.maskOffset - 1))
}

// AnalogMask returns the analog enable bits. Bit n+1 enables pin An.
func (r rxIOSample) AnalogMask() byte {
	return r.u8(r.maskOffset) & rxAnalogMaskBits
}

// DigitalMask returns the digital enable bits. The top bit of the analog
// mask byte doubles as D8.
func (r rxIOSample) DigitalMask() uint16 {
	return r.u16(r.maskOffset) & rxDigitalMaskBits
}

func (r rxIOSample) ContainsAnalog() bool {
	return r.AnalogMask() != 0
}

func (r rxIOSample) ContainsDigital() bool {
	return r.DigitalMask() != 0
}

func (r rxIOSample) IsAnalogEnabled(pin int) bool {
	return pin >= 0 && pin < RxAnalogPins && r.AnalogMask()>>(pin+1)&1 == 1
}

func (r rxIOSample) IsDigitalEnabled(pin int) bool {
	return pin >= 0 && pin < RxDigitalPins && r.DigitalMask()>>pin&1 == 1
}

// SampleSize returns the size in bytes of one sample record
func (r rxIOSample) SampleSize() int {
	size := 2 * BitCount(uint(r.AnalogMask()))
	if r.ContainsDigital() {
		size += 2
	}
	return size
}

func (r rxIOSample) samples() []byte {
	return r.idData()[r.maskOffset+2:]
}

func (r rxIOSample) checkSample(sample int) error {
	if sample < 0 || sample >= r.SampleCount() {
		return fmt.Errorf("sample %d of %d: %w", sample, r.SampleCount(), ErrInvalidArgument)
	}
	return nil
}

// Analog returns the value of analog pin in the given sample
func (r rxIOSample) Analog(sample, pin int) (uint16, error) {
	if !r.IsAnalogEnabled(pin) {
		return 0, fmt.Errorf("analog pin %d is not enabled: %w", pin, ErrInvalidArgument)
	}
	if err := r.checkSample(sample); err != nil {
		return 0, err
	}
	analogWords := BitCount(uint(r.AnalogMask()))
	off := sample * 2 * analogWords
	if r.ContainsDigital() {
		off += 2 + sample*2
	}
	for i := range pin {
		if r.IsAnalogEnabled(i) {
			off += 2
		}
	}
	return word(r.samples(), off)
}

// IsDigitalOn reports whether digital pin is high in the given sample
func (r rxIOSample) IsDigitalOn(sample, pin int) (bool, error) {
	if !r.IsDigitalEnabled(pin) {
		return false, fmt.Errorf("digital pin %d is not enabled: %w", pin, ErrInvalidArgument)
	}
	if err := r.checkSample(sample); err != nil {
		return false, err
	}
	off := sample * 2
	if r.ContainsAnalog() {
		off += sample * 2 * BitCount(uint(r.AnalogMask()))
	}
	w, err := word(r.samples(), off)
	if err != nil {
		return false, err
	}
	return w>>pin&1 == 1, nil
}

// zbIOSample decodes the single-sample ZigBee layout: digital mask at
// id data 12, analog mask at 14, sample data from 15.
type zbIOSample struct {
	baseResponse
}

const (
	zbDigitalMaskOffset = 12
	zbAnalogMaskOffset  = 14
	zbSampleOffset      = 15
)

// SampleCount returns the sample count byte. ZigBee radios always send 1.
func (r zbIOSample) SampleCount() int {
	return int(r.u8(zbDigitalMaskOffset - 1))
}

func (r zbIOSample) DigitalMask() uint16 {
	return r.u16(zbDigitalMaskOffset) & zbDigitalMaskBits
}

// AnalogMask returns the analog enable bits. Bit n enables An and bit 7
// signals a trailing supply voltage reading.
func (r zbIOSample) AnalogMask() byte {
	return r.u8(zbAnalogMaskOffset) & zbAnalogMaskBits
}

func (r zbIOSample) ContainsDigital() bool {
	return r.DigitalMask() != 0
}

func (r zbIOSample) ContainsAnalog() bool {
	return r.AnalogMask() != 0
}

func (r zbIOSample) IsDigitalEnabled(pin int) bool {
	return pin >= 0 && pin < ZBDigitalPins && r.DigitalMask()>>pin&1 == 1
}

func (r zbIOSample) IsAnalogEnabled(pin int) bool {
	return pin >= 0 && pin < ZBAnalogPins && r.AnalogMask()>>pin&1 == 1
}

func (r zbIOSample) samples() []byte {
	return r.idData()[zbSampleOffset:]
}

// analogOffset returns the sample offset of the word following every
// enabled analog pin below pin.
func (r zbIOSample) analogOffset(pin int) int {
	off := 0
	if r.ContainsDigital() {
		off += 2
	}
	for i := range pin {
		if r.IsAnalogEnabled(i) {
			off += 2
		}
	}
	return off
}

// IsDigitalOn reports whether digital pin is high
func (r zbIOSample) IsDigitalOn(pin int) (bool, error) {
	if !r.IsDigitalEnabled(pin) {
		return false, fmt.Errorf("digital pin %d is not enabled: %w", pin, ErrInvalidArgument)
	}
	w, err := word(r.samples(), 0)
	if err != nil {
		return false, err
	}
	return w>>pin&1 == 1, nil
}

// Analog returns the value of analog pin
func (r zbIOSample) Analog(pin int) (uint16, error) {
	if !r.IsAnalogEnabled(pin) {
		return 0, fmt.Errorf("analog pin %d is not enabled: %w", pin, ErrInvalidArgument)
	}
	return word(r.samples(), r.analogOffset(pin))
}

// SupplyVoltage returns the supply voltage reading. ok is false when the
// radio did not include one.
func (r zbIOSample) SupplyVoltage() (value uint16, ok bool, err error) {
	if r.AnalogMask()&zbSupplyVoltageBit == 0 {
		return 0, false, nil
	}
	v, err := word(r.samples(), r.analogOffset(ZBAnalogPins))
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
