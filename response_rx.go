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

// Rx64Response is 802.15.4 data received from a 64-bit source address.
//
//	id data: source64(8) rssi(1) options(1) data(n)
type Rx64Response struct {
	baseResponse
}

// NewRx64Response wraps an unescaped frame
func NewRx64Response(raw []byte) (*Rx64Response, error) {
	b, err := newBaseResponse(raw, APIRx64Response, "Rx64Response", 10)
	if err != nil {
		return nil, err
	}
	return &Rx64Response{b}, nil
}

func (r *Rx64Response) Source64() uint64 { return r.u64(0) }

// RSSI returns the received signal strength as -dBm
func (r *Rx64Response) RSSI() byte { return r.u8(8) }

func (r *Rx64Response) Options() byte { return r.u8(9) }

func (r *Rx64Response) Data() []byte { return r.tail(10) }

// Rx16Response is 802.15.4 data received from a 16-bit source address.
//
//	id data: source16(2) rssi(1) options(1) data(n)
type Rx16Response struct {
	baseResponse
}

// NewRx16Response wraps an unescaped frame
func NewRx16Response(raw []byte) (*Rx16Response, error) {
	b, err := newBaseResponse(raw, APIRx16Response, "Rx16Response", 4)
	if err != nil {
		return nil, err
	}
	return &Rx16Response{b}, nil
}

func (r *Rx16Response) Source16() uint16 { return r.u16(0) }

// RSSI returns the received signal strength as -dBm
func (r *Rx16Response) RSSI() byte { return r.u8(2) }

func (r *Rx16Response) Options() byte { return r.u8(3) }

func (r *Rx16Response) Data() []byte { return r.tail(4) }

// Rx64IOSampleResponse carries IO samples from a 64-bit source address.
//
//	id data: source64(8) rssi(1) options(1) count(1) masks(2) samples(n)
type Rx64IOSampleResponse struct {
	rxIOSample
}

// NewRx64IOSampleResponse wraps an unescaped frame
func NewRx64IOSampleResponse(raw []byte) (*Rx64IOSampleResponse, error) {
	b, err := newBaseResponse(raw, APIRx64IOSampleResponse, "Rx64IOSampleResponse", 13)
	if err != nil {
		return nil, err
	}
	return &Rx64IOSampleResponse{rxIOSample{baseResponse: b, maskOffset: 11}}, nil
}

func (r *Rx64IOSampleResponse) Source64() uint64 { return r.u64(0) }

func (r *Rx64IOSampleResponse) RSSI() byte { return r.u8(8) }

func (r *Rx64IOSampleResponse) Options() byte { return r.u8(9) }

// Rx16IOSampleResponse carries IO samples from a 16-bit source address.
//
//	id data: source16(2) rssi(1) options(1) count(1) masks(2) samples(n)
type Rx16IOSampleResponse struct {
	rxIOSample
}

// NewRx16IOSampleResponse wraps an unescaped frame
func NewRx16IOSampleResponse(raw []byte) (*Rx16IOSampleResponse, error) {
	b, err := newBaseResponse(raw, APIRx16IOSampleResponse, "Rx16IOSampleResponse", 7)
	if err != nil {
		return nil, err
	}
	return &Rx16IOSampleResponse{rxIOSample{baseResponse: b, maskOffset: 5}}, nil
}

func (r *Rx16IOSampleResponse) Source16() uint16 { return r.u16(0) }

func (r *Rx16IOSampleResponse) RSSI() byte { return r.u8(2) }

func (r *Rx16IOSampleResponse) Options() byte { return r.u8(3) }
