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

// ZBRxResponse is ZigBee data received from a remote node.
//
//	id data: source64(8) source16(2) options(1) data(n)
type ZBRxResponse struct {
	baseResponse
}

// NewZBRxResponse wraps an unescaped frame
func NewZBRxResponse(raw []byte) (*ZBRxResponse, error) {
	b, err := newBaseResponse(raw, APIZBRxResponse, "ZBRxResponse", 11)
	if err != nil {
		return nil, err
	}
	return &ZBRxResponse{b}, nil
}

func (r *ZBRxResponse) Source64() uint64 { return r.u64(0) }

func (r *ZBRxResponse) Source16() uint16 { return r.u16(8) }

func (r *ZBRxResponse) Options() byte { return r.u8(10) }

func (r *ZBRxResponse) Data() []byte { return r.tail(11) }

// ZBExplicitRxResponse is ZigBee data received with explicit addressing,
// sent instead of ZBRxResponse when the radio runs with AO=1.
//
//	id data: source64(8) source16(2) src ep(1) dst ep(1) cluster(2) profile(2) options(1) data(n)
type ZBExplicitRxResponse struct {
	baseResponse
}

// NewZBExplicitRxResponse wraps an unescaped frame
func NewZBExplicitRxResponse(raw []byte) (*ZBExplicitRxResponse, error) {
	b, err := newBaseResponse(raw, APIZBExplicitRxResponse, "ZBExplicitRxResponse", 17)
	if err != nil {
		return nil, err
	}
	return &ZBExplicitRxResponse{b}, nil
}

func (r *ZBExplicitRxResponse) Source64() uint64 { return r.u64(0) }

func (r *ZBExplicitRxResponse) Source16() uint16 { return r.u16(8) }

func (r *ZBExplicitRxResponse) SourceEndpoint() byte { return r.u8(10) }

func (r *ZBExplicitRxResponse) DestinationEndpoint() byte { return r.u8(11) }

func (r *ZBExplicitRxResponse) ClusterID() uint16 { return r.u16(12) }

func (r *ZBExplicitRxResponse) ProfileID() uint16 { return r.u16(14) }

func (r *ZBExplicitRxResponse) Options() byte { return r.u8(16) }

func (r *ZBExplicitRxResponse) Data() []byte { return r.tail(17) }

// ZBIOSampleResponse carries one IO sample from a ZigBee node.
//
//	id data: source64(8) source16(2) options(1) count(1) digital(2) analog(1) samples(n)
type ZBIOSampleResponse struct {
	zbIOSample
}

// NewZBIOSampleResponse wraps an unescaped frame
func NewZBIOSampleResponse(raw []byte) (*ZBIOSampleResponse, error) {
	b, err := newBaseResponse(raw, APIZBIOSampleResponse, "ZBIOSampleResponse", zbSampleOffset)
	if err != nil {
		return nil, err
	}
	return &ZBIOSampleResponse{zbIOSample{b}}, nil
}

func (r *ZBIOSampleResponse) Source64() uint64 { return r.u64(0) }

func (r *ZBIOSampleResponse) Source16() uint16 { return r.u16(8) }

func (r *ZBIOSampleResponse) Options() byte { return r.u8(10) }
