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

import "bytes"

// ZBTxRequest sends ZigBee data. The destination defaults to the
// coordinator, routed by its 64-bit address.
type ZBTxRequest struct {
	baseRequest
	data          []byte
	destination64 uint64
	destination16 uint16
	radius        byte
	options       byte
}

// NewZBTxRequest builds a ZBTxRequest carrying data
func NewZBTxRequest(data []byte, opts ...RequestOption) (*ZBTxRequest, error) {
	c := newRequestConfig(TxOptionDefault, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		u64(c.destination64).
		u16(c.destination16).
		u8(c.radius).
		u8(c.txOptions).
		raw(data)
	b, err := newBaseRequest(APIZBTxRequest, "ZBTxRequest", idData)
	if err != nil {
		return nil, err
	}
	return &ZBTxRequest{
		baseRequest:   b,
		data:          bytes.Clone(data),
		destination64: c.destination64,
		destination16: c.destination16,
		radius:        c.radius,
		options:       c.txOptions,
	}, nil
}

func (r *ZBTxRequest) Destination64() uint64 { return r.destination64 }

func (r *ZBTxRequest) Destination16() uint16 { return r.destination16 }

func (r *ZBTxRequest) BroadcastRadius() byte { return r.radius }

func (r *ZBTxRequest) Options() byte { return r.options }

func (r *ZBTxRequest) Data() []byte { return bytes.Clone(r.data) }

// ExplicitAddress is the application-layer addressing of a
// ZBExplicitTxRequest.
type ExplicitAddress struct {
	SourceEndpoint      byte
	DestinationEndpoint byte
	ClusterID           uint16
	ProfileID           uint16
}

// ZBExplicitTxRequest sends ZigBee data with explicit endpoints, cluster
// and profile.
type ZBExplicitTxRequest struct {
	ZBTxRequest
	address ExplicitAddress
}

// NewZBExplicitTxRequest builds a ZBExplicitTxRequest carrying data to dest64
func NewZBExplicitTxRequest(
	dest64 uint64, addr ExplicitAddress, data []byte, opts ...RequestOption,
) (*ZBExplicitTxRequest, error) {
	c := newRequestConfig(TxOptionDefault, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		u64(dest64).
		u16(c.destination16).
		u8(addr.SourceEndpoint).
		u8(addr.DestinationEndpoint).
		u16(addr.ClusterID).
		u16(addr.ProfileID).
		u8(c.radius).
		u8(c.txOptions).
		raw(data)
	b, err := newBaseRequest(APIZBExplicitTxRequest, "ZBExplicitTxRequest", idData)
	if err != nil {
		return nil, err
	}
	return &ZBExplicitTxRequest{
		ZBTxRequest: ZBTxRequest{
			baseRequest:   b,
			data:          bytes.Clone(data),
			destination64: dest64,
			destination16: c.destination16,
			radius:        c.radius,
			options:       c.txOptions,
		},
		address: addr,
	}, nil
}

func (r *ZBExplicitTxRequest) Address() ExplicitAddress { return r.address }
