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

// Tx64Request sends 802.15.4 data to a 64-bit address. The destination
// defaults to the coordinator.
type Tx64Request struct {
	baseRequest
	data        []byte
	destination uint64
	options     byte
}

// NewTx64Request builds a Tx64Request carrying data
func NewTx64Request(data []byte, opts ...RequestOption) (*Tx64Request, error) {
	c := newRequestConfig(TxOptionDefault, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		u64(c.destination64).
		u8(c.txOptions).
		raw(data)
	b, err := newBaseRequest(APITx64Request, "Tx64Request", idData)
	if err != nil {
		return nil, err
	}
	return &Tx64Request{
		baseRequest: b,
		data:        bytes.Clone(data),
		destination: c.destination64,
		options:     c.txOptions,
	}, nil
}

func (r *Tx64Request) Destination64() uint64 { return r.destination }

func (r *Tx64Request) Options() byte { return r.options }

func (r *Tx64Request) Data() []byte { return bytes.Clone(r.data) }

// Tx16Request sends 802.15.4 data to a 16-bit address.
type Tx16Request struct {
	baseRequest
	data        []byte
	destination uint16
	options     byte
}

// NewTx16Request builds a Tx16Request carrying data to dest
func NewTx16Request(dest uint16, data []byte, opts ...RequestOption) (*Tx16Request, error) {
	c := newRequestConfig(TxOptionDefault, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		u16(dest).
		u8(c.txOptions).
		raw(data)
	b, err := newBaseRequest(APITx16Request, "Tx16Request", idData)
	if err != nil {
		return nil, err
	}
	return &Tx16Request{
		baseRequest: b,
		data:        bytes.Clone(data),
		destination: dest,
		options:     c.txOptions,
	}, nil
}

func (r *Tx16Request) Destination16() uint16 { return r.destination }

func (r *Tx16Request) Options() byte { return r.options }

func (r *Tx16Request) Data() []byte { return bytes.Clone(r.data) }
