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

// ATCommandRequest reads or sets a register on the local radio. Set commands
// take effect immediately.
type ATCommandRequest struct {
	baseRequest
	command   string
	parameter []byte
}

// NewATCommandRequest builds a local AT command. command must be two
// characters; pass WithParameter to set the register.
func NewATCommandRequest(command string, opts ...RequestOption) (*ATCommandRequest, error) {
	return newATRequest(APIATRequest, "ATCommandRequest", command, opts)
}

// ATQueueRequest is an ATCommandRequest whose register change is queued
// until an AC command or a non-queued AT command applies it.
type ATQueueRequest struct {
	ATCommandRequest
}

// NewATQueueRequest builds a queued local AT command
func NewATQueueRequest(command string, opts ...RequestOption) (*ATQueueRequest, error) {
	r, err := newATRequest(APIATQueueRequest, "ATQueueRequest", command, opts)
	if err != nil {
		return nil, err
	}
	return &ATQueueRequest{*r}, nil
}

func newATRequest(id APIID, name, command string, opts []RequestOption) (*ATCommandRequest, error) {
	if err := checkATCommand(command); err != nil {
		return nil, err
	}
	c := newRequestConfig(TxOptionDefault, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		raw([]byte(command)).
		raw(c.parameter)
	b, err := newBaseRequest(id, name, idData)
	if err != nil {
		return nil, err
	}
	return &ATCommandRequest{baseRequest: b, command: command, parameter: c.parameter}, nil
}

func (r *ATCommandRequest) Command() string { return r.command }

// Parameter returns the register value to set, nil for a read
func (r *ATCommandRequest) Parameter() []byte { return bytes.Clone(r.parameter) }

// RemoteATCommandRequest runs an AT command on a remote radio. Changes are
// applied immediately unless the transmit options clear TxOptionApplyChanges.
type RemoteATCommandRequest struct {
	baseRequest
	command       string
	parameter     []byte
	destination64 uint64
	destination16 uint16
	options       byte
}

// NewRemoteATCommandRequest builds a remote AT command addressed to dest64
func NewRemoteATCommandRequest(dest64 uint64, command string, opts ...RequestOption) (*RemoteATCommandRequest, error) {
	if err := checkATCommand(command); err != nil {
		return nil, err
	}
	c := newRequestConfig(TxOptionApplyChanges, opts)
	idData := idDataWriter(nil).
		u8(c.frameID).
		u64(dest64).
		u16(c.destination16).
		u8(c.txOptions).
		raw([]byte(command)).
		raw(c.parameter)
	b, err := newBaseRequest(APIRemoteATRequest, "RemoteATCommandRequest", idData)
	if err != nil {
		return nil, err
	}
	return &RemoteATCommandRequest{
		baseRequest:   b,
		command:       command,
		parameter:     c.parameter,
		destination64: dest64,
		destination16: c.destination16,
		options:       c.txOptions,
	}, nil
}

func (r *RemoteATCommandRequest) Command() string { return r.command }

func (r *RemoteATCommandRequest) Parameter() []byte { return bytes.Clone(r.parameter) }

func (r *RemoteATCommandRequest) Destination64() uint64 { return r.destination64 }

func (r *RemoteATCommandRequest) Destination16() uint16 { return r.destination16 }

func (r *RemoteATCommandRequest) Options() byte { return r.options }
