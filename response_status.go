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

// ATCommandResponse answers a local ATCommandRequest or ATQueueRequest.
//
//	id data: frame id(1) command(2) status(1) value(n)
type ATCommandResponse struct {
	baseResponse
}

// NewATCommandResponse wraps an unescaped frame
func NewATCommandResponse(raw []byte) (*ATCommandResponse, error) {
	b, err := newBaseResponse(raw, APIATResponse, "ATCommandResponse", 4)
	if err != nil {
		return nil, err
	}
	return &ATCommandResponse{b}, nil
}

func (r *ATCommandResponse) FrameID() byte { return r.u8(0) }

// Command returns the two-character AT command
func (r *ATCommandResponse) Command() string { return string(r.idData()[1:3]) }

func (r *ATCommandResponse) Status() CommandStatus { return CommandStatus(r.u8(3)) }

// Value returns the register value, empty for set commands
func (r *ATCommandResponse) Value() []byte { return r.tail(4) }

// TxStatusResponse reports delivery of a Tx64Request or Tx16Request.
//
//	id data: frame id(1) status(1)
type TxStatusResponse struct {
	baseResponse
}

// NewTxStatusResponse wraps an unescaped frame
func NewTxStatusResponse(raw []byte) (*TxStatusResponse, error) {
	b, err := newBaseResponse(raw, APITxStatusResponse, "TxStatusResponse", 2)
	if err != nil {
		return nil, err
	}
	return &TxStatusResponse{b}, nil
}

func (r *TxStatusResponse) FrameID() byte { return r.u8(0) }

func (r *TxStatusResponse) Status() DeliveryStatus { return DeliveryStatus(r.u8(1)) }

// ModemStatusResponse is sent unsolicited when the radio changes state.
//
//	id data: status(1)
type ModemStatusResponse struct {
	baseResponse
}

// NewModemStatusResponse wraps an unescaped frame
func NewModemStatusResponse(raw []byte) (*ModemStatusResponse, error) {
	b, err := newBaseResponse(raw, APIModemStatusResponse, "ModemStatusResponse", 1)
	if err != nil {
		return nil, err
	}
	return &ModemStatusResponse{b}, nil
}

func (r *ModemStatusResponse) Status() ModemStatus { return ModemStatus(r.u8(0)) }

// ZBTxStatusResponse reports delivery of a ZBTxRequest or ZBExplicitTxRequest.
//
//	id data: frame id(1) dest16(2) retries(1) delivery(1) discovery(1)
type ZBTxStatusResponse struct {
	baseResponse
}

// NewZBTxStatusResponse wraps an unescaped frame
func NewZBTxStatusResponse(raw []byte) (*ZBTxStatusResponse, error) {
	b, err := newBaseResponse(raw, APIZBTxStatusResponse, "ZBTxStatusResponse", 6)
	if err != nil {
		return nil, err
	}
	return &ZBTxStatusResponse{b}, nil
}

func (r *ZBTxStatusResponse) FrameID() byte { return r.u8(0) }

// Destination16 returns the 16-bit address the frame was delivered to
func (r *ZBTxStatusResponse) Destination16() uint16 { return r.u16(1) }

func (r *ZBTxStatusResponse) RetryCount() byte { return r.u8(3) }

func (r *ZBTxStatusResponse) DeliveryStatus() DeliveryStatus { return DeliveryStatus(r.u8(4)) }

func (r *ZBTxStatusResponse) DiscoveryStatus() DiscoveryStatus { return DiscoveryStatus(r.u8(5)) }

// RemoteATCommandResponse answers a RemoteATCommandRequest.
//
//	id data: frame id(1) source64(8) source16(2) command(2) status(1) data(n)
type RemoteATCommandResponse struct {
	baseResponse
}

// remoteATDataLength is the shortest declared length carrying register data
const remoteATDataLength = 16

// NewRemoteATCommandResponse wraps an unescaped frame
func NewRemoteATCommandResponse(raw []byte) (*RemoteATCommandResponse, error) {
	b, err := newBaseResponse(raw, APIRemoteATResponse, "RemoteATCommandResponse", 14)
	if err != nil {
		return nil, err
	}
	return &RemoteATCommandResponse{b}, nil
}

func (r *RemoteATCommandResponse) FrameID() byte { return r.u8(0) }

func (r *RemoteATCommandResponse) Source64() uint64 { return r.u64(1) }

func (r *RemoteATCommandResponse) Source16() uint16 { return r.u16(9) }

func (r *RemoteATCommandResponse) Command() string { return string(r.idData()[11:13]) }

func (r *RemoteATCommandResponse) Status() CommandStatus { return CommandStatus(r.u8(13)) }

// Data returns the register value. ok is false when the frame is too short
// to carry one, which is distinct from an empty value.
func (r *RemoteATCommandResponse) Data() (data []byte, ok bool) {
	if r.Length() < remoteATDataLength {
		return nil, false
	}
	return r.tail(14), true
}
