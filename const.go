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

// Package xbee decodes and encodes the API frames spoken by XBee-family
// serial radio modules.
//
// Inbound bytes are fed to a Decoder, which reassembles escaped frames,
// validates them and hands typed Response values to a Handler. Outbound
// frames are built from typed Request values and escaped with EscapeFrame
// before they reach a transport.
package xbee

import (
	"fmt"

	"github.com/ZaparooProject/go-xbee/internal/frame"
)

// Special bytes
const (
	FrameDelimiter byte = frame.Delimiter
	EscapeByte     byte = frame.Escape
	XON            byte = frame.XON
	XOFF           byte = frame.XOFF
)

// APIID identifies the shape of a request or response frame.
type APIID byte

// Request API identifiers
const (
	APITx64Request         APIID = 0x00
	APITx16Request         APIID = 0x01
	APIATRequest           APIID = 0x08
	APIATQueueRequest      APIID = 0x09
	APIZBTxRequest         APIID = 0x10
	APIZBExplicitTxRequest APIID = 0x11
	APIRemoteATRequest     APIID = 0x17
)

// Response API identifiers
const (
	APIRx64Response         APIID = 0x80
	APIRx16Response         APIID = 0x81
	APIRx64IOSampleResponse APIID = 0x82
	APIRx16IOSampleResponse APIID = 0x83
	APIATResponse           APIID = 0x88
	APITxStatusResponse     APIID = 0x89
	APIModemStatusResponse  APIID = 0x8A
	APIZBTxStatusResponse   APIID = 0x8B
	APIZBRxResponse         APIID = 0x90
	APIZBExplicitRxResponse APIID = 0x91
	APIZBIOSampleResponse   APIID = 0x92
	APIRemoteATResponse     APIID = 0x97
)

var apiIDNames = map[APIID]string{
	APITx64Request:          "Tx64Request",
	APITx16Request:          "Tx16Request",
	APIATRequest:            "ATRequest",
	APIATQueueRequest:       "ATQueueRequest",
	APIZBTxRequest:          "ZBTxRequest",
	APIZBExplicitTxRequest:  "ZBExplicitTxRequest",
	APIRemoteATRequest:      "RemoteATRequest",
	APIRx64Response:         "Rx64Response",
	APIRx16Response:         "Rx16Response",
	APIRx64IOSampleResponse: "Rx64IOSampleResponse",
	APIRx16IOSampleResponse: "Rx16IOSampleResponse",
	APIATResponse:           "ATResponse",
	APITxStatusResponse:     "TxStatusResponse",
	APIModemStatusResponse:  "ModemStatusResponse",
	APIZBTxStatusResponse:   "ZBTxStatusResponse",
	APIZBRxResponse:         "ZBRxResponse",
	APIZBExplicitRxResponse: "ZBExplicitRxResponse",
	APIZBIOSampleResponse:   "ZBIOSampleResponse",
	APIRemoteATResponse:     "RemoteATResponse",
}

// String returns the frame type name, or the hex value for unknown ids
func (id APIID) String() string {
	if name, ok := apiIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("APIID(0x%02X)", byte(id))
}

// Frame ids
const (
	// FrameIDNoResponse tells the module not to emit a status frame
	FrameIDNoResponse byte = 0x00
	// FrameIDDefault is non-zero so that a status frame is emitted
	FrameIDDefault byte = 0x01
)

// Special addresses
const (
	// Address16UseAddress64 makes the module route on the 64-bit address
	Address16UseAddress64 uint16 = 0xFFFE
	Address16Broadcast    uint16 = 0xFFFF

	Address64Coordinator uint64 = 0x0000000000000000
	Address64Broadcast   uint64 = 0x000000000000FFFF
	Address64Unknown     uint64 = 0xFFFFFFFFFFFFFFFF
)

// BroadcastRadiusMaxHops lets the module use its maximum hop count
const BroadcastRadiusMaxHops byte = 0x00

// Transmit options. Each bit only applies to the request types noted.
const (
	TxOptionDefault byte = 0x00

	// Tx64Request and Tx16Request
	TxOptionDisableAck     byte = 0x01
	TxOptionBroadcastPANID byte = 0x04

	// RemoteATRequest
	TxOptionApplyChanges byte = 0x02

	// ZBTxRequest and ZBExplicitTxRequest
	TxOptionDisableRetriesAndRouteRepair byte = 0x01
	TxOptionEnableAPSEncryption          byte = 0x20
	TxOptionExtendedTimeout              byte = 0x40
)

// Receive options
const (
	// Rx64Response and Rx16Response
	RxOptionAddressBroadcast byte = 0x01
	RxOptionPANBroadcast     byte = 0x02

	// ZBRxResponse and ZBExplicitRxResponse
	RxOptionPacketAcknowledged  byte = 0x01
	RxOptionPacketBroadcast     byte = 0x02
	RxOptionPacketAPSEncrypted  byte = 0x20
	RxOptionPacketFromEndDevice byte = 0x40
)
