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

	"github.com/ZaparooProject/go-xbee/internal/frame"
)

var responseAPIIDs = []APIID{
	APIRx64Response,
	APIRx16Response,
	APIRx64IOSampleResponse,
	APIRx16IOSampleResponse,
	APIATResponse,
	APITxStatusResponse,
	APIModemStatusResponse,
	APIZBTxStatusResponse,
	APIZBRxResponse,
	APIZBExplicitRxResponse,
	APIZBIOSampleResponse,
	APIRemoteATResponse,
}

var requestAPIIDs = []APIID{
	APITx64Request,
	APITx16Request,
	APIATRequest,
	APIATQueueRequest,
	APIZBTxRequest,
	APIZBExplicitTxRequest,
	APIRemoteATRequest,
}

// ResponseAPIIDs returns every response discriminant NewResponse accepts
func ResponseAPIIDs() []APIID {
	return append([]APIID(nil), responseAPIIDs...)
}

// RequestAPIIDs returns every request discriminant ParseRequest accepts
func RequestAPIIDs() []APIID {
	return append([]APIID(nil), requestAPIIDs...)
}

// IsResponseAPIID reports whether id names a known response type
func IsResponseAPIID(id APIID) bool {
	switch id {
	case APIRx64Response, APIRx16Response, APIRx64IOSampleResponse, APIRx16IOSampleResponse,
		APIATResponse, APITxStatusResponse, APIModemStatusResponse, APIZBTxStatusResponse,
		APIZBRxResponse, APIZBExplicitRxResponse, APIZBIOSampleResponse, APIRemoteATResponse:
		return true
	default:
		return false
	}
}

// IsRequestAPIID reports whether id names a known request type
func IsRequestAPIID(id APIID) bool {
	switch id {
	case APITx64Request, APITx16Request, APIATRequest, APIATQueueRequest,
		APIZBTxRequest, APIZBExplicitTxRequest, APIRemoteATRequest:
		return true
	default:
		return false
	}
}

// NewResponse wraps an unescaped frame in the response type named by its api
// id. The checksum is not verified.
func NewResponse(raw []byte) (Response, error) {
	if len(raw) < frame.MinFrameLength {
		return nil, fmt.Errorf("response: %d bytes: %w", len(raw), ErrFrameTooShort)
	}

	switch id := APIID(raw[frame.APIIDOffset]); id {
	case APIRx64Response:
		return asResponse(NewRx64Response(raw))
	case APIRx16Response:
		return asResponse(NewRx16Response(raw))
	case APIRx64IOSampleResponse:
		return asResponse(NewRx64IOSampleResponse(raw))
	case APIRx16IOSampleResponse:
		return asResponse(NewRx16IOSampleResponse(raw))
	case APIATResponse:
		return asResponse(NewATCommandResponse(raw))
	case APITxStatusResponse:
		return asResponse(NewTxStatusResponse(raw))
	case APIModemStatusResponse:
		return asResponse(NewModemStatusResponse(raw))
	case APIZBTxStatusResponse:
		return asResponse(NewZBTxStatusResponse(raw))
	case APIZBRxResponse:
		return asResponse(NewZBRxResponse(raw))
	case APIZBExplicitRxResponse:
		return asResponse(NewZBExplicitRxResponse(raw))
	case APIZBIOSampleResponse:
		return asResponse(NewZBIOSampleResponse(raw))
	case APIRemoteATResponse:
		return asResponse(NewRemoteATCommandResponse(raw))
	default:
		return nil, fmt.Errorf("response: %s: %w", id, ErrUnknownAPIID)
	}
}

// ParseRequest decodes an unescaped request frame back into its typed form.
// Radio simulators and frame inspection tools use it; the checksum must match.
func ParseRequest(raw []byte) (Request, error) {
	if len(raw) < frame.MinFrameLength {
		return nil, fmt.Errorf("request: %d bytes: %w", len(raw), ErrFrameTooShort)
	}
	if raw[0] != frame.Delimiter {
		return nil, fmt.Errorf("request: missing start delimiter: %w", ErrInvalidArgument)
	}
	if !frame.IsComplete(raw) {
		declared, _ := frame.DeclaredLength(raw)
		return nil, fmt.Errorf("request: declared %d, got %d: %w",
			declared, len(raw)-frame.OverheadLength, ErrLengthMismatch)
	}
	if !frame.VerifyChecksum(raw[frame.APIIDOffset:]) {
		return nil, fmt.Errorf("request: %w", ErrChecksumMismatch)
	}

	id := APIID(raw[frame.APIIDOffset])
	d := raw[frame.IDDataOffset : len(raw)-1]
	need := map[APIID]int{
		APITx64Request:         10,
		APITx16Request:         4,
		APIATRequest:           3,
		APIATQueueRequest:      3,
		APIZBTxRequest:         13,
		APIZBExplicitTxRequest: 19,
		APIRemoteATRequest:     14,
	}
	n, ok := need[id]
	if !ok {
		return nil, fmt.Errorf("request: %s: %w", id, ErrUnknownAPIID)
	}
	if len(d) < n {
		return nil, fmt.Errorf("request: %s with %d bytes of id data: %w", id, len(d), ErrFrameTooShort)
	}

	be := binary.BigEndian
	fid := WithFrameID(d[0])
	switch id {
	case APITx64Request:
		return asRequest(NewTx64Request(d[10:], fid, WithDestination64(be.Uint64(d[1:])), WithTxOptions(d[9])))
	case APITx16Request:
		return asRequest(NewTx16Request(be.Uint16(d[1:]), d[4:], fid, WithTxOptions(d[3])))
	case APIATRequest:
		return asRequest(NewATCommandRequest(string(d[1:3]), fid, atParameter(d[3:])))
	case APIATQueueRequest:
		return asRequest(NewATQueueRequest(string(d[1:3]), fid, atParameter(d[3:])))
	case APIZBTxRequest:
		return asRequest(NewZBTxRequest(d[13:], fid,
			WithDestination64(be.Uint64(d[1:])),
			WithDestination16(be.Uint16(d[9:])),
			WithBroadcastRadius(d[11]),
			WithTxOptions(d[12])))
	case APIZBExplicitTxRequest:
		addr := ExplicitAddress{
			SourceEndpoint:      d[11],
			DestinationEndpoint: d[12],
			ClusterID:           be.Uint16(d[13:]),
			ProfileID:           be.Uint16(d[15:]),
		}
		return asRequest(NewZBExplicitTxRequest(be.Uint64(d[1:]), addr, d[19:], fid,
			WithDestination16(be.Uint16(d[9:])),
			WithBroadcastRadius(d[17]),
			WithTxOptions(d[18])))
	default: // APIRemoteATRequest
		return asRequest(NewRemoteATCommandRequest(be.Uint64(d[1:]), string(d[12:14]), fid,
			WithDestination16(be.Uint16(d[9:])),
			WithTxOptions(d[11]),
			atParameter(d[14:])))
	}
}

func asResponse[T Response](r T, err error) (Response, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func asRequest[T Request](r T, err error) (Request, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

// atParameter keeps a read command parameterless
func atParameter(p []byte) RequestOption {
	if len(p) == 0 {
		return func(*requestConfig) {}
	}
	return WithParameter(p)
}
