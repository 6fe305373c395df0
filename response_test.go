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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseResponseFields(t *testing.T) {
	t.Parallel()
	r, err := NewTxStatusResponse(mustHex(t, frameTxStatus))
	require.NoError(t, err)

	assert.Equal(t, APITxStatusResponse, r.APIID())
	assert.Equal(t, 3, r.Length())
	assert.Equal(t, []byte{0x2A, 0x74}, r.IDData())
	assert.Equal(t, byte(0xD8), r.Checksum())
	assert.True(t, r.Verify())
	assert.Equal(t, "TxStatusResponse(len=3)", r.String())

	raw := r.Raw()
	raw[4] = 0x00
	assert.Equal(t, byte(0x2A), r.FrameID(), "Raw returns a copy")
}

func TestResponse_VerifyDetectsCorruption(t *testing.T) {
	t.Parallel()
	raw := mustHex(t, frameTxStatus)
	raw[5] = 0x75

	r, err := NewTxStatusResponse(raw)
	require.NoError(t, err, "constructors do not check the checksum")
	assert.False(t, r.Verify())
}

func TestResponseConstructorErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		want error
		name string
		raw  string
	}{
		{name: "too short", raw: "7E 00 01", want: ErrFrameTooShort},
		{name: "no delimiter", raw: "00 00 03 89 2A 74 D8", want: ErrInvalidArgument},
		{name: "length mismatch", raw: "7E 00 04 89 2A 74 D8", want: ErrLengthMismatch},
		{name: "wrong api id", raw: frameModem, want: ErrWrongAPIID},
		{name: "missing status byte", raw: "7E 00 02 89 2A 4C", want: ErrFrameTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTxStatusResponse(mustHex(t, tt.raw))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRx64Response(t *testing.T) {
	t.Parallel()
	r, err := NewRx64Response(mustHex(t, frameRx64))
	require.NoError(t, err)

	assert.Equal(t, uint64(0x0013A20040522BAA), r.Source64())
	assert.Equal(t, byte(0x16), r.RSSI())
	assert.Equal(t, byte(0x03), r.Options())
	assert.Equal(t, []byte{0xF1, 0x2E, 0xAA, 0xBD, 0xC9}, r.Data())
}

func TestRx16Response(t *testing.T) {
	t.Parallel()
	r, err := NewRx16Response(mustHex(t, frameRx16))
	require.NoError(t, err)

	assert.Equal(t, uint16(0x521A), r.Source16())
	assert.Equal(t, byte(0x23), r.RSSI())
	assert.Equal(t, byte(0x01), r.Options())
	assert.Equal(t, []byte{0x12, 0x33, 0x85, 0xA1, 0xF2}, r.Data())
}

func TestATCommandResponse(t *testing.T) {
	t.Parallel()
	r, err := NewATCommandResponse(mustHex(t, frameAT))
	require.NoError(t, err)

	assert.Equal(t, byte(0x52), r.FrameID())
	assert.Equal(t, "MY", r.Command())
	assert.Equal(t, CommandOK, r.Status())
	assert.Equal(t, []byte{0x00, 0x00}, r.Value())
}

func TestModemStatusResponse(t *testing.T) {
	t.Parallel()
	r, err := NewModemStatusResponse(mustHex(t, frameModem))
	require.NoError(t, err)

	assert.Equal(t, ModemCoordinatorStarted, r.Status())
	assert.Equal(t, "coordinator started", r.Status().String())
}

func TestZBTxStatusResponse(t *testing.T) {
	t.Parallel()
	r, err := NewZBTxStatusResponse(mustHex(t, frameZBTxStat))
	require.NoError(t, err)

	assert.Equal(t, byte(0x01), r.FrameID())
	assert.Equal(t, uint16(0x7D84), r.Destination16())
	assert.Equal(t, byte(0x00), r.RetryCount())
	assert.Equal(t, DeliverySuccess, r.DeliveryStatus())
	assert.Equal(t, DiscoveryAddress, r.DiscoveryStatus())
}

func TestZBRxResponse(t *testing.T) {
	t.Parallel()
	r, err := NewZBRxResponse(mustHex(t, frameZBRx))
	require.NoError(t, err)

	assert.Equal(t, uint64(0x0013A20040522BAA), r.Source64())
	assert.Equal(t, uint16(0x7D84), r.Source16())
	assert.Equal(t, RxOptionPacketAcknowledged, r.Options())
	assert.Equal(t, []byte("RxData"), r.Data())
}

func TestZBExplicitRxResponse(t *testing.T) {
	t.Parallel()
	r, err := NewZBExplicitRxResponse(mustHex(t, frameZBExplRx))
	require.NoError(t, err)

	assert.Equal(t, uint64(0x0013A20040522BAA), r.Source64())
	assert.Equal(t, uint16(0x7D84), r.Source16())
	assert.Equal(t, byte(0xE0), r.SourceEndpoint())
	assert.Equal(t, byte(0xE0), r.DestinationEndpoint())
	assert.Equal(t, uint16(0x2211), r.ClusterID())
	assert.Equal(t, uint16(0xC105), r.ProfileID())
	assert.Equal(t, RxOptionPacketBroadcast, r.Options())
	assert.Equal(t, []byte("RxData"), r.Data())
}

func TestRemoteATCommandResponse(t *testing.T) {
	t.Parallel()
	r, err := NewRemoteATCommandResponse(mustHex(t, frameRemoteAT))
	require.NoError(t, err)

	assert.Equal(t, byte(0x55), r.FrameID())
	assert.Equal(t, uint64(0x0013A20040522BAA), r.Source64())
	assert.Equal(t, uint16(0x7D84), r.Source16())
	assert.Equal(t, "SL", r.Command())
	assert.Equal(t, CommandOK, r.Status())
	data, ok := r.Data()
	require.True(t, ok)
	assert.Equal(t, []byte{0x40, 0x52, 0x2B, 0xAA}, data)
}

func TestRemoteATCommandResponse_NoData(t *testing.T) {
	t.Parallel()
	r, err := NewRemoteATCommandResponse(mustHex(t, frameRemoteAT0))
	require.NoError(t, err)

	assert.Equal(t, 15, r.Length())
	data, ok := r.Data()
	assert.False(t, ok)
	assert.Nil(t, data)
}
