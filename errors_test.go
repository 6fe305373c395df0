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
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport timeout", err: ErrTransportTimeout, want: true},
		{name: "transport read", err: ErrTransportRead, want: true},
		{name: "transport write", err: ErrTransportWrite, want: true},
		{name: "checksum mismatch", err: ErrChecksumMismatch, want: true},
		{name: "frame corrupted", err: ErrFrameCorrupted, want: true},
		{name: "wrapped timeout", err: fmt.Errorf("read: %w", ErrTransportTimeout), want: true},
		{name: "invalid argument", err: ErrInvalidArgument, want: false},
		{name: "data too large", err: ErrDataTooLarge, want: false},
		{name: "transport closed", err: ErrTransportClosed, want: false},
		{name: "remote no response", err: &ATCommandError{Command: "SL", Remote: 1, Status: CommandNoResponse}, want: true},
		{name: "invalid command", err: &ATCommandError{Command: "ZZ", Status: CommandInvalidCommand}, want: false},
		{name: "delivery mac failure", err: &DeliveryError{FrameID: 1, Status: DeliveryMACACKFailure}, want: true},
		{name: "delivery too large", err: &DeliveryError{FrameID: 1, Status: DeliveryPayloadTooLarge}, want: false},
		{name: "permanent transport error", err: NewTransportClosedError("read", "/dev/ttyUSB0"), want: false},
		{name: "transient transport error", err: NewTransportReadError("read", "/dev/ttyUSB0"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "closed", err: ErrTransportClosed, want: true},
		{name: "device not found", err: ErrDeviceNotFound, want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "closed pipe", err: fmt.Errorf("write: %w", io.ErrClosedPipe), want: true},
		{name: "EIO", err: fmt.Errorf("read: %w", syscall.EIO), want: true},
		{name: "ENODEV", err: syscall.ENODEV, want: true},
		{name: "EAGAIN", err: syscall.EAGAIN, want: false},
		{name: "timeout", err: ErrTransportTimeout, want: false},
		{name: "permanent transport error", err: NewTransportClosedError("read", ""), want: true},
		{name: "timeout transport error", err: NewTimeoutError("read", ""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()
	err := NewTimeoutError("ReadResponse", "/dev/ttyUSB0")

	assert.Equal(t, "ReadResponse /dev/ttyUSB0: transport timeout", err.Error())
	assert.Equal(t, ErrorTypeTimeout, err.Type)
	assert.True(t, err.Retryable)
	require.ErrorIs(t, err, ErrTransportTimeout)

	noPort := NewTransportWriteError("Send", "")
	assert.Equal(t, "Send: transport write failed", noPort.Error())
}

func TestATCommandError(t *testing.T) {
	t.Parallel()
	local := &ATCommandError{Command: "ZZ", Status: CommandInvalidCommand}
	assert.Equal(t, "AT ZZ: invalid command", local.Error())
	require.ErrorIs(t, local, ErrCommandFailed)

	remote := &ATCommandError{Command: "D0", Remote: 0x0013A20040401122, Status: CommandNoResponse}
	assert.Equal(t, "remote AT D0 on 0013A20040401122: no response", remote.Error())

	var target *ATCommandError
	require.ErrorAs(t, fmt.Errorf("configure: %w", remote), &target)
	assert.Equal(t, "D0", target.Command)
}

func TestDeliveryError(t *testing.T) {
	t.Parallel()
	err := &DeliveryError{FrameID: 0x2A, Status: DeliveryStatus(0x74)}
	assert.Equal(t, "frame 0x2A delivery failed: data payload too large", err.Error())
}

func TestTraceBuffer(t *testing.T) {
	t.Parallel()
	tb := NewTraceBuffer("UART", "/dev/ttyUSB0", 2)
	tb.RecordTX([]byte{0x7E, 0x00, 0x04}, "AT VR")
	tb.RecordRX([]byte{0x7E}, "")
	tb.RecordTimeout("waiting for response")
	assert.Equal(t, 2, tb.Len(), "oldest entry is evicted")

	err := tb.WrapError(ErrTransportTimeout)
	require.ErrorIs(t, err, ErrTransportTimeout)

	te := GetTrace(err)
	require.NotNil(t, te)
	assert.Len(t, te.Trace, 2)
	assert.Equal(t, TraceRX, te.Trace[0].Direction)
	assert.Equal(t, "transport timeout", te.Error())

	trace := te.FormatTrace()
	assert.Contains(t, trace, "[UART:/dev/ttyUSB0] Wire trace (2 entries):")
	assert.Contains(t, trace, "< 7E")
	assert.Contains(t, trace, "TIMEOUT: waiting for response")
	assert.NotContains(t, trace, "AT VR")

	tb.Clear()
	assert.Zero(t, tb.Len())
	assert.Len(t, te.Trace, 2, "wrapped trace is a copy")
}

func TestTraceBuffer_WrapNil(t *testing.T) {
	t.Parallel()
	tb := NewTraceBuffer("SPI", "spi0", 0)
	assert.NoError(t, tb.WrapError(nil))
	assert.Nil(t, GetTrace(errors.New("plain")))

	empty := tb.WrapError(ErrTransportRead)
	assert.Equal(t, "[SPI:spi0] (no trace data)", GetTrace(empty).FormatTrace())
}

func TestTraceEntry_String(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 1, 2, 13, 4, 5, 6_000_000, time.UTC)
	e := TraceEntry{Timestamp: ts, Direction: TraceTX, Data: []byte{0x7E, 0x00}, Note: "frame"}
	assert.Equal(t, "[13:04:05.006] TX: 7E 00 (frame)", e.String())

	e.Note = ""
	assert.Equal(t, "[13:04:05.006] TX: 7E 00", e.String())
}

func TestFormatHex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "(empty)", FormatHex(nil))
	assert.Equal(t, "7E 7D 11", FormatHex([]byte{0x7E, 0x7D, 0x11}))

	long := FormatHex(make([]byte, 40))
	assert.True(t, strings.HasSuffix(long, "... (40 bytes total)"), long)
	assert.Equal(t, 32, strings.Count(long, "00"))
}
