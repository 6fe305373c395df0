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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport_QueueAndRead(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.QueueResponse(mustHex(t, frameTxStatus)))

	resp, err := mock.ReadResponse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, APITxStatusResponse, resp.APIID())

	require.Error(t, mock.QueueResponse([]byte{0x7E, 0x00}))
	assert.Equal(t, TransportMock, mock.Type())
}

func TestMockTransport_ReadTimeout(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.SetTimeout(5*time.Millisecond))

	_, err := mock.ReadResponse(context.Background())
	require.ErrorIs(t, err, ErrTransportTimeout)
}

func TestMockTransport_ReadHonoursContext(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.ReadResponse(ctx)
	require.ErrorIs(t, err, context.Canceled)

	req, err := NewATCommandRequest("VR")
	require.NoError(t, err)
	require.ErrorIs(t, mock.Send(ctx, req), context.Canceled)
}

func TestMockTransport_ErrorInjection(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	req, err := NewATCommandRequest("VR")
	require.NoError(t, err)

	injected := NewTransportWriteError("Send", "mock")
	mock.SetError(APIATRequest, injected)
	require.ErrorIs(t, mock.Send(context.Background(), req), ErrTransportWrite)

	mock.ClearError(APIATRequest)
	require.NoError(t, mock.Send(context.Background(), req))
	assert.Equal(t, 2, mock.CallCount(APIATRequest))

	mock.SetReadError(ErrTransportRead)
	_, err = mock.ReadResponse(context.Background())
	require.ErrorIs(t, err, ErrTransportRead)
}

func TestMockTransport_Reset(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.SetTimeout(5*time.Millisecond))
	req, err := NewATCommandRequest("VR")
	require.NoError(t, err)
	require.NoError(t, mock.Send(context.Background(), req))
	require.NoError(t, mock.QueueResponse(mustHex(t, frameModem)))
	require.NoError(t, mock.Close())

	mock.Reset()
	assert.True(t, mock.IsConnected())
	assert.Empty(t, mock.Sent())
	_, err = mock.ReadResponse(context.Background())
	require.ErrorIs(t, err, ErrTransportTimeout)
}

// flakyTransport fails its next failures sends with err
type flakyTransport struct {
	*MockTransport
	err      error
	failures int
}

func (f *flakyTransport) Send(ctx context.Context, req Request) error {
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	return f.MockTransport.Send(ctx, req)
}

func TestTransportWithRetry_Send(t *testing.T) {
	t.Parallel()

	flaky := &flakyTransport{MockTransport: NewMockTransport(), err: ErrTransportWrite, failures: 2}
	tr := NewTransportWithRetry(flaky, fastRetry(3))

	req, err := NewZBTxRequest([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tr.Send(context.Background(), req))
	assert.Len(t, flaky.Sent(), 1)
}

func TestTransportWithRetry_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	permanent := errors.New("port unplugged")
	flaky := &flakyTransport{MockTransport: NewMockTransport(), err: permanent, failures: 5}
	tr := NewTransportWithRetry(flaky, fastRetry(5))

	req, err := NewZBTxRequest([]byte("x"))
	require.NoError(t, err)
	err = tr.Send(context.Background(), req)
	require.ErrorIs(t, err, permanent)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorTypePermanent, te.Type)
	assert.Equal(t, 4, flaky.failures)
}

func TestTransportWithRetry_Delegates(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	tr := NewTransportWithRetry(mock, nil)
	require.NoError(t, mock.QueueResponse(mustHex(t, frameAT)))

	resp, err := tr.ReadResponse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, APIATResponse, resp.APIID())

	require.NoError(t, tr.SetTimeout(time.Millisecond))
	assert.Equal(t, TransportMock, tr.Type())
	assert.True(t, tr.IsConnected())
	require.NoError(t, tr.Close())
	assert.False(t, tr.IsConnected())
}
