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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-xbee/internal/syncutil"
)

// Transport moves API frames between the host and a radio module.
// Implementations own a Decoder for the inbound direction.
type Transport interface {
	// Send writes the escaped frame of req
	Send(ctx context.Context, req Request) error

	// ReadResponse returns the next complete response, waiting up to the
	// transport timeout
	ReadResponse(ctx context.Context) (Response, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport and retries failed sends
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// Send writes req, retrying retryable transport errors
func (t *TransportWithRetry) Send(ctx context.Context, req Request) error {
	return RetryWithConfig(ctx, t.config, func() error {
		err := t.transport.Send(ctx, req)
		if err == nil {
			return nil
		}
		var te *TransportError
		if errors.As(err, &te) {
			return err
		}
		return &TransportError{
			Op:        "Send",
			Err:       err,
			Type:      errorTypeOf(err),
			Retryable: IsRetryable(err),
		}
	})
}

// ReadResponse reads from the underlying transport without retrying.
// A timeout here usually means the frame was never sent.
func (t *TransportWithRetry) ReadResponse(ctx context.Context) (Response, error) {
	resp, err := t.transport.ReadResponse(ctx)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// SetTimeout sets the read timeout for the transport
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	if err := t.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}

func errorTypeOf(err error) ErrorType {
	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case IsRetryable(err):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// Responder produces the raw frames a mock radio answers a request with
type Responder func(req Request) [][]byte

// MockTransport is an in-memory Transport for tests. Responses come from
// QueueResponse or from a Responder registered for the request's api id.
type MockTransport struct {
	responders map[APIID]Responder
	errorMap   map[APIID]error
	readErr    error
	queue      chan Response
	sent       []Request
	timeout    time.Duration
	delay      time.Duration
	mu         syncutil.RWMutex
	connected  bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		connected:  true,
		timeout:    time.Second,
		responders: make(map[APIID]Responder),
		errorMap:   make(map[APIID]error),
		queue:      make(chan Response, 64),
	}
}

// Send implements Transport
func (m *MockTransport) Send(ctx context.Context, req Request) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.RLock()
	connected := m.connected
	delay := m.delay
	m.mu.RUnlock()

	if !connected {
		return NewTransportClosedError("Send", "mock")
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	m.sent = append(m.sent, req)
	if err, exists := m.errorMap[req.APIID()]; exists {
		m.mu.Unlock()
		return err
	}
	responder := m.responders[req.APIID()]
	m.mu.Unlock()

	if responder == nil {
		return nil
	}
	for _, raw := range responder(req) {
		if err := m.QueueResponse(raw); err != nil {
			return err
		}
	}
	return nil
}

// ReadResponse implements Transport
func (m *MockTransport) ReadResponse(ctx context.Context) (Response, error) {
	m.mu.RLock()
	connected := m.connected
	timeout := m.timeout
	readErr := m.readErr
	m.mu.RUnlock()

	if !connected {
		return nil, NewTransportClosedError("ReadResponse", "mock")
	}
	if readErr != nil {
		return nil, readErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-m.queue:
		return resp, nil
	case <-timer.C:
		return nil, NewTimeoutError("ReadResponse", "mock")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// SetTimeout implements Transport
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	m.timeout = timeout
	m.mu.Unlock()
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.RLock()
	connected := m.connected
	m.mu.RUnlock()
	return connected
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// QueueResponse decodes raw and makes it available to ReadResponse
func (m *MockTransport) QueueResponse(raw []byte) error {
	resp, err := NewResponse(raw)
	if err != nil {
		return fmt.Errorf("mock response: %w", err)
	}
	select {
	case m.queue <- resp:
		return nil
	default:
		return errors.New("mock response queue full")
	}
}

// SetResponder registers the answer for every request of the given type
func (m *MockTransport) SetResponder(id APIID, responder Responder) {
	m.mu.Lock()
	m.responders[id] = responder
	m.mu.Unlock()
}

// SetError makes Send fail for the given request type
func (m *MockTransport) SetError(id APIID, err error) {
	m.mu.Lock()
	m.errorMap[id] = err
	m.mu.Unlock()
}

// ClearError removes error injection for a request type
func (m *MockTransport) ClearError(id APIID) {
	m.mu.Lock()
	delete(m.errorMap, id)
	m.mu.Unlock()
}

// SetReadError makes every ReadResponse fail with err until cleared with nil
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// SetDelay configures a delay to simulate hardware response time
func (m *MockTransport) SetDelay(delay time.Duration) {
	m.mu.Lock()
	m.delay = delay
	m.mu.Unlock()
}

// Sent returns the requests passed to Send so far
func (m *MockTransport) Sent() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Request(nil), m.sent...)
}

// CallCount returns how many requests of the given type were sent
func (m *MockTransport) CallCount(id APIID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, req := range m.sent {
		if req.APIID() == id {
			count++
		}
	}
	return count
}

// Reset clears sent requests and pending responses and reconnects
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.connected = true
	m.mu.Unlock()
	for {
		select {
		case <-m.queue:
		default:
			return
		}
	}
}
