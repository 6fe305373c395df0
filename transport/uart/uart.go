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

// Package uart carries API frames over a serial port.
package uart

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ZaparooProject/go-xbee"
	"github.com/ZaparooProject/go-xbee/internal/syncutil"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the factory setting of the BD register
	DefaultBaudRate = 9600
	// DefaultTimeout bounds ReadResponse
	DefaultTimeout = time.Second

	readChunk = 256
)

// pollInterval is the serial read timeout. Each ReadResponse or Run loop
// iteration blocks at most this long, so it bounds cancellation latency.
// Windows drivers need the longer value.
func pollInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// Option configures a Transport
type Option func(*config)

type config struct {
	decoderOpts []xbee.DecoderOption
	baudRate    int
	timeout     time.Duration
	traceSize   int
}

// WithBaudRate sets the line speed. It must match the module's BD register.
func WithBaudRate(baud int) Option {
	return func(c *config) { c.baudRate = baud }
}

// WithTimeout sets the initial ReadResponse timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// WithDecoderOptions passes options to the inbound Decoder, typically
// WithDiagnostics. Handler options are overridden by the transport.
func WithDecoderOptions(opts ...xbee.DecoderOption) Option {
	return func(c *config) { c.decoderOpts = append(c.decoderOpts, opts...) }
}

// WithTraceSize sets how many wire exchanges are kept for error reports
func WithTraceSize(entries int) Option {
	return func(c *config) { c.traceSize = entries }
}

// Transport implements xbee.Transport over a serial port. The module must
// run in API mode 2 (AP=2, escaped).
type Transport struct {
	port     serial.Port
	decoder  *xbee.Decoder
	ready    *xbee.ResponseQueue
	trace    *xbee.TraceBuffer
	portName string
	timeout  time.Duration
	mu       syncutil.Mutex
	closed   bool
}

// New opens portName at 8N1
func New(portName string, opts ...Option) (*Transport, error) {
	cfg := newConfig(opts)

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(pollInterval()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}

	return newTransport(port, portName, cfg), nil
}

// NewFromPort wraps an already open port. The caller configures its mode
// and read timeout.
func NewFromPort(port serial.Port, portName string, opts ...Option) *Transport {
	return newTransport(port, portName, newConfig(opts))
}

func newConfig(opts []Option) *config {
	cfg := &config{
		baudRate: DefaultBaudRate,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newTransport(port serial.Port, portName string, cfg *config) *Transport {
	t := &Transport{
		port:     port,
		portName: portName,
		timeout:  cfg.timeout,
		ready:    &xbee.ResponseQueue{},
		trace:    xbee.NewTraceBuffer("UART", portName, cfg.traceSize),
	}
	decoderOpts := append([]xbee.DecoderOption{xbee.WithResetOnComplete()}, cfg.decoderOpts...)
	t.decoder = xbee.NewDecoder(append(decoderOpts, xbee.WithHandler(t.ready))...)
	return t
}

// Send escapes the frame of req and writes it to the port
func (t *Transport) Send(ctx context.Context, req xbee.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return xbee.NewTransportClosedError("Send", t.portName)
	}

	wire, err := xbee.EscapeFrame(req.Frame())
	if err != nil {
		return fmt.Errorf("encode %s: %w", req, err)
	}

	n, err := t.port.Write(wire)
	t.trace.RecordTX(wire, req.APIID().String())
	if err != nil {
		return t.trace.WrapError(xbee.NewTransportError("Send", t.portName, err, xbee.ErrorTypeTransient))
	}
	if n != len(wire) {
		return t.trace.WrapError(xbee.NewTransportWriteError("Send", t.portName))
	}

	return t.drainWithRetry()
}

// ReadResponse returns the next decoded response, reading from the port
// while none is ready
func (t *Transport) ReadResponse(ctx context.Context) (xbee.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, readChunk)
	for {
		if resp, ok := t.ready.Pop(); ok {
			return resp, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			t.trace.RecordTimeout(fmt.Sprintf("no response within %v", t.timeout))
			return nil, t.trace.WrapError(xbee.NewTimeoutError("ReadResponse", t.portName))
		}
		if err := t.readOnce(buf); err != nil {
			return nil, err
		}
	}
}

// Run feeds the port into h until ctx is cancelled or the port fails.
// It returns nil on cancellation.
func (t *Transport) Run(ctx context.Context, h xbee.Handler) error {
	buf := make([]byte, readChunk)
	for {
		if ctx.Err() != nil {
			return nil
		}

		t.mu.Lock()
		err := t.readOnce(buf)
		pending := t.ready.Drain()
		t.mu.Unlock()

		for _, resp := range pending {
			h.HandleResponse(resp)
		}
		if err != nil {
			return err
		}
	}
}

// readOnce performs one port read and feeds the decoder. t.mu must be held.
func (t *Transport) readOnce(buf []byte) error {
	if t.closed {
		return xbee.NewTransportClosedError("ReadResponse", t.portName)
	}

	n, err := t.port.Read(buf)
	if n > 0 {
		t.trace.RecordRX(buf[:n], "")
		_, _ = t.decoder.Write(buf[:n])
	}
	if err == nil {
		return nil
	}
	if isInterruptedSystemCall(err) {
		return nil
	}

	errType := xbee.ErrorTypeTransient
	if xbee.IsFatal(err) {
		errType = xbee.ErrorTypePermanent
	}
	return t.trace.WrapError(xbee.NewTransportError("ReadResponse", t.portName, err, errType))
}

// SetTimeout sets the ReadResponse timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("UART set timeout: %w", xbee.ErrInvalidArgument)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.port == nil {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() xbee.TransportType {
	return xbee.TransportUART
}

// PortName returns the path the transport was opened with
func (t *Transport) PortName() string {
	return t.portName
}

// isInterruptedSystemCall checks if an error is caused by an interrupted system call
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry waits for written bytes to leave the port, retrying EINTR
func (t *Transport) drainWithRetry() error {
	const maxRetries = 3
	delay := 2 * time.Millisecond

	var err error
	for range maxRetries {
		if err = t.port.Drain(); err == nil || !isInterruptedSystemCall(err) {
			break
		}
		time.Sleep(delay)
		delay *= 2
	}
	if err != nil {
		return fmt.Errorf("UART drain failed: %w", errors.Join(xbee.ErrTransportWrite, err))
	}
	return nil
}

var _ xbee.Transport = (*Transport)(nil)
