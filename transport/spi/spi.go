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

// Package spi carries API frames over an SPI bus. The radio is the bus
// slave: every byte clocked out by the host clocks one byte back, so the
// transport polls by sending idle bytes and feeds whatever returns into its
// Decoder.
package spi

import (
	"context"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-xbee"
	"github.com/ZaparooProject/go-xbee/internal/syncutil"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultFrequency is a safe clock for every module revision
	DefaultFrequency = 1 * physic.MegaHertz
	// DefaultTimeout bounds ReadResponse
	DefaultTimeout = time.Second

	// idleByte is clocked out while polling. It is never a delimiter, so
	// the radio ignores it and the decoder skips it between frames.
	idleByte = 0xFF

	pollChunk    = 32
	pollInterval = 2 * time.Millisecond

	mode = spi.Mode0
)

// Option configures a Transport
type Option func(*config)

type config struct {
	attn        gpio.PinIn
	decoderOpts []xbee.DecoderOption
	frequency   physic.Frequency
	timeout     time.Duration
	traceSize   int
}

// WithFrequency sets the bus clock
func WithFrequency(f physic.Frequency) Option {
	return func(c *config) { c.frequency = f }
}

// WithTimeout sets the initial ReadResponse timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// WithAttention wires the radio's active low SPI_ATTN line. When set the
// bus is only clocked while the radio asserts it.
func WithAttention(pin gpio.PinIn) Option {
	return func(c *config) { c.attn = pin }
}

// WithDecoderOptions passes options to the inbound Decoder. Handler options
// are overridden by the transport.
func WithDecoderOptions(opts ...xbee.DecoderOption) Option {
	return func(c *config) { c.decoderOpts = append(c.decoderOpts, opts...) }
}

// WithTraceSize sets how many wire exchanges are kept for error reports
func WithTraceSize(entries int) Option {
	return func(c *config) { c.traceSize = entries }
}

// Transport implements xbee.Transport over SPI. Frames are escaped in both
// directions, so the module must run with AP=2.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	attn     gpio.PinIn
	decoder  *xbee.Decoder
	ready    *xbee.ResponseQueue
	trace    *xbee.TraceBuffer
	idle     []byte
	portName string
	timeout  time.Duration
	mu       syncutil.Mutex
	closed   bool
}

// New initializes the host drivers and opens portName, for example
// "/dev/spidev0.0" or "SPI0.0"
func New(portName string, opts ...Option) (*Transport, error) {
	cfg := newConfig(opts)

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(cfg.frequency, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	if cfg.attn != nil {
		if err := cfg.attn.In(gpio.PullUp, gpio.NoEdge); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to configure SPI_ATTN: %w", err)
		}
	}

	t := newTransport(conn, portName, cfg)
	t.port = port
	return t, nil
}

// NewFromConn wraps an already connected bus. Close does not release conn.
func NewFromConn(conn spi.Conn, portName string, opts ...Option) *Transport {
	return newTransport(conn, portName, newConfig(opts))
}

func newConfig(opts []Option) *config {
	cfg := &config{
		frequency: DefaultFrequency,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newTransport(conn spi.Conn, portName string, cfg *config) *Transport {
	idle := make([]byte, pollChunk)
	for i := range idle {
		idle[i] = idleByte
	}
	t := &Transport{
		conn:     conn,
		attn:     cfg.attn,
		idle:     idle,
		portName: portName,
		timeout:  cfg.timeout,
		ready:    &xbee.ResponseQueue{},
		trace:    xbee.NewTraceBuffer("SPI", portName, cfg.traceSize),
	}
	decoderOpts := append([]xbee.DecoderOption{xbee.WithResetOnComplete()}, cfg.decoderOpts...)
	t.decoder = xbee.NewDecoder(append(decoderOpts, xbee.WithHandler(t.ready))...)
	return t
}

// Send clocks out the escaped frame of req. Bytes the radio returns during
// the transfer are decoded like any other read.
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

	r := make([]byte, len(wire))
	t.trace.RecordTX(wire, req.APIID().String())
	if err := t.conn.Tx(wire, r); err != nil {
		return t.trace.WrapError(xbee.NewTransportError("Send", t.portName, err, xbee.ErrorTypeTransient))
	}
	t.feed(r)
	return nil
}

// ReadResponse returns the next decoded response, polling the bus while
// none is ready
func (t *Transport) ReadResponse(ctx context.Context) (xbee.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline := time.Now().Add(t.timeout)
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
		got, err := t.poll()
		if err != nil {
			return nil, err
		}
		if !got {
			time.Sleep(pollInterval)
		}
	}
}

// Run polls the bus into h until ctx is cancelled or a transfer fails.
// It returns nil on cancellation.
func (t *Transport) Run(ctx context.Context, h xbee.Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		t.mu.Lock()
		got, err := t.poll()
		pending := t.ready.Drain()
		t.mu.Unlock()

		for _, resp := range pending {
			h.HandleResponse(resp)
		}
		if err != nil {
			return err
		}
		if !got {
			time.Sleep(pollInterval)
		}
	}
}

// poll clocks one chunk of idle bytes and reports whether anything other
// than idle came back. t.mu must be held.
func (t *Transport) poll() (bool, error) {
	if t.closed {
		return false, xbee.NewTransportClosedError("ReadResponse", t.portName)
	}
	if t.attn != nil && t.attn.Read() == gpio.High && !t.decoder.Synchronized() {
		return false, nil
	}

	r := make([]byte, len(t.idle))
	if err := t.conn.Tx(t.idle, r); err != nil {
		return false, t.trace.WrapError(xbee.NewTransportError("ReadResponse", t.portName, err, xbee.ErrorTypeTransient))
	}
	return t.feed(r), nil
}

// feed passes clocked in bytes to the decoder, skipping idle fill outside
// a frame. It reports whether any byte was kept.
func (t *Transport) feed(r []byte) bool {
	kept := false
	for _, b := range r {
		if b == idleByte && !t.decoder.Synchronized() {
			continue
		}
		kept = true
		t.decoder.Feed(b)
	}
	if kept {
		t.trace.RecordRX(r, "")
	}
	return kept
}

// SetTimeout sets the ReadResponse timeout
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("SPI set timeout: %w", xbee.ErrInvalidArgument)
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

	if t.closed {
		return nil
	}
	t.closed = true
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("SPI close failed: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && !t.closed
}

// Type returns the transport type
func (*Transport) Type() xbee.TransportType {
	return xbee.TransportSPI
}

var _ xbee.Transport = (*Transport)(nil)
