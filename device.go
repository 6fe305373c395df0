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

	"github.com/ZaparooProject/go-xbee/detection"
	"github.com/ZaparooProject/go-xbee/internal/syncutil"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retries of SendData on retryable delivery failures
	RetryConfig *RetryConfig
	// Timeout bounds a single request/response exchange
	Timeout time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     2 * time.Second,
	}
}

// Option configures a Device
type Option func(*Device) error

// WithTimeout sets the exchange timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidArgument, timeout)
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithRetryConfig sets the retry policy used by SendData
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		d.config.RetryConfig = config
		return nil
	}
}

// WithUnsolicitedHandler receives every response read while waiting for an
// answer that does not belong to the pending request, such as received data
// or modem status frames.
func WithUnsolicitedHandler(h Handler) Option {
	return func(d *Device) error {
		d.unsolicited = h
		return nil
	}
}

// Device drives a radio module in API mode over a Transport.
//
// Exchanges are serialized, so a Device may be shared between goroutines,
// but only one request is in flight at a time.
type Device struct {
	transport   Transport
	config      *DeviceConfig
	unsolicited Handler
	firmware    uint16
	mu          syncutil.Mutex
	frameID     byte
}

// New creates a new device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// nextFrameID cycles through 1..255. Zero is reserved for "no status frame".
func (d *Device) nextFrameID() byte {
	d.frameID++
	if d.frameID == FrameIDNoResponse {
		d.frameID = 1
	}
	return d.frameID
}

// exchange sends req and reads until match accepts a response. Responses
// that do not match go to the unsolicited handler.
func (d *Device) exchange(ctx context.Context, req Request, match func(Response) bool) (Response, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	if err := d.transport.Send(ctx, req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.APIID(), err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, NewTimeoutError(req.APIID().String(), "")
		}
		resp, err := d.transport.ReadResponse(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, NewTimeoutError(req.APIID().String(), "")
			}
			return nil, fmt.Errorf("awaiting answer to %s: %w", req.APIID(), err)
		}
		if match(resp) {
			return resp, nil
		}
		d.forward(resp)
	}
}

func (d *Device) forward(resp Response) {
	if d.unsolicited != nil {
		d.unsolicited.HandleResponse(resp)
		return
	}
	Debugf("discarding unsolicited %s", resp)
}

// ATCommand runs a local AT command and returns its value bytes
func (d *Device) ATCommand(ctx context.Context, command string, param []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextFrameID()
	req, err := NewATCommandRequest(command, WithParameter(param), WithFrameID(id))
	if err != nil {
		return nil, err
	}

	resp, err := d.exchange(ctx, req, func(r Response) bool {
		at, ok := r.(*ATCommandResponse)
		return ok && at.FrameID() == id && at.Command() == command
	})
	if err != nil {
		return nil, err
	}

	at, _ := resp.(*ATCommandResponse)
	if at.Status() != CommandOK {
		return nil, &ATCommandError{Command: command, Status: at.Status()}
	}
	return at.Value(), nil
}

// QueueATCommand queues a parameter change without applying it. The module
// sends no status frame, the change takes effect on ApplyChanges.
func (d *Device) QueueATCommand(ctx context.Context, command string, param []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	req, err := NewATQueueRequest(command, WithParameter(param), WithFrameID(FrameIDNoResponse))
	if err != nil {
		return err
	}
	if err := d.transport.Send(ctx, req); err != nil {
		return fmt.Errorf("send %s: %w", req.APIID(), err)
	}
	return nil
}

// ApplyChanges applies queued parameter changes
func (d *Device) ApplyChanges(ctx context.Context) error {
	_, err := d.ATCommand(ctx, "AC", nil)
	return err
}

// RemoteATCommand runs an AT command on the module at dest64. Changes are
// applied immediately unless opts override the transmit options.
func (d *Device) RemoteATCommand(
	ctx context.Context, dest64 uint64, command string, param []byte, opts ...RequestOption,
) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextFrameID()
	opts = append(opts, WithParameter(param), WithFrameID(id))
	req, err := NewRemoteATCommandRequest(dest64, command, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := d.exchange(ctx, req, func(r Response) bool {
		at, ok := r.(*RemoteATCommandResponse)
		return ok && at.FrameID() == id
	})
	if err != nil {
		return nil, err
	}

	at, _ := resp.(*RemoteATCommandResponse)
	if at.Status() != CommandOK {
		return nil, &ATCommandError{Command: command, Remote: dest64, Status: at.Status()}
	}
	data, _ := at.Data()
	return data, nil
}

// SendData transmits data to dest64 with a ZigBee transmit request and
// waits for its status frame. Retryable delivery failures are retried with
// the device retry policy.
func (d *Device) SendData(
	ctx context.Context, dest64 uint64, data []byte, opts ...RequestOption,
) (*ZBTxStatusResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var status *ZBTxStatusResponse
	err := RetryWithConfig(ctx, d.config.RetryConfig, func() error {
		id := d.nextFrameID()
		attemptOpts := append(append([]RequestOption(nil), opts...), WithDestination64(dest64), WithFrameID(id))
		req, err := NewZBTxRequest(data, attemptOpts...)
		if err != nil {
			return err
		}

		resp, err := d.exchange(ctx, req, func(r Response) bool {
			st, ok := r.(*ZBTxStatusResponse)
			return ok && st.FrameID() == id
		})
		if err != nil {
			return err
		}

		st, _ := resp.(*ZBTxStatusResponse)
		if st.DeliveryStatus() != DeliverySuccess {
			return &DeliveryError{FrameID: id, Status: st.DeliveryStatus()}
		}
		status = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Send16 transmits data to a 16-bit address with a legacy transmit request
func (d *Device) Send16(ctx context.Context, dest16 uint16, data []byte, opts ...RequestOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextFrameID()
	opts = append(opts, WithFrameID(id))
	req, err := NewTx16Request(dest16, data, opts...)
	if err != nil {
		return err
	}

	resp, err := d.exchange(ctx, req, func(r Response) bool {
		st, ok := r.(*TxStatusResponse)
		return ok && st.FrameID() == id
	})
	if err != nil {
		return err
	}

	st, _ := resp.(*TxStatusResponse)
	if st.Status() != DeliverySuccess {
		return &DeliveryError{FrameID: id, Status: st.Status()}
	}
	return nil
}

// FirmwareVersion queries the VR register
func (d *Device) FirmwareVersion(ctx context.Context) (uint16, error) {
	value, err := d.ATCommand(ctx, "VR", nil)
	if err != nil {
		return 0, err
	}
	v, err := registerValue(value, 2)
	if err != nil {
		return 0, fmt.Errorf("VR: %w", err)
	}
	return uint16(v), nil
}

// SerialNumber returns the 64-bit address assembled from SH and SL
func (d *Device) SerialNumber(ctx context.Context) (uint64, error) {
	high, err := d.ATCommand(ctx, "SH", nil)
	if err != nil {
		return 0, err
	}
	low, err := d.ATCommand(ctx, "SL", nil)
	if err != nil {
		return 0, err
	}
	sh, err := registerValue(high, 4)
	if err != nil {
		return 0, fmt.Errorf("SH: %w", err)
	}
	sl, err := registerValue(low, 4)
	if err != nil {
		return 0, fmt.Errorf("SL: %w", err)
	}
	return sh<<32 | sl, nil
}

// registerValue decodes a big-endian register of at most width bytes.
// Modules drop leading zero bytes from numeric values.
func registerValue(value []byte, width int) (uint64, error) {
	if len(value) == 0 || len(value) > width {
		return 0, fmt.Errorf("%w: %d byte register value", ErrInvalidResponse, len(value))
	}
	var v uint64
	for _, b := range value {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// Init checks that the module answers in API mode and caches its firmware version
func (d *Device) Init(ctx context.Context) error {
	version, err := d.FirmwareVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read firmware version: %w", err)
	}
	d.firmware = version
	Debugf("module firmware version %04X", version)
	return nil
}

// Firmware returns the version cached by Init
func (d *Device) Firmware() uint16 {
	return d.firmware
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// SetTimeout sets the default timeout for operations
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// SetRetryConfig updates the retry configuration
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	deviceDetector         func(*detection.Options) ([]detection.DeviceInfo, error)
	deviceOptions          []Option
	timeout                time.Duration
	autoDetect             bool
	connectionRetries      int
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithConnectTimeout sets the timeout used for the connection handshake
func WithConnectTimeout(timeout time.Duration) ConnectOption {
	return func(c *connectConfig) error {
		c.timeout = timeout
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// WithConnectionRetries sets the number of connection retry attempts
func WithConnectionRetries(maxAttempts int) ConnectOption {
	return func(c *connectConfig) error {
		if maxAttempts < 1 {
			return fmt.Errorf("connection retries must be at least 1, got %d", maxAttempts)
		}
		c.connectionRetries = maxAttempts
		return nil
	}
}

// WithDeviceDetector sets a custom device detector function for auto-detection
func WithDeviceDetector(detector func(*detection.Options) ([]detection.DeviceInfo, error)) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceDetector = detector
		return nil
	}
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{
		timeout:           5 * time.Second,
		connectionRetries: 3,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	return config, nil
}

// ConnectDevice opens a transport for path, or for the first detected
// module when path is empty or auto-detection is enabled, and checks that
// the module answers.
//
//	device, err := xbee.ConnectDevice("/dev/ttyUSB0",
//		xbee.WithTransportFactory(func(path string) (xbee.Transport, error) {
//			return uart.New(path)
//		}))
func ConnectDevice(path string, opts ...ConnectOption) (*Device, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, err
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := setupDeviceWithRetry(transport, config)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	return device, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(config.transportDeviceFactory, config.deviceDetector)
	}
	return createManualTransport(path, config.transportFactory)
}

func setupDevice(transport Transport, config *connectConfig) (*Device, error) {
	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	ctx := context.Background()
	if config.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.timeout)
		defer cancel()
	}

	if err := device.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	return device, nil
}

// setupDeviceWithRetry retries the handshake for manually configured paths.
// Detected devices were already probed and get a single attempt.
func setupDeviceWithRetry(transport Transport, config *connectConfig) (*Device, error) {
	if config.autoDetect {
		return setupDevice(transport, config)
	}

	retryConfig := &RetryConfig{
		MaxAttempts:       config.connectionRetries,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      10 * time.Second,
	}

	var device *Device
	err := RetryWithConfig(context.Background(), retryConfig, func() error {
		var err error
		device, err = setupDevice(transport, config)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup device after %d attempts: %w", config.connectionRetries, err)
	}

	return device, nil
}

func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	return transport, nil
}

func createAutoDetectedTransport(
	factory TransportFromDeviceFactory,
	detector func(*detection.Options) ([]detection.DeviceInfo, error),
) (Transport, error) {
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	var devices []detection.DeviceInfo
	var err error

	if detector != nil {
		devices, err = detector(&opts)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		devices, err = detection.DetectAll(ctx, &opts)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, ErrDeviceNotFound
	}

	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}
	return factory(devices[0])
}
