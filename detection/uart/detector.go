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

// Package uart detects radios on serial ports. Importing it registers the
// detector with the detection package.
package uart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ZaparooProject/go-xbee"
	"github.com/ZaparooProject/go-xbee/detection"
	"github.com/ZaparooProject/go-xbee/transport/uart"
	"go.bug.st/serial/enumerator"
)

// listPorts and openTransport are replaced in tests
var (
	listPorts     = enumerator.GetDetailedPortsList
	openTransport = func(path string, baud int, timeout time.Duration) (xbee.Transport, error) {
		return uart.New(path, uart.WithBaudRate(baud), uart.WithTimeout(timeout))
	}
)

type detector struct{}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return string(xbee.TransportUART)
}

// Detect lists serial ports and, unless opts.Mode is Passive, probes each
// candidate with AT commands. Non-USB ports are only probed in Full mode.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if ctx.Err() != nil {
			break
		}
		if device, ok := examine(ctx, port, opts); ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// examine decides whether port hosts a radio
func examine(ctx context.Context, port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	vidpid := ""
	if port.IsUSB {
		vidpid = detection.FormatVIDPID(port.VID, port.PID)
	}
	if detection.IsBlocked(vidpid, opts.Blocklist) {
		return detection.DeviceInfo{}, false
	}
	adapter, known := detection.AdapterName(vidpid)

	device := detection.DeviceInfo{
		Transport:  string(xbee.TransportUART),
		Path:       port.Name,
		Name:       deviceName(port, adapter),
		Confidence: detection.Low,
		Metadata:   make(map[string]string),
	}
	if vidpid != "" {
		device.Metadata[detection.MetaVIDPID] = vidpid
	}
	if port.SerialNumber != "" {
		device.Metadata[detection.MetaSerial] = port.SerialNumber
	}
	if port.Product != "" {
		device.Metadata[detection.MetaProduct] = port.Product
	}

	switch {
	case opts.Mode == detection.Passive:
		return device, known
	case !port.IsUSB && opts.Mode != detection.Full:
		return detection.DeviceInfo{}, false
	}

	result, err := probeFn(ctx, port.Name, opts)
	if err != nil {
		xbee.Debugf("detect: no radio on %s: %v", port.Name, err)
		return detection.DeviceInfo{}, false
	}

	device.Confidence = detection.High
	device.Metadata[detection.MetaBaudRate] = strconv.Itoa(result.baudRate)
	device.Metadata[detection.MetaFirmware] = fmt.Sprintf("%04X", result.firmware)
	if opts.Mode == detection.Full {
		device.Metadata[detection.MetaAddress] = fmt.Sprintf("%016X", result.address64)
		device.Metadata[detection.MetaAPIMode] = strconv.Itoa(int(result.apiMode))
	}
	return device, true
}

func deviceName(port *enumerator.PortDetails, adapter string) string {
	switch {
	case port.Product != "":
		return port.Product
	case adapter != "":
		return adapter
	default:
		return port.Name
	}
}

type probeResult struct {
	baudRate  int
	firmware  uint16
	address64 uint64
	apiMode   byte
}

var probeFn = probe

// probe tries each configured baud rate once. Detection never retries a
// port, since the port may belong to an unrelated device.
func probe(ctx context.Context, path string, opts *detection.Options) (probeResult, error) {
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	rates := opts.BaudRates
	if len(rates) == 0 {
		rates = []int{uart.DefaultBaudRate}
	}

	var lastErr error
	for _, baud := range rates {
		result, err := probeAt(ctx, path, baud, timeout, opts.Mode)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return probeResult{}, lastErr
}

func probeAt(ctx context.Context, path string, baud int, timeout time.Duration, mode detection.Mode) (probeResult, error) {
	transport, err := openTransport(path, baud, timeout)
	if err != nil {
		return probeResult{}, err
	}
	defer func() { _ = transport.Close() }()

	device, err := xbee.New(transport, xbee.WithTimeout(timeout))
	if err != nil {
		return probeResult{}, fmt.Errorf("probe %s: %w", path, err)
	}

	result := probeResult{baudRate: baud}
	if result.firmware, err = device.FirmwareVersion(ctx); err != nil {
		return probeResult{}, fmt.Errorf("probe %s at %d baud: %w", path, baud, err)
	}
	if mode != detection.Full {
		return result, nil
	}

	if result.address64, err = device.SerialNumber(ctx); err != nil {
		return probeResult{}, fmt.Errorf("probe %s serial number: %w", path, err)
	}
	ap, err := device.ATCommand(ctx, "AP", nil)
	if err != nil {
		return probeResult{}, fmt.Errorf("probe %s api mode: %w", path, err)
	}
	if len(ap) > 0 {
		result.apiMode = ap[len(ap)-1]
	}
	return result, nil
}
