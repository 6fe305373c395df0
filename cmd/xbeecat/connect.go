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

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-xbee"
	"github.com/ZaparooProject/go-xbee/detection"
	_ "github.com/ZaparooProject/go-xbee/detection/uart"
	"github.com/ZaparooProject/go-xbee/transport/spi"
	"github.com/ZaparooProject/go-xbee/transport/uart"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// openTransport opens path with the configured transport
func (a *app) openTransport(path string) (xbee.Transport, error) {
	diagnostics := xbee.WithDiagnostics(diagnosticLogger(a.log))

	switch xbee.TransportType(a.cfg.Transport) {
	case xbee.TransportSPI:
		transport, err := spi.New(path,
			spi.WithFrequency(physic.Frequency(a.cfg.SPIFrequency)*physic.Hertz),
			spi.WithTimeout(a.cfg.Timeout),
			spi.WithDecoderOptions(diagnostics),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	default:
		transport, err := uart.New(path,
			uart.WithBaudRate(a.cfg.BaudRate),
			uart.WithTimeout(a.cfg.Timeout),
			uart.WithDecoderOptions(diagnostics),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	}
}

// transportFromDevice opens a detected radio at the baud rate it answered on
func (a *app) transportFromDevice(info detection.DeviceInfo) (xbee.Transport, error) {
	if baud, err := strconv.Atoi(info.Metadata[detection.MetaBaudRate]); err == nil {
		a.cfg.BaudRate = baud
	}
	a.cfg.Transport = info.Transport
	a.log.Info("using detected radio",
		zap.String("path", info.Path),
		zap.String("name", info.Name),
		zap.Stringer("confidence", info.Confidence),
	)
	return a.openTransport(info.Path)
}

// connect opens the configured or detected radio and confirms it answers
func (a *app) connect(ctx context.Context, deviceOpts ...xbee.Option) (*xbee.Device, error) {
	deviceOpts = append([]xbee.Option{xbee.WithTimeout(a.cfg.Timeout)}, deviceOpts...)

	opts := []xbee.ConnectOption{
		xbee.WithDeviceOptions(deviceOpts...),
		xbee.WithConnectTimeout(a.cfg.Timeout),
		xbee.WithConnectionRetries(a.cfg.Retries),
		xbee.WithTransportFactory(a.openTransport),
		xbee.WithTransportFromDeviceFactory(a.transportFromDevice),
		xbee.WithDeviceDetector(func(*detection.Options) ([]detection.DeviceInfo, error) {
			detectCtx, cancel := context.WithTimeout(ctx, a.cfg.Detect.Timeout)
			defer cancel()
			return detection.DetectAll(detectCtx, a.cfg.detectionOptions())
		}),
	}

	if a.cfg.Device == "" {
		a.log.Info("auto-detecting radio", zap.String("mode", a.cfg.Detect.Mode))
	}
	device, err := xbee.ConnectDevice(a.cfg.Device, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to radio: %w", err)
	}

	a.log.Debug("connected",
		zap.String("transport", string(device.Transport().Type())),
		zap.String("firmware", fmt.Sprintf("%04X", device.Firmware())),
	)
	return device, nil
}

// parseAddress64 accepts hex with an optional 0x prefix, or the names
// coordinator and broadcast
func parseAddress64(s string) (uint64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coordinator":
		return xbee.Address64Coordinator, nil
	case "broadcast":
		return xbee.Address64Broadcast, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid 64-bit address %q: %w", s, xbee.ErrInvalidArgument)
	}
	return v, nil
}

func parseAddress16(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid 16-bit address %q: %w", s, xbee.ErrInvalidArgument)
	}
	return uint16(v), nil
}
