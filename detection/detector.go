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

// Package detection finds attached radio modules. Transport specific
// detectors register themselves from their own packages, for example
// detection/uart, and DetectAll runs every registered detector in parallel.
package detection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mode controls how much a detector may talk to a candidate port
type Mode int

const (
	// Passive only inspects USB descriptors
	Passive Mode = iota
	// Safe reads the firmware version (ATVR)
	Safe
	// Full also reads the serial number (ATSH, ATSL) and API mode (ATAP)
	Full
)

var modeNames = map[Mode]string{
	Passive: "passive",
	Safe:    "safe",
	Full:    "full",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Passive, fmt.Errorf("unknown detection mode %q", s)
}

// Confidence is how sure a detector is that a port hosts a radio
type Confidence int

const (
	// Low means only the USB bridge matched a known adapter
	Low Confidence = iota
	// Medium means the port answered a probe with a well formed frame
	Medium
	// High means the probe returned a firmware version
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Metadata keys set by detectors
const (
	MetaVIDPID   = "vidpid"
	MetaSerial   = "usb_serial"
	MetaProduct  = "product"
	MetaFirmware = "firmware"
	MetaAddress  = "address64"
	MetaAPIMode  = "api_mode"
	MetaBaudRate = "baud"
)

// DeviceInfo describes one detected radio
type DeviceInfo struct {
	// Metadata holds optional details under the Meta* keys
	Metadata map[string]string
	// Transport is the xbee.TransportType value, e.g. "uart"
	Transport string
	// Path opens the device, e.g. "/dev/ttyUSB0" or "COM3"
	Path string
	// Name is a human readable label
	Name string
	// Confidence of the match
	Confidence Confidence
}

// String returns a human-readable representation of the device
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s device at %s (confidence: %s)", d.Transport, d.Path, d.Confidence)
}

// Options configures the detection behavior
type Options struct {
	// USB VID:PID pairs to skip (e.g., ["1234:5678", "ABCD:EF01"])
	Blocklist []string
	// Device paths to explicitly ignore (e.g., ["/dev/ttyUSB0", "COM2"])
	IgnorePaths []string
	// Which transports to check (empty = all)
	Transports []string
	// BaudRates tried in order when probing serial ports
	BaudRates []int
	// Cache TTL duration
	CacheTTL time.Duration
	// Maximum time to wait for detection
	Timeout time.Duration
	// ProbeTimeout bounds a single probe exchange
	ProbeTimeout time.Duration
	// Detection invasiveness level
	Mode Mode
	// Enable result caching
	EnableCache bool
}

// DefaultOptions returns sensible default detection options
func DefaultOptions() Options {
	return Options{
		Mode:         Safe,
		Timeout:      5 * time.Second,
		ProbeTimeout: 500 * time.Millisecond,
		BaudRates:    []int{9600, 115200},
		Blocklist:    DefaultBlocklist(),
		EnableCache:  true,
		CacheTTL:     30 * time.Second,
	}
}

// Detector interface for transport-specific device detection
type Detector interface {
	// Detect searches for devices using the given options
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
	// Transport returns the transport type this detector handles
	Transport() string
}

var (
	// ErrNoDevicesFound indicates no radio was detected
	ErrNoDevicesFound = errors.New("no radio modules found")
	// ErrDetectionTimeout indicates detection timed out
	ErrDetectionTimeout = errors.New("detection timeout")
	// ErrNoDetectors indicates no detector handles the requested transports
	ErrNoDetectors = errors.New("no detectors available for specified transports")
	// ErrUnsupportedPlatform indicates the platform doesn't support this detection method
	ErrUnsupportedPlatform = errors.New("platform not supported")
)

// registry holds all registered detectors
var registry []Detector

// RegisterDetector adds a detector to the registry
func RegisterDetector(d Detector) {
	registry = append(registry, d)
}

// getDetectors returns detectors filtered by transport types
func getDetectors(transports []string) []Detector {
	if len(transports) == 0 {
		return registry
	}

	var filtered []Detector
	for _, d := range registry {
		for _, t := range transports {
			if d.Transport() == t {
				filtered = append(filtered, d)
				break
			}
		}
	}
	return filtered
}

type detectionResult struct {
	err     error
	devices []DeviceInfo
}

// DetectAll runs the registered detectors selected by opts.Transports and
// merges their results. Devices are returned if any detector found one,
// even when others failed.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	detectors := getDetectors(opts.Transports)
	if len(detectors) == 0 {
		return nil, ErrNoDetectors
	}

	results := make(chan detectionResult, len(detectors))
	for _, detector := range detectors {
		go func(d Detector) {
			results <- runSingleDetector(ctx, d, opts)
		}(detector)
	}

	var devices []DeviceInfo
	var errs []error
	for range detectors {
		select {
		case res := <-results:
			if res.err != nil {
				errs = append(errs, res.err)
				continue
			}
			devices = append(devices, res.devices...)
		case <-ctx.Done():
			return nil, ErrDetectionTimeout
		}
	}

	switch {
	case len(devices) > 0:
		return devices, nil
	case len(errs) > 0:
		return nil, errors.Join(errs...)
	default:
		return nil, ErrNoDevicesFound
	}
}

func runSingleDetector(ctx context.Context, detector Detector, opts *Options) detectionResult {
	if opts.EnableCache {
		if cached, found := getCached(detector.Transport(), opts.Mode, opts.CacheTTL); found {
			// cached results skipped Detect, so filter them here
			return detectionResult{devices: filterDevices(cached, opts)}
		}
	}

	devices, err := detector.Detect(ctx, opts)
	if err != nil && !errors.Is(err, ErrNoDevicesFound) {
		return detectionResult{err: err}
	}

	if opts.EnableCache {
		if len(devices) > 0 {
			setCached(detector.Transport(), opts.Mode, devices)
		} else {
			// a radio that was unplugged must not linger until TTL expiry
			clearCacheForTransport(detector.Transport())
		}
	}

	return detectionResult{devices: devices}
}

// filterDevices applies IgnorePaths and Blocklist to devices
func filterDevices(devices []DeviceInfo, opts *Options) []DeviceInfo {
	if len(opts.IgnorePaths) == 0 && len(opts.Blocklist) == 0 {
		return devices
	}

	var filtered []DeviceInfo
	for _, device := range devices {
		if IsPathIgnored(device.Path, opts.IgnorePaths) {
			continue
		}
		if vidpid, ok := device.Metadata[MetaVIDPID]; ok && IsBlocked(vidpid, opts.Blocklist) {
			continue
		}
		filtered = append(filtered, device)
	}
	return filtered
}

// ClearDetectionCache removes all cached detection results
func ClearDetectionCache() {
	clearCache()
}

// ClearDetectionCacheForTransport removes cached results for a specific transport
func ClearDetectionCacheForTransport(transport string) {
	clearCacheForTransport(transport)
}
