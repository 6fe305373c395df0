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

package detection

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// KnownAdapter is a USB serial bridge found on radio carrier boards
type KnownAdapter struct {
	VIDPID string
	Name   string
}

// KnownAdapters lists bridges used by common development and breakout
// boards. A match alone gives Low confidence.
func KnownAdapters() []KnownAdapter {
	return []KnownAdapter{
		{VIDPID: "0403:6001", Name: "FTDI FT232R"},
		{VIDPID: "0403:6015", Name: "FTDI FT231X"},
		{VIDPID: "10C4:EA60", Name: "Silicon Labs CP210x"},
		{VIDPID: "1A86:7523", Name: "WCH CH340"},
	}
}

// AdapterName returns the KnownAdapters name for vidpid
func AdapterName(vidpid string) (string, bool) {
	vidpid = NormalizeVIDPID(vidpid)
	for _, a := range KnownAdapters() {
		if a.VIDPID == vidpid {
			return a.Name, true
		}
	}
	return "", false
}

// DefaultBlocklist returns bridges that must never be probed. Writing API
// frames to them is known to upset the attached device.
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno R3, resets on open
		"1FC9:0083", // NXP LPC bootloader
	}
}

// IsBlocked reports whether vidpid is in blocklist. Comparison ignores case
// and surrounding whitespace.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = NormalizeVIDPID(vidpid)
	if vidpid == "" {
		return false
	}
	for _, blocked := range blocklist {
		if NormalizeVIDPID(blocked) == vidpid {
			return true
		}
	}
	return false
}

// NormalizeVIDPID returns "VVVV:PPPP" in upper case, or "" when s is not a
// pair of hex numbers of at most four digits. Enumerators on some platforms
// drop leading zeros, so "403:6001" becomes "0403:6001".
func NormalizeVIDPID(s string) string {
	vid, pid, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ""
	}
	return FormatVIDPID(vid, pid)
}

// FormatVIDPID joins separate VID and PID strings as NormalizeVIDPID does
func FormatVIDPID(vid, pid string) string {
	v, err := strconv.ParseUint(strings.TrimSpace(vid), 16, 16)
	if err != nil {
		return ""
	}
	p, err := strconv.ParseUint(strings.TrimSpace(pid), 16, 16)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04X:%04X", v, p)
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)
	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

// normalizedPath cleans path and lowercases it, since COM port names are
// case insensitive
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
