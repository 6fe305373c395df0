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
	"fmt"
	"os"
	"time"
)

// debugEnabled controls whether debug output reaches the console
var debugEnabled = false

func init() {
	if os.Getenv("XBEE_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// Debugf prints debug information.
// Always writes to the session log file (if initialized) with a timestamp.
// Only prints to console when debug mode is enabled.
func Debugf(format string, args ...any) {
	logLine("DEBUG", debugEnabled, fmt.Sprintf(format, args...))
}

// Debugln is the Println flavour of Debugf
func Debugln(args ...any) {
	logLine("DEBUG", debugEnabled, fmt.Sprint(args...))
}

// Warnf reports dropped or malformed input. It follows the same routing as
// Debugf.
func Warnf(format string, args ...any) {
	logLine("WARN", debugEnabled, fmt.Sprintf(format, args...))
}

func logLine(label string, console bool, message string) {
	if sessionLogWriter != nil {
		timestamp := time.Now().Format("15:04:05.000")
		_, _ = fmt.Fprintf(sessionLogWriter, "%s %s: %s\n", timestamp, label, message)
	}
	if console {
		_, _ = fmt.Printf("%s: %s\n", label, message)
	}
}

// SetDebugEnabled enables or disables console debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugEnabled reports whether console debug output is on
func DebugEnabled() bool {
	return debugEnabled
}
