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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Session log state
var (
	sessionLogFile   *os.File
	sessionLogPath   string
	sessionLogWriter io.Writer
)

// InitSessionLog creates a session log file in the current directory and
// returns its path.
func InitSessionLog() (string, error) {
	return InitSessionLogIn(".")
}

// InitSessionLogIn creates a session log file named xbee_<timestamp>.log in
// dir. Any previously open session log is closed first.
func InitSessionLogIn(dir string) (string, error) {
	if err := CloseSessionLog(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("xbee_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	logFile, err := os.Create(path) //nolint:gosec // name is generated here, dir is caller supplied
	if err != nil {
		return "", fmt.Errorf("failed to create session log: %w", err)
	}

	sessionLogFile = logFile
	sessionLogPath = path
	sessionLogWriter = logFile
	writeSessionHeader(logFile)

	return path, nil
}

// CloseSessionLog writes the footer and closes the session log, if any
func CloseSessionLog() error {
	if sessionLogFile == nil {
		return nil
	}

	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(sessionLogWriter, "\n%s === Session ended ===\n", timestamp)

	err := sessionLogFile.Close()
	sessionLogFile = nil
	sessionLogPath = ""
	sessionLogWriter = nil
	if err != nil {
		return fmt.Errorf("failed to close session log: %w", err)
	}
	return nil
}

// GetSessionLogPath returns the current session log path, or "" when no
// session log is open.
func GetSessionLogPath() string {
	return sessionLogPath
}

func writeSessionHeader(writer io.Writer) {
	_, _ = fmt.Fprint(writer, "=== XBee API Session Log ===\n")
	_, _ = fmt.Fprintf(writer, "Started: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "PID: %d\n", os.Getpid())
	_, _ = fmt.Fprintf(writer, "OS: %s/%s, %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	_, _ = fmt.Fprintf(writer, "Command Line: %s\n", strings.Join(os.Args, " "))
	_, _ = fmt.Fprint(writer, "============================\n\n")
}
