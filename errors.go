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
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// Codec errors. None of these are retryable.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrFrameTooShort    = errors.New("frame too short")
	ErrLengthMismatch   = errors.New("frame length does not match declared length")
	ErrWrongAPIID       = errors.New("wrong API identifier")
	ErrUnknownAPIID     = errors.New("unknown API identifier")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrFrameCorrupted   = errors.New("frame corrupted")
	ErrDataTooLarge     = errors.New("data too large")
)

// Transport errors - potentially retryable
var (
	ErrTransportTimeout  = errors.New("transport timeout")
	ErrTransportWrite    = errors.New("transport write failed")
	ErrTransportRead     = errors.New("transport read failed")
	ErrTransportClosed   = errors.New("transport is closed")
	ErrTransportNotReady = errors.New("transport not ready")
)

// Device errors - generally not retryable
var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrCommandFailed   = errors.New("command execution failed")
	ErrInvalidResponse = errors.New("invalid response format")
)

// ErrorType represents the category of error for retry logic
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error
	ErrorTypeTimeout
)

// TransportError wraps transport-level errors with additional context
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Port or device identifier
	Type      ErrorType // Error category
	Retryable bool      // Whether the error is retryable
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ATCommandError reports a local or remote AT command answered with a
// non-OK status.
type ATCommandError struct {
	Command string
	Remote  uint64 // zero for local commands
	Status  CommandStatus
}

func (e *ATCommandError) Error() string {
	if e.Remote != 0 {
		return fmt.Sprintf("remote AT %s on %016X: %s", e.Command, e.Remote, e.Status)
	}
	return fmt.Sprintf("AT %s: %s", e.Command, e.Status)
}

// Unwrap lets callers match any AT failure with errors.Is(err, ErrCommandFailed)
func (e *ATCommandError) Unwrap() error {
	return ErrCommandFailed
}

// DeliveryError reports a transmit request whose status frame was not a success.
type DeliveryError struct {
	FrameID byte
	Status  DeliveryStatus
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("frame 0x%02X delivery failed: %s", e.FrameID, e.Status)
}

// IsRetryable returns true if the error is potentially retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	var ae *ATCommandError
	if errors.As(err, &ae) {
		// a remote node that did not answer may answer next time
		return ae.Status == CommandNoResponse
	}

	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Status != DeliveryPayloadTooLarge && de.Status != DeliveryInvalidDestinationEndpoint
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrFrameCorrupted),
		errors.Is(err, ErrChecksumMismatch):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the radio or its connection is
// gone. This is distinct from IsRetryable which concerns a single operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypePermanent
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// Windows error codes for device disconnection detection.
const (
	errAccessDenied syscall.Errno = 5   // ERROR_ACCESS_DENIED
	errGenFailure   syscall.Errno = 31  // ERROR_GEN_FAILURE
	errNoSuchDevice syscall.Errno = 433 // ERROR_NO_SUCH_DEVICE
)

// isDeviceGoneError checks for OS-level errors raised when a USB serial
// adapter is unplugged during I/O.
func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}

	//nolint:exhaustive // only device-gone errno values matter here
	switch errno {
	case syscall.EIO, syscall.ENXIO, syscall.ENODEV:
		return true
	}

	if runtime.GOOS == "windows" {
		//nolint:exhaustive // only device-gone errno values matter here
		switch errno {
		case errAccessDenied, errGenFailure, errNoSuchDevice:
			return true
		}
	}

	return false
}

// NewTransportError creates a standard transport error with consistent formatting
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a timeout error for transport operations
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewTransportWriteError creates a write error (transient)
func NewTransportWriteError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportWrite, ErrorTypeTransient)
}

// NewTransportReadError creates a read error (transient)
func NewTransportReadError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportRead, ErrorTypeTransient)
}

// NewTransportClosedError creates a closed-transport error (permanent)
func NewTransportClosedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportClosed, ErrorTypePermanent)
}

// =============================================================================
// Wire Trace Logging
// =============================================================================
// TraceableError embeds the frames exchanged before a failure so applications
// can print them.

// TraceDirection indicates the direction of wire data
type TraceDirection string

const (
	// TraceTX indicates data sent to the radio
	TraceTX TraceDirection = "TX"
	// TraceRX indicates data received from the radio
	TraceRX TraceDirection = "RX"
)

// TraceEntry represents a single wire-level operation
type TraceEntry struct {
	Timestamp time.Time
	Direction TraceDirection
	Note      string
	Data      []byte
}

// String formats a trace entry for display
func (e TraceEntry) String() string {
	ts := e.Timestamp.Format("15:04:05.000")
	if e.Note != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", ts, e.Direction, FormatHex(e.Data), e.Note)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, e.Direction, FormatHex(e.Data))
}

// TraceableError wraps an error with wire-level trace data.
//
//	var te *xbee.TraceableError
//	if errors.As(err, &te) {
//	    log.Printf("Wire trace:\n%s", te.FormatTrace())
//	}
type TraceableError struct {
	Err       error
	Transport string
	Port      string
	Trace     []TraceEntry
}

func (e *TraceableError) Error() string {
	return e.Err.Error()
}

func (e *TraceableError) Unwrap() error {
	return e.Err
}

// FormatTrace returns a human-readable trace log, one frame per line
func (e *TraceableError) FormatTrace() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("[%s:%s] (no trace data)", e.Transport, e.Port)
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "[%s:%s] Wire trace (%d entries):\n", e.Transport, e.Port, len(e.Trace))
	for _, entry := range e.Trace {
		direction := ">"
		if entry.Direction == TraceRX {
			direction = "<"
		}
		if entry.Note != "" {
			_, _ = fmt.Fprintf(&sb, "  %s %s (%s)\n", direction, FormatHex(entry.Data), entry.Note)
		} else {
			_, _ = fmt.Fprintf(&sb, "  %s %s\n", direction, FormatHex(entry.Data))
		}
	}
	return sb.String()
}

// FormatHex formats bytes as space-separated upper-case hex, truncated after
// 32 bytes.
func FormatHex(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	n := min(len(data), 32)
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%02X", data[i])
	}
	s := strings.Join(parts, " ")
	if len(data) > n {
		s += fmt.Sprintf(" ... (%d bytes total)", len(data))
	}
	return s
}

// TraceBuffer collects trace entries in a fixed-size ring.
type TraceBuffer struct {
	transport string
	port      string
	entries   []TraceEntry
	maxSize   int
}

// NewTraceBuffer creates a trace buffer holding at most maxSize entries
func NewTraceBuffer(transport, port string, maxSize int) *TraceBuffer {
	if maxSize <= 0 {
		maxSize = 16
	}
	return &TraceBuffer{
		entries:   make([]TraceEntry, 0, maxSize),
		maxSize:   maxSize,
		transport: transport,
		port:      port,
	}
}

// RecordTX records an escaped frame written to the radio
func (tb *TraceBuffer) RecordTX(data []byte, note string) {
	tb.record(TraceTX, data, note)
}

// RecordRX records bytes read from the radio
func (tb *TraceBuffer) RecordRX(data []byte, note string) {
	tb.record(TraceRX, data, note)
}

// RecordTimeout records a read that ran out of time
func (tb *TraceBuffer) RecordTimeout(note string) {
	tb.record(TraceRX, nil, "TIMEOUT: "+note)
}

func (tb *TraceBuffer) record(dir TraceDirection, data []byte, note string) {
	entry := TraceEntry{
		Direction: dir,
		Data:      append([]byte(nil), data...),
		Timestamp: time.Now(),
		Note:      note,
	}

	if len(tb.entries) >= tb.maxSize {
		copy(tb.entries, tb.entries[1:])
		tb.entries[len(tb.entries)-1] = entry
		return
	}
	tb.entries = append(tb.entries, entry)
}

// Len returns the number of recorded entries
func (tb *TraceBuffer) Len() int {
	return len(tb.entries)
}

// WrapError wraps err with a copy of the collected trace. Returns nil if err is nil.
func (tb *TraceBuffer) WrapError(err error) error {
	if err == nil {
		return nil
	}
	entries := make([]TraceEntry, len(tb.entries))
	copy(entries, tb.entries)
	return &TraceableError{
		Err:       err,
		Trace:     entries,
		Transport: tb.transport,
		Port:      tb.port,
	}
}

// Clear resets the trace buffer
func (tb *TraceBuffer) Clear() {
	tb.entries = tb.entries[:0]
}

// GetTrace extracts trace data from an error, returning nil if not present
func GetTrace(err error) *TraceableError {
	var te *TraceableError
	if errors.As(err, &te) {
		return te
	}
	return nil
}
