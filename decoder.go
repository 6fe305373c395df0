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
	"bytes"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-xbee/internal/frame"
)

// Handler receives every response the Decoder completes. HandleResponse runs
// synchronously inside Feed, in stream order.
type Handler interface {
	HandleResponse(Response)
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(Response)

// HandleResponse calls f(r)
func (f HandlerFunc) HandleResponse(r Response) {
	f(r)
}

// ResponseQueue is a Handler that stores responses until the caller drains
// them. It is not safe for concurrent use.
type ResponseQueue struct {
	responses []Response
}

func (q *ResponseQueue) HandleResponse(r Response) {
	q.responses = append(q.responses, r)
}

// Len returns the number of queued responses
func (q *ResponseQueue) Len() int {
	return len(q.responses)
}

// Pop removes and returns the oldest queued response
func (q *ResponseQueue) Pop() (Response, bool) {
	if len(q.responses) == 0 {
		return nil, false
	}
	r := q.responses[0]
	q.responses[0] = nil
	q.responses = q.responses[1:]
	return r, true
}

// Drain removes and returns every queued response
func (q *ResponseQueue) Drain() []Response {
	out := q.responses
	q.responses = nil
	return out
}

// DiagnosticKind classifies input the Decoder dropped
type DiagnosticKind int

const (
	// DiagnosticUnsynchronized is a byte seen before any delimiter
	DiagnosticUnsynchronized DiagnosticKind = iota
	// DiagnosticAbandoned is a partial frame cut short by a new delimiter
	DiagnosticAbandoned
	// DiagnosticBadEscape is an escape sequence that does not decode to a special byte
	DiagnosticBadEscape
	// DiagnosticChecksum is a complete frame with a wrong checksum
	DiagnosticChecksum
	// DiagnosticUnknownAPIID is a complete frame of an unsupported type
	DiagnosticUnknownAPIID
	// DiagnosticMalformed is a complete frame too short for its type, or a
	// frame that overran its declared length
	DiagnosticMalformed
	// DiagnosticOverflow is a byte dropped because the buffer is full
	DiagnosticOverflow
)

var diagnosticKindNames = map[DiagnosticKind]string{
	DiagnosticUnsynchronized: "unsynchronized",
	DiagnosticAbandoned:      "abandoned",
	DiagnosticBadEscape:      "bad escape",
	DiagnosticChecksum:       "checksum",
	DiagnosticUnknownAPIID:   "unknown api id",
	DiagnosticMalformed:      "malformed",
	DiagnosticOverflow:       "overflow",
}

func (k DiagnosticKind) String() string {
	if name, ok := diagnosticKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// IsWarning reports whether the drop lost frame data. Unsynchronized and
// overflow bytes are expected line noise and rate debug level only.
func (k DiagnosticKind) IsWarning() bool {
	return k != DiagnosticUnsynchronized && k != DiagnosticOverflow
}

// Diagnostic describes one drop
type Diagnostic struct {
	Err   error  // underlying cause, if any
	Frame []byte // buffered bytes that were discarded
	Kind  DiagnosticKind
	Byte  byte // byte being processed when the drop happened
}

func (d Diagnostic) String() string {
	var sb bytes.Buffer
	_, _ = fmt.Fprintf(&sb, "%s: byte 0x%02X", d.Kind, d.Byte)
	if len(d.Frame) > 0 {
		_, _ = fmt.Fprintf(&sb, ", discarded %s", FormatHex(d.Frame))
	}
	if d.Err != nil {
		_, _ = fmt.Fprintf(&sb, ": %v", d.Err)
	}
	return sb.String()
}

// DiagnosticFunc receives Decoder drops
type DiagnosticFunc func(Diagnostic)

// LogDiagnostic sends warnings to Warnf and everything else to Debugf. It is
// the Decoder default.
func LogDiagnostic(d Diagnostic) {
	if d.Kind.IsWarning() {
		Warnf("decoder: %s", d)
		return
	}
	Debugf("decoder: %s", d)
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithHandler sets the completion handler
func WithHandler(h Handler) DecoderOption {
	return func(d *Decoder) {
		d.handler = h
	}
}

// WithDiagnostics replaces LogDiagnostic. A nil func silences drops.
func WithDiagnostics(fn DiagnosticFunc) DecoderOption {
	return func(d *Decoder) {
		d.diagnostics = fn
	}
}

// WithResetOnComplete clears the buffer right after each completed frame, so
// bytes up to the next delimiter are dropped as unsynchronized instead of
// piling onto the finished frame. The completed response is still kept.
func WithResetOnComplete() DecoderOption {
	return func(d *Decoder) {
		d.resetOnComplete = true
	}
}

type decoderState struct {
	response      Response
	buf           []byte
	escapePending bool
}

// Decoder reassembles API frames from a byte stream. It unescapes on the fly,
// validates length and checksum, and resynchronizes on every delimiter.
//
// By default the buffer is left in place after a frame completes: later
// bytes keep appending to it, and can never complete a second frame, until a
// delimiter starts a new one. Use WithResetOnComplete to clear it instead.
//
// A Decoder is not safe for concurrent use; give each transport its own.
type Decoder struct {
	handler         Handler
	diagnostics     DiagnosticFunc
	state           decoderState
	resetOnComplete bool
}

// NewDecoder returns a Decoder waiting for a delimiter
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{diagnostics: LogDiagnostic}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reset discards the buffer, the escape state and the last response
func (d *Decoder) Reset() {
	d.state.response = nil
	d.state.buf = d.state.buf[:0]
	d.state.escapePending = false
}

// Response returns the last completed response, or nil if none completed
// since the last reset.
func (d *Decoder) Response() Response {
	return d.state.response
}

// Buffered returns a copy of the unescaped bytes of the current frame
func (d *Decoder) Buffered() []byte {
	return bytes.Clone(d.state.buf)
}

// Synchronized reports whether a delimiter has been seen since the last reset
func (d *Decoder) Synchronized() bool {
	return len(d.state.buf) > 0
}

// EscapePending reports whether the last byte fed was an escape marker
func (d *Decoder) EscapePending() bool {
	return d.state.escapePending
}

// Write feeds p and always reports success, so a Decoder can sit behind
// io.Copy or an io.MultiWriter.
func (d *Decoder) Write(p []byte) (int, error) {
	d.FeedBytes(p)
	return len(p), nil
}

// FeedBytes feeds each byte of p in order
func (d *Decoder) FeedBytes(p []byte) {
	for _, b := range p {
		d.Feed(b)
	}
}

// Feed processes one wire byte
func (d *Decoder) Feed(b byte) {
	st := &d.state

	if b == frame.Delimiter {
		if len(st.buf) > 0 && st.response == nil {
			d.drop(DiagnosticAbandoned, b, nil)
		}
		d.Reset()
		st.buf = append(st.buf, b)
		return
	}

	if len(st.buf) == 0 {
		d.report(Diagnostic{Kind: DiagnosticUnsynchronized, Byte: b})
		return
	}

	if b == frame.Escape {
		st.escapePending = true
		return
	}

	if st.escapePending {
		st.escapePending = false
		u, err := Unescape(b)
		if err != nil {
			d.drop(DiagnosticBadEscape, b, err)
			d.Reset()
			return
		}
		b = u
	}

	if len(st.buf) >= frame.MaxFrameLength {
		d.report(Diagnostic{Kind: DiagnosticOverflow, Byte: b})
		return
	}
	st.buf = append(st.buf, b)

	declared, _ := frame.DeclaredLength(st.buf)
	payload := len(st.buf) - frame.OverheadLength
	switch {
	case len(st.buf) > frame.OverheadLength && payload == declared:
		d.complete(b)
	case st.response == nil && len(st.buf) > frame.HeaderLength && payload > declared:
		// only reachable with a zero length field
		d.drop(DiagnosticMalformed, b, fmt.Errorf("declared length %d: %w", declared, ErrLengthMismatch))
		d.Reset()
	}
}

func (d *Decoder) complete(last byte) {
	st := &d.state
	Debugf("frame complete: %s", FormatHex(st.buf))

	if !frame.VerifyChecksum(st.buf[frame.APIIDOffset:]) {
		d.drop(DiagnosticChecksum, last, ErrChecksumMismatch)
		d.Reset()
		return
	}

	resp, err := NewResponse(st.buf)
	if err != nil {
		kind := DiagnosticMalformed
		if errors.Is(err, ErrUnknownAPIID) {
			kind = DiagnosticUnknownAPIID
		}
		d.drop(kind, last, err)
		d.Reset()
		return
	}

	st.response = resp
	if d.handler != nil {
		d.handler.HandleResponse(resp)
	}
	if d.resetOnComplete {
		st.buf = st.buf[:0]
		st.escapePending = false
	}
}

func (d *Decoder) drop(kind DiagnosticKind, b byte, err error) {
	d.report(Diagnostic{Kind: kind, Byte: b, Frame: bytes.Clone(d.state.buf), Err: err})
}

func (d *Decoder) report(diag Diagnostic) {
	if d.diagnostics != nil {
		d.diagnostics(diag)
	}
}
