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

// Package testing provides test doubles for code that talks to radio
// modules in API mode.
//
// VirtualRadio implements io.ReadWriter and answers escaped API frames the
// way a module behind a serial port does: local and remote AT commands,
// queued parameters and transmit requests with their status frames.
package testing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"maps"

	"github.com/ZaparooProject/go-xbee/internal/frame"
	"github.com/ZaparooProject/go-xbee/internal/syncutil"
)

// API identifiers understood or produced by the simulator
const (
	apiTx64           = 0x00
	apiTx16           = 0x01
	apiAT             = 0x08
	apiATQueue        = 0x09
	apiZBTx           = 0x10
	apiZBExplicitTx   = 0x11
	apiRemoteAT       = 0x17
	apiATResponse     = 0x88
	apiTxStatus       = 0x89
	apiModemStatus    = 0x8A
	apiZBTxStatus     = 0x8B
	apiZBRx           = 0x90
	apiRemoteATAnswer = 0x97
)

// AT command status codes
const (
	StatusOK               byte = 0x00
	StatusError            byte = 0x01
	StatusInvalidCommand   byte = 0x02
	StatusInvalidParameter byte = 0x03
	StatusNoResponse       byte = 0x04
)

// Default identity of a new VirtualRadio
const (
	DefaultAddress64 uint64 = 0x0013A20040522BAA
	DefaultFirmware  uint16 = 0x23A7
)

// Transmission records one transmit request received by the simulator
type Transmission struct {
	Data    []byte
	Dest64  uint64
	Dest16  uint16
	APIID   byte
	FrameID byte
	Options byte
}

var readOnlyRegisters = map[string]bool{"VR": true, "HV": true, "SH": true, "SL": true}

// VirtualRadio simulates a module in API mode 2 (escaped) at the wire level
type VirtualRadio struct {
	registers      map[string][]byte
	queued         map[string][]byte
	remotes        map[uint64]map[string][]byte
	rxFrame        []byte
	requests       [][]byte
	transmissions  []Transmission
	txBuffer       bytes.Buffer
	checksumErrors int
	mu             syncutil.Mutex
	deliveryStatus byte
	escapePending  bool
	muted          bool
}

// NewVirtualRadio creates a simulator with a coordinator-like default identity
func NewVirtualRadio() *VirtualRadio {
	v := &VirtualRadio{}
	v.Reset()
	return v
}

func defaultRegisters() map[string][]byte {
	regs := map[string][]byte{
		"MY": {0xFF, 0xFE},
		"ID": {0x33, 0x32},
		"NI": []byte("virtual"),
		"HV": {0x1E, 0x46},
		"AP": {0x02},
		"PL": {0x04},
	}
	regs["VR"] = binary.BigEndian.AppendUint16(nil, DefaultFirmware)
	regs["SH"] = binary.BigEndian.AppendUint32(nil, uint32(DefaultAddress64>>32))
	regs["SL"] = binary.BigEndian.AppendUint32(nil, uint32(DefaultAddress64&0xFFFFFFFF))
	return regs
}

// Reset restores the default registers and clears all recorded traffic
func (v *VirtualRadio) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.registers = defaultRegisters()
	v.queued = make(map[string][]byte)
	v.remotes = make(map[uint64]map[string][]byte)
	v.rxFrame = nil
	v.escapePending = false
	v.requests = nil
	v.transmissions = nil
	v.txBuffer.Reset()
	v.checksumErrors = 0
	v.deliveryStatus = 0x00
	v.muted = false
}

// Write consumes escaped frames from the host. Bytes outside a frame are ignored.
func (v *VirtualRadio) Write(data []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, b := range data {
		v.consume(b)
	}
	return len(data), nil
}

// Read returns pending response bytes, or 0 bytes when nothing is pending
func (v *VirtualRadio) Read(buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.txBuffer.Len() == 0 {
		return 0, nil
	}

	n, err := v.txBuffer.Read(buf)
	if err != nil {
		return n, fmt.Errorf("read from tx buffer: %w", err)
	}
	return n, nil
}

func (v *VirtualRadio) consume(b byte) {
	switch {
	case b == frame.Delimiter:
		v.rxFrame = append(v.rxFrame[:0], b)
		v.escapePending = false
		return
	case len(v.rxFrame) == 0:
		return
	case b == frame.Escape:
		v.escapePending = true
		return
	case v.escapePending:
		b ^= frame.EscapeXOR
		v.escapePending = false
	}

	v.rxFrame = append(v.rxFrame, b)
	if !frame.IsComplete(v.rxFrame) {
		return
	}

	raw := bytes.Clone(v.rxFrame)
	v.rxFrame = v.rxFrame[:0]
	if !frame.VerifyChecksum(raw[frame.APIIDOffset:]) {
		v.checksumErrors++
		return
	}
	v.requests = append(v.requests, raw)
	v.handle(raw[frame.APIIDOffset], raw[frame.IDDataOffset:len(raw)-1])
}

func (v *VirtualRadio) handle(apiID byte, data []byte) {
	switch apiID {
	case apiAT, apiATQueue:
		v.handleAT(apiID, data)
	case apiRemoteAT:
		v.handleRemoteAT(data)
	case apiZBTx, apiZBExplicitTx:
		v.handleZBTx(apiID, data)
	case apiTx64, apiTx16:
		v.handleTx(apiID, data)
	}
}

func (v *VirtualRadio) handleAT(apiID byte, data []byte) {
	if len(data) < 3 {
		return
	}
	id, cmd, param := data[0], string(data[1:3]), data[3:]

	var status byte
	var value []byte
	if apiID == apiATQueue && len(param) > 0 {
		status = v.queue(cmd, param)
	} else {
		status, value = v.localAT(cmd, param)
	}

	if id == 0 {
		return
	}
	out := append([]byte{id}, cmd...)
	out = append(out, status)
	v.respond(apiATResponse, append(out, value...))
}

func (v *VirtualRadio) queue(cmd string, param []byte) byte {
	if readOnlyRegisters[cmd] {
		return StatusError
	}
	if _, known := v.registers[cmd]; !known {
		return StatusInvalidCommand
	}
	v.queued[cmd] = bytes.Clone(param)
	return StatusOK
}

func (v *VirtualRadio) localAT(cmd string, param []byte) (status byte, value []byte) {
	switch cmd {
	case "AC", "WR":
		maps.Copy(v.registers, v.queued)
		clear(v.queued)
		return StatusOK, nil
	}
	return access(v.registers, cmd, param)
}

// access reads or writes one register of regs
func access(regs map[string][]byte, cmd string, param []byte) (status byte, value []byte) {
	current, known := regs[cmd]
	if !known {
		return StatusInvalidCommand, nil
	}
	if len(param) == 0 {
		return StatusOK, bytes.Clone(current)
	}
	if readOnlyRegisters[cmd] {
		return StatusError, nil
	}
	regs[cmd] = bytes.Clone(param)
	return StatusOK, nil
}

func (v *VirtualRadio) handleRemoteAT(data []byte) {
	// id, dest64, dest16, options, command
	if len(data) < 14 {
		return
	}
	id := data[0]
	dest64 := binary.BigEndian.Uint64(data[1:9])
	dest16 := binary.BigEndian.Uint16(data[9:11])
	cmd, param := string(data[12:14]), data[14:]

	status := StatusNoResponse
	var value []byte
	if regs, ok := v.remotes[dest64]; ok {
		status, value = access(regs, cmd, param)
		if my, ok := regs["MY"]; ok && len(my) == 2 {
			dest16 = binary.BigEndian.Uint16(my)
		}
	}

	if id == 0 {
		return
	}
	out := []byte{id}
	out = binary.BigEndian.AppendUint64(out, dest64)
	out = binary.BigEndian.AppendUint16(out, dest16)
	out = append(out, cmd...)
	out = append(out, status)
	v.respond(apiRemoteATAnswer, append(out, value...))
}

func (v *VirtualRadio) handleZBTx(apiID byte, data []byte) {
	// id, dest64, dest16, radius, options [, endpoints, cluster, profile]
	payloadAt := 13
	if apiID == apiZBExplicitTx {
		payloadAt = 19
	}
	if len(data) < payloadAt {
		return
	}
	tx := Transmission{
		APIID:   apiID,
		FrameID: data[0],
		Dest64:  binary.BigEndian.Uint64(data[1:9]),
		Dest16:  binary.BigEndian.Uint16(data[9:11]),
		Options: data[12],
		Data:    bytes.Clone(data[payloadAt:]),
	}
	v.transmissions = append(v.transmissions, tx)

	if tx.FrameID == 0 {
		return
	}
	out := []byte{tx.FrameID}
	out = binary.BigEndian.AppendUint16(out, tx.Dest16)
	v.respond(apiZBTxStatus, append(out, 0x00, v.deliveryStatus, 0x00))
}

func (v *VirtualRadio) handleTx(apiID byte, data []byte) {
	tx := Transmission{APIID: apiID}
	switch {
	case apiID == apiTx64 && len(data) >= 10:
		tx.Dest64 = binary.BigEndian.Uint64(data[1:9])
		tx.Options = data[9]
		tx.Data = bytes.Clone(data[10:])
	case apiID == apiTx16 && len(data) >= 4:
		tx.Dest16 = binary.BigEndian.Uint16(data[1:3])
		tx.Options = data[3]
		tx.Data = bytes.Clone(data[4:])
	default:
		return
	}
	tx.FrameID = data[0]
	v.transmissions = append(v.transmissions, tx)

	if tx.FrameID == 0 {
		return
	}
	v.respond(apiTxStatus, []byte{tx.FrameID, v.deliveryStatus})
}

func (v *VirtualRadio) respond(apiID byte, data []byte) {
	if v.muted {
		return
	}
	v.txBuffer.Write(frame.AppendEscaped(nil, frame.Build(apiID, data)))
}

// SetRegister sets a local register, bypassing read-only checks
func (v *VirtualRadio) SetRegister(cmd string, value []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.registers[cmd] = bytes.Clone(value)
}

// Register returns a local register value
func (v *VirtualRadio) Register(cmd string) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.registers[cmd]
	return bytes.Clone(value), ok
}

// AddRemote makes a node reachable by remote AT commands
func (v *VirtualRadio) AddRemote(addr64 uint64, registers map[string][]byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	regs := make(map[string][]byte, len(registers))
	for k, val := range registers {
		regs[k] = bytes.Clone(val)
	}
	v.remotes[addr64] = regs
}

// SetDeliveryStatus sets the status reported for later transmit requests
func (v *VirtualRadio) SetDeliveryStatus(status byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deliveryStatus = status
}

// SetMuted stops the simulator from answering. Requests are still recorded.
func (v *VirtualRadio) SetMuted(muted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = muted
}

// InjectFrame queues an unsolicited frame for the host
func (v *VirtualRadio) InjectFrame(apiID byte, idData []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.txBuffer.Write(frame.AppendEscaped(nil, frame.Build(apiID, idData)))
}

// InjectBytes queues raw bytes for the host, such as line noise or a torn frame
func (v *VirtualRadio) InjectBytes(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.txBuffer.Write(data)
}

// InjectModemStatus queues a modem status frame
func (v *VirtualRadio) InjectModemStatus(status byte) {
	v.InjectFrame(apiModemStatus, []byte{status})
}

// InjectReceive queues a ZigBee receive packet from the given source
func (v *VirtualRadio) InjectReceive(src64 uint64, src16 uint16, data []byte) {
	out := binary.BigEndian.AppendUint64(nil, src64)
	out = binary.BigEndian.AppendUint16(out, src16)
	out = append(out, 0x01) // packet acknowledged
	v.InjectFrame(apiZBRx, append(out, data...))
}

// Transmissions returns the transmit requests received so far
func (v *VirtualRadio) Transmissions() []Transmission {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Transmission(nil), v.transmissions...)
}

// Requests returns every valid frame received so far, unescaped
func (v *VirtualRadio) Requests() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([][]byte, len(v.requests))
	for i, r := range v.requests {
		out[i] = bytes.Clone(r)
	}
	return out
}

// ChecksumErrors returns how many received frames failed the checksum
func (v *VirtualRadio) ChecksumErrors() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.checksumErrors
}

// HasPendingResponse reports whether bytes are waiting to be read
func (v *VirtualRadio) HasPendingResponse() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.txBuffer.Len() > 0
}
