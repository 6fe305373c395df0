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

package testing

import (
	"io"
	"math/rand/v2"
	"time"
)

// JitterConfig configures the behavior of BufferedJitteryConnection.
type JitterConfig struct {
	MaxLatency        time.Duration
	FragmentMinBytes  int
	StallAfterBytes   int
	StallDuration     time.Duration
	Seed              uint64
	FragmentReads     bool
	USBBoundaryStress bool
}

// DefaultJitterConfig returns fragmenting reads with a little latency
func DefaultJitterConfig() JitterConfig {
	return JitterConfig{
		MaxLatency:       2 * time.Millisecond,
		FragmentReads:    true,
		FragmentMinBytes: 1,
	}
}

// BufferedJitteryConnection wraps an io.ReadWriter and delivers its data
// the way USB-serial bridges do: late, in arbitrary fragments, and split on
// 64-byte USB packet boundaries. Nothing read from the backend is lost.
type BufferedJitteryConnection struct {
	backend        io.ReadWriter
	rng            *rand.Rand
	readBuf        []byte
	config         JitterConfig
	delivered      int
	stallTriggered bool
}

// NewBufferedJitteryConnection wraps backend. A zero Seed picks a random one.
func NewBufferedJitteryConnection(backend io.ReadWriter, config JitterConfig) *BufferedJitteryConnection {
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // Test code, not crypto
	}
	if config.FragmentMinBytes < 1 {
		config.FragmentMinBytes = 1
	}

	return &BufferedJitteryConnection{
		backend: backend,
		config:  config,
		rng:     rand.New(rand.NewPCG(seed, seed^0x7E7D1113)), //nolint:gosec // Test code, not crypto
		readBuf: make([]byte, 0, 256),
	}
}

// Write passes through to the backend.
func (j *BufferedJitteryConnection) Write(data []byte) (int, error) {
	return j.backend.Write(data) //nolint:wrapcheck // Pass-through wrapper
}

// Read returns at most one fragment of the buffered backend data.
func (j *BufferedJitteryConnection) Read(buf []byte) (int, error) {
	if j.config.MaxLatency > 0 {
		time.Sleep(time.Duration(j.rng.Int64N(int64(j.config.MaxLatency) + 1)))
	}

	if len(j.readBuf) == 0 {
		var tmp [256]byte
		n, err := j.backend.Read(tmp[:])
		if err != nil {
			return 0, err //nolint:wrapcheck // Pass-through wrapper
		}
		if n == 0 {
			return 0, nil
		}
		j.readBuf = append(j.readBuf, tmp[:n]...)
	}

	n := min(len(j.readBuf), len(buf))
	n = j.limitForStall(n)
	if j.config.USBBoundaryStress {
		if untilBoundary := 64 - j.delivered%64; untilBoundary < n {
			n = untilBoundary
		}
	}
	if j.config.FragmentReads && n > j.config.FragmentMinBytes {
		n = j.config.FragmentMinBytes + j.rng.IntN(n-j.config.FragmentMinBytes+1)
	}

	copy(buf, j.readBuf[:n])
	j.readBuf = j.readBuf[n:]
	j.delivered += n
	return n, nil
}

// limitForStall caps n so that exactly StallAfterBytes are delivered before
// the single stall, which happens on the read after that.
func (j *BufferedJitteryConnection) limitForStall(n int) int {
	if j.config.StallAfterBytes <= 0 || j.stallTriggered {
		return n
	}
	if j.delivered >= j.config.StallAfterBytes {
		j.stallTriggered = true
		time.Sleep(j.config.StallDuration)
		return n
	}
	return min(n, j.config.StallAfterBytes-j.delivered)
}

// ResetStallState re-arms the stall and restarts the byte count.
func (j *BufferedJitteryConnection) ResetStallState() {
	j.delivered = 0
	j.stallTriggered = false
}

// ClearBuffer drops buffered read data.
func (j *BufferedJitteryConnection) ClearBuffer() {
	j.readBuf = j.readBuf[:0]
}
