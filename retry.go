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
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (0 = single attempt, no retry)
	MaxAttempts int
	// InitialBackoff is the pause after the first failure
	InitialBackoff time.Duration
	// MaxBackoff caps the pause between attempts
	MaxBackoff time.Duration
	// BackoffMultiplier grows the pause after each failure
	BackoffMultiplier float64
	// Jitter adds up to this fraction of the pause at random
	Jitter float64
	// RetryTimeout bounds all attempts together
	RetryTimeout time.Duration
}

// DefaultRetryConfig suits local exchanges with the attached module
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        1 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      5 * time.Second,
	}
}

// MeshRetryConfig suits transmissions through a mesh network. The module
// already retries at the MAC and APS layers, so failures surfacing here
// usually mean a route has to be rediscovered, which takes seconds.
func MeshRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       4,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        4 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.25,
		RetryTimeout:      30 * time.Second,
	}
}

// RetryableFunc is a function that can be retried
type RetryableFunc func() error

// RetryWithConfig runs retryFunc until it succeeds, returns an error that
// IsRetryable rejects, or the attempts or the retry timeout run out. The
// last error is returned in the latter case.
func RetryWithConfig(ctx context.Context, config *RetryConfig, retryFunc RetryableFunc) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts <= 0 {
		return retryFunc()
	}

	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	var lastErr error
	backoff := config.InitialBackoff
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			if lastErr != nil {
				return lastErr
			}
			return fmt.Errorf("retry context cancelled: %w", ctx.Err())
		}

		err := retryFunc()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt >= config.MaxAttempts {
			return err
		}
		lastErr = err
		Debugf("attempt %d/%d failed, retrying: %v", attempt, config.MaxAttempts, err)

		if !pause(ctx, calculateJitteredSleep(backoff, config.Jitter)) {
			return lastErr
		}
		backoff = calculateNextBackoff(backoff, config)
	}
}

// pause reports false if ctx ended first
func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func calculateNextBackoff(backoff time.Duration, config *RetryConfig) time.Duration {
	next := time.Duration(float64(backoff) * config.BackoffMultiplier)
	if next > config.MaxBackoff {
		return config.MaxBackoff
	}
	return next
}

// calculateJitteredSleep returns a sleep in [base, base*(1+jitterFactor))
func calculateJitteredSleep(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return base
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return base
	}
	fraction := float64(binary.LittleEndian.Uint64(buf[:])) / float64(1<<64)
	return base + time.Duration(fraction*float64(base)*jitterFactor)
}
