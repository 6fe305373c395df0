//go:build deadlock

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

package syncutil

import (
	"os"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Enabled reports whether deadlock detection is compiled in
const Enabled = true

// TimeoutEnv overrides how long a lock may be waited on before go-deadlock
// reports it
const TimeoutEnv = "XBEE_DEADLOCK_TIMEOUT"

func init() {
	if v := os.Getenv(TimeoutEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			deadlock.Opts.DeadlockTimeout = d
		}
	}
}

// Mutex is a deadlock.Mutex
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a deadlock.RWMutex
type RWMutex struct {
	deadlock.RWMutex
}
