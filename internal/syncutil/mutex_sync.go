//go:build !deadlock

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

// Package syncutil holds the mutexes transports and devices lock with.
// Normal builds use the sync package. Building with -tags=deadlock swaps in
// github.com/sasha-s/go-deadlock, which reports lock order inversions and
// locks held longer than XBEE_DEADLOCK_TIMEOUT.
package syncutil

import "sync"

// Enabled reports whether deadlock detection is compiled in
const Enabled = false

// Mutex is a sync.Mutex
//
//nolint:gocritic // Embedding exposes Lock and Unlock directly
type Mutex struct {
	sync.Mutex
}

// RWMutex is a sync.RWMutex
//
//nolint:gocritic // Embedding exposes the locking methods directly
type RWMutex struct {
	sync.RWMutex
}
