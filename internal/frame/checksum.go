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

package frame

// CalculateChecksum computes the trailing checksum byte for a payload
// (api id followed by the API-specific data).
func CalculateChecksum(payload []byte) byte {
	sum := byte(0)
	for _, b := range payload {
		sum += b
	}
	return 0xFF - sum
}

// VerifyChecksum reports whether payload, including its trailing checksum
// byte, sums to 0xFF modulo 256.
func VerifyChecksum(payloadWithChecksum []byte) bool {
	sum := byte(0)
	for _, b := range payloadWithChecksum {
		sum += b
	}
	return sum == 0xFF
}
