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

import "fmt"

// DeliveryStatus is the transmit status reported by TxStatusResponse and
// ZBTxStatusResponse.
type DeliveryStatus byte

// Delivery statuses
const (
	DeliverySuccess                    DeliveryStatus = 0x00
	DeliveryMACACKFailure              DeliveryStatus = 0x01
	DeliveryCCAFailure                 DeliveryStatus = 0x02
	DeliveryPurged                     DeliveryStatus = 0x03 // TxStatusResponse only
	DeliveryInvalidDestinationEndpoint DeliveryStatus = 0x15
	DeliveryNetworkACKFailure          DeliveryStatus = 0x21
	DeliveryNotJoinedToNetwork         DeliveryStatus = 0x22
	DeliverySelfAddressed              DeliveryStatus = 0x23
	DeliveryAddressNotFound            DeliveryStatus = 0x24
	DeliveryRouteNotFound              DeliveryStatus = 0x25
	DeliveryNeighborFailure            DeliveryStatus = 0x26
	DeliveryInvalidBindingTableIndex   DeliveryStatus = 0x2B
	DeliveryResourceError              DeliveryStatus = 0x2C
	DeliveryAttemptedBroadcastWithAPS  DeliveryStatus = 0x2D
	DeliveryAttemptedUnicastWithAPS    DeliveryStatus = 0x2E
	DeliveryResourceErrorBuffers       DeliveryStatus = 0x32
	DeliveryPayloadTooLarge            DeliveryStatus = 0x74
	DeliveryIndirectMessageUnrequested DeliveryStatus = 0x75
)

var deliveryStatusMeanings = map[DeliveryStatus]string{
	DeliverySuccess:                    "success",
	DeliveryMACACKFailure:              "MAC ACK failure",
	DeliveryCCAFailure:                 "CCA failure",
	DeliveryPurged:                     "purged",
	DeliveryInvalidDestinationEndpoint: "invalid destination endpoint",
	DeliveryNetworkACKFailure:          "network ACK failure",
	DeliveryNotJoinedToNetwork:         "not joined to network",
	DeliverySelfAddressed:              "self-addressed",
	DeliveryAddressNotFound:            "address not found",
	DeliveryRouteNotFound:              "route not found",
	DeliveryNeighborFailure:            "broadcast source failed to hear a neighbor relay the message",
	DeliveryInvalidBindingTableIndex:   "invalid binding table index",
	DeliveryResourceError:              "resource error, lack of free buffers or timers",
	DeliveryAttemptedBroadcastWithAPS:  "attempted broadcast with APS transmission",
	DeliveryAttemptedUnicastWithAPS:    "attempted unicast with APS transmission but EE=0",
	DeliveryResourceErrorBuffers:       "resource error, lack of free buffers or timers",
	DeliveryPayloadTooLarge:            "data payload too large",
	DeliveryIndirectMessageUnrequested: "indirect message unrequested",
}

func (s DeliveryStatus) String() string {
	return lookupMeaning(deliveryStatusMeanings, s, byte(s))
}

// DiscoveryStatus is the route discovery overhead reported by ZBTxStatusResponse.
type DiscoveryStatus byte

// Discovery statuses
const (
	DiscoveryNoOverhead      DiscoveryStatus = 0x00
	DiscoveryAddress         DiscoveryStatus = 0x01
	DiscoveryRoute           DiscoveryStatus = 0x02
	DiscoveryAddressAndRoute DiscoveryStatus = 0x03
	DiscoveryExtendedTimeout DiscoveryStatus = 0x40
)

var discoveryStatusMeanings = map[DiscoveryStatus]string{
	DiscoveryNoOverhead:      "no discovery overhead",
	DiscoveryAddress:         "address discovery",
	DiscoveryRoute:           "route discovery",
	DiscoveryAddressAndRoute: "address and route discovery",
	DiscoveryExtendedTimeout: "extended timeout discovery",
}

func (s DiscoveryStatus) String() string {
	return lookupMeaning(discoveryStatusMeanings, s, byte(s))
}

// CommandStatus is the outcome of a local or remote AT command.
type CommandStatus byte

// Command statuses
const (
	CommandOK               CommandStatus = 0x00
	CommandError            CommandStatus = 0x01
	CommandInvalidCommand   CommandStatus = 0x02
	CommandInvalidParameter CommandStatus = 0x03
	CommandNoResponse       CommandStatus = 0x04 // RemoteATResponse only
)

var commandStatusMeanings = map[CommandStatus]string{
	CommandOK:               "OK",
	CommandError:            "error",
	CommandInvalidCommand:   "invalid command",
	CommandInvalidParameter: "invalid parameter",
	CommandNoResponse:       "no response",
}

func (s CommandStatus) String() string {
	return lookupMeaning(commandStatusMeanings, s, byte(s))
}

// ModemStatus is the event reported by ModemStatusResponse.
type ModemStatus byte

// Modem statuses
const (
	ModemHardwareReset                    ModemStatus = 0x00
	ModemWatchdogTimerReset               ModemStatus = 0x01
	ModemAssociated                       ModemStatus = 0x02
	ModemDisassociated                    ModemStatus = 0x03
	ModemSynchronizationLost              ModemStatus = 0x04
	ModemCoordinatorRealignment           ModemStatus = 0x05
	ModemCoordinatorStarted               ModemStatus = 0x06
	ModemNetworkSecurityKeyUpdated        ModemStatus = 0x07
	ModemVoltageSupplyLimitExceeded       ModemStatus = 0x0D
	ModemConfigurationChangedWhileJoining ModemStatus = 0x11
	ModemStackErrorMin                    ModemStatus = 0x80
)

var modemStatusMeanings = map[ModemStatus]string{
	ModemHardwareReset:                    "hardware reset",
	ModemWatchdogTimerReset:               "watchdog timer reset",
	ModemAssociated:                       "associated",
	ModemDisassociated:                    "disassociated",
	ModemSynchronizationLost:              "synchronization lost",
	ModemCoordinatorRealignment:           "coordinator realignment",
	ModemCoordinatorStarted:               "coordinator started",
	ModemNetworkSecurityKeyUpdated:        "network security key updated",
	ModemVoltageSupplyLimitExceeded:       "voltage supply limit exceeded",
	ModemConfigurationChangedWhileJoining: "modem configuration changed while join in progress",
}

// IsStackError reports whether the status falls in the stack error range
func (s ModemStatus) IsStackError() bool {
	return s >= ModemStackErrorMin
}

func (s ModemStatus) String() string {
	if s.IsStackError() {
		return fmt.Sprintf("stack error (0x%02X)", byte(s))
	}
	return lookupMeaning(modemStatusMeanings, s, byte(s))
}

func lookupMeaning[K comparable](table map[K]string, key K, raw byte) string {
	if m, ok := table[key]; ok {
		return m
	}
	return fmt.Sprintf("unknown (0x%02X)", raw)
}
