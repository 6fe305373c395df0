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

package main

import (
	"fmt"

	"github.com/ZaparooProject/go-xbee"
	"github.com/spf13/cobra"
)

type sendFlags struct {
	dest   string
	dest16 string
	radius uint8
	hex    bool
}

func newSendCmd(a *app) *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send DATA",
		Short: "Transmit data and wait for the delivery report",
		Long: `Send DATA to --dest (64-bit, default coordinator) as a ZigBee transmit
request, or to --dest16 as an 802.15.4 16-bit transmit request. Delivery is
retried with a fresh frame id while the radio reports a transient failure.`,
		Example: `  xbeecat send hello
  xbeecat send --dest 0013A200400A0127 "lights on"
  xbeecat send --dest broadcast --hex 0102FF
  xbeecat send --dest16 1234 ping`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseValue(args[0], flags.hex)
			if err != nil {
				return err
			}

			device, err := a.connect(cmd.Context(), xbee.WithRetryConfig(xbee.MeshRetryConfig()))
			if err != nil {
				return err
			}
			defer func() { _ = device.Close() }()

			if flags.dest16 != "" {
				dest16, err := parseAddress16(flags.dest16)
				if err != nil {
					return err
				}
				if err := device.Send16(cmd.Context(), dest16, data); err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.stdout, "delivered to %04X\n", dest16)
				return err
			}

			dest, err := parseAddress64(flags.dest)
			if err != nil {
				return err
			}
			status, err := device.SendData(cmd.Context(), dest, data, xbee.WithBroadcastRadius(flags.radius))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "delivered to %016X via %04X (retries %d, %s)\n",
				dest, status.Destination16(), status.RetryCount(), status.DiscoveryStatus())
			return err
		},
	}

	cmd.Flags().StringVar(&flags.dest, "dest", "coordinator", "64-bit destination, coordinator or broadcast")
	cmd.Flags().StringVar(&flags.dest16, "dest16", "", "16-bit destination (802.15.4 modules)")
	cmd.Flags().Uint8Var(&flags.radius, "radius", 0, "Broadcast radius, 0 for the network maximum")
	cmd.Flags().BoolVar(&flags.hex, "hex", false, "DATA is hex encoded")
	return cmd
}
