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
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/ZaparooProject/go-xbee"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type atFlags struct {
	remote string
	hex    bool
	queue  bool
	apply  bool
}

func newATCmd(a *app) *cobra.Command {
	flags := &atFlags{}

	cmd := &cobra.Command{
		Use:   "at COMMAND [VALUE]",
		Short: "Read or set an AT register",
		Long: `Run an AT command on the local radio, or on a remote one with --remote.
Without VALUE the register is read. VALUE is sent as text unless --hex is set.`,
		Example: `  xbeecat at NI
  xbeecat at ID 3332 --hex
  xbeecat at NI kitchen --queue --apply
  xbeecat at D0 04 --hex --remote 0013A200400A0127`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.ToUpper(args[0])
			var param []byte
			if len(args) == 2 {
				var err error
				if param, err = parseValue(args[1], flags.hex); err != nil {
					return err
				}
			}

			device, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = device.Close() }()

			ctx := cmd.Context()
			var value []byte
			switch {
			case flags.remote != "":
				dest, err := parseAddress64(flags.remote)
				if err != nil {
					return err
				}
				var opts []xbee.RequestOption
				if !flags.apply && flags.queue {
					opts = append(opts, xbee.WithTxOptions(0))
				}
				value, err = device.RemoteATCommand(ctx, dest, command, param, opts...)
				if err != nil {
					return err
				}
			case flags.queue:
				if err := device.QueueATCommand(ctx, command, param); err != nil {
					return err
				}
				a.log.Info("queued", zap.String("command", command))
				if flags.apply {
					if err := device.ApplyChanges(ctx); err != nil {
						return err
					}
				}
				return nil
			default:
				if value, err = device.ATCommand(ctx, command, param); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(a.stdout, formatValue(command, value))
			return err
		},
	}

	cmd.Flags().StringVar(&flags.remote, "remote", "", "64-bit address of a remote radio")
	cmd.Flags().BoolVar(&flags.hex, "hex", false, "VALUE is hex encoded")
	cmd.Flags().BoolVar(&flags.queue, "queue", false, "Queue the change without applying it")
	cmd.Flags().BoolVar(&flags.apply, "apply", false, "Apply queued changes (ATAC) afterwards")
	return cmd
}

// parseValue decodes an AT parameter. Hex input may contain spaces,
// colons and an 0x prefix.
func parseValue(s string, isHex bool) ([]byte, error) {
	if !isHex {
		return []byte(s), nil
	}
	b, err := decodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return b, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' || r == '-' {
			return -1
		}
		return r
	}, s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// formatValue renders a register value as hex, plus the text when it is
// printable
func formatValue(command string, value []byte) string {
	if len(value) == 0 {
		return command + " OK"
	}
	out := fmt.Sprintf("%s = %X", command, value)
	if isPrintable(value) {
		out += fmt.Sprintf(" (%q)", value)
	}
	return out
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
