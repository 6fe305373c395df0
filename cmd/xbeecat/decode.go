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
	"io"
	"strings"

	"github.com/ZaparooProject/go-xbee"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		output string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "decode [HEX...]",
		Short: "Decode captured wire bytes into frames",
		Long: `Decode escaped API frames from hex arguments, or from stdin when no
arguments are given. With --raw stdin is read as binary. Bytes that do not
form a valid frame are reported on the log.`,
		Example: `  xbeecat decode 7E 00 02 8A 06 6F
  xbeecat decode --output yaml < capture.hex
  xbeecat decode --raw < capture.bin`,
		RunE: func(_ *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			var input []byte
			switch {
			case len(args) > 0:
				b, err := decodeHex(strings.Join(args, ""))
				if err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
				input = b
			default:
				b, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				if !raw {
					if b, err = decodeHex(string(b)); err != nil {
						return fmt.Errorf("invalid hex input: %w", err)
					}
				}
				input = b
			}

			records := decodeStream(input, diagnosticLogger(a.log))
			a.log.Debug("decoded", zap.Int("bytes", len(input)), zap.Int("frames", len(records)))
			return writeRecords(a.stdout, output, records)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|yaml")
	cmd.Flags().BoolVar(&raw, "raw", false, "Read binary from stdin instead of hex")
	return cmd
}

// decodeStream runs input through a Decoder and describes every frame
func decodeStream(input []byte, diagnostics xbee.DiagnosticFunc) []record {
	var records []record
	decoder := xbee.NewDecoder(
		xbee.WithResetOnComplete(),
		xbee.WithDiagnostics(diagnostics),
		xbee.WithHandler(xbee.HandlerFunc(func(resp xbee.Response) {
			records = append(records, describe(resp))
		})),
	)
	_, _ = decoder.Write(input)
	return records
}
