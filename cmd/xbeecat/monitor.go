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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-xbee"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type runner interface {
	Run(ctx context.Context, h xbee.Handler) error
}

func newMonitorCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print every frame the radio sends until interrupted",
		Example: `  xbeecat monitor -d /dev/ttyUSB0
  xbeecat monitor --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			device, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = device.Close() }()

			a.log.Info("monitoring, press Ctrl+C to stop")
			return monitor(cmd.Context(), device.Transport(), a.stdout, output, a.log)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|yaml")
	return cmd
}

// monitor prints frames from transport until ctx is done
func monitor(ctx context.Context, transport xbee.Transport, w io.Writer, output string, log *zap.Logger) error {
	show := xbee.HandlerFunc(func(resp xbee.Response) {
		if err := writeRecords(w, output, []record{describe(resp)}); err != nil {
			log.Warn("write frame", zap.Error(err))
		}
	})

	if r, ok := transport.(runner); ok {
		return r.Run(ctx, show)
	}

	for ctx.Err() == nil {
		resp, err := transport.ReadResponse(ctx)
		switch {
		case err == nil:
			show(resp)
		case errors.Is(err, xbee.ErrTransportTimeout):
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
	return nil
}

func checkOutput(output string) error {
	if output != "text" && output != "yaml" {
		return fmt.Errorf("invalid output format %q; must be text or yaml", output)
	}
	return nil
}

// writeRecords prints one summary line per record, or a YAML document
func writeRecords(w io.Writer, output string, records []record) error {
	if output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	for _, rec := range records {
		if _, err := fmt.Fprintln(w, rec.summary()); err != nil {
			return err
		}
	}
	return nil
}
