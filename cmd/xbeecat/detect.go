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
	"sort"

	"github.com/ZaparooProject/go-xbee/detection"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// detected is the printable form of a DeviceInfo
type detected struct {
	Metadata   map[string]string `yaml:"metadata,omitempty"`
	Path       string            `yaml:"path"`
	Transport  string            `yaml:"transport"`
	Name       string            `yaml:"name"`
	Confidence string            `yaml:"confidence"`
}

func newDetectCmd(a *app) *cobra.Command {
	var (
		output  string
		mode    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List radios attached over USB serial",
		Long: `List serial ports that host a radio. Passive mode only matches known
USB bridges. Safe mode reads the firmware version. Full mode also reads the
serial number and API mode, and probes ports that are not USB.`,
		Example: `  xbeecat detect
  xbeecat detect --mode full --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				if _, err := detection.ParseMode(mode); err != nil {
					return err
				}
				a.cfg.Detect.Mode = mode
			}

			opts := a.cfg.detectionOptions()
			opts.EnableCache = !noCache
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			devices, err := detection.DetectAll(ctx, opts)
			if errors.Is(err, detection.ErrNoDevicesFound) {
				_, err = fmt.Fprintln(a.stdout, "No radios found")
				return err
			}
			if err != nil {
				return fmt.Errorf("detect: %w", err)
			}
			return writeDevices(a, output, devices)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|yaml")
	cmd.Flags().StringVar(&mode, "mode", "safe", "Detection mode: passive|safe|full")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached results")
	return cmd
}

func writeDevices(a *app, output string, devices []detection.DeviceInfo) error {
	sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })

	if output == "yaml" {
		list := make([]detected, 0, len(devices))
		for _, d := range devices {
			list = append(list, detected{
				Path:       d.Path,
				Transport:  d.Transport,
				Name:       d.Name,
				Confidence: d.Confidence.String(),
				Metadata:   d.Metadata,
			})
		}
		out, err := yaml.Marshal(list)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = a.stdout.Write(out)
		return err
	}

	for _, d := range devices {
		line := d.String()
		if fw, ok := d.Metadata[detection.MetaFirmware]; ok {
			line += " firmware " + fw
		}
		if _, err := fmt.Fprintln(a.stdout, line); err != nil {
			return err
		}
	}
	return nil
}
