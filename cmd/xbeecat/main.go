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

// Command xbeecat talks to a radio module in API mode: it monitors inbound
// frames, runs AT commands, sends data and decodes captured frames.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-xbee"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app holds state shared by all subcommands
type app struct {
	log        *zap.Logger
	stdout     io.Writer
	stderr     io.Writer
	stdin      io.Reader
	configPath string
	flags      rootFlags
	cfg        Config
}

type rootFlags struct {
	device    string
	transport string
	logLevel  string
	logFile   string
	baudRate  int
	retries   int
	timeout   time.Duration
	debug     bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "xbeecat",
		Short: "Talk to XBee radios in API mode",
		Long: `xbeecat sends and receives API frames on a radio module attached over
UART or SPI. The module must run with AP=2 (escaped API mode).

Settings are read from --config (TOML) and overridden by flags. When no
device is given the first radio found by serial port detection is used.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
			_ = xbee.CloseSessionLog()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	pf.StringVarP(&a.flags.device, "device", "d", "", "Device path (auto-detect if empty)")
	pf.StringVarP(&a.flags.transport, "transport", "t", "uart", "Transport: uart|spi")
	pf.IntVarP(&a.flags.baudRate, "baud", "b", 9600, "UART baud rate")
	pf.DurationVar(&a.flags.timeout, "timeout", 2*time.Second, "Exchange timeout")
	pf.IntVar(&a.flags.retries, "retries", 3, "Connection attempts")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	pf.StringVar(&a.flags.logFile, "log-file", "", "Also log to this file, rotated")
	pf.BoolVar(&a.flags.debug, "debug", false, "Enable library debug output and a session log")

	rootCmd.AddCommand(newMonitorCmd(a))
	rootCmd.AddCommand(newATCmd(a))
	rootCmd.AddCommand(newSendCmd(a))
	rootCmd.AddCommand(newDecodeCmd(a))
	rootCmd.AddCommand(newDetectCmd(a))

	return rootCmd
}

// setup merges the config file with explicitly set flags and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = a.flags.device
	}
	if flags.Changed("transport") {
		cfg.Transport = a.flags.transport
	}
	if flags.Changed("baud") {
		cfg.BaudRate = a.flags.baudRate
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.flags.timeout
	}
	if flags.Changed("retries") {
		cfg.Retries = a.flags.retries
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File.Filename = a.flags.logFile
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = a.flags.debug
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = initLogger(cfg.Log, a.stderr)
	if cfg.Log.Debug {
		xbee.SetDebugEnabled(true)
		if path, err := xbee.InitSessionLog(); err == nil {
			a.log.Debug("session log", zap.String("path", path))
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
