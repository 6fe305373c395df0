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
	"sort"
	"strings"

	"github.com/ZaparooProject/go-xbee"
)

// record is the printable form of a Response
type record struct {
	Fields   map[string]any `yaml:"fields,omitempty"`
	Type     string         `yaml:"type"`
	APIID    string         `yaml:"api_id"`
	Length   int            `yaml:"length"`
	Checksum bool           `yaml:"checksum_ok"`
}

type ioSampler interface {
	SampleCount() int
	IsAnalogEnabled(pin int) bool
	IsDigitalEnabled(pin int) bool
	Analog(sample, pin int) (uint16, error)
	IsDigitalOn(sample, pin int) (bool, error)
}

func hex64(v uint64) string { return fmt.Sprintf("%016X", v) }

func hex16(v uint16) string { return fmt.Sprintf("%04X", v) }

func describe(resp xbee.Response) record {
	rec := record{
		Type:     resp.APIID().String(),
		APIID:    fmt.Sprintf("0x%02X", byte(resp.APIID())),
		Length:   resp.Length(),
		Checksum: resp.Verify(),
		Fields:   map[string]any{},
	}
	f := rec.Fields

	switch r := resp.(type) {
	case *xbee.Rx64Response:
		f["source64"] = hex64(r.Source64())
		f["rssi"] = -int(r.RSSI())
		f["options"] = r.Options()
		f["data"] = hex.EncodeToString(r.Data())
	case *xbee.Rx16Response:
		f["source16"] = hex16(r.Source16())
		f["rssi"] = -int(r.RSSI())
		f["options"] = r.Options()
		f["data"] = hex.EncodeToString(r.Data())
	case *xbee.Rx64IOSampleResponse:
		f["source64"] = hex64(r.Source64())
		f["rssi"] = -int(r.RSSI())
		f["samples"] = rxSamples(r, xbee.RxAnalogPins, xbee.RxDigitalPins)
	case *xbee.Rx16IOSampleResponse:
		f["source16"] = hex16(r.Source16())
		f["rssi"] = -int(r.RSSI())
		f["samples"] = rxSamples(r, xbee.RxAnalogPins, xbee.RxDigitalPins)
	case *xbee.ATCommandResponse:
		f["frame_id"] = r.FrameID()
		f["command"] = r.Command()
		f["status"] = r.Status().String()
		f["value"] = hex.EncodeToString(r.Value())
	case *xbee.TxStatusResponse:
		f["frame_id"] = r.FrameID()
		f["status"] = r.Status().String()
	case *xbee.ModemStatusResponse:
		f["status"] = r.Status().String()
	case *xbee.ZBTxStatusResponse:
		f["frame_id"] = r.FrameID()
		f["destination16"] = hex16(r.Destination16())
		f["retries"] = r.RetryCount()
		f["delivery"] = r.DeliveryStatus().String()
		f["discovery"] = r.DiscoveryStatus().String()
	case *xbee.ZBRxResponse:
		f["source64"] = hex64(r.Source64())
		f["source16"] = hex16(r.Source16())
		f["options"] = r.Options()
		f["data"] = hex.EncodeToString(r.Data())
	case *xbee.ZBExplicitRxResponse:
		f["source64"] = hex64(r.Source64())
		f["source16"] = hex16(r.Source16())
		f["source_endpoint"] = r.SourceEndpoint()
		f["destination_endpoint"] = r.DestinationEndpoint()
		f["cluster_id"] = hex16(r.ClusterID())
		f["profile_id"] = hex16(r.ProfileID())
		f["options"] = r.Options()
		f["data"] = hex.EncodeToString(r.Data())
	case *xbee.ZBIOSampleResponse:
		f["source64"] = hex64(r.Source64())
		f["source16"] = hex16(r.Source16())
		f["samples"] = []map[string]any{zbSample(r)}
	case *xbee.RemoteATCommandResponse:
		f["frame_id"] = r.FrameID()
		f["source64"] = hex64(r.Source64())
		f["source16"] = hex16(r.Source16())
		f["command"] = r.Command()
		f["status"] = r.Status().String()
		if data, ok := r.Data(); ok {
			f["value"] = hex.EncodeToString(data)
		}
	}

	if len(f) == 0 {
		rec.Fields = nil
	}
	return rec
}

func rxSamples(r ioSampler, analogPins, digitalPins int) []map[string]any {
	samples := make([]map[string]any, 0, r.SampleCount())
	for i := range r.SampleCount() {
		sample := map[string]any{}
		for pin := range digitalPins {
			if !r.IsDigitalEnabled(pin) {
				continue
			}
			if on, err := r.IsDigitalOn(i, pin); err == nil {
				sample[fmt.Sprintf("D%d", pin)] = on
			}
		}
		for pin := range analogPins {
			if !r.IsAnalogEnabled(pin) {
				continue
			}
			if v, err := r.Analog(i, pin); err == nil {
				sample[fmt.Sprintf("A%d", pin)] = v
			}
		}
		samples = append(samples, sample)
	}
	return samples
}

func zbSample(r *xbee.ZBIOSampleResponse) map[string]any {
	sample := map[string]any{}
	for pin := range xbee.ZBDigitalPins {
		if !r.IsDigitalEnabled(pin) {
			continue
		}
		if on, err := r.IsDigitalOn(pin); err == nil {
			sample[fmt.Sprintf("D%d", pin)] = on
		}
	}
	for pin := range xbee.ZBAnalogPins {
		if !r.IsAnalogEnabled(pin) {
			continue
		}
		if v, err := r.Analog(pin); err == nil {
			sample[fmt.Sprintf("A%d", pin)] = v
		}
	}
	if v, ok, err := r.SupplyVoltage(); err == nil && ok {
		sample["supply"] = v
	}
	return sample
}

// summary renders rec on one line with fields in key order
func (rec record) summary() string {
	var sb strings.Builder
	sb.WriteString(rec.Type)
	if !rec.Checksum {
		sb.WriteString(" [bad checksum]")
	}

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(&sb, " %s=%v", k, rec.Fields[k])
	}
	return sb.String()
}
