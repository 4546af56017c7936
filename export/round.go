// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package export

import (
	"reflect"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/shopspring/decimal"
)

var floatPtrType = reflect.TypeOf((*float64)(nil))

// RoundValue rounds v half away from zero to the given number of decimals. A
// negative decimals leaves the value untouched.
func RoundValue(v *float64, decimals int) *float64 {
	f, ok := data.Value(v)
	if !ok {
		return nil
	}

	if decimals < 0 {
		return data.Float(f)
	}

	return data.Float(decimal.NewFromFloat(f).Round(int32(decimals)).InexactFloat64())
}

// Round returns a copy of analysis with every metric rounded. The input is
// not modified.
func Round(analysis *data.Analysis, decimals int) *data.Analysis {
	rounded := &data.Analysis{
		Metadata:         analysis.Metadata,
		SectorOverview:   roundGroups(analysis.SectorOverview, decimals),
		IndustryOverview: roundGroups(analysis.IndustryOverview, decimals),
		Entities:         make([]*data.EntityMetrics, 0, len(analysis.Entities)),
	}

	for _, record := range analysis.Entities {
		if record == nil {
			continue
		}

		copied := *record
		roundFields(reflect.ValueOf(&copied).Elem(), decimals)
		rounded.Entities = append(rounded.Entities, &copied)
	}

	return rounded
}

func roundGroups(groups map[string]*data.GroupStats, decimals int) map[string]*data.GroupStats {
	rounded := make(map[string]*data.GroupStats, len(groups))
	for key, group := range groups {
		copied := *group
		copied.Metrics = make(map[string]*data.MetricStats, len(group.Metrics))
		for name, stats := range group.Metrics {
			copied.Metrics[name] = &data.MetricStats{
				Count:  stats.Count,
				Mean:   RoundValue(stats.Mean, decimals),
				Median: RoundValue(stats.Median, decimals),
			}
		}

		rounded[key] = &copied
	}

	return rounded
}

// roundFields replaces every *float64 reachable through nested structs with
// a rounded copy
func roundFields(v reflect.Value, decimals int) {
	for idx := 0; idx < v.NumField(); idx++ {
		field := v.Field(idx)
		if !field.CanSet() {
			continue
		}

		switch {
		case field.Type() == floatPtrType:
			if field.IsNil() {
				continue
			}

			field.Set(reflect.ValueOf(RoundValue(field.Interface().(*float64), decimals)))
		case field.Kind() == reflect.Struct:
			roundFields(field, decimals)
		}
	}
}
