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
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/penny-vault/pvmetrics/data"
)

// missingCell is displayed for a metric without a value
const missingCell = "-"

// RenderOverview prints one row per group with the median of every metric
// in metricNames. Groups are ordered by key.
func RenderOverview(w io.Writer, groups map[string]*data.GroupStats, metricNames []string, decimals int) {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	hdr := make(table.Row, 0, len(metricNames)+2)
	hdr = append(hdr, "GROUP", "STOCKS")
	for _, name := range metricNames {
		hdr = append(hdr, name)
	}
	tw.AppendHeader(hdr)

	cfgs := make([]table.ColumnConfig, 0, len(metricNames)+1)
	for idx := 2; idx <= len(metricNames)+2; idx++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: idx, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)

	for _, key := range keys {
		group := groups[key]

		row := make(table.Row, 0, len(metricNames)+2)
		row = append(row, group.Key, group.Count)
		for _, name := range metricNames {
			row = append(row, formatCell(group.Metrics[name], decimals))
		}

		tw.AppendRow(row)
	}

	tw.Render()
}

func formatCell(stats *data.MetricStats, decimals int) string {
	if stats == nil {
		return missingCell
	}

	v, ok := data.Value(RoundValue(stats.Median, decimals))
	if !ok {
		return missingCell
	}

	if decimals < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return fmt.Sprintf("%.*f", decimals, v)
}
