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
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvmetrics/data"
)

// GroupRow is one metric of one group in the long form of an overview
type GroupRow struct {
	Dimension   string   `csv:"dimension"`
	Key         string   `csv:"group"`
	Slug        string   `csv:"slug"`
	EntityCount int      `csv:"entity_count"`
	Metric      string   `csv:"metric"`
	Count       int      `csv:"count"`
	Mean        *float64 `csv:"mean"`
	Median      *float64 `csv:"median"`
}

// GroupRows flattens an overview ordered by group key and metric name
func GroupRows(groups map[string]*data.GroupStats) []*GroupRow {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]*GroupRow, 0, len(groups))
	for _, key := range keys {
		group := groups[key]

		names := make([]string, 0, len(group.Metrics))
		for name := range group.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			stats := group.Metrics[name]
			rows = append(rows, &GroupRow{
				Dimension:   string(group.Dimension),
				Key:         group.Key,
				Slug:        group.Slug,
				EntityCount: group.Count,
				Metric:      name,
				Count:       stats.Count,
				Mean:        stats.Mean,
				Median:      stats.Median,
			})
		}
	}

	return rows
}

func writeCSV(analysis *data.Analysis, dir string) ([]string, error) {
	rows := make([]*EntityRow, 0, len(analysis.Entities))
	for _, record := range analysis.Entities {
		rows = append(rows, NewEntityRow(record))
	}

	fn := filepath.Join(dir, EntityMetricsCSVFile)
	if err := writeCSVFile(fn, &rows); err != nil {
		return nil, err
	}

	written := []string{fn}

	for _, dim := range []data.GroupDimension{data.SectorDimension, data.IndustryDimension} {
		groups := analysis.SectorOverview
		if dim == data.IndustryDimension {
			groups = analysis.IndustryOverview
		}

		groupRows := GroupRows(groups)
		groupFn := filepath.Join(dir, fmt.Sprintf("%s_overview.csv", dim))
		if err := writeCSVFile(groupFn, &groupRows); err != nil {
			return written, err
		}

		written = append(written, groupFn)
	}

	return written, nil
}

func writeCSVFile(fn string, rows any) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}

	defer fh.Close()

	return gocsv.MarshalFile(rows, fh)
}
