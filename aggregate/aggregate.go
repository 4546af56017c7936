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

// Package aggregate summarizes entity metrics per sector and industry.
//
// Entities whose group key is empty or a missing-value placeholder such as
// "nan" or "n/a" are left out of that dimension entirely; there is no "unknown" bucket, so group counts can sum
// to less than the number of entities. Each metric is averaged only over the
// entities of the group that have a value for it, so a metric's count may be
// lower than the group's entity count.
package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/penny-vault/pvmetrics/data"
)

var (
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrUnknownDimension = errors.New("unknown group dimension")
)

// Aggregate groups records by dim and computes count, mean and median of each
// named metric within every group. The result is keyed by group value.
func Aggregate(records []*data.EntityMetrics, dim data.GroupDimension, metricNames []string) (map[string]*data.GroupStats, error) {
	if dim != data.SectorDimension && dim != data.IndustryDimension {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}

	for _, name := range metricNames {
		if !data.IsMetric(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
		}
	}

	members := make(map[string][]*data.EntityMetrics)
	for _, record := range records {
		if record == nil {
			continue
		}

		key := strings.TrimSpace(dim.Key(record))
		if data.IsMissing(key) {
			continue
		}

		members[key] = append(members[key], record)
	}

	groups := make(map[string]*data.GroupStats, len(members))
	for key, group := range members {
		stats := &data.GroupStats{
			Dimension: dim,
			Key:       key,
			Slug:      slug.Make(key),
			Count:     len(group),
			Metrics:   make(map[string]*data.MetricStats, len(metricNames)),
		}

		for _, name := range metricNames {
			stats.Metrics[name] = summarize(group, name)
		}

		groups[key] = stats
	}

	return groups, nil
}

// Overview aggregates by sector and by industry independently
func Overview(records []*data.EntityMetrics, metricNames []string) (sectors, industries map[string]*data.GroupStats, err error) {
	if sectors, err = Aggregate(records, data.SectorDimension, metricNames); err != nil {
		return nil, nil, err
	}

	if industries, err = Aggregate(records, data.IndustryDimension, metricNames); err != nil {
		return nil, nil, err
	}

	return sectors, industries, nil
}

func summarize(group []*data.EntityMetrics, name string) *data.MetricStats {
	values := make([]float64, 0, len(group))
	for _, record := range group {
		value, _ := record.Metric(name)
		if v, ok := data.Value(value); ok {
			values = append(values, v)
		}
	}

	stats := &data.MetricStats{
		Count: len(values),
	}

	if len(values) > 0 {
		stats.Mean = data.Float(data.Mean(values))
		stats.Median = data.Float(data.Median(values))
	}

	return stats
}
