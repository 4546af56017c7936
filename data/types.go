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
package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GroupDimension names the classification used to bucket entities
type GroupDimension string

const (
	SectorDimension   GroupDimension = "sector"
	IndustryDimension GroupDimension = "industry"
)

// Key returns the entity's value for the dimension
func (dim GroupDimension) Key(m *EntityMetrics) string {
	switch dim {
	case SectorDimension:
		return m.Sector
	case IndustryDimension:
		return m.Industry
	default:
		return ""
	}
}

// MetricStats summarizes one metric across the entities of a group that
// have a value for it
type MetricStats struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
}

// GroupStats is the aggregate record for one grouping key value
type GroupStats struct {
	Dimension GroupDimension          `json:"dimension"`
	Key       string                  `json:"key"`
	Slug      string                  `json:"slug"`
	Count     int                     `json:"entity_count"`
	Metrics   map[string]*MetricStats `json:"metrics"`
}

// Failure records why an entity was skipped
type Failure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// RunSummary is the run-level metadata block
type RunSummary struct {
	RunID          uuid.UUID      `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	TotalAttempted int            `json:"total_attempted"`
	TotalSucceeded int            `json:"total_succeeded"`
	TotalFailed    int            `json:"total_failed"`
	ExchangeCounts map[string]int `json:"exchange_counts"`
	Failures       []Failure      `json:"failures"`
}

func (summary *RunSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("RunID", summary.RunID.String())
	e.Int("Attempted", summary.TotalAttempted)
	e.Int("Succeeded", summary.TotalSucceeded)
	e.Int("Failed", summary.TotalFailed)
}

// Analysis is the complete result of a run
type Analysis struct {
	Metadata         RunSummary             `json:"metadata"`
	SectorOverview   map[string]*GroupStats `json:"sector_overview"`
	IndustryOverview map[string]*GroupStats `json:"industry_overview"`
	Entities         []*EntityMetrics       `json:"stocks"`
}
