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

// Package runner evaluates a universe of entities in parallel, isolates
// per-entity failures and aggregates the successful results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvmetrics/aggregate"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

var (
	ErrNilUniverse      = errors.New("universe is nil")
	ErrCalculationPanic = errors.New("metric calculation panicked")
	ErrNilEntity        = errors.New("entity is nil")
	ErrNoResult         = errors.New("calculator returned no result")
)

// Calculator computes the metrics of a single entity
type Calculator interface {
	Calculate(entity *data.Entity) (*data.EntityMetrics, error)
}

type Runner struct {
	calculator Calculator

	// Workers bounds the number of entities evaluated at once
	Workers int

	// AggregateMetrics are summarized per sector and industry
	AggregateMetrics []string

	// ProgressInterval is the minimum time between progress log messages
	ProgressInterval time.Duration

	Now func() time.Time
}

func New(calculator Calculator) *Runner {
	return &Runner{
		calculator:       calculator,
		Workers:          runtime.NumCPU(),
		AggregateMetrics: data.DefaultAggregateMetrics,
		ProgressInterval: 10 * time.Second,
		Now:              time.Now,
	}
}

// Run evaluates every entity of universe. Entity level problems are recorded
// as failures in the run summary and never stop the run. If ctx is cancelled
// no further entities are scheduled; the analysis of the entities that did
// run is returned together with the context error.
func (runner *Runner) Run(ctx context.Context, universe []*data.Entity) (*data.Analysis, error) {
	if universe == nil {
		return nil, ErrNilUniverse
	}

	summary := data.RunSummary{
		RunID:          uuid.New(),
		StartTime:      runner.Now(),
		ExchangeCounts: make(map[string]int),
		Failures:       make([]data.Failure, 0),
	}

	logger := zerolog.Ctx(ctx).With().Str("RunID", summary.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Int("NumEntities", len(universe)).Int("Workers", runner.workers()).Msg("starting metrics run")

	failures := make([]error, len(universe))
	results := haxmap.New[string, *data.EntityMetrics]()

	var (
		completed atomic.Int64
		attempted int
	)

	sometimes := rate.Sometimes{Interval: runner.ProgressInterval}
	seen := make(map[string]int, len(universe))

	workers := pool.New().WithMaxGoroutines(runner.workers())
	for idx, entity := range universe {
		if ctx.Err() != nil {
			logger.Warn().Int("NumSkipped", len(universe)-idx).Msg("run cancelled; remaining entities not scheduled")
			break
		}

		attempted++

		switch {
		case entity == nil:
			failures[idx] = ErrNilEntity
			continue
		case entity.Symbol != "":
			if first, ok := seen[entity.Symbol]; ok {
				failures[idx] = fmt.Errorf("%w (first seen at position %d)", data.ErrDuplicateSymbol, first)
				continue
			}

			seen[entity.Symbol] = idx
		}

		idx, entity := idx, entity
		workers.Go(func() {
			result, err := runner.evaluate(entity)
			if err != nil {
				failures[idx] = err
			} else {
				results.Set(result.Symbol, result)
			}

			done := completed.Add(1)
			sometimes.Do(func() {
				elapsed := runner.Now().Sub(summary.StartTime)
				logger.Info().Int64("Completed", done).Int("NumEntities", len(universe)).
					Str("Elapsed", durafmt.Parse(elapsed).LimitFirstN(2).String()).Msg("metrics progress")
			})
		})
	}

	workers.Wait()

	// reassemble the results in input order
	records := make([]*data.EntityMetrics, 0, results.Len())
	for idx, entity := range universe[:attempted] {
		if err := failures[idx]; err != nil {
			failure := data.Failure{Reason: err.Error()}
			if entity != nil {
				failure.Symbol = entity.Symbol
			}

			summary.Failures = append(summary.Failures, failure)
			logger.Error().Str("Symbol", failure.Symbol).Str("Reason", failure.Reason).Msg("entity failed")

			continue
		}

		if entity == nil {
			continue
		}

		if result, ok := results.Get(entity.Symbol); ok {
			records = append(records, result)

			if exchange := strings.ToUpper(strings.TrimSpace(result.Exchange)); exchange != "" {
				summary.ExchangeCounts[exchange]++
			}
		}
	}

	sectors, industries, err := aggregate.Overview(records, runner.AggregateMetrics)
	if err != nil {
		return nil, err
	}

	summary.EndTime = runner.Now()
	summary.GeneratedAt = summary.EndTime
	summary.TotalAttempted = attempted
	summary.TotalSucceeded = len(records)
	summary.TotalFailed = len(summary.Failures)

	logger.Info().Object("Summary", &summary).
		Str("RunTime", durafmt.Parse(summary.EndTime.Sub(summary.StartTime)).String()).
		Msg("metrics run finished")

	analysis := &data.Analysis{
		Metadata:         summary,
		SectorOverview:   sectors,
		IndustryOverview: industries,
		Entities:         records,
	}

	return analysis, ctx.Err()
}

// evaluate runs the calculator for one entity and converts a panic into an
// error so that the entity is recorded as failed
func (runner *Runner) evaluate(entity *data.Entity) (result *data.EntityMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrCalculationPanic, r)
		}
	}()

	result, err = runner.calculator.Calculate(entity)
	if err == nil && result == nil {
		err = ErrNoResult
	}

	return result, err
}

func (runner *Runner) workers() int {
	if runner.Workers < 1 {
		return 1
	}

	return runner.Workers
}
