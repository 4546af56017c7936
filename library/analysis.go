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
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoRuns = errors.New("no metric runs saved")
)

// SaveAnalysis writes the run summary, every entity record and every group
// record in one transaction
func (myLibrary *Library) SaveAnalysis(ctx context.Context, analysis *data.Analysis) error {
	logger := zerolog.Ctx(ctx)

	if err := myLibrary.CreateTables(ctx); err != nil {
		return err
	}

	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				log.Error().Err(err).Msg("error rollingback tx")
			}
		}
	}()

	meta := analysis.Metadata

	exchangeCounts, err := json.Marshal(meta.ExchangeCounts)
	if err != nil {
		return err
	}

	failures, err := json.Marshal(meta.Failures)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf(`INSERT INTO %s (
		"run_id",
		"generated_at",
		"start_time",
		"end_time",
		"total_attempted",
		"total_succeeded",
		"total_failed",
		"exchange_counts",
		"failures"
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, myLibrary.TableName(data.RunsKey))

	if _, err := tx.Exec(ctx, sql, meta.RunID, meta.GeneratedAt, meta.StartTime, meta.EndTime,
		meta.TotalAttempted, meta.TotalSucceeded, meta.TotalFailed, exchangeCounts, failures); err != nil {
		logger.Error().Err(err).Str("SQL", sql).Msg("error saving run to database")
		return err
	}

	batch := &pgx.Batch{}

	entitySQL := fmt.Sprintf(`INSERT INTO %[1]s (
		"run_id",
		"symbol",
		"company_name",
		"sector",
		"industry",
		"exchange",
		"price",
		"valuation",
		"growth",
		"margins",
		"quality"
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		price = EXCLUDED.price,
		valuation = EXCLUDED.valuation,
		growth = EXCLUDED.growth,
		margins = EXCLUDED.margins,
		quality = EXCLUDED.quality`, myLibrary.TableName(data.EntityMetricsKey))

	for _, record := range analysis.Entities {
		groups := make([][]byte, 0, 5)
		for _, group := range []any{record.Price, record.Valuation, record.Growth, record.Margins, record.Quality} {
			encoded, err := json.Marshal(group)
			if err != nil {
				return err
			}

			groups = append(groups, encoded)
		}

		batch.Queue(entitySQL, meta.RunID, record.Symbol, record.CompanyName, record.Sector, record.Industry,
			record.Exchange, groups[0], groups[1], groups[2], groups[3], groups[4])
	}

	groupSQL := fmt.Sprintf(`INSERT INTO %[1]s (
		"run_id",
		"dimension",
		"group_key",
		"slug",
		"entity_count",
		"metrics"
	) VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET
		group_key = EXCLUDED.group_key,
		entity_count = EXCLUDED.entity_count,
		metrics = EXCLUDED.metrics`, myLibrary.TableName(data.GroupStatsKey))

	for _, overview := range []map[string]*data.GroupStats{analysis.SectorOverview, analysis.IndustryOverview} {
		for _, group := range overview {
			encoded, err := json.Marshal(group.Metrics)
			if err != nil {
				return err
			}

			batch.Queue(groupSQL, meta.RunID, string(group.Dimension), group.Key, group.Slug, group.Count, encoded)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		logger.Error().Err(err).Int("NumQueued", batch.Len()).Msg("error saving metrics to database")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().Str("RunID", meta.RunID.String()).Int("NumEntities", len(analysis.Entities)).Msg("saved analysis to library")

	return nil
}

type runRow struct {
	RunID          uuid.UUID      `db:"run_id"`
	GeneratedAt    time.Time      `db:"generated_at"`
	StartTime      time.Time      `db:"start_time"`
	EndTime        time.Time      `db:"end_time"`
	TotalAttempted int            `db:"total_attempted"`
	TotalSucceeded int            `db:"total_succeeded"`
	TotalFailed    int            `db:"total_failed"`
	ExchangeCounts map[string]int `db:"exchange_counts"`
	Failures       []data.Failure `db:"failures"`
}

// LatestRun returns the summary of the most recent metric run
func (myLibrary *Library) LatestRun(ctx context.Context) (*data.RunSummary, error) {
	var rows []*runRow
	sql := fmt.Sprintf(`SELECT run_id, generated_at, start_time, end_time, total_attempted, total_succeeded,
total_failed, coalesce(exchange_counts, '{}'::jsonb) AS exchange_counts, coalesce(failures, '[]'::jsonb) AS failures
FROM %s ORDER BY generated_at DESC LIMIT 1`, myLibrary.TableName(data.RunsKey))

	if err := pgxscan.Select(ctx, myLibrary.Pool, &rows, sql); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNoRuns
	}

	row := rows[0]
	summary := &data.RunSummary{
		RunID:          row.RunID,
		GeneratedAt:    row.GeneratedAt,
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		TotalAttempted: row.TotalAttempted,
		TotalSucceeded: row.TotalSucceeded,
		TotalFailed:    row.TotalFailed,
		ExchangeCounts: row.ExchangeCounts,
		Failures:       row.Failures,
	}

	return summary, nil
}

type groupRow struct {
	Dimension string                       `db:"dimension"`
	Key       string                       `db:"group_key"`
	Slug      string                       `db:"slug"`
	Count     int                          `db:"entity_count"`
	Metrics   map[string]*data.MetricStats `db:"metrics"`
}

// GroupOverview returns the saved statistics of every group of dim for the
// run, keyed by group value
func (myLibrary *Library) GroupOverview(ctx context.Context, runID uuid.UUID, dim data.GroupDimension) (map[string]*data.GroupStats, error) {
	var rows []*groupRow
	sql := fmt.Sprintf(`SELECT dimension, group_key, slug, entity_count, coalesce(metrics, '{}'::jsonb) AS metrics
FROM %s WHERE run_id = $1 AND dimension = $2`, myLibrary.TableName(data.GroupStatsKey))

	if err := pgxscan.Select(ctx, myLibrary.Pool, &rows, sql, runID, string(dim)); err != nil {
		return nil, err
	}

	groups := make(map[string]*data.GroupStats, len(rows))
	for _, row := range rows {
		groups[row.Key] = &data.GroupStats{
			Dimension: data.GroupDimension(row.Dimension),
			Key:       row.Key,
			Slug:      row.Slug,
			Count:     row.Count,
			Metrics:   row.Metrics,
		}
	}

	return groups, nil
}

// sortedExchanges returns the exchanges of counts in alphabetical order
func sortedExchanges(counts map[string]int) []string {
	exchanges := make([]string, 0, len(counts))
	for exchange := range counts {
		exchanges = append(exchanges, exchange)
	}

	sort.Strings(exchanges)

	return exchanges
}
