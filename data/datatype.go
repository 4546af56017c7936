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
	"fmt"
)

type DataType struct {
	Name    string
	Schema  string
	Version int
}

const (
	RunsKey          = "metric-runs"
	EntityMetricsKey = "entity-metrics"
	GroupStatsKey    = "group-stats"
)

// DataTypes are the output tables written after a run. Table names are
// configurable so several universes can share one database.
var DataTypes = map[string]*DataType{
	RunsKey: {
		Name: RunsKey,
		Schema: `CREATE TABLE IF NOT EXISTS %[1]s (
run_id          UUID        PRIMARY KEY,
generated_at    TIMESTAMPTZ NOT NULL,
start_time      TIMESTAMPTZ NOT NULL,
end_time        TIMESTAMPTZ NOT NULL,
total_attempted INT         NOT NULL DEFAULT 0,
total_succeeded INT         NOT NULL DEFAULT 0,
total_failed    INT         NOT NULL DEFAULT 0,
exchange_counts JSONB,
failures        JSONB
);

CREATE INDEX IF NOT EXISTS %[1]s_generated_at_idx ON %[1]s(generated_at);`,
		Version: 0,
	},
	EntityMetricsKey: {
		Name: EntityMetricsKey,
		Schema: `CREATE TABLE IF NOT EXISTS %[1]s (
run_id       UUID NOT NULL,
symbol       TEXT NOT NULL,
company_name TEXT,
sector       TEXT,
industry     TEXT,
exchange     TEXT,
price        JSONB,
valuation    JSONB,
growth       JSONB,
margins      JSONB,
quality      JSONB,
PRIMARY KEY (run_id, symbol)
);

CREATE INDEX IF NOT EXISTS %[1]s_symbol_idx ON %[1]s(symbol);`,
		Version: 0,
	},
	GroupStatsKey: {
		Name: GroupStatsKey,
		Schema: `CREATE TABLE IF NOT EXISTS %[1]s (
run_id       UUID NOT NULL,
dimension    TEXT NOT NULL,
group_key    TEXT NOT NULL,
slug         TEXT NOT NULL,
entity_count INT  NOT NULL DEFAULT 0,
metrics      JSONB,
PRIMARY KEY (run_id, dimension, slug)
);`,
		Version: 0,
	},
}

// ExpandedSchema returns the schema with the table name filled in
func (dt *DataType) ExpandedSchema(tableName string) string {
	return fmt.Sprintf(dt.Schema, tableName)
}
