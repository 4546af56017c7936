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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Library struct {
	DBUrl string
	Name  string
	Owner string

	// Tables maps a data type key to the table it is stored in
	Tables map[string]string

	Pool *pgxpool.Pool
}

// DefaultTables returns the output table names, overridable with
// tables.<data type key> in the configuration
func DefaultTables() map[string]string {
	tables := make(map[string]string, len(data.DataTypes))
	for key := range data.DataTypes {
		tbl := strings.ReplaceAll(key, "-", "_")
		if configured := viper.GetString(fmt.Sprintf("tables.%s", tbl)); configured != "" {
			tbl = configured
		}

		tables[key] = tbl
	}

	return tables
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl:  dbURL,
		Pool:   pool,
		Tables: DefaultTables(),
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library LIMIT 1").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// TableName returns the table that stores the data type
func (myLibrary *Library) TableName(key string) string {
	if tbl, ok := myLibrary.Tables[key]; ok {
		return tbl
	}

	return strings.ReplaceAll(key, "-", "_")
}

// CreateTables creates any missing output tables
func (myLibrary *Library) CreateTables(ctx context.Context) error {
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

	for key, dataType := range data.DataTypes {
		schema := dataType.ExpandedSchema(myLibrary.TableName(key))
		if _, err := tx.Exec(ctx, schema); err != nil {
			log.Error().Err(err).Str("SQL", schema).Msg("could not create table")
			return err
		}
	}

	return tx.Commit(ctx)
}

// NumEntities returns the count of active entities in the universe
func (myLibrary *Library) NumEntities(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM entities WHERE active='t'").Scan(&count)
	return count, err
}

// NumRuns returns the number of metric runs saved to the library
func (myLibrary *Library) NumRuns(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", myLibrary.TableName(data.RunsKey))).Scan(&count)
	return count, err
}

// LastUpdated returns the date that the input universe was last updated
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(last_updated), '0001-01-01'::timestamp) FROM entities WHERE active='t'").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}
