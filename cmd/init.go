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
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvmetrics/db"
	"github.com/penny-vault/pvmetrics/export"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type dbConfig struct {
	URL string `toml:"url"`
}

type outputConfig struct {
	Dir      string   `toml:"dir"`
	Formats  []string `toml:"formats"`
	Decimals int      `toml:"decimals"`
}

type metricsConfig struct {
	TrendThreshold      float64  `toml:"trend_threshold"`
	ConsistencyMethod   string   `toml:"consistency_method"`
	VolatilityInterval  string   `toml:"volatility_interval"`
	SemiannualExchanges []string `toml:"semiannual_exchanges"`
}

// configFile is the layout of $HOME/.pvmetrics.toml
type configFile struct {
	DB      dbConfig      `toml:"db"`
	Output  outputConfig  `toml:"output"`
	Metrics metricsConfig `toml:"metrics"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database configuration and setup schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary := &library.Library{
			Tables: library.DefaultTables(),
		}

		outputDir := "metrics"

		form := huh.NewForm(
			// Gather details about the library and who owns it
			huh.NewGroup(
				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),

			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("Where should exported metrics be written?").
					Value(&outputDir),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering database settings")
		}

		log.Info().Msg("creating database tables")

		// run migration
		dbURL := strings.Replace(myLibrary.DBUrl, "postgres://", "pgx5://", -1)
		err = db.Migrate(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")
		log.Info().Msg("Saving library name and owner to database")

		// save library name and owner to database
		if err := myLibrary.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myLibrary.Close()

		err = myLibrary.SaveDB(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("error saving library settings to database")
		}

		if err := myLibrary.CreateTables(ctx); err != nil {
			log.Fatal().Err(err).Msg("error creating metric output tables")
		}

		// save database settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		defaults := metrics.DefaultConfig()
		semiannual := make([]string, 0, len(defaults.Cadences))
		for exchange := range defaults.Cadences {
			semiannual = append(semiannual, exchange)
		}

		conf := configFile{
			DB: dbConfig{URL: myLibrary.DBUrl},
			Output: outputConfig{
				Dir:      outputDir,
				Formats:  []string{string(export.JSON), string(export.CSV)},
				Decimals: export.DefaultDecimals,
			},
			Metrics: metricsConfig{
				TrendThreshold:      defaults.TrendThreshold,
				ConsistencyMethod:   string(defaults.ConsistencyMethod),
				VolatilityInterval:  defaults.VolatilityInterval.String(),
				SemiannualExchanges: semiannual,
			},
		}

		configFN := filepath.Join(home, ".pvmetrics.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving database connection info to config file")
		configData, err := toml.Marshal(conf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your data library has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
