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
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/export"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about the data library and its last metric run",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load library info")
		}
		defer myLibrary.Close()

		summary, err := myLibrary.Summary(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create library summary document")
		}

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(summary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}

		fmt.Print(out)

		if overview != "" {
			printOverview(ctx, myLibrary, data.GroupDimension(overview))
		}
	},
}

var (
	overview        string
	overviewMetrics []string
)

// printOverview renders the group medians saved by the most recent run
func printOverview(ctx context.Context, myLibrary *library.Library, dim data.GroupDimension) {
	if dim != data.SectorDimension && dim != data.IndustryDimension {
		log.Fatal().Str("Dimension", string(dim)).Msg("overview must be sector or industry")
	}

	for _, name := range overviewMetrics {
		if !data.IsMetric(name) {
			log.Fatal().Str("Metric", name).Msg("unknown metric")
		}
	}

	run, err := myLibrary.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, library.ErrNoRuns) {
			log.Warn().Msg("no saved run to show an overview for")
			return
		}

		log.Fatal().Err(err).Msg("could not load latest run")
	}

	groups, err := myLibrary.GroupOverview(ctx, run.RunID, dim)
	if err != nil {
		log.Fatal().Err(err).Str("RunID", run.RunID.String()).Msg("could not load group statistics")
	}

	fmt.Printf("\n%s medians of run %s\n\n", dim, run.RunID)
	export.RenderOverview(os.Stdout, groups, overviewMetrics, viper.GetInt("output.decimals"))
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVar(&overview, "overview", "", "also print the latest run's group medians by sector or industry")
	infoCmd.Flags().StringSliceVar(&overviewMetrics, "metric", overviewColumns, "metrics shown in the overview")
}
