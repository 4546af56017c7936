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
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvmetrics/backblaze"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/export"
	"github.com/penny-vault/pvmetrics/healthcheck"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/runner"
	"github.com/penny-vault/pvmetrics/source"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Derive metrics for every stock in the universe",
	Long: `The run sub-command loads the universe, computes the metrics of every stock,
summarizes them by sector and industry and writes the analysis. The universe is
read from the CSV files in --input when it is given and from the data library
otherwise. Stocks that cannot be evaluated are listed as failures in the run
metadata and do not stop the run.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		ctx = log.Logger.WithContext(ctx)

		formats, err := export.ParseFormats(viper.GetStringSlice("output.formats"))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid output format")
		}

		conf, err := metrics.ConfigFromViper()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid metrics configuration")
		}

		var myLibrary *library.Library
		if viper.GetBool("run.save") || viper.GetString("input.dir") == "" {
			myLibrary, err = library.NewFromDB(ctx, viper.GetString("db.url"))
			if err != nil {
				log.Fatal().Err(err).Msg("could not connect to library")
			}
			defer myLibrary.Close()
		}

		var src source.Source = myLibrary
		if dir := viper.GetString("input.dir"); dir != "" {
			src = source.NewCSVDir(dir)
		}

		universe, err := src.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load universe")
		}

		metricRunner := runner.New(metrics.New(conf))
		if workers := viper.GetInt("runner.workers"); workers > 0 {
			metricRunner.Workers = workers
		}

		analysis, runErr := metricRunner.Run(ctx, universe)
		if analysis == nil {
			log.Fatal().Err(runErr).Msg("metric run failed")
		}

		if runErr != nil {
			log.Warn().Err(runErr).Msg("metric run was interrupted, writing partial analysis")
		}

		// Use a fresh context so that an interrupt during the run still lets
		// the partial analysis be written
		outCtx := log.Logger.WithContext(context.Background())

		outDir := viper.GetString("output.dir")
		files, err := export.Write(outCtx, analysis, export.Options{
			Dir:      outDir,
			Formats:  formats,
			Decimals: viper.GetInt("output.decimals"),
		})
		if err != nil {
			log.Fatal().Err(err).Str("Dir", outDir).Msg("could not export analysis")
		}

		if viper.GetBool("run.save") {
			if err := myLibrary.SaveAnalysis(outCtx, analysis); err != nil {
				log.Fatal().Err(err).Msg("could not save analysis to library")
			}
		}

		if viper.GetBool("run.upload") {
			dirname := filepath.ToSlash(filepath.Join(viper.GetString("backblaze.prefix"),
				analysis.Metadata.GeneratedAt.Format("2006-01-02")))
			if err := backblaze.Upload(outCtx, files, outDir, viper.GetString("backblaze.bucket"), dirname); err != nil {
				log.Fatal().Err(err).Msg("could not upload analysis")
			}
		}

		if checkID := viper.GetString("healthchecks.check_id"); checkID != "" {
			failed := runErr != nil || failureRate(analysis.Metadata) > viper.GetFloat64("healthchecks.fail_threshold")
			if err := healthcheck.Ping(outCtx, checkID, failed, pingMessage(analysis.Metadata)); err != nil {
				log.Error().Err(err).Str("CheckID", checkID).Msg("health check ping failed")
			}
		}

		fmt.Println(renderRunSummary(analysis.Metadata, files))

		if viper.GetBool("run.show") {
			fmt.Println()
			export.RenderOverview(os.Stdout, analysis.SectorOverview, overviewColumns, viper.GetInt("output.decimals"))
		}

		if runErr != nil {
			os.Exit(1)
		}
	},
}

// overviewColumns are the sector medians printed with --show
var overviewColumns = []string{
	"valuation.pe_ltm",
	"valuation.pb",
	"growth.revenue_cagr_3y",
	"margins.net_ltm",
	"price.percentile_52w",
}

func failureRate(meta data.RunSummary) float64 {
	if meta.TotalAttempted == 0 {
		return 0
	}

	return float64(meta.TotalFailed) / float64(meta.TotalAttempted)
}

func pingMessage(meta data.RunSummary) string {
	msg := fmt.Sprintf("run %s: %d attempted, %d succeeded, %d failed", meta.RunID.String(),
		meta.TotalAttempted, meta.TotalSucceeded, meta.TotalFailed)

	for _, failure := range meta.Failures {
		msg += fmt.Sprintf("\n%s: %s", failure.Symbol, failure.Reason)
	}

	return msg
}

func renderRunSummary(meta data.RunSummary, files []string) string {
	var sb strings.Builder
	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	fmt.Fprintf(&sb,
		"%s\n\nRun: %s\nAttempted: %s\nSucceeded: %s\nFailed: %s\nRun Time: %s\n",
		lipgloss.NewStyle().Bold(true).Render("METRIC RUN"),
		keyword(meta.RunID.String()),
		keyword(fmt.Sprintf("%d", meta.TotalAttempted)),
		keyword(fmt.Sprintf("%d", meta.TotalSucceeded)),
		keyword(fmt.Sprintf("%d", meta.TotalFailed)),
		keyword(durafmt.Parse(meta.EndTime.Sub(meta.StartTime)).LimitFirstN(2).String()),
	)

	if len(files) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", lipgloss.NewStyle().Bold(true).Render("Files"))

		// the per-stock JSON files are summarized by the analysis document
		numStocks := 0
		for _, fn := range files {
			if filepath.Base(filepath.Dir(fn)) == export.StocksDir {
				numStocks++
				continue
			}

			fmt.Fprintf(&sb, "\n%s", keyword(fn))
		}

		if numStocks > 0 {
			fmt.Fprintf(&sb, "\n%s", keyword(fmt.Sprintf("%d stock files", numStocks)))
		}
	}

	return lipgloss.NewStyle().
		Width(72).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(sb.String())
}

func init() {
	rootCmd.AddCommand(runCmd)

	viper.SetDefault("output.dir", "metrics")
	viper.SetDefault("output.formats", []string{string(export.JSON), string(export.CSV)})
	viper.SetDefault("output.decimals", export.DefaultDecimals)
	viper.SetDefault("healthchecks.fail_threshold", 0.1)

	runCmd.Flags().StringP("input", "i", "", "directory of entities.csv, financials.csv and prices.csv (default reads the data library)")
	runCmd.Flags().StringP("output", "o", "", "directory the analysis is written to")
	runCmd.Flags().StringSliceP("format", "f", nil, "output formats: json, csv, parquet")
	runCmd.Flags().Int("decimals", export.DefaultDecimals, "decimal places of exported values")
	runCmd.Flags().IntP("workers", "w", 0, "number of stocks evaluated concurrently (default number of CPUs)")
	runCmd.Flags().Bool("save", false, "save the analysis to the data library")
	runCmd.Flags().Bool("upload", false, "upload the exported files to backblaze")
	runCmd.Flags().Bool("show", false, "print the sector overview after the run")

	for flag, key := range map[string]string{
		"input":    "input.dir",
		"output":   "output.dir",
		"format":   "output.formats",
		"decimals": "output.decimals",
		"workers":  "runner.workers",
		"save":     "run.save",
		"upload":   "run.upload",
		"show":     "run.show",
	} {
		if err := viper.BindPFlag(key, runCmd.Flags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}
