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
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvmetrics/healthcheck"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Create a healthchecks.io check that is pinged after every run",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		name := "pvmetrics"
		schedule := "0 18 * * 0-4"
		confirmed := false

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name of the check:").
					Value(&name),
				huh.NewInput().
					Title("Cron schedule the metric run follows:").
					Value(&schedule),
			),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("failed to create wizard")
		}

		{
			var sb strings.Builder
			keyword := func(s string) string {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
			}

			fmt.Fprintf(&sb,
				"%s\n\nName: %s\nSchedule: %s\nFail Threshold: %s\n",
				lipgloss.NewStyle().Bold(true).Render("NEW HEALTH CHECK"),
				keyword(name),
				keyword(schedule),
				keyword(fmt.Sprintf("%.0f%% of stocks failing", viper.GetFloat64("healthchecks.fail_threshold")*100)),
			)

			fmt.Println(
				lipgloss.NewStyle().
					Width(60).
					BorderStyle(lipgloss.RoundedBorder()).
					BorderForeground(lipgloss.Color("63")).
					Padding(1, 2).
					Render(sb.String()),
			)
		}

		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Create health check?").
					Value(&confirmed),
			),
		)

		if err := confirmForm.Run(); err != nil {
			log.Fatal().Err(err).Msg("failed to create wizard")
		}

		if !confirmed {
			return
		}

		checkID, err := healthcheck.Create(ctx, name, slug.Make(name), []string{"pvmetrics"}, schedule)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create health check")
		}

		viper.Set("healthchecks.check_id", checkID)

		configFN := viper.ConfigFileUsed()
		if configFN == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("could not determine user home directory")
			}

			configFN = filepath.Join(home, ".pvmetrics.toml")
		}

		if err := viper.WriteConfigAs(configFN); err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save health check id to config file")
		}

		log.Info().Str("CheckID", checkID).Str("ConfigFile", configFN).Msg("health check created")
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
