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
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics [group]",
	Short: "List the metrics computed for each stock",
	Run: func(cmd *cobra.Command, args []string) {
		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		aggregated := make(map[string]bool, len(data.DefaultAggregateMetrics))
		for _, name := range data.DefaultAggregateMetrics {
			aggregated[name] = true
		}

		builder := strings.Builder{}
		builder.WriteString("# Metrics\n")
		builder.WriteString("Metrics marked with * are summarized by sector and industry.\n")

		lastGroup := ""
		for _, name := range data.MetricNames() {
			group, metric, _ := strings.Cut(name, ".")
			if len(args) > 0 && !strings.EqualFold(args[0], group) {
				continue
			}

			if group != lastGroup {
				builder.WriteString(fmt.Sprintf("\n## %s\n", group))
				lastGroup = group
			}

			marker := ""
			if aggregated[name] {
				marker = " *"
			}

			builder.WriteString(fmt.Sprintf("- %s%s\n", metric, marker))
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render metrics document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
