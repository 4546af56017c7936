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
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	deps       bool
	depsPrefix string
	short      bool
	asJSON     bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		build := pkginfo.Current(len(data.MetricNames()))

		switch {
		case short:
			fmt.Println(build.Version)
		case asJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(build); err != nil {
				log.Fatal().Err(err).Msg("could not encode build info")
			}
		default:
			fmt.Println(build)
		}

		if deps || depsPrefix != "" {
			fmt.Printf("\n\n")
			fmt.Println(strings.Join(pkginfo.Dependencies(depsPrefix), "\n"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&deps, "deps", "d", false, "print dependencies")
	versionCmd.Flags().StringVar(&depsPrefix, "deps-prefix", "", "only print dependencies whose module path starts with prefix")
	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "only print version number")
	versionCmd.Flags().BoolVar(&asJSON, "json", false, "print build info as json")
}
