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

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxListedFailures caps the failures shown in the summary
const maxListedFailures = 10

type summaryDetails struct {
	Name        string
	DBUrl       string
	NumEntities int
	NumRuns     int
	LastUpdated time.Time
	LastRun     *data.RunSummary
}

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	details := summaryDetails{
		Name:  myLibrary.Name,
		DBUrl: myLibrary.DBUrl,
	}

	var err error
	if details.NumEntities, err = myLibrary.NumEntities(ctx); err != nil {
		return "", err
	}

	if details.LastUpdated, err = myLibrary.LastUpdated(ctx); err != nil {
		return "", err
	}

	if err := myLibrary.CreateTables(ctx); err != nil {
		return "", err
	}

	if details.NumRuns, err = myLibrary.NumRuns(ctx); err != nil {
		return "", err
	}

	details.LastRun, err = myLibrary.LatestRun(ctx)
	if err != nil && !errors.Is(err, ErrNoRuns) {
		return "", err
	}

	return writeSummary(details)
}

func writeSummary(details summaryDetails) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", details.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", details.DBUrl)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Entities: %d\n", details.NumEntities)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Metric Runs: %d\n\n", details.NumRuns)); err != nil {
		return "", err
	}

	if details.LastUpdated.Equal(time.Time{}) {
		if _, err := builder.WriteString("Universe Updated: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(details.LastUpdated)
		if _, err := builder.WriteString(fmt.Sprintf("Universe Updated: %s (%s)\n\n", age, details.LastUpdated.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString("## Last Run\n\n"); err != nil {
		return "", err
	}

	run := details.LastRun
	if run == nil {
		if _, err := builder.WriteString("No runs saved\n"); err != nil {
			return "", err
		}

		return builder.String(), nil
	}

	if _, err := builder.WriteString(fmt.Sprintf("Generated: %s (%s) [%s]\n\n", timeago.English.Format(run.GeneratedAt),
		run.GeneratedAt.Local().Format("01/02/2006 15:04"), run.RunID.String()[:8])); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Attempted: %d\n  * Succeeded: %d\n  * Failed: %d\n  * Run Time: %s\n",
		run.TotalAttempted, run.TotalSucceeded, run.TotalFailed,
		durafmt.Parse(run.EndTime.Sub(run.StartTime)).LimitFirstN(2).String())); err != nil {
		return "", err
	}

	if len(run.ExchangeCounts) > 0 {
		if _, err := builder.WriteString("\n### Exchanges\n\n"); err != nil {
			return "", err
		}

		for _, exchange := range sortedExchanges(run.ExchangeCounts) {
			if _, err := builder.WriteString(p.Sprintf("  * %s: %d\n", exchange, run.ExchangeCounts[exchange])); err != nil {
				return "", err
			}
		}
	}

	if len(run.Failures) > 0 {
		if _, err := builder.WriteString("\n### Failures\n\n"); err != nil {
			return "", err
		}

		for idx, failure := range run.Failures {
			if idx == maxListedFailures {
				if _, err := builder.WriteString(p.Sprintf("  * ... and %d more\n", len(run.Failures)-maxListedFailures)); err != nil {
					return "", err
				}

				break
			}

			symbol := failure.Symbol
			if symbol == "" {
				symbol = "(no symbol)"
			}

			if _, err := builder.WriteString(fmt.Sprintf("  * %s: %s\n", symbol, failure.Reason)); err != nil {
				return "", err
			}
		}
	}

	return builder.String(), nil
}
