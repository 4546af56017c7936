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
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/data"
)

var _ = Describe("Summary", func() {
	It("notes when no run has been saved", func() {
		doc, err := writeSummary(summaryDetails{
			Name:        "tadawul",
			DBUrl:       "postgres://localhost/pvmetrics",
			NumEntities: 1234,
		})
		Expect(err).To(BeNil())
		Expect(doc).To(ContainSubstring("# tadawul"))
		Expect(doc).To(ContainSubstring("Entities: 1,234"))
		Expect(doc).To(ContainSubstring("Universe Updated: Never"))
		Expect(doc).To(ContainSubstring("No runs saved"))
	})

	It("describes the last run", func() {
		end := time.Now().Add(-2 * time.Hour)
		failures := make([]data.Failure, 0, 12)
		for idx := 0; idx < 12; idx++ {
			failures = append(failures, data.Failure{Symbol: fmt.Sprintf("%d", 1000+idx), Reason: "entity has no symbol"})
		}

		doc, err := writeSummary(summaryDetails{
			Name:    "tadawul",
			NumRuns: 3,
			LastRun: &data.RunSummary{
				RunID:          uuid.New(),
				GeneratedAt:    end,
				StartTime:      end.Add(-90 * time.Second),
				EndTime:        end,
				TotalAttempted: 300,
				TotalSucceeded: 288,
				TotalFailed:    12,
				ExchangeCounts: map[string]int{"TADAWUL": 230, "NOMU": 58},
				Failures:       failures,
			},
		})
		Expect(err).To(BeNil())
		Expect(doc).To(ContainSubstring("Succeeded: 288"))
		Expect(doc).To(ContainSubstring("NOMU: 58"))
		Expect(doc).To(ContainSubstring("1009: entity has no symbol"))
		Expect(doc).ToNot(ContainSubstring("1010:"))
		Expect(doc).To(ContainSubstring("and 2 more"))
	})
})
