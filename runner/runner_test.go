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
package runner_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/runner"
)

// explodingCalculator panics for one symbol and defers to the real
// calculator otherwise
type explodingCalculator struct {
	symbol string
	next   *metrics.Calculator
}

func (calc *explodingCalculator) Calculate(entity *data.Entity) (*data.EntityMetrics, error) {
	if entity.Symbol == calc.symbol {
		panic("division by zero")
	}

	return calc.next.Calculate(entity)
}

func f(v float64) *float64 {
	return &v
}

var _ = Describe("Runner", func() {
	var (
		myRunner *runner.Runner
		now      time.Time
	)

	BeforeEach(func() {
		now = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
		myRunner = runner.New(&explodingCalculator{
			symbol: "BOOM",
			next:   metrics.New(metrics.DefaultConfig()),
		})
		myRunner.Workers = 4
		myRunner.Now = func() time.Time { return now }
	})

	It("rejects a nil universe", func() {
		_, err := myRunner.Run(context.Background(), nil)
		Expect(errors.Is(err, runner.ErrNilUniverse)).To(BeTrue())
	})

	It("handles an empty universe", func() {
		analysis, err := myRunner.Run(context.Background(), []*data.Entity{})
		Expect(err).To(BeNil())
		Expect(analysis.Metadata.TotalAttempted).To(Equal(0))
		Expect(analysis.Entities).To(BeEmpty())
		Expect(analysis.SectorOverview).To(BeEmpty())
	})

	It("records entity failures without stopping the run", func() {
		universe := []*data.Entity{
			{Symbol: "2222", Sector: "Energy", Exchange: "TADAWUL", CurrentPrice: f(28)},
			{Symbol: "BOOM", Sector: "Energy", Exchange: "TADAWUL"},
			nil,
			{CompanyName: "No Symbol Co", Sector: "Energy"},
			{Symbol: "1010", Sector: "Financials", Exchange: "TADAWUL", CurrentPrice: f(35)},
			{Symbol: "2222", Sector: "Energy", Exchange: "TADAWUL"},
			{Symbol: "9510", Sector: "Industrials", Exchange: "nomu"},
		}

		analysis, err := myRunner.Run(context.Background(), universe)
		Expect(err).To(BeNil())

		meta := analysis.Metadata
		Expect(meta.TotalAttempted).To(Equal(7))
		Expect(meta.TotalSucceeded).To(Equal(3))
		Expect(meta.TotalFailed).To(Equal(4))
		Expect(meta.GeneratedAt).To(Equal(now))
		Expect(meta.ExchangeCounts).To(Equal(map[string]int{"TADAWUL": 2, "NOMU": 1}))

		symbols := make([]string, 0, len(analysis.Entities))
		for _, record := range analysis.Entities {
			symbols = append(symbols, record.Symbol)
		}
		Expect(symbols).To(Equal([]string{"2222", "1010", "9510"}))

		Expect(meta.Failures).To(HaveLen(4))
		Expect(meta.Failures[0].Symbol).To(Equal("BOOM"))
		Expect(meta.Failures[0].Reason).To(ContainSubstring("panicked"))
		Expect(meta.Failures[1].Reason).To(Equal(runner.ErrNilEntity.Error()))
		Expect(meta.Failures[2].Reason).To(Equal(data.ErrMissingSymbol.Error()))
		Expect(meta.Failures[3].Symbol).To(Equal("2222"))

		Expect(analysis.SectorOverview).To(HaveLen(3))
		Expect(analysis.SectorOverview["Energy"].Count).To(Equal(1))
	})

	It("stops scheduling once the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		analysis, err := myRunner.Run(ctx, []*data.Entity{{Symbol: "2222"}})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(analysis.Metadata.TotalAttempted).To(Equal(0))
		Expect(analysis.Entities).To(BeEmpty())
	})
})
