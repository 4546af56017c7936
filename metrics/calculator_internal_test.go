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

package metrics

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/data"
)

var _ = Describe("Metric groups", func() {
	var (
		calc   *Calculator
		entity *data.Entity
	)

	BeforeEach(func() {
		calc = New(DefaultConfig())

		quarterly := make([]*data.FinancialPeriod, 0, 4)
		for q := 1; q <= 4; q++ {
			quarterly = append(quarterly, &data.FinancialPeriod{
				Key:                data.PeriodKey{FiscalYear: 2023, FiscalPeriod: q},
				PeriodEnd:          time.Date(2023, time.Month(q*3), 28, 0, 0, 0, 0, time.UTC),
				Revenue:            data.Float(100),
				GrossProfit:        data.Float(50),
				NetIncome:          data.Float(10),
				OperatingCashFlow:  data.Float(20),
				CapitalExpenditure: data.Float(5),
			})
		}

		entity = &data.Entity{
			Symbol:            "2222",
			Exchange:          "TADAWUL",
			Quarterly:         quarterly,
			CurrentPrice:      data.Float(80),
			SharesOutstanding: data.Float(10),
		}
	})

	It("runs the groups in their default order", func() {
		names := make([]string, 0, len(calc.groups))
		for _, group := range calc.groups {
			names = append(names, group.name)
		}

		Expect(names).To(Equal([]string{"price", "growth", "valuation", "margins", "quality"}))
	})

	It("keeps computing after a group panics", func() {
		failing := metricGroup{name: "failing", run: func(*Calculator, *input, *data.EntityMetrics) {
			panic("division table corrupted")
		}}

		calc.groups = append([]metricGroup{failing}, defaultGroups...)

		var result *data.EntityMetrics
		Expect(func() {
			var err error
			result, err = calc.Calculate(entity)
			Expect(err).To(BeNil())
		}).ToNot(Panic())

		Expect(*result.Price.Current).To(BeNumerically("~", 80, 1e-9))
		Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		Expect(*result.Margins.GrossLTM).To(BeNumerically("~", 50, 1e-9))
	})

	It("leaves only the failed group at its zero value", func() {
		groups := make([]metricGroup, 0, len(defaultGroups))
		for _, group := range defaultGroups {
			if group.name == "margins" {
				group.run = func(*Calculator, *input, *data.EntityMetrics) {
					var series []*data.FinancialPeriod
					_ = series[3]
				}
			}
			groups = append(groups, group)
		}

		calc.groups = groups

		result, err := calc.Calculate(entity)
		Expect(err).To(BeNil())
		Expect(result.Margins.GrossLTM).To(BeNil())
		Expect(result.Margins.NetLTM).To(BeNil())
		Expect(result.Margins.NetTrend).To(Equal(data.Unknown))
		Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		Expect(*result.Valuation.EVFCF).To(BeNumerically("~", 800.0/60.0, 1e-9))
	})
})
