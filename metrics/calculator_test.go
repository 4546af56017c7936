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
package metrics_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/metrics"
)

func f(v float64) *float64 {
	return &v
}

func interim(year, period, perYear int, revenue, gross, netIncome, ocf, capex float64) *data.FinancialPeriod {
	return &data.FinancialPeriod{
		Key:                data.PeriodKey{FiscalYear: year, FiscalPeriod: period},
		PeriodEnd:          time.Date(year, time.Month(period*12/perYear), 28, 0, 0, 0, 0, time.UTC),
		Revenue:            f(revenue),
		GrossProfit:        f(gross),
		NetIncome:          f(netIncome),
		OperatingCashFlow:  f(ocf),
		CapitalExpenditure: f(capex),
	}
}

func annualNetIncome(firstYear int, values ...float64) []*data.FinancialPeriod {
	series := make([]*data.FinancialPeriod, 0, len(values))
	for idx, v := range values {
		year := firstYear + idx
		series = append(series, &data.FinancialPeriod{
			Key:       data.PeriodKey{FiscalYear: year},
			PeriodEnd: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			NetIncome: f(v),
		})
	}

	return series
}

// eightQuarters returns two fiscal years of quarterly records where the gross
// margin widens from 40% to 50% and everything else is flat
func eightQuarters() []*data.FinancialPeriod {
	series := make([]*data.FinancialPeriod, 0, 8)
	for q := 1; q <= 4; q++ {
		series = append(series, interim(2022, q, 4, 100, 40, 10, 20, 5))
	}

	for q := 1; q <= 4; q++ {
		series = append(series, interim(2023, q, 4, 100, 50, 10, 20, 5))
	}

	// input order is not trusted
	series[1], series[6] = series[6], series[1]

	return series
}

var _ = Describe("Calculator", func() {
	var calc *metrics.Calculator

	BeforeEach(func() {
		calc = metrics.New(metrics.DefaultConfig())
	})

	Context("identity", func() {
		It("fails an entity without a symbol", func() {
			_, err := calc.Calculate(&data.Entity{CompanyName: "Nameless"})
			Expect(errors.Is(err, data.ErrMissingSymbol)).To(BeTrue())
		})

		It("fails a nil entity", func() {
			_, err := calc.Calculate(nil)
			Expect(errors.Is(err, data.ErrMissingSymbol)).To(BeTrue())
		})

		It("degrades every metric to nil for an entity with no data", func() {
			result, err := calc.Calculate(&data.Entity{Symbol: "EMPTY", Sector: "Energy"})
			Expect(err).To(BeNil())
			Expect(result.Symbol).To(Equal("EMPTY"))
			Expect(result.Sector).To(Equal("Energy"))

			for _, name := range data.MetricNames() {
				value, ok := result.Metric(name)
				Expect(ok).To(BeTrue())
				Expect(value).To(BeNil(), name)
			}

			Expect(result.Margins.GrossTrend).To(Equal(data.Unknown))
			Expect(result.Margins.NetTrend).To(Equal(data.Unknown))
			Expect(result.Margins.OCFTrend).To(Equal(data.Unknown))
			Expect(result.Margins.FCFTrend).To(Equal(data.Unknown))
		})
	})

	Context("with a complete entity", func() {
		var (
			result *data.EntityMetrics
			entity *data.Entity
		)

		BeforeEach(func() {
			entity = &data.Entity{
				Symbol:            "2222",
				Sector:            "Energy",
				Industry:          "Oil & Gas",
				Exchange:          "TADAWUL",
				Quarterly:         eightQuarters(),
				Annual:            annualNetIncome(2020, 20, 25, 30, 40),
				CurrentPrice:      f(80),
				SharesOutstanding: f(10),
				BookValue:         f(400),
				TotalDebt:         f(200),
				TotalCash:         f(100),
				Prices: []*data.PriceSample{
					{Date: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), Close: 60},
					{Date: time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), Close: 80},
					{Date: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), Close: 100},
				},
			}
		})

		JustBeforeEach(func() {
			var err error
			result, err = calc.Calculate(entity)
			Expect(err).To(BeNil())
		})

		It("computes valuation multiples from LTM figures", func() {
			Expect(*result.Valuation.MarketCap).To(BeNumerically("~", 800, 1e-9))
			Expect(*result.Valuation.EnterpriseValue).To(BeNumerically("~", 900, 1e-9))
			Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
			Expect(*result.Valuation.PB).To(BeNumerically("~", 2, 1e-9))
			Expect(*result.Valuation.EVFCF).To(BeNumerically("~", 15, 1e-9))
			Expect(*result.Valuation.PEG).To(BeNumerically("~", 0.76946, 1e-4))
		})

		It("computes LTM margins and their trend", func() {
			Expect(*result.Margins.GrossLTM).To(BeNumerically("~", 50, 1e-9))
			Expect(result.Margins.GrossTrend).To(Equal(data.Expanding))
			Expect(*result.Margins.NetLTM).To(BeNumerically("~", 10, 1e-9))
			Expect(result.Margins.NetTrend).To(Equal(data.Stable))
			Expect(*result.Margins.FCFLTM).To(BeNumerically("~", 15, 1e-9))
		})

		It("places the price in its 52 week range", func() {
			Expect(*result.Price.Current).To(Equal(80.0))
			Expect(*result.Price.High52W).To(Equal(100.0))
			Expect(*result.Price.Low52W).To(Equal(60.0))
			Expect(*result.Price.Percentile52W).To(BeNumerically("~", 50, 1e-9))
		})

		It("treats missing debt and cash as zero", func() {
			entity.TotalDebt = nil
			entity.TotalCash = nil
			result, err := calc.Calculate(entity)
			Expect(err).To(BeNil())
			Expect(*result.Valuation.EnterpriseValue).To(BeNumerically("~", 800, 1e-9))
		})

		It("derives shares from market cap", func() {
			entity.SharesOutstanding = nil
			entity.MarketCap = f(800)
			result, err := calc.Calculate(entity)
			Expect(err).To(BeNil())
			Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		})

		It("refuses a P/E for negative earnings", func() {
			for _, fp := range entity.Quarterly {
				fp.NetIncome = f(-10)
			}

			result, err := calc.Calculate(entity)
			Expect(err).To(BeNil())
			Expect(result.Valuation.PELTM).To(BeNil())
			Expect(result.Valuation.PEG).To(BeNil())
			Expect(result.Valuation.EVFCF).ToNot(BeNil())
		})

		It("refuses LTM metrics with only three quarters", func() {
			entity.Quarterly = []*data.FinancialPeriod{
				interim(2023, 2, 4, 100, 50, 10, 20, 5),
				interim(2023, 3, 4, 100, 50, 10, 20, 5),
				interim(2023, 4, 4, 100, 50, 10, 20, 5),
			}

			result, err := calc.Calculate(entity)
			Expect(err).To(BeNil())
			Expect(result.Valuation.PELTM).To(BeNil())
			Expect(result.Valuation.EVFCF).To(BeNil())
			Expect(result.Margins.GrossLTM).To(BeNil())
			Expect(result.Valuation.PB).ToNot(BeNil())
		})
	})

	Context("semiannual reporters", func() {
		halves := func() []*data.FinancialPeriod {
			return []*data.FinancialPeriod{
				interim(2023, 1, 2, 200, 100, 20, 40, 10),
				interim(2023, 2, 2, 200, 100, 20, 40, 10),
			}
		}

		It("sums two halves into the LTM on a semiannual exchange", func() {
			result, err := calc.Calculate(&data.Entity{
				Symbol:            "9510",
				Exchange:          "NOMU",
				Quarterly:         halves(),
				CurrentPrice:      f(80),
				SharesOutstanding: f(10),
			})
			Expect(err).To(BeNil())
			Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		})

		It("reads halves labelled by the quarter they end in", func() {
			result, err := calc.Calculate(&data.Entity{
				Symbol:   "9511",
				Exchange: "NOMU",
				Quarterly: []*data.FinancialPeriod{
					interim(2022, 4, 4, 200, 100, 5, 40, 10),
					interim(2023, 2, 4, 200, 100, 20, 40, 10),
					interim(2023, 4, 4, 200, 100, 20, 40, 10),
				},
				CurrentPrice:      f(80),
				SharesOutstanding: f(10),
			})
			Expect(err).To(BeNil())
			Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		})

		It("ignores third and fourth quarters on a semiannual exchange", func() {
			result, err := calc.Calculate(&data.Entity{
				Symbol:   "9512",
				Exchange: "NOMU",
				Quarterly: []*data.FinancialPeriod{
					interim(2023, 1, 4, 200, 100, 1, 40, 10),
					interim(2023, 2, 4, 200, 100, 2, 40, 10),
					interim(2023, 3, 4, 200, 100, 3, 40, 10),
					interim(2023, 4, 4, 200, 100, 4, 40, 10),
					interim(2024, 1, 4, 200, 100, 20, 40, 10),
					interim(2024, 2, 4, 200, 100, 20, 40, 10),
				},
				CurrentPrice:      f(80),
				SharesOutstanding: f(10),
			})
			Expect(err).To(BeNil())
			Expect(*result.Valuation.PELTM).To(BeNumerically("~", 20, 1e-9))
		})

		It("does not treat halves as quarters elsewhere", func() {
			result, err := calc.Calculate(&data.Entity{
				Symbol:            "1010",
				Exchange:          "TADAWUL",
				Quarterly:         halves(),
				CurrentPrice:      f(80),
				SharesOutstanding: f(10),
			})
			Expect(err).To(BeNil())
			Expect(result.Valuation.PELTM).To(BeNil())
		})
	})

	Context("growth and consistency", func() {
		var result *data.EntityMetrics

		BeforeEach(func() {
			var err error
			result, err = calc.Calculate(&data.Entity{
				Symbol: "1120",
				Annual: annualNetIncome(2019, 10, 12, -5, 8, 15),
			})
			Expect(err).To(BeNil())
		})

		It("compounds growth over the full history", func() {
			Expect(*result.Growth.NetIncomeCAGR4Y).To(BeNumerically("~", 10.668, 1e-3))
			Expect(*result.Growth.NetIncomeCAGR3Y).To(BeNumerically("~", 7.7217, 1e-3))
			Expect(*result.Growth.NetIncomeYoY).To(BeNumerically("~", 87.5, 1e-9))
		})

		It("reports the sign flip as high dispersion", func() {
			Expect(*result.Quality.NetIncomeConsistency).To(BeNumerically("~", 144.027, 1e-3))
			Expect(*result.Quality.NetIncomeConsistency).To(BeNumerically(">", 100))
		})

		It("leaves metrics without source data nil", func() {
			Expect(result.Growth.RevenueYoY).To(BeNil())
			Expect(result.Quality.FCFConsistency).To(BeNil())
		})

		It("needs a minimum history", func() {
			result, err := calc.Calculate(&data.Entity{
				Symbol: "1150",
				Annual: annualNetIncome(2022, 10, 12),
			})
			Expect(err).To(BeNil())
			Expect(result.Quality.NetIncomeConsistency).To(BeNil())
		})

		It("supports the coefficient of variation policy", func() {
			conf := metrics.DefaultConfig()
			conf.ConsistencyMethod = metrics.CoefficientOfVariation
			result, err := metrics.New(conf).Calculate(&data.Entity{
				Symbol: "1120",
				Annual: annualNetIncome(2019, 10, 12, -5, 8, 15),
			})
			Expect(err).To(BeNil())
			Expect(*result.Quality.NetIncomeConsistency).To(BeNumerically("~", 86.241, 1e-3))
		})
	})
})
