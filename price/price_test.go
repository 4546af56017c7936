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
package price_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/price"
)

func f(v float64) *float64 {
	return &v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sample(date time.Time, close float64) *data.PriceSample {
	return &data.PriceSample{Date: date, Close: close}
}

var _ = Describe("Price", func() {
	Describe("PercentileRank", func() {
		It("places the price within the range", func() {
			Expect(*price.PercentileRank(f(75), f(100), f(50))).To(BeNumerically("~", 50.0, 1e-9))
			Expect(*price.PercentileRank(f(100), f(100), f(50))).To(BeNumerically("~", 100.0, 1e-9))
			Expect(*price.PercentileRank(f(50), f(100), f(50))).To(BeNumerically("~", 0.0, 1e-9))
		})

		It("is nil for a flat window", func() {
			Expect(price.PercentileRank(f(42), f(42), f(42))).To(BeNil())
		})

		It("is nil when an input is missing", func() {
			Expect(price.PercentileRank(nil, f(100), f(50))).To(BeNil())
			Expect(price.PercentileRank(f(75), nil, f(50))).To(BeNil())
		})
	})

	Describe("HighLow", func() {
		It("only considers samples inside the trailing window", func() {
			series := []*data.PriceSample{
				sample(day(2024, 6, 28), 90),
				sample(day(2023, 1, 3), 500),
				sample(day(2023, 9, 1), 70),
				sample(day(2024, 2, 15), 120),
			}

			high, low := price.HighLow(series, price.FiftyTwoWeeks)
			Expect(*high).To(Equal(120.0))
			Expect(*low).To(Equal(70.0))

			high, low = price.HighLow(series, price.ThreeYears)
			Expect(*high).To(Equal(500.0))
			Expect(*low).To(Equal(70.0))
		})

		It("is nil for an empty series", func() {
			high, low := price.HighLow(nil, price.FiftyTwoWeeks)
			Expect(high).To(BeNil())
			Expect(low).To(BeNil())
		})
	})

	Describe("At", func() {
		It("returns the latest close on or before the date", func() {
			series := []*data.PriceSample{
				sample(day(2024, 1, 10), 10),
				sample(day(2024, 1, 12), 12),
				sample(day(2024, 1, 15), 15),
			}

			Expect(*price.At(series, day(2024, 1, 14))).To(Equal(12.0))
			Expect(*price.At(series, day(2024, 1, 15))).To(Equal(15.0))
			Expect(price.At(series, day(2024, 1, 1))).To(BeNil())
			Expect(*price.Latest(series)).To(Equal(15.0))
		})
	})

	Describe("RangeRatio", func() {
		It("divides high by low", func() {
			Expect(*price.RangeRatio(f(150), f(100))).To(BeNumerically("~", 1.5, 1e-9))
		})

		It("is nil when the low is not positive", func() {
			Expect(price.RangeRatio(f(150), f(0))).To(BeNil())
		})
	})

	Describe("Volatility", func() {
		It("measures the spread of weekly returns", func() {
			series := []*data.PriceSample{
				sample(day(2024, 1, 1), 100),
				sample(day(2024, 1, 8), 110),
				sample(day(2024, 1, 15), 99),
			}

			vol := price.Volatility(series, price.FiftyTwoWeeks, price.Weekly)
			Expect(vol).ToNot(BeNil())
			Expect(*vol).To(BeNumerically("~", 10.0, 1e-9))
		})

		It("uses the last close of each week", func() {
			series := []*data.PriceSample{
				sample(day(2024, 1, 1), 100),
				sample(day(2024, 1, 3), 500),
				sample(day(2024, 1, 5), 100),
				sample(day(2024, 1, 8), 110),
				sample(day(2024, 1, 15), 99),
			}

			Expect(*price.Volatility(series, price.FiftyTwoWeeks, price.Weekly)).To(BeNumerically("~", 10.0, 1e-9))
		})

		It("supports daily returns", func() {
			series := []*data.PriceSample{
				sample(day(2024, 1, 1), 100),
				sample(day(2024, 1, 2), 110),
				sample(day(2024, 1, 3), 99),
			}

			Expect(*price.Volatility(series, price.FiftyTwoWeeks, price.Daily)).To(BeNumerically("~", 10.0, 1e-9))
			Expect(price.Volatility(series, price.FiftyTwoWeeks, price.Weekly)).To(BeNil())
		})

		It("is nil with fewer than two returns", func() {
			series := []*data.PriceSample{
				sample(day(2024, 1, 1), 100),
				sample(day(2024, 1, 8), 110),
			}

			Expect(price.Volatility(series, price.FiftyTwoWeeks, price.Weekly)).To(BeNil())
		})

		It("parses the configured interval", func() {
			interval, err := price.ParseReturnInterval("Monthly")
			Expect(err).To(BeNil())
			Expect(interval).To(Equal(price.Monthly))

			_, err = price.ParseReturnInterval("hourly")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("PositionMomentum", func() {
		It("compares the current rank to the rank three months earlier", func() {
			series := []*data.PriceSample{
				sample(day(2023, 7, 15), 10),
				sample(day(2023, 9, 1), 110),
				sample(day(2024, 3, 30), 60),
				sample(day(2024, 6, 30), 110),
			}

			momentum := price.PositionMomentum(series, price.Latest(series), price.FiftyTwoWeeks, price.ThreeMonths)
			Expect(momentum).ToNot(BeNil())
			Expect(*momentum).To(BeNumerically("~", 50.0, 1e-9))
		})

		It("is nil without history at the lookback date", func() {
			series := []*data.PriceSample{
				sample(day(2024, 5, 1), 100),
				sample(day(2024, 6, 30), 110),
			}

			Expect(price.PositionMomentum(series, price.Latest(series), price.FiftyTwoWeeks, price.ThreeMonths)).To(BeNil())
		})
	})
})
