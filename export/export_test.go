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
package export_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/aggregate"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/export"
)

func f(v float64) *float64 {
	return &v
}

func sampleAnalysis() *data.Analysis {
	records := []*data.EntityMetrics{
		{
			Symbol:   "2222",
			Sector:   "Energy",
			Industry: "Oil & Gas",
			Exchange: "TADAWUL",
			Price:    data.PriceMetrics{Current: f(27.456), Volatility: nil},
			Valuation: data.ValuationMetrics{
				PELTM: f(15.3333333),
			},
			Margins: data.MarginMetrics{
				GrossTrend: data.Expanding,
				NetTrend:   data.Unknown,
				OCFTrend:   data.Unknown,
				FCFTrend:   data.Unknown,
			},
		},
		{
			Symbol:   "1010",
			Sector:   "Financials",
			Industry: "Banks",
			Exchange: "TADAWUL",
			Valuation: data.ValuationMetrics{
				PELTM: f(9.125),
			},
		},
	}

	sectors, industries, err := aggregate.Overview(records, []string{"valuation.pe_ltm", "price.volatility"})
	Expect(err).To(BeNil())

	return &data.Analysis{
		Metadata: data.RunSummary{
			TotalAttempted: 3,
			TotalSucceeded: 2,
			TotalFailed:    1,
			Failures:       []data.Failure{{Symbol: "9999", Reason: "entity has no symbol"}},
		},
		SectorOverview:   sectors,
		IndustryOverview: industries,
		Entities:         records,
	}
}

var _ = Describe("Export", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("RoundValue", func() {
		It("rounds half away from zero", func() {
			Expect(*export.RoundValue(f(2.345), 2)).To(Equal(2.35))
			Expect(*export.RoundValue(f(-2.345), 2)).To(Equal(-2.35))
			Expect(*export.RoundValue(f(10.6681), 2)).To(Equal(10.67))
		})

		It("keeps nil as nil", func() {
			Expect(export.RoundValue(nil, 2)).To(BeNil())
		})
	})

	It("does not modify the analysis when rounding", func() {
		analysis := sampleAnalysis()
		rounded := export.Round(analysis, 2)
		Expect(*rounded.Entities[0].Valuation.PELTM).To(Equal(15.33))
		Expect(*analysis.Entities[0].Valuation.PELTM).To(Equal(15.3333333))
		Expect(*rounded.SectorOverview["Energy"].Metrics["valuation.pe_ltm"].Mean).To(Equal(15.33))
	})

	It("writes JSON with nulls for missing values", func() {
		files, err := export.Write(context.Background(), sampleAnalysis(), export.Options{
			Dir:      dir,
			Formats:  []export.Format{export.JSON},
			Decimals: export.DefaultDecimals,
		})
		Expect(err).To(BeNil())
		Expect(files).To(ContainElement(filepath.Join(dir, export.AnalysisFile)))
		Expect(files).To(ContainElement(filepath.Join(dir, export.StocksDir, "2222.json")))

		raw, err := os.ReadFile(filepath.Join(dir, export.AnalysisFile))
		Expect(err).To(BeNil())
		Expect(string(raw)).ToNot(ContainSubstring("NaN"))

		var doc map[string]any
		Expect(json.Unmarshal(raw, &doc)).To(Succeed())

		stocks := doc["stocks"].([]any)
		Expect(stocks).To(HaveLen(2))

		first := stocks[0].(map[string]any)
		price := first["price"].(map[string]any)
		Expect(price["current"]).To(Equal(27.46))
		Expect(price).To(HaveKeyWithValue("volatility", BeNil()))
		Expect(first["margins"].(map[string]any)["gross_trend"]).To(Equal("expanding"))

		meta := doc["metadata"].(map[string]any)
		Expect(meta["total_failed"]).To(Equal(1.0))
	})

	It("writes flat CSV files", func() {
		_, err := export.Write(context.Background(), sampleAnalysis(), export.Options{
			Dir:      dir,
			Formats:  []export.Format{export.CSV},
			Decimals: export.DefaultDecimals,
		})
		Expect(err).To(BeNil())

		raw, err := os.ReadFile(filepath.Join(dir, export.EntityMetricsCSVFile))
		Expect(err).To(BeNil())

		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(HavePrefix("symbol,company_name,sector,industry,exchange,price_current"))
		Expect(lines[1]).To(HavePrefix("2222,,Energy,Oil & Gas,TADAWUL,27.46,"))
		Expect(string(raw)).ToNot(ContainSubstring("NaN"))

		sectors, err := os.ReadFile(filepath.Join(dir, "sector_overview.csv"))
		Expect(err).To(BeNil())
		Expect(string(sectors)).To(ContainSubstring("sector,Energy,energy,1,valuation.pe_ltm,1,15.33,15.33"))
		Expect(string(sectors)).To(ContainSubstring("sector,Energy,energy,1,price.volatility,0,,"))
	})

	It("writes a parquet file", func() {
		files, err := export.Write(context.Background(), sampleAnalysis(), export.Options{
			Dir:      dir,
			Formats:  []export.Format{export.Parquet},
			Decimals: export.DefaultDecimals,
		})
		Expect(err).To(BeNil())
		Expect(files).To(Equal([]string{filepath.Join(dir, export.ParquetFile)}))

		info, err := os.Stat(files[0])
		Expect(err).To(BeNil())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})

	It("validates format names", func() {
		formats, err := export.ParseFormats([]string{"JSON", "csv", "json"})
		Expect(err).To(BeNil())
		Expect(formats).To(Equal([]export.Format{export.JSON, export.CSV}))

		_, err = export.ParseFormats([]string{"xlsx"})
		Expect(errors.Is(err, export.ErrUnknownFormat)).To(BeTrue())
	})
})

var _ = Describe("RenderOverview", func() {
	It("prints the median of each metric per group", func() {
		var buf bytes.Buffer
		analysis := sampleAnalysis()
		export.RenderOverview(&buf, analysis.SectorOverview, []string{"valuation.pe_ltm", "price.volatility"}, 2)

		out := buf.String()
		Expect(out).To(ContainSubstring("Energy"))
		Expect(out).To(ContainSubstring("Financials"))
		Expect(out).To(ContainSubstring("15.33"))
		Expect(out).To(ContainSubstring("9.13"))
		Expect(out).To(ContainSubstring("-"))
		Expect(strings.Index(out, "Energy")).To(BeNumerically("<", strings.Index(out, "Financials")))
	})
})
