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
package data

import (
	"sort"

	"github.com/rs/zerolog"
)

// Trend classifies the direction of a margin between two windows
type Trend string

const (
	Expanding   Trend = "expanding"
	Contracting Trend = "contracting"
	Stable      Trend = "stable"
	Unknown     Trend = "unknown"
)

type PriceMetrics struct {
	Current          *float64 `json:"current"`
	High52W          *float64 `json:"52w_high"`
	Low52W           *float64 `json:"52w_low"`
	Ratio52W         *float64 `json:"52w_ratio"`
	Percentile52W    *float64 `json:"percentile_52w"`
	High3Y           *float64 `json:"3y_high"`
	Low3Y            *float64 `json:"3y_low"`
	Percentile3Y     *float64 `json:"percentile_3y"`
	High5Y           *float64 `json:"5y_high"`
	Low5Y            *float64 `json:"5y_low"`
	Percentile5Y     *float64 `json:"percentile_5y"`
	Volatility       *float64 `json:"volatility"`
	PositionMomentum *float64 `json:"position_momentum"`
}

type ValuationMetrics struct {
	MarketCap       *float64 `json:"market_cap"`
	EnterpriseValue *float64 `json:"enterprise_value"`
	PELTM           *float64 `json:"pe_ltm"`
	PB              *float64 `json:"pb"`
	EVFCF           *float64 `json:"ev_fcf"`
	PEG             *float64 `json:"peg"`
}

// GrowthMetrics holds year-over-year and compound growth rates in percent
type GrowthMetrics struct {
	RevenueYoY        *float64 `json:"revenue_yoy"`
	RevenueCAGR3Y     *float64 `json:"revenue_cagr_3y"`
	RevenueCAGR4Y     *float64 `json:"revenue_cagr_4y"`
	GrossProfitYoY    *float64 `json:"gross_profit_yoy"`
	GrossProfitCAGR3Y *float64 `json:"gross_profit_cagr_3y"`
	GrossProfitCAGR4Y *float64 `json:"gross_profit_cagr_4y"`
	NetIncomeYoY      *float64 `json:"net_income_yoy"`
	NetIncomeCAGR3Y   *float64 `json:"net_income_cagr_3y"`
	NetIncomeCAGR4Y   *float64 `json:"net_income_cagr_4y"`
	OCFYoY            *float64 `json:"ocf_yoy"`
	OCFCAGR3Y         *float64 `json:"ocf_cagr_3y"`
	OCFCAGR4Y         *float64 `json:"ocf_cagr_4y"`
	FCFYoY            *float64 `json:"fcf_yoy"`
	FCFCAGR3Y         *float64 `json:"fcf_cagr_3y"`
	FCFCAGR4Y         *float64 `json:"fcf_cagr_4y"`
}

// MarginMetrics holds LTM margins in percent of LTM revenue
type MarginMetrics struct {
	GrossLTM   *float64 `json:"gross_ltm"`
	GrossTrend Trend    `json:"gross_trend"`
	NetLTM     *float64 `json:"net_ltm"`
	NetTrend   Trend    `json:"net_trend"`
	OCFLTM     *float64 `json:"ocf_ltm"`
	OCFTrend   Trend    `json:"ocf_trend"`
	FCFLTM     *float64 `json:"fcf_ltm"`
	FCFTrend   Trend    `json:"fcf_trend"`
}

// QualityMetrics holds dispersion scores; lower is more consistent
type QualityMetrics struct {
	NetIncomeConsistency *float64 `json:"net_income_consistency"`
	FCFConsistency       *float64 `json:"fcf_consistency"`
}

// EntityMetrics is the calculator output for one entity
type EntityMetrics struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Exchange    string `json:"exchange"`

	Price     PriceMetrics     `json:"price"`
	Valuation ValuationMetrics `json:"valuation"`
	Growth    GrowthMetrics    `json:"growth"`
	Margins   MarginMetrics    `json:"margins"`
	Quality   QualityMetrics   `json:"quality"`
}

func (m *EntityMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Symbol", m.Symbol)
	e.Str("Sector", m.Sector)
	e.Str("Industry", m.Industry)
}

// Metric names are "<group>.<field>" using the JSON field names
var metricAccessors = map[string]func(*EntityMetrics) *float64{
	"price.current":           func(m *EntityMetrics) *float64 { return m.Price.Current },
	"price.52w_high":          func(m *EntityMetrics) *float64 { return m.Price.High52W },
	"price.52w_low":           func(m *EntityMetrics) *float64 { return m.Price.Low52W },
	"price.52w_ratio":         func(m *EntityMetrics) *float64 { return m.Price.Ratio52W },
	"price.percentile_52w":    func(m *EntityMetrics) *float64 { return m.Price.Percentile52W },
	"price.3y_high":           func(m *EntityMetrics) *float64 { return m.Price.High3Y },
	"price.3y_low":            func(m *EntityMetrics) *float64 { return m.Price.Low3Y },
	"price.percentile_3y":     func(m *EntityMetrics) *float64 { return m.Price.Percentile3Y },
	"price.5y_high":           func(m *EntityMetrics) *float64 { return m.Price.High5Y },
	"price.5y_low":            func(m *EntityMetrics) *float64 { return m.Price.Low5Y },
	"price.percentile_5y":     func(m *EntityMetrics) *float64 { return m.Price.Percentile5Y },
	"price.volatility":        func(m *EntityMetrics) *float64 { return m.Price.Volatility },
	"price.position_momentum": func(m *EntityMetrics) *float64 { return m.Price.PositionMomentum },

	"valuation.market_cap":       func(m *EntityMetrics) *float64 { return m.Valuation.MarketCap },
	"valuation.enterprise_value": func(m *EntityMetrics) *float64 { return m.Valuation.EnterpriseValue },
	"valuation.pe_ltm":           func(m *EntityMetrics) *float64 { return m.Valuation.PELTM },
	"valuation.pb":               func(m *EntityMetrics) *float64 { return m.Valuation.PB },
	"valuation.ev_fcf":           func(m *EntityMetrics) *float64 { return m.Valuation.EVFCF },
	"valuation.peg":              func(m *EntityMetrics) *float64 { return m.Valuation.PEG },

	"growth.revenue_yoy":          func(m *EntityMetrics) *float64 { return m.Growth.RevenueYoY },
	"growth.revenue_cagr_3y":      func(m *EntityMetrics) *float64 { return m.Growth.RevenueCAGR3Y },
	"growth.revenue_cagr_4y":      func(m *EntityMetrics) *float64 { return m.Growth.RevenueCAGR4Y },
	"growth.gross_profit_yoy":     func(m *EntityMetrics) *float64 { return m.Growth.GrossProfitYoY },
	"growth.gross_profit_cagr_3y": func(m *EntityMetrics) *float64 { return m.Growth.GrossProfitCAGR3Y },
	"growth.gross_profit_cagr_4y": func(m *EntityMetrics) *float64 { return m.Growth.GrossProfitCAGR4Y },
	"growth.net_income_yoy":       func(m *EntityMetrics) *float64 { return m.Growth.NetIncomeYoY },
	"growth.net_income_cagr_3y":   func(m *EntityMetrics) *float64 { return m.Growth.NetIncomeCAGR3Y },
	"growth.net_income_cagr_4y":   func(m *EntityMetrics) *float64 { return m.Growth.NetIncomeCAGR4Y },
	"growth.ocf_yoy":              func(m *EntityMetrics) *float64 { return m.Growth.OCFYoY },
	"growth.ocf_cagr_3y":          func(m *EntityMetrics) *float64 { return m.Growth.OCFCAGR3Y },
	"growth.ocf_cagr_4y":          func(m *EntityMetrics) *float64 { return m.Growth.OCFCAGR4Y },
	"growth.fcf_yoy":              func(m *EntityMetrics) *float64 { return m.Growth.FCFYoY },
	"growth.fcf_cagr_3y":          func(m *EntityMetrics) *float64 { return m.Growth.FCFCAGR3Y },
	"growth.fcf_cagr_4y":          func(m *EntityMetrics) *float64 { return m.Growth.FCFCAGR4Y },

	"margins.gross_ltm": func(m *EntityMetrics) *float64 { return m.Margins.GrossLTM },
	"margins.net_ltm":   func(m *EntityMetrics) *float64 { return m.Margins.NetLTM },
	"margins.ocf_ltm":   func(m *EntityMetrics) *float64 { return m.Margins.OCFLTM },
	"margins.fcf_ltm":   func(m *EntityMetrics) *float64 { return m.Margins.FCFLTM },

	"quality.net_income_consistency": func(m *EntityMetrics) *float64 { return m.Quality.NetIncomeConsistency },
	"quality.fcf_consistency":        func(m *EntityMetrics) *float64 { return m.Quality.FCFConsistency },
}

// DefaultAggregateMetrics are the metrics summarized per sector and industry
var DefaultAggregateMetrics = []string{
	"valuation.pe_ltm",
	"valuation.pb",
	"valuation.ev_fcf",
	"valuation.peg",
	"growth.revenue_cagr_3y",
	"growth.net_income_cagr_3y",
	"margins.gross_ltm",
	"margins.net_ltm",
	"margins.fcf_ltm",
	"price.volatility",
	"price.percentile_52w",
}

// Metric returns the named numeric metric; ok is false for unknown names
func (m *EntityMetrics) Metric(name string) (value *float64, ok bool) {
	accessor, ok := metricAccessors[name]
	if !ok {
		return nil, false
	}

	return accessor(m), true
}

// IsMetric reports whether name is a known numeric metric
func IsMetric(name string) bool {
	_, ok := metricAccessors[name]
	return ok
}

// MetricNames returns every numeric metric name in sorted order
func MetricNames() []string {
	names := make([]string, 0, len(metricAccessors))
	for name := range metricAccessors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
