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

// Package metrics turns one entity's financial series and price history into
// its price, valuation, growth, margin and quality metrics. Missing or
// degenerate inputs never fail a calculation; the affected metric is nil.
package metrics

import (
	"fmt"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/period"
	"github.com/penny-vault/pvmetrics/price"
	"github.com/rs/zerolog/log"
)

type Calculator struct {
	config Config
	groups []metricGroup
}

// metricGroup is one independently computed section of the metrics record.
// Groups run in order; later groups may read what earlier ones stored.
type metricGroup struct {
	name string
	run  func(calc *Calculator, in *input, result *data.EntityMetrics)
}

// input is the entity together with its interim series as the calculator
// reads it
type input struct {
	entity      *data.Entity
	interim     []*data.FinancialPeriod
	granularity period.Granularity
}

var defaultGroups = []metricGroup{
	{name: "price", run: func(calc *Calculator, in *input, result *data.EntityMetrics) {
		result.Price = calc.priceMetrics(in.entity)
	}},
	{name: "growth", run: func(calc *Calculator, in *input, result *data.EntityMetrics) {
		result.Growth = calc.growthMetrics(in.entity)
	}},
	{name: "valuation", run: func(calc *Calculator, in *input, result *data.EntityMetrics) {
		result.Valuation = calc.valuationMetrics(in, result.Price.Current, result.Growth.NetIncomeCAGR3Y)
	}},
	{name: "margins", run: func(calc *Calculator, in *input, result *data.EntityMetrics) {
		result.Margins = calc.marginMetrics(in)
	}},
	{name: "quality", run: func(calc *Calculator, in *input, result *data.EntityMetrics) {
		result.Quality = calc.qualityMetrics(in.entity)
	}},
}

func New(config Config) *Calculator {
	return &Calculator{
		config: config,
		groups: defaultGroups,
	}
}

// Calculate computes the metrics record for entity. The only error is
// data.ErrMissingSymbol.
func (calc *Calculator) Calculate(entity *data.Entity) (*data.EntityMetrics, error) {
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	in := calc.prepare(entity)

	result := &data.EntityMetrics{
		Symbol:      entity.Symbol,
		CompanyName: entity.CompanyName,
		Sector:      entity.Sector,
		Industry:    entity.Industry,
		Exchange:    entity.Exchange,
		Margins: data.MarginMetrics{
			GrossTrend: data.Unknown,
			NetTrend:   data.Unknown,
			OCFTrend:   data.Unknown,
			FCFTrend:   data.Unknown,
		},
	}

	for _, group := range calc.groups {
		guard(entity, group.name, func() {
			group.run(calc, in, result)
		})
	}

	return result, nil
}

// prepare resolves the interim granularity of the entity's exchange. Halves
// labelled by the quarter they end in are relabelled 1 and 2; any record that
// still does not fit the granularity is ignored by the period lookups.
func (calc *Calculator) prepare(entity *data.Entity) *input {
	in := &input{
		entity:      entity,
		interim:     entity.Quarterly,
		granularity: period.InterimGranularity(calc.config.Cadence(entity.Exchange)),
	}

	if in.granularity != period.SemiAnnual {
		return in
	}

	in.interim = period.NormalizeHalves(entity.Quarterly)

	perYear := in.granularity.PerYear()
	for _, fp := range in.interim {
		if fp != nil && !fp.Key.InRange(perYear) {
			log.Warn().Str("Symbol", entity.Symbol).Str("Exchange", entity.Exchange).
				Int("FiscalYear", fp.Key.FiscalYear).Int("FiscalPeriod", fp.Key.FiscalPeriod).
				Msg("interim record does not fit a semiannual fiscal year; ignoring")
		}
	}

	return in
}

// guard runs fn and contains any panic inside it so the remaining metric
// groups are still computed. The group keeps its zero value on panic.
func guard(entity *data.Entity, group string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("Symbol", entity.Symbol).Str("Group", group).Str("Panic", fmt.Sprint(r)).Msg("metric group failed")
		}
	}()

	fn()
}

func (calc *Calculator) priceMetrics(entity *data.Entity) data.PriceMetrics {
	series := price.Sorted(entity.Prices)

	current := price.Latest(series)
	if v, ok := data.Value(entity.CurrentPrice); ok {
		current = data.Float(v)
	}

	high52, low52 := price.HighLow(series, price.FiftyTwoWeeks)
	high3, low3 := price.HighLow(series, price.ThreeYears)
	high5, low5 := price.HighLow(series, price.FiveYears)

	return data.PriceMetrics{
		Current:          current,
		High52W:          high52,
		Low52W:           low52,
		Ratio52W:         price.RangeRatio(high52, low52),
		Percentile52W:    price.PercentileRank(current, high52, low52),
		High3Y:           high3,
		Low3Y:            low3,
		Percentile3Y:     price.PercentileRank(current, high3, low3),
		High5Y:           high5,
		Low5Y:            low5,
		Percentile5Y:     price.PercentileRank(current, high5, low5),
		Volatility:       price.Volatility(series, calc.config.VolatilityWindow, calc.config.VolatilityInterval),
		PositionMomentum: price.PositionMomentum(series, current, calc.config.MomentumWindow, calc.config.MomentumLookback),
	}
}

func (calc *Calculator) growthMetrics(entity *data.Entity) data.GrowthMetrics {
	annual := period.Sorted(entity.Annual)
	latest := period.FindPeriod(annual, 0, period.Annual)

	rates := func(field data.FlowField) (yoy, cagr3, cagr4 *float64) {
		if latest == nil {
			return nil, nil, nil
		}

		current := latest.Field(field)
		yoy = data.Percent(period.GrowthRate(current, fieldOf(period.FindPeriod(annual, 1, period.Annual), field)))
		cagr3 = data.Percent(period.CAGR(current, fieldOf(period.FindPeriod(annual, 3, period.Annual), field), 3))
		cagr4 = data.Percent(period.CAGR(current, fieldOf(period.FindPeriod(annual, 4, period.Annual), field), 4))

		return yoy, cagr3, cagr4
	}

	var growth data.GrowthMetrics
	growth.RevenueYoY, growth.RevenueCAGR3Y, growth.RevenueCAGR4Y = rates(data.Revenue)
	growth.GrossProfitYoY, growth.GrossProfitCAGR3Y, growth.GrossProfitCAGR4Y = rates(data.GrossProfit)
	growth.NetIncomeYoY, growth.NetIncomeCAGR3Y, growth.NetIncomeCAGR4Y = rates(data.NetIncome)
	growth.OCFYoY, growth.OCFCAGR3Y, growth.OCFCAGR4Y = rates(data.OperatingCashFlow)
	growth.FCFYoY, growth.FCFCAGR3Y, growth.FCFCAGR4Y = rates(data.FreeCashFlow)

	return growth
}

func (calc *Calculator) valuationMetrics(in *input, current, netIncomeCAGR3Y *float64) data.ValuationMetrics {
	entity := in.entity
	shares := positive(entity.SharesOutstanding)
	marketCap := positive(entity.MarketCap)

	// either of shares and market cap can be recovered from the other
	if shares == nil {
		shares = positive(data.Div(marketCap, current))
	}

	if marketCap == nil {
		if p, ok := data.Value(current); ok {
			if s, ok := data.Value(shares); ok {
				marketCap = positive(data.Float(p * s))
			}
		}
	}

	valuation := data.ValuationMetrics{
		MarketCap:       marketCap,
		EnterpriseValue: enterpriseValue(marketCap, entity.TotalDebt, entity.TotalCash),
	}

	// P/E of a loss-making company is not a valuation multiple
	if ltmNetIncome := positive(period.LTM(in.interim, data.NetIncome, in.granularity, 0)); ltmNetIncome != nil {
		valuation.PELTM = data.Div(current, data.Div(ltmNetIncome, shares))
	}

	if book := positive(entity.BookValue); book != nil {
		valuation.PB = data.Div(marketCap, book)
	}

	if ltmFCF := positive(period.LTM(in.interim, data.FreeCashFlow, in.granularity, 0)); ltmFCF != nil {
		valuation.EVFCF = data.Div(valuation.EnterpriseValue, ltmFCF)
	}

	if valuation.PELTM != nil {
		valuation.PEG = data.Div(valuation.PELTM, positive(netIncomeCAGR3Y))
	}

	return valuation
}

// enterpriseValue is market cap plus debt less cash. Missing debt or cash is
// taken as zero; a missing market cap leaves the value undefined.
func enterpriseValue(marketCap, debt, cash *float64) *float64 {
	mc, ok := data.Value(marketCap)
	if !ok {
		return nil
	}

	d, _ := data.Value(debt)
	c, _ := data.Value(cash)

	return data.Float(mc + d - c)
}

func (calc *Calculator) marginMetrics(in *input) data.MarginMetrics {
	margin := func(field data.FlowField, yearsBack int) *float64 {
		revenue := positive(period.LTM(in.interim, data.Revenue, in.granularity, yearsBack))
		if revenue == nil {
			return nil
		}

		return data.Percent(data.Div(period.LTM(in.interim, field, in.granularity, yearsBack), revenue))
	}

	trend := func(field data.FlowField) (*float64, data.Trend) {
		latest := margin(field, 0)
		return latest, period.ClassifyTrend(margin(field, 1), latest, calc.config.TrendThreshold)
	}

	var margins data.MarginMetrics
	margins.GrossLTM, margins.GrossTrend = trend(data.GrossProfit)
	margins.NetLTM, margins.NetTrend = trend(data.NetIncome)
	margins.OCFLTM, margins.OCFTrend = trend(data.OperatingCashFlow)
	margins.FCFLTM, margins.FCFTrend = trend(data.FreeCashFlow)

	return margins
}

func (calc *Calculator) qualityMetrics(entity *data.Entity) data.QualityMetrics {
	annual := period.Sorted(entity.Annual)

	return data.QualityMetrics{
		NetIncomeConsistency: calc.consistency(annual, data.NetIncome),
		FCFConsistency:       calc.consistency(annual, data.FreeCashFlow),
	}
}

func fieldOf(fp *data.FinancialPeriod, field data.FlowField) *float64 {
	if fp == nil {
		return nil
	}

	return fp.Field(field)
}

// positive returns p when it holds a finite value greater than zero
func positive(p *float64) *float64 {
	v, ok := data.Value(p)
	if !ok || v <= 0 {
		return nil
	}

	return data.Float(v)
}
