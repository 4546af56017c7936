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
package export

import (
	"github.com/penny-vault/pvmetrics/data"
)

// EntityRow is the flat form of an entity record used by the tabular formats.
// Column names are the metric names with the group separator replaced by an
// underscore.
type EntityRow struct {
	Symbol                      string   `csv:"symbol" parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CompanyName                 string   `csv:"company_name" parquet:"name=company_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Sector                      string   `csv:"sector" parquet:"name=sector, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Industry                    string   `csv:"industry" parquet:"name=industry, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Exchange                    string   `csv:"exchange" parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PriceCurrent                *float64 `csv:"price_current" parquet:"name=price_current, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price52WHigh                *float64 `csv:"price_52w_high" parquet:"name=price_52w_high, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price52WLow                 *float64 `csv:"price_52w_low" parquet:"name=price_52w_low, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price52WRatio               *float64 `csv:"price_52w_ratio" parquet:"name=price_52w_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`
	PricePercentile52W          *float64 `csv:"price_percentile_52w" parquet:"name=price_percentile_52w, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price3YHigh                 *float64 `csv:"price_3y_high" parquet:"name=price_3y_high, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price3YLow                  *float64 `csv:"price_3y_low" parquet:"name=price_3y_low, type=DOUBLE, repetitiontype=OPTIONAL"`
	PricePercentile3Y           *float64 `csv:"price_percentile_3y" parquet:"name=price_percentile_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price5YHigh                 *float64 `csv:"price_5y_high" parquet:"name=price_5y_high, type=DOUBLE, repetitiontype=OPTIONAL"`
	Price5YLow                  *float64 `csv:"price_5y_low" parquet:"name=price_5y_low, type=DOUBLE, repetitiontype=OPTIONAL"`
	PricePercentile5Y           *float64 `csv:"price_percentile_5y" parquet:"name=price_percentile_5y, type=DOUBLE, repetitiontype=OPTIONAL"`
	PriceVolatility             *float64 `csv:"price_volatility" parquet:"name=price_volatility, type=DOUBLE, repetitiontype=OPTIONAL"`
	PricePositionMomentum       *float64 `csv:"price_position_momentum" parquet:"name=price_position_momentum, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationMarketCap          *float64 `csv:"valuation_market_cap" parquet:"name=valuation_market_cap, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationEnterpriseValue    *float64 `csv:"valuation_enterprise_value" parquet:"name=valuation_enterprise_value, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationPELTM              *float64 `csv:"valuation_pe_ltm" parquet:"name=valuation_pe_ltm, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationPB                 *float64 `csv:"valuation_pb" parquet:"name=valuation_pb, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationEVFCF              *float64 `csv:"valuation_ev_fcf" parquet:"name=valuation_ev_fcf, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValuationPEG                *float64 `csv:"valuation_peg" parquet:"name=valuation_peg, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthRevenueYoY            *float64 `csv:"growth_revenue_yoy" parquet:"name=growth_revenue_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthRevenueCAGR3Y         *float64 `csv:"growth_revenue_cagr_3y" parquet:"name=growth_revenue_cagr_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthRevenueCAGR4Y         *float64 `csv:"growth_revenue_cagr_4y" parquet:"name=growth_revenue_cagr_4y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthGrossProfitYoY        *float64 `csv:"growth_gross_profit_yoy" parquet:"name=growth_gross_profit_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthGrossProfitCAGR3Y     *float64 `csv:"growth_gross_profit_cagr_3y" parquet:"name=growth_gross_profit_cagr_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthGrossProfitCAGR4Y     *float64 `csv:"growth_gross_profit_cagr_4y" parquet:"name=growth_gross_profit_cagr_4y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthNetIncomeYoY          *float64 `csv:"growth_net_income_yoy" parquet:"name=growth_net_income_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthNetIncomeCAGR3Y       *float64 `csv:"growth_net_income_cagr_3y" parquet:"name=growth_net_income_cagr_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthNetIncomeCAGR4Y       *float64 `csv:"growth_net_income_cagr_4y" parquet:"name=growth_net_income_cagr_4y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthOCFYoY                *float64 `csv:"growth_ocf_yoy" parquet:"name=growth_ocf_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthOCFCAGR3Y             *float64 `csv:"growth_ocf_cagr_3y" parquet:"name=growth_ocf_cagr_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthOCFCAGR4Y             *float64 `csv:"growth_ocf_cagr_4y" parquet:"name=growth_ocf_cagr_4y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthFCFYoY                *float64 `csv:"growth_fcf_yoy" parquet:"name=growth_fcf_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthFCFCAGR3Y             *float64 `csv:"growth_fcf_cagr_3y" parquet:"name=growth_fcf_cagr_3y, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrowthFCFCAGR4Y             *float64 `csv:"growth_fcf_cagr_4y" parquet:"name=growth_fcf_cagr_4y, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginsGrossLTM             *float64 `csv:"margins_gross_ltm" parquet:"name=margins_gross_ltm, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginsNetLTM               *float64 `csv:"margins_net_ltm" parquet:"name=margins_net_ltm, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginsOCFLTM               *float64 `csv:"margins_ocf_ltm" parquet:"name=margins_ocf_ltm, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginsFCFLTM               *float64 `csv:"margins_fcf_ltm" parquet:"name=margins_fcf_ltm, type=DOUBLE, repetitiontype=OPTIONAL"`
	QualityNetIncomeConsistency *float64 `csv:"quality_net_income_consistency" parquet:"name=quality_net_income_consistency, type=DOUBLE, repetitiontype=OPTIONAL"`
	QualityFCFConsistency       *float64 `csv:"quality_fcf_consistency" parquet:"name=quality_fcf_consistency, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginsGrossTrend           string   `csv:"margins_gross_trend" parquet:"name=margins_gross_trend, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MarginsNetTrend             string   `csv:"margins_net_trend" parquet:"name=margins_net_trend, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MarginsOCFTrend             string   `csv:"margins_ocf_trend" parquet:"name=margins_ocf_trend, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MarginsFCFTrend             string   `csv:"margins_fcf_trend" parquet:"name=margins_fcf_trend, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func NewEntityRow(record *data.EntityMetrics) *EntityRow {
	return &EntityRow{
		Symbol:                      record.Symbol,
		CompanyName:                 record.CompanyName,
		Sector:                      record.Sector,
		Industry:                    record.Industry,
		Exchange:                    record.Exchange,
		PriceCurrent:                record.Price.Current,
		Price52WHigh:                record.Price.High52W,
		Price52WLow:                 record.Price.Low52W,
		Price52WRatio:               record.Price.Ratio52W,
		PricePercentile52W:          record.Price.Percentile52W,
		Price3YHigh:                 record.Price.High3Y,
		Price3YLow:                  record.Price.Low3Y,
		PricePercentile3Y:           record.Price.Percentile3Y,
		Price5YHigh:                 record.Price.High5Y,
		Price5YLow:                  record.Price.Low5Y,
		PricePercentile5Y:           record.Price.Percentile5Y,
		PriceVolatility:             record.Price.Volatility,
		PricePositionMomentum:       record.Price.PositionMomentum,
		ValuationMarketCap:          record.Valuation.MarketCap,
		ValuationEnterpriseValue:    record.Valuation.EnterpriseValue,
		ValuationPELTM:              record.Valuation.PELTM,
		ValuationPB:                 record.Valuation.PB,
		ValuationEVFCF:              record.Valuation.EVFCF,
		ValuationPEG:                record.Valuation.PEG,
		GrowthRevenueYoY:            record.Growth.RevenueYoY,
		GrowthRevenueCAGR3Y:         record.Growth.RevenueCAGR3Y,
		GrowthRevenueCAGR4Y:         record.Growth.RevenueCAGR4Y,
		GrowthGrossProfitYoY:        record.Growth.GrossProfitYoY,
		GrowthGrossProfitCAGR3Y:     record.Growth.GrossProfitCAGR3Y,
		GrowthGrossProfitCAGR4Y:     record.Growth.GrossProfitCAGR4Y,
		GrowthNetIncomeYoY:          record.Growth.NetIncomeYoY,
		GrowthNetIncomeCAGR3Y:       record.Growth.NetIncomeCAGR3Y,
		GrowthNetIncomeCAGR4Y:       record.Growth.NetIncomeCAGR4Y,
		GrowthOCFYoY:                record.Growth.OCFYoY,
		GrowthOCFCAGR3Y:             record.Growth.OCFCAGR3Y,
		GrowthOCFCAGR4Y:             record.Growth.OCFCAGR4Y,
		GrowthFCFYoY:                record.Growth.FCFYoY,
		GrowthFCFCAGR3Y:             record.Growth.FCFCAGR3Y,
		GrowthFCFCAGR4Y:             record.Growth.FCFCAGR4Y,
		MarginsGrossLTM:             record.Margins.GrossLTM,
		MarginsNetLTM:               record.Margins.NetLTM,
		MarginsOCFLTM:               record.Margins.OCFLTM,
		MarginsFCFLTM:               record.Margins.FCFLTM,
		QualityNetIncomeConsistency: record.Quality.NetIncomeConsistency,
		QualityFCFConsistency:       record.Quality.FCFConsistency,
		MarginsGrossTrend:           string(record.Margins.GrossTrend),
		MarginsNetTrend:             string(record.Margins.NetTrend),
		MarginsOCFTrend:             string(record.Margins.OCFTrend),
		MarginsFCFTrend:             string(record.Margins.FCFTrend),
	}
}
