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
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
)

type entityRow struct {
	Symbol            string     `db:"symbol"`
	CompanyName       *string    `db:"company_name"`
	Sector            *string    `db:"sector"`
	Industry          *string    `db:"industry"`
	Exchange          *string    `db:"exchange"`
	CurrentPrice      *float64   `db:"current_price"`
	SharesOutstanding *float64   `db:"shares_outstanding"`
	MarketCap         *float64   `db:"market_cap"`
	BookValue         *float64   `db:"book_value"`
	TotalDebt         *float64   `db:"total_debt"`
	TotalCash         *float64   `db:"total_cash"`
	BalanceSheetDate  *time.Time `db:"balance_sheet_date"`
}

type periodRow struct {
	Symbol             string    `db:"symbol"`
	FiscalYear         int       `db:"fiscal_year"`
	FiscalPeriod       int       `db:"fiscal_period"`
	PeriodEnd          time.Time `db:"period_end_date"`
	Revenue            *float64  `db:"revenue"`
	GrossProfit        *float64  `db:"gross_profit"`
	NetIncome          *float64  `db:"net_income"`
	OperatingCashFlow  *float64  `db:"operating_cash_flow"`
	CapitalExpenditure *float64  `db:"capital_expenditure"`
}

type priceRow struct {
	Symbol    string    `db:"symbol"`
	EventDate time.Time `db:"event_date"`
	Close     float64   `db:"close"`
}

func str(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// Load reads the active universe from the entities, financial_periods and
// price_history tables. Prices older than the longest price window are not
// loaded.
func (myLibrary *Library) Load(ctx context.Context) ([]*data.Entity, error) {
	logger := zerolog.Ctx(ctx)

	var entityRows []*entityRow
	if err := pgxscan.Select(ctx, myLibrary.Pool, &entityRows,
		`SELECT symbol, company_name, sector, industry, exchange, current_price, shares_outstanding,
market_cap, book_value, total_debt, total_cash, balance_sheet_date
FROM entities WHERE active='t' ORDER BY symbol`); err != nil {
		return nil, err
	}

	universe := make([]*data.Entity, 0, len(entityRows))
	bySymbol := make(map[string]*data.Entity, len(entityRows))
	for _, row := range entityRows {
		entity := &data.Entity{
			Symbol:            row.Symbol,
			CompanyName:       str(row.CompanyName),
			Sector:            str(row.Sector),
			Industry:          str(row.Industry),
			Exchange:          str(row.Exchange),
			CurrentPrice:      row.CurrentPrice,
			SharesOutstanding: row.SharesOutstanding,
			MarketCap:         row.MarketCap,
			BookValue:         row.BookValue,
			TotalDebt:         row.TotalDebt,
			TotalCash:         row.TotalCash,
		}

		if row.BalanceSheetDate != nil {
			entity.BalanceSheetDate = *row.BalanceSheetDate
		}

		universe = append(universe, entity)
		bySymbol[entity.Symbol] = entity
	}

	var periodRows []*periodRow
	if err := pgxscan.Select(ctx, myLibrary.Pool, &periodRows,
		`SELECT p.symbol, p.fiscal_year, p.fiscal_period, p.period_end_date, p.revenue, p.gross_profit,
p.net_income, p.operating_cash_flow, p.capital_expenditure
FROM financial_periods p JOIN entities e ON e.symbol = p.symbol
WHERE e.active='t'`); err != nil {
		return nil, err
	}

	for _, row := range periodRows {
		entity, ok := bySymbol[row.Symbol]
		if !ok {
			continue
		}

		fp := &data.FinancialPeriod{
			Key:                data.PeriodKey{FiscalYear: row.FiscalYear, FiscalPeriod: row.FiscalPeriod},
			PeriodEnd:          row.PeriodEnd,
			Revenue:            row.Revenue,
			GrossProfit:        row.GrossProfit,
			NetIncome:          row.NetIncome,
			OperatingCashFlow:  row.OperatingCashFlow,
			CapitalExpenditure: row.CapitalExpenditure,
		}

		if fp.Key.IsAnnual() {
			entity.Annual = append(entity.Annual, fp)
		} else {
			entity.Quarterly = append(entity.Quarterly, fp)
		}
	}

	var priceRows []*priceRow
	if err := pgxscan.Select(ctx, myLibrary.Pool, &priceRows,
		`SELECT p.symbol, p.event_date, p.close
FROM price_history p JOIN entities e ON e.symbol = p.symbol
WHERE e.active='t' AND p.event_date >= (SELECT max(event_date) FROM price_history) - INTERVAL '5 years'`); err != nil {
		return nil, err
	}

	for _, row := range priceRows {
		if entity, ok := bySymbol[row.Symbol]; ok {
			entity.Prices = append(entity.Prices, &data.PriceSample{Date: row.EventDate, Close: row.Close})
		}
	}

	logger.Info().Int("NumEntities", len(universe)).Int("NumPeriods", len(periodRows)).
		Int("NumPrices", len(priceRows)).Msg("loaded universe from library")

	return universe, nil
}
