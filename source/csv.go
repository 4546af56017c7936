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
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
)

const (
	EntitiesFile   = "entities.csv"
	FinancialsFile = "financials.csv"
	PricesFile     = "prices.csv"
)

type entityRow struct {
	Symbol              string    `csv:"symbol"`
	CompanyName         string    `csv:"company_name"`
	Sector              string    `csv:"sector"`
	Industry            string    `csv:"industry"`
	Exchange            string    `csv:"exchange"`
	CurrentPrice        NullFloat `csv:"current_price"`
	SharesOutstanding   NullFloat `csv:"shares_outstanding"`
	MarketCap           NullFloat `csv:"market_cap"`
	BookValue           NullFloat `csv:"book_value"`
	TotalDebt           NullFloat `csv:"total_debt"`
	TotalCash           NullFloat `csv:"total_cash"`
	BalanceSheetDateStr string    `csv:"balance_sheet_date"`
}

type periodRow struct {
	Symbol             string    `csv:"symbol"`
	FiscalYear         int       `csv:"fiscal_year"`
	FiscalPeriod       int       `csv:"fiscal_period"`
	PeriodEndStr       string    `csv:"period_end_date"`
	Revenue            NullFloat `csv:"revenue"`
	GrossProfit        NullFloat `csv:"gross_profit"`
	NetIncome          NullFloat `csv:"net_income"`
	OperatingCashFlow  NullFloat `csv:"operating_cash_flow"`
	CapitalExpenditure NullFloat `csv:"capital_expenditure"`
}

type priceRow struct {
	Symbol  string    `csv:"symbol"`
	DateStr string    `csv:"date"`
	Close   NullFloat `csv:"close"`
}

// CSVDir reads a universe from entities.csv, financials.csv and prices.csv
// in a directory. Only the entities file is required. Financial rows with a
// fiscal_period of 0 are annual records.
type CSVDir struct {
	Dir string
}

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{Dir: dir}
}

func (src *CSVDir) Load(ctx context.Context) ([]*data.Entity, error) {
	logger := zerolog.Ctx(ctx)

	entityRows := []*entityRow{}
	if err := readCSV(filepath.Join(src.Dir, EntitiesFile), &entityRows); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingEntities, filepath.Join(src.Dir, EntitiesFile))
		}

		return nil, err
	}

	universe := make([]*data.Entity, 0, len(entityRows))
	bySymbol := make(map[string]*data.Entity, len(entityRows))

	for _, row := range entityRows {
		entity := &data.Entity{
			Symbol:            strings.TrimSpace(row.Symbol),
			CompanyName:       row.CompanyName,
			Sector:            strings.TrimSpace(row.Sector),
			Industry:          strings.TrimSpace(row.Industry),
			Exchange:          strings.TrimSpace(row.Exchange),
			CurrentPrice:      row.CurrentPrice.Value,
			SharesOutstanding: row.SharesOutstanding.Value,
			MarketCap:         row.MarketCap.Value,
			BookValue:         row.BookValue.Value,
			TotalDebt:         row.TotalDebt.Value,
			TotalCash:         row.TotalCash.Value,
		}

		if row.BalanceSheetDateStr != "" {
			if dt, err := parseDate(row.BalanceSheetDateStr); err == nil {
				entity.BalanceSheetDate = dt
			} else {
				logger.Warn().Str("Symbol", entity.Symbol).Str("InputString", row.BalanceSheetDateStr).Msg("could not parse balance sheet date")
			}
		}

		// duplicates stay in the universe so the run records them as failures
		universe = append(universe, entity)
		if _, ok := bySymbol[entity.Symbol]; !ok {
			bySymbol[entity.Symbol] = entity
		}
	}

	periodRows := []*periodRow{}
	if err := readCSV(filepath.Join(src.Dir, FinancialsFile), &periodRows); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for _, row := range periodRows {
		entity, ok := bySymbol[strings.TrimSpace(row.Symbol)]
		if !ok {
			logger.Warn().Str("Symbol", row.Symbol).Msg("financial period for unknown symbol")
			continue
		}

		periodEnd, err := parseDate(row.PeriodEndStr)
		if err != nil {
			logger.Warn().Str("Symbol", row.Symbol).Str("InputString", row.PeriodEndStr).Msg("could not parse period end date")
			continue
		}

		fp := &data.FinancialPeriod{
			Key:                data.PeriodKey{FiscalYear: row.FiscalYear, FiscalPeriod: row.FiscalPeriod},
			PeriodEnd:          periodEnd,
			Revenue:            row.Revenue.Value,
			GrossProfit:        row.GrossProfit.Value,
			NetIncome:          row.NetIncome.Value,
			OperatingCashFlow:  row.OperatingCashFlow.Value,
			CapitalExpenditure: row.CapitalExpenditure.Value,
		}

		if fp.Key.IsAnnual() {
			entity.Annual = append(entity.Annual, fp)
		} else {
			entity.Quarterly = append(entity.Quarterly, fp)
		}
	}

	priceRows := []*priceRow{}
	if err := readCSV(filepath.Join(src.Dir, PricesFile), &priceRows); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for _, row := range priceRows {
		entity, ok := bySymbol[strings.TrimSpace(row.Symbol)]
		if !ok {
			continue
		}

		closePrice, ok := data.Value(row.Close.Value)
		if !ok {
			continue
		}

		dt, err := parseDate(row.DateStr)
		if err != nil {
			logger.Warn().Str("Symbol", row.Symbol).Str("InputString", row.DateStr).Msg("could not parse price date")
			continue
		}

		entity.Prices = append(entity.Prices, &data.PriceSample{Date: dt, Close: closePrice})
	}

	logger.Info().Str("Dir", src.Dir).Int("NumEntities", len(universe)).Int("NumPeriods", len(periodRows)).
		Int("NumPrices", len(priceRows)).Msg("loaded universe from csv")

	return universe, nil
}

func readCSV(fn string, out interface{}) error {
	fh, err := os.Open(fn)
	if err != nil {
		return err
	}

	defer fh.Close()

	if err := gocsv.UnmarshalFile(fh, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(fn), err)
	}

	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if dt, err := time.Parse("2006-01-02", s); err == nil {
		return dt, nil
	}

	return time.Parse(time.RFC3339, s)
}
