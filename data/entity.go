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
	"errors"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrMissingSymbol   = errors.New("entity has no symbol")
	ErrDuplicateSymbol = errors.New("symbol already present in universe")
)

// PriceSample is a single closing price observation
type PriceSample struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Entity is everything the calculator needs to know about one company. The
// financial series and price history may arrive in any order.
type Entity struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Exchange    string `json:"exchange"`

	Quarterly []*FinancialPeriod `json:"quarterly"`
	Annual    []*FinancialPeriod `json:"annual"`
	Prices    []*PriceSample     `json:"prices"`

	CurrentPrice      *float64 `json:"current_price"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	MarketCap         *float64 `json:"market_cap"`
	BookValue         *float64 `json:"book_value"`
	TotalDebt         *float64 `json:"total_debt"`
	TotalCash         *float64 `json:"total_cash"`

	// BalanceSheetDate is the as-of date for TotalDebt, TotalCash and BookValue
	BalanceSheetDate time.Time `json:"balance_sheet_date"`
}

// Validate checks the identity fields required to key the output
func (entity *Entity) Validate() error {
	if entity == nil || entity.Symbol == "" {
		return ErrMissingSymbol
	}

	return nil
}

func (entity *Entity) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Symbol", entity.Symbol)
	e.Str("Exchange", entity.Exchange)
	e.Int("NumQuarterly", len(entity.Quarterly))
	e.Int("NumAnnual", len(entity.Annual))
	e.Int("NumPrices", len(entity.Prices))
}
