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
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Cadence is how often an exchange requires interim reports
type Cadence string

const (
	QuarterlyCadence  Cadence = "quarterly"
	SemiAnnualCadence Cadence = "semiannual"
)

// PeriodsPerYear returns the number of interim periods that make up one
// fiscal year for the cadence
func (c Cadence) PeriodsPerYear() int {
	if c == SemiAnnualCadence {
		return 2
	}

	return 4
}

// PeriodKey identifies a reporting period. FiscalPeriod is 0 for annual
// records, 1-4 for quarters and 1-2 for halves.
type PeriodKey struct {
	FiscalYear   int `json:"fiscal_year"`
	FiscalPeriod int `json:"fiscal_period,omitempty"`
}

// IsAnnual reports whether the key refers to a full fiscal year
func (key PeriodKey) IsAnnual() bool {
	return key.FiscalPeriod == 0
}

// InRange reports whether the key is a valid label for a series with
// perYear periods per fiscal year: period 0 when perYear is 1, 1..perYear
// otherwise
func (key PeriodKey) InRange(perYear int) bool {
	if perYear <= 1 {
		return key.IsAnnual()
	}

	return key.FiscalPeriod >= 1 && key.FiscalPeriod <= perYear
}

// Ordinal returns a monotonically increasing index for the key where
// consecutive periods differ by exactly one. perYear is 1 for annual keys.
// Ordinals are only unique among keys that are InRange(perYear).
func (key PeriodKey) Ordinal(perYear int) int {
	if key.IsAnnual() || perYear <= 1 {
		return key.FiscalYear
	}

	return key.FiscalYear*perYear + key.FiscalPeriod - 1
}

func (key PeriodKey) String() string {
	if key.IsAnnual() {
		return fmt.Sprintf("FY%d", key.FiscalYear)
	}

	return fmt.Sprintf("FY%d-P%d", key.FiscalYear, key.FiscalPeriod)
}

// FinancialPeriod is one reporting period for one entity. All numeric fields
// are optional.
type FinancialPeriod struct {
	Key       PeriodKey `json:"period_key"`
	PeriodEnd time.Time `json:"period_end_date"`

	Revenue            *float64 `json:"revenue"`
	GrossProfit        *float64 `json:"gross_profit"`
	NetIncome          *float64 `json:"net_income"`
	OperatingCashFlow  *float64 `json:"operating_cash_flow"`
	CapitalExpenditure *float64 `json:"capital_expenditure"`
}

// FreeCashFlow is derived as operating cash flow less capital expenditure and
// is nil unless both are present
func (fp *FinancialPeriod) FreeCashFlow() *float64 {
	ocf, ok := Value(fp.OperatingCashFlow)
	if !ok {
		return nil
	}

	capex, ok := Value(fp.CapitalExpenditure)
	if !ok {
		return nil
	}

	return Float(ocf - capex)
}

// FlowField selects one of the flow metrics of a FinancialPeriod
type FlowField string

const (
	Revenue           FlowField = "revenue"
	GrossProfit       FlowField = "gross_profit"
	NetIncome         FlowField = "net_income"
	OperatingCashFlow FlowField = "operating_cash_flow"
	FreeCashFlow      FlowField = "free_cash_flow"
)

// Field returns the value of the requested flow metric
func (fp *FinancialPeriod) Field(field FlowField) *float64 {
	if fp == nil {
		return nil
	}

	switch field {
	case Revenue:
		return fp.Revenue
	case GrossProfit:
		return fp.GrossProfit
	case NetIncome:
		return fp.NetIncome
	case OperatingCashFlow:
		return fp.OperatingCashFlow
	case FreeCashFlow:
		return fp.FreeCashFlow()
	default:
		return nil
	}
}

func (fp *FinancialPeriod) MarshalZerologObject(e *zerolog.Event) {
	e.Str("PeriodKey", fp.Key.String())
	e.Time("PeriodEnd", fp.PeriodEnd)
}
