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
package metrics

import (
	"math"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/period"
)

// consistency scores how evenly field develops across the annual history;
// lower is more consistent. Nil below the configured minimum history.
func (calc *Calculator) consistency(annual []*data.FinancialPeriod, field data.FlowField) *float64 {
	minHistory := calc.config.MinConsistencyHistory
	if minHistory < MinConsistencyHistory {
		minHistory = MinConsistencyHistory
	}

	values := make([]float64, 0, len(annual))
	for _, fp := range annual {
		if !fp.Key.IsAnnual() {
			continue
		}

		if v, ok := data.Value(fp.Field(field)); ok {
			values = append(values, v)
		}
	}

	if len(values) < minHistory {
		return nil
	}

	switch calc.config.ConsistencyMethod {
	case CoefficientOfVariation:
		mean := data.Mean(values)
		if mean == 0 {
			return nil
		}

		return data.Float(data.Stddev(values) / math.Abs(mean) * 100)
	default:
		growth := annualGrowth(annual, field)
		if len(growth) < 2 {
			return nil
		}

		return data.Float(data.Stddev(growth))
	}
}

// annualGrowth returns the year-over-year growth rates of field in percent
// for every fiscal year whose prior year is also present
func annualGrowth(annual []*data.FinancialPeriod, field data.FlowField) []float64 {
	growth := make([]float64, 0, len(annual))
	for _, fp := range annual {
		if !fp.Key.IsAnnual() {
			continue
		}

		prior := period.FindFrom(annual, fp.Key, 1, period.Annual)
		if prior == nil {
			continue
		}

		if rate, ok := data.Value(data.Percent(period.GrowthRate(fp.Field(field), prior.Field(field)))); ok {
			growth = append(growth, rate)
		}
	}

	return growth
}
