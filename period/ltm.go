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
package period

import (
	"github.com/penny-vault/pvmetrics/data"
)

// Sum adds field across every record; nil if any record lacks the value
func Sum(records []*data.FinancialPeriod, field data.FlowField) *float64 {
	if len(records) == 0 {
		return nil
	}

	total := 0.0
	for _, fp := range records {
		v, ok := data.Value(fp.Field(field))
		if !ok {
			return nil
		}

		total += v
	}

	return data.Float(total)
}

// LTM returns the trailing twelve month total of field: the sum over the
// latest full fiscal year of consecutive interim records ending yearsBack
// years before the most recent record. A partial year is never summed, so
// LTM is nil when any interim period is missing or lacks the value.
func LTM(series []*data.FinancialPeriod, field data.FlowField, granularity Granularity, yearsBack int) *float64 {
	if granularity == Annual {
		return nil
	}

	perYear := granularity.PerYear()
	window := Window(series, perYear, yearsBack*perYear, granularity)
	if window == nil {
		return nil
	}

	return Sum(window, field)
}
