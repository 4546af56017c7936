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

// Package period locates records in sparse, irregularly dated financial
// series and derives growth rates and margin trends from them. Records are
// always matched by fiscal period key, never by position, so a missing
// quarter cannot shift a comparison onto the wrong period.
package period

import (
	"sort"

	"github.com/penny-vault/pvmetrics/data"
)

// Granularity describes the spacing of the records in a series
type Granularity int

const (
	Annual Granularity = iota
	Quarterly
	SemiAnnual
)

// PerYear returns the number of periods in a fiscal year
func (g Granularity) PerYear() int {
	switch g {
	case Quarterly:
		return 4
	case SemiAnnual:
		return 2
	default:
		return 1
	}
}

func (g Granularity) String() string {
	switch g {
	case Quarterly:
		return "quarterly"
	case SemiAnnual:
		return "semiannual"
	default:
		return "annual"
	}
}

// InterimGranularity maps an exchange reporting cadence onto the granularity
// of its interim series
func InterimGranularity(cadence data.Cadence) Granularity {
	if cadence == data.SemiAnnualCadence {
		return SemiAnnual
	}

	return Quarterly
}

// Sorted returns a copy of series ordered by period end date ascending. Nil
// records are dropped. Ties on the end date fall back to the period key.
func Sorted(series []*data.FinancialPeriod) []*data.FinancialPeriod {
	sorted := make([]*data.FinancialPeriod, 0, len(series))
	for _, fp := range series {
		if fp != nil {
			sorted = append(sorted, fp)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.PeriodEnd.Equal(b.PeriodEnd) {
			return a.PeriodEnd.Before(b.PeriodEnd)
		}

		if a.Key.FiscalYear != b.Key.FiscalYear {
			return a.Key.FiscalYear < b.Key.FiscalYear
		}

		return a.Key.FiscalPeriod < b.Key.FiscalPeriod
	})

	return sorted
}

// Latest returns the most recent record of the series or nil
func Latest(series []*data.FinancialPeriod) *data.FinancialPeriod {
	sorted := Sorted(series)
	if len(sorted) == 0 {
		return nil
	}

	return sorted[len(sorted)-1]
}

// FindPeriod returns the record periodsBack periods before the most recent
// record. For annual series that is periodsBack fiscal years, for interim
// series periodsBack quarters (or halves). Nil is returned when the series
// is too short or the target period is missing from it.
func FindPeriod(series []*data.FinancialPeriod, periodsBack int, granularity Granularity) *data.FinancialPeriod {
	if periodsBack < 0 {
		return nil
	}

	sorted := Keyed(series, granularity)
	if len(sorted) < periodsBack+1 {
		return nil
	}

	latest := sorted[len(sorted)-1]
	return FindFrom(sorted, latest.Key, periodsBack, granularity)
}

// Keyed returns the records of series whose key is a valid label for the
// granularity, ordered like Sorted. Records labelled outside the fiscal
// year's period range (a Q3 in a semiannual series) are dropped since their
// key cannot be placed in the sequence.
func Keyed(series []*data.FinancialPeriod, granularity Granularity) []*data.FinancialPeriod {
	perYear := granularity.PerYear()

	keyed := make([]*data.FinancialPeriod, 0, len(series))
	for _, fp := range Sorted(series) {
		if fp.Key.InRange(perYear) {
			keyed = append(keyed, fp)
		}
	}

	return keyed
}

// FindFrom returns the record periodsBack periods before key, or nil. Neither
// key nor any matched record may fall outside the granularity's period range.
func FindFrom(series []*data.FinancialPeriod, key data.PeriodKey, periodsBack int, granularity Granularity) *data.FinancialPeriod {
	perYear := granularity.PerYear()
	if !key.InRange(perYear) {
		return nil
	}

	target := key.Ordinal(perYear) - periodsBack

	for _, fp := range series {
		if fp == nil || !fp.Key.InRange(perYear) {
			continue
		}

		if fp.Key.Ordinal(perYear) == target {
			return fp
		}
	}

	return nil
}

// Window returns the n consecutive records ending periodsBack periods before
// the most recent record, oldest first. Nil is returned if any period of the
// window is missing from the series.
func Window(series []*data.FinancialPeriod, n, periodsBack int, granularity Granularity) []*data.FinancialPeriod {
	if n <= 0 {
		return nil
	}

	keyed := Keyed(series, granularity)
	if len(keyed) == 0 {
		return nil
	}

	latest := keyed[len(keyed)-1]

	window := make([]*data.FinancialPeriod, n)
	for idx := 0; idx < n; idx++ {
		fp := FindFrom(keyed, latest.Key, periodsBack+n-1-idx, granularity)
		if fp == nil {
			return nil
		}

		window[idx] = fp
	}

	return window
}

// NormalizeHalves relabels a semiannual series whose halves carry the
// calendar quarter they end in (Q2 and Q4) as halves 1 and 2. The series is
// only relabelled when every interim key is 2 or 4 and at least one is 4;
// anything else is returned as is. Records are copied, never modified.
func NormalizeHalves(series []*data.FinancialPeriod) []*data.FinancialPeriod {
	sawFourth := false
	for _, fp := range series {
		if fp == nil || fp.Key.IsAnnual() {
			continue
		}

		switch fp.Key.FiscalPeriod {
		case 2:
		case 4:
			sawFourth = true
		default:
			return series
		}
	}

	if !sawFourth {
		return series
	}

	normalized := make([]*data.FinancialPeriod, 0, len(series))
	for _, fp := range series {
		if fp == nil || fp.Key.IsAnnual() {
			normalized = append(normalized, fp)
			continue
		}

		relabelled := *fp
		relabelled.Key.FiscalPeriod = fp.Key.FiscalPeriod / 2
		normalized = append(normalized, &relabelled)
	}

	return normalized
}
