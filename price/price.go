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

// Package price measures where a price sits within its trailing ranges and
// how volatile it has been. Windows are measured in calendar time back from
// the latest sample, not in sample counts, because trading-day gaps differ
// between exchanges and holidays.
package price

import (
	"sort"
	"time"

	"github.com/penny-vault/pvmetrics/data"
)

// Window is a calendar span measured back from a reference date
type Window struct {
	Years  int
	Months int
	Days   int
}

var (
	FiftyTwoWeeks = Window{Days: 364}
	ThreeYears    = Window{Years: 3}
	FiveYears     = Window{Years: 5}
	ThreeMonths   = Window{Months: 3}
)

// Start returns the first date included in the window ending at end
func (w Window) Start(end time.Time) time.Time {
	return end.AddDate(-w.Years, -w.Months, -w.Days)
}

// Sorted returns a copy of the series ordered by date with nil samples removed
func Sorted(series []*data.PriceSample) []*data.PriceSample {
	sorted := make([]*data.PriceSample, 0, len(series))
	for _, sample := range series {
		if sample != nil {
			sorted = append(sorted, sample)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return sorted
}

// LatestDate returns the date of the most recent sample
func LatestDate(series []*data.PriceSample) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, sample := range series {
		if sample == nil {
			continue
		}

		if !found || sample.Date.After(latest) {
			latest = sample.Date
			found = true
		}
	}

	return latest, found
}

// Latest returns the close of the most recent sample
func Latest(series []*data.PriceSample) *float64 {
	latest, ok := LatestDate(series)
	if !ok {
		return nil
	}

	return At(series, latest)
}

// At returns the latest close on or before date
func At(series []*data.PriceSample, date time.Time) *float64 {
	var best *data.PriceSample
	for _, sample := range series {
		if sample == nil || sample.Date.After(date) {
			continue
		}

		if best == nil || sample.Date.After(best.Date) {
			best = sample
		}
	}

	if best == nil {
		return nil
	}

	return data.Float(best.Close)
}

// InWindow returns the samples between the window start and end inclusive,
// ordered by date
func InWindow(series []*data.PriceSample, window Window, end time.Time) []*data.PriceSample {
	start := window.Start(end)

	samples := make([]*data.PriceSample, 0)
	for _, sample := range Sorted(series) {
		if sample.Date.Before(start) || sample.Date.After(end) {
			continue
		}

		samples = append(samples, sample)
	}

	return samples
}

// HighLow returns the highest and lowest close over the window ending at the
// latest sample. Both are nil if no sample falls inside the window.
func HighLow(series []*data.PriceSample, window Window) (high, low *float64) {
	end, ok := LatestDate(series)
	if !ok {
		return nil, nil
	}

	return HighLowAt(series, window, end)
}

// HighLowAt is HighLow for a window ending at an arbitrary date
func HighLowAt(series []*data.PriceSample, window Window, end time.Time) (high, low *float64) {
	samples := InWindow(series, window, end)

	var (
		hi, lo float64
		found  bool
	)

	for _, sample := range samples {
		if _, ok := data.Value(&sample.Close); !ok {
			continue
		}

		if !found {
			hi, lo = sample.Close, sample.Close
			found = true
			continue
		}

		if sample.Close > hi {
			hi = sample.Close
		}

		if sample.Close < lo {
			lo = sample.Close
		}
	}

	if !found {
		return nil, nil
	}

	return data.Float(hi), data.Float(lo)
}

// PercentileRank places current within [low, high] on a 0-100 scale. A flat
// window (high == low) carries no information about position and yields nil
// rather than 0 or 100.
func PercentileRank(current, high, low *float64) *float64 {
	c, ok := data.Value(current)
	if !ok {
		return nil
	}

	h, ok := data.Value(high)
	if !ok {
		return nil
	}

	l, ok := data.Value(low)
	if !ok {
		return nil
	}

	if h <= l {
		return nil
	}

	return data.Float((c - l) / (h - l) * 100)
}

// RangeRatio returns high / low, nil when low is not positive
func RangeRatio(high, low *float64) *float64 {
	l, ok := data.Value(low)
	if !ok || l <= 0 {
		return nil
	}

	return data.Div(high, low)
}

// PositionMomentum is the change in percentile rank over lookback. Both
// ranks use the same trailing window, each measured as of its own date, so a
// positive value means the price has climbed within its range.
func PositionMomentum(series []*data.PriceSample, current *float64, window, lookback Window) *float64 {
	end, ok := LatestDate(series)
	if !ok {
		return nil
	}

	high, low := HighLowAt(series, window, end)
	now := PercentileRank(current, high, low)
	if now == nil {
		return nil
	}

	then := lookback.Start(end)
	pastHigh, pastLow := HighLowAt(series, window, then)
	past := PercentileRank(At(series, then), pastHigh, pastLow)
	if past == nil {
		return nil
	}

	return data.Float(*now - *past)
}
