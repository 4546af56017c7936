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
package price

import (
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pvmetrics/data"
)

// ReturnInterval is the spacing of the returns a volatility is measured on
type ReturnInterval int

const (
	Weekly ReturnInterval = iota
	Daily
	Monthly
)

func (ri ReturnInterval) String() string {
	switch ri {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	default:
		return "weekly"
	}
}

// ParseReturnInterval maps a config value onto a ReturnInterval
func ParseReturnInterval(name string) (ReturnInterval, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "weekly":
		return Weekly, nil
	case "daily":
		return Daily, nil
	case "monthly":
		return Monthly, nil
	default:
		return Weekly, fmt.Errorf("unknown return interval %q", name)
	}
}

type bucket struct {
	year   int
	period int
}

func bucketOf(date time.Time, interval ReturnInterval) bucket {
	switch interval {
	case Daily:
		return bucket{year: date.Year(), period: date.YearDay()}
	case Monthly:
		return bucket{year: date.Year(), period: int(date.Month())}
	default:
		year, week := date.ISOWeek()
		return bucket{year: year, period: week}
	}
}

// Resample keeps the last close of every interval, ordered by date
func Resample(series []*data.PriceSample, interval ReturnInterval) []*data.PriceSample {
	sorted := Sorted(series)
	resampled := make([]*data.PriceSample, 0, len(sorted))

	var last bucket
	for _, sample := range sorted {
		if _, ok := data.Value(&sample.Close); !ok {
			continue
		}

		b := bucketOf(sample.Date, interval)
		if len(resampled) > 0 && b == last {
			resampled[len(resampled)-1] = sample
			continue
		}

		resampled = append(resampled, sample)
		last = b
	}

	return resampled
}

// Returns computes simple percent returns between consecutive samples.
// Pairs where the earlier close is not positive are skipped.
func Returns(samples []*data.PriceSample) []float64 {
	if len(samples) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(samples)-1)
	for idx := 1; idx < len(samples); idx++ {
		prev := samples[idx-1].Close
		if prev <= 0 {
			continue
		}

		returns = append(returns, (samples[idx].Close/prev-1)*100)
	}

	return returns
}

// Volatility is the population standard deviation of percent returns over
// the window ending at the latest sample. It is not annualized. Nil is
// returned when fewer than two returns are available.
func Volatility(series []*data.PriceSample, window Window, interval ReturnInterval) *float64 {
	end, ok := LatestDate(series)
	if !ok {
		return nil
	}

	samples := Resample(InWindow(series, window, end), interval)
	returns := Returns(samples)
	if len(returns) < 2 {
		return nil
	}

	return data.Float(data.Stddev(returns))
}
