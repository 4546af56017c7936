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
	"math"

	"github.com/penny-vault/pvmetrics/data"
)

// DefaultTrendThreshold is the margin change, in percentage points, that must
// be exceeded before a trend is reported as expanding or contracting
const DefaultTrendThreshold = 1.0

// GrowthRate returns (current - past) / |past| as a fraction.
//
// The denominator is the absolute value of the base so that the sign of the
// result always follows the direction of the change. A move from -50 to 100
// is an improvement of 150 on a base of 50 and yields +3.0; dividing by the
// raw base would report -3.0. Nil is returned when either value is missing or
// past is zero.
func GrowthRate(current, past *float64) *float64 {
	c, ok := data.Value(current)
	if !ok {
		return nil
	}

	p, ok := data.Value(past)
	if !ok || p == 0 {
		return nil
	}

	return data.Float((c - p) / math.Abs(p))
}

// CAGR returns the compound annual growth rate from past to current over
// years as a fraction.
//
// Growth through zero or across a sign change is undefined, so nil is
// returned when either value is zero or the two differ in sign. For two
// negative values the result is sign(current) * (|current/past|^(1/years) - 1),
// which keeps the magnitude comparison of the positive case.
func CAGR(current, past *float64, years float64) *float64 {
	if years <= 0 {
		return nil
	}

	c, ok := data.Value(current)
	if !ok || c == 0 {
		return nil
	}

	p, ok := data.Value(past)
	if !ok || p == 0 {
		return nil
	}

	if math.Signbit(c) != math.Signbit(p) {
		return nil
	}

	sign := 1.0
	if c < 0 {
		sign = -1.0
	}

	return data.Float(sign * (math.Pow(math.Abs(c/p), 1/years) - 1))
}

// ClassifyTrend compares two margins expressed in percent
func ClassifyTrend(oldest, newest *float64, threshold float64) data.Trend {
	o, ok := data.Value(oldest)
	if !ok {
		return data.Unknown
	}

	n, ok := data.Value(newest)
	if !ok {
		return data.Unknown
	}

	diff := n - o
	switch {
	case diff > threshold:
		return data.Expanding
	case diff < -threshold:
		return data.Contracting
	default:
		return data.Stable
	}
}
