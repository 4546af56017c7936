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
	"math"
	"strings"
)

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// IsMissing reports whether a text cell is one of the placeholders source
// data uses for an absent value. Case and surrounding whitespace are ignored.
func IsMissing(text string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(text))]
}

// Float returns a pointer to v or nil if v is NaN or infinite. Every computed
// metric passes through Float so that a non-finite value can never reach a
// caller.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

// Value dereferences p; ok is false when p is nil or not finite
func Value(p *float64) (v float64, ok bool) {
	if p == nil {
		return 0, false
	}

	v = *p
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// Div returns num/den, nil when either side is missing or den is zero
func Div(num, den *float64) *float64 {
	n, ok := Value(num)
	if !ok {
		return nil
	}

	d, ok := Value(den)
	if !ok || d == 0 {
		return nil
	}

	return Float(n / d)
}

// Percent scales a fraction to percent, preserving nil
func Percent(p *float64) *float64 {
	v, ok := Value(p)
	if !ok {
		return nil
	}

	return Float(v * 100)
}
