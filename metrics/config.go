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
	"fmt"
	"strings"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/period"
	"github.com/penny-vault/pvmetrics/price"
	"github.com/spf13/viper"
)

// MinConsistencyHistory is the fewest annual values a consistency score is
// computed from
const MinConsistencyHistory = 3

// ConsistencyMethod selects the dispersion measure behind the quality scores
type ConsistencyMethod string

const (
	// GrowthStddev is the population standard deviation of year-over-year
	// growth rates, in percentage points
	GrowthStddev ConsistencyMethod = "stddev"

	// CoefficientOfVariation is stddev / |mean| of the raw annual values, in
	// percent
	CoefficientOfVariation ConsistencyMethod = "cv"
)

// ParseConsistencyMethod maps a config value onto a ConsistencyMethod
func ParseConsistencyMethod(name string) (ConsistencyMethod, error) {
	switch ConsistencyMethod(strings.ToLower(strings.TrimSpace(name))) {
	case "", GrowthStddev:
		return GrowthStddev, nil
	case CoefficientOfVariation:
		return CoefficientOfVariation, nil
	default:
		return GrowthStddev, fmt.Errorf("unknown consistency method %q", name)
	}
}

type Config struct {
	TrendThreshold        float64
	MinConsistencyHistory int
	ConsistencyMethod     ConsistencyMethod
	VolatilityInterval    price.ReturnInterval
	VolatilityWindow      price.Window
	MomentumWindow        price.Window
	MomentumLookback      price.Window

	// Cadences maps an exchange code to its interim reporting cadence.
	// Exchanges that are not listed report quarterly.
	Cadences map[string]data.Cadence
}

func DefaultConfig() Config {
	return Config{
		TrendThreshold:        period.DefaultTrendThreshold,
		MinConsistencyHistory: MinConsistencyHistory,
		ConsistencyMethod:     GrowthStddev,
		VolatilityInterval:    price.Weekly,
		VolatilityWindow:      price.FiftyTwoWeeks,
		MomentumWindow:        price.FiftyTwoWeeks,
		MomentumLookback:      price.ThreeMonths,
		Cadences: map[string]data.Cadence{
			"NOMU": data.SemiAnnualCadence,
		},
	}
}

// ConfigFromViper overlays the metrics.* keys onto the defaults
func ConfigFromViper() (Config, error) {
	conf := DefaultConfig()

	if viper.IsSet("metrics.trend_threshold") {
		conf.TrendThreshold = viper.GetFloat64("metrics.trend_threshold")
	}

	if viper.IsSet("metrics.min_consistency_history") {
		conf.MinConsistencyHistory = viper.GetInt("metrics.min_consistency_history")
	}

	method, err := ParseConsistencyMethod(viper.GetString("metrics.consistency_method"))
	if err != nil {
		return conf, err
	}
	conf.ConsistencyMethod = method

	interval, err := price.ParseReturnInterval(viper.GetString("metrics.volatility_interval"))
	if err != nil {
		return conf, err
	}
	conf.VolatilityInterval = interval

	if viper.IsSet("metrics.semiannual_exchanges") {
		conf.Cadences = make(map[string]data.Cadence)
		for _, exchange := range viper.GetStringSlice("metrics.semiannual_exchanges") {
			conf.Cadences[strings.ToUpper(exchange)] = data.SemiAnnualCadence
		}
	}

	return conf, nil
}

// Cadence returns the reporting cadence of exchange
func (conf Config) Cadence(exchange string) data.Cadence {
	if cadence, ok := conf.Cadences[strings.ToUpper(exchange)]; ok {
		return cadence
	}

	return data.QuarterlyCadence
}
