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

// Package source loads an already collected universe of entities so that it
// can be handed to the runner.
package source

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/penny-vault/pvmetrics/data"
)

var (
	ErrMissingEntities = errors.New("entities file not found")
)

// Source provides the universe for a run
type Source interface {
	Load(ctx context.Context) ([]*data.Entity, error)
}

// NullFloat is a CSV cell that may be empty or hold a placeholder for a
// missing value
type NullFloat struct {
	Value *float64
}

func (nf *NullFloat) UnmarshalCSV(cell string) error {
	if data.IsMissing(cell) {
		nf.Value = nil
		return nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cell), ",", ""), 64)
	if err != nil {
		return err
	}

	nf.Value = data.Float(v)
	return nil
}

func (nf NullFloat) MarshalCSV() (string, error) {
	if nf.Value == nil || math.IsNaN(*nf.Value) {
		return "", nil
	}

	return strconv.FormatFloat(*nf.Value, 'f', -1, 64), nil
}
