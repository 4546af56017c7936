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

// Package export writes a finished analysis to disk. Values are rounded on
// the way out; missing values are written as JSON null, an empty CSV cell or
// a parquet null and never as NaN.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	JSON    Format = "json"
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

const (
	DefaultDecimals = 2

	AnalysisFile         = "analysis.json"
	StocksDir            = "stocks"
	EntityMetricsCSVFile = "entity_metrics.csv"
	ParquetFile          = "entity_metrics.parquet"
)

type Options struct {
	Dir      string
	Formats  []Format
	Decimals int
}

// ParseFormats validates a list of format names
func ParseFormats(names []string) ([]Format, error) {
	formats := make([]Format, 0, len(names))
	seen := make(map[Format]bool, len(names))
	for _, name := range names {
		format := Format(strings.ToLower(strings.TrimSpace(name)))
		switch format {
		case JSON, CSV, Parquet:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
		}

		if !seen[format] {
			formats = append(formats, format)
			seen[format] = true
		}
	}

	return formats, nil
}

// Write exports analysis in every requested format and returns the paths of
// the files written
func Write(ctx context.Context, analysis *data.Analysis, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	rounded := Round(analysis, opts.Decimals)
	written := make([]string, 0)

	for _, format := range opts.Formats {
		var (
			files []string
			err   error
		)

		switch format {
		case JSON:
			files, err = writeJSON(rounded, opts.Dir)
		case CSV:
			files, err = writeCSV(rounded, opts.Dir)
		case Parquet:
			files, err = writeParquet(rounded, opts.Dir)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}

		if err != nil {
			logger.Error().Err(err).Str("Format", string(format)).Msg("export failed")
			return written, err
		}

		written = append(written, files...)
		logger.Info().Str("Format", string(format)).Int("NumFiles", len(files)).Str("Dir", opts.Dir).Msg("exported analysis")
	}

	return written, nil
}
