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
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvmetrics/data"
)

// writeJSON writes the complete analysis document plus one document per
// entity under stocks/
func writeJSON(analysis *data.Analysis, dir string) ([]string, error) {
	fn := filepath.Join(dir, AnalysisFile)
	if err := writeJSONFile(fn, analysis); err != nil {
		return nil, err
	}

	written := []string{fn}

	stocksDir := filepath.Join(dir, StocksDir)
	if err := os.MkdirAll(stocksDir, 0o755); err != nil {
		return written, err
	}

	for _, record := range analysis.Entities {
		stockFn := filepath.Join(stocksDir, fmt.Sprintf("%s.json", slug.Make(record.Symbol)))
		if err := writeJSONFile(stockFn, record); err != nil {
			return written, err
		}

		written = append(written, stockFn)
	}

	return written, nil
}

func writeJSONFile(fn string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fn, encoded, 0o644)
}
