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
package backblaze_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/backblaze"
)

var _ = Describe("RemoteName", func() {
	It("keeps the layout below the export directory", func() {
		base := filepath.Join("out", "2024")
		Expect(backblaze.RemoteName(filepath.Join(base, "analysis.json"), base, "metrics")).To(Equal("metrics/analysis.json"))
		Expect(backblaze.RemoteName(filepath.Join(base, "stocks", "2222.json"), base, "metrics")).To(Equal("metrics/stocks/2222.json"))
	})

	It("falls back to the file name outside the export directory", func() {
		Expect(backblaze.RemoteName(filepath.Join("elsewhere", "entity_metrics.csv"), "out", "metrics")).To(Equal("metrics/entity_metrics.csv"))
	})
})
