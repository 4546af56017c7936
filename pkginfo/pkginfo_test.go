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

package pkginfo

import (
	"runtime/debug"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Build", func() {
	It("prefers link time values over the module build info", func() {
		build := Build{Version: "v1.2.0", Commit: "abc123"}
		build.fillFrom(&debug.BuildInfo{
			Main: debug.Module{Version: "v0.9.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "def456"},
				{Key: "vcs.time", Value: "2024-03-01T10:00:00Z"},
			},
		})

		Expect(build.Version).To(Equal("v1.2.0"))
		Expect(build.Commit).To(Equal("abc123"))
		Expect(build.BuildDate).To(Equal("2024-03-01T10:00:00Z"))
	})

	It("ignores the devel placeholder version", func() {
		var build Build
		build.fillFrom(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		Expect(build.Version).To(BeEmpty())
	})

	It("prints the metric count", func() {
		build := Build{Version: "v1.0.0", Platform: "linux/amd64", NumMetrics: 42}
		Expect(build.String()).To(HavePrefix("pvmetrics v1.0.0 linux/amd64"))
		Expect(build.String()).To(HaveSuffix("Metrics: 42"))
	})

	It("filters and sorts dependencies", func() {
		deps := dependencies([]*debug.Module{
			{Path: "github.com/spf13/viper", Version: "v1.18.2"},
			{Path: "github.com/rs/zerolog", Version: "v1.32.0"},
			{Path: "golang.org/x/text", Version: "v0.14.0"},
			{Path: "github.com/jackc/pgx/v5", Version: "v5.5.5", Replace: &debug.Module{Path: "../pgx", Version: ""}},
		}, "github.com/")

		Expect(deps).To(Equal([]string{
			`github.com/jackc/pgx/v5="v5.5.5 => ../pgx "`,
			`github.com/rs/zerolog="v1.32.0"`,
			`github.com/spf13/viper="v1.18.2"`,
		}))
	})
})
