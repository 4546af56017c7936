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

// Package pkginfo describes the running build of pvmetrics
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Set at link time with -ldflags "-X github.com/penny-vault/pvmetrics/pkginfo.Version=..."
var (
	BuildDate  string
	CommitHash string
	Version    string
)

// Build identifies one binary of pvmetrics
type Build struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	NumMetrics int    `json:"num_metrics"`
}

// Current describes the running binary. Values not set at link time are
// taken from the module build info when the go toolchain recorded them.
func Current(numMetrics int) Build {
	build := Build{
		Version:    Version,
		Commit:     CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		NumMetrics: numMetrics,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		build.fillFrom(info)
	}

	if build.Version == "" {
		build.Version = "devel"
	}

	return build
}

func (build *Build) fillFrom(info *debug.BuildInfo) {
	if build.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		build.Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if build.Commit == "" {
				build.Commit = setting.Value
			}
		case "vcs.time":
			if build.BuildDate == "" {
				build.BuildDate = setting.Value
			}
		}
	}
}

// String formats the build for printing on the command line
func (build Build) String() string {
	return fmt.Sprintf(`pvmetrics %s %s

Build Date: %s
Commit: %s
Built with: %s
Metrics: %d`, build.Version, build.Platform, build.BuildDate, build.Commit, build.GoVersion, build.NumMetrics)
}

// Dependencies lists the modules linked into the binary as `path="version"`.
// Only modules whose path starts with prefix are returned; an empty prefix
// returns all of them.
func Dependencies(prefix string) []string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return nil
	}

	return dependencies(info.Deps, prefix)
}

func dependencies(modules []*debug.Module, prefix string) []string {
	deps := make([]string, 0, len(modules))
	for _, dep := range modules {
		if !strings.HasPrefix(dep.Path, prefix) {
			continue
		}

		version := dep.Version
		if dep.Replace != nil {
			version = fmt.Sprintf("%s => %s %s", dep.Version, dep.Replace.Path, dep.Replace.Version)
		}

		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, version))
	}

	sort.Strings(deps)

	return deps
}
