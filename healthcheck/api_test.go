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
package healthcheck_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pvmetrics/healthcheck"
)

var _ = Describe("Healthcheck", func() {
	var (
		server   *httptest.Server
		lastPath string
		lastBody string
		status   int
	)

	BeforeEach(func() {
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			lastPath = r.URL.Path
			lastBody = string(body)

			if r.URL.Path == "/checks/" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"ping_url": "https://hc-ping.com/0f3a7c9e-5d1b-4b8e-9c2a-7e6f1d2b3c4a"}`))
				return
			}

			w.WriteHeader(status)
		}))

		viper.Set("healthchecks.api_url", server.URL)
		viper.Set("healthchecks.ping_url", server.URL+"/")
	})

	AfterEach(func() {
		server.Close()
		viper.Set("healthchecks.api_url", "")
		viper.Set("healthchecks.ping_url", "")
	})

	It("returns the id of a created check", func() {
		id, err := healthcheck.Create(context.Background(), "pvmetrics", "pvmetrics", []string{"metrics"}, "0 18 * * *")
		Expect(err).To(BeNil())
		Expect(id).To(Equal("0f3a7c9e-5d1b-4b8e-9c2a-7e6f1d2b3c4a"))
	})

	It("pings success", func() {
		Expect(healthcheck.Ping(context.Background(), "abc", false, "3 succeeded")).To(Succeed())
		Expect(lastPath).To(Equal("/abc"))
		Expect(lastBody).To(Equal("3 succeeded"))
	})

	It("pings the fail endpoint", func() {
		Expect(healthcheck.Ping(context.Background(), "abc", true, "boom")).To(Succeed())
		Expect(lastPath).To(Equal("/abc/fail"))
	})

	It("reports unexpected status codes", func() {
		status = http.StatusNotFound
		err := healthcheck.Ping(context.Background(), "abc", false, "")
		Expect(errors.Is(err, healthcheck.ErrStatus)).To(BeTrue())
	})

	It("requires a check id", func() {
		err := healthcheck.Ping(context.Background(), "", false, "")
		Expect(errors.Is(err, healthcheck.ErrNoCheckID)).To(BeTrue())
	})
})
