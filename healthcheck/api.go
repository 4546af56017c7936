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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

var (
	ErrStatus    = errors.New("status code is invalid")
	ErrNoCheckID = errors.New("no health check id configured")
)

const (
	DefaultAPIURL  = "https://healthchecks.io/api/v3"
	DefaultPingURL = "https://hc-ping.com"
)

type createReq struct {
	APIKey      string `json:"api_key"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
	Grace       int    `json:"grace"`
	Schedule    string `json:"schedule"`
	Slug        string `json:"slug"`
	Tags        string `json:"tags"`
	Timezone    string `json:"tz"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

func apiURL() string {
	if url := viper.GetString("healthchecks.api_url"); url != "" {
		return strings.TrimSuffix(url, "/")
	}

	return DefaultAPIURL
}

func pingURL() string {
	if url := viper.GetString("healthchecks.ping_url"); url != "" {
		return strings.TrimSuffix(url, "/")
	}

	return DefaultPingURL
}

// Create a new healthchecks.io check and return the id
func Create(ctx context.Context, name string, slug string, tags []string, schedule string) (string, error) {
	command := createReq{
		APIKey:      viper.GetString("healthchecks.apikey"),
		Name:        name,
		Description: "metric derivation runs",
		Slug:        slug,
		Tags:        strings.Join(tags, " "),
		Grace:       3600,
		Schedule:    schedule,
		Timezone:    "Asia/Riyadh",
	}

	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(apiURL() + "/checks/")

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// Ping reports the outcome of a run. A failed run is sent to the check's
// fail endpoint with message as the body.
func Ping(ctx context.Context, id string, failed bool, message string) error {
	if id == "" {
		return ErrNoCheckID
	}

	url := fmt.Sprintf("%s/%s", pingURL(), id)
	if failed {
		url += "/fail"
	}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(message).
		Post(url)

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
