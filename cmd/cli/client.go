// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

// analyzeResult 与 POST /analyze/ 响应一致
type analyzeResult struct {
	Caption string `json:"caption"`
	Report  string `json:"report"`
}

func apiBaseURL() string {
	if u := os.Getenv("DISASTER_API_URL"); u != "" {
		return u
	}
	return "http://localhost:8000"
}

// newClient 不设超时，与服务端一致
func newClient(baseURL string) *resty.Client {
	return resty.New().SetBaseURL(baseURL)
}

func getHealth(c *resty.Client) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := c.R().
		SetResult(&out).
		Get("/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /health: %s", resp.String())
	}
	return out, nil
}

// analyzeFile 以 multipart 字段 file 上传图像
func analyzeFile(c *resty.Client, path string) (*analyzeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out analyzeResult
	resp, err := c.R().
		SetFileReader("file", filepath.Base(path), bytes.NewReader(data)).
		SetResult(&out).
		Post("/analyze/")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("POST /analyze/: %d %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

func prettyJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
