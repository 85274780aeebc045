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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok","captioner":"stub"}`))
		case "/analyze/":
			f, fh, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"detail":[{"type":"missing","loc":["body","file"],"msg":"Field required","input":null}]}`))
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			_ = json.NewEncoder(w).Encode(analyzeResult{Caption: fh.Filename, Report: string(data)})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAnalyze(t *testing.T) {
	srv := newAPIServer(t)
	path := filepath.Join(t.TempDir(), "flood.jpg")
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0644))

	var stdout, stderr bytes.Buffer
	code := runAnalyze(srv.URL, path, false, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Caption: flood.jpg\n\nimage-bytes\n", stdout.String())

	stdout.Reset()
	code = runAnalyze(srv.URL, path, true, &stdout, &stderr)
	require.Equal(t, 0, code)
	var res analyzeResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, "flood.jpg", res.Caption)
}

func TestRunAnalyze_Errors(t *testing.T) {
	srv := newAPIServer(t)

	var stdout, stderr bytes.Buffer
	code := runAnalyze(srv.URL, filepath.Join(t.TempDir(), "missing.png"), false, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "analyze:")

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
	}))
	defer bad.Close()
	path := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	stderr.Reset()
	code = runAnalyze(bad.URL, path, false, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "500")
}

func TestRunHealth(t *testing.T) {
	srv := newAPIServer(t)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, runHealth(srv.URL, &stdout, &stderr))
	assert.Contains(t, stdout.String(), `"status": "ok"`)
}
