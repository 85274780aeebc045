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

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disaster-report/pkg/errors"
)

func newChatServer(t *testing.T, status int, body string, gotReq *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		if gotReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotReq))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(Config{Model: "openai/gpt-oss-120b:groq", APIKey: "hf_test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	return c
}

func TestOpenAIClient_Generate(t *testing.T) {
	var req map[string]any
	srv := newChatServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"**Disaster Type** Fire"}}]}`, &req)
	defer srv.Close()

	c := newTestClient(t, srv)
	out, err := c.GenerateWithContext(context.Background(), "describe", GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "**Disaster Type** Fire", out)

	assert.Equal(t, "openai/gpt-oss-120b:groq", req["model"])
	assert.InDelta(t, 0.7, req["temperature"], 1e-9)
	assert.NotContains(t, req, "max_tokens")
	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "describe"}, msgs[0])

	assert.Equal(t, "openai/gpt-oss-120b:groq", c.Model())
	assert.Equal(t, ClientOpenAI, c.Provider())
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind errors.Kind
		contains string
	}{
		{name: "status with openai error", status: http.StatusUnauthorized, body: `{"error":{"message":"Invalid credentials in Authorization header"}}`, wantKind: errors.KindStatus, contains: "Invalid credentials"},
		{name: "status with string error", status: http.StatusServiceUnavailable, body: `{"error":"Model too busy"}`, wantKind: errors.KindStatus, contains: "Model too busy"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, wantKind: errors.KindEmpty},
		{name: "null content", status: http.StatusOK, body: `{"choices":[{"message":{"content":null}}]}`, wantKind: errors.KindEmpty},
		{name: "malformed", status: http.StatusOK, body: `not json`, wantKind: errors.KindMalformed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newChatServer(t, tc.status, tc.body, nil)
			defer srv.Close()

			_, err := newTestClient(t, srv).GenerateWithContext(context.Background(), "p", GenerateOptions{Temperature: 0.7})
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, errors.KindOf(err))
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
		})
	}
}

func TestOpenAIClient_NoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(Config{Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.GenerateWithContext(context.Background(), "p", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenAIClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewOpenAIClient(Config{Model: "m", BaseURL: url})
	require.NoError(t, err)
	_, err = c.GenerateWithContext(context.Background(), "p", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.KindNetwork, errors.KindOf(err))
}

func TestOpenAIClient_Canceled(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"choices":[]}`, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv).GenerateWithContext(ctx, "p", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.KindCanceled, errors.KindOf(err))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(context.Background(), Config{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, ClientOpenAI, c.Provider())

	c, err = NewClient(context.Background(), Config{Client: ClientEino, Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ClientEino, c.Provider())

	_, err = NewClient(context.Background(), Config{Client: "claude", Model: "m"})
	require.Error(t, err)

	_, err = NewClient(context.Background(), Config{})
	assert.True(t, errors.Is(err, errors.ErrInvalidArg))
}
