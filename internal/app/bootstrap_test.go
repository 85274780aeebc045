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

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disaster-report/internal/model/vision"
	"disaster-report/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HF_TOKEN", "")
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Log.Level = "error"
	cfg.Model.Caption.Provider = CaptionStub
	cfg.Model.Caption.StubCaption = "a collapsed bridge"
	return cfg
}

func TestNewBootstrap_Stub(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "stub", b.Captioner.Name())
	assert.Equal(t, "openai/gpt-oss-120b:groq", b.LLM.Model())
	assert.Equal(t, "openai", b.LLM.Provider())
	assert.Equal(t, "openai/gpt-oss-120b:groq", b.Analyzer.ReportModel())
}

func TestNewBootstrap_TokenAndReport(t *testing.T) {
	var auth atomic.Value
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"**Disaster Type:** Structural collapse"}}]}`))
	}))
	defer chat.Close()

	cfg := testConfig(t)
	t.Setenv("HF_TOKEN", "hf_secret\n")
	pc := cfg.Model.LLM.Providers["hf"]
	pc.BaseURL = chat.URL
	cfg.Model.LLM.Providers["hf"] = pc

	b, err := NewBootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	res := b.Reporter.Generate(context.Background(), "a collapsed bridge")
	require.True(t, res.OK(), res.Render())
	assert.Equal(t, "Disaster Type: Structural collapse", res.Text)
	assert.Equal(t, "Bearer hf_secret", auth.Load())
}

func TestNewBootstrap_CaptionLoad(t *testing.T) {
	var hubCalls int32
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hubCalls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer hub.Close()

	cfg := testConfig(t)
	cfg.Model.Caption.Provider = CaptionHuggingFace
	cfg.Model.Caption.HubURL = hub.URL
	cfg.Model.Caption.BaseURL = hub.URL

	_, err := NewBootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "加载图像描述模型")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hubCalls))

	// 关闭预加载时不访问 Hub
	off := false
	cfg.Model.Caption.Preload = &off
	b, err := NewBootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&hubCalls))
	_, ok := b.Captioner.(*vision.HuggingFaceClient)
	assert.True(t, ok)
}

func TestNewBootstrap_Errors(t *testing.T) {
	_, err := NewBootstrap(context.Background(), nil)
	require.Error(t, err)

	cfg := testConfig(t)
	cfg.Model.Caption.Provider = "blip-local"
	_, err = NewBootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blip-local")

	cfg = testConfig(t)
	cfg.Model.Defaults.LLM = "hf.missing"
	_, err = NewBootstrap(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Secrets.Provider = "unknown"
	_, err = NewBootstrap(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewLLMClientFromConfig_Eino(t *testing.T) {
	cfg := testConfig(t)
	temp := 0.2
	cfg.Model.LLM.Providers = map[string]config.ProviderConfig{
		"local": {
			Client:  "eino",
			APIKey:  "sk-local",
			BaseURL: "http://127.0.0.1:11434/v1",
			Models:  map[string]config.ModelInfo{"small": {Name: "llama3", Temperature: &temp}},
		},
	}
	cfg.Model.Defaults.LLM = "local.small"

	client, mi, err := NewLLMClientFromConfig(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "eino", client.Provider())
	assert.Equal(t, "llama3", client.Model())
	assert.InDelta(t, 0.2, mi.TemperatureOrDefault(), 1e-9)
}
