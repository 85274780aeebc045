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
	"fmt"

	"disaster-report/internal/model/llm"
	"disaster-report/internal/model/vision"
	"disaster-report/pkg/config"
)

// 图像描述提供方
const (
	CaptionHuggingFace = "huggingface"
	CaptionOpenAI      = "openai"
	CaptionStub        = "stub"
)

// NewCaptionerFromConfig 根据 model.caption 创建图像描述客户端；api_key 为空时使用 token
func NewCaptionerFromConfig(ctx context.Context, cfg config.CaptionConfig, token string) (vision.Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = token
	}
	timeout := config.ParseDuration(cfg.Timeout, 0)

	var (
		c   vision.Client
		err error
	)
	switch cfg.Provider {
	case "", CaptionHuggingFace:
		c, err = vision.NewHuggingFaceClient(vision.HuggingFaceConfig{
			Model:        cfg.Model,
			APIKey:       apiKey,
			BaseURL:      cfg.BaseURL,
			HubURL:       cfg.HubURL,
			Timeout:      timeout,
			MaxNewTokens: cfg.MaxNewTokens,
			MaxSide:      cfg.MaxSide,
		})
	case CaptionOpenAI:
		c, err = vision.NewOpenAIClient(ctx, vision.OpenAIConfig{
			Model:   cfg.Model,
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
			MaxSide: cfg.MaxSide,
			Prompt:  cfg.Prompt,
		})
	case CaptionStub:
		c = vision.NewStubClient(cfg.StubCaption)
	default:
		return nil, fmt.Errorf("caption provider %q 不支持", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewLLMClientFromConfig 根据 config.Model 的 defaults.llm 创建 LLM 客户端（如 "hf.gpt_oss_120b"），同时返回模型信息
func NewLLMClientFromConfig(ctx context.Context, cfg *config.Config, token string) (llm.Client, config.ModelInfo, error) {
	if cfg == nil || cfg.Model.Defaults.LLM == "" {
		return nil, config.ModelInfo{}, fmt.Errorf("model.defaults.llm 未配置")
	}
	provider, modelKey, err := config.ParseDefaultKey(cfg.Model.Defaults.LLM)
	if err != nil {
		return nil, config.ModelInfo{}, err
	}
	pc, ok := cfg.Model.LLM.Providers[provider]
	if !ok {
		return nil, config.ModelInfo{}, fmt.Errorf("LLM provider %q 未配置", provider)
	}
	mi, ok := pc.Models[modelKey]
	if !ok {
		return nil, config.ModelInfo{}, fmt.Errorf("LLM model %q 未在 provider %q 中配置", modelKey, provider)
	}
	apiKey := pc.APIKey
	if apiKey == "" {
		apiKey = token
	}
	client, err := llm.NewClient(ctx, llm.Config{
		Client:  pc.Client,
		Model:   mi.RequestModel(),
		APIKey:  apiKey,
		BaseURL: pc.BaseURL,
		Timeout: config.ParseDuration(pc.Timeout, 0),
	})
	if err != nil {
		return nil, config.ModelInfo{}, err
	}
	return client, mi, nil
}
