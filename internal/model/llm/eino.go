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
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"disaster-report/pkg/errors"
)

// EinoClient 基于 eino ChatModel 的客户端
type EinoClient struct {
	model string
	chat  model.BaseChatModel
}

// NewEinoClient 用 eino-ext OpenAI ChatModel 连接 OpenAI 兼容端点
func NewEinoClient(ctx context.Context, cfg Config) (*EinoClient, error) {
	if cfg.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "llm model 未配置")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}
	return NewEinoClientWithModel(cfg.Model, chat), nil
}

// NewEinoClientWithModel 包装已有的 ChatModel
func NewEinoClientWithModel(name string, chat model.BaseChatModel) *EinoClient {
	return &EinoClient{model: name, chat: chat}
}

// GenerateWithContext 以单条 user 消息调用 ChatModel.Generate
func (c *EinoClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	input := []*schema.Message{schema.UserMessage(prompt)}

	opts := []model.Option{model.WithTemperature(float32(options.Temperature))}
	if options.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.TopP > 0 {
		opts = append(opts, model.WithTopP(float32(options.TopP)))
	}
	if len(options.Stop) > 0 {
		opts = append(opts, model.WithStop(options.Stop))
	}

	out, err := c.chat.Generate(ctx, input, opts...)
	if err != nil {
		return "", errors.Classify(err)
	}
	if out == nil {
		return "", errors.New(errors.KindEmpty, "chat completion returned no message")
	}
	return out.Content, nil
}

// Model 返回模型 id
func (c *EinoClient) Model() string {
	return c.model
}

// Provider 返回客户端实现名称
func (c *EinoClient) Provider() string {
	return ClientEino
}
