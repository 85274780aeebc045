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
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"disaster-report/pkg/errors"
)

// DefaultBaseURL Hugging Face 的 OpenAI 兼容路由
const DefaultBaseURL = "https://router.huggingface.co/v1"

// OpenAIClient OpenAI 兼容 chat completions 客户端；不重试
type OpenAIClient struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
}

// NewOpenAIClient 创建客户端；BaseURL 为空时用 DefaultBaseURL
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "llm model 未配置")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(0)

	return &OpenAIClient{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  client,
	}, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	GenerateOptions
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// GenerateWithContext 以单条 user 消息发送一次 chat completion，返回第一个 choice 的内容；失败时返回 *errors.Error
func (c *OpenAIClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Model: c.model, Messages: []Message{UserMessage(prompt)}, GenerateOptions: options})
	if c.apiKey != "" {
		req.SetAuthToken(c.apiKey)
	}

	response, err := req.Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", errors.Classify(err)
	}

	if response.StatusCode() != http.StatusOK {
		return "", errors.New(errors.KindStatus, "%d %s: %s",
			response.StatusCode(), http.StatusText(response.StatusCode()), errorMessage(response.Body()))
	}

	var result chatResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", errors.WithKind(errors.KindMalformed, fmt.Errorf("invalid chat completion response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", errors.New(errors.KindEmpty, "chat completion returned no choices")
	}
	content := result.Choices[0].Message.Content
	if content == nil {
		return "", errors.New(errors.KindEmpty, "chat completion returned no content")
	}
	return *content, nil
}

// errorMessage 提取 OpenAI 风格错误体中的 message，否则返回原始 body
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && len(er.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(er.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if json.Unmarshal(er.Error, &s) == nil && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}

// Model 返回模型 id
func (c *OpenAIClient) Model() string {
	return c.model
}

// Provider 返回客户端实现名称
func (c *OpenAIClient) Provider() string {
	return ClientOpenAI
}
