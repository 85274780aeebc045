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
	"time"
)

// 客户端实现
const (
	ClientOpenAI = "openai" // resty 直连 OpenAI 兼容端点
	ClientEino   = "eino"   // eino-ext OpenAI ChatModel
)

// Client LLM 客户端接口；构建后只读，可并发调用
type Client interface {
	// GenerateWithContext 以单条 user 消息生成文本
	GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error)
	// Model 返回请求中使用的模型 id
	Model() string
	// Provider 返回客户端实现名称
	Provider() string
}

// GenerateOptions 生成选项；零值字段不发送（Temperature 除外）
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Message 聊天消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage 构造 user 消息
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Config 客户端构建参数
type Config struct {
	Client  string        // openai | eino，空为 openai
	Model   string        // 完整模型 id，如 openai/gpt-oss-120b:groq
	APIKey  string
	BaseURL string        // OpenAI 兼容端点，含 /v1
	Timeout time.Duration // 0 表示不设超时
}

// NewClient 按 Config.Client 创建 LLM 客户端
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var (
		c   Client
		err error
	)
	switch cfg.Client {
	case "", ClientOpenAI:
		c, err = NewOpenAIClient(cfg)
	case ClientEino:
		c, err = NewEinoClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm client: %s", cfg.Client)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
