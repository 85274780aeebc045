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

package vision

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"disaster-report/pkg/errors"
)

// DefaultCaptionPrompt 多模态模型的描述指令
const DefaultCaptionPrompt = "Describe this image in one short sentence."

// OpenAIConfig OpenAI 兼容多模态模型配置
type OpenAIConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
	MaxSide int
	Prompt  string
}

// OpenAIClient 通过 eino ChatModel 以 image_url 消息生成描述
type OpenAIClient struct {
	name    string
	prompt  string
	maxSide int
	chat    model.BaseChatModel
}

// NewOpenAIClient 创建 eino-ext OpenAI ChatModel；temperature 固定为 0
func NewOpenAIClient(ctx context.Context, cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "caption model 未配置")
	}
	var temperature float32
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}
	return NewChatModelClient(cfg.Model, chat, cfg.Prompt, cfg.MaxSide), nil
}

// NewChatModelClient 使用已有的 ChatModel
func NewChatModelClient(name string, chat model.BaseChatModel, prompt string, maxSide int) *OpenAIClient {
	if prompt == "" {
		prompt = DefaultCaptionPrompt
	}
	return &OpenAIClient{name: name, prompt: prompt, maxSide: maxSide, chat: chat}
}

func (c *OpenAIClient) Name() string {
	return c.name
}

// Describe 发送单条 user 消息（图像 + 指令）
func (c *OpenAIClient) Describe(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(Resize(img, c.maxSide))
	if err != nil {
		return "", err
	}
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:    DataURL(data),
					Detail: schema.ImageURLDetailAuto,
				},
			},
			{Type: schema.ChatMessagePartTypeText, Text: c.prompt},
		},
	}
	out, err := c.chat.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", errors.Classify(fmt.Errorf("调用图像描述模型失败: %w", err))
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errors.New(errors.KindEmpty, "图像描述模型没有返回结果")
	}
	return CleanCaption(out.Content), nil
}
