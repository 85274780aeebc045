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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"disaster-report/pkg/errors"
)

const (
	// DefaultHFInferenceURL Hugging Face 推理路由（hf-inference 提供方）
	DefaultHFInferenceURL = "https://router.huggingface.co/hf-inference"
	// DefaultHFHubURL 模型元数据查询
	DefaultHFHubURL = "https://huggingface.co"

	imageToTextTask = "image-to-text"
)

// 分词器特殊符号，出现在生成文本中时去掉
var specialTokens = strings.NewReplacer(
	"[CLS]", "", "[SEP]", "", "[PAD]", "", "[UNK]", "", "[MASK]", "",
	"<s>", "", "</s>", "", "<pad>", "", "<unk>", "",
)

// HuggingFaceConfig 远端 image-to-text 模型配置
type HuggingFaceConfig struct {
	Model        string
	APIKey       string
	BaseURL      string        // 空则 DefaultHFInferenceURL
	HubURL       string        // 空则 DefaultHFHubURL
	Timeout      time.Duration // 0 表示不设超时
	MaxNewTokens int           // 0 表示使用模型默认
	MaxSide      int           // 上传前按最长边缩小，0 表示不缩放
}

// HuggingFaceClient 调用 Hugging Face 推理服务生成图像描述（贪心解码，结果可复现）
type HuggingFaceClient struct {
	model        string
	apiKey       string
	baseURL      string
	hubURL       string
	maxNewTokens int
	maxSide      int
	client       *resty.Client
}

// NewHuggingFaceClient 创建客户端；不发起网络请求，模型校验见 Load
func NewHuggingFaceClient(cfg HuggingFaceConfig) (*HuggingFaceClient, error) {
	if cfg.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "caption model 未配置")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultHFInferenceURL
	}
	hubURL := strings.TrimRight(cfg.HubURL, "/")
	if hubURL == "" {
		hubURL = DefaultHFHubURL
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(0)

	return &HuggingFaceClient{
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		hubURL:       hubURL,
		maxNewTokens: cfg.MaxNewTokens,
		maxSide:      cfg.MaxSide,
		client:       client,
	}, nil
}

func (c *HuggingFaceClient) Name() string {
	return c.model
}

func (c *HuggingFaceClient) request(ctx context.Context) *resty.Request {
	r := c.client.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if c.apiKey != "" {
		r.SetAuthToken(c.apiKey)
	}
	return r
}

// Load 在 Hub 上解析模型，模型不存在或不是 image-to-text 任务时返回错误
func (c *HuggingFaceClient) Load(ctx context.Context) error {
	resp, err := c.request(ctx).Get(c.hubURL + "/api/models/" + c.model)
	if err != nil {
		return errors.Classify(fmt.Errorf("查询模型 %s 失败: %w", c.model, err))
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return errors.Wrapf(errors.ErrNotFound, "模型 %s", c.model)
	case resp.StatusCode() != http.StatusOK:
		return errors.New(errors.KindStatus, "查询模型 %s 返回 %d: %s", c.model, resp.StatusCode(), resp.String())
	}

	var info struct {
		ID          string `json:"id"`
		PipelineTag string `json:"pipeline_tag"`
	}
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return errors.WithKind(errors.KindMalformed, fmt.Errorf("解析模型信息失败: %w", err))
	}
	if info.PipelineTag != "" && info.PipelineTag != imageToTextTask {
		return errors.Wrapf(errors.ErrInvalidArg, "模型 %s 的任务为 %s，需要 %s", c.model, info.PipelineTag, imageToTextTask)
	}
	return nil
}

type hfGenerationParameters struct {
	DoSample bool `json:"do_sample"`
}

type hfParameters struct {
	MaxNewTokens         int                    `json:"max_new_tokens,omitempty"`
	GenerationParameters hfGenerationParameters `json:"generation_parameters"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfOutput struct {
	GeneratedText string `json:"generated_text"`
}

// Describe 上传 PNG 编码的图像，返回第一条生成文本
func (c *HuggingFaceClient) Describe(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(Resize(img, c.maxSide))
	if err != nil {
		return "", err
	}
	body := hfRequest{
		Inputs: base64.StdEncoding.EncodeToString(data),
		Parameters: hfParameters{
			MaxNewTokens:         c.maxNewTokens,
			GenerationParameters: hfGenerationParameters{DoSample: false},
		},
	}

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/models/" + c.model)
	if err != nil {
		return "", errors.Classify(fmt.Errorf("调用图像描述模型失败: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errors.New(errors.KindStatus, "图像描述模型返回 %d: %s", resp.StatusCode(), resp.String())
	}

	text, err := parseHFOutput(resp.Body())
	if err != nil {
		return "", err
	}
	return CleanCaption(text), nil
}

// 推理服务可能返回数组或单个对象
func parseHFOutput(body []byte) (string, error) {
	var list []hfOutput
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return "", errors.New(errors.KindEmpty, "图像描述模型没有返回结果")
		}
		return list[0].GeneratedText, nil
	}
	var single hfOutput
	if err := json.Unmarshal(body, &single); err != nil {
		return "", errors.WithKind(errors.KindMalformed, fmt.Errorf("解析图像描述响应失败: %w", err))
	}
	return single.GeneratedText, nil
}

// CleanCaption 去掉特殊符号并折叠空白
func CleanCaption(text string) string {
	return strings.Join(strings.Fields(specialTokens.Replace(text)), " ")
}
