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

package report

import (
	"context"
	"strings"
	"time"

	"disaster-report/internal/model/llm"
	"disaster-report/pkg/errors"
	"disaster-report/pkg/log"
	"disaster-report/pkg/metrics"
	"disaster-report/pkg/tracing"
)

// ErrorMarker 失败时报告文本的前缀
const ErrorMarker = "❌ Error: "

// DefaultTemperature 报告生成的采样温度
const DefaultTemperature = 0.7

// Result 报告生成结果；Err 非空时 Text 无意义
type Result struct {
	Text string
	Err  *errors.Error
}

// OK 是否成功
func (r Result) OK() bool { return r.Err == nil }

// Render 返回面向用户的报告字符串：成功时为文本，失败时为 ErrorMarker + 错误信息
func (r Result) Render() string {
	if r.Err != nil {
		return ErrorMarker + r.Err.Error()
	}
	return r.Text
}

// StripBold 删除所有 "**"，其余字符不变
func StripBold(text string) string {
	return strings.ReplaceAll(text, "**", "")
}

// Options Generator 参数
type Options struct {
	Temperature float64
	MaxTokens   int
	Logger      *log.Logger
}

// Generator 报告生成器；持有只读的 LLM 客户端，可并发使用
type Generator struct {
	client llm.Client
	opts   llm.GenerateOptions
	logger *log.Logger
}

// NewGenerator 创建生成器；opts.Temperature 为 0 时仍按 0 发送，调用方负责填默认值
func NewGenerator(client llm.Client, opts Options) *Generator {
	return &Generator{
		client: client,
		opts:   llm.GenerateOptions{Temperature: opts.Temperature, MaxTokens: opts.MaxTokens},
		logger: opts.Logger,
	}
}

// Model 返回所用模型 id
func (g *Generator) Model() string {
	return g.client.Model()
}

// Generate 对描述调用一次 chat completion；远端失败不返回 error，而是写入 Result.Err
func (g *Generator) Generate(ctx context.Context, caption string) Result {
	prompt := BuildPrompt(caption)
	model := g.client.Model()

	ctx, span := tracing.StartReportSpan(ctx, model, len(prompt))
	start := time.Now()
	text, err := g.client.GenerateWithContext(ctx, prompt, g.opts)
	metrics.ReportDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	tracing.EndSpan(span, err)

	if err != nil {
		e := errors.Classify(err)
		metrics.ReportFailTotal.WithLabelValues(string(e.Kind)).Inc()
		if g.logger != nil {
			g.logger.WarnContext(ctx, "报告生成失败", "model", model, "kind", e.Kind, "error", e.Error())
		}
		return Result{Err: e}
	}
	return Result{Text: StripBold(text)}
}
